package cartridge

import (
	"fmt"
)

// Kind is a family of bank controller.
type Kind uint8

const (
	KindNone Kind = iota
	KindMBC1
	KindMBC2
	KindMBC3
	KindMBC5
	KindMBC6
	KindMBC7
	KindMMM01
	KindHuC1
	KindHuC3
	KindOther
)

var kindNames = map[Kind]string{
	KindNone:  "ROM",
	KindMBC1:  "MBC1",
	KindMBC2:  "MBC2",
	KindMBC3:  "MBC3",
	KindMBC5:  "MBC5",
	KindMBC6:  "MBC6",
	KindMBC7:  "MBC7",
	KindMMM01: "MMM01",
	KindHuC1:  "HuC1",
	KindHuC3:  "HuC3",
	KindOther: "Other",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Banker is the part of the address space a bank controller
// drives. Bank indices are wrapped by the Banker, the
// controller only decodes the written values.
type Banker interface {
	ROMBank() int
	SetROMBank(bank int)
	RAMBank() int
	SetRAMBank(bank int)
	EnableRAM(enabled bool)
	// MapRTC maps the given clock register (0x08 - 0x0C) over
	// the external RAM window, or unmaps it when given 0.
	MapRTC(register uint8)
}

// MemoryBankController intercepts writes to the ROM address
// range (0x0000 - 0x7FFF).
type MemoryBankController interface {
	Write(address uint16, value uint8)
}

// UnsupportedError is returned for cartridges whose bank
// controller is not implemented.
type UnsupportedError struct {
	Kind Kind
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("cartridge: %s bank controller is not implemented", e.Kind)
}

// NewController returns the bank controller of the given kind,
// driving b. Unimplemented kinds return an *UnsupportedError.
func NewController(kind Kind, b Banker) (MemoryBankController, error) {
	switch kind {
	case KindNone:
		return noController{}, nil
	case KindMBC1:
		return &memoryBankController1{b: b}, nil
	case KindMBC3:
		return &memoryBankController3{b: b}, nil
	case KindMBC5:
		return &memoryBankController5{b: b}, nil
	case KindMBC2, KindMBC6, KindMBC7, KindMMM01, KindHuC1, KindHuC3, KindOther:
		return nil, &UnsupportedError{Kind: kind}
	}

	panic(fmt.Sprintf("cartridge: unknown bank controller kind %d", kind))
}

// ramEnableValue reports whether a write to the RAM enable
// range enables external RAM.
func ramEnableValue(value uint8) bool {
	return value&0x0F == 0x0A
}

// noController is used by cartridges without a bank controller,
// writes to the ROM are simply dropped.
type noController struct{}

func (noController) Write(uint16, uint8) {}
