// Package interrupts provides the interrupt controller. The
// request (IF) and enable (IE) registers live in the io.Bus,
// the interrupt master enable flag is owned by the CPU.
package interrupts

import (
	"github.com/thelolagemann/gbcemu/internal/io"
	"github.com/thelolagemann/gbcemu/internal/types"
)

const (
	// VBlankFlag is the VBlank interrupt flag (bit 0),
	// which is requested every time the PPU enters
	// VBlank mode.
	VBlankFlag = types.Bit0
	// LCDFlag is the LCD interrupt flag (bit 1), which
	// is requested by the LCD STAT register (types.STAT),
	// when certain conditions are met.
	LCDFlag = types.Bit1
	// TimerFlag is the Timer interrupt flag (bit 2),
	// which is requested when the timer overflows,
	// (types.TIMA > 0xFF).
	TimerFlag = types.Bit2
	// SerialFlag is the Serial interrupt flag (bit 3),
	// which is requested when a serial transfer is
	// completed.
	SerialFlag = types.Bit3
	// JoypadFlag is the Joypad interrupt Flag (bit 4),
	// which is requested when any of types.P1 bits 0-3
	// go from high to low, if the corresponding select
	// bit (types.P1 bit 4 or 5) is set to 0.
	JoypadFlag = types.Bit4

	// mask covers the five interrupt sources.
	mask = 0x1F
)

// Vector is the address the CPU jumps to when servicing the
// interrupt of the given bit index.
func Vector(index uint8) uint16 {
	return 0x0040 + uint16(index)*8
}

// Service is the interrupt service, used to request
// interrupts and to get the current interrupt vector.
//
// When an interrupt is requested, the corresponding bit
// in the Flag register is set. When an interrupt is
// enabled, the corresponding bit in the Enable register
// is set. When an interrupt is requested and enabled,
// and the IME is set, the CPU will jump to the interrupt
// vector, and the corresponding bit in the Flag register
// will be cleared.
type Service struct {
	b *io.Bus
}

// NewService returns a new Service, backed by the IF and
// IE registers of the given bus.
func NewService(b *io.Bus) *Service {
	s := &Service{b: b}
	b.ReserveAddress(types.IF, func(v byte) byte {
		// the upper 3 bits are always set
		return v | 0xE0
	})
	return s
}

// Flag returns the requested interrupts.
func (s *Service) Flag() uint8 {
	return s.b.Get(types.IF) & mask
}

// Pending returns the interrupts that are both requested
// and enabled.
func (s *Service) Pending() uint8 {
	return s.b.Get(types.IF) & s.b.Get(types.IE) & mask
}

// HasInterrupts returns true if there are any interrupts
// that are requested and enabled.
func (s *Service) HasInterrupts() bool {
	return s.Pending() != 0
}

// Request requests the specified interrupt, by setting
// the corresponding bit in the Flag register.
func (s *Service) Request(flag uint8) {
	s.b.SetBit(types.IF, flag)
}

// Vector returns the vector of the highest priority pending
// interrupt, clearing its bit in the Flag register. It returns
// 0 if no interrupt is pending. Priority is fixed, lowest bit
// first (VBlank > LCD > Timer > Serial > Joypad).
func (s *Service) Vector() uint16 {
	pending := s.Pending()
	if pending == 0 {
		return 0
	}
	for i := uint8(0); i < 5; i++ {
		flag := uint8(1 << i)
		if pending&flag != 0 {
			s.b.ClearBit(types.IF, flag)
			return Vector(i)
		}
	}

	panic("interrupts: pending interrupt without a source")
}
