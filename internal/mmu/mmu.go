// Package mmu provides the memory management unit for the Game Boy.
// The 64KB address space is split into 16 slots of 4KB, each slot
// being a view into one of the memory arenas (ROM page, VRAM bank,
// WRAM bank, external RAM bank). Switching banks re-slices the slot
// table, memory is never copied.
package mmu

import (
	"fmt"

	"github.com/thelolagemann/gbcemu/internal/cartridge"
	"github.com/thelolagemann/gbcemu/internal/io"
	"github.com/thelolagemann/gbcemu/internal/types"
	"github.com/thelolagemann/gbcemu/pkg/log"
)

const (
	slotSize = 0x1000

	// VRAMBankSize is the size of a single VRAM bank.
	VRAMBankSize = 0x2000
	// WRAMBankSize is the size of a single WRAM bank.
	WRAMBankSize = 0x1000
	// ERAMBankSize is the size of a single external RAM bank.
	ERAMBankSize = 0x2000
	// OAMSize is the size of the sprite attribute table.
	OAMSize = 160
)

// MMU is the memory management unit for the Game Boy. It handles all
// memory reads and writes to the 64KB address space, forwarding the
// IO block to the io.Bus and writes to the ROM to the cartridge's
// bank controller.
type MMU struct {
	// 0x0000 - 0xFDFF, as 4KB views
	slots [16][]byte

	// 0x0000 - 0x7FFF - ROM (page 0 + switchable page)
	// 0xA000 - 0xBFFF - External RAM (8kB)
	cart  cartridge.PageSource
	page0 []byte
	pages int
	mbc   cartridge.MemoryBankController

	// 0x8000 - 0x9FFF - Video RAM (2 x 8kB)
	vram [2][VRAMBankSize]byte
	// 0xC000 - 0xDFFF - Work RAM (8 x 4kB)
	// 0xE000 - 0xFDFF - Echo RAM
	wram [8][WRAMBankSize]byte
	eram []byte
	// 0xFE00 - 0xFE9F - Sprite Attribute Table (160B)
	oam [OAMSize]byte

	// 0xFF00 - 0xFFFF - IO, HRAM and IE
	bus *io.Bus

	romBank    int
	ramBank    int
	vramBank   int
	wramBank   int
	ramEnabled bool
	rtc        uint8

	isGBC bool
	log   log.Logger

	patcher Patcher
}

// Patcher modifies values read from the cartridge ROM, such as a
// Game Genie.
type Patcher interface {
	Patch(address uint16, value uint8) uint8
}

var _ cartridge.Banker = (*MMU)(nil)

// New returns a new MMU for the given cartridge. It fails with a
// *cartridge.UnsupportedError if the cartridge's bank controller is
// not implemented.
func New(cart cartridge.PageSource, bus *io.Bus, isGBC bool, l log.Logger) (*MMU, error) {
	if l == nil {
		l = log.NewNullLogger()
	}
	m := &MMU{
		cart:  cart,
		page0: cart.Page(0),
		pages: cart.ROMSize() / cartridge.PageSize,
		eram:  make([]byte, cart.RAMSize()),
		bus:   bus,
		isGBC: isGBC,
		log:   l,
	}
	if m.pages < 2 {
		m.pages = 2
	}

	mbc, err := cartridge.NewController(cart.Kind(), m)
	if err != nil {
		return nil, err
	}
	m.mbc = mbc

	m.init()
	m.Reset()

	return m, nil
}

func (m *MMU) init() {
	// CGB registers
	if m.isGBC {
		m.bus.ReserveAddress(types.VBK, func(v byte) byte {
			m.vramBank = int(v & types.Bit0)
			m.mapVRAM()
			return v | 0xFE
		})
		m.bus.ReserveAddress(types.SVBK, func(v byte) byte {
			m.wramBank = int(v & 0x07)
			m.mapWRAM()
			return v | 0xF8
		})
		m.bus.ReserveAddress(types.KEY1, func(v byte) byte {
			// only the armed bit is writable, bit 7 reflects the current speed
			return m.bus.Get(types.KEY1)&types.Bit7 | v&types.Bit0 | 0x7E
		})
	}
	m.bus.ReserveAddress(types.DMA, func(v byte) byte {
		m.dma(v)
		return v
	})
}

// Reset restores the power on banking state: ROM bank 1, VRAM
// bank 0, WRAM bank 1 and external RAM disabled. Memory contents
// are left untouched.
func (m *MMU) Reset() {
	m.romBank = 1
	m.ramBank = 0
	m.vramBank = 0
	m.wramBank = 1
	m.ResetController()

	m.remap()
}

// ResetController unmaps the RTC and restores the power on RAM
// enable. It is used in place of LoadController for states that
// predate the controller trailer.
func (m *MMU) ResetController() {
	m.rtc = 0
	// cartridges without a bank controller have their RAM always enabled
	m.ramEnabled = m.cart.Kind() == cartridge.KindNone
}

// remap rebuilds the entire slot table from the current bank registers.
func (m *MMU) remap() {
	for i := 0; i < 4; i++ {
		m.slots[i] = m.page0[i*slotSize : (i+1)*slotSize]
	}
	m.mapROM()
	m.mapVRAM()
	m.mapERAM()
	m.mapWRAM()
}

func (m *MMU) mapROM() {
	page := m.cart.Page(m.romBank)
	for i := 0; i < 4; i++ {
		m.slots[4+i] = page[i*slotSize : (i+1)*slotSize]
	}
}

func (m *MMU) mapVRAM() {
	m.slots[8] = m.vram[m.vramBank][:slotSize]
	m.slots[9] = m.vram[m.vramBank][slotSize:]
}

func (m *MMU) mapERAM() {
	if len(m.eram) == 0 {
		m.slots[10], m.slots[11] = nil, nil
		return
	}
	bank := m.eram[m.ramBank*ERAMBankSize:]
	m.slots[10] = bank[:min(slotSize, len(bank))]
	if len(bank) > slotSize {
		m.slots[11] = bank[slotSize:min(ERAMBankSize, len(bank))]
	} else {
		// 2KB RAM carts only populate part of the first slot
		m.slots[11] = nil
	}
}

func (m *MMU) mapWRAM() {
	if m.wramBank == 0 {
		m.wramBank = 1
	}
	m.slots[12] = m.wram[0][:]
	m.slots[13] = m.wram[m.wramBank][:]
	// echo of 0xC000 - 0xDDFF
	m.slots[14] = m.slots[12]
	m.slots[15] = m.slots[13]
}

// eramAccessible reports whether the external RAM window is
// currently backed by RAM.
func (m *MMU) eramAccessible(address uint16) bool {
	if !m.ramEnabled || m.rtc != 0 {
		return false
	}
	slot := m.slots[address>>12]
	return int(address&0xFFF) < len(slot)
}

// Read returns the value at the given address. It handles all the memory
// banks, mirroring, I/O, etc.
func (m *MMU) Read(address uint16) uint8 {
	switch {
	case address < 0x8000:
		if m.patcher != nil {
			return m.patcher.Patch(address, m.slots[address>>12][address&0xFFF])
		}
		return m.slots[address>>12][address&0xFFF]
	case address < 0xA000:
		return m.slots[address>>12][address&0xFFF]
	case address < 0xC000:
		if !m.eramAccessible(address) {
			return 0xFF
		}
		return m.slots[address>>12][address&0xFFF]
	case address < 0xFE00:
		return m.slots[address>>12][address&0xFFF]
	case address < 0xFEA0:
		return m.oam[address-0xFE00]
	case address < 0xFF00:
		// unusable memory
		return 0x00
	default:
		return m.bus.Read(address)
	}
}

// Write writes the value to the given address.
func (m *MMU) Write(address uint16, value uint8) {
	switch {
	case address < 0x8000:
		m.mbc.Write(address, value)
	case address < 0xA000:
		m.slots[address>>12][address&0xFFF] = value
	case address < 0xC000:
		if !m.eramAccessible(address) {
			return
		}
		m.slots[address>>12][address&0xFFF] = value
	case address < 0xFE00:
		m.slots[address>>12][address&0xFFF] = value
	case address < 0xFEA0:
		m.oam[address-0xFE00] = value
	case address < 0xFF00:
		// unusable memory
	default:
		m.bus.Write(address, value)
	}
}

// SetPatcher sets the patcher applied to ROM reads, nil removes it.
func (m *MMU) SetPatcher(p Patcher) {
	m.patcher = p
}

// WriteERAM writes to the given bank of external RAM, whether or not
// it is mapped or enabled. Writes outside the RAM are ignored.
func (m *MMU) WriteERAM(bank int, address uint16, value uint8) {
	i := bank*ERAMBankSize + int(address-0xA000)
	if address < 0xA000 || address >= 0xC000 || i < 0 || i >= len(m.eram) {
		return
	}
	m.eram[i] = value
}

// Read16 reads a little endian 16-bit value.
func (m *MMU) Read16(address uint16) uint16 {
	return uint16(m.Read(address)) | uint16(m.Read(address+1))<<8
}

// Write16 writes a little endian 16-bit value.
func (m *MMU) Write16(address uint16, value uint16) {
	m.Write(address, uint8(value))
	m.Write(address+1, uint8(value>>8))
}

// dma copies 160 bytes from value<<8 into OAM.
func (m *MMU) dma(value uint8) {
	source := uint16(value) << 8
	for i := uint16(0); i < OAMSize; i++ {
		m.oam[i] = m.Read(source + i)
	}
}

// ROMBank implements cartridge.Banker.
func (m *MMU) ROMBank() int {
	return m.romBank
}

// SetROMBank implements cartridge.Banker. The bank wraps around the
// number of ROM pages.
func (m *MMU) SetROMBank(bank int) {
	bank %= m.pages
	if bank == m.romBank {
		return
	}
	m.log.Debugf("mmu: ROM bank %d -> %d", m.romBank, bank)
	m.romBank = bank
	m.mapROM()
}

// RAMBank implements cartridge.Banker.
func (m *MMU) RAMBank() int {
	return m.ramBank
}

// SetRAMBank implements cartridge.Banker. The bank wraps around the
// number of external RAM banks.
func (m *MMU) SetRAMBank(bank int) {
	if banks := m.ramBanks(); banks == 0 {
		bank = 0
	} else {
		bank %= banks
	}
	m.ramBank = bank
	m.mapERAM()
}

// ramBanks returns the number of external RAM banks, counting a
// partially populated last bank.
func (m *MMU) ramBanks() int {
	return (len(m.eram) + ERAMBankSize - 1) / ERAMBankSize
}

// EnableRAM implements cartridge.Banker.
func (m *MMU) EnableRAM(enabled bool) {
	m.ramEnabled = enabled
}

// MapRTC implements cartridge.Banker. Clock registers are not
// emulated, while one is mapped the external RAM window reads 0xFF.
func (m *MMU) MapRTC(register uint8) {
	if register != 0 && (register < 0x08 || register > 0x0C) {
		panic(fmt.Sprintf("mmu: invalid RTC register %02X", register))
	}
	m.rtc = register
}

// VRAM returns the given VRAM bank.
func (m *MMU) VRAM(bank int) *[VRAMBankSize]byte {
	return &m.vram[bank]
}

// OAM returns the sprite attribute table.
func (m *MMU) OAM() *[OAMSize]byte {
	return &m.oam
}

// ERAM returns the external RAM of the cartridge, which is what
// gets persisted for battery backed cartridges.
func (m *MMU) ERAM() []byte {
	return m.eram
}

var _ types.Stater = (*MMU)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - VRAM (2 x 8KB)
//   - WRAM (8 x 4KB)
//   - OAM (160B)
//   - IO (256B)
//   - external RAM
//   - ROM bank (uint16), VRAM bank, WRAM bank, external RAM bank (uint8)
func (m *MMU) Load(s *types.State) {
	for i := range m.vram {
		s.ReadData(m.vram[i][:])
	}
	for i := range m.wram {
		s.ReadData(m.wram[i][:])
	}
	s.ReadData(m.oam[:])
	m.bus.Load(s)
	s.ReadData(m.eram)

	m.romBank = int(s.Read16()) % m.pages
	m.vramBank = int(s.Read8() & 1)
	m.wramBank = int(s.Read8() & 7)
	m.ramBank = int(s.Read8())
	if banks := m.ramBanks(); banks > 0 {
		m.ramBank %= banks
	} else {
		m.ramBank = 0
	}
	m.remap()
}

// Save implements the types.Stater interface.
//
// The values are saved in the same order as Load.
func (m *MMU) Save(s *types.State) {
	for i := range m.vram {
		s.WriteData(m.vram[i][:])
	}
	for i := range m.wram {
		s.WriteData(m.wram[i][:])
	}
	s.WriteData(m.oam[:])
	m.bus.Save(s)
	s.WriteData(m.eram)

	s.Write16(uint16(m.romBank))
	s.Write8(uint8(m.vramBank))
	s.Write8(uint8(m.wramBank))
	s.Write8(uint8(m.ramBank))
}

// LoadController loads the bank controller state appended in
// version 2 of the state stream: the mapped RTC register and
// whether external RAM is enabled.
func (m *MMU) LoadController(s *types.State) {
	rtc := s.Read8()
	if rtc != 0 && (rtc < 0x08 || rtc > 0x0C) {
		rtc = 0
	}
	m.rtc = rtc
	m.ramEnabled = s.ReadBool()
}

// SaveController saves the state read by LoadController.
func (m *MMU) SaveController(s *types.State) {
	s.Write8(m.rtc)
	s.WriteBool(m.ramEnabled)
}
