// Package cartridge provides the cartridge page source and the
// bank controllers found in DMG and CGB cartridges. The cartridge
// holds the game ROM, everything else (external RAM, bank
// registers) is owned by the address space.
package cartridge

import (
	"fmt"
)

// PageSize is the size of a ROM page.
const PageSize = 0x4000

// PageSource provides the raw ROM of a cartridge one page at a
// time. Page 0 must always be resolvable; any other page need
// only stay valid until the next call to Page.
type PageSource interface {
	Page(index int) []byte
	ROMSize() int
	RAMSize() int
	Kind() Kind
}

// Cartridge is a PageSource holding the entire ROM in memory.
type Cartridge struct {
	rom    []byte
	header Header
}

var _ PageSource = (*Cartridge)(nil)

// New returns a new Cartridge for the given ROM. The ROM is padded
// with 0xFF up to the size declared in its header.
func New(rom []byte) (*Cartridge, error) {
	// parse the cartridge header (0x0100 - 0x014F)
	header, err := parseHeader(rom)
	if err != nil {
		return nil, err
	}

	size := int(header.ROMSize)
	if len(rom) > size {
		return nil, fmt.Errorf("cartridge: ROM is %d bytes, header declares %d", len(rom), size)
	}
	padded := make([]byte, size)
	copy(padded, rom)
	for i := len(rom); i < size; i++ {
		padded[i] = 0xFF
	}

	return &Cartridge{
		rom:    padded,
		header: header,
	}, nil
}

// Page returns the given 16KB ROM page.
func (c *Cartridge) Page(index int) []byte {
	if index < 0 || index >= c.Pages() {
		panic(fmt.Sprintf("cartridge: page %d out of range (%d pages)", index, c.Pages()))
	}
	return c.rom[index*PageSize : (index+1)*PageSize]
}

// Pages returns the number of ROM pages.
func (c *Cartridge) Pages() int {
	return len(c.rom) / PageSize
}

// ROMSize returns the size of the ROM in bytes.
func (c *Cartridge) ROMSize() int {
	return int(c.header.ROMSize)
}

// RAMSize returns the size of the external RAM in bytes.
func (c *Cartridge) RAMSize() int {
	return int(c.header.RAMSize)
}

// Kind returns the bank controller used by the cartridge.
func (c *Cartridge) Kind() Kind {
	return c.header.CartridgeType.Kind()
}

// Header returns the parsed cartridge header.
func (c *Cartridge) Header() Header {
	return c.header
}

// Title returns the title of the cartridge.
func (c *Cartridge) Title() string {
	return c.header.Title
}
