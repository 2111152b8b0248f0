// Package asm builds small programs and cartridge images from
// assembly text, for tests and tools which need to run code
// without a game ROM.
package asm

import (
	"fmt"

	"github.com/thelolagemann/gbcemu/internal/cartridge"
	"github.com/thelolagemann/gbcemu/internal/cpu"
)

// EntryPoint is where programs are placed in a ROM built by ROM,
// just past the cartridge header.
const EntryPoint = cartridge.HeaderEnd

// Program accumulates machine code. The first error encountered
// is kept, and reported by Code.
type Program struct {
	code []byte
	err  error
}

// New returns a new, empty program.
func New() *Program {
	return &Program{}
}

// Asm assembles each line, appending it to the program.
func (p *Program) Asm(lines ...string) *Program {
	for _, line := range lines {
		if p.err != nil {
			return p
		}
		code, err := cpu.Assemble(line)
		if err != nil {
			p.err = fmt.Errorf("asm: line %q: %w", line, err)
			return p
		}
		p.code = append(p.code, code...)
	}
	return p
}

// Bytes appends raw bytes to the program.
func (p *Program) Bytes(b ...byte) *Program {
	p.code = append(p.code, b...)
	return p
}

// Len returns the current size of the program.
func (p *Program) Len() int {
	return len(p.code)
}

// Code returns the assembled program.
func (p *Program) Code() ([]byte, error) {
	return p.code, p.err
}

// Header describes the cartridge header written by ROM.
type Header struct {
	Title string
	Type  cartridge.Type
	// ROMSize and RAMSize are the header size codes.
	ROMSize uint8
	RAMSize uint8
	CGB     bool
}

// ROM returns a cartridge image with a valid header, jumping to
// the program placed at EntryPoint.
func ROM(h Header, code []byte) ([]byte, error) {
	size := (32 * 1024) << h.ROMSize
	if EntryPoint+len(code) > size {
		return nil, fmt.Errorf("asm: program of %d bytes does not fit in a %d byte ROM", len(code), size)
	}

	rom := make([]byte, size)
	// 0x0100 - NOP; JP EntryPoint
	copy(rom[cartridge.HeaderStart:], []byte{0x00, 0xC3, uint8(EntryPoint & 0xFF), uint8(EntryPoint >> 8)})
	copy(rom[0x134:0x143], h.Title)
	if h.CGB {
		rom[cartridge.HeaderCGBFlag] = 0x80
	}
	rom[cartridge.HeaderCartridgeType] = uint8(h.Type)
	rom[cartridge.HeaderROMSize] = h.ROMSize
	rom[cartridge.HeaderRAMSize] = h.RAMSize

	var sum uint8
	for _, b := range rom[0x134:0x14D] {
		sum = sum - b - 1
	}
	rom[0x14D] = sum

	copy(rom[EntryPoint:], code)
	return rom, nil
}

// Cartridge assembles the lines into a 32KB ROM only cartridge.
func Cartridge(lines ...string) (*cartridge.Cartridge, error) {
	code, err := New().Asm(lines...).Code()
	if err != nil {
		return nil, err
	}
	rom, err := ROM(Header{Title: "ASM"}, code)
	if err != nil {
		return nil, err
	}
	return cartridge.New(rom)
}
