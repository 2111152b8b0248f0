package types

import "strings"

type Model int // The Model used in emulation.

const (
	Unset  Model = iota // Unset - Model hasn't been set, and is chosen from the cartridge header
	DMGABC              // DMGABC - Standard Game Boy
	CGBABC              // CGBABC - Standard Game Boy Colour
)

var ModelNames = map[Model]string{
	DMGABC: "DMG",
	CGBABC: "CGB",
	Unset:  "Unset",
}

// StringToModel converts a string to a Model.
func StringToModel(s string) Model {
	for m, n := range ModelNames {
		if n == strings.ToUpper(s) {
			return m
		}
	}

	return Unset
}

func (m Model) String() string {
	return ModelNames[m]
}

// ModelRegisters - model specific starting CPU registers,
// in the order A, F, B, C, D, E, H, L.
var ModelRegisters = map[Model][8]uint8{
	Unset:  {0x01, 0xB0, 0x00, 0x13, 0x00, 0xD8, 0x01, 0x4D}, // default to DMG registers
	DMGABC: {0x01, 0xB0, 0x00, 0x13, 0x00, 0xD8, 0x01, 0x4D},
	CGBABC: {0x11, 0x80, 0x00, 0x00, 0x00, 0x08, 0x00, 0x7C},
}

// ModelIO - model specific starting IO registers.
var ModelIO = map[Model]map[HardwareAddress]uint8{
	Unset:  {DIV: 0xAB},
	DMGABC: {DIV: 0xAB},
	CGBABC: {P1: 0xFF, DIV: 0x26},
}

// CommonIO - common starting IO registers.
var CommonIO = map[HardwareAddress]uint8{
	P1:   0xCF,
	TAC:  0xF8,
	NR10: 0x80,
	NR11: 0xBF,
	NR12: 0xF3,
	NR14: 0x00,
	NR21: 0x3F,
	NR22: 0x00,
	NR24: 0xBF,
	NR30: 0x7F,
	NR31: 0xFF,
	NR32: 0x9F,
	NR33: 0xBF,
	NR41: 0xFF,
	NR42: 0x00,
	NR43: 0x00,
	NR50: 0x77,
	NR51: 0xF3,
	NR52: 0xF1,
	BGP:  0xFC,
	OBP0: 0xFF,
	OBP1: 0xFF,
	LCDC: 0x91,
	IF:   0xE1,
	STAT: 0x85,
}
