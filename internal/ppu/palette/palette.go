// Package palette provides the colours of the emulated screen.
// The 4 shades of the DMG are mapped to configurable colours,
// which the BGP, OBP0 and OBP1 registers index into.
package palette

import "fmt"

const (
	// Greyscale is the default greyscale palette.
	Greyscale = iota
	// Green is the green palette which attempts to emulate
	// the original colour palette as it would have appeared
	// on the original Game Boy.
	Green
	// Red is a red palette.
	Red
	// Yellow is a yellow palette.
	Yellow
)

// Palette represents a palette. A palette is an array of 4 colours,
// indexed by a 2-bit colour number.
type Palette [4]Colour

// Palettes is a list of all available palettes.
var Palettes = []Palette{
	// Greyscale
	{
		RGB(0xFF, 0xFF, 0xFF),
		RGB(0xCC, 0xCC, 0xCC),
		RGB(0x77, 0x77, 0x77),
		RGB(0x00, 0x00, 0x00),
	},
	// Green
	{
		RGB(0x9B, 0xBC, 0x0F),
		RGB(0x8B, 0xAC, 0x0F),
		RGB(0x30, 0x62, 0x30),
		RGB(0x0F, 0x38, 0x0F),
	},
	// Red
	{
		RGB(0xFF, 0x00, 0x00),
		RGB(0xCC, 0x00, 0x00),
		RGB(0x77, 0x00, 0x00),
		RGB(0x00, 0x00, 0x00),
	},
	// Yellow
	{
		RGB(0xFF, 0xFF, 0x00),
		RGB(0xCC, 0xCC, 0x00),
		RGB(0x77, 0x77, 0x00),
		RGB(0x00, 0x00, 0x00),
	},
}

// Get returns the palette with the given index.
func Get(index int) (Palette, error) {
	if index < 0 || index >= len(Palettes) {
		return Palette{}, fmt.Errorf("palette: no palette %d", index)
	}
	return Palettes[index], nil
}

// ByteToPalette decodes a palette register (BGP, OBP0, OBP1)
// into colours of the given base palette.
//
//	Bit 7-6 - Colour for index 3
//	Bit 5-4 - Colour for index 2
//	Bit 3-2 - Colour for index 1
//	Bit 1-0 - Colour for index 0
func ByteToPalette(base Palette, b byte) Palette {
	var palette Palette
	palette[0] = base[b&0x03]
	palette[1] = base[(b>>2)&0x03]
	palette[2] = base[(b>>4)&0x03]
	palette[3] = base[(b>>6)&0x03]
	return palette
}

// ToByte converts a palette back to a register value, using the
// given base palette. Colours missing from base are mapped to
// shade 0.
func (p Palette) ToByte(base Palette) byte {
	var b byte
	for i, c := range p {
		b |= shade(base, c) << (2 * i)
	}
	return b
}

func shade(base Palette, c Colour) byte {
	for i, p := range base {
		if p == c {
			return byte(i)
		}
	}
	return 0
}
