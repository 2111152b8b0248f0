package palette

// Colour is a packed RGB565 colour, as handed to displays.
//
//	Bit 15-11 - Red
//	Bit 10-5  - Green
//	Bit 4-0   - Blue
type Colour uint16

// RGB packs an 8-bit per channel colour into a Colour.
func RGB(r, g, b uint8) Colour {
	return Colour(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// RGB expands the colour back to 8 bits per channel, replicating
// the high bits into the low bits so that white stays white.
func (c Colour) RGB() (r, g, b uint8) {
	r5 := uint8(c>>11) & 0x1F
	g6 := uint8(c>>5) & 0x3F
	b5 := uint8(c) & 0x1F
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// RGBA implements the color.Color interface.
func (c Colour) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := c.RGB()
	r = uint32(r8) * 0x101
	g = uint32(g8) * 0x101
	b = uint32(b8) * 0x101
	return r, g, b, 0xFFFF
}
