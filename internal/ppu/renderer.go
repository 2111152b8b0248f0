package ppu

import (
	"github.com/thelolagemann/gbcemu/internal/ppu/palette"
	"github.com/thelolagemann/gbcemu/internal/types"
)

// VRAM offsets, relative to 0x8000.
const (
	tileDataSigned = 0x1000
	tileMap0       = 0x1800
	tileMap1       = 0x1C00
)

// renderLine composites the background, window and sprites of
// line ly and hands the result to the display.
func (p *PPU) renderLine(ly uint8) {
	if ly >= ScreenHeight {
		return
	}
	line := &p.lines[p.current]
	lcdc := p.b.Get(types.LCDC)

	if lcdc&types.Bit7 == 0 {
		p.blank(line)
	} else {
		if lcdc&types.Bit0 != 0 {
			bgp := palette.ByteToPalette(p.base, p.b.Get(types.BGP))
			wy := p.b.Get(types.WY)
			winStart := int(p.b.Get(types.WX)) - 7
			window := lcdc&types.Bit5 != 0 && ly >= wy && winStart < ScreenWidth

			if !window || winStart > 0 {
				p.renderBackground(line, lcdc, ly, bgp)
			}
			if window {
				p.renderWindow(line, lcdc, ly-wy, winStart, bgp)
			}
		} else {
			p.blank(line)
		}

		if lcdc&types.Bit1 != 0 {
			p.renderSprites(line, lcdc, ly)
		}
	}

	p.display.DrawLine(int(ly), line)
	p.current ^= 1
}

// blank fills the line with colour 0.
func (p *PPU) blank(line *[ScreenWidth]palette.Colour) {
	for x := range line {
		line[x] = p.base[0]
		p.bgIndices[x] = 0
	}
}

// tileRow returns the low and high bit planes of a row of a tile.
// Background and window tiles are addressed through LCDC.4, sprites
// always use the unsigned 0x8000 method.
func (p *PPU) tileRow(tile uint8, row uint8, unsigned bool) (uint8, uint8) {
	var addr int
	if unsigned {
		addr = int(tile) * 16
	} else {
		addr = tileDataSigned + int(int8(tile))*16
	}
	addr += int(row) * 2
	return p.vram[addr], p.vram[addr+1]
}

// colourIndex returns the 2 bit colour index of the pixel at bit of
// the given bit planes, with bit 7 being the leftmost pixel.
func colourIndex(lo, hi uint8, bit uint8) uint8 {
	return (lo>>bit)&1 | ((hi>>bit)&1)<<1
}

// renderBackground draws the background across the whole line.
func (p *PPU) renderBackground(line *[ScreenWidth]palette.Colour, lcdc, ly uint8, bgp palette.Palette) {
	tileMap := tileMap0
	if lcdc&types.Bit3 != 0 {
		tileMap = tileMap1
	}
	unsigned := lcdc&types.Bit4 != 0
	y := ly + p.b.Get(types.SCY)
	scx := p.b.Get(types.SCX)
	rowBase := tileMap + int(y/8)*32

	for x := 0; x < ScreenWidth; {
		bx := scx + uint8(x)
		lo, hi := p.tileRow(p.vram[rowBase+int(bx/8)], y%8, unsigned)
		for px := bx % 8; px < 8 && x < ScreenWidth; px++ {
			index := colourIndex(lo, hi, 7-px)
			line[x] = bgp[index]
			p.bgIndices[x] = index
			x++
		}
	}
}

// renderWindow draws row wy of the window from winStart to the end
// of the line.
func (p *PPU) renderWindow(line *[ScreenWidth]palette.Colour, lcdc, wy uint8, winStart int, bgp palette.Palette) {
	tileMap := tileMap0
	if lcdc&types.Bit6 != 0 {
		tileMap = tileMap1
	}
	unsigned := lcdc&types.Bit4 != 0
	rowBase := tileMap + int(wy/8)*32

	x := winStart
	if x < 0 {
		x = 0
	}
	for ; x < ScreenWidth; x++ {
		wx := x - winStart
		lo, hi := p.tileRow(p.vram[rowBase+wx/8], wy%8, unsigned)
		index := colourIndex(lo, hi, 7-uint8(wx%8))
		line[x] = bgp[index]
		p.bgIndices[x] = index
	}
}

// renderSprites draws every sprite covering line ly. Sprites are
// drawn from the highest OAM index down, so that where sprites
// overlap the lowest index is left on top.
func (p *PPU) renderSprites(line *[ScreenWidth]palette.Colour, lcdc, ly uint8) {
	height := 8
	if lcdc&types.Bit2 != 0 {
		height = 16
	}
	obp := [2]palette.Palette{
		palette.ByteToPalette(p.base, p.b.Get(types.OBP0)),
		palette.ByteToPalette(p.base, p.b.Get(types.OBP1)),
	}

	for i := MaxSprites - 1; i >= 0; i-- {
		s := SpriteAt(p.oam, i)
		top := int(s.Y) - 16
		row := int(ly) - top
		if row < 0 || row >= height {
			continue
		}
		if s.FlipY() {
			row = height - 1 - row
		}
		tile := s.Tile
		if height == 16 {
			tile &= 0xFE
		}
		lo, hi := p.tileRow(tile, uint8(row), true)

		pal := obp[0]
		if s.UseOBP1() {
			pal = obp[1]
		}
		left := int(s.X) - 8
		for px := 0; px < 8; px++ {
			x := left + px
			if x < 0 || x >= ScreenWidth {
				continue
			}
			bit := uint8(7 - px)
			if s.FlipX() {
				bit = uint8(px)
			}
			index := colourIndex(lo, hi, bit)
			if index == 0 {
				continue
			}
			if s.Behind() && p.bgIndices[x] != 0 {
				continue
			}
			line[x] = pal[index]
		}
	}
}
