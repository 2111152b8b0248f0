// Package ppu provides the scanline renderer of the Game Boy. Each
// line is timed through the OAM scan, pixel transfer and HBlank
// modes, and composited in one go at the end of pixel transfer
// before being handed to the Display.
package ppu

import (
	"fmt"

	"github.com/thelolagemann/gbcemu/internal/interrupts"
	"github.com/thelolagemann/gbcemu/internal/io"
	"github.com/thelolagemann/gbcemu/internal/ppu/palette"
	"github.com/thelolagemann/gbcemu/internal/types"
)

const (
	// ScreenWidth is the width of the screen in pixels.
	ScreenWidth = 160
	// ScreenHeight is the height of the screen in pixels.
	ScreenHeight = 144

	// DotsPerLine is the number of dots taken by every line.
	DotsPerLine = 456
	// LinesPerFrame is the number of lines, including VBlank.
	LinesPerFrame = 154
	// DotsPerFrame is the number of dots taken by a frame.
	DotsPerFrame = DotsPerLine * LinesPerFrame
)

const (
	// ModeHBlank (Mode 0) - Horizontal Blanking Period
	//
	// 	Duration 204 dots
	// 	- STAT interrupt available if enabled via STAT.3
	ModeHBlank uint8 = iota

	// ModeVBlank (Mode 1) - Vertical Blanking Period
	//
	//	Duration 4560 dots (10 lines)
	//	- VBlank interrupt requested on entry
	//	- STAT interrupt available if enabled via STAT.4
	//	- Active during LY 144-153
	ModeVBlank

	// ModeOAM (Mode 2) - OAM Scan
	//
	//	Duration: 80 dots
	//	- STAT interrupt available if enabled via STAT.5
	//	- Occurs at start of each line
	ModeOAM

	// ModeVRAM (Mode 3) - Pixel Transfer
	//
	//	Duration: 172 dots
	//	- No STAT interrupts available
	//	- The line is composited at the end of this mode
	ModeVRAM
)

// modeDots holds the duration of each mode, for a single line.
var modeDots = [4]uint32{
	ModeHBlank: 204,
	ModeVBlank: DotsPerLine,
	ModeOAM:    80,
	ModeVRAM:   172,
}

// Display receives the composited lines of each frame.
type Display interface {
	// DrawLine is called with each visible line once it has been
	// composited. The line is only valid for the duration of the call.
	DrawLine(y int, line *[ScreenWidth]palette.Colour)
	// WaitVSync is called once per frame, and may block to pace
	// emulation.
	WaitVSync()
}

type nullDisplay struct{}

func (nullDisplay) DrawLine(int, *[ScreenWidth]palette.Colour) {}
func (nullDisplay) WaitVSync()                                 {}

// PPU implements the Game Boy's (P)ixel (P)rocessing (U)nit.
//
// LCDC, STAT, SCY, SCX, LY, LYC, BGP, OBP0, OBP1, WY and WX live in
// the io.Bus, the PPU only keeps its position within the current
// mode.
type PPU struct {
	dots uint32 // dots spent in the current mode

	// line buffers, swapped after each line
	lines   [2][ScreenWidth]palette.Colour
	current int
	// colour indices of the background and window, used for
	// sprite priority
	bgIndices [ScreenWidth]uint8

	base palette.Palette

	vram *[0x2000]byte
	oam  *[160]byte

	b       *io.Bus
	irq     *interrupts.Service
	display Display
}

// New returns a new PPU reading tiles from vram and sprites from
// oam. A nil display discards every line.
func New(b *io.Bus, irq *interrupts.Service, vram *[0x2000]byte, oam *[160]byte, display Display) *PPU {
	p := &PPU{
		base: palette.Palettes[palette.Greyscale],
		vram: vram,
		oam:  oam,
		b:    b,
		irq:  irq,
	}
	p.SetDisplay(display)

	b.ReserveAddress(types.STAT, func(v byte) byte {
		// the mode and coincidence flag are read only
		return 0x80 | v&0x78 | b.Get(types.STAT)&0x07
	})
	b.ReserveAddress(types.LY, func(v byte) byte {
		// read only
		return b.Get(types.LY)
	})
	b.ReserveAddress(types.LYC, func(v byte) byte {
		p.compareLY(b.Get(types.LY), v)
		return v
	})

	return p
}

// SetDisplay replaces the display, a nil display discards every line.
func (p *PPU) SetDisplay(display Display) {
	if display == nil {
		display = nullDisplay{}
	}
	p.display = display
}

// SetPalette sets the colours the 4 shades are mapped to.
func (p *PPU) SetPalette(base palette.Palette) {
	p.base = base
}

// Reset starts a new frame, at the OAM scan of line 0.
func (p *PPU) Reset() {
	p.dots = 0
	p.b.Set(types.STAT, 0x80|p.b.Get(types.STAT)&0x78)
	p.setMode(ModeOAM)
	p.setLY(0)
}

// Mode returns the current mode.
func (p *PPU) Mode() uint8 {
	return p.b.Get(types.STAT) & 0b11
}

// Step advances the PPU by the given number of CPU cycles. In
// double speed mode every mode takes twice as many cycles. It
// returns true when a frame has been completed, which happens
// as LY wraps back to 0.
func (p *PPU) Step(cycles uint32, doubleSpeed bool) bool {
	frame := false
	p.dots += cycles
	for {
		mode := p.Mode()
		budget := modeDots[mode]
		if doubleSpeed {
			budget *= 2
		}
		if p.dots < budget {
			return frame
		}
		p.dots -= budget

		switch mode {
		case ModeOAM:
			p.setMode(ModeVRAM)
		case ModeVRAM:
			p.renderLine(p.b.Get(types.LY))
			p.setMode(ModeHBlank)
		case ModeHBlank:
			ly := p.b.Get(types.LY) + 1
			p.setLY(ly)
			if ly == ScreenHeight {
				p.setMode(ModeVBlank)
				p.irq.Request(interrupts.VBlankFlag)
			} else {
				p.setMode(ModeOAM)
			}
		case ModeVBlank:
			ly := p.b.Get(types.LY) + 1
			if ly == LinesPerFrame {
				ly = 0
				frame = true
				p.setMode(ModeOAM)
			}
			p.setLY(ly)
		default:
			panic(fmt.Sprintf("ppu: invalid mode %d", mode))
		}
	}
}

// setMode sets the mode in STAT, requesting the STAT interrupt if
// it has been enabled for the new mode.
func (p *PPU) setMode(mode uint8) {
	stat := p.b.Get(types.STAT)&^0b11 | mode
	p.b.Set(types.STAT, stat)

	var source uint8
	switch mode {
	case ModeHBlank:
		source = types.Bit3
	case ModeVBlank:
		source = types.Bit4
	case ModeOAM:
		source = types.Bit5
	}
	if stat&source != 0 {
		p.irq.Request(interrupts.LCDFlag)
	}
}

// setLY sets LY, and compares it against LYC.
func (p *PPU) setLY(ly uint8) {
	p.b.Set(types.LY, ly)
	p.compareLY(ly, p.b.Get(types.LYC))
}

// compareLY updates the coincidence flag (STAT.2), requesting the
// STAT interrupt if enabled via STAT.6.
func (p *PPU) compareLY(ly, lyc uint8) {
	if ly == lyc {
		p.b.SetBit(types.STAT, types.Bit2)
		if p.b.TestBit(types.STAT, types.Bit6) {
			p.irq.Request(interrupts.LCDFlag)
		}
	} else {
		p.b.ClearBit(types.STAT, types.Bit2)
	}
}

// ResetDots restarts the current mode. It is used in place of Load
// for states that predate the dot accumulator.
func (p *PPU) ResetDots() {
	p.dots = 0
}

var _ types.Stater = (*PPU)(nil)

// Load implements the types.Stater interface. The registers are
// restored with the io.Bus, only the dot counter is loaded.
func (p *PPU) Load(s *types.State) {
	p.dots = s.Read32()
}

// Save implements the types.Stater interface.
func (p *PPU) Save(s *types.State) {
	s.Write32(p.dots)
}
