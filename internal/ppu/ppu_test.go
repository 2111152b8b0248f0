package ppu

import (
	"testing"

	"github.com/thelolagemann/gbcemu/internal/interrupts"
	"github.com/thelolagemann/gbcemu/internal/io"
	"github.com/thelolagemann/gbcemu/internal/ppu/palette"
	"github.com/thelolagemann/gbcemu/internal/types"
)

// recordingDisplay keeps a copy of every line drawn.
type recordingDisplay struct {
	lines [ScreenHeight][ScreenWidth]palette.Colour
	drawn int
}

func (d *recordingDisplay) DrawLine(y int, line *[ScreenWidth]palette.Colour) {
	d.lines[y] = *line
	d.drawn++
}

func (d *recordingDisplay) WaitVSync() {}

type testPPU struct {
	*PPU
	b       *io.Bus
	irq     *interrupts.Service
	vram    *[0x2000]byte
	oam     *[160]byte
	display *recordingDisplay
}

func newTestPPU() *testPPU {
	b := io.NewBus()
	irq := interrupts.NewService(b)
	vram := new([0x2000]byte)
	oam := new([160]byte)
	d := &recordingDisplay{}
	p := New(b, irq, vram, oam, d)
	b.Set(types.LCDC, 0x91)
	b.Set(types.BGP, 0xE4) // identity mapping
	b.Set(types.OBP0, 0xE4)
	b.Set(types.OBP1, 0x1B) // reversed
	p.Reset()
	return &testPPU{p, b, irq, vram, oam, d}
}

var shades = palette.Palettes[palette.Greyscale]

// fillTile sets every pixel of a tile to the given colour index,
// using the unsigned addressing method.
func (p *testPPU) fillTile(tile int, index uint8) {
	var lo, hi uint8
	if index&1 != 0 {
		lo = 0xFF
	}
	if index&2 != 0 {
		hi = 0xFF
	}
	for row := 0; row < 8; row++ {
		p.vram[tile*16+row*2] = lo
		p.vram[tile*16+row*2+1] = hi
	}
}

func (p *testPPU) runFrame(t *testing.T) {
	t.Helper()
	for i := 0; i < DotsPerFrame; i += 4 {
		p.Step(4, false)
	}
}

func TestPPU_ModeSequence(t *testing.T) {
	p := newTestPPU()

	steps := []struct {
		dots uint32
		mode uint8
		ly   uint8
	}{
		{79, ModeOAM, 0},
		{1, ModeVRAM, 0},
		{171, ModeVRAM, 0},
		{1, ModeHBlank, 0},
		{203, ModeHBlank, 0},
		{1, ModeOAM, 1},
	}
	for i, s := range steps {
		p.Step(s.dots, false)
		if m := p.Mode(); m != s.mode {
			t.Errorf("step %d: expected mode %d, got %d", i, s.mode, m)
		}
		if ly := p.b.Read(types.LY); ly != s.ly {
			t.Errorf("step %d: expected LY %d, got %d", i, s.ly, ly)
		}
	}
}

func TestPPU_Frame(t *testing.T) {
	p := newTestPPU()

	// the last dot of line 143 enters VBlank
	if p.Step(DotsPerLine*ScreenHeight-1, false) {
		t.Fatalf("frame completed early")
	}
	if p.irq.Flag()&interrupts.VBlankFlag != 0 {
		t.Fatalf("VBlank requested early")
	}
	p.Step(1, false)
	if p.Mode() != ModeVBlank || p.b.Read(types.LY) != ScreenHeight {
		t.Fatalf("expected VBlank at LY 144, got mode %d LY %d", p.Mode(), p.b.Read(types.LY))
	}
	if p.irq.Flag()&interrupts.VBlankFlag == 0 {
		t.Errorf("expected VBlank interrupt")
	}
	if p.display.drawn != ScreenHeight {
		t.Errorf("expected %d lines drawn, got %d", ScreenHeight, p.display.drawn)
	}

	if p.Step(DotsPerLine*10-1, false) {
		t.Fatalf("frame completed early")
	}
	if ly := p.b.Read(types.LY); ly != 153 {
		t.Errorf("expected LY 153, got %d", ly)
	}
	if !p.Step(1, false) {
		t.Errorf("expected frame to complete")
	}
	if p.Mode() != ModeOAM || p.b.Read(types.LY) != 0 {
		t.Errorf("expected OAM scan of LY 0, got mode %d LY %d", p.Mode(), p.b.Read(types.LY))
	}
}

func TestPPU_DoubleSpeed(t *testing.T) {
	p := newTestPPU()
	p.Step(80, true)
	if p.Mode() != ModeOAM {
		t.Errorf("expected OAM scan to take 160 cycles in double speed")
	}
	p.Step(80, true)
	if p.Mode() != ModeVRAM {
		t.Errorf("expected pixel transfer after 160 cycles, got mode %d", p.Mode())
	}
}

func TestPPU_StatInterrupts(t *testing.T) {
	tests := []struct {
		name   string
		enable uint8
		dots   uint32
	}{
		{"hblank", types.Bit3, 80 + 172},
		{"vblank", types.Bit4, DotsPerLine * ScreenHeight},
		{"oam", types.Bit5, DotsPerLine},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPPU()
			p.b.Write(types.STAT, tt.enable)
			p.Step(tt.dots-1, false)
			p.b.Set(types.IF, 0)
			p.Step(1, false)
			if p.irq.Flag()&interrupts.LCDFlag == 0 {
				t.Errorf("expected STAT interrupt")
			}
		})
	}
}

func TestPPU_LYC(t *testing.T) {
	p := newTestPPU()
	p.b.Write(types.STAT, types.Bit6)
	p.b.Write(types.LYC, 2)
	if p.b.TestBit(types.STAT, types.Bit2) {
		t.Fatalf("coincidence flag set with LY 0")
	}

	p.Step(DotsPerLine*2-1, false)
	if p.irq.Flag()&interrupts.LCDFlag != 0 {
		t.Fatalf("STAT interrupt requested early")
	}
	p.Step(1, false)
	if !p.b.TestBit(types.STAT, types.Bit2) {
		t.Errorf("expected coincidence flag at LY 2")
	}
	if p.irq.Flag()&interrupts.LCDFlag == 0 {
		t.Errorf("expected STAT interrupt at LY 2")
	}

	// writing LYC compares immediately
	p.b.Write(types.LYC, 3)
	if p.b.TestBit(types.STAT, types.Bit2) {
		t.Errorf("expected coincidence flag to clear")
	}
}

func TestPPU_ReadOnlyRegisters(t *testing.T) {
	p := newTestPPU()
	p.Step(100, false) // mode 3
	p.b.Write(types.STAT, 0xFF)
	if stat := p.b.Read(types.STAT); stat&0x07 != ModeVRAM|types.Bit2 {
		t.Errorf("expected mode and coincidence to stay read only, got 0x%02X", stat)
	}
	p.b.Write(types.LY, 0x42)
	if ly := p.b.Read(types.LY); ly != 0 {
		t.Errorf("expected LY to be read only, got %d", ly)
	}
}

func TestPPU_Background(t *testing.T) {
	p := newTestPPU()
	p.fillTile(1, 3)
	p.vram[tileMap0] = 1 // top left tile
	p.b.Set(types.SCX, 4)
	p.runFrame(t)

	line := p.display.lines[0]
	for x := 0; x < 4; x++ {
		if line[x] != shades[3] {
			t.Errorf("x=%d: expected shade 3, got %v", x, line[x])
		}
	}
	if line[4] != shades[0] {
		t.Errorf("x=4: expected shade 0, got %v", line[4])
	}
}

func TestPPU_SignedTileData(t *testing.T) {
	p := newTestPPU()
	p.b.Set(types.LCDC, 0x81) // 0x8800 addressing
	// tile 0x80 lives at 0x8800
	for row := 0; row < 8; row++ {
		p.vram[0x0800+row*2] = 0xFF
	}
	p.vram[tileMap0] = 0x80
	p.runFrame(t)
	if c := p.display.lines[0][0]; c != shades[1] {
		t.Errorf("expected shade 1, got %v", c)
	}
}

func TestPPU_BackgroundDisabled(t *testing.T) {
	p := newTestPPU()
	p.fillTile(0, 3)
	p.b.Set(types.LCDC, 0x90)
	p.runFrame(t)
	if c := p.display.lines[10][10]; c != shades[0] {
		t.Errorf("expected blank background, got %v", c)
	}
}

func TestPPU_Window(t *testing.T) {
	p := newTestPPU()
	p.fillTile(2, 2)
	for i := 0; i < 32*32; i++ {
		p.vram[tileMap1+i] = 2
	}
	// window uses 0x9C00, starting at (80, 16)
	p.b.Set(types.LCDC, 0x91|types.Bit5|types.Bit6)
	p.b.Set(types.WX, 87)
	p.b.Set(types.WY, 16)
	p.runFrame(t)

	if c := p.display.lines[15][100]; c != shades[0] {
		t.Errorf("expected background above window, got %v", c)
	}
	if c := p.display.lines[16][79]; c != shades[0] {
		t.Errorf("expected background left of window, got %v", c)
	}
	if c := p.display.lines[16][80]; c != shades[2] {
		t.Errorf("expected window at (80, 16), got %v", c)
	}
}

func TestPPU_SpriteOAMOrder(t *testing.T) {
	p := newTestPPU()
	p.b.Set(types.LCDC, 0x93)
	p.fillTile(1, 1)
	p.fillTile(2, 2)

	// sprite 5 is drawn first, sprite 0 overlaps it from x=4
	copy(p.oam[5*4:], []byte{16, 8, 2, 0})
	copy(p.oam[0:], []byte{16, 12, 1, 0})
	// sprite 1 uses OBP1 on line 20
	copy(p.oam[1*4:], []byte{36, 8, 1, types.Bit4})
	p.runFrame(t)

	line := p.display.lines[0]
	if line[0] != shades[2] {
		t.Errorf("x=0: expected sprite 5, got %v", line[0])
	}
	if line[4] != shades[1] {
		t.Errorf("x=4: expected sprite 0 over sprite 5, got %v", line[4])
	}
	if line[12] != shades[0] {
		t.Errorf("x=12: expected background, got %v", line[12])
	}
	if c := p.display.lines[20][0]; c != shades[2] {
		t.Errorf("expected OBP1 to map colour 1 to shade 2, got %v", c)
	}
}

func TestPPU_SpriteBehindBackground(t *testing.T) {
	p := newTestPPU()
	p.b.Set(types.LCDC, 0x93)
	p.fillTile(1, 3)
	p.fillTile(2, 1)
	p.vram[tileMap0] = 2 // colour 1 background at x 0-7
	copy(p.oam[0:], []byte{16, 12, 1, types.Bit7})
	p.runFrame(t)

	line := p.display.lines[0]
	if line[4] != shades[1] {
		t.Errorf("x=4: expected background over sprite, got %v", line[4])
	}
	if line[8] != shades[3] {
		t.Errorf("x=8: expected sprite over background colour 0, got %v", line[8])
	}
}

func TestPPU_TallSprites(t *testing.T) {
	p := newTestPPU()
	p.b.Set(types.LCDC, 0x97)
	p.fillTile(4, 0)
	p.fillTile(5, 3)
	copy(p.oam[0:], []byte{16, 8, 5, types.Bit6}) // tile 5 selects 4/5, flipped
	p.runFrame(t)

	if c := p.display.lines[0][0]; c != shades[3] {
		t.Errorf("expected flipped bottom tile on line 0, got %v", c)
	}
	if c := p.display.lines[8][0]; c != shades[0] {
		t.Errorf("expected flipped top tile on line 8, got %v", c)
	}
}

func TestPPU_LCDOff(t *testing.T) {
	p := newTestPPU()
	p.fillTile(0, 3)
	p.b.Set(types.LCDC, 0x11)
	p.runFrame(t)
	if c := p.display.lines[0][0]; c != shades[0] {
		t.Errorf("expected blank line with LCD off, got %v", c)
	}
	if p.display.drawn != ScreenHeight {
		t.Errorf("expected sequencing to continue, %d lines drawn", p.display.drawn)
	}
}

func TestPPU_State(t *testing.T) {
	p := newTestPPU()
	p.Step(123, false)
	s := types.NewState()
	p.Save(s)

	p2 := newTestPPU()
	p2.Load(types.StateFromBytes(s.Bytes()))
	if p2.dots != p.dots {
		t.Errorf("expected dots %d, got %d", p.dots, p2.dots)
	}
}
