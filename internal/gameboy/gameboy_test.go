package gameboy

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/thelolagemann/gbcemu/internal/asm"
	"github.com/thelolagemann/gbcemu/internal/cartridge"
	"github.com/thelolagemann/gbcemu/internal/cheats"
	"github.com/thelolagemann/gbcemu/internal/cpu"
	"github.com/thelolagemann/gbcemu/internal/interrupts"
	"github.com/thelolagemann/gbcemu/internal/types"
	"github.com/thelolagemann/gbcemu/pkg/display/digest"
)

// scrollingProgram scrolls the background while filling tile data,
// so that every frame differs.
var scrollingProgram = []string{
	"LD HL,$8000",
	"INC A",
	"LDH ($43),A",
	"LD (HL+),A",
	"RES 4,H",
	"JR -8",
}

func newTestCartridge(t *testing.T, h asm.Header, lines ...string) *cartridge.Cartridge {
	t.Helper()
	code, err := asm.New().Asm(lines...).Code()
	if err != nil {
		t.Fatalf("assembling program: %v", err)
	}
	rom, err := asm.ROM(h, code)
	if err != nil {
		t.Fatalf("building ROM: %v", err)
	}
	cart, err := cartridge.New(rom)
	if err != nil {
		t.Fatalf("loading cartridge: %v", err)
	}
	return cart
}

func newTestGameBoy(t *testing.T, lines []string, opts ...Opt) *GameBoy {
	t.Helper()
	g, err := New(newTestCartridge(t, asm.Header{Title: "TEST"}, lines...), append([]Opt{SkipVSync()}, opts...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func TestGameBoy_AddScenario(t *testing.T) {
	g := newTestGameBoy(t, []string{"LD A,$FF", "LD B,$01", "ADD A,B", "STOP"}, TerminateOnStop())

	err := g.Frame()
	var trap *cpu.Trap
	if !errors.As(err, &trap) || trap.Reason != cpu.TrapStop {
		t.Fatalf("expected STOP trap, got %v", err)
	}
	if g.CPU.A != 0x00 {
		t.Errorf("expected A 0x00, got 0x%02X", g.CPU.A)
	}
	if g.CPU.F != 0xB0 {
		t.Errorf("expected Z, H and C to be set (0xB0), got 0x%02X", g.CPU.F)
	}
	if trap.PC != asm.EntryPoint+5 {
		t.Errorf("expected trap at 0x%04X, got 0x%04X", asm.EntryPoint+5, trap.PC)
	}
	if g.Trapped() != trap {
		t.Errorf("expected Trapped to report the trap")
	}
	if g.Step() != 0 {
		t.Errorf("expected a trapped GameBoy not to step")
	}

	g.Reset()
	if g.Trapped() != nil {
		t.Errorf("expected Reset to clear the trap")
	}
}

func TestGameBoy_IllegalOpcode(t *testing.T) {
	cart := newTestCartridge(t, asm.Header{}, "NOP")
	rom := make([]byte, cart.ROMSize())
	for i := 0; i < cart.Pages(); i++ {
		copy(rom[i*cartridge.PageSize:], cart.Page(i))
	}
	rom[asm.EntryPoint+1] = 0xD3
	cart, err := cartridge.New(rom)
	if err != nil {
		t.Fatal(err)
	}
	g, err := New(cart, SkipVSync())
	if err != nil {
		t.Fatal(err)
	}

	err = g.Run(context.Background())
	var trap *cpu.Trap
	if !errors.As(err, &trap) || trap.Reason != cpu.TrapIllegalOpcode {
		t.Fatalf("expected illegal opcode trap, got %v", err)
	}
	if trap.Opcode != 0xD3 || trap.PC != asm.EntryPoint+1 {
		t.Errorf("unexpected trap %+v", trap)
	}
}

func TestGameBoy_RunCancelled(t *testing.T) {
	g := newTestGameBoy(t, scrollingProgram)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGameBoy_Frame(t *testing.T) {
	d := digest.New()
	g := newTestGameBoy(t, scrollingProgram, WithDisplay(d))

	for i := 0; i < 3; i++ {
		before := g.ElapsedCycles()
		if err := g.Frame(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// the first frame starts part way through line 0
		if cycles := g.ElapsedCycles() - before; i > 0 && (cycles < CyclesPerFrame-24 || cycles > CyclesPerFrame+24) {
			t.Errorf("frame %d took %d cycles", i, cycles)
		}
	}
	if len(d.Sums()) != 3 {
		t.Fatalf("expected 3 frames drawn, got %d", len(d.Sums()))
	}
	if d.Sums()[1] == d.Sums()[2] {
		t.Errorf("expected frames to differ while scrolling")
	}
}

func TestGameBoy_SaveLoadDeterminism(t *testing.T) {
	d := digest.New()
	g := newTestGameBoy(t, scrollingProgram, WithDisplay(d))
	for i := 0; i < 3; i++ {
		if err := g.Frame(); err != nil {
			t.Fatal(err)
		}
	}

	state := g.Save()
	start := len(d.Sums())
	for i := 0; i < 3; i++ {
		if err := g.Frame(); err != nil {
			t.Fatal(err)
		}
	}
	first := append([]uint64(nil), d.Sums()[start:]...)

	if err := g.Load(state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	start = len(d.Sums())
	for i := 0; i < 3; i++ {
		if err := g.Frame(); err != nil {
			t.Fatal(err)
		}
	}
	second := d.Sums()[start:]

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("frame %d: digest 0x%016X after load, expected 0x%016X", i, second[i], first[i])
		}
	}

	// a fresh GameBoy restored from the state also agrees
	d2 := digest.New()
	g2 := newTestGameBoy(t, scrollingProgram, WithDisplay(d2), WithState(state))
	for i := 0; i < 3; i++ {
		if err := g2.Frame(); err != nil {
			t.Fatal(err)
		}
	}
	for i, sum := range d2.Sums() {
		if sum != first[i] {
			t.Errorf("frame %d: digest 0x%016X from WithState, expected 0x%016X", i, sum, first[i])
		}
	}
}

func TestGameBoy_LoadRejectsNewerVersion(t *testing.T) {
	g := newTestGameBoy(t, scrollingProgram)
	if err := g.Frame(); err != nil {
		t.Fatal(err)
	}
	before := g.Save()

	state := append([]byte(nil), before...)
	state[0] = types.StateVersion + 1
	err := g.Load(state)
	if !errors.Is(err, types.ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
	if !bytes.Equal(g.Save(), before) {
		t.Errorf("expected state to be untouched")
	}
}

func TestGameBoy_LoadTruncated(t *testing.T) {
	g := newTestGameBoy(t, scrollingProgram)
	if err := g.Frame(); err != nil {
		t.Fatal(err)
	}
	state := g.Save()
	if err := g.Frame(); err != nil {
		t.Fatal(err)
	}
	before := g.Save()

	for _, n := range []int{0, 1, 20, len(state) / 2, len(state) - 1} {
		if err := g.Load(state[:n]); err == nil {
			t.Errorf("%d bytes: expected error", n)
		}
		if !bytes.Equal(g.Save(), before) {
			t.Errorf("%d bytes: expected state to be rolled back", n)
		}
	}
}

func TestGameBoy_LoadVersion1(t *testing.T) {
	g := newTestGameBoy(t, scrollingProgram)
	if err := g.Frame(); err != nil {
		t.Fatal(err)
	}
	state := g.Save()
	// version 1 has no controller trailer or PPU dots
	v1 := append([]byte(nil), state[:len(state)-6]...)
	v1[0] = 1

	if err := g.Load(v1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Frame(); err != nil {
		t.Errorf("unexpected error after loading version 1 state: %v", err)
	}
}

func TestGameBoy_UnsupportedController(t *testing.T) {
	for _, typ := range []cartridge.Type{cartridge.MBC2, cartridge.HUDSONHUC3, cartridge.POCKETCAMERA} {
		cart := newTestCartridge(t, asm.Header{Type: typ}, "NOP")
		_, err := New(cart)
		var unsupported *cartridge.UnsupportedError
		if !errors.As(err, &unsupported) {
			t.Errorf("type 0x%02X: expected UnsupportedError, got %v", uint8(typ), err)
		}
	}
}

func TestGameBoy_Model(t *testing.T) {
	tests := []struct {
		name  string
		cgb   bool
		opts  []Opt
		model types.Model
		a     uint8
	}{
		{"dmg header", false, nil, types.DMGABC, 0x01},
		{"cgb header", true, nil, types.CGBABC, 0x11},
		{"forced dmg", true, []Opt{AsModel(types.DMGABC)}, types.DMGABC, 0x01},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(newTestCartridge(t, asm.Header{CGB: tt.cgb}, "NOP"), tt.opts...)
			if err != nil {
				t.Fatal(err)
			}
			if g.Model() != tt.model {
				t.Errorf("expected model %s, got %s", tt.model, g.Model())
			}
			if g.CPU.A != tt.a {
				t.Errorf("expected A 0x%02X, got 0x%02X", tt.a, g.CPU.A)
			}
			if g.CPU.PC != 0x0100 || g.CPU.SP != 0xFFFE {
				t.Errorf("unexpected PC 0x%04X SP 0x%04X", g.CPU.PC, g.CPU.SP)
			}
		})
	}
}

func TestGameBoy_CGBSpeedSwitch(t *testing.T) {
	cart := newTestCartridge(t, asm.Header{CGB: true},
		"LD A,$01",
		"LDH ($4D),A",
		"STOP",
		"LDH A,($4D)",
		"STOP",
	)
	g, err := New(cart, SkipVSync(), TerminateOnStop())
	if err != nil {
		t.Fatal(err)
	}
	// the first STOP switches speed before trapping
	if err := g.Frame(); err == nil {
		t.Fatalf("expected STOP to trap")
	}
	if !g.CPU.DoubleSpeed() {
		t.Errorf("expected double speed")
	}
}

func TestGameBoy_Serial(t *testing.T) {
	var out bytes.Buffer
	g := newTestGameBoy(t, []string{
		"LD A,$48",
		"LDH ($01),A",
		"LD A,$81",
		"LDH ($02),A",
		"LD A,$49",
		"LDH ($01),A",
		"LD A,$81",
		"LDH ($02),A",
		"STOP",
	}, SerialOutput(&out), TerminateOnStop())

	g.Frame()
	if out.String() != "HI" {
		t.Errorf("expected serial output HI, got %q", out.String())
	}
	if sb := g.b.Read(types.SB); sb != 0xFF {
		t.Errorf("expected SB 0xFF after transfer, got 0x%02X", sb)
	}
	if g.b.Read(types.SC)&types.Bit7 != 0 {
		t.Errorf("expected transfer to complete")
	}
	if g.Interrupts.Flag()&interrupts.SerialFlag == 0 {
		t.Errorf("expected serial interrupt")
	}
}

type memoryBattery struct {
	saved         []byte
	loadErr       error
	saveErr       error
	closeErr      error
	saves, closes int
}

func (m *memoryBattery) Load(size int) ([]byte, error) {
	return m.saved, m.loadErr
}

func (m *memoryBattery) Save(ram []byte) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = ram
	return nil
}

func (m *memoryBattery) Close() error {
	m.closes++
	return m.closeErr
}

var batteryProgram = []string{
	"LD A,$0A",
	"LD ($0000),A", // enable RAM
	"LD A,($A001)",
	"LD ($A000),A", // copy the saved byte
	"STOP",
}

func TestGameBoy_Battery(t *testing.T) {
	h := asm.Header{Type: cartridge.MBC1RAMBATT, RAMSize: 0x02}
	saved := make([]byte, 8*1024)
	saved[1] = 0x42
	b := &memoryBattery{saved: saved}

	g, err := New(newTestCartridge(t, h, batteryProgram...), WithBattery(b), SkipVSync(), TerminateOnStop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.Frame()
	if err := g.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.saves != 1 || b.closes != 1 {
		t.Errorf("expected 1 save and close, got %d and %d", b.saves, b.closes)
	}
	if b.saved[0] != 0x42 {
		t.Errorf("expected battery RAM to be written back, got 0x%02X", b.saved[0])
	}
	if err := g.Close(); err != nil || b.closes != 1 {
		t.Errorf("expected second Close to do nothing")
	}
}

func TestGameBoy_BatteryErrors(t *testing.T) {
	h := asm.Header{Type: cartridge.MBC1RAMBATT, RAMSize: 0x02}

	b := &memoryBattery{loadErr: errors.New("boom")}
	if _, err := New(newTestCartridge(t, h, "NOP"), WithBattery(b)); err == nil {
		t.Errorf("expected load error")
	}
	if b.closes != 1 || b.saves != 0 {
		t.Errorf("expected battery to be closed without saving, got %d closes and %d saves", b.closes, b.saves)
	}

	b = &memoryBattery{}
	_, err := New(newTestCartridge(t, asm.Header{Type: cartridge.MBC2BATT}, "NOP"), WithBattery(b))
	var unsupported *cartridge.UnsupportedError
	if !errors.As(err, &unsupported) {
		t.Errorf("expected UnsupportedError, got %v", err)
	}
	if b.closes != 1 || b.saves != 0 {
		t.Errorf("expected battery of unsupported cartridge to be closed, got %d closes and %d saves", b.closes, b.saves)
	}

	b = &memoryBattery{closeErr: errors.New("close")}
	_, err = New(newTestCartridge(t, h, "NOP"), WithBattery(b), WithState([]byte{types.StateVersion + 1}))
	if !errors.Is(err, types.ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) || len(merr.Errors) != 2 {
		t.Errorf("expected the close error to be reported too, got %v", err)
	}
	if b.closes != 1 || b.saves != 0 {
		t.Errorf("expected battery to be closed after a bad state, got %d closes and %d saves", b.closes, b.saves)
	}

	b = &memoryBattery{saveErr: errors.New("save"), closeErr: errors.New("close")}
	g, err := New(newTestCartridge(t, h, "NOP"), WithBattery(b))
	if err != nil {
		t.Fatal(err)
	}
	err = g.Close()
	merr = nil
	if !errors.As(err, &merr) || len(merr.Errors) != 2 {
		t.Errorf("expected both errors to be reported, got %v", err)
	}
}

func TestGameBoy_BatteryWithoutBattery(t *testing.T) {
	b := &memoryBattery{}
	g, err := New(newTestCartridge(t, asm.Header{Type: cartridge.MBC1RAM, RAMSize: 0x02}, "NOP"), WithBattery(b))
	if err != nil {
		t.Fatal(err)
	}
	if b.closes != 1 {
		t.Errorf("expected battery to be closed for a cartridge without one")
	}
	if err := g.Close(); err != nil || b.saves != 0 {
		t.Errorf("expected nothing to be saved")
	}
}

func TestGameBoy_Cheats(t *testing.T) {
	set := cheats.NewSet()
	if err := set.Add("a", "341-51F-AA2"); err != nil {
		t.Fatal(err)
	}
	if err := set.Add("ram", "01AB00C0\n00CD00A0"); err != nil {
		t.Fatal(err)
	}

	cart := newTestCartridge(t, asm.Header{Title: "TEST", Type: cartridge.MBC1RAM, RAMSize: 2}, "LD A,$12", "STOP")
	g, err := New(cart, SkipVSync(), TerminateOnStop(), WithCheats(set))
	if err != nil {
		t.Fatal(err)
	}

	if err := g.Frame(); err == nil {
		t.Fatalf("expected STOP to trap")
	}
	if g.CPU.A != 0x34 {
		t.Errorf("expected the game genie to patch A to 0x34, got 0x%02X", g.CPU.A)
	}

	// gameshark codes are applied once a frame completes
	set.SetEnabled("a", false)
	g2, err := New(newTestCartridge(t, asm.Header{Title: "TEST", Type: cartridge.MBC1RAM, RAMSize: 2}, scrollingProgram...),
		SkipVSync(), WithCheats(set))
	if err != nil {
		t.Fatal(err)
	}
	if err := g2.Frame(); err != nil {
		t.Fatal(err)
	}
	if v := g2.MMU.Read(0xC000); v != 0xAB {
		t.Errorf("expected 0xAB at 0xC000, got 0x%02X", v)
	}
	if v := g2.MMU.ERAM()[0]; v != 0xCD {
		t.Errorf("expected 0xCD in external RAM, got 0x%02X", v)
	}
}
