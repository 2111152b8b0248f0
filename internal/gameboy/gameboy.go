// Package gameboy provides an emulation of a Nintendo Game Boy
// (Color). A GameBoy owns every component, and is driven one
// instruction, one frame, or until cancelled.
package gameboy

import (
	"context"
	"fmt"
	goio "io"

	"github.com/hashicorp/go-multierror"
	"github.com/thelolagemann/gbcemu/internal/apu"
	"github.com/thelolagemann/gbcemu/internal/cartridge"
	"github.com/thelolagemann/gbcemu/internal/cheats"
	"github.com/thelolagemann/gbcemu/internal/cpu"
	"github.com/thelolagemann/gbcemu/internal/interrupts"
	"github.com/thelolagemann/gbcemu/internal/io"
	"github.com/thelolagemann/gbcemu/internal/joypad"
	"github.com/thelolagemann/gbcemu/internal/mmu"
	"github.com/thelolagemann/gbcemu/internal/ppu"
	"github.com/thelolagemann/gbcemu/internal/ppu/palette"
	"github.com/thelolagemann/gbcemu/internal/serial"
	"github.com/thelolagemann/gbcemu/internal/timer"
	"github.com/thelolagemann/gbcemu/internal/types"
	"github.com/thelolagemann/gbcemu/pkg/log"
)

const (
	// ClockSpeed is the clock speed of the Game Boy.
	ClockSpeed = cpu.ClockSpeed // 4.194304 MHz
	// CyclesPerFrame is the number of clock cycles per frame.
	CyclesPerFrame = ppu.DotsPerFrame // 4194304 / 59.7
)

// Battery persists the external RAM of battery backed cartridges.
type Battery interface {
	// Load returns the previously saved RAM. An empty slice means
	// nothing has been saved yet.
	Load(size int) ([]byte, error)
	// Save persists the given RAM.
	Save(ram []byte) error
	// Close releases the battery.
	Close() error
}

// GameBoy represents a Game Boy. It contains all the components of the Game Boy.
// It is the main entry point for the emulator.
type GameBoy struct {
	CPU        *cpu.CPU
	MMU        *mmu.MMU
	PPU        *ppu.PPU
	Joypad     *joypad.State
	Interrupts *interrupts.Service
	Timer      *timer.Controller
	Serial     *serial.Controller

	cart  cartridge.PageSource
	b     *io.Bus
	model types.Model

	// collaborators
	display   ppu.Display
	audio     apu.Engine
	input     joypad.Input
	battery   Battery
	debugger  cpu.Debugger
	serial    serial.Device
	serialOut goio.Writer
	cheats    *cheats.Set
	palette   *palette.Palette
	state     []byte

	debug, skipVSync, terminateOnStop bool

	log.Logger

	cycles    uint64
	lastLY    uint8
	frameDone bool
}

// New returns a new GameBoy for the given cartridge, reset to the
// state left by the boot ROM of its model. It fails if the
// cartridge's bank controller is not supported, if the battery
// cannot be loaded, or if a state passed with WithState cannot be
// restored.
func New(cart cartridge.PageSource, opts ...Opt) (*GameBoy, error) {
	g := &GameBoy{
		cart:   cart,
		b:      io.NewBus(),
		Logger: log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}

	page0 := cart.Page(0)
	if g.model == types.Unset {
		g.model = types.DMGABC
		if page0[cartridge.HeaderCGBFlag]&types.Bit7 != 0 {
			g.model = types.CGBABC
		}
	}

	g.Interrupts = interrupts.NewService(g.b)
	memory, err := mmu.New(cart, g.b, g.model == types.CGBABC, g.Logger)
	if err != nil {
		return nil, g.abort(err)
	}
	g.MMU = memory
	g.Timer = timer.NewController(g.b, g.Interrupts)
	g.Joypad = joypad.New(g.b, g.Interrupts, g.input)
	g.PPU = ppu.New(g.b, g.Interrupts, g.MMU.VRAM(0), g.MMU.OAM(), g.display)
	if g.palette != nil {
		g.PPU.SetPalette(*g.palette)
	}
	if g.audio == nil {
		g.audio = apu.NewLatch()
	}
	apu.Attach(g.b, g.audio)
	if g.serial == nil && g.serialOut != nil {
		g.serial = serial.NewWriter(g.serialOut, g.Logger)
	}
	if g.serial != nil {
		g.Serial = serial.NewController(g.b, g.Interrupts, g.serial)
	}
	if g.cheats != nil {
		g.MMU.SetPatcher(g.cheats)
	}

	g.CPU = cpu.NewCPU(g.MMU, g.b, g.Interrupts, g.Logger)
	g.CPU.Debug = g.debug
	g.CPU.TerminateOnStop = g.terminateOnStop
	if g.debugger != nil {
		g.CPU.SetDebugger(g.debugger)
	}

	g.Reset()

	if err := g.loadBattery(cartridge.Type(page0[cartridge.HeaderCartridgeType])); err != nil {
		return nil, g.abort(err)
	}
	if g.state != nil {
		if err := g.Load(g.state); err != nil {
			return nil, g.abort(err)
		}
		g.state = nil
	}

	g.Infof("gameboy: loaded %s cartridge (%dKB ROM, %dKB RAM) as %s",
		cart.Kind(), cart.ROMSize()/1024, cart.RAMSize()/1024, g.model)

	return g, nil
}

// Reset returns every component to the state left by the boot ROM,
// clearing any trap. Memory contents are left untouched.
func (g *GameBoy) Reset() {
	for addr, v := range types.CommonIO {
		g.b.Set(addr, v)
	}
	for addr, v := range types.ModelIO[g.model] {
		g.b.Set(addr, v)
	}
	if g.model == types.CGBABC {
		g.b.Set(types.KEY1, 0x7E)
		g.b.Set(types.VBK, 0xFE)
		g.b.Set(types.SVBK, 0xF9)
	}
	g.b.Set(types.IE, 0)

	g.MMU.Reset()
	g.Timer.Reset()
	g.PPU.Reset()
	g.CPU.Reset(g.model)
	g.CPU.GBC = g.model == types.CGBABC

	g.cycles = 0
	g.lastLY = 0
	g.frameDone = false
}

// Model returns the model being emulated.
func (g *GameBoy) Model() types.Model {
	return g.model
}

// Cartridge returns the cartridge being run.
func (g *GameBoy) Cartridge() cartridge.PageSource {
	return g.cart
}

// ElapsedCycles returns the number of cycles executed since the last
// reset.
func (g *GameBoy) ElapsedCycles() uint64 {
	return g.cycles
}

// Trapped returns the trap that stopped the CPU, or nil.
func (g *GameBoy) Trapped() *cpu.Trap {
	return g.CPU.Trapped()
}

// Step executes a single instruction (or interrupt dispatch) and
// advances the timer and PPU by the cycles it took. It returns the
// number of cycles taken, 0 if the CPU is trapped.
func (g *GameBoy) Step() uint8 {
	cycles := g.CPU.Step()
	if cycles == 0 {
		return 0
	}
	g.cycles += uint64(cycles)

	g.Timer.Tick(uint32(cycles))
	if g.PPU.Step(uint32(cycles), g.CPU.DoubleSpeed()) {
		g.frameDone = true
	}

	// the joypad is polled once per line
	if ly := g.b.Get(types.LY); ly != g.lastLY {
		g.lastLY = ly
		g.Joypad.Update()
	}

	return cycles
}

// Frame steps the emulation until the PPU has finished the current
// frame, and then waits for the display's vsync. It returns the trap
// if the CPU stops before the frame is complete.
func (g *GameBoy) Frame() error {
	g.frameDone = false
	for !g.frameDone {
		if g.Step() == 0 {
			if t := g.CPU.Trapped(); t != nil {
				return t
			}
		}
	}
	if g.cheats != nil {
		g.cheats.Apply(g.MMU)
	}
	if !g.skipVSync && g.display != nil {
		g.display.WaitVSync()
	}
	return nil
}

// Run runs frames until ctx is cancelled or the CPU traps. The
// context is only checked between frames.
func (g *GameBoy) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := g.Frame(); err != nil {
			g.Errorf("gameboy: %v", err)
			return err
		}
	}
}

// loadBattery copies previously saved RAM into the external RAM of
// battery backed cartridges. The battery is dropped for any other
// cartridge.
func (g *GameBoy) loadBattery(t cartridge.Type) error {
	if g.battery == nil {
		return nil
	}
	ram := g.MMU.ERAM()
	if !t.Battery() || len(ram) == 0 {
		g.Debugf("gameboy: cartridge type 0x%02X has no battery", uint8(t))
		err := g.battery.Close()
		g.battery = nil
		return err
	}

	saved, err := g.battery.Load(len(ram))
	if err != nil {
		return fmt.Errorf("gameboy: loading battery: %w", err)
	}
	switch len(saved) {
	case 0:
	case len(ram):
		copy(ram, saved)
		g.Infof("gameboy: loaded %d bytes of battery RAM", len(saved))
	default:
		g.Warnf("gameboy: ignoring battery RAM of %d bytes, expected %d", len(saved), len(ram))
	}
	return nil
}

// abort closes the battery without saving it, after New failed
// with err.
func (g *GameBoy) abort(err error) error {
	if g.battery == nil {
		return err
	}
	if cerr := g.battery.Close(); cerr != nil {
		err = multierror.Append(err, fmt.Errorf("gameboy: closing battery: %w", cerr))
	}
	g.battery = nil
	return err
}

// Close flushes the external RAM to the battery, and closes it.
func (g *GameBoy) Close() error {
	if g.battery == nil {
		return nil
	}
	var result error
	ram := make([]byte, len(g.MMU.ERAM()))
	copy(ram, g.MMU.ERAM())
	if err := g.battery.Save(ram); err != nil {
		result = multierror.Append(result, fmt.Errorf("gameboy: saving battery: %w", err))
	}
	if err := g.battery.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("gameboy: closing battery: %w", err))
	}
	g.battery = nil
	return result
}
