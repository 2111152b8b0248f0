package gameboy

import (
	goio "io"

	"github.com/thelolagemann/gbcemu/internal/apu"
	"github.com/thelolagemann/gbcemu/internal/cheats"
	"github.com/thelolagemann/gbcemu/internal/cpu"
	"github.com/thelolagemann/gbcemu/internal/joypad"
	"github.com/thelolagemann/gbcemu/internal/ppu"
	"github.com/thelolagemann/gbcemu/internal/ppu/palette"
	"github.com/thelolagemann/gbcemu/internal/serial"
	"github.com/thelolagemann/gbcemu/internal/types"
	"github.com/thelolagemann/gbcemu/pkg/log"
)

// Opt is a function that modifies a GameBoy
// instance. Options are applied before the
// components are wired together.
type Opt func(gb *GameBoy)

// Debug enables instruction tracing and the LD B, B breakpoint.
func Debug() Opt {
	return func(gb *GameBoy) {
		gb.debug = true
	}
}

// SkipVSync stops Frame from waiting on the display.
func SkipVSync() Opt {
	return func(gb *GameBoy) {
		gb.skipVSync = true
	}
}

// TerminateOnStop makes the STOP instruction trap, which test ROMs
// use to signal completion.
func TerminateOnStop() Opt {
	return func(gb *GameBoy) {
		gb.terminateOnStop = true
	}
}

// AsModel forces the model to emulate, rather than choosing it
// from the cartridge header.
func AsModel(m types.Model) Opt {
	return func(gb *GameBoy) {
		gb.model = m
	}
}

func WithLogger(log log.Logger) Opt {
	return func(gb *GameBoy) {
		gb.Logger = log
	}
}

// WithDisplay sets the display every line is drawn to.
func WithDisplay(d ppu.Display) Opt {
	return func(gb *GameBoy) {
		gb.display = d
	}
}

// WithAudio sets the engine sound register writes are forwarded
// to. By default an apu.Latch is used.
func WithAudio(e apu.Engine) Opt {
	return func(gb *GameBoy) {
		gb.audio = e
	}
}

func WithInput(in joypad.Input) Opt {
	return func(gb *GameBoy) {
		gb.input = in
	}
}

// WithBattery loads the external RAM of battery backed cartridges
// from b, and saves it back on Close.
func WithBattery(b Battery) Opt {
	return func(gb *GameBoy) {
		gb.battery = b
	}
}

func WithDebugger(d cpu.Debugger) Opt {
	return func(gb *GameBoy) {
		gb.debugger = d
	}
}

// WithPalette sets the colours of the 4 shades.
func WithPalette(p palette.Palette) Opt {
	return func(gb *GameBoy) {
		gb.palette = &p
	}
}

// WithState loads the given state once the GameBoy has been reset.
func WithState(b []byte) Opt {
	return func(gb *GameBoy) {
		gb.state = b
	}
}

// SerialOutput writes every byte sent over the serial port to w,
// which test ROMs use as a console.
func SerialOutput(w goio.Writer) Opt {
	return func(gb *GameBoy) {
		gb.serialOut = w
	}
}

// WithSerialDevice attaches d to the other end of the link cable.
func WithSerialDevice(d serial.Device) Opt {
	return func(gb *GameBoy) {
		gb.serial = d
	}
}

// WithCheats applies the enabled cheats of set. Game Genie codes
// patch ROM reads, GameShark codes are written at the end of every
// frame.
func WithCheats(set *cheats.Set) Opt {
	return func(gb *GameBoy) {
		gb.cheats = set
	}
}
