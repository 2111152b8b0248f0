// Package apu forwards the sound registers of the Game Boy to an
// audio engine. Synthesis is left to the engine, the default Latch
// engine only shadows what has been written.
package apu

import (
	"github.com/thelolagemann/gbcemu/internal/io"
	"github.com/thelolagemann/gbcemu/internal/types"
)

// Engine receives every write to the sound registers
// (0xFF10-0xFF3F), and owns the audio portion of a save state.
type Engine interface {
	// SetRegister is called after reg (the low byte of the address)
	// has been written with value. hram is the whole IO block, as it
	// stands after the write.
	SetRegister(reg, value uint8, hram *[256]uint8)
	// State returns the engine's state as an opaque blob.
	State() []byte
	// Restore restores a blob previously returned by State.
	Restore(state []byte) error
}

// Attach reserves the sound registers on b, forwarding every write
// to engine.
func Attach(b *io.Bus, engine Engine) {
	for addr := types.NR10; addr <= types.WaveRAMEnd; addr++ {
		addr := addr
		b.ReserveAddress(addr, func(v byte) byte {
			b.Set(addr, v)
			engine.SetRegister(uint8(addr), v, b.Snapshot())
			return v
		})
	}
}
