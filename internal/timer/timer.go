// Package timer provides an implementation of the Game Boy
// timer. It is used to generate interrupts at a specific
// frequency. The frequency can be configured using the
// TimerControlRegister.
package timer

import (
	"github.com/thelolagemann/gbcemu/internal/interrupts"
	"github.com/thelolagemann/gbcemu/internal/io"
	"github.com/thelolagemann/gbcemu/internal/types"
)

const (
	// DividerPeriod is the number of cycles between each
	// increment of the DIV register (16384Hz).
	DividerPeriod = 256
)

// periods holds the number of cycles between TIMA increments,
// indexed by the clock select bits of TAC.
//
//	00 = 1024 cycles (4096Hz)
//	01 = 16 cycles   (262144Hz)
//	10 = 64 cycles   (65536Hz)
//	11 = 256 cycles  (16384Hz)
var periods = [4]uint32{1024, 16, 64, 256}

// Controller is a timer controller. It is used to generate
// interrupts at a specific frequency. The frequency can be
// configured using the types.TAC register.
//
// DIV, TIMA, TMA and TAC live in the io.Bus, the controller
// only owns the two cycle accumulators.
type Controller struct {
	divCycles  uint32 // cycles since DIV was last incremented
	timaCycles uint32 // cycles since TIMA was last incremented

	b   *io.Bus
	irq *interrupts.Service
}

// NewController returns a new timer controller.
func NewController(b *io.Bus, irq *interrupts.Service) *Controller {
	c := &Controller{
		b:   b,
		irq: irq,
	}
	// set up registers
	b.ReserveAddress(types.DIV, func(v byte) byte {
		// writing any value to DIV resets it
		c.divCycles = 0
		return 0
	})
	b.ReserveAddress(types.TAC, func(v byte) byte {
		c.timaCycles = 0
		return v | 0xF8
	})

	return c
}

// Enabled returns true if TIMA is counting.
func (c *Controller) Enabled() bool {
	return c.b.TestBit(types.TAC, types.Bit2)
}

// Period returns the number of cycles between TIMA increments,
// or 0 if the timer is disabled.
func (c *Controller) Period() uint32 {
	if !c.Enabled() {
		return 0
	}
	return periods[c.b.Get(types.TAC)&0b11]
}

// Tick advances the timer by the given number of CPU cycles.
func (c *Controller) Tick(cycles uint32) {
	c.divCycles += cycles
	for c.divCycles >= DividerPeriod {
		c.divCycles -= DividerPeriod
		c.b.Set(types.DIV, c.b.Get(types.DIV)+1)
	}

	period := c.Period()
	if period == 0 {
		return
	}
	c.timaCycles += cycles
	for c.timaCycles >= period {
		c.timaCycles -= period
		tima := c.b.Get(types.TIMA) + 1
		if tima == 0 {
			// overflow, reload from TMA and request interrupt
			tima = c.b.Get(types.TMA)
			c.irq.Request(interrupts.TimerFlag)
		}
		c.b.Set(types.TIMA, tima)
	}
}

// Reset clears both cycle accumulators.
func (c *Controller) Reset() {
	c.divCycles = 0
	c.timaCycles = 0
}

var _ types.Stater = (*Controller)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - divCycles (uint32)
//   - timaCycles (uint32)
func (c *Controller) Load(s *types.State) {
	c.divCycles = s.Read32()
	c.timaCycles = s.Read32()
}

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - divCycles (uint32)
//   - timaCycles (uint32)
func (c *Controller) Save(s *types.State) {
	s.Write32(c.divCycles)
	s.Write32(c.timaCycles)
}
