// Package serial provides the serial port of the Game Boy. Transfers
// clocked by the Game Boy complete as soon as they are started, with
// the attached Device supplying the byte shifted in.
package serial

import (
	"github.com/thelolagemann/gbcemu/internal/interrupts"
	"github.com/thelolagemann/gbcemu/internal/io"
	"github.com/thelolagemann/gbcemu/internal/types"
)

// Controller is the serial controller. It is responsible for sending and
// receiving data to and from devices.
//
//	SB - the byte to send, replaced by the byte received
//	SC - Bit 7 transfer requested, Bit 0 internal clock
//
// A transfer only happens when this Game Boy drives the clock, a
// transfer waiting on an external clock never completes.
type Controller struct {
	b      *io.Bus
	irq    *interrupts.Service
	device Device
}

// NewController creates a new Controller attached to d. A nil device
// behaves as if no cable is plugged in.
func NewController(b *io.Bus, irq *interrupts.Service, d Device) *Controller {
	c := &Controller{b: b, irq: irq}
	c.Attach(d)

	b.ReserveAddress(types.SC, func(v byte) byte {
		if v&(types.Bit7|types.Bit0) != types.Bit7|types.Bit0 {
			return v
		}
		c.b.Set(types.SB, c.device.Exchange(c.b.Get(types.SB)))
		c.irq.Request(interrupts.SerialFlag)
		return v &^ types.Bit7
	})

	return c
}

// Attach attaches a Device to the Controller.
func (c *Controller) Attach(d Device) {
	if d == nil {
		d = nullDevice{}
	}
	c.device = d
}
