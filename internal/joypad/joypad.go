// Package joypad provides an implementation of the Game Boy
// joypad. The joypad is used to read the state of the buttons
// and the direction keys.
package joypad

import (
	"sync/atomic"

	"github.com/thelolagemann/gbcemu/internal/interrupts"
	"github.com/thelolagemann/gbcemu/internal/io"
	"github.com/thelolagemann/gbcemu/internal/types"
)

// Button represents a physical button on the Game Boy.
type Button = uint8

const (
	// ButtonA is the A button.
	ButtonA Button = iota
	// ButtonB is the B button.
	ButtonB
	// ButtonSelect is the Select button.
	ButtonSelect
	// ButtonStart is the Start button.
	ButtonStart
	// ButtonRight is the Right button.
	ButtonRight
	// ButtonLeft is the Left button.
	ButtonLeft
	// ButtonUp is the Up button.
	ButtonUp
	// ButtonDown is the Down button.
	ButtonDown
)

// ButtonNames maps each button to a readable name.
var ButtonNames = map[Button]string{
	ButtonA:      "A",
	ButtonB:      "B",
	ButtonSelect: "Select",
	ButtonStart:  "Start",
	ButtonRight:  "Right",
	ButtonLeft:   "Left",
	ButtonUp:     "Up",
	ButtonDown:   "Down",
}

// Input is queried for the state of each button whenever
// the joypad register is recomputed.
type Input interface {
	Pressed(b Button) bool
}

// State represents the state of the joypad. Select either
// action or direction buttons by writing to the register,
// and then read out bits 0-3 to get the state of the buttons.
//
//	Bit 7 - Not used
//	Bit 6 - Not used
//	Bit 5 - P15 Select Button Keys      (0=Select)
//	Bit 4 - P14 Select Direction Keys   (0=Select)
//	Bit 3 - P13 Input Down  or Start    (0=Pressed) (Read Only)
//	Bit 2 - P12 Input Up    or Select   (0=Pressed) (Read Only)
//	Bit 1 - P11 Input Left  or Button B (0=Pressed) (Read Only)
//	Bit 0 - P10 Input Right or Button A (0=Pressed) (Read Only)
type State struct {
	input Input
	b     *io.Bus
	irq   *interrupts.Service
}

// New returns a new joypad state, polling the given input.
// A nil input behaves as if no button is ever pressed.
func New(b *io.Bus, irq *interrupts.Service, input Input) *State {
	s := &State{
		input: input,
		b:     b,
		irq:   irq,
	}
	b.ReserveAddress(types.P1, func(v byte) byte {
		return s.compute(v&0x30, b.Get(types.P1))
	})

	return s
}

// Update recomputes the joypad register from the current
// button state, requesting the joypad interrupt if any
// selected button has been pressed since the last update.
func (s *State) Update() {
	current := s.b.Get(types.P1)
	s.b.Set(types.P1, s.compute(current&0x30, current))
}

// compute returns the new value of P1 for the given group
// selector, raising the interrupt on any 1 -> 0 transition
// compared to the previous value.
func (s *State) compute(selector, previous uint8) uint8 {
	nibble := uint8(0x0F)
	if s.input != nil {
		if selector&types.Bit4 == 0 {
			nibble &^= s.group(ButtonRight)
		}
		if selector&types.Bit5 == 0 {
			nibble &^= s.group(ButtonA)
		}
	}

	if previous&^nibble&0x0F != 0 {
		s.irq.Request(interrupts.JoypadFlag)
	}

	return 0xC0 | selector | nibble
}

// group returns the pressed bits of the 4 buttons starting
// at first, with the first button in bit 0.
func (s *State) group(first Button) uint8 {
	var pressed uint8
	for i := Button(0); i < 4; i++ {
		if s.input.Pressed(first + i) {
			pressed |= 1 << i
		}
	}
	return pressed
}

// Pad is an Input that may be driven from another goroutine,
// such as a display driver or a network client.
type Pad struct {
	state atomic.Uint32
}

// Press presses a button.
func (p *Pad) Press(button Button) {
	for {
		old := p.state.Load()
		if p.state.CompareAndSwap(old, old|1<<button) {
			return
		}
	}
}

// Release releases a button.
func (p *Pad) Release(button Button) {
	for {
		old := p.state.Load()
		if p.state.CompareAndSwap(old, old&^(1<<button)) {
			return
		}
	}
}

// Pressed implements Input.
func (p *Pad) Pressed(button Button) bool {
	return p.state.Load()&(1<<button) != 0
}

// ButtonFunc adapts a plain function to an Input.
type ButtonFunc func(b Button) bool

// Pressed implements Input.
func (f ButtonFunc) Pressed(b Button) bool {
	return f(b)
}
