// Package io provides the memory mapped IO block, which holds
// the hardware registers (0xFF00 - 0xFF7F), high RAM (0xFF80 -
// 0xFFFE) and the interrupt enable register (0xFFFF).
package io

import (
	"fmt"

	"github.com/thelolagemann/gbcemu/internal/types"
)

// Size is the size of the IO block.
const Size = 0x100

// WriteHandler is a function that handles writing to a memory address.
// It should return the new value to be written back to the memory address.
type WriteHandler func(byte) byte

// Bus is the 256 byte IO block. Components keep their registers
// in the bus, so that the whole block can be saved and restored
// as one.
//
// Addresses may be given either as a full address (0xFF00 - 0xFFFF)
// or as an offset into the block, as only the low byte is used.
type Bus struct {
	data [Size]byte

	writeHandlers [Size]WriteHandler
}

// NewBus returns a new, zeroed Bus.
func NewBus() *Bus {
	return &Bus{}
}

// ReserveAddress reserves a memory address on the bus. Writes from
// the CPU to the address are passed through the handler, and the
// returned value is stored.
func (b *Bus) ReserveAddress(addr types.HardwareAddress, handler WriteHandler) {
	// check to make sure address hasn't already been reserved
	if b.writeHandlers[uint8(addr)] != nil {
		panic(fmt.Sprintf("io: address %04X has already been reserved", addr))
	}
	b.writeHandlers[uint8(addr)] = handler
}

// Read reads the value at the specified address, as seen by the CPU.
func (b *Bus) Read(addr uint16) byte {
	return b.data[uint8(addr)]
}

// Write writes the value to the specified address, as the CPU would,
// passing it through any reserved write handler.
func (b *Bus) Write(addr uint16, value byte) {
	if h := b.writeHandlers[uint8(addr)]; h != nil {
		value = h(value)
	}
	b.data[uint8(addr)] = value
}

// Get gets the value at the specified memory address.
func (b *Bus) Get(addr uint16) byte {
	return b.data[uint8(addr)]
}

// Set sets the value at the specified memory address. This function
// ignores the write handler and just sets the value.
func (b *Bus) Set(addr uint16, value byte) {
	b.data[uint8(addr)] = value
}

// SetBit sets the bit at the specified memory address.
func (b *Bus) SetBit(addr uint16, bit byte) {
	b.data[uint8(addr)] |= bit
}

// ClearBit clears the bit at the specified memory address.
func (b *Bus) ClearBit(addr uint16, bit byte) {
	b.data[uint8(addr)] &^= bit
}

// TestBit tests the bit at the specified memory address.
func (b *Bus) TestBit(addr uint16, bit byte) bool {
	return b.data[uint8(addr)]&bit != 0
}

// Snapshot returns a pointer to the raw IO block. It is handed
// to collaborators which need to see the register file as a
// whole, such as the audio engine.
func (b *Bus) Snapshot() *[Size]byte {
	return &b.data
}

var _ types.Stater = (*Bus)(nil)

// Load implements the types.Stater interface.
func (b *Bus) Load(s *types.State) {
	s.ReadData(b.data[:])
}

// Save implements the types.Stater interface.
func (b *Bus) Save(s *types.State) {
	s.WriteData(b.data[:])
}
