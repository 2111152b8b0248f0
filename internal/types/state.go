package types

import (
	"errors"
	"fmt"
)

// StateVersion is the version of the save state stream written
// by this package. Version 2 appended the bank controller trailer
// (RTC register mapping, external RAM enable) and the PPU dot
// accumulator.
const StateVersion uint8 = 2

var (
	// ErrUnsupportedVersion is returned when a state was written by
	// a newer version than this package understands.
	ErrUnsupportedVersion = errors.New("state: unsupported version")
	// ErrShortState is returned when a state ends before all of its
	// fields have been read.
	ErrShortState = errors.New("state: unexpected end of data")
)

// Resettable is an interface that allows an object to be reset.
type Resettable interface {
	Reset() // Reset the state of the object
}

// State represents the emulator state. This is used to
// save and load states between runs. Values are stored
// little endian, in the order they were written.
//
// Reading past the end of the state does not panic, instead
// zero values are returned and Err reports ErrShortState.
type State struct {
	raw          []byte // raw state data (for serialization)
	readPosition int    // current read position
	err          error
}

// Stater is an interface that allows an object to be saved
// and loaded from a state.
type Stater interface {
	Load(*State) // Load the state of the object
	Save(*State) // Save the state of the object
}

// NewState creates a new state.
func NewState() *State {
	return &State{
		raw: make([]byte, 0, 0x10000),
	}
}

// StateFromBytes creates a new state from the given bytes.
func StateFromBytes(raw []byte) *State {
	return &State{
		raw: raw,
	}
}

// ResetPosition resets the read position, allowing the
// state to be read from the beginning.
func (s *State) ResetPosition() {
	s.readPosition = 0
	s.err = nil
}

// Err returns the first error encountered while reading.
func (s *State) Err() error {
	return s.err
}

// Remaining returns the number of unread bytes.
func (s *State) Remaining() int {
	return len(s.raw) - s.readPosition
}

func (s *State) Write8(value uint8) {
	s.raw = append(s.raw, value)
}

func (s *State) Write16(value uint16) {
	s.raw = append(s.raw, byte(value), byte(value>>8))
}

func (s *State) Write32(value uint32) {
	s.raw = append(s.raw, byte(value), byte(value>>8), byte(value>>16), byte(value>>24))
}

func (s *State) WriteBool(value bool) {
	if value {
		s.raw = append(s.raw, 1)
	} else {
		s.raw = append(s.raw, 0)
	}
}

func (s *State) WriteData(data []byte) {
	s.raw = append(s.raw, data...)
}

// take returns the next n bytes, or nil if fewer remain.
func (s *State) take(n int) []byte {
	if s.err != nil {
		return nil
	}
	if s.readPosition+n > len(s.raw) {
		s.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortState, n, s.readPosition, len(s.raw)-s.readPosition)
		s.readPosition = len(s.raw)
		return nil
	}
	b := s.raw[s.readPosition : s.readPosition+n]
	s.readPosition += n
	return b
}

func (s *State) Read8() uint8 {
	b := s.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (s *State) Read16() uint16 {
	b := s.take(2)
	if b == nil {
		return 0
	}
	return uint16(b[0]) | uint16(b[1])<<8
}

func (s *State) Read32() uint32 {
	b := s.take(4)
	if b == nil {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func (s *State) ReadBool() bool {
	return s.Read8() != 0
}

// ReadData fills p with the next len(p) bytes. On a short
// read p is left untouched.
func (s *State) ReadData(p []byte) {
	if b := s.take(len(p)); b != nil {
		copy(p, b)
	}
}

// Bytes returns the raw state data.
func (s *State) Bytes() []byte {
	return s.raw
}
