package apu

import (
	"fmt"

	"github.com/thelolagemann/gbcemu/internal/types"
)

// registerCount is the number of registers shadowed by a Latch,
// from NR10 to the end of wave RAM.
const registerCount = int(types.WaveRAMEnd-types.NR10) + 1

// Latch is an Engine that keeps the last value written to each
// sound register.
type Latch struct {
	registers [registerCount]uint8
	writes    uint64
}

// NewLatch returns a new Latch.
func NewLatch() *Latch {
	return &Latch{}
}

var _ Engine = (*Latch)(nil)

// SetRegister implements the Engine interface.
func (l *Latch) SetRegister(reg, value uint8, _ *[256]uint8) {
	l.registers[int(reg)-int(types.NR10&0xFF)] = value
	l.writes++
}

// Register returns the last value written to the register at
// address.
func (l *Latch) Register(address types.HardwareAddress) uint8 {
	return l.registers[address-types.NR10]
}

// Writes returns the number of register writes seen.
func (l *Latch) Writes() uint64 {
	return l.writes
}

// Enabled returns true if the APU has been powered on via NR52.7.
func (l *Latch) Enabled() bool {
	return l.Register(types.NR52)&types.Bit7 != 0
}

// WaveRAM returns the 32 4-bit samples of the wave channel.
func (l *Latch) WaveRAM() [32]uint8 {
	var samples [32]uint8
	for i := 0; i < 16; i++ {
		b := l.Register(types.WaveRAM + uint16(i))
		samples[i*2] = b >> 4
		samples[i*2+1] = b & 0x0F
	}
	return samples
}

// Frequency returns the frequency in Hz of the given channel (1-3)
// as programmed through its NRx3 and NRx4 registers.
//
//	Square channels: 131072/(2048-x) Hz
//	Wave channel:    65536/(2048-x) Hz
func (l *Latch) Frequency(channel int) float64 {
	var lo types.HardwareAddress
	switch channel {
	case 1:
		lo = types.NR13
	case 2:
		lo = types.NR23
	case 3:
		lo = types.NR33
	default:
		return 0
	}
	x := uint16(l.Register(lo+1)&0x07)<<8 | uint16(l.Register(lo))
	if channel == 3 {
		return 65536 / float64(2048-x)
	}
	return 131072 / float64(2048-x)
}

// State implements the Engine interface.
func (l *Latch) State() []byte {
	state := make([]byte, registerCount)
	copy(state, l.registers[:])
	return state
}

// Restore implements the Engine interface.
func (l *Latch) Restore(state []byte) error {
	if len(state) != registerCount {
		return fmt.Errorf("apu: expected %d bytes of state, got %d", registerCount, len(state))
	}
	copy(l.registers[:], state)
	return nil
}
