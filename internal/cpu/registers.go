package cpu

// Register represents a single 8-bit register of the CPU.
type Register = uint8

// RegisterPair views two 8-bit registers as a single 16-bit
// register. Writes through the pair are visible through the
// halves, and vice versa.
type RegisterPair struct {
	High *Register
	Low  *Register

	// mask is applied to the low register on every write
	mask uint8
}

// Uint16 returns the value of the RegisterPair as an uint16.
func (r *RegisterPair) Uint16() uint16 {
	return uint16(*r.High)<<8 | uint16(*r.Low)
}

// SetUint16 sets the value of the RegisterPair to the given value.
func (r *RegisterPair) SetUint16(value uint16) {
	*r.High = uint8(value >> 8)
	*r.Low = uint8(value) & r.mask
}

// Registers holds the 8 8-bit registers of the CPU, along with the
// 4 16-bit pairs viewing them.
type Registers struct {
	A Register
	F Register
	B Register
	C Register
	D Register
	E Register
	H Register
	L Register

	AF *RegisterPair
	BC *RegisterPair
	DE *RegisterPair
	HL *RegisterPair
}

// wirePairs points the register pairs at the registers. The
// lower nibble of F is hardwired to 0.
func (r *Registers) wirePairs() {
	r.AF = &RegisterPair{High: &r.A, Low: &r.F, mask: 0xF0}
	r.BC = &RegisterPair{High: &r.B, Low: &r.C, mask: 0xFF}
	r.DE = &RegisterPair{High: &r.D, Low: &r.E, mask: 0xFF}
	r.HL = &RegisterPair{High: &r.H, Low: &r.L, mask: 0xFF}
}
