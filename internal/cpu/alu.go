package cpu

// inc8 increments n by 1.
//
//	INC n
//	n = A, B, C, D, E, H, L, (HL)
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Not affected.
func (r *Registers) inc8(n uint8) uint8 {
	result := n + 1
	r.setFlag(FlagZero, result == 0)
	r.clearFlag(FlagSubtract)
	r.setFlag(FlagHalfCarry, n&0x0F == 0x0F)
	return result
}

// dec8 decrements n by 1.
//
//	DEC n
//	n = A, B, C, D, E, H, L, (HL)
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if no borrow from bit 4.
//	C - Not affected.
func (r *Registers) dec8(n uint8) uint8 {
	result := n - 1
	r.setFlag(FlagZero, result == 0)
	r.setFlag(FlagSubtract, true)
	r.setFlag(FlagHalfCarry, n&0x0F == 0)
	return result
}

// add8 adds b and the incoming carry to a.
//
//	ADD A, n
//	ADC A, n
//	n = d8, A, B, C, D, E, H, L, (HL)
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
func (r *Registers) add8(a, b, carry uint8) uint8 {
	sum := uint16(a) + uint16(b) + uint16(carry)
	result := uint8(sum)
	r.setFlags(result == 0, false, (a^b^result)&0x10 != 0, sum > 0xFF)
	return result
}

// sub8 subtracts b and the incoming carry from a.
//
//	SUB n
//	SBC A, n
//	n = d8, A, B, C, D, E, H, L, (HL)
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Set if borrow.
func (r *Registers) sub8(a, b, carry uint8) uint8 {
	diff := int16(a) - int16(b) - int16(carry)
	result := uint8(diff)
	r.setFlags(result == 0, true, (a^b^result)&0x10 != 0, diff < 0)
	return result
}

// add16 adds b to a.
//
//	ADD HL, nn
//	nn = BC, DE, HL, SP
//
// Flags affected:
//
//	Z - Not affected.
//	N - Reset.
//	H - Set if carry from bit 11.
//	C - Set if carry from bit 15.
func (r *Registers) add16(a, b uint16) uint16 {
	sum := uint32(a) + uint32(b)
	result := uint16(sum)
	r.clearFlag(FlagSubtract)
	r.setFlag(FlagHalfCarry, (a^b^result)&0x1000 != 0)
	r.setFlag(FlagCarry, sum > 0xFFFF)
	return result
}

// addSP adds the signed offset e to sp. Carries are taken from
// the low byte, as if it were an unsigned 8-bit addition.
//
//	ADD SP, e
//	LD HL, SP+e
//
// Flags affected:
//
//	Z - Reset.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
func (r *Registers) addSP(sp uint16, e int8) uint16 {
	offset := uint16(int16(e))
	result := sp + offset
	r.setFlags(false, false, (sp^offset^result)&0x10 != 0, (sp^offset^result)&0x100 != 0)
	return result
}

// rlc rotates n left, bit 7 moving to both bit 0 and the carry.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 7.
func (r *Registers) rlc(n uint8) uint8 {
	result := n<<1 | n>>7
	r.setFlags(result == 0, false, false, n&0x80 != 0)
	return result
}

// rl rotates n left through the carry flag.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 7.
func (r *Registers) rl(n uint8) uint8 {
	result := n<<1 | r.carry()
	r.setFlags(result == 0, false, false, n&0x80 != 0)
	return result
}

// rrc rotates n right, bit 0 moving to both bit 7 and the carry.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 0.
func (r *Registers) rrc(n uint8) uint8 {
	result := n>>1 | n<<7
	r.setFlags(result == 0, false, false, n&0x01 != 0)
	return result
}

// rr rotates n right through the carry flag.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 0.
func (r *Registers) rr(n uint8) uint8 {
	result := n>>1 | r.carry()<<7
	r.setFlags(result == 0, false, false, n&0x01 != 0)
	return result
}

// sla shifts n left into the carry, bit 0 is reset.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 7.
func (r *Registers) sla(n uint8) uint8 {
	result := n << 1
	r.setFlags(result == 0, false, false, n&0x80 != 0)
	return result
}

// sra shifts n right into the carry, bit 7 is kept.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 0.
func (r *Registers) sra(n uint8) uint8 {
	result := n>>1 | n&0x80
	r.setFlags(result == 0, false, false, n&0x01 != 0)
	return result
}

// srl shifts n right into the carry, bit 7 is reset.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 0.
func (r *Registers) srl(n uint8) uint8 {
	result := n >> 1
	r.setFlags(result == 0, false, false, n&0x01 != 0)
	return result
}

// swap the upper and lower nibbles of a byte
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Reset.
func (r *Registers) swap(n uint8) uint8 {
	result := n<<4 | n>>4
	r.setFlags(result == 0, false, false, false)
	return result
}

// daa adjusts A to be a valid BCD number, after an addition or
// subtraction of two BCD numbers.
//
// Flags affected:
//
//	Z - Set if A is zero.
//	N - Not affected.
//	H - Reset.
//	C - Set if an adjustment of 0x60 was made after an addition,
//	    otherwise not affected.
func (r *Registers) daa() {
	if !r.isFlagSet(FlagSubtract) {
		if r.isFlagSet(FlagHalfCarry) || r.A&0x0F > 0x09 {
			r.A += 0x06
		}
		if r.isFlagSet(FlagCarry) || r.A > 0x9F {
			r.A += 0x60
			r.setFlag(FlagCarry, true)
		}
	} else {
		if r.isFlagSet(FlagHalfCarry) {
			r.A -= 0x06
		}
		if r.isFlagSet(FlagCarry) {
			r.A -= 0x60
		}
	}
	r.clearFlag(FlagHalfCarry)
	r.setFlag(FlagZero, r.A == 0)
}

// and performs a bitwise AND operation on n and the A Register.
//
//	AND n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set.
//	C - Reset.
func (r *Registers) and(n uint8) {
	r.A &= n
	r.setFlags(r.A == 0, false, true, false)
}

// or performs a bitwise OR operation on n and the A Register.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Reset.
func (r *Registers) or(n uint8) {
	r.A |= n
	r.setFlags(r.A == 0, false, false, false)
}

// xor performs a bitwise XOR operation on n and the A Register.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Reset.
func (r *Registers) xor(n uint8) {
	r.A ^= n
	r.setFlags(r.A == 0, false, false, false)
}

// cp compares n to the A Register, as a subtraction whose result
// is thrown away.
func (r *Registers) cp(n uint8) {
	r.sub8(r.A, n, 0)
}

// bit tests bit b of n.
//
//	BIT b, r
//	b = 0-7
//	r = A, B, C, D, E, H, L, (HL)
//
// Flags affected:
//
//	Z - Set if bit b of n is 0.
//	N - Reset.
//	H - Set.
//	C - Not affected.
func (r *Registers) bit(b uint8, n uint8) {
	r.setFlag(FlagZero, n&(1<<b) == 0)
	r.clearFlag(FlagSubtract)
	r.setFlag(FlagHalfCarry, true)
}

// res resets bit b of n. No flags are affected.
func (r *Registers) res(b uint8, n uint8) uint8 {
	return n &^ (1 << b)
}

// set sets bit b of n. No flags are affected.
func (r *Registers) set(b uint8, n uint8) uint8 {
	return n | 1<<b
}
