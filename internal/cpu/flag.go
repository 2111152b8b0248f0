package cpu

// Flag is the bit index of a flag in the F register.
type Flag = uint8

const (
	FlagZero      Flag = 7
	FlagSubtract  Flag = 6
	FlagHalfCarry Flag = 5
	FlagCarry     Flag = 4
)

// FlagEffect describes what an instruction does to a single flag.
type FlagEffect uint8

const (
	// Keep leaves the flag untouched.
	Keep FlagEffect = iota
	// Reset clears the flag.
	Reset
	// Set sets the flag.
	Set
	// Computed means the flag is derived from the result.
	Computed
)

// flagOrder is the order of FlagEffect in Instruction.Flags.
var flagOrder = [4]Flag{FlagZero, FlagSubtract, FlagHalfCarry, FlagCarry}

// parseFlags parses a flag description in the form used by opcode
// tables, e.g. "Z0H-". Each character, in Z N H C order, is '-'
// (Keep), '0' (Reset), '1' (Set) or a letter (Computed).
func parseFlags(s string) [4]FlagEffect {
	if len(s) != 4 {
		panic("cpu: flag description must have 4 characters: " + s)
	}
	var effects [4]FlagEffect
	for i := 0; i < 4; i++ {
		switch s[i] {
		case '-':
			effects[i] = Keep
		case '0':
			effects[i] = Reset
		case '1':
			effects[i] = Set
		default:
			effects[i] = Computed
		}
	}
	return effects
}

// setFlag sets or clears a flag of the F register.
func (r *Registers) setFlag(flag Flag, value bool) {
	if value {
		r.F |= 1 << flag
	} else {
		r.F &^= 1 << flag
	}
}

// clearFlag clears a flag from the F register.
func (r *Registers) clearFlag(flag Flag) {
	r.F &^= 1 << flag
}

// isFlagSet returns true if the given flag is set.
func (r *Registers) isFlagSet(flag Flag) bool {
	return r.F&(1<<flag) != 0
}

// setFlags sets all 4 flags at once.
func (r *Registers) setFlags(zero, subtract, halfCarry, carry bool) {
	r.setFlag(FlagZero, zero)
	r.setFlag(FlagSubtract, subtract)
	r.setFlag(FlagHalfCarry, halfCarry)
	r.setFlag(FlagCarry, carry)
}

// applyFlags applies the fixed effects (Reset, Set) of an
// instruction to F.
func (r *Registers) applyFlags(effects [4]FlagEffect) {
	for i, e := range effects {
		switch e {
		case Reset:
			r.clearFlag(flagOrder[i])
		case Set:
			r.setFlag(flagOrder[i], true)
		}
	}
}

// carry returns the carry flag as 0 or 1.
func (r *Registers) carry() uint8 {
	return (r.F >> FlagCarry) & 1
}
