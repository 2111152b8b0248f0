package cpu

import (
	"fmt"
)

// Instruction represents a single instruction of the CPU.
type Instruction struct {
	// Mnemonic of the instruction, with operand placeholders
	// (d8, d16, a8, a16, r8) for immediate values.
	Mnemonic string
	// Size in bytes, including the opcode (and the 0xCB prefix).
	Size uint8
	// Cycles taken, for conditional instructions when taken.
	Cycles uint8
	// NotTaken is subtracted from Cycles when a condition fails.
	NotTaken uint8
	// Flags is the effect on Z, N, H and C. Reset and Set are
	// applied before fn is called.
	Flags [4]FlagEffect

	fn func(*CPU) bool // fn executes the instruction, reporting whether a condition was taken
}

var (
	// InstructionSet holds the first 256 instructions.
	InstructionSet [256]Instruction
	// InstructionSetCB holds the 256 instructions prefixed by 0xCB.
	InstructionSetCB [256]Instruction
)

// always wraps an unconditional instruction body.
func always(fn func(*CPU)) func(*CPU) bool {
	return func(c *CPU) bool {
		fn(c)
		return true
	}
}

// DefineInstruction defines the instruction in the InstructionSet,
// with the provided opcode. flags is described in parseFlags.
func DefineInstruction(opcode uint8, mnemonic string, size, cycles uint8, flags string, fn func(*CPU)) {
	defineConditional(opcode, mnemonic, size, cycles, 0, flags, always(fn))
}

func defineConditional(opcode uint8, mnemonic string, size, cycles, notTaken uint8, flags string, fn func(*CPU) bool) {
	if InstructionSet[opcode].fn != nil {
		panic(fmt.Sprintf("cpu: opcode %02X defined twice (%s, %s)", opcode, InstructionSet[opcode].Mnemonic, mnemonic))
	}
	InstructionSet[opcode] = Instruction{
		Mnemonic: mnemonic,
		Size:     size,
		Cycles:   cycles,
		NotTaken: notTaken,
		Flags:    parseFlags(flags),
		fn:       fn,
	}
}

// DefineInstructionCB defines the instruction in the InstructionSetCB.
func DefineInstructionCB(opcode uint8, mnemonic string, cycles uint8, flags string, fn func(*CPU)) {
	if InstructionSetCB[opcode].fn != nil {
		panic(fmt.Sprintf("cpu: CB opcode %02X defined twice", opcode))
	}
	InstructionSetCB[opcode] = Instruction{
		Mnemonic: mnemonic,
		Size:     2,
		Cycles:   cycles,
		Flags:    parseFlags(flags),
		fn:       always(fn),
	}
}

// illegalOpcodes are the 11 opcodes not used by the CPU.
var illegalOpcodes = []uint8{
	0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD,
}

// illegalOpcode traps the CPU, leaving PC on the opcode.
func illegalOpcode(opcode uint8) func(*CPU) {
	return func(c *CPU) {
		c.PC--
		c.raise(&Trap{PC: c.PC, Opcode: opcode, Reason: TrapIllegalOpcode})
	}
}

// registerNames are the operands encoded in the 3-bit register
// fields of an opcode.
var registerNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

// pairNames are the operands encoded in the 2-bit register pair
// fields of an opcode (SP variant).
var pairNames = [4]string{"BC", "DE", "HL", "SP"}

// stackPairNames are the operands of PUSH and POP.
var stackPairNames = [4]string{"BC", "DE", "HL", "AF"}

// conditionNames are the conditions of JR, JP, CALL and RET.
var conditionNames = [4]string{"NZ", "Z", "NC", "C"}

// registerIndex returns a Register pointer for the given index.
func (c *CPU) registerIndex(index uint8) *Register {
	switch index {
	case 0:
		return &c.B
	case 1:
		return &c.C
	case 2:
		return &c.D
	case 3:
		return &c.E
	case 4:
		return &c.H
	case 5:
		return &c.L
	case 7:
		return &c.A
	}
	panic(fmt.Sprintf("invalid register index: %d", index))
}

// get8 returns the operand of the given register index, where
// index 6 is the byte at (HL).
func (c *CPU) get8(index uint8) uint8 {
	if index == 6 {
		return c.mem.Read(c.HL.Uint16())
	}
	return *c.registerIndex(index)
}

// set8 sets the operand of the given register index.
func (c *CPU) set8(index uint8, value uint8) {
	if index == 6 {
		c.mem.Write(c.HL.Uint16(), value)
		return
	}
	*c.registerIndex(index) = value
}

// get16 returns the register pair of the given index (BC, DE, HL, SP).
func (c *CPU) get16(index uint8) uint16 {
	switch index {
	case 0:
		return c.BC.Uint16()
	case 1:
		return c.DE.Uint16()
	case 2:
		return c.HL.Uint16()
	case 3:
		return c.SP
	}
	panic(fmt.Sprintf("invalid register pair index: %d", index))
}

// set16 sets the register pair of the given index (BC, DE, HL, SP).
func (c *CPU) set16(index uint8, value uint16) {
	switch index {
	case 0:
		c.BC.SetUint16(value)
	case 1:
		c.DE.SetUint16(value)
	case 2:
		c.HL.SetUint16(value)
	case 3:
		c.SP = value
	default:
		panic(fmt.Sprintf("invalid register pair index: %d", index))
	}
}

// stackPair returns the register pair of the given index (BC, DE, HL, AF).
func (c *CPU) stackPair(index uint8) *RegisterPair {
	switch index {
	case 0:
		return c.BC
	case 1:
		return c.DE
	case 2:
		return c.HL
	case 3:
		return c.AF
	}
	panic(fmt.Sprintf("invalid stack pair index: %d", index))
}

// condition evaluates the condition of the given index (NZ, Z, NC, C).
func (c *CPU) condition(index uint8) bool {
	switch index {
	case 0:
		return !c.isFlagSet(FlagZero)
	case 1:
		return c.isFlagSet(FlagZero)
	case 2:
		return !c.isFlagSet(FlagCarry)
	case 3:
		return c.isFlagSet(FlagCarry)
	}
	panic(fmt.Sprintf("invalid condition index: %d", index))
}
