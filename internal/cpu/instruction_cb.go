package cpu

import (
	"fmt"
)

// cbOperations are the rotate and shift operations of the 0x00 -
// 0x3F block of the CB prefixed instructions.
var cbOperations = [8]struct {
	name  string
	flags string
	fn    func(r *Registers, n uint8) uint8
}{
	{"RLC", "Z00C", (*Registers).rlc},
	{"RRC", "Z00C", (*Registers).rrc},
	{"RL", "Z00C", (*Registers).rl},
	{"RR", "Z00C", (*Registers).rr},
	{"SLA", "Z00C", (*Registers).sla},
	{"SRA", "Z00C", (*Registers).sra},
	{"SWAP", "Z000", (*Registers).swap},
	{"SRL", "Z00C", (*Registers).srl},
}

func generateCBInstructions() {
	// loop through each register (B, C, D, E, H, L, (HL), A)
	for r := uint8(0); r < 8; r++ {
		r := r
		// (HL) needs to be read and written back
		cycles, bitCycles := uint8(8), uint8(8)
		if r == 6 {
			cycles, bitCycles = 16, 12
		}

		// 0x00 - 0x3F - rotates, shifts and swap
		for op := uint8(0); op < 8; op++ {
			operation := cbOperations[op]
			DefineInstructionCB(op<<3|r, fmt.Sprintf("%s %s", operation.name, registerNames[r]), cycles, operation.flags, func(c *CPU) {
				c.set8(r, operation.fn(&c.Registers, c.get8(r)))
			})
		}

		for b := uint8(0); b < 8; b++ {
			b := b
			// 0x40 - 0x7F - BIT b, r
			DefineInstructionCB(0x40|b<<3|r, fmt.Sprintf("BIT %d,%s", b, registerNames[r]), bitCycles, "Z01-", func(c *CPU) {
				c.bit(b, c.get8(r))
			})
			// 0x80 - 0xBF - RES b, r
			DefineInstructionCB(0x80|b<<3|r, fmt.Sprintf("RES %d,%s", b, registerNames[r]), cycles, "----", func(c *CPU) {
				c.set8(r, c.res(b, c.get8(r)))
			})
			// 0xC0 - 0xFF - SET b, r
			DefineInstructionCB(0xC0|b<<3|r, fmt.Sprintf("SET %d,%s", b, registerNames[r]), cycles, "----", func(c *CPU) {
				c.set8(r, c.set(b, c.get8(r)))
			})
		}
	}
}
