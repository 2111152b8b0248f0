package cpu

import (
	"fmt"
)

func init() {
	generateLoadInstructions()
	generateArithmeticInstructions()
	generateJumpInstructions()
	generateStackInstructions()
	generateMiscInstructions()
	generateCBInstructions()

	for _, opcode := range illegalOpcodes {
		DefineInstruction(opcode, "ILLEGAL", 1, 0, "----", illegalOpcode(opcode))
	}
	// the prefix is dispatched by Step
	InstructionSet[0xCB] = Instruction{Mnemonic: "PREFIX CB", Size: 1, fn: func(*CPU) bool { return true }}

	for i, instruction := range InstructionSet {
		if instruction.fn == nil {
			panic(fmt.Sprintf("cpu: opcode %02X is not defined", i))
		}
	}
}

func generateLoadInstructions() {
	// 0x40 - 0x7F - LD r, r'
	for dst := uint8(0); dst < 8; dst++ {
		for src := uint8(0); src < 8; src++ {
			opcode := 0x40 | dst<<3 | src
			if opcode == opcodeHALT {
				continue
			}
			dst, src := dst, src
			cycles := uint8(4)
			if dst == 6 || src == 6 {
				cycles = 8
			}
			mnemonic := fmt.Sprintf("LD %s,%s", registerNames[dst], registerNames[src])
			if opcode == 0x40 {
				DefineInstruction(opcode, mnemonic, 1, cycles, "----", func(c *CPU) {
					if c.Debug {
						c.raise(&Trap{PC: c.PC - 1, Opcode: 0x40, Reason: TrapBreakpoint})
					}
				})
				continue
			}
			DefineInstruction(opcode, mnemonic, 1, cycles, "----", func(c *CPU) {
				c.set8(dst, c.get8(src))
			})
		}
	}

	// LD r, d8
	for r := uint8(0); r < 8; r++ {
		r := r
		cycles := uint8(8)
		if r == 6 {
			cycles = 12
		}
		DefineInstruction(0x06|r<<3, fmt.Sprintf("LD %s,d8", registerNames[r]), 2, cycles, "----", func(c *CPU) {
			c.set8(r, c.fetch())
		})
	}

	// LD rr, d16
	for p := uint8(0); p < 4; p++ {
		p := p
		DefineInstruction(0x01|p<<4, fmt.Sprintf("LD %s,d16", pairNames[p]), 3, 12, "----", func(c *CPU) {
			c.set16(p, c.fetch16())
		})
	}

	DefineInstruction(0x02, "LD (BC),A", 1, 8, "----", func(c *CPU) {
		c.mem.Write(c.BC.Uint16(), c.A)
	})
	DefineInstruction(0x12, "LD (DE),A", 1, 8, "----", func(c *CPU) {
		c.mem.Write(c.DE.Uint16(), c.A)
	})
	DefineInstruction(0x22, "LD (HL+),A", 1, 8, "----", func(c *CPU) {
		c.mem.Write(c.HL.Uint16(), c.A)
		c.HL.SetUint16(c.HL.Uint16() + 1)
	})
	DefineInstruction(0x32, "LD (HL-),A", 1, 8, "----", func(c *CPU) {
		c.mem.Write(c.HL.Uint16(), c.A)
		c.HL.SetUint16(c.HL.Uint16() - 1)
	})
	DefineInstruction(0x0A, "LD A,(BC)", 1, 8, "----", func(c *CPU) {
		c.A = c.mem.Read(c.BC.Uint16())
	})
	DefineInstruction(0x1A, "LD A,(DE)", 1, 8, "----", func(c *CPU) {
		c.A = c.mem.Read(c.DE.Uint16())
	})
	DefineInstruction(0x2A, "LD A,(HL+)", 1, 8, "----", func(c *CPU) {
		c.A = c.mem.Read(c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() + 1)
	})
	DefineInstruction(0x3A, "LD A,(HL-)", 1, 8, "----", func(c *CPU) {
		c.A = c.mem.Read(c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() - 1)
	})
	DefineInstruction(0x08, "LD (a16),SP", 3, 20, "----", func(c *CPU) {
		address := c.fetch16()
		c.mem.Write(address, uint8(c.SP))
		c.mem.Write(address+1, uint8(c.SP>>8))
	})
	DefineInstruction(0xE0, "LDH (a8),A", 2, 12, "----", func(c *CPU) {
		c.mem.Write(0xFF00|uint16(c.fetch()), c.A)
	})
	DefineInstruction(0xF0, "LDH A,(a8)", 2, 12, "----", func(c *CPU) {
		c.A = c.mem.Read(0xFF00 | uint16(c.fetch()))
	})
	DefineInstruction(0xE2, "LD (C),A", 1, 8, "----", func(c *CPU) {
		c.mem.Write(0xFF00|uint16(c.C), c.A)
	})
	DefineInstruction(0xF2, "LD A,(C)", 1, 8, "----", func(c *CPU) {
		c.A = c.mem.Read(0xFF00 | uint16(c.C))
	})
	DefineInstruction(0xEA, "LD (a16),A", 3, 16, "----", func(c *CPU) {
		c.mem.Write(c.fetch16(), c.A)
	})
	DefineInstruction(0xFA, "LD A,(a16)", 3, 16, "----", func(c *CPU) {
		c.A = c.mem.Read(c.fetch16())
	})
	DefineInstruction(0xF8, "LD HL,SP+r8", 2, 12, "00HC", func(c *CPU) {
		c.HL.SetUint16(c.addSP(c.SP, int8(c.fetch())))
	})
	DefineInstruction(0xF9, "LD SP,HL", 1, 8, "----", func(c *CPU) {
		c.SP = c.HL.Uint16()
	})
}

// aluOperations are the 8 operations of the 0x80 - 0xBF block, and
// of the immediate forms (0xC6, 0xCE, ... 0xFE).
var aluOperations = [8]struct {
	name  string
	flags string
	fn    func(c *CPU, n uint8)
}{
	{"ADD A,", "Z0HC", func(c *CPU, n uint8) { c.A = c.add8(c.A, n, 0) }},
	{"ADC A,", "Z0HC", func(c *CPU, n uint8) { c.A = c.add8(c.A, n, c.carry()) }},
	{"SUB ", "Z1HC", func(c *CPU, n uint8) { c.A = c.sub8(c.A, n, 0) }},
	{"SBC A,", "Z1HC", func(c *CPU, n uint8) { c.A = c.sub8(c.A, n, c.carry()) }},
	{"AND ", "Z010", func(c *CPU, n uint8) { c.and(n) }},
	{"XOR ", "Z000", func(c *CPU, n uint8) { c.xor(n) }},
	{"OR ", "Z000", func(c *CPU, n uint8) { c.or(n) }},
	{"CP ", "Z1HC", func(c *CPU, n uint8) { c.cp(n) }},
}

func generateArithmeticInstructions() {
	for op := uint8(0); op < 8; op++ {
		operation := aluOperations[op]

		// 0x80 - 0xBF - ALU A, r
		for r := uint8(0); r < 8; r++ {
			r := r
			cycles := uint8(4)
			if r == 6 {
				cycles = 8
			}
			DefineInstruction(0x80|op<<3|r, operation.name+registerNames[r], 1, cycles, operation.flags, func(c *CPU) {
				operation.fn(c, c.get8(r))
			})
		}

		// ALU A, d8
		DefineInstruction(0xC6|op<<3, operation.name+"d8", 2, 8, operation.flags, func(c *CPU) {
			operation.fn(c, c.fetch())
		})
	}

	// INC r / DEC r
	for r := uint8(0); r < 8; r++ {
		r := r
		cycles := uint8(4)
		if r == 6 {
			cycles = 12
		}
		DefineInstruction(0x04|r<<3, "INC "+registerNames[r], 1, cycles, "Z0H-", func(c *CPU) {
			c.set8(r, c.inc8(c.get8(r)))
		})
		DefineInstruction(0x05|r<<3, "DEC "+registerNames[r], 1, cycles, "Z1H-", func(c *CPU) {
			c.set8(r, c.dec8(c.get8(r)))
		})
	}

	// INC rr / DEC rr / ADD HL, rr
	for p := uint8(0); p < 4; p++ {
		p := p
		DefineInstruction(0x03|p<<4, "INC "+pairNames[p], 1, 8, "----", func(c *CPU) {
			c.set16(p, c.get16(p)+1)
		})
		DefineInstruction(0x0B|p<<4, "DEC "+pairNames[p], 1, 8, "----", func(c *CPU) {
			c.set16(p, c.get16(p)-1)
		})
		DefineInstruction(0x09|p<<4, "ADD HL,"+pairNames[p], 1, 8, "-0HC", func(c *CPU) {
			c.HL.SetUint16(c.add16(c.HL.Uint16(), c.get16(p)))
		})
	}

	DefineInstruction(0xE8, "ADD SP,r8", 2, 16, "00HC", func(c *CPU) {
		c.SP = c.addSP(c.SP, int8(c.fetch()))
	})
	// H is read by the adjustment, so it is cleared by daa itself
	DefineInstruction(0x27, "DAA", 1, 4, "Z-HC", func(c *CPU) {
		c.daa()
	})
	DefineInstruction(0x2F, "CPL", 1, 4, "-11-", func(c *CPU) {
		c.A = ^c.A
	})
	DefineInstruction(0x37, "SCF", 1, 4, "-001", func(c *CPU) {})
	DefineInstruction(0x3F, "CCF", 1, 4, "-00C", func(c *CPU) {
		c.setFlag(FlagCarry, !c.isFlagSet(FlagCarry))
	})

	// rotates of A always reset the zero flag
	DefineInstruction(0x07, "RLCA", 1, 4, "000C", func(c *CPU) {
		c.A = c.rlc(c.A)
		c.clearFlag(FlagZero)
	})
	DefineInstruction(0x0F, "RRCA", 1, 4, "000C", func(c *CPU) {
		c.A = c.rrc(c.A)
		c.clearFlag(FlagZero)
	})
	DefineInstruction(0x17, "RLA", 1, 4, "000C", func(c *CPU) {
		c.A = c.rl(c.A)
		c.clearFlag(FlagZero)
	})
	DefineInstruction(0x1F, "RRA", 1, 4, "000C", func(c *CPU) {
		c.A = c.rr(c.A)
		c.clearFlag(FlagZero)
	})
}

func generateJumpInstructions() {
	DefineInstruction(0x18, "JR r8", 2, 12, "----", func(c *CPU) {
		offset := int8(c.fetch())
		c.PC += uint16(int16(offset))
	})
	DefineInstruction(0xC3, "JP a16", 3, 16, "----", func(c *CPU) {
		c.PC = c.fetch16()
	})
	DefineInstruction(0xE9, "JP HL", 1, 4, "----", func(c *CPU) {
		c.PC = c.HL.Uint16()
	})
	DefineInstruction(0xCD, "CALL a16", 3, 24, "----", func(c *CPU) {
		address := c.fetch16()
		c.push(c.PC)
		c.PC = address
	})
	DefineInstruction(0xC9, "RET", 1, 16, "----", func(c *CPU) {
		c.PC = c.pop()
	})
	DefineInstruction(0xD9, "RETI", 1, 16, "----", func(c *CPU) {
		c.PC = c.pop()
		c.IME = true
	})

	for cc := uint8(0); cc < 4; cc++ {
		cc := cc
		name := conditionNames[cc]

		// JR cc, r8 - 12 taken, 8 not taken
		defineConditional(0x20|cc<<3, "JR "+name+",r8", 2, 12, 4, "----", func(c *CPU) bool {
			offset := int8(c.fetch())
			if !c.condition(cc) {
				return false
			}
			c.PC += uint16(int16(offset))
			return true
		})
		// JP cc, a16 - 16 taken, 12 not taken
		defineConditional(0xC2|cc<<3, "JP "+name+",a16", 3, 16, 4, "----", func(c *CPU) bool {
			address := c.fetch16()
			if !c.condition(cc) {
				return false
			}
			c.PC = address
			return true
		})
		// CALL cc, a16 - 24 taken, 12 not taken
		defineConditional(0xC4|cc<<3, "CALL "+name+",a16", 3, 24, 12, "----", func(c *CPU) bool {
			address := c.fetch16()
			if !c.condition(cc) {
				return false
			}
			c.push(c.PC)
			c.PC = address
			return true
		})
		// RET cc - 20 taken, 8 not taken
		defineConditional(0xC0|cc<<3, "RET "+name, 1, 20, 12, "----", func(c *CPU) bool {
			if !c.condition(cc) {
				return false
			}
			c.PC = c.pop()
			return true
		})
	}

	// RST n
	for n := uint8(0); n < 8; n++ {
		vector := uint16(n) * 8
		DefineInstruction(0xC7|n<<3, fmt.Sprintf("RST %02XH", vector), 1, 16, "----", func(c *CPU) {
			c.push(c.PC)
			c.PC = vector
		})
	}
}

func generateStackInstructions() {
	for p := uint8(0); p < 4; p++ {
		p := p
		flags := "----"
		if p == 3 {
			// POP AF loads the flags
			flags = "ZNHC"
		}
		DefineInstruction(0xC1|p<<4, "POP "+stackPairNames[p], 1, 12, flags, func(c *CPU) {
			c.stackPair(p).SetUint16(c.pop())
		})
		DefineInstruction(0xC5|p<<4, "PUSH "+stackPairNames[p], 1, 16, "----", func(c *CPU) {
			c.push(c.stackPair(p).Uint16())
		})
	}
}

func generateMiscInstructions() {
	DefineInstruction(0x00, "NOP", 1, 4, "----", func(c *CPU) {})
	DefineInstruction(0x10, "STOP", 2, 4, "----", func(c *CPU) {
		c.fetch()
		c.stop()
	})
	DefineInstruction(opcodeHALT, "HALT", 1, 4, "----", func(c *CPU) {
		// spin on HALT until an interrupt is pending
		c.PC--
	})
	DefineInstruction(0xF3, "DI", 1, 4, "----", func(c *CPU) {
		c.IME = false
	})
	DefineInstruction(0xFB, "EI", 1, 4, "----", func(c *CPU) {
		c.IME = true
	})
}
