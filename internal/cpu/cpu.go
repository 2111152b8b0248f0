// Package cpu provides the Sharp LR35902 CPU interpreter. Each
// instruction is described by an entry in InstructionSet (or
// InstructionSetCB for the 0xCB prefix), holding its size, its
// cycle cost and its flag effects alongside the function
// executing it.
package cpu

import (
	"fmt"

	"github.com/thelolagemann/gbcemu/internal/interrupts"
	"github.com/thelolagemann/gbcemu/internal/io"
	"github.com/thelolagemann/gbcemu/internal/types"
	"github.com/thelolagemann/gbcemu/pkg/log"
)

const (
	// ClockSpeed is the clock speed of the CPU.
	ClockSpeed = 4194304

	// InterruptCycles is the number of cycles taken to dispatch
	// an interrupt.
	InterruptCycles = 20

	opcodeHALT = 0x76
)

// Memory is the address space as seen by the CPU.
type Memory interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Debugger is notified whenever the CPU traps, or hits a software
// breakpoint (LD B, B) in debug mode.
type Debugger interface {
	Break(c *CPU, t *Trap)
}

// TrapReason is the reason the CPU stopped.
type TrapReason uint8

const (
	// TrapIllegalOpcode is raised by one of the 11 unused opcodes.
	TrapIllegalOpcode TrapReason = iota
	// TrapStop is raised by STOP when the CPU is set to terminate on it.
	TrapStop
	// TrapBreakpoint is raised by LD B, B in debug mode. It does
	// not stop execution.
	TrapBreakpoint
)

// Trap describes why and where the CPU stopped executing.
type Trap struct {
	PC     uint16
	Opcode uint8
	Reason TrapReason
}

func (t *Trap) Error() string {
	switch t.Reason {
	case TrapIllegalOpcode:
		return fmt.Sprintf("cpu: illegal opcode %02X at %04X", t.Opcode, t.PC)
	case TrapStop:
		return fmt.Sprintf("cpu: stopped at %04X", t.PC)
	case TrapBreakpoint:
		return fmt.Sprintf("cpu: breakpoint at %04X", t.PC)
	}
	panic(fmt.Sprintf("cpu: unknown trap reason %d", t.Reason))
}

// CPU represents the Gameboy CPU. It is responsible for executing instructions.
type CPU struct {
	// PC is the program counter, it points to the next instruction to be executed.
	PC uint16
	// SP is the stack pointer, it points to the top of the stack.
	SP uint16
	// Registers contains the 8-bit registers, as well as the 16-bit register pairs.
	Registers
	// IME is the interrupt master enable flag.
	IME bool

	// GBC enables the CGB speed switch on STOP.
	GBC bool
	// Debug enables the LD B, B breakpoint and instruction tracing.
	Debug bool
	// TerminateOnStop makes STOP trap, ending execution.
	TerminateOnStop bool

	doubleSpeed bool
	trap        *Trap
	debugger    Debugger

	mem Memory
	b   *io.Bus
	irq *interrupts.Service
	log log.Logger
}

// NewCPU creates a new CPU executing from mem. The bus and interrupt
// service are used for KEY1 and interrupt dispatch.
func NewCPU(mem Memory, b *io.Bus, irq *interrupts.Service, l log.Logger) *CPU {
	if l == nil {
		l = log.NewNullLogger()
	}
	c := &CPU{
		mem: mem,
		b:   b,
		irq: irq,
		log: l,
	}
	c.wirePairs()

	return c
}

// SetDebugger sets the hook called on traps and breakpoints.
func (c *CPU) SetDebugger(d Debugger) {
	c.debugger = d
}

// Reset sets the registers to the values left by the boot ROM of
// the given model, and clears any trap.
func (c *CPU) Reset(model types.Model) {
	regs := types.ModelRegisters[model]
	c.A, c.F, c.B, c.C = regs[0], regs[1], regs[2], regs[3]
	c.D, c.E, c.H, c.L = regs[4], regs[5], regs[6], regs[7]
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.IME = false
	c.doubleSpeed = false
	c.trap = nil
}

// DoubleSpeed returns true if the CPU is running in CGB double speed.
func (c *CPU) DoubleSpeed() bool {
	return c.doubleSpeed
}

// Trapped returns the trap that stopped the CPU, or nil.
func (c *CPU) Trapped() *Trap {
	return c.trap
}

// Step executes a single instruction, or dispatches a single
// interrupt, and returns the number of cycles taken. A trapped
// CPU does nothing and returns 0.
func (c *CPU) Step() uint8 {
	if c.trap != nil {
		return 0
	}

	// check for interrupts, a pending interrupt releases HALT
	// regardless of IME
	if c.irq.HasInterrupts() {
		if c.mem.Read(c.PC) == opcodeHALT {
			c.PC++
		}
		if c.IME {
			c.IME = false
			c.push(c.PC)
			c.PC = c.irq.Vector()
			return InterruptCycles
		}
	}

	if c.Debug {
		text, _ := Disassemble(c.mem, c.PC)
		c.log.Debugf("%04X: %-16s AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X",
			c.PC, text, c.AF.Uint16(), c.BC.Uint16(), c.DE.Uint16(), c.HL.Uint16(), c.SP)
	}

	opcode := c.fetch()
	instruction := &InstructionSet[opcode]
	if opcode == 0xCB {
		instruction = &InstructionSetCB[c.fetch()]
	}

	c.applyFlags(instruction.Flags)
	cycles := instruction.Cycles
	if !instruction.fn(c) {
		cycles -= instruction.NotTaken
	}

	return cycles
}

// raise records a trap and notifies the debugger.
func (c *CPU) raise(t *Trap) {
	if t.Reason != TrapBreakpoint {
		c.trap = t
		c.log.Errorf("%s", t.Error())
	}
	if c.debugger != nil {
		c.debugger.Break(c, t)
	}
}

// fetch reads the byte at PC and increments PC.
func (c *CPU) fetch() uint8 {
	value := c.mem.Read(c.PC)
	c.PC++
	return value
}

// fetch16 reads the little endian word at PC and increments PC by 2.
func (c *CPU) fetch16() uint16 {
	return uint16(c.fetch()) | uint16(c.fetch())<<8
}

// push pushes a word onto the stack, high byte first.
func (c *CPU) push(value uint16) {
	c.SP--
	c.mem.Write(c.SP, uint8(value>>8))
	c.SP--
	c.mem.Write(c.SP, uint8(value))
}

// pop pops a word from the stack.
func (c *CPU) pop() uint16 {
	low := c.mem.Read(c.SP)
	c.SP++
	high := c.mem.Read(c.SP)
	c.SP++
	return uint16(high)<<8 | uint16(low)
}

// stop executes STOP, which on the CGB doubles as the speed switch.
func (c *CPU) stop() {
	// writing DIV resets the divider
	c.mem.Write(types.DIV, 0)

	if c.GBC && c.b.TestBit(types.KEY1, types.Bit0) {
		c.doubleSpeed = !c.doubleSpeed
		c.log.Debugf("cpu: double speed %t", c.doubleSpeed)
		if c.doubleSpeed {
			c.b.SetBit(types.KEY1, types.Bit7)
		} else {
			c.b.ClearBit(types.KEY1, types.Bit7)
		}

		// clear armed bit
		c.b.ClearBit(types.KEY1, types.Bit0)
	}

	if c.TerminateOnStop {
		c.raise(&Trap{PC: c.PC - 2, Opcode: 0x10, Reason: TrapStop})
	}
}

var _ types.Stater = (*CPU)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - A, F, B, C, D, E, H, L (uint8)
//   - SP, PC (uint16)
//   - doubleSpeed, IME (bool)
func (c *CPU) Load(s *types.State) {
	c.A = s.Read8()
	c.F = s.Read8() & 0xF0
	c.B = s.Read8()
	c.C = s.Read8()
	c.D = s.Read8()
	c.E = s.Read8()
	c.H = s.Read8()
	c.L = s.Read8()
	c.SP = s.Read16()
	c.PC = s.Read16()
	c.doubleSpeed = s.ReadBool()
	c.IME = s.ReadBool()
	c.trap = nil
}

// Save implements the types.Stater interface.
func (c *CPU) Save(s *types.State) {
	s.Write8(c.A)
	s.Write8(c.F)
	s.Write8(c.B)
	s.Write8(c.C)
	s.Write8(c.D)
	s.Write8(c.E)
	s.Write8(c.H)
	s.Write8(c.L)
	s.Write16(c.SP)
	s.Write16(c.PC)
	s.WriteBool(c.doubleSpeed)
	s.WriteBool(c.IME)
}
