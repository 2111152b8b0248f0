package cpu

import (
	"testing"

	"github.com/thelolagemann/gbcemu/internal/interrupts"
	"github.com/thelolagemann/gbcemu/internal/io"
	"github.com/thelolagemann/gbcemu/internal/types"
)

// testMemory is a flat 64KB memory, with the IO block routed to
// a bus so interrupts work.
type testMemory struct {
	ram [0x10000]uint8
	b   *io.Bus
}

func (m *testMemory) Read(address uint16) uint8 {
	if address >= 0xFF00 {
		return m.b.Read(address)
	}
	return m.ram[address]
}

func (m *testMemory) Write(address uint16, value uint8) {
	if address >= 0xFF00 {
		m.b.Write(address, value)
		return
	}
	m.ram[address] = value
}

type recordingDebugger struct {
	traps []*Trap
}

func (d *recordingDebugger) Break(_ *CPU, t *Trap) {
	d.traps = append(d.traps, t)
}

func newTestCPU() (*CPU, *testMemory, *interrupts.Service) {
	b := io.NewBus()
	irq := interrupts.NewService(b)
	mem := &testMemory{b: b}
	c := NewCPU(mem, b, irq, nil)
	c.PC = 0xC000
	c.SP = 0xDFFE
	return c, mem, irq
}

// load assembles the program at PC.
func load(t *testing.T, c *CPU, mem *testMemory, program ...string) {
	t.Helper()
	address := c.PC
	for _, line := range program {
		code, err := Assemble(line)
		if err != nil {
			t.Fatalf("assemble %q: %v", line, err)
		}
		for _, b := range code {
			mem.ram[address] = b
			address++
		}
	}
}

func TestCPU_AddScenario(t *testing.T) {
	c, mem, _ := newTestCPU()
	load(t, c, mem, "LD A,$FF", "LD B,$01", "ADD A,B")
	for i := 0; i < 3; i++ {
		c.Step()
	}
	if c.A != 0x00 {
		t.Errorf("expected A 0x00, got 0x%02X", c.A)
	}
	if c.F != 0xB0 {
		t.Errorf("expected Z, H and C set with N reset, got F %08b", c.F)
	}
}

func TestCPU_JumpNotTakenScenario(t *testing.T) {
	c, mem, _ := newTestCPU()
	load(t, c, mem, "LD A,123", "JP C,$C100", "LD A,$42")
	c.F = 0

	var cycles []uint8
	for i := 0; i < 3; i++ {
		cycles = append(cycles, c.Step())
	}
	if cycles[0] != 8 || cycles[1] != 12 || cycles[2] != 8 {
		t.Errorf("expected cycles [8 12 8], got %v", cycles)
	}
	if c.A != 0x42 {
		t.Errorf("expected fall through to LD A,$42, A is 0x%02X", c.A)
	}
	if c.PC != 0xC007 {
		t.Errorf("expected PC 0xC007, got 0x%04X", c.PC)
	}
}

func TestCPU_ConditionalCycles(t *testing.T) {
	tests := []struct {
		name            string
		opcode          uint8
		taken, notTaken uint8
	}{
		{"JR", 0x20, 12, 8},
		{"JP", 0xC2, 16, 12},
		{"CALL", 0xC4, 24, 12},
		{"RET", 0xC0, 20, 8},
	}
	for _, tt := range tests {
		for cc := uint8(0); cc < 4; cc++ {
			opcode := tt.opcode | cc<<3
			t.Run(InstructionSet[opcode].Mnemonic, func(t *testing.T) {
				for _, taken := range []bool{true, false} {
					c, mem, _ := newTestCPU()
					mem.ram[0xC000] = opcode
					// pick the flags so that the condition matches taken
					var f uint8
					switch cc {
					case 0:
						if !taken {
							f = 1 << FlagZero
						}
					case 1:
						if taken {
							f = 1 << FlagZero
						}
					case 2:
						if !taken {
							f = 1 << FlagCarry
						}
					case 3:
						if taken {
							f = 1 << FlagCarry
						}
					}
					c.F = f
					expected := tt.notTaken
					if taken {
						expected = tt.taken
					}
					if got := c.Step(); got != expected {
						t.Errorf("taken=%t: expected %d cycles, got %d", taken, expected, got)
					}
					if !taken && c.PC != 0xC000+uint16(InstructionSet[opcode].Size) {
						t.Errorf("taken=%t: expected PC after instruction, got 0x%04X", taken, c.PC)
					}
				}
			})
		}
	}
}

func TestInstruction_Timing(t *testing.T) {
	// in machine cycles, taken branches
	timings := []uint8{
		1, 3, 2, 2, 1, 1, 2, 1, 5, 2, 2, 2, 1, 1, 2, 1,
		1, 3, 2, 2, 1, 1, 2, 1, 3, 2, 2, 2, 1, 1, 2, 1,
		3, 3, 2, 2, 1, 1, 2, 1, 3, 2, 2, 2, 1, 1, 2, 1,
		3, 3, 2, 2, 3, 3, 3, 1, 3, 2, 2, 2, 1, 1, 2, 1,
		1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
		1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
		1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
		2, 2, 2, 2, 2, 2, 1, 2, 1, 1, 1, 1, 1, 1, 2, 1,
		1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
		1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
		1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
		1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
		5, 3, 4, 4, 6, 4, 2, 4, 5, 4, 4, 0, 6, 6, 2, 4,
		5, 3, 4, 0, 6, 4, 2, 4, 5, 4, 4, 0, 6, 0, 2, 4,
		3, 3, 2, 0, 0, 4, 2, 4, 4, 1, 4, 0, 0, 0, 2, 4,
		3, 3, 2, 1, 0, 4, 2, 4, 3, 2, 4, 1, 0, 0, 2, 4,
	}
	for i, timing := range timings {
		if got := InstructionSet[i].Cycles; got != timing*4 {
			t.Errorf("%02X %s: expected %d cycles, got %d", i, InstructionSet[i].Mnemonic, timing*4, got)
		}
	}
}

func TestInstruction_Sizes(t *testing.T) {
	sizes := []uint8{
		1, 3, 1, 1, 1, 1, 2, 1, 3, 1, 1, 1, 1, 1, 2, 1,
		2, 3, 1, 1, 1, 1, 2, 1, 2, 1, 1, 1, 1, 1, 2, 1,
		2, 3, 1, 1, 1, 1, 2, 1, 2, 1, 1, 1, 1, 1, 2, 1,
		2, 3, 1, 1, 1, 1, 2, 1, 2, 1, 1, 1, 1, 1, 2, 1,
	}
	for i, size := range sizes {
		if got := InstructionSet[i].Size; got != size {
			t.Errorf("%02X %s: expected size %d, got %d", i, InstructionSet[i].Mnemonic, size, got)
		}
	}
	for i := 0x40; i < 0xC0; i++ {
		if InstructionSet[i].Size != 1 {
			t.Errorf("%02X %s: expected size 1", i, InstructionSet[i].Mnemonic)
		}
	}
}

func TestInstructionCB_Timing(t *testing.T) {
	for i, instruction := range InstructionSetCB {
		expected := uint8(8)
		if i&7 == 6 {
			expected = 16
			if i >= 0x40 && i < 0x80 {
				expected = 12
			}
		}
		if instruction.Cycles != expected {
			t.Errorf("CB %02X %s: expected %d cycles, got %d", i, instruction.Mnemonic, expected, instruction.Cycles)
		}
		if instruction.Size != 2 {
			t.Errorf("CB %02X %s: expected size 2, got %d", i, instruction.Mnemonic, instruction.Size)
		}
	}
}

func TestInstructionCB_Step(t *testing.T) {
	c, mem, _ := newTestCPU()
	load(t, c, mem, "LD HL,$C100", "LD (HL),$0F", "SWAP (HL)", "BIT 7,(HL)", "SET 0,(HL)", "RES 7,H")
	cycles := []uint8{12, 12, 16, 12, 16, 8}
	for i, expected := range cycles {
		if got := c.Step(); got != expected {
			t.Errorf("step %d: expected %d cycles, got %d", i, expected, got)
		}
	}
	if got := mem.ram[0xC100]; got != 0xF1 {
		t.Errorf("expected (HL) 0xF1, got 0x%02X", got)
	}
	if c.isFlagSet(FlagZero) {
		t.Errorf("expected BIT 7 of 0xF0 to reset Z")
	}
	if c.H != 0x41 {
		t.Errorf("expected RES 7,H to give 0x41, got 0x%02X", c.H)
	}
}

// TestInstruction_FlagEffects executes every instruction and checks
// the flags it declares as fixed, or kept, hold afterwards.
func TestInstruction_FlagEffects(t *testing.T) {
	check := func(t *testing.T, name string, instruction Instruction, code []uint8) {
		for _, initial := range []uint8{0x00, 0xF0} {
			c, mem, _ := newTestCPU()
			copy(mem.ram[0xC000:], code)
			c.F = initial
			c.A, c.B, c.C, c.H, c.L = 0x3C, 0x42, 0x81, 0xC1, 0x00
			c.Step()

			for i, effect := range instruction.Flags {
				flag := flagOrder[i]
				switch effect {
				case Keep:
					if c.isFlagSet(flag) != (initial&(1<<flag) != 0) {
						t.Errorf("%s: flag %d should be kept (F was %02X, now %02X)", name, flag, initial, c.F)
					}
				case Reset:
					if c.isFlagSet(flag) {
						t.Errorf("%s: flag %d should be reset", name, flag)
					}
				case Set:
					if !c.isFlagSet(flag) {
						t.Errorf("%s: flag %d should be set", name, flag)
					}
				}
			}
		}
	}

	for i, instruction := range InstructionSet {
		if instruction.Mnemonic == "ILLEGAL" || i == 0xCB {
			continue
		}
		check(t, instruction.Mnemonic, instruction, []uint8{uint8(i), 0x01, 0x01})
	}
	for i, instruction := range InstructionSetCB {
		check(t, instruction.Mnemonic, instruction, []uint8{0xCB, uint8(i)})
	}
}

func TestCPU_HaltWithoutIME(t *testing.T) {
	c, mem, irq := newTestCPU()
	load(t, c, mem, "HALT", "NOP")

	// no interrupt pending, the CPU spins on HALT
	for i := 0; i < 3; i++ {
		if cycles := c.Step(); cycles != 4 {
			t.Errorf("expected HALT to take 4 cycles, took %d", cycles)
		}
	}
	if c.PC != 0xC000 {
		t.Fatalf("expected PC to stay on HALT, got 0x%04X", c.PC)
	}

	mem.Write(types.IE, interrupts.VBlankFlag)
	irq.Request(interrupts.VBlankFlag)
	c.Step()

	if c.PC != 0xC002 {
		t.Errorf("expected PC past HALT and NOP (0xC002), got 0x%04X", c.PC)
	}
	if irq.Flag()&interrupts.VBlankFlag == 0 {
		t.Errorf("expected IF bit to stay set")
	}
	if c.SP != 0xDFFE {
		t.Errorf("expected no interrupt dispatch, SP is 0x%04X", c.SP)
	}
}

func TestCPU_InterruptDispatch(t *testing.T) {
	c, mem, irq := newTestCPU()
	load(t, c, mem, "EI", "NOP")
	mem.Write(types.IE, interrupts.TimerFlag|interrupts.SerialFlag)
	irq.Request(interrupts.SerialFlag)
	irq.Request(interrupts.TimerFlag)

	if cycles := c.Step(); cycles != 4 || !c.IME {
		t.Fatalf("expected EI to enable IME immediately")
	}
	if cycles := c.Step(); cycles != InterruptCycles {
		t.Errorf("expected dispatch to take %d cycles, took %d", InterruptCycles, cycles)
	}
	if c.PC != 0x0050 {
		t.Errorf("expected timer vector 0x0050, got 0x%04X", c.PC)
	}
	if c.IME {
		t.Errorf("expected IME to be cleared")
	}
	if irq.Flag() != interrupts.SerialFlag {
		t.Errorf("expected only the serial request to remain, got %05b", irq.Flag())
	}
	if c.SP != 0xDFFC || mem.ram[0xDFFD] != 0xC0 || mem.ram[0xDFFC] != 0x01 {
		t.Errorf("expected 0xC001 pushed, got SP 0x%04X", c.SP)
	}

	// RETI returns and re-enables interrupts
	mem.ram[0x0050] = 0xD9
	c.Step()
	if c.PC != 0xC001 || !c.IME {
		t.Errorf("expected RETI to return to 0xC001 with IME set, got 0x%04X %t", c.PC, c.IME)
	}
}

func TestCPU_IllegalOpcode(t *testing.T) {
	for _, opcode := range illegalOpcodes {
		c, mem, _ := newTestCPU()
		d := &recordingDebugger{}
		c.SetDebugger(d)
		mem.ram[0xC000] = opcode

		if cycles := c.Step(); cycles != 0 {
			t.Errorf("%02X: expected 0 cycles, got %d", opcode, cycles)
		}
		if c.PC != 0xC000 {
			t.Errorf("%02X: expected PC to stay on the opcode, got 0x%04X", opcode, c.PC)
		}
		trap := c.Trapped()
		if trap == nil || trap.Opcode != opcode || trap.PC != 0xC000 || trap.Reason != TrapIllegalOpcode {
			t.Errorf("%02X: unexpected trap %+v", opcode, trap)
		}
		if len(d.traps) != 1 {
			t.Errorf("%02X: expected debugger to be called once, got %d", opcode, len(d.traps))
		}
		// trapped CPUs do nothing
		if c.Step() != 0 || c.PC != 0xC000 {
			t.Errorf("%02X: expected trapped CPU to stay put", opcode)
		}
	}
}

func TestCPU_Breakpoint(t *testing.T) {
	c, mem, _ := newTestCPU()
	d := &recordingDebugger{}
	c.SetDebugger(d)
	load(t, c, mem, "LD B,B", "LD B,B")

	c.Step()
	if len(d.traps) != 0 {
		t.Errorf("expected no breakpoint outside of debug mode")
	}
	c.Debug = true
	c.Step()
	if len(d.traps) != 1 || d.traps[0].Reason != TrapBreakpoint || d.traps[0].PC != 0xC001 {
		t.Errorf("expected breakpoint at 0xC001, got %+v", d.traps)
	}
	if c.Trapped() != nil {
		t.Errorf("expected breakpoint not to stop execution")
	}
}

func TestCPU_Stop(t *testing.T) {
	c, mem, _ := newTestCPU()
	c.GBC = true
	load(t, c, mem, "STOP", "STOP")
	mem.b.Set(types.DIV, 0xAB)
	mem.b.Set(types.KEY1, 0x01)

	c.Step()
	if c.PC != 0xC002 {
		t.Errorf("expected STOP to be 2 bytes, PC is 0x%04X", c.PC)
	}
	if mem.b.Get(types.DIV) != 0 {
		t.Errorf("expected DIV to be reset")
	}
	if !c.DoubleSpeed() || mem.b.Get(types.KEY1) != 0x80 {
		t.Errorf("expected double speed with KEY1 0x80, got %t 0x%02X", c.DoubleSpeed(), mem.b.Get(types.KEY1))
	}

	// not armed, no switch
	c.Step()
	if !c.DoubleSpeed() {
		t.Errorf("expected speed to stay doubled without arming KEY1")
	}
}

func TestCPU_TerminateOnStop(t *testing.T) {
	c, mem, _ := newTestCPU()
	c.TerminateOnStop = true
	load(t, c, mem, "STOP")
	c.Step()
	if trap := c.Trapped(); trap == nil || trap.Reason != TrapStop {
		t.Errorf("expected stop trap, got %v", trap)
	}
}

func TestCPU_State(t *testing.T) {
	c, _, _ := newTestCPU()
	c.AF.SetUint16(0x12F0)
	c.BC.SetUint16(0x3456)
	c.DE.SetUint16(0x789A)
	c.HL.SetUint16(0xBCDE)
	c.SP = 0xFFF0
	c.IME = true

	s := types.NewState()
	c.Save(s)
	c2, _, _ := newTestCPU()
	c2.Load(types.StateFromBytes(s.Bytes()))

	if c2.AF.Uint16() != 0x12F0 || c2.BC.Uint16() != 0x3456 || c2.DE.Uint16() != 0x789A ||
		c2.HL.Uint16() != 0xBCDE || c2.SP != 0xFFF0 || c2.PC != c.PC || !c2.IME {
		t.Errorf("registers were not restored")
	}
}
