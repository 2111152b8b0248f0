package cpu

import (
	"fmt"
	"strings"
)

// Disassemble returns the instruction at address as text, with
// its immediate operands resolved, along with its size in bytes.
// Relative jumps are shown with their target address.
func Disassemble(mem Memory, address uint16) (string, uint8) {
	opcode := mem.Read(address)
	instruction := InstructionSet[opcode]
	if opcode == 0xCB {
		instruction = InstructionSetCB[mem.Read(address+1)]
	}
	text := instruction.Mnemonic

	switch {
	case strings.Contains(text, "d16"):
		text = strings.Replace(text, "d16", fmt.Sprintf("$%04X", read16(mem, address+1)), 1)
	case strings.Contains(text, "a16"):
		text = strings.Replace(text, "a16", fmt.Sprintf("$%04X", read16(mem, address+1)), 1)
	case strings.Contains(text, "d8"):
		text = strings.Replace(text, "d8", fmt.Sprintf("$%02X", mem.Read(address+1)), 1)
	case strings.Contains(text, "a8"):
		text = strings.Replace(text, "a8", fmt.Sprintf("$FF%02X", mem.Read(address+1)), 1)
	case strings.HasPrefix(text, "JR"):
		offset := int8(mem.Read(address + 1))
		target := address + 2 + uint16(int16(offset))
		text = strings.Replace(text, "r8", fmt.Sprintf("$%04X", target), 1)
	case strings.Contains(text, "r8"):
		offset := int8(mem.Read(address + 1))
		if offset < 0 {
			text = strings.Replace(text, "+r8", fmt.Sprintf("-$%02X", -int16(offset)), 1)
			text = strings.Replace(text, "r8", fmt.Sprintf("-$%02X", -int16(offset)), 1)
		} else {
			text = strings.Replace(text, "r8", fmt.Sprintf("$%02X", offset), 1)
		}
	}

	return text, instruction.Size
}

func read16(mem Memory, address uint16) uint16 {
	return uint16(mem.Read(address)) | uint16(mem.Read(address+1))<<8
}
