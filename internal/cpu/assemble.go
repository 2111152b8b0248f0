package cpu

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var (
	// mnemonics maps each mnemonic to its opcode, CB instructions
	// are stored with the 0xCB prefix in the high byte.
	mnemonics     map[string]uint16
	mnemonicsOnce sync.Once

	numberPattern = regexp.MustCompile(`-?\$[0-9A-Fa-f]+|-?[0-9]+`)
)

func buildMnemonics() {
	mnemonics = make(map[string]uint16, 512)
	for i, instruction := range InstructionSet {
		if instruction.Mnemonic == "ILLEGAL" || i == 0xCB {
			continue
		}
		mnemonics[instruction.Mnemonic] = uint16(i)
	}
	for i, instruction := range InstructionSetCB {
		mnemonics[instruction.Mnemonic] = 0xCB00 | uint16(i)
	}
}

// Assemble assembles a single instruction, written the way
// Disassemble writes it. Immediate values are written as $hex or
// decimal, relative jumps take a signed offset.
//
//	LD A,$FF
//	JR NZ,-8
//	LDH ($43),A
func Assemble(line string) ([]byte, error) {
	mnemonicsOnce.Do(buildMnemonics)
	line = strings.ToUpper(strings.TrimSpace(line))
	if opcode, ok := mnemonics[line]; ok {
		return encode(opcode, 0, 0), nil
	}

	loc := numberPattern.FindStringIndex(line)
	if loc == nil {
		return nil, fmt.Errorf("cpu: unknown instruction %q", line)
	}
	value, err := parseNumber(line[loc[0]:loc[1]])
	if err != nil {
		return nil, fmt.Errorf("cpu: %q: %w", line, err)
	}

	for _, placeholder := range []string{"d8", "a8", "r8", "d16", "a16"} {
		candidate := line[:loc[0]] + placeholder + line[loc[1]:]
		opcode, ok := mnemonics[candidate]
		if !ok {
			continue
		}
		switch placeholder {
		case "a8":
			if value >= 0xFF00 && value <= 0xFFFF {
				value -= 0xFF00
			}
			fallthrough
		case "d8":
			if value < -128 || value > 0xFF {
				return nil, fmt.Errorf("cpu: %q: value %d does not fit in a byte", line, value)
			}
			return encode(opcode, 2, uint16(value)), nil
		case "r8":
			if value < -128 || value > 127 {
				return nil, fmt.Errorf("cpu: %q: offset %d out of range", line, value)
			}
			return encode(opcode, 2, uint16(uint8(int8(value)))), nil
		default:
			if value < 0 || value > 0xFFFF {
				return nil, fmt.Errorf("cpu: %q: value %d does not fit in a word", line, value)
			}
			return encode(opcode, 3, uint16(value)), nil
		}
	}

	return nil, fmt.Errorf("cpu: unknown instruction %q", line)
}

func encode(opcode uint16, size int, operand uint16) []byte {
	var code []byte
	if opcode&0xCB00 == 0xCB00 {
		code = []byte{0xCB, uint8(opcode)}
	} else {
		code = []byte{uint8(opcode)}
	}
	switch size {
	case 2:
		code = append(code, uint8(operand))
	case 3:
		code = append(code, uint8(operand), uint8(operand>>8))
	}
	// STOP is followed by a padding byte
	if opcode == 0x10 {
		code = append(code, 0x00)
	}
	return code
}

func parseNumber(s string) (int, error) {
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var v int64
	var err error
	if strings.HasPrefix(s, "$") {
		v, err = strconv.ParseInt(s[1:], 16, 32)
	} else {
		v, err = strconv.ParseInt(s, 10, 32)
	}
	if negative {
		v = -v
	}
	return int(v), err
}
