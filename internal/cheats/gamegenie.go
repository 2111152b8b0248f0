package cheats

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// A GameGenieCode consists of nine-digit hex numbers, formatted as
// ABC-DEF-GHI. AB is the new data, FCDE is the memory address XORed
// by 0xF000, GI is the old data XORed by 0xBA and rotated left by 2,
// and H is unknown (possibly a checksum). The short form ABC-DEF
// replaces the value regardless of the old data.
type GameGenieCode struct {
	NewData uint8
	Address uint16
	OldData uint8
	Compare bool
}

// ParseGameGenie parses a Game Genie code.
func ParseGameGenie(code string) (GameGenieCode, error) {
	var c GameGenieCode
	if len(code) != 7 && len(code) != 11 {
		return c, fmt.Errorf("invalid game genie code length: %d", len(code))
	}

	// remove the hyphens, and interpret the code
	digits := strings.ReplaceAll(code, "-", "")
	if len(digits) != 6 && len(digits) != 9 {
		return c, fmt.Errorf("invalid game genie code %q", code)
	}
	v, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return c, fmt.Errorf("invalid game genie code %q: %w", code, err)
	}
	if len(digits) == 9 {
		// G and I, skipping H
		gi := uint8(v>>4&0xF0) | uint8(v&0x0F)
		c.OldData = bits.RotateLeft8(gi, -2) ^ 0xBA
		c.Compare = true
		v >>= 12
	}

	// ABCDEF
	c.NewData = uint8(v >> 16)
	cde := uint16(v>>4) & 0x0FFF
	f := uint16(v & 0xF)
	c.Address = (f<<12 | cde) ^ 0xF000

	return c, nil
}
