package cheats

import (
	"fmt"
	"strconv"
)

// A GameSharkCode consists of eight-digit hex numbers, formatted
// as ABCDEFGH. Where AB represents the external RAM bank, CD is
// the new data, and GHEF is the memory address.
type GameSharkCode struct {
	ExternalRAMBank uint8
	Address         uint16
	NewData         uint8
}

// ParseGameShark parses a GameShark code.
func ParseGameShark(code string) (GameSharkCode, error) {
	var c GameSharkCode

	// make sure the code is 8 characters long
	if len(code) != 8 {
		return c, fmt.Errorf("invalid gameshark code length: %d", len(code))
	}
	v, err := strconv.ParseUint(code, 16, 32)
	if err != nil {
		return c, fmt.Errorf("invalid gameshark code %q: %w", code, err)
	}

	c.ExternalRAMBank = uint8(v >> 24)
	c.NewData = uint8(v >> 16)
	// the address is stored little endian
	c.Address = uint16(v&0xFF)<<8 | uint16(v>>8&0xFF)

	return c, nil
}
