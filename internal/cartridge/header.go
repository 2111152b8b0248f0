package cartridge

import (
	"fmt"
	"strings"
)

type Flag uint8

const (
	FlagOnlyDMG Flag = iota
	FlagSupportsCGB
	FlagOnlyCGB
)

// header offsets, relative to the start of ROM page 0
const (
	HeaderStart         = 0x0100
	HeaderEnd           = 0x0150
	HeaderCGBFlag       = 0x0143
	HeaderCartridgeType = 0x0147
	HeaderROMSize       = 0x0148
	HeaderRAMSize       = 0x0149
)

var (
	ramMAP = map[uint8]uint{
		0x00: 0,
		0x02: 8 * 1024,
		0x03: 32 * 1024,
		0x04: 128 * 1024,
		0x05: 64 * 1024,
	}
)

// Type is the cartridge type, stored at 0x0147 of the header.
type Type uint8

const (
	ROM               Type = 0x00
	MBC1              Type = 0x01
	MBC1RAM           Type = 0x02
	MBC1RAMBATT       Type = 0x03
	MBC2              Type = 0x05
	MBC2BATT          Type = 0x06
	ROMRAM            Type = 0x08
	ROMRAMBATT        Type = 0x09
	MMM01             Type = 0x0B
	MMM01RAM          Type = 0x0C
	MMM01RAMBATT      Type = 0x0D
	MBC3TIMERBATT     Type = 0x0F
	MBC3TIMERRAMBATT  Type = 0x10
	MBC3              Type = 0x11
	MBC3RAM           Type = 0x12
	MBC3RAMBATT       Type = 0x13
	MBC5              Type = 0x19
	MBC5RAM           Type = 0x1A
	MBC5RAMBATT       Type = 0x1B
	MBC5RUMBLE        Type = 0x1C
	MBC5RUMBLERAM     Type = 0x1D
	MBC5RUMBLERAMBATT Type = 0x1E
	MBC6              Type = 0x20
	MBC7SENSORRUMBLE  Type = 0x22
	POCKETCAMERA      Type = 0xFC
	BANDAITAMA5       Type = 0xFD
	HUDSONHUC3        Type = 0xFE
	HUDSONHUC1        Type = 0xFF
)

// Kind returns the bank controller used by cartridges of
// this type.
func (t Type) Kind() Kind {
	switch t {
	case ROM, ROMRAM, ROMRAMBATT:
		return KindNone
	case MBC1, MBC1RAM, MBC1RAMBATT:
		return KindMBC1
	case MBC2, MBC2BATT:
		return KindMBC2
	case MMM01, MMM01RAM, MMM01RAMBATT:
		return KindMMM01
	case MBC3TIMERBATT, MBC3TIMERRAMBATT, MBC3, MBC3RAM, MBC3RAMBATT:
		return KindMBC3
	case MBC5, MBC5RAM, MBC5RAMBATT, MBC5RUMBLE, MBC5RUMBLERAM, MBC5RUMBLERAMBATT:
		return KindMBC5
	case MBC6:
		return KindMBC6
	case MBC7SENSORRUMBLE:
		return KindMBC7
	case HUDSONHUC1:
		return KindHuC1
	case HUDSONHUC3:
		return KindHuC3
	}
	return KindOther
}

// Battery returns true if the external RAM of cartridges of
// this type is battery backed, and should be persisted.
func (t Type) Battery() bool {
	switch t {
	case MBC1RAMBATT, MBC2BATT, ROMRAMBATT, MMM01RAMBATT, MBC3TIMERBATT,
		MBC3TIMERRAMBATT, MBC3RAMBATT, MBC5RAMBATT, MBC5RUMBLERAMBATT, HUDSONHUC1:
		return true
	}
	return false
}

// Header represents the header of a cartridge, each cartridge has a header and is
// located at the address space 0x0100-0x014F. The header contains information about
// the cartridge itself, and the hardware it expects to run on.
type Header struct {
	// 0x0134-0x0143 - Title of the game
	Title string

	// 0x0143 - CartridgeGBMode of the game. In older cartridges this byte was part
	// of the title, but the Colour Game Boy and later models interpret this byte
	// to determine if the cartridge is compatible with the Colour Game Boy.
	CartridgeGBMode Flag

	CartridgeType  Type
	ROMSize        uint
	RAMSize        uint
	HeaderChecksum uint8
}

// parseHeader parses the header of the given ROM page 0 and
// returns a Header.
func parseHeader(page []byte) (Header, error) {
	h := Header{}

	// check if the header is present
	if len(page) < HeaderEnd {
		return h, fmt.Errorf("cartridge: ROM too small to hold a header (%d bytes)", len(page))
	}

	// parse the mode of the cartridge and parse the header accordingly
	switch page[HeaderCGBFlag] {
	case 0x80:
		h.CartridgeGBMode = FlagSupportsCGB
	case 0xC0:
		h.CartridgeGBMode = FlagOnlyCGB
	default:
		h.CartridgeGBMode = FlagOnlyDMG
	}

	// parse the title
	if h.CartridgeGBMode == FlagOnlyDMG {
		h.Title = string(page[0x134:0x144])
	} else {
		h.Title = string(page[0x134:0x143])
	}
	h.Title = strings.TrimRight(h.Title, "\x00 ")

	// parse the cartridge type
	h.CartridgeType = Type(page[HeaderCartridgeType])

	// parse the ROM size (calculated by 32kB x (1 << n))
	if code := page[HeaderROMSize]; code > 8 {
		return h, fmt.Errorf("cartridge: invalid ROM size code 0x%02X", code)
	}
	h.ROMSize = (32 * 1024) * (1 << page[HeaderROMSize])

	// parse the RAM size, unknown codes are treated as no RAM
	h.RAMSize = ramMAP[page[HeaderRAMSize]]

	// parse the header checksum
	h.HeaderChecksum = page[0x14D]

	return h, nil
}

// ValidChecksum returns true if the header checksum matches
// the given page 0.
func (h *Header) ValidChecksum(page []byte) bool {
	var sum uint8
	for _, b := range page[0x134:0x14D] {
		sum = sum - b - 1
	}
	return sum == h.HeaderChecksum
}

func (h *Header) GameboyColor() bool {
	return h.CartridgeGBMode == FlagOnlyCGB || h.CartridgeGBMode == FlagSupportsCGB
}

func (h *Header) Hardware() string {
	switch h.CartridgeGBMode {
	case FlagOnlyDMG:
		return "DMG"
	case FlagSupportsCGB:
		return "CGB"
	case FlagOnlyCGB:
		return "CGB"
	default:
		return "Unknown"
	}
}

func (h *Header) String() string {
	return fmt.Sprintf("%s Mode: %s | Type: 0x%02X (%s) | ROM Size: %dkB | RAM Size: %dkB",
		h.Title, h.Hardware(), uint8(h.CartridgeType), h.CartridgeType.Kind(), h.ROMSize/1024, h.RAMSize/1024)
}
