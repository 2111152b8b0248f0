package ppu

import "github.com/thelolagemann/gbcemu/internal/types"

// MaxSprites is the number of sprites held in OAM.
const MaxSprites = 40

// Sprite is a view of a single 4 byte OAM entry.
//
//	Byte 0 - Y Position (minus 16)
//	Byte 1 - X Position (minus 8)
//	Byte 2 - Tile Index
//	Byte 3 - Attributes/Flags
//
//	Bit 7 - BG/Window over OBJ (0=No, 1=BG and Window colors 1-3 over the OBJ)
//	Bit 6 - Y flip          (0=Normal, 1=Vertically mirrored)
//	Bit 5 - X flip          (0=Normal, 1=Horizontally mirrored)
//	Bit 4 - Palette number  (0=OBP0, 1=OBP1)
//	Bit 3-0 - CGB only, ignored
type Sprite struct {
	Y, X  uint8
	Tile  uint8
	Flags uint8
}

// SpriteAt returns the sprite at the given index of oam.
func SpriteAt(oam *[160]byte, index int) Sprite {
	entry := oam[index*4 : index*4+4]
	return Sprite{
		Y:     entry[0],
		X:     entry[1],
		Tile:  entry[2],
		Flags: entry[3],
	}
}

// Behind returns true if the sprite is drawn behind colours 1-3
// of the background and window.
func (s Sprite) Behind() bool { return s.Flags&types.Bit7 != 0 }

// FlipY returns true if the sprite is vertically mirrored.
func (s Sprite) FlipY() bool { return s.Flags&types.Bit6 != 0 }

// FlipX returns true if the sprite is horizontally mirrored.
func (s Sprite) FlipX() bool { return s.Flags&types.Bit5 != 0 }

// UseOBP1 returns true if the sprite uses OBP1 rather than OBP0.
func (s Sprite) UseOBP1() bool { return s.Flags&types.Bit4 != 0 }
