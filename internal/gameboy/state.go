package gameboy

import (
	"fmt"

	"github.com/thelolagemann/gbcemu/internal/types"
)

// Save returns the state of the GameBoy. It should only be called
// between frames.
//
// The values are saved in the following order:
//   - version (uint8)
//   - CPU registers, double speed and IME
//   - timer
//   - memory and bank registers
//   - audio state (uint32 length + data)
//   - bank controller trailer and PPU dots
func (g *GameBoy) Save() []byte {
	s := types.NewState()
	s.Write8(types.StateVersion)
	g.CPU.Save(s)
	g.Timer.Save(s)
	g.MMU.Save(s)

	audio := g.audio.State()
	s.Write32(uint32(len(audio)))
	s.WriteData(audio)

	g.MMU.SaveController(s)
	g.PPU.Save(s)

	g.Debugf("gameboy: saved state (%d bytes)", len(s.Bytes()))
	return s.Bytes()
}

// Load restores a state returned by Save. States from a newer
// version are rejected with types.ErrUnsupportedVersion, leaving
// the GameBoy untouched. A state that fails part way through is
// rolled back.
func (g *GameBoy) Load(data []byte) error {
	s := types.StateFromBytes(data)
	version := s.Read8()
	if err := s.Err(); err != nil {
		return fmt.Errorf("gameboy: loading state: %w", err)
	}
	if version > types.StateVersion {
		return fmt.Errorf("gameboy: loading state version %d: %w", version, types.ErrUnsupportedVersion)
	}

	snapshot := types.StateFromBytes(g.Save())
	if err := g.load(s, version); err != nil {
		snapshot.Read8()
		if rollback := g.load(snapshot, types.StateVersion); rollback != nil {
			panic(fmt.Sprintf("gameboy: restoring snapshot: %v", rollback))
		}
		return fmt.Errorf("gameboy: loading state: %w", err)
	}

	g.Infof("gameboy: loaded state version %d", version)
	return nil
}

func (g *GameBoy) load(s *types.State, version uint8) error {
	g.CPU.Load(s)
	g.Timer.Load(s)
	g.MMU.Load(s)

	n := int(s.Read32())
	if n > s.Remaining() {
		return types.ErrShortState
	}
	audio := make([]byte, n)
	s.ReadData(audio)
	if err := s.Err(); err != nil {
		return err
	}
	if err := g.audio.Restore(audio); err != nil {
		return err
	}

	if version >= 2 {
		g.MMU.LoadController(s)
		g.PPU.Load(s)
	} else {
		g.MMU.ResetController()
		g.PPU.ResetDots()
	}
	if err := s.Err(); err != nil {
		return err
	}

	g.lastLY = g.b.Get(types.LY)
	g.frameDone = false
	return nil
}
