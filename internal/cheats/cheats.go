// Package cheats provides Game Genie and GameShark cheats. Game Genie
// codes patch reads of the cartridge ROM, GameShark codes poke memory
// once per frame.
package cheats

import (
	"bufio"
	"fmt"
	goio "io"
	"strings"
	"sync"
	"sync/atomic"
)

// Cheat is a named group of codes that are enabled together.
type Cheat struct {
	Name    string
	Enabled bool
	Codes   []string

	genie []GameGenieCode
	shark []GameSharkCode
}

// Memory is written to by GameShark codes.
type Memory interface {
	// Write writes to the address space.
	Write(address uint16, value uint8)
	// WriteERAM writes to the given external RAM bank, regardless of
	// the bank currently mapped.
	WriteERAM(bank int, address uint16, value uint8)
}

// Set holds every loaded cheat. It may be modified from any goroutine
// while the emulator is running.
type Set struct {
	mu     sync.Mutex
	cheats []*Cheat

	// enabled codes, rebuilt on every change
	genie atomic.Pointer[[]GameGenieCode]
	shark atomic.Pointer[[]GameSharkCode]
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{}
}

// Parse parses a cheat file. The file format is as follows:
//
//	# Cheat Name
//	ABC-DEF-GHI
//	01FF34C1
//
// Each name is followed by any number of Game Genie and GameShark
// codes, which may be mixed together. Blank lines are ignored. Every
// parsed cheat starts enabled.
func Parse(r goio.Reader) (*Set, error) {
	s := NewSet()
	scanner := bufio.NewScanner(r)

	var current *Cheat
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		// if it's a comment, read the name
		if text[0] == '#' {
			current = &Cheat{Name: strings.TrimSpace(text[1:]), Enabled: true}
			s.cheats = append(s.cheats, current)
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("cheats: line %d: code %q before a name", line, text)
		}
		if err := current.add(text); err != nil {
			return nil, fmt.Errorf("cheats: line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	s.rebuild()
	return s, nil
}

// add parses code and adds it to the cheat.
func (c *Cheat) add(code string) error {
	switch len(code) {
	case 7, 11: // Game Genie
		g, err := ParseGameGenie(code)
		if err != nil {
			return err
		}
		c.genie = append(c.genie, g)
	case 8: // GameShark
		g, err := ParseGameShark(code)
		if err != nil {
			return err
		}
		c.shark = append(c.shark, g)
	default:
		return fmt.Errorf("invalid code %q", code)
	}
	c.Codes = append(c.Codes, code)
	return nil
}

// Add adds a new enabled cheat holding the codes in text, one per
// line.
func (s *Set) Add(name, text string) error {
	c := &Cheat{Name: name, Enabled: true}
	for _, code := range strings.Fields(text) {
		if err := c.add(code); err != nil {
			return fmt.Errorf("cheats: %s: %w", name, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.cheats {
		if existing.Name == name {
			return fmt.Errorf("cheats: %s already loaded", name)
		}
	}
	s.cheats = append(s.cheats, c)
	s.rebuildLocked()
	return nil
}

// SetEnabled enables or disables the named cheat.
func (s *Set) SetEnabled(name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cheats {
		if c.Name == name {
			c.Enabled = enabled
			s.rebuildLocked()
			return nil
		}
	}
	return fmt.Errorf("cheats: %s not found", name)
}

// Cheats returns a copy of every loaded cheat.
func (s *Set) Cheats() []Cheat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Cheat, len(s.cheats))
	for i, c := range s.cheats {
		out[i] = *c
		out[i].Codes = append([]string(nil), c.Codes...)
	}
	return out
}

// WriteTo writes the set in the format read by Parse.
func (s *Set) WriteTo(w goio.Writer) (int64, error) {
	var total int64
	for _, c := range s.Cheats() {
		n, err := fmt.Fprintf(w, "# %s\n", c.Name)
		total += int64(n)
		if err != nil {
			return total, err
		}
		for _, code := range c.Codes {
			n, err := fmt.Fprintln(w, code)
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// Patch returns the value read from the ROM at address, with any
// enabled Game Genie code applied.
func (s *Set) Patch(address uint16, value uint8) uint8 {
	codes := s.genie.Load()
	if codes == nil {
		return value
	}
	for _, c := range *codes {
		if c.Address == address && (!c.Compare || c.OldData == value) {
			return c.NewData
		}
	}
	return value
}

// Apply writes every enabled GameShark code to mem.
func (s *Set) Apply(mem Memory) {
	codes := s.shark.Load()
	if codes == nil {
		return
	}
	for _, c := range *codes {
		if c.Address >= 0xA000 && c.Address < 0xC000 {
			mem.WriteERAM(int(c.ExternalRAMBank&0x0F), c.Address, c.NewData)
		} else {
			mem.Write(c.Address, c.NewData)
		}
	}
}

func (s *Set) rebuild() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuildLocked()
}

func (s *Set) rebuildLocked() {
	var genie []GameGenieCode
	var shark []GameSharkCode
	for _, c := range s.cheats {
		if c.Enabled {
			genie = append(genie, c.genie...)
			shark = append(shark, c.shark...)
		}
	}
	s.genie.Store(&genie)
	s.shark.Store(&shark)
}
