package emu

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSave(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSave(dir, "POKEMON RED")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(s.Path) != "POKEMON_RED.sav" {
		t.Errorf("unexpected save path %s", s.Path)
	}

	// nothing saved yet
	b, err := s.Load(0x2000)
	if err != nil || b != nil {
		t.Fatalf("expected empty save, got %d bytes (%v)", len(b), err)
	}

	ram := bytes.Repeat([]byte{0x42}, 0x2000)
	if err := s.Save(ram); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// not visible until closed
	if _, err := os.Stat(s.Path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected save file to be written on close")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s2, _ := NewSave(dir, "POKEMON RED")
	b, err = s2.Load(0x2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(b, ram) {
		t.Errorf("expected saved RAM to round trip")
	}

	// no temporary files are left behind
	files, _ := os.ReadDir(filepath.Dir(s.Path))
	if len(files) != 1 {
		t.Errorf("expected only the save file, got %d files", len(files))
	}
	if err := s2.Close(); err != nil {
		t.Errorf("expected Close without Save to do nothing, got %v", err)
	}
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"TETRIS":        "TETRIS",
		" ZELDA DX ":    "ZELDA_DX",
		"../../etc":     "______etc",
		"":              "untitled",
		"MARIO&LUIGI":   "MARIO_LUIGI",
		"kirby-2_final": "kirby-2_final",
	}
	for in, want := range tests {
		if got := sanitize(in); got != want {
			t.Errorf("sanitize(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestState(t *testing.T) {
	dir := t.TempDir()
	state := bytes.Repeat([]byte{1, 2, 3, 4, 0, 0, 0, 0}, 4096)

	path := StatePath(dir, "TETRIS", 1)
	if err := WriteState(path, state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() >= int64(len(state)) {
		t.Errorf("expected state to be compressed, %d bytes", info.Size())
	}

	got, err := ReadState(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, state) {
		t.Errorf("expected state to round trip")
	}
}

func TestState_Errors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bogus.state")
	os.WriteFile(path, []byte("not a state"), 0644)
	if _, err := ReadState(path); !errors.Is(err, ErrNotState) {
		t.Errorf("expected ErrNotState, got %v", err)
	}

	os.WriteFile(path, append([]byte("GBCS"), 0xFF, 0xFF, 0xFF), 0644)
	if _, err := ReadState(path); err == nil {
		t.Errorf("expected error for corrupt state")
	}
	if _, err := ReadState(filepath.Join(dir, "missing.state")); err == nil {
		t.Errorf("expected error for missing state")
	}
}

func TestListStates(t *testing.T) {
	dir := t.TempDir()
	if states, err := ListStates(dir, "TETRIS"); err != nil || len(states) != 0 {
		t.Fatalf("expected no states, got %v (%v)", states, err)
	}

	old := StatePath(dir, "TETRIS", 1)
	newer := StatePath(dir, "TETRIS", 2)
	for _, p := range []string{old, newer} {
		if err := WriteState(p, []byte{1}); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-time.Hour)
	os.Chtimes(old, past, past)
	s, _ := NewSave(dir, "TETRIS")
	s.Save([]byte{0})
	s.Close()

	states, err := ListStates(dir, "TETRIS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(states) != 2 || states[0] != newer || states[1] != old {
		t.Errorf("expected newest state first, got %v", states)
	}
}
