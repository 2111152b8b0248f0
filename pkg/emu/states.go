package emu

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andybalholm/brotli"
)

const stateExtension = ".state"

// stateMagic prefixes every state file.
var stateMagic = []byte("GBCS")

// ErrNotState is returned when loading a file that isn't a state file.
var ErrNotState = errors.New("emu: not a state file")

// StatePath returns the path of the given state slot for a cartridge
// title.
func StatePath(folder, title string, slot int) string {
	return filepath.Join(folder, sanitize(title), fmt.Sprintf("%s.%d%s", sanitize(title), slot, stateExtension))
}

// EncodeState compresses a save state with brotli.
func EncodeState(state []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(stateMagic)
	w := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := w.Write(state); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeState decompresses a state produced by EncodeState.
func DecodeState(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, stateMagic) {
		return nil, ErrNotState
	}
	state, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data[len(stateMagic):])))
	if err != nil {
		return nil, fmt.Errorf("emu: decompressing state: %w", err)
	}
	return state, nil
}

// WriteState compresses state to path. The state is written to a
// temporary file first, and renamed over path once complete.
func WriteState(path string, state []byte) error {
	data, err := EncodeState(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadState reads a state written by WriteState.
func ReadState(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	state, err := DecodeState(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return state, nil
}
