// Package emu provides the files kept for a cartridge between runs:
// battery backed RAM, and compressed save states.
package emu

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// save file naming convention:
// <folder>/<title>/<title>.sav
// <folder>/<title>/<title>.<slot>.state

// Save represents a battery save file. Writes go to a temporary file
// beside it, which replaces the save file on Close, so that a crash
// never leaves a half written save behind.
type Save struct {
	f    *os.File // temporary file that is written to when the emu is running
	Path string   // the path to the save file
}

// NewSave returns the save file for the given cartridge title,
// creating the folder holding it.
func NewSave(folder, title string) (*Save, error) {
	romSaveFolder := filepath.Join(folder, sanitize(title))
	if err := os.MkdirAll(romSaveFolder, 0755); err != nil {
		return nil, err
	}
	return &Save{Path: filepath.Join(romSaveFolder, sanitize(title)+".sav")}, nil
}

// Load returns the contents of the save file, or nothing if it
// doesn't exist yet.
func (s *Save) Load(size int) ([]byte, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Save writes the RAM to the temporary save file.
func (s *Save) Save(ram []byte) error {
	if s.f == nil {
		if err := s.createTemporarySaveFile(); err != nil {
			return err
		}
	}
	if err := s.f.Truncate(int64(len(ram))); err != nil {
		return err
	}
	// write the data to the temporary file
	if _, err := s.f.WriteAt(ram, 0); err != nil {
		return fmt.Errorf("failed to write to temporary save file: %w", err)
	}
	return nil
}

// Close closes the save file by renaming the temporary file to the original file.
func (s *Save) Close() error {
	if s.f == nil {
		return nil
	}
	f := s.f
	s.f = nil
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), s.Path)
}

// createTemporarySaveFile creates the temporary save file for the caller.
func (s *Save) createTemporarySaveFile() error {
	var err error
	s.f, err = os.CreateTemp(filepath.Dir(s.Path), fmt.Sprintf("%s.*", filepath.Base(s.Path)))
	return err
}

// sanitize makes a cartridge title safe to use as a file name.
func sanitize(title string) string {
	title = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, strings.TrimSpace(title))
	if title == "" {
		return "untitled"
	}
	return title
}

// isFileStateFile returns true if the given filename is a state file.
func isFileStateFile(filename string) bool {
	return strings.HasSuffix(filename, stateExtension)
}

// ListStates returns the paths of every state file for the given
// cartridge title. The state files are sorted by their last modified
// time, with the newest first.
func ListStates(folder, title string) ([]string, error) {
	romSaveFolder := filepath.Join(folder, sanitize(title))
	files, err := os.ReadDir(romSaveFolder)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	type entry struct {
		path string
		info fs.FileInfo
	}
	var states []entry
	for _, file := range files {
		if !isFileStateFile(file.Name()) {
			continue
		}
		info, err := file.Info()
		if err != nil {
			return nil, err
		}
		states = append(states, entry{filepath.Join(romSaveFolder, file.Name()), info})
	}

	// sort the state files by last modified time
	sort.Slice(states, func(i, j int) bool {
		return states[i].info.ModTime().After(states[j].info.ModTime())
	})

	paths := make([]string, len(states))
	for i, e := range states {
		paths[i] = e.path
	}
	return paths, nil
}
