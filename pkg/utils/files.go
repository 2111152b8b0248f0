package utils

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// LoadFile loads the given file and performs decompression if necessary.
func LoadFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return Decompress(filename, data)
}

// Decompress decompresses data according to the extension of name.
// Archives (.zip, .7z) yield the first ROM they contain, or their
// first file if none is named like a ROM. Data with any other
// extension is returned as is.
func Decompress(name string, data []byte) ([]byte, error) {
	var decoder io.Reader
	var err error
	r := bytes.NewReader(data)

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".gz":
		decoder, err = gzip.NewReader(r)
	case ".xz":
		decoder, err = xz.NewReader(r)
	case ".lz4":
		decoder = lz4.NewReader(r)
	case ".zip":
		zr, zerr := zip.NewReader(r, int64(len(data)))
		if zerr != nil {
			return nil, fmt.Errorf("utils: opening %s: %w", name, zerr)
		}
		names := make([]string, len(zr.File))
		for i, f := range zr.File {
			names[i] = f.Name
		}
		i, perr := pickROM(names)
		if perr != nil {
			return nil, fmt.Errorf("utils: opening %s: %w", name, perr)
		}
		decoder, err = zr.File[i].Open()
	case ".7z":
		sr, serr := sevenzip.NewReader(r, int64(len(data)))
		if serr != nil {
			return nil, fmt.Errorf("utils: opening %s: %w", name, serr)
		}
		names := make([]string, len(sr.File))
		for i, f := range sr.File {
			names[i] = f.Name
		}
		i, perr := pickROM(names)
		if perr != nil {
			return nil, fmt.Errorf("utils: opening %s: %w", name, perr)
		}
		decoder, err = sr.File[i].Open()
	default:
		// return the data as is
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("utils: opening %s: %w", name, err)
	}
	if c, ok := decoder.(io.Closer); ok {
		defer c.Close()
	}

	// read the decompressed data into a byte slice
	out, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("utils: decompressing %s: %w", name, err)
	}
	return out, nil
}

// pickROM returns the index of the first name with a ROM extension,
// falling back to the first file that isn't a directory.
func pickROM(names []string) (int, error) {
	fallback := -1
	for i, n := range names {
		if strings.HasSuffix(n, "/") {
			continue
		}
		switch strings.ToLower(filepath.Ext(n)) {
		case ".gb", ".gbc":
			return i, nil
		}
		if fallback < 0 {
			fallback = i
		}
	}
	if fallback < 0 {
		return 0, fmt.Errorf("archive is empty")
	}
	return fallback, nil
}
