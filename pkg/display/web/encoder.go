package web

import (
	"bytes"
	"encoding/binary"

	"github.com/andybalholm/brotli"
	"github.com/cespare/xxhash"
	"github.com/thelolagemann/gbcemu/internal/ppu"
	"github.com/thelolagemann/gbcemu/pkg/display"
	"github.com/thelolagemann/gbcemu/pkg/utils"
)

const (
	pixels    = ppu.ScreenWidth * ppu.ScreenHeight
	frameSize = pixels * 4
	cacheSize = 64
)

// Settings controls how frames are encoded.
type Settings struct {
	// Compression brotli compresses frames and patches at
	// CompressionLevel (0-11).
	Compression      bool
	CompressionLevel int
	// FramePatching sends only the changed pixels when fewer than
	// FramePatchRatio/10 of the frame has changed.
	FramePatching   bool
	FramePatchRatio int
	// FrameSkipping holds back identical frames, and reports how
	// many were skipped once a frame changes.
	FrameSkipping bool
}

// DefaultSettings are the settings a Hub starts with.
var DefaultSettings = Settings{
	Compression:      true,
	CompressionLevel: 5,
	FramePatching:    true,
	FramePatchRatio:  3,
	FrameSkipping:    true,
}

// encoder turns frames into messages. It is only used from the hub's
// goroutine.
type encoder struct {
	current, patch []byte
	skipped        uint32
	first          bool

	frames, patches *cache
	buf             bytes.Buffer
}

func newEncoder() *encoder {
	return &encoder{
		current: make([]byte, frameSize),
		patch:   make([]byte, frameSize),
		first:   true,
		frames:  newCache(cacheSize),
		patches: newCache(cacheSize),
	}
}

// encode returns the messages to broadcast for the next frame.
func (e *encoder) encode(f *display.Frame, s Settings) [][]byte {
	var messages [][]byte

	dirty := 0
	for i := range e.patch {
		e.patch[i] = 0
	}
	for y := range f {
		for x, c := range f[y] {
			r, g, b := c.RGB()
			i := (y*ppu.ScreenWidth + x) * 4
			if e.first || e.current[i] != r || e.current[i+1] != g || e.current[i+2] != b {
				dirty++
				e.patch[i], e.patch[i+1], e.patch[i+2], e.patch[i+3] = r, g, b, 0xFF
			}
			e.current[i], e.current[i+1], e.current[i+2], e.current[i+3] = r, g, b, 0xFF
		}
	}
	e.first = false

	if dirty == 0 && s.FrameSkipping {
		e.skipped++
		return nil
	}
	if e.skipped > 0 {
		buf := make([]byte, 5)
		buf[0] = FrameSkip
		binary.LittleEndian.PutUint32(buf[1:], e.skipped)
		messages = append(messages, buf)
		e.skipped = 0
	}

	// determine if we should patch the frame
	kind, replay, data, c := Frame, FrameCache, e.current, e.frames
	if s.FramePatching && dirty < s.FramePatchRatio*pixels/10 {
		kind, replay, data, c = FramePatch, PatchCache, e.patch, e.patches
	}

	output := data
	if s.Compression {
		output = e.compress(data, s.CompressionLevel)
	}

	// replay the message if it has been sent recently
	hash := xxhash.Sum64(output)
	if idx := c.index(hash); idx != -1 {
		return append(messages, []byte{replay, uint8(idx), uint8(idx >> 8)})
	}
	idx := c.add(hash)
	msg := make([]byte, 3, 3+len(output))
	msg[0] = kind
	binary.LittleEndian.PutUint16(msg[1:], uint16(idx))
	return append(messages, append(msg, output...))
}

// compress brotli compresses data.
func (e *encoder) compress(data []byte, level int) []byte {
	e.buf.Reset()
	w := brotli.NewWriterLevel(&e.buf, utils.Clamp(brotli.BestSpeed, level, brotli.BestCompression))
	w.Write(data)
	w.Close()
	return append([]byte(nil), e.buf.Bytes()...)
}

// reset forgets what has been sent, so that the next frame is sent
// in full. It is used when a client joins.
func (e *encoder) reset() {
	e.first = true
	e.skipped = 0
	e.frames.reset()
	e.patches.reset()
}
