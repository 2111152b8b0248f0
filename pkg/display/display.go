// Package display provides displays for the emulator, which
// assemble the lines drawn by the PPU into complete frames.
package display

import (
	"sync"
	"time"

	"github.com/thelolagemann/gbcemu/internal/ppu"
	"github.com/thelolagemann/gbcemu/internal/ppu/palette"
)

// Frame is a complete frame, indexed by [y][x].
type Frame [ppu.ScreenHeight][ppu.ScreenWidth]palette.Colour

// Framebuffer is a ppu.Display that assembles lines into frames.
// Completed frames may be read from any goroutine, either by
// polling Snapshot or by subscribing.
type Framebuffer struct {
	back Frame

	mu          sync.RWMutex
	front       Frame
	frames      uint64
	subscribers []chan Frame

	frameTime time.Duration
	deadline  time.Time
}

var _ ppu.Display = (*Framebuffer)(nil)

// NewFramebuffer returns a new Framebuffer that doesn't limit speed.
func NewFramebuffer() *Framebuffer {
	return &Framebuffer{}
}

// LimitSpeed makes WaitVSync pace emulation to the given number of
// frames per second. A rate of 0 removes the limit.
func (f *Framebuffer) LimitSpeed(fps float64) {
	if fps <= 0 {
		f.frameTime = 0
		return
	}
	f.frameTime = time.Duration(float64(time.Second) / fps)
	f.deadline = time.Now()
}

// DrawLine implements the ppu.Display interface.
func (f *Framebuffer) DrawLine(y int, line *[ppu.ScreenWidth]palette.Colour) {
	f.back[y] = *line
	if y != ppu.ScreenHeight-1 {
		return
	}

	f.mu.Lock()
	f.front = f.back
	f.frames++
	for _, s := range f.subscribers {
		// slow subscribers miss frames
		select {
		case s <- f.front:
		default:
		}
	}
	f.mu.Unlock()
}

// WaitVSync implements the ppu.Display interface.
func (f *Framebuffer) WaitVSync() {
	if f.frameTime == 0 {
		return
	}
	f.deadline = f.deadline.Add(f.frameTime)
	if wait := time.Until(f.deadline); wait > 0 {
		time.Sleep(wait)
	} else if wait < -f.frameTime {
		// too far behind to catch up
		f.deadline = time.Now()
	}
}

// Snapshot returns the last completed frame.
func (f *Framebuffer) Snapshot() Frame {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.front
}

// Frames returns the number of frames completed.
func (f *Framebuffer) Frames() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.frames
}

// Subscribe returns a channel receiving every completed frame. Up
// to buffer frames are queued, any further frames are dropped until
// the subscriber catches up.
func (f *Framebuffer) Subscribe(buffer int) <-chan Frame {
	ch := make(chan Frame, buffer)
	f.mu.Lock()
	f.subscribers = append(f.subscribers, ch)
	f.mu.Unlock()
	return ch
}

// RGBA returns the frame as packed 8 bit RGBA values, row by row.
func (fr *Frame) RGBA() []byte {
	out := make([]byte, 0, ppu.ScreenWidth*ppu.ScreenHeight*4)
	for y := range fr {
		for _, c := range fr[y] {
			r, g, b := c.RGB()
			out = append(out, r, g, b, 0xFF)
		}
	}
	return out
}
