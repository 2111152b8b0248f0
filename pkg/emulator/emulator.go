// Package emulator runs a GameBoy on its own goroutine, so that
// display drivers may control it with commands.
package emulator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/thelolagemann/gbcemu/internal/cpu"
	"github.com/thelolagemann/gbcemu/internal/gameboy"
	"github.com/thelolagemann/gbcemu/pkg/log"
)

// ErrClosed is returned for commands sent after the emulator has
// stopped running.
var ErrClosed = errors.New("emulator: closed")

type request struct {
	CommandPacket
	reply chan ResponsePacket
}

// Emulator runs a GameBoy frame by frame, handling commands between
// frames, which is the only time save states are valid.
type Emulator struct {
	gb       *gameboy.GameBoy
	commands chan request
	done     chan struct{}

	status atomic.Int32
	paused atomic.Bool

	log log.Logger
}

var _ Controller = (*Emulator)(nil)

// New returns a new Emulator for gb.
func New(gb *gameboy.GameBoy, l log.Logger) *Emulator {
	if l == nil {
		l = log.NewNullLogger()
	}
	return &Emulator{
		gb:       gb,
		commands: make(chan request),
		done:     make(chan struct{}),
		log:      l,
	}
}

// Run runs the emulator until ctx is cancelled or a CommandClose is
// received. A trapped CPU halts the emulator, which then waits for
// commands such as CommandReset.
func (e *Emulator) Run(ctx context.Context) error {
	defer close(e.done)
	for {
		// block while paused or halted
		if e.paused.Load() || !e.Status().IsRunning() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case r := <-e.commands:
				if e.handle(r) {
					return nil
				}
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-e.commands:
			if e.handle(r) {
				return nil
			}
			continue
		default:
		}

		if err := e.gb.Frame(); err != nil {
			var trap *cpu.Trap
			if errors.As(err, &trap) {
				e.log.Infof("emulator: %v", trap)
				e.status.Store(int32(Halted))
			} else {
				e.log.Errorf("emulator: %v", err)
				e.status.Store(int32(Errored))
			}
		}
	}
}

// handle executes a single command, returning true if the emulator
// should stop running.
func (e *Emulator) handle(r request) bool {
	resp := ResponsePacket{Command: r.Command}
	switch r.Command {
	case CommandPause:
		e.paused.Store(true)
	case CommandResume:
		e.paused.Store(false)
	case CommandReset:
		e.gb.Reset()
		e.status.Store(int32(Running))
	case CommandSaveState:
		resp.Data = e.gb.Save()
	case CommandLoadState:
		if err := e.gb.Load(r.Data); err != nil {
			resp.Error = err
		} else {
			e.status.Store(int32(Running))
		}
	case CommandClose:
		r.reply <- resp
		return true
	default:
		resp.Error = fmt.Errorf("emulator: unknown command %d", r.Command)
	}
	e.log.Debugf("emulator: handled %s", r.Command)
	r.reply <- resp
	return false
}

// SendCommand implements the Controller interface.
func (e *Emulator) SendCommand(command CommandPacket) ResponsePacket {
	r := request{CommandPacket: command, reply: make(chan ResponsePacket, 1)}
	select {
	case e.commands <- r:
		return <-r.reply
	case <-e.done:
		return ResponsePacket{Command: command.Command, Error: ErrClosed}
	}
}

// Status implements the Controller interface.
func (e *Emulator) Status() Status {
	return Status(e.status.Load())
}

// Paused implements the Controller interface.
func (e *Emulator) Paused() bool {
	return e.paused.Load()
}
