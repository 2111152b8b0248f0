// Command gbcemu runs a Game Boy (Color) ROM, either headless for a
// fixed number of frames or streamed to browsers over a websocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/thelolagemann/gbcemu/internal/cartridge"
	"github.com/thelolagemann/gbcemu/internal/cheats"
	"github.com/thelolagemann/gbcemu/internal/gameboy"
	"github.com/thelolagemann/gbcemu/internal/joypad"
	"github.com/thelolagemann/gbcemu/internal/ppu/palette"
	"github.com/thelolagemann/gbcemu/internal/types"
	"github.com/thelolagemann/gbcemu/pkg/display"
	"github.com/thelolagemann/gbcemu/pkg/display/digest"
	"github.com/thelolagemann/gbcemu/pkg/display/web"
	"github.com/thelolagemann/gbcemu/pkg/emu"
	"github.com/thelolagemann/gbcemu/pkg/emulator"
	"github.com/thelolagemann/gbcemu/pkg/log"
	"github.com/thelolagemann/gbcemu/pkg/utils"
)

// frameRate is the native refresh rate of the LCD.
const frameRate = float64(gameboy.ClockSpeed) / gameboy.CyclesPerFrame

var (
	romFile    = flag.String("rom", "", "The rom file to load (.gb, .gbc, or compressed with .gz, .xz, .lz4, .zip, .7z)")
	stateFile  = flag.String("state", "", "The state file to load")
	cheatFile  = flag.String("cheats", "", "A file of Game Genie and GameShark cheats to apply")
	saveState  = flag.String("save-state", "", "Write a state file here on exit")
	asModel    = flag.String("model", "auto", "The model to emulate. Can be auto, dmg or cgb")
	saveFolder = flag.String("saves", "saves", "The folder battery saves are kept in")
	paletteIdx = flag.Int("palette", palette.Greyscale, "The palette used for DMG games")
	frames     = flag.Int("frames", 0, "Run headless for this many frames, then exit")
	speed      = flag.Float64("speed", 1, "The speed to run the emulator at, 0 for unlimited")
	webAddr    = flag.String("web", "", "Stream to browsers on this address, e.g. :8090")
	screenshot = flag.String("screenshot", "", "Save the last frame as a png on exit")
	scale      = flag.Int("scale", 1, "The scale of the screenshot")
	printHash  = flag.Bool("digest", false, "Print the xxhash of the last frame on exit")
	serial     = flag.Bool("serial", false, "Write serial output to stdout")
	level      = flag.String("log", "info", "The log level")
)

func main() {
	flag.Parse()

	logger, err := log.New(os.Stderr, *level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(logger); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(logger log.Logger) error {
	if *romFile == "" {
		return errors.New("no rom file given, use -rom")
	}

	// open the rom file
	rom, err := utils.LoadFile(*romFile)
	if err != nil {
		return err
	}
	cart, err := cartridge.New(rom)
	if err != nil {
		return err
	}

	pal, err := palette.Get(*paletteIdx)
	if err != nil {
		return err
	}

	fb := display.NewFramebuffer()
	if *frames == 0 && *speed > 0 {
		fb.LimitSpeed(frameRate * *speed)
	}
	pad := &joypad.Pad{}

	opts := []gameboy.Opt{
		gameboy.WithLogger(logger),
		gameboy.WithDisplay(fb),
		gameboy.WithInput(pad),
		gameboy.WithPalette(pal),
	}

	switch *asModel {
	case "auto":
		// chosen from the cartridge header
	case "dmg", "cgb":
		opts = append(opts, gameboy.AsModel(types.StringToModel(*asModel)))
	default:
		return fmt.Errorf("unknown model %q", *asModel)
	}

	if cart.Header().CartridgeType.Battery() {
		save, err := emu.NewSave(*saveFolder, cart.Title())
		if err != nil {
			return err
		}
		opts = append(opts, gameboy.WithBattery(save))
	}

	if *stateFile != "" {
		state, err := emu.ReadState(*stateFile)
		if err != nil {
			return err
		}
		opts = append(opts, gameboy.WithState(state))
	}

	if *cheatFile != "" {
		f, err := os.Open(*cheatFile)
		if err != nil {
			return err
		}
		set, err := cheats.Parse(f)
		f.Close()
		if err != nil {
			return err
		}
		opts = append(opts, gameboy.WithCheats(set))
	}

	if *serial {
		opts = append(opts, gameboy.SerialOutput(os.Stdout))
	}

	// create a new gameboy
	gb, err := gameboy.New(cart, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *frames > 0 {
		err = runFrames(ctx, gb, *frames)
	} else {
		err = runEmulator(ctx, gb, fb, pad, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warnf("%v", err)
	}

	return finish(gb, fb, logger)
}

// runFrames runs gb for n frames, stopping early if the CPU traps.
func runFrames(ctx context.Context, gb *gameboy.GameBoy, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := gb.Frame(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return nil
}

// runEmulator runs gb in real time until interrupted, optionally
// streaming it over a websocket.
func runEmulator(ctx context.Context, gb *gameboy.GameBoy, fb *display.Framebuffer, pad *joypad.Pad, logger log.Logger) error {
	e := emulator.New(gb, logger)

	if *webAddr != "" {
		hub := web.NewHub(fb.Subscribe(2), pad, e, logger)
		go hub.Run(ctx)
		go func() {
			if err := hub.ListenAndServe(ctx, *webAddr); err != nil {
				logger.Errorf("web: %v", err)
			}
		}()
	}

	return e.Run(ctx)
}

// finish writes out everything requested for after the run, then
// closes gb.
func finish(gb *gameboy.GameBoy, fb *display.Framebuffer, logger log.Logger) error {
	frame := fb.Snapshot()

	if *printHash {
		fmt.Printf("%016x\n", digest.Frame(&frame))
	}

	if *screenshot != "" {
		img := utils.ScaleImage(utils.FrameToImage(&frame), *scale)
		name, err := utils.SaveImage(img, *screenshot)
		if err != nil {
			logger.Errorf("saving screenshot: %v", err)
		} else {
			logger.Infof("saved screenshot to %s", name)
		}
	}

	if *saveState != "" {
		if err := emu.WriteState(*saveState, gb.Save()); err != nil {
			logger.Errorf("saving state: %v", err)
		}
	}

	return gb.Close()
}
