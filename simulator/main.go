package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rook-computer/gadgetdrive/internal/app"
	"github.com/rook-computer/gadgetdrive/internal/buttons"
	"github.com/rook-computer/gadgetdrive/internal/render"
	"github.com/rook-computer/gadgetdrive/internal/state"
	"github.com/rook-computer/gadgetdrive/internal/system"
	"github.com/rook-computer/gadgetdrive/internal/telemetry"
)

func main() {
	root := flag.String("root", "/tmp/gadgetdrive-sim/images", "directory holding the simulated .iso and .img files")
	scenario := flag.String("scenario", "images", "simulator scenario: images | empty")
	panel := flag.String("panel", "/tmp/gadgetdrive-sim/panel.png", "PNG file the panel is written to after every frame")
	font := flag.String("font", render.DefaultFontPath, "TrueType/OpenType font; the built-in bitmap font is used when unreadable")
	initial := flag.String("mode", "cd", "start-up mode: cd | usb | hdd")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	logger := app.NewLogrusLogger(os.Stderr, level)

	mode, err := state.ParseMode(*initial)
	if err != nil || mode == state.SHUTDOWN {
		fmt.Println("invalid -mode:", *initial)
		os.Exit(2)
	}

	dir := filepath.Clean(*root)
	if err := seedScenario(dir, strings.TrimSpace(*scenario)); err != nil {
		fmt.Println("scenario init error:", err)
		os.Exit(2)
	}
	if err := os.MkdirAll(filepath.Dir(*panel), 0o755); err != nil {
		fmt.Println("panel dir error:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	keys := NewKeyLines(3 * buttons.DefaultPollInterval)
	go func() {
		if err := keys.Feed(ctx, os.Stdin, buttons.DefaultDebounce+50*time.Millisecond); err != nil && ctx.Err() == nil {
			logger.Errorf("sim", "stdin: %v", err)
		}
	}()
	dispatcher := buttons.NewDispatcher(keys, nil)
	dispatcher.Logger = logger

	renderer := render.NewImageRenderer(NewPNGPanel(*panel, render.CanvasWidth, render.CanvasHeight), *font)
	renderer.Logger = logger

	source := telemetry.NewSystemSource(system.ShellRunner{Logger: logger}, logger)
	source.MountPoint = dir

	a := app.New(NewDirBackend(dir, os.Stdout), renderer, dispatcher, source)
	a.Logger = logger
	a.InitialMode = mode

	fmt.Println("gadgetdrive simulator")
	fmt.Println("Images:", dir, "("+strings.Join(listNames(dir, "iso"), ", ")+")")
	fmt.Println("Panel: ", *panel)
	fmt.Println("Keys:   1 mount, 2 unmount, 3 mode, w up, s down, a shutdown, d/e inert; press Enter after each line")

	err = a.Run(ctx)
	if err != nil && ctx.Err() == nil {
		fmt.Println("stopped:", err)
	}
	stop()
	os.Exit(app.ExitCode(err))
}
