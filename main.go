package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/gadgetdrive/internal/app"
	"github.com/rook-computer/gadgetdrive/internal/board"
	"github.com/rook-computer/gadgetdrive/internal/buttons"
	"github.com/rook-computer/gadgetdrive/internal/config"
	"github.com/rook-computer/gadgetdrive/internal/gadget"
	"github.com/rook-computer/gadgetdrive/internal/render"
	"github.com/rook-computer/gadgetdrive/internal/system"
	"github.com/rook-computer/gadgetdrive/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML configuration file")
	debug := flag.Bool("debug", false, "log at debug level")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via "+config.EnvStdioLog)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		return 1
	}
	if *debug {
		cfg.Log.Level = "debug"
	}
	if *stdioLog != "" {
		cfg.Log.File = *stdioLog
	}

	// Best-effort: the console is in graphics mode while running, so crashes
	// are only diagnosable from the file.
	if cfg.Log.File != "" {
		if err := redirectStdIO(cfg.Log.File); err != nil {
			fmt.Fprintln(os.Stderr, "stdio log redirect error:", err)
		}
	}
	logger := app.NewLogrusLogger(os.Stderr, cfg.Log.Level)

	mode, err := cfg.Mode()
	if err != nil {
		logger.Errorf("main", "%v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scripts := system.ShellRunner{Dir: cfg.Gadget.ScriptDir, Sudo: cfg.Gadget.Sudo, Logger: logger}
	tools := system.ShellRunner{Logger: logger}

	brd, err := board.Open()
	if err != nil {
		if cfg.Buttons.Source == config.SourceGPIO {
			logger.Errorf("main", "%v", err)
			return 1
		}
		logger.Errorf("main", "%v; backlight control disabled", err)
	} else {
		defer brd.Close()
		if cfg.Display.BacklightPin != "" {
			backlight, err := render.NewBacklight(brd, cfg.Display.BacklightPin, cfg.Display.BacklightDuty)
			if err != nil {
				logger.Errorf("main", "%v", err)
			} else {
				defer func() {
					if err := backlight.Off(); err != nil {
						logger.Errorf("main", "%v", err)
					}
				}()
			}
		}
	}

	var lines buttons.LineReader
	switch cfg.Buttons.Source {
	case config.SourceEvdev:
		lines, err = buttons.OpenEvdevLines(ctx, cfg.KeyCodeMap(), logger)
	default:
		lines, err = buttons.OpenGPIOLines(brd, cfg.PinMap(), cfg.Buttons.ActiveLow)
	}
	if err != nil {
		logger.Errorf("main", "buttons: %v", err)
		return 1
	}
	dispatcher := buttons.NewDispatcher(lines, nil)
	dispatcher.PollInterval = cfg.Buttons.PollInterval
	dispatcher.Debounce = cfg.Buttons.Debounce
	dispatcher.Logger = logger

	renderer := render.NewFBRenderer(cfg.Display.Device, cfg.Display.Font)
	renderer.Logger = logger

	source := telemetry.NewSystemSource(tools, logger)
	source.MountPoint = cfg.Telemetry.MountPoint
	source.WiFiInterface = cfg.Telemetry.WiFiInterface
	source.CPUSample = cfg.Telemetry.CPUSample

	if cfg.Display.GraphicsConsole {
		restore := system.EnterGraphicsConsole(logger)
		defer restore()
	}

	a := app.New(gadget.NewScriptBackend(scripts), renderer, dispatcher, source)
	a.Logger = logger
	a.InitialMode = mode
	logger.Infof("main", "starting in %s mode, scripts in %s", mode, cfg.Gadget.ScriptDir)

	err = a.Run(ctx)
	if err != nil && ctx.Err() == nil {
		logger.Errorf("main", "stopped: %v", err)
	}
	return app.ExitCode(err)
}
