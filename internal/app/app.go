package app

import (
	"context"
	"errors"

	"github.com/rook-computer/gadgetdrive/internal/buttons"
	"github.com/rook-computer/gadgetdrive/internal/render"
	"github.com/rook-computer/gadgetdrive/internal/state"
	"github.com/rook-computer/gadgetdrive/internal/telemetry"
)

// App is the single-threaded appliance loop: wait for a button, apply the
// bound action to the controller, redraw.
type App struct {
	Backend     state.Backend
	Render      render.Renderer
	Buttons     buttons.Buttons
	Telemetry   telemetry.Source
	Logger      Logger
	InitialMode state.Mode

	controller *state.Controller
}

func New(backend state.Backend, renderer render.Renderer, buttonDriver buttons.Buttons, source telemetry.Source) *App {
	return &App{
		Backend:     backend,
		Render:      renderer,
		Buttons:     buttonDriver,
		Telemetry:   source,
		Logger:      NoopLogger{},
		InitialMode: state.CD,
	}
}

// Controller is nil until Run has started.
func (app *App) Controller() *state.Controller { return app.controller }

// Run returns nil after the device was powered off, the context error when
// ctx ends the wait for a button, and the first backend failure otherwise.
// The display is cleared on every return path once the renderer started.
func (app *App) Run(ctx context.Context) (err error) {
	if app.Logger == nil {
		app.Logger = NoopLogger{}
	}
	if app.Render == nil {
		app.Render = render.NoopRenderer{}
	}
	if app.Telemetry == nil {
		app.Telemetry = telemetry.Static{}
	}

	app.controller, err = state.NewController(ctx, app.Backend, app.Logger, app.InitialMode)
	if err != nil {
		app.Logger.Errorf("app", "initial mode %s: %v", app.InitialMode, err)
		return err
	}

	if err := app.Render.Start(ctx); err != nil {
		app.Logger.Errorf("app", "renderer start error: %v", err)
		return err
	}
	defer func() {
		if cerr := app.Render.Clear(); cerr != nil {
			app.Logger.Errorf("app", "clear display: %v", cerr)
		}
		_ = app.Render.Stop()
	}()

	if err := app.Render.Clear(); err != nil {
		app.Logger.Errorf("app", "clear display: %v", err)
	}
	if err := app.redraw(ctx); err != nil {
		return err
	}

	for {
		event, err := app.Buttons.WaitForButton(ctx)
		if err != nil {
			return err
		}
		app.Logger.Debugf("app", "handling %s", event)

		done, err := app.handle(ctx, event)
		if err != nil {
			return err
		}
		if done {
			app.Logger.Infof("app", "powered off")
			return nil
		}
		if err := app.redraw(ctx); err != nil {
			return err
		}
	}
}

// handle applies one event. It reports done once the device was powered
// off. Only backend failures are returned; everything else is logged.
func (app *App) handle(ctx context.Context, event buttons.Event) (done bool, err error) {
	c := app.controller
	switch event {
	case buttons.Up:
		c.MovePrevious()
	case buttons.Down:
		_, err = c.MoveNext(ctx)
	case buttons.Mount:
		err = c.InsertImage(ctx)
	case buttons.Umount:
		err = c.RemoveImage(ctx)
	case buttons.Mode:
		_, err = c.ToggleMode(ctx)
	case buttons.Shutdown:
		if err := c.PrepareShutdown(ctx); err != nil {
			return false, app.triage(event, err)
		}
		if err := app.redraw(ctx); err != nil {
			return false, err
		}
		if err := c.Shutdown(ctx); err != nil {
			return false, app.triage(event, err)
		}
		return true, nil
	default:
		app.Logger.Debugf("app", "no action bound to %s", event)
	}
	return false, app.triage(event, err)
}

// triage decides whether err ends the loop.
func (app *App) triage(event buttons.Event, err error) error {
	if err == nil {
		return nil
	}
	if state.IsBackendError(err) {
		app.Logger.Errorf("app", "%s: %v", event, err)
		return err
	}
	if errors.Is(err, state.ErrNoMediaAvailable) {
		app.Logger.Infof("app", "%s: no media available", event)
		return nil
	}
	app.Logger.Errorf("app", "%s: %v", event, err)
	return nil
}

// redraw renders the current snapshot. Telemetry is only sampled for the
// list screens since HDD and SHUTDOWN show nothing but the mode name.
func (app *App) redraw(ctx context.Context) error {
	snap, err := app.controller.Snapshot(ctx)
	if err != nil {
		if state.IsBackendError(err) {
			return err
		}
		app.Logger.Errorf("app", "snapshot: %v", err)
	}
	var tel telemetry.Snapshot
	if snap.Mode.Browseable() {
		tel = app.Telemetry.Snapshot(ctx)
	}
	if err := app.Render.Render(snap, tel); err != nil {
		app.Logger.Errorf("app", "render: %v", err)
	}
	return nil
}

// ExitCode maps the result of Run to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	case state.IsBackendError(err):
		return 2
	default:
		return 1
	}
}
