package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/gadgetdrive/internal/buttons"
	"github.com/rook-computer/gadgetdrive/internal/render"
	"github.com/rook-computer/gadgetdrive/internal/state"
	"github.com/rook-computer/gadgetdrive/internal/telemetry"
)

type fakeBackend struct {
	media  map[string][]string
	failOp string
	calls  []string
}

func (b *fakeBackend) record(call string) error {
	b.calls = append(b.calls, call)
	if b.failOp != "" && strings.HasPrefix(call, b.failOp) {
		return errors.New("script exited 1")
	}
	return nil
}

func (b *fakeBackend) SetMode(_ context.Context, m state.Mode) error {
	return b.record("mode " + m.String())
}

func (b *fakeBackend) ListMedia(_ context.Context, ext string) ([]string, error) {
	if err := b.record("list " + ext); err != nil {
		return nil, err
	}
	return b.media[ext], nil
}

func (b *fakeBackend) InsertMedia(_ context.Context, id string, m state.Mode) error {
	return b.record("insert " + id + " " + m.String())
}

func (b *fakeBackend) RemoveMedia(context.Context) error { return b.record("remove") }
func (b *fakeBackend) PowerOff(context.Context) error    { return b.record("poweroff") }

// scriptedButtons replays events, then reports the context as cancelled.
type scriptedButtons struct{ events []buttons.Event }

func (s *scriptedButtons) WaitForButton(ctx context.Context) (buttons.Event, error) {
	if len(s.events) == 0 {
		return "", context.Canceled
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

type recordingRenderer struct {
	started, stopped bool
	clears           int
	frames           []render.Frame
}

func (r *recordingRenderer) Start(context.Context) error { r.started = true; return nil }
func (r *recordingRenderer) Stop() error                 { r.stopped = true; return nil }
func (r *recordingRenderer) Clear() error                { r.clears++; return nil }
func (r *recordingRenderer) Render(snap state.Snapshot, tel telemetry.Snapshot) error {
	r.frames = append(r.frames, render.Compose(snap, tel))
	return nil
}

func (r *recordingRenderer) last() render.Frame { return r.frames[len(r.frames)-1] }

var fixedTelemetry = telemetry.Static{CPULoad: "3.0", CPUTemp: "41.0", FreeSpace: "9.1G", WiFi: "WiFi: -60 dBm"}

func newTestApp(backend *fakeBackend, events ...buttons.Event) (*App, *recordingRenderer) {
	r := &recordingRenderer{}
	return New(backend, r, &scriptedButtons{events: events}, fixedTelemetry), r
}

func TestRunBrowsesAndMounts(t *testing.T) {
	backend := &fakeBackend{media: map[string][]string{"iso": {"/iso/b.iso", "/iso/a.iso", "/iso/c.iso"}}}
	a, r := newTestApp(backend, buttons.Down, buttons.Down, buttons.Up, buttons.Mount)

	err := a.Run(context.Background())
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, []string{
		"mode cd", "list iso",
		"remove", "insert /iso/b.iso cd",
	}, backend.calls)
	require.Len(t, r.frames, 5)
	assert.Equal(t, ">a.iso", r.frames[0].Rows[render.SelectedRow])
	assert.Equal(t, ">c.iso", r.frames[2].Rows[render.SelectedRow])
	assert.Equal(t, "CD •b.iso", r.last().Header)
	assert.Equal(t, "CPU: 3.0%, Temp: 41.0°C", r.last().Telemetry)
	assert.Equal(t, 2, r.clears)
	assert.True(t, r.stopped)
}

func TestRunNoMediaIsRecoverable(t *testing.T) {
	backend := &fakeBackend{}
	a, r := newTestApp(backend, buttons.Mount, buttons.Mode)

	assert.ErrorIs(t, a.Run(context.Background()), context.Canceled)
	assert.NotContains(t, backend.calls, "insert")
	assert.Equal(t, render.NoMediaText, r.frames[1].Rows[render.SelectedRow])
	assert.Equal(t, "USB •", r.last().Header)
	assert.Equal(t, state.USB, a.Controller().Mode())
}

func TestRunBackendErrorIsFatal(t *testing.T) {
	backend := &fakeBackend{media: map[string][]string{"iso": {"/iso/a.iso"}}, failOp: "insert"}
	a, r := newTestApp(backend, buttons.Mount, buttons.Down)

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.True(t, state.IsBackendError(err))
	assert.Equal(t, 2, ExitCode(err))
	assert.Len(t, r.frames, 1)
	assert.Equal(t, 2, r.clears)
}

func TestRunInitialModeFailure(t *testing.T) {
	backend := &fakeBackend{failOp: "mode"}
	a, r := newTestApp(backend)

	err := a.Run(context.Background())
	assert.True(t, state.IsBackendError(err))
	assert.False(t, r.started)
	assert.Zero(t, r.clears)
}

func TestRunShutdown(t *testing.T) {
	backend := &fakeBackend{media: map[string][]string{"iso": {"/iso/a.iso"}}}
	a, r := newTestApp(backend, buttons.Mount, buttons.Shutdown, buttons.Down)

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, []string{
		"mode cd", "list iso",
		"remove", "insert /iso/a.iso cd",
		"remove", "mode shutdown", "poweroff",
	}, backend.calls)
	assert.Equal(t, render.Frame{Large: "SHUTDOWN"}, r.last())
	assert.Equal(t, 2, r.clears)
	assert.Equal(t, 0, ExitCode(nil))
}

func TestRunPowerOffFailure(t *testing.T) {
	backend := &fakeBackend{failOp: "poweroff"}
	a, r := newTestApp(backend, buttons.Shutdown)

	err := a.Run(context.Background())
	assert.True(t, state.IsBackendError(err))
	assert.Equal(t, render.Frame{Large: "SHUTDOWN"}, r.last())
	assert.Equal(t, 2, r.clears)
}

func TestRunHDDSkipsTelemetry(t *testing.T) {
	backend := &fakeBackend{}
	a, r := newTestApp(backend, buttons.Mode, buttons.Mode, buttons.Umount, buttons.Up)

	assert.ErrorIs(t, a.Run(context.Background()), context.Canceled)
	assert.Equal(t, render.Frame{Large: "HDD"}, r.last())
	assert.Equal(t, []string{"mode cd", "list iso", "mode usb", "list img", "mode hdd"}, backend.calls)
}

func TestLogrusLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogrusLogger(&buf, "info")
	l.Debugf("app", "hidden")
	l.Infof("buttons", "pressed %s", "key1")
	l.Errorf("gadget", "boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "component=buttons")
	assert.Contains(t, out, `msg="pressed key1"`)
	assert.Contains(t, out, "level=error")

	buf.Reset()
	NewLogrusLogger(&buf, "chatty").Debugf("app", "visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(context.Canceled))
	assert.Equal(t, 1, ExitCode(errors.New("fb gone")))
	assert.Equal(t, 2, ExitCode(&state.BackendError{Op: "remove", Err: errors.New("x")}))
}
