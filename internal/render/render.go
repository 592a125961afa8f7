package render

import (
	"context"
	"fmt"

	"github.com/rook-computer/gadgetdrive/internal/state"
	"github.com/rook-computer/gadgetdrive/internal/telemetry"
)

type Renderer interface {
	Start(ctx context.Context) error
	Stop() error
	// Render draws one complete frame and pushes it to the panel.
	Render(snap state.Snapshot, tel telemetry.Snapshot) error
	// Clear pushes a blank frame.
	Clear() error
}

// Stub implementation for headless runs.
type NoopRenderer struct{}

func (NoopRenderer) Start(ctx context.Context) error                 { return nil }
func (NoopRenderer) Stop() error                                     { return nil }
func (NoopRenderer) Render(state.Snapshot, telemetry.Snapshot) error { return nil }
func (NoopRenderer) Clear() error                                    { return nil }

const (
	WindowSize      = 5
	SelectedRow     = 2
	SelectionMarker = ">"
	NoMediaText     = "    No image"
)

// Frame is the text content of one screen. When Large is set nothing else
// is drawn.
type Frame struct {
	Large     string
	Header    string
	Rows      [WindowSize]string
	Telemetry string
	Status    string
}

// Compose projects a controller snapshot and telemetry into a Frame.
func Compose(snap state.Snapshot, tel telemetry.Snapshot) Frame {
	if !snap.Mode.Browseable() {
		return Frame{Large: snap.Mode.Label()}
	}
	return Frame{
		Header:    snap.Mode.Label() + " •" + snap.Inserted,
		Rows:      Window(snap.Media, snap.Cursor),
		Telemetry: fmt.Sprintf("CPU: %s%%, Temp: %s°C", tel.CPULoad, tel.CPUTemp),
		Status:    fmt.Sprintf("Free: %s • %s", tel.FreeSpace, tel.WiFi),
	}
}

// Window returns the five list rows around cursor. The selected entry is
// always on SelectedRow; rows without a neighbour are blank.
func Window(names []string, cursor int) [WindowSize]string {
	var rows [WindowSize]string
	if len(names) == 0 {
		rows[SelectedRow] = NoMediaText
		return rows
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(names) {
		cursor = len(names) - 1
	}
	for row := range rows {
		i := cursor + row - SelectedRow
		if i < 0 || i >= len(names) {
			continue
		}
		if row == SelectedRow {
			rows[row] = SelectionMarker + names[i]
		} else {
			rows[row] = " " + names[i]
		}
	}
	return rows
}
