package buttons

import (
	"context"
	"time"
)

const (
	DefaultPollInterval = 10 * time.Millisecond
	DefaultDebounce     = 100 * time.Millisecond
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Dispatcher polls a LineReader and turns active lines into Events.
//
// Debounce state is shared by all lines: an activation of the line reported
// last is dropped while less than Debounce has elapsed since that report.
// Any other line is accepted immediately.
type Dispatcher struct {
	Reader       LineReader
	Lines        []Line
	Bindings     map[Line]Event
	PollInterval time.Duration
	Debounce     time.Duration
	Logger       Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	lastLine Line
	lastTime time.Time
}

func NewDispatcher(reader LineReader, bindings map[Line]Event) *Dispatcher {
	if bindings == nil {
		bindings = DefaultBindings
	}
	return &Dispatcher{
		Reader:       reader,
		Lines:        Lines,
		Bindings:     bindings,
		PollInterval: DefaultPollInterval,
		Debounce:     DefaultDebounce,
		now:          time.Now,
		sleep:        sleepContext,
	}
}

// WaitForButton blocks until an accepted, bound line becomes active or ctx
// is done.
func (d *Dispatcher) WaitForButton(ctx context.Context) (Event, error) {
	for {
		if err := d.sleep(ctx, d.PollInterval); err != nil {
			return "", err
		}
		for _, line := range d.Lines {
			if !d.Reader.Active(line) {
				continue
			}
			if !d.accept(line, d.now()) {
				continue
			}
			event, ok := d.Bindings[line]
			if !ok {
				d.logf("pressed %s, not bound", line)
				continue
			}
			d.logf("pressed %s (%s)", event, line)
			return event, nil
		}
	}
}

// accept applies the debounce rule and records line as last reported.
func (d *Dispatcher) accept(line Line, now time.Time) bool {
	if line == d.lastLine && !d.lastTime.IsZero() && now.Sub(d.lastTime) < d.Debounce {
		return false
	}
	d.lastLine = line
	d.lastTime = now
	return true
}

func (d *Dispatcher) logf(format string, args ...interface{}) {
	if d.Logger != nil {
		d.Logger.Infof("buttons", format, args...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
