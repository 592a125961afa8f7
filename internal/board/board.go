// Package board owns the process-wide GPIO host initialisation and hands out
// pins by name ("GPIO21" or the board header name).
package board

import (
	"fmt"
	"strings"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

type Board struct {
	mu     sync.Mutex
	opened map[string]gpio.PinIO
}

// Open initialises the periph host drivers. Call it once at start-up and pass
// the returned handle to everything that needs pins.
func Open() (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio host init: %w", err)
	}
	return &Board{opened: map[string]gpio.PinIO{}}, nil
}

// Pin looks up a pin by name.
func (b *Board) Pin(name string) (gpio.PinIO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty pin name")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.opened[name]; ok {
		return p, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown gpio pin %q", name)
	}
	b.opened[name] = p
	return p, nil
}

// Close halts every pin handed out.
func (b *Board) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var firstErr error
	for name, p := range b.opened {
		if err := p.Halt(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("halt %s: %w", name, err)
		}
	}
	b.opened = map[string]gpio.PinIO{}
	return firstErr
}
