//go:build !linux

package buttons

import (
	"context"
	"errors"
)

type EvdevLines struct{}

func OpenEvdevLines(ctx context.Context, keyCodes map[Line]uint16, logger Logger) (*EvdevLines, error) {
	return nil, errors.New("evdev input is only available on linux")
}

func (*EvdevLines) Active(Line) bool { return false }
