package gadget

import (
	"context"
	"fmt"
	"strings"

	"github.com/rook-computer/gadgetdrive/internal/state"
	"github.com/rook-computer/gadgetdrive/internal/system"
)

const (
	modeScript   = "mode.sh"
	listScript   = "list_iso.sh"
	insertScript = "insert_iso.sh"
	removeScript = "remove_iso.sh"
	powerScript  = "shutdown.sh"
)

// ScriptBackend drives the USB mass-storage gadget through the shell scripts
// shipped next to the binary.
type ScriptBackend struct {
	Runner system.Runner
}

func NewScriptBackend(runner system.Runner) *ScriptBackend {
	return &ScriptBackend{Runner: runner}
}

// SetMode reconfigures the gadget for mode ("cd", "usb", "hdd" or "shutdown").
func (b *ScriptBackend) SetMode(ctx context.Context, mode state.Mode) error {
	_, stderr, err := b.Runner.Run(ctx, modeScript, mode.String())
	if err != nil {
		return fmt.Errorf("mode %s failed: %v: %s", mode, err, stderr)
	}
	return nil
}

// ListMedia returns the null-delimited image paths printed by the list script.
func (b *ScriptBackend) ListMedia(ctx context.Context, extension string) ([]string, error) {
	stdout, stderr, err := b.Runner.Run(ctx, listScript, extension)
	if err != nil {
		return nil, fmt.Errorf("list %s images failed: %v: %s", extension, err, stderr)
	}
	return SplitNull(stdout), nil
}

func (b *ScriptBackend) InsertMedia(ctx context.Context, identifier string, mode state.Mode) error {
	_, stderr, err := b.Runner.Run(ctx, insertScript, identifier, mode.String())
	if err != nil {
		return fmt.Errorf("insert %s failed: %v: %s", identifier, err, stderr)
	}
	return nil
}

func (b *ScriptBackend) RemoveMedia(ctx context.Context) error {
	_, stderr, err := b.Runner.Run(ctx, removeScript)
	if err != nil {
		return fmt.Errorf("remove image failed: %v: %s", err, stderr)
	}
	return nil
}

// PowerOff runs the shutdown script. On a real device the process is killed
// before the script returns.
func (b *ScriptBackend) PowerOff(ctx context.Context) error {
	_, stderr, err := b.Runner.Run(ctx, powerScript)
	if err != nil {
		return fmt.Errorf("shutdown failed: %v: %s", err, stderr)
	}
	return nil
}

// SplitNull splits find -print0 style output. Trailing CR/LF is trimmed
// from every entry; empty entries are kept for the caller to filter.
func SplitNull(output string) []string {
	if output == "" {
		return nil
	}
	parts := strings.Split(output, "\x00")
	for i, part := range parts {
		parts[i] = strings.TrimRight(part, "\r\n")
	}
	return parts
}
