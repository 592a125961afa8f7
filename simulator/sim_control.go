package main

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rook-computer/gadgetdrive/internal/buttons"
	"github.com/rook-computer/gadgetdrive/internal/state"
)

// DirBackend emulates the gadget scripts on a plain directory: images are
// the files in Root, the current mode and mounted image are recorded as
// small files next to them.
type DirBackend struct {
	Root string
	Out  io.Writer

	mu      sync.Mutex
	mode    state.Mode
	mounted string
	off     bool
}

func NewDirBackend(root string, out io.Writer) *DirBackend {
	return &DirBackend{Root: root, Out: out}
}

func (b *DirBackend) SetMode(ctx context.Context, mode state.Mode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.off {
		return fmt.Errorf("gadget powered off")
	}
	b.mode = mode
	b.mounted = ""
	b.printf("mode %s", mode)
	return b.writeState()
}

func (b *DirBackend) ListMedia(ctx context.Context, extension string) ([]string, error) {
	entries, err := os.ReadDir(b.Root)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), "."+extension) {
			continue
		}
		out = append(out, filepath.Join(b.Root, e.Name()))
	}
	return out, nil
}

func (b *DirBackend) InsertMedia(ctx context.Context, identifier string, mode state.Mode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := os.Stat(identifier); err != nil {
		return err
	}
	if mode != b.mode {
		return fmt.Errorf("insert in %s while gadget is in %s", mode, b.mode)
	}
	b.mounted = identifier
	b.printf("insert %s", filepath.Base(identifier))
	return b.writeState()
}

func (b *DirBackend) RemoveMedia(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mounted = ""
	b.printf("remove")
	return b.writeState()
}

func (b *DirBackend) PowerOff(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.off = true
	b.printf("power off")
	return nil
}

// Mounted returns the identifier of the inserted image.
func (b *DirBackend) Mounted() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mounted
}

func (b *DirBackend) writeState() error {
	content := fmt.Sprintf("mode=%s\nmounted=%s\n", b.mode, b.mounted)
	return os.WriteFile(filepath.Join(b.Root, ".gadget-state"), []byte(content), 0o644)
}

func (b *DirBackend) printf(format string, args ...interface{}) {
	if b.Out != nil {
		fmt.Fprintf(b.Out, "[gadget] "+format+"\n", args...)
	}
}

// seedScenario prepares root for a named start-up scenario.
func seedScenario(root, scenario string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	switch scenario {
	case "empty":
		return nil
	case "images", "":
		for _, name := range []string{"debian-12.iso", "ubuntu-24.04.iso", "memtest86.iso", "freedos.img", "clonezilla.iso", "win98-boot.img"} {
			path := filepath.Join(root, name)
			if _, err := os.Stat(path); err == nil {
				continue
			}
			if err := os.WriteFile(path, []byte("dummy image\n"), 0o644); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown scenario %q", scenario)
	}
}

// KeyLines turns keystrokes into short line activations. Each key is held
// for Hold, long enough to be seen by a polling dispatcher.
type KeyLines struct {
	Hold time.Duration

	mu    sync.Mutex
	until map[buttons.Line]time.Time
	now   func() time.Time
}

var simKeys = map[rune]buttons.Line{
	'1': buttons.Key1,
	'2': buttons.Key2,
	'3': buttons.Key3,
	'w': buttons.JoyUp,
	's': buttons.JoyDown,
	'a': buttons.JoyLeft,
	'd': buttons.JoyRight,
	'e': buttons.JoyPress,
}

func NewKeyLines(hold time.Duration) *KeyLines {
	return &KeyLines{Hold: hold, until: map[buttons.Line]time.Time{}, now: time.Now}
}

func (k *KeyLines) Active(line buttons.Line) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.now().Before(k.until[line])
}

// Press activates the line bound to key and reports whether one is bound.
func (k *KeyLines) Press(key rune) bool {
	line, ok := simKeys[key]
	if !ok {
		return false
	}
	k.mu.Lock()
	k.until[line] = k.now().Add(k.Hold)
	k.mu.Unlock()
	return true
}

// Feed reads r line by line; every character presses its key, one after
// another, spaced by gap so the dispatcher sees separate activations.
func (k *KeyLines) Feed(ctx context.Context, r io.Reader, gap time.Duration) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		for _, key := range strings.ToLower(strings.TrimSpace(scanner.Text())) {
			if !k.Press(key) {
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(gap):
			}
		}
	}
	return scanner.Err()
}

// PNGPanel is an in-memory panel written to a PNG file on every flush.
type PNGPanel struct {
	*image.RGBA
	Path string
}

func NewPNGPanel(path string, width, height int) *PNGPanel {
	return &PNGPanel{RGBA: image.NewRGBA(image.Rect(0, 0, width, height)), Path: path}
}

func (p *PNGPanel) Flush() error {
	tmp := p.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := png.Encode(f, p.RGBA); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p.Path)
}

func listNames(root, ext string) []string {
	matches, _ := filepath.Glob(filepath.Join(root, "*."+ext))
	for i, m := range matches {
		matches[i] = filepath.Base(m)
	}
	sort.Strings(matches)
	return matches
}
