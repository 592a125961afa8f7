package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/gadgetdrive/internal/buttons"
	"github.com/rook-computer/gadgetdrive/internal/state"
)

func TestDirBackend(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, seedScenario(root, "images"))
	var out bytes.Buffer
	b := NewDirBackend(root, &out)
	ctx := context.Background()

	require.NoError(t, b.SetMode(ctx, state.CD))
	isos, err := b.ListMedia(ctx, "iso")
	require.NoError(t, err)
	assert.Len(t, isos, 4)
	imgs, err := b.ListMedia(ctx, "img")
	require.NoError(t, err)
	assert.Len(t, imgs, 2)

	require.NoError(t, b.InsertMedia(ctx, isos[0], state.CD))
	assert.Equal(t, isos[0], b.Mounted())
	assert.Error(t, b.InsertMedia(ctx, filepath.Join(root, "missing.iso"), state.CD))
	assert.Error(t, b.InsertMedia(ctx, imgs[0], state.USB))

	data, err := os.ReadFile(filepath.Join(root, ".gadget-state"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "mode=cd")

	require.NoError(t, b.RemoveMedia(ctx))
	assert.Empty(t, b.Mounted())
	require.NoError(t, b.PowerOff(ctx))
	assert.Error(t, b.SetMode(ctx, state.USB))
	assert.Contains(t, out.String(), "[gadget] power off")
}

func TestSeedScenario(t *testing.T) {
	root := filepath.Join(t.TempDir(), "images")
	require.NoError(t, seedScenario(root, "empty"))
	assert.Empty(t, listNames(root, "iso"))
	assert.Error(t, seedScenario(root, "floppy"))

	require.NoError(t, seedScenario(root, "images"))
	assert.Equal(t, []string{"clonezilla.iso", "debian-12.iso", "memtest86.iso", "ubuntu-24.04.iso"}, listNames(root, "iso"))
}

func TestKeyLinesPulse(t *testing.T) {
	now := time.Unix(100, 0)
	k := NewKeyLines(30 * time.Millisecond)
	k.now = func() time.Time { return now }

	assert.True(t, k.Press('1'))
	assert.False(t, k.Press('x'))
	assert.True(t, k.Active(buttons.Key1))
	assert.False(t, k.Active(buttons.Key2))

	now = now.Add(30 * time.Millisecond)
	assert.False(t, k.Active(buttons.Key1))
}

func TestKeyLinesFeed(t *testing.T) {
	k := NewKeyLines(time.Hour)
	require.NoError(t, k.Feed(context.Background(), strings.NewReader("w s\n3\n"), time.Millisecond))
	assert.True(t, k.Active(buttons.JoyUp))
	assert.True(t, k.Active(buttons.JoyDown))
	assert.True(t, k.Active(buttons.Key3))
	assert.False(t, k.Active(buttons.JoyLeft))
}

func TestPNGPanelFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.png")
	p := NewPNGPanel(path, 24, 24)
	require.NoError(t, p.Flush())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 24, img.Bounds().Dx())
}
