package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeTokens(t *testing.T) {
	assert.Equal(t, "cd", CD.String())
	assert.Equal(t, "SHUTDOWN", SHUTDOWN.Label())
	assert.Equal(t, "iso", CD.Extension())
	assert.Equal(t, "img", USB.Extension())
	assert.Equal(t, "", HDD.Extension())
	assert.False(t, Mode(-1).Valid())
	assert.Equal(t, "mode(7)", Mode(7).String())
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode(" USB ")
	require.NoError(t, err)
	assert.Equal(t, USB, mode)

	_, err = ParseMode("floppy")
	assert.ErrorIs(t, err, ErrInvalidMode)
}
