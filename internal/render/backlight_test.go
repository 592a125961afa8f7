package render

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type onePin struct{ pin *gpiotest.Pin }

func (o onePin) Pin(name string) (gpio.PinIO, error) {
	if name != o.pin.N {
		return nil, fmt.Errorf("unknown gpio pin %q", name)
	}
	return o.pin, nil
}

func TestBacklightHalfDuty(t *testing.T) {
	pin := &gpiotest.Pin{N: DefaultBacklightPin}
	b, err := NewBacklight(onePin{pin}, DefaultBacklightPin, DefaultBacklightDuty)
	require.NoError(t, err)
	assert.Equal(t, gpio.DutyHalf, pin.D)
	assert.Equal(t, DefaultBacklightDuty, b.Duty())

	require.NoError(t, b.Off())
	assert.Equal(t, gpio.Low, pin.L)
	assert.Equal(t, 0, b.Duty())

	require.NoError(t, b.Set(150))
	assert.Equal(t, gpio.High, pin.L)
	assert.Equal(t, 100, b.Duty())
}

func TestBacklightUnknownPin(t *testing.T) {
	_, err := NewBacklight(onePin{&gpiotest.Pin{N: "GPIO24"}}, "GPIO18", 50)
	assert.ErrorContains(t, err, "backlight")
}
