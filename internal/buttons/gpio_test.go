package buttons

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type testPins map[string]*gpiotest.Pin

func (p testPins) Pin(name string) (gpio.PinIO, error) {
	pin, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("unknown gpio pin %q", name)
	}
	return pin, nil
}

func TestGPIOLinesActiveLow(t *testing.T) {
	pins := testPins{"GPIO21": {N: "GPIO21"}, "GPIO20": {N: "GPIO20"}}
	lines, err := OpenGPIOLines(pins, map[Line]string{Key1: "GPIO21", Key2: "GPIO20"}, true)
	require.NoError(t, err)
	assert.Equal(t, gpio.PullUp, pins["GPIO21"].P)

	pins["GPIO21"].L = gpio.High
	pins["GPIO20"].L = gpio.High
	assert.False(t, lines.Active(Key1))

	pins["GPIO21"].L = gpio.Low
	assert.True(t, lines.Active(Key1))
	assert.False(t, lines.Active(Key2))
	assert.False(t, lines.Active(JoyPress))
}

func TestGPIOLinesActiveHigh(t *testing.T) {
	pins := testPins{"GPIO6": {N: "GPIO6"}}
	lines, err := OpenGPIOLines(pins, map[Line]string{JoyUp: "GPIO6"}, false)
	require.NoError(t, err)
	assert.Equal(t, gpio.PullDown, pins["GPIO6"].P)

	pins["GPIO6"].L = gpio.High
	assert.True(t, lines.Active(JoyUp))
}

func TestGPIOLinesUnknownPin(t *testing.T) {
	_, err := OpenGPIOLines(testPins{}, map[Line]string{Key3: "GPIO16"}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key3")
}
