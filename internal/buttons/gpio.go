package buttons

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// PinSource hands out GPIO pins by name; *board.Board implements it.
type PinSource interface {
	Pin(name string) (gpio.PinIO, error)
}

// GPIOLines reads button lines from GPIO inputs. With ActiveLow the pins are
// pulled up and a pressed button reads Low; otherwise pulled down and
// pressed reads High.
type GPIOLines struct {
	pins     map[Line]gpio.PinIO
	asserted gpio.Level
}

// OpenGPIOLines configures every named pin as an input.
func OpenGPIOLines(source PinSource, pinNames map[Line]string, activeLow bool) (*GPIOLines, error) {
	pull, asserted := gpio.PullDown, gpio.High
	if activeLow {
		pull, asserted = gpio.PullUp, gpio.Low
	}

	lines := &GPIOLines{pins: make(map[Line]gpio.PinIO, len(pinNames)), asserted: asserted}
	for line, name := range pinNames {
		pin, err := source.Pin(name)
		if err != nil {
			return nil, fmt.Errorf("button %s: %w", line, err)
		}
		if err := pin.In(pull, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("button %s (%s): configure input: %w", line, name, err)
		}
		lines.pins[line] = pin
	}
	return lines, nil
}

func (g *GPIOLines) Active(line Line) bool {
	pin, ok := g.pins[line]
	if !ok {
		return false
	}
	return pin.Read() == g.asserted
}
