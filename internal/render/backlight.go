package render

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

const (
	DefaultBacklightPin  = "GPIO24"
	DefaultBacklightDuty = 50
	backlightFrequency   = physic.KiloHertz
)

// PinSource hands out GPIO pins by name; *board.Board implements it.
type PinSource interface {
	Pin(name string) (gpio.PinIO, error)
}

// Backlight drives the panel backlight pin with PWM.
type Backlight struct {
	pin  gpio.PinIO
	duty int
}

// NewBacklight switches the backlight on at dutyPercent (clamped to 0..100).
func NewBacklight(source PinSource, pinName string, dutyPercent int) (*Backlight, error) {
	pin, err := source.Pin(pinName)
	if err != nil {
		return nil, fmt.Errorf("backlight: %w", err)
	}
	b := &Backlight{pin: pin}
	if err := b.Set(dutyPercent); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Backlight) Set(dutyPercent int) error {
	if dutyPercent < 0 {
		dutyPercent = 0
	}
	if dutyPercent > 100 {
		dutyPercent = 100
	}
	var err error
	switch dutyPercent {
	case 0:
		err = b.pin.Out(gpio.Low)
	case 100:
		err = b.pin.Out(gpio.High)
	default:
		err = b.pin.PWM(gpio.DutyMax*gpio.Duty(dutyPercent)/100, backlightFrequency)
	}
	if err != nil {
		return fmt.Errorf("backlight %s at %d%%: %w", b.pin.Name(), dutyPercent, err)
	}
	b.duty = dutyPercent
	return nil
}

func (b *Backlight) Duty() int { return b.duty }

func (b *Backlight) Off() error { return b.Set(0) }
