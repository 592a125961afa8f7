package buttons

import "context"

// Event is a debounced logical button press.
type Event string

const (
	Up       Event = "up"
	Down     Event = "down"
	Mount    Event = "mount"
	Umount   Event = "umount"
	Mode     Event = "mode"
	Shutdown Event = "shutdown"
)

// Line identifies one physical input line of the button HAT.
type Line string

const (
	Key1     Line = "key1"
	Key2     Line = "key2"
	Key3     Line = "key3"
	JoyUp    Line = "up"
	JoyDown  Line = "down"
	JoyLeft  Line = "left"
	JoyRight Line = "right"
	JoyPress Line = "press"
)

// Lines lists every monitored line in polling order.
var Lines = []Line{Key1, Key2, Key3, JoyUp, JoyDown, JoyLeft, JoyRight, JoyPress}

// DefaultBindings maps lines to events. JoyRight and JoyPress are monitored
// but intentionally unbound.
var DefaultBindings = map[Line]Event{
	Key1:    Mount,
	Key2:    Umount,
	Key3:    Mode,
	JoyUp:   Up,
	JoyDown: Down,
	JoyLeft: Shutdown,
}

// Buttons delivers one logical event at a time.
type Buttons interface {
	WaitForButton(ctx context.Context) (Event, error)
}

// LineReader samples the current level of physical lines.
type LineReader interface {
	// Active reports whether line is at its asserted (pressed) level.
	Active(line Line) bool
}

// DefaultKeyCodes maps lines to Linux input key codes for the evdev source:
// 1, 2, 3 for the keys, arrows for the joystick and Enter for press.
var DefaultKeyCodes = map[Line]uint16{
	Key1:     2,
	Key2:     3,
	Key3:     4,
	JoyUp:    103,
	JoyDown:  108,
	JoyLeft:  105,
	JoyRight: 106,
	JoyPress: 28,
}
