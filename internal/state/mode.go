package state

import (
	"fmt"
	"strings"
)

// Mode is the emulation mode the gadget presents to the host.
type Mode int

const (
	CD Mode = iota
	USB
	HDD
	SHUTDOWN
)

var modeTokens = [...]string{
	CD:       "cd",
	USB:      "usb",
	HDD:      "hdd",
	SHUTDOWN: "shutdown",
}

// Valid reports whether m is one of the four defined modes.
func (m Mode) Valid() bool {
	return m >= CD && m <= SHUTDOWN
}

// Browseable reports whether m has a selectable media listing.
func (m Mode) Browseable() bool {
	return m == CD || m == USB
}

// String returns the token passed to the gadget scripts ("cd", "usb", ...).
func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeTokens[m]
}

// Label is the uppercase name shown on the display.
func (m Mode) Label() string {
	return strings.ToUpper(m.String())
}

// Extension is the image file extension listed for a browseable mode.
func (m Mode) Extension() string {
	switch m {
	case CD:
		return "iso"
	case USB:
		return "img"
	}
	return ""
}

// next is the toggle cycle CD -> USB -> HDD -> CD. SHUTDOWN is not part of it.
func (m Mode) next() Mode {
	switch m {
	case CD:
		return USB
	case USB:
		return HDD
	}
	return CD
}

// ParseMode converts a script token back into a Mode.
func ParseMode(token string) (Mode, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	for i, t := range modeTokens {
		if t == token {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, token)
}
