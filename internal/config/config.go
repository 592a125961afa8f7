// Package config loads the appliance configuration from a YAML file with
// environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rook-computer/gadgetdrive/internal/buttons"
	"github.com/rook-computer/gadgetdrive/internal/render"
	"github.com/rook-computer/gadgetdrive/internal/state"
	"github.com/rook-computer/gadgetdrive/internal/telemetry"
)

const DefaultPath = "/etc/gadgetdrive/config.yaml"

const (
	SourceGPIO  = "gpio"
	SourceEvdev = "evdev"
)

type Config struct {
	Gadget struct {
		ScriptDir   string `yaml:"script_dir"`   // directory holding mode.sh, list_iso.sh, ...
		Sudo        bool   `yaml:"sudo"`         // run scripts through sudo -n
		InitialMode string `yaml:"initial_mode"` // cd, usb or hdd
	} `yaml:"gadget"`
	Display struct {
		Device          string `yaml:"device"`
		Font            string `yaml:"font"`
		GraphicsConsole bool   `yaml:"graphics_console"` // switch the VT to KD_GRAPHICS while running
		BacklightPin    string `yaml:"backlight_pin"`    // empty disables backlight control
		BacklightDuty   int    `yaml:"backlight_duty"`   // percent
	} `yaml:"display"`
	Buttons struct {
		Source       string            `yaml:"source"` // gpio or evdev
		PollInterval time.Duration     `yaml:"poll_interval"`
		Debounce     time.Duration     `yaml:"debounce"`
		ActiveLow    bool              `yaml:"active_low"`
		Pins         map[string]string `yaml:"pins"`      // line -> GPIO name
		KeyCodes     map[string]uint16 `yaml:"key_codes"` // line -> evdev key code
	} `yaml:"buttons"`
	Telemetry struct {
		MountPoint    string        `yaml:"mount_point"`
		WiFiInterface string        `yaml:"wifi_interface"`
		CPUSample     time.Duration `yaml:"cpu_sample"`
	} `yaml:"telemetry"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"` // stdout/stderr redirect target
	} `yaml:"log"`
}

var DefaultPins = map[buttons.Line]string{
	buttons.Key1:     "GPIO21",
	buttons.Key2:     "GPIO20",
	buttons.Key3:     "GPIO16",
	buttons.JoyUp:    "GPIO6",
	buttons.JoyDown:  "GPIO19",
	buttons.JoyLeft:  "GPIO5",
	buttons.JoyRight: "GPIO26",
	buttons.JoyPress: "GPIO13",
}

func Default() *Config {
	cfg := &Config{}
	cfg.Gadget.ScriptDir = "/opt/gadgetdrive"
	cfg.Gadget.Sudo = false
	cfg.Gadget.InitialMode = state.CD.String()

	cfg.Display.Device = render.DefaultDevice
	cfg.Display.Font = render.DefaultFontPath
	cfg.Display.GraphicsConsole = true
	cfg.Display.BacklightPin = render.DefaultBacklightPin
	cfg.Display.BacklightDuty = render.DefaultBacklightDuty

	cfg.Buttons.Source = SourceGPIO
	cfg.Buttons.PollInterval = buttons.DefaultPollInterval
	cfg.Buttons.Debounce = buttons.DefaultDebounce
	cfg.Buttons.ActiveLow = true
	cfg.Buttons.Pins = make(map[string]string, len(DefaultPins))
	for line, pin := range DefaultPins {
		cfg.Buttons.Pins[string(line)] = pin
	}
	cfg.Buttons.KeyCodes = make(map[string]uint16, len(buttons.DefaultKeyCodes))
	for line, code := range buttons.DefaultKeyCodes {
		cfg.Buttons.KeyCodes[string(line)] = code
	}

	cfg.Telemetry.MountPoint = telemetry.DefaultMountPoint
	cfg.Telemetry.WiFiInterface = telemetry.DefaultWiFiInterface
	cfg.Telemetry.CPUSample = telemetry.DefaultCPUSample

	cfg.Log.Level = "debug"
	return cfg
}

// Load reads path over the defaults. A missing file yields the defaults.
// Environment overrides are applied afterwards and the result validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.Mode(); err != nil {
		return err
	}
	if c.Gadget.ScriptDir == "" {
		return fmt.Errorf("gadget.script_dir must not be empty")
	}
	if c.Buttons.PollInterval <= 0 {
		return fmt.Errorf("buttons.poll_interval must be positive, got %s", c.Buttons.PollInterval)
	}
	if c.Buttons.Debounce <= 0 {
		return fmt.Errorf("buttons.debounce must be positive, got %s", c.Buttons.Debounce)
	}
	if c.Telemetry.CPUSample <= 0 {
		return fmt.Errorf("telemetry.cpu_sample must be positive, got %s", c.Telemetry.CPUSample)
	}
	if c.Display.BacklightDuty < 0 || c.Display.BacklightDuty > 100 {
		return fmt.Errorf("display.backlight_duty must be within 0..100, got %d", c.Display.BacklightDuty)
	}
	switch c.Buttons.Source {
	case SourceGPIO:
		for _, line := range buttons.Lines {
			if c.Buttons.Pins[string(line)] == "" {
				return fmt.Errorf("buttons.pins.%s is not set", line)
			}
		}
	case SourceEvdev:
		for _, line := range buttons.Lines {
			if c.Buttons.KeyCodes[string(line)] == 0 {
				return fmt.Errorf("buttons.key_codes.%s is not set", line)
			}
		}
	default:
		return fmt.Errorf("buttons.source must be %q or %q, got %q", SourceGPIO, SourceEvdev, c.Buttons.Source)
	}
	return nil
}

// Mode returns the configured start-up mode. SHUTDOWN is not a start mode.
func (c *Config) Mode() (state.Mode, error) {
	m, err := state.ParseMode(c.Gadget.InitialMode)
	if err != nil {
		return 0, fmt.Errorf("gadget.initial_mode: %w", err)
	}
	if m == state.SHUTDOWN {
		return 0, fmt.Errorf("gadget.initial_mode: %w: %s", state.ErrInvalidMode, m)
	}
	return m, nil
}

// PinMap returns the GPIO pin name of every line.
func (c *Config) PinMap() map[buttons.Line]string {
	out := make(map[buttons.Line]string, len(c.Buttons.Pins))
	for line, pin := range c.Buttons.Pins {
		out[buttons.Line(line)] = pin
	}
	return out
}

// KeyCodeMap returns the evdev key code of every line.
func (c *Config) KeyCodeMap() map[buttons.Line]uint16 {
	out := make(map[buttons.Line]uint16, len(c.Buttons.KeyCodes))
	for line, code := range c.Buttons.KeyCodes {
		out[buttons.Line(line)] = code
	}
	return out
}
