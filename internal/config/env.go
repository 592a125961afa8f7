package config

import (
	"fmt"
	"strconv"
)

const (
	EnvScriptDir = "GADGETDRIVE_SCRIPT_DIR"
	EnvFBDevice  = "GADGETDRIVE_FB_DEVICE"
	EnvFont      = "GADGETDRIVE_FONT"
	EnvDebug     = "GADGETDRIVE_DEBUG"
	EnvStdioLog  = "GADGETDRIVE_STDIO_LOG"
)

// ApplyEnv overrides file settings from the environment. getenv is
// os.Getenv outside of tests.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvScriptDir); v != "" {
		c.Gadget.ScriptDir = v
	}
	if v := getenv(EnvFBDevice); v != "" {
		c.Display.Device = v
	}
	if v := getenv(EnvFont); v != "" {
		c.Display.Font = v
	}
	if v := getenv(EnvStdioLog); v != "" {
		c.Log.File = v
	}
	if raw := getenv(EnvDebug); raw != "" {
		debug, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s must be a boolean (got %q): %w", EnvDebug, raw, err)
		}
		if debug {
			c.Log.Level = "debug"
		} else if c.Log.Level == "debug" {
			c.Log.Level = "info"
		}
	}
	return nil
}
