package system

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const (
	iwgetidTool   = "iwgetid"
	iwconfigTool  = "iwconfig"
	vcgencmdTool  = "vcgencmd"
	signalLevelOf = "Signal level="
)

// WiFiSSID returns the SSID the wireless interface is associated with, or ""
// when it is not associated.
func WiFiSSID(ctx context.Context, r Runner) (string, error) {
	stdout, stderr, err := r.Run(ctx, iwgetidTool, "-r")
	if err != nil {
		// iwgetid exits 255 when not associated and prints nothing. A tool
		// that could not be started at all is a failure.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && strings.TrimSpace(stdout) == "" && strings.TrimSpace(stderr) == "" {
			return "", nil
		}
		return "", fmt.Errorf("iwgetid failed: %w: %s", err, stderr)
	}
	return strings.TrimSpace(stdout), nil
}

// WiFiSignalLevel returns the "Signal level" reported by iwconfig for iface,
// without the unit (e.g. "-52").
func WiFiSignalLevel(ctx context.Context, r Runner, iface string) (string, error) {
	stdout, stderr, err := r.Run(ctx, iwconfigTool, iface)
	if err != nil {
		return "", fmt.Errorf("iwconfig %s failed: %v: %s", iface, err, stderr)
	}
	level, ok := ParseSignalLevel(stdout)
	if !ok {
		return "", fmt.Errorf("iwconfig %s: no signal level", iface)
	}
	return level, nil
}

// ParseSignalLevel extracts the first token after "Signal level=".
func ParseSignalLevel(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, signalLevelOf)
		if idx < 0 {
			continue
		}
		fields := strings.Fields(line[idx+len(signalLevelOf):])
		if len(fields) == 0 {
			return "", false
		}
		return fields[0], true
	}
	return "", false
}

// MeasureTemp reads the SoC temperature through vcgencmd, in degrees Celsius.
func MeasureTemp(ctx context.Context, r Runner) (float64, error) {
	stdout, stderr, err := r.Run(ctx, vcgencmdTool, "measure_temp")
	if err != nil {
		return 0, fmt.Errorf("vcgencmd measure_temp failed: %v: %s", err, stderr)
	}
	return ParseMeasureTemp(stdout)
}

// ParseMeasureTemp parses output like "temp=48.3'C".
func ParseMeasureTemp(output string) (float64, error) {
	output = strings.TrimSpace(output)
	_, value, ok := strings.Cut(output, "=")
	if !ok {
		return 0, fmt.Errorf("unexpected measure_temp output %q", output)
	}
	value, _, _ = strings.Cut(value, "'")
	temp, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected measure_temp output %q: %w", output, err)
	}
	return temp, nil
}
