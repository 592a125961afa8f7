// Package telemetry collects the system figures shown in the status rows of
// the display. Every value degrades to Unavailable instead of failing.
package telemetry

import (
	"context"
	"fmt"
	"math"
	"strconv"
)

// Unavailable replaces any value that could not be read.
const Unavailable = "N/A"

// Snapshot holds display-ready strings.
type Snapshot struct {
	// CPULoad is the load percentage without the percent sign, e.g. "12.5".
	CPULoad string
	// CPUTemp is degrees Celsius with one decimal, e.g. "48.3".
	CPUTemp string
	// FreeSpace is a df -h style size, or "" when the media mount point is absent.
	FreeSpace string
	// WiFi is "WiFi: <level> dBm", "" when not associated, Unavailable on errors.
	WiFi string
}

// Source is queried once per render and never cached.
type Source interface {
	Snapshot(ctx context.Context) Snapshot
}

// Static is a Source returning a fixed snapshot.
type Static Snapshot

func (s Static) Snapshot(context.Context) Snapshot { return Snapshot(s) }

// FormatPercent renders a load percentage with one decimal.
func FormatPercent(v float64) string {
	if math.IsNaN(v) {
		return Unavailable
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// FormatTemp renders a temperature rounded to one decimal.
func FormatTemp(v float64) string {
	if math.IsNaN(v) {
		return Unavailable
	}
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}

// FormatSize renders bytes the way df -h does: powers of 1024, rounded up,
// one decimal below 10.
func FormatSize(bytes uint64) string {
	const units = "KMGTPE"
	if bytes < 1024 {
		return strconv.FormatUint(bytes, 10)
	}
	value := float64(bytes)
	unit := -1
	for value >= 1024 && unit < len(units)-1 {
		value /= 1024
		unit++
	}
	if value < 10 {
		rounded := math.Ceil(value*10) / 10
		if rounded < 10 {
			return fmt.Sprintf("%.1f%c", rounded, units[unit])
		}
	}
	return fmt.Sprintf("%.0f%c", math.Ceil(value), units[unit])
}

// FormatWiFi renders the descriptor shown in the status row.
func FormatWiFi(signalLevel string) string {
	return "WiFi: " + signalLevel + " dBm"
}
