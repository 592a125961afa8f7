package telemetry

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/rook-computer/gadgetdrive/internal/system"
)

const (
	DefaultMountPoint    = "/iso"
	DefaultWiFiInterface = "wlan0"
	DefaultCPUSample     = time.Second
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// SystemSource reads telemetry from the running system: CPU load and
// temperature and disk usage through gopsutil, Wi-Fi through iwgetid and
// iwconfig, with vcgencmd as the temperature fallback.
type SystemSource struct {
	MountPoint    string
	WiFiInterface string
	CPUSample     time.Duration
	Runner        system.Runner
	Logger        Logger

	cpuPercent  func(ctx context.Context, interval time.Duration) (float64, error)
	sensorTemp  func(ctx context.Context) (float64, bool)
	freeBytes   func(ctx context.Context, path string) (uint64, bool, error)
	wifiSSID    func(ctx context.Context) (string, error)
	wifiSignal  func(ctx context.Context) (string, error)
	measureTemp func(ctx context.Context) (float64, error)
}

func NewSystemSource(runner system.Runner, logger Logger) *SystemSource {
	s := &SystemSource{
		MountPoint:    DefaultMountPoint,
		WiFiInterface: DefaultWiFiInterface,
		CPUSample:     DefaultCPUSample,
		Runner:        runner,
		Logger:        logger,
	}
	s.cpuPercent = gopsutilCPUPercent
	s.sensorTemp = gopsutilSensorTemp
	s.freeBytes = gopsutilFreeBytes
	s.wifiSSID = func(ctx context.Context) (string, error) { return system.WiFiSSID(ctx, s.Runner) }
	s.wifiSignal = func(ctx context.Context) (string, error) {
		return system.WiFiSignalLevel(ctx, s.Runner, s.WiFiInterface)
	}
	s.measureTemp = func(ctx context.Context) (float64, error) { return system.MeasureTemp(ctx, s.Runner) }
	return s
}

// Snapshot blocks for about CPUSample while the CPU load is measured.
func (s *SystemSource) Snapshot(ctx context.Context) Snapshot {
	return Snapshot{
		CPULoad:   s.readCPULoad(ctx),
		CPUTemp:   s.readCPUTemp(ctx),
		FreeSpace: s.readFreeSpace(ctx),
		WiFi:      s.readWiFi(ctx),
	}
}

func (s *SystemSource) readCPULoad(ctx context.Context) string {
	load, err := s.cpuPercent(ctx, s.CPUSample)
	if err != nil {
		s.logError("cpu load: %v", err)
		return Unavailable
	}
	return FormatPercent(load)
}

func (s *SystemSource) readCPUTemp(ctx context.Context) string {
	if temp, ok := s.sensorTemp(ctx); ok {
		return FormatTemp(temp)
	}
	temp, err := s.measureTemp(ctx)
	if err != nil {
		s.logError("cpu temperature: %v", err)
		return Unavailable
	}
	return FormatTemp(temp)
}

func (s *SystemSource) readFreeSpace(ctx context.Context) string {
	free, present, err := s.freeBytes(ctx, s.MountPoint)
	if err != nil {
		s.logError("free space on %s: %v", s.MountPoint, err)
		return Unavailable
	}
	if !present {
		return ""
	}
	return FormatSize(free)
}

func (s *SystemSource) readWiFi(ctx context.Context) string {
	ssid, err := s.wifiSSID(ctx)
	if err != nil {
		s.logError("wifi: %v", err)
		return Unavailable
	}
	if ssid == "" {
		return ""
	}
	level, err := s.wifiSignal(ctx)
	if err != nil {
		s.logError("wifi signal: %v", err)
		return Unavailable
	}
	return FormatWiFi(level)
}

func (s *SystemSource) logError(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Errorf("telemetry", format, args...)
	}
}

func gopsutilCPUPercent(ctx context.Context, interval time.Duration) (float64, error) {
	values, err := cpu.PercentWithContext(ctx, interval, false)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, os.ErrNotExist
	}
	return values[0], nil
}

// gopsutilSensorTemp prefers a sensor named after the CPU or SoC and falls
// back to the first positive reading.
func gopsutilSensorTemp(ctx context.Context) (float64, bool) {
	temps, _ := host.SensorsTemperaturesWithContext(ctx)
	return pickCPUTemperature(temps)
}

func pickCPUTemperature(temps []host.TemperatureStat) (float64, bool) {
	fallback, found := 0.0, false
	for _, t := range temps {
		if t.Temperature <= 0 {
			continue
		}
		key := strings.ToLower(t.SensorKey)
		if strings.Contains(key, "cpu") || strings.Contains(key, "soc") {
			return t.Temperature, true
		}
		if !found {
			fallback, found = t.Temperature, true
		}
	}
	return fallback, found
}

func gopsutilFreeBytes(ctx context.Context, path string) (uint64, bool, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, false, nil
	}
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, true, err
	}
	return usage.Free, true, nil
}
