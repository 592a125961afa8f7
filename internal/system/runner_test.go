package system

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBufferKeepsTail(t *testing.T) {
	rb := &ringBuffer{max: 8}
	_, _ = rb.Write([]byte("hello "))
	_, _ = rb.Write([]byte("world"))
	assert.Equal(t, "lo world", rb.String())

	_, _ = rb.Write([]byte(strings.Repeat("x", 20)))
	assert.Equal(t, strings.Repeat("x", 8), rb.String())
}

func TestShellRunnerResolve(t *testing.T) {
	r := ShellRunner{Dir: "/opt/gadget"}
	assert.Equal(t, "/opt/gadget/mode.sh", r.resolve("mode.sh"))
	assert.Equal(t, "/usr/bin/true", r.resolve("/usr/bin/true"))
	assert.Equal(t, "iwgetid", r.resolve("iwgetid"))
	assert.Equal(t, "vcgencmd", r.resolve("vcgencmd"))
	assert.Equal(t, "mode.sh", ShellRunner{}.resolve("mode.sh"))
}

func TestShellRunnerSudoIsNonInteractive(t *testing.T) {
	r := ShellRunner{Dir: "/opt/gadget", Sudo: true}
	name, argv := r.command("insert_iso.sh", []string{"/iso/a.iso", "cd"})
	assert.Equal(t, "sudo", name)
	assert.Equal(t, []string{"-n", "/opt/gadget/insert_iso.sh", "/iso/a.iso", "cd"}, argv)

	name, argv = ShellRunner{}.command("iwgetid", []string{"-r"})
	assert.Equal(t, "iwgetid", name)
	assert.Equal(t, []string{"-r"}, argv)
}

// exitError runs a shell that exits with code and returns its *exec.ExitError.
func exitError(t *testing.T, code string) error {
	t.Helper()
	err := exec.Command("sh", "-c", "exit "+code).Run()
	require.Error(t, err)
	return fmt.Errorf("exit %s: %w", code, err)
}

type stubRunner struct {
	stdout, stderr string
	err            error
	got            []string
}

func (s *stubRunner) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	s.got = append([]string{cmd}, args...)
	return s.stdout, s.stderr, s.err
}

func TestParseSignalLevel(t *testing.T) {
	output := `wlan0     IEEE 802.11  ESSID:"home"
          Mode:Managed  Frequency:2.437 GHz  Access Point: AA:BB:CC:DD:EE:FF
          Link Quality=58/70  Signal level=-52 dBm
          Rx invalid nwid:0  Rx invalid crypt:0  Rx invalid frag:0`
	level, ok := ParseSignalLevel(output)
	require.True(t, ok)
	assert.Equal(t, "-52", level)

	_, ok = ParseSignalLevel("wlan0  no wireless extensions.")
	assert.False(t, ok)
}

func TestWiFiSignalLevel(t *testing.T) {
	runner := &stubRunner{stdout: "Link Quality=70/70  Signal level=-40 dBm\n"}
	level, err := WiFiSignalLevel(context.Background(), runner, "wlan0")
	require.NoError(t, err)
	assert.Equal(t, "-40", level)
	assert.Equal(t, []string{"iwconfig", "wlan0"}, runner.got)
}

func TestWiFiSSID(t *testing.T) {
	runner := &stubRunner{stdout: "home\n"}
	ssid, err := WiFiSSID(context.Background(), runner)
	require.NoError(t, err)
	assert.Equal(t, "home", ssid)

	runner = &stubRunner{err: exitError(t, "255")}
	ssid, err = WiFiSSID(context.Background(), runner)
	require.NoError(t, err)
	assert.Equal(t, "", ssid)

	runner = &stubRunner{err: exitError(t, "1"), stderr: "not found"}
	_, err = WiFiSSID(context.Background(), runner)
	assert.Error(t, err)
}

func TestWiFiSSIDMissingTool(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, err := WiFiSSID(context.Background(), ShellRunner{})
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestParseMeasureTemp(t *testing.T) {
	temp, err := ParseMeasureTemp("temp=48.3'C\n")
	require.NoError(t, err)
	assert.InDelta(t, 48.3, temp, 0.001)

	_, err = ParseMeasureTemp("garbage")
	assert.Error(t, err)
	_, err = ParseMeasureTemp("temp=hot'C")
	assert.Error(t, err)
}
