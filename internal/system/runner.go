package system

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

type Runner interface {
	Run(ctx context.Context, cmd string, args ...string) (stdout, stderr string, err error)
}

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// ShellRunner executes commands and returns stdout, stderr, and an error if
// the command exits non-zero. Bare script names (*.sh) are resolved inside
// Dir when it is set; everything else goes through PATH. With Sudo the
// command runs via non-interactive sudo.
type ShellRunner struct {
	Dir    string
	Sudo   bool
	Logger logger
}

const maxStderrBytes = 4096

func (r ShellRunner) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	name, argv := r.command(cmd, args)
	c := exec.CommandContext(ctx, name, argv...)
	var outBuf bytes.Buffer
	errBuf := &ringBuffer{max: maxStderrBytes}
	c.Stdout = &outBuf
	c.Stderr = errBuf
	if r.Logger != nil {
		r.Logger.Infof("exec", "%s %s", cmd, strings.Join(args, " "))
	}
	err := c.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			err = fmt.Errorf("exit %d: %w", exitErr.ExitCode(), err)
		}
		if r.Logger != nil {
			r.Logger.Errorf("exec", "%s failed: %v", cmd, err)
		}
		return outBuf.String(), errBuf.String(), err
	}
	return outBuf.String(), errBuf.String(), nil
}

// command returns the program and arguments actually executed.
func (r ShellRunner) command(cmd string, args []string) (string, []string) {
	name := r.resolve(cmd)
	if !r.Sudo {
		return name, args
	}
	return "sudo", append([]string{"-n", name}, args...)
}

func (r ShellRunner) resolve(cmd string) string {
	if r.Dir == "" || strings.ContainsRune(cmd, filepath.Separator) || filepath.Ext(cmd) != ".sh" {
		return cmd
	}
	return filepath.Join(r.Dir, cmd)
}

// ringBuffer keeps the last max bytes written to it.
type ringBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (r *ringBuffer) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.max <= 0 {
		return len(p), nil
	}
	if len(p) >= r.max {
		r.buf = append(r.buf[:0], p[len(p)-r.max:]...)
		return len(p), nil
	}
	if overflow := len(r.buf) + len(p) - r.max; overflow > 0 {
		r.buf = append(r.buf[overflow:], p...)
		return len(p), nil
	}
	r.buf = append(r.buf, p...)
	return len(p), nil
}

func (r *ringBuffer) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.TrimSpace(string(r.buf))
}
