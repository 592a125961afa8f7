//go:build linux

package buttons

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

const evKey = 0x01

// EvdevLines maps keyboard keys from /dev/input/event* onto button lines so
// the appliance can be driven from a keyboard on the bench. Key state is
// tracked from press/release events; Active reports held keys.
type EvdevLines struct {
	keys map[uint16]Line

	mu   sync.Mutex
	held map[Line]bool
}

// OpenEvdevLines starts one reader goroutine per evdev device. The readers
// stop when ctx is done.
func OpenEvdevLines(ctx context.Context, keyCodes map[Line]uint16, logger Logger) (*EvdevLines, error) {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no evdev devices found")
	}

	lines := &EvdevLines{keys: make(map[uint16]Line, len(keyCodes)), held: map[Line]bool{}}
	for line, code := range keyCodes {
		lines.keys[code] = line
	}

	opened := 0
	for _, path := range paths {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			if logger != nil {
				logger.Errorf("input", "open %s: %v", path, err)
			}
			continue
		}
		opened++
		go lines.read(ctx, os.NewFile(uintptr(fd), path), fd)
	}
	if opened == 0 {
		return nil, fmt.Errorf("no readable evdev devices")
	}
	if logger != nil {
		logger.Infof("input", "reading keys from %d evdev devices", opened)
	}
	return lines, nil
}

func (e *EvdevLines) Active(line Line) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.held[line]
}

func (e *EvdevLines) read(ctx context.Context, f *os.File, fd int) {
	defer func() {
		_ = f.Close()
	}()

	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := binary.Size(unix.Timeval{})
	eventSize := tvSize + 2 + 2 + 4
	buf := make([]byte, 64*eventSize)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}

		for off := 0; off+eventSize <= n; off += eventSize {
			rec := buf[off : off+eventSize]
			typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
			code := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
			value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
			if typ != evKey {
				continue
			}
			e.apply(code, value)
		}
	}
}

// apply records a key event. value is 0 on release, 1 on press, 2 on autorepeat.
func (e *EvdevLines) apply(code uint16, value int32) {
	line, ok := e.keys[code]
	if !ok {
		return
	}
	e.mu.Lock()
	e.held[line] = value != 0
	e.mu.Unlock()
}
