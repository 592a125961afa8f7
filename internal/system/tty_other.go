//go:build !linux

package system

// EnterGraphicsConsole is a no-op without a Linux virtual terminal.
func EnterGraphicsConsole(l logger) (restore func()) {
	return func() {}
}
