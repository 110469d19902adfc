//go:build windows

package colors

import (
	"golang.org/x/sys/windows"
)

// EnableColor will attempt to turn on virtual terminal processing for stdout so that ANSI escape codes are supported.
// If the console mode cannot be queried or updated, colors are left disabled.
func EnableColor() {
	handle := windows.Handle(windows.Stdout)

	// Query the current console mode
	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		enabled = false
		return
	}

	// Virtual terminal processing may already be on
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		enabled = true
		return
	}

	// Otherwise, try to turn it on
	enabled = windows.SetConsoleMode(handle, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
