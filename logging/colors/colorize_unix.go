//go:build !windows

package colors

// EnableColor will enable colorized output. Non-windows terminals support ANSI escape codes natively.
func EnableColor() {
	enabled = true
}
