package colors

import "fmt"

// ColorFunc is an alias type for a coloring function that accepts anything and returns a colorized string
type ColorFunc = func(s any) string

// Reset is a ColorFunc that returns the input as a plain string. Passed to a logger, it ends the color context started
// by a preceding ColorFunc argument.
func Reset(s any) string {
	return fmt.Sprintf("%v", s)
}

// Bold is a ColorFunc that returns a bolded string of the provided input. The CLI uses it to highlight paths, run
// identifiers, and counts.
func Bold(s any) string {
	return Colorize(s, BOLD)
}

// bold wraps the provided color in bold.
func bold(s any, c Color) string {
	return Colorize(Colorize(s, c), BOLD)
}

// RedBold is the level color of error, fatal, and panic messages.
func RedBold(s any) string {
	return bold(s, RED)
}

// GreenBold is the level color of info messages and of a completed enumeration.
func GreenBold(s any) string {
	return bold(s, GREEN)
}

// YellowBold is the level color of warnings.
func YellowBold(s any) string {
	return bold(s, YELLOW)
}

// BlueBold is the level color of debug messages.
func BlueBold(s any) string {
	return bold(s, BLUE)
}

// CyanBold is the level color of trace messages.
func CyanBold(s any) string {
	return bold(s, CYAN)
}
