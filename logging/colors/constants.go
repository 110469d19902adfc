package colors

// Color is an ANSI SGR code.
type Color int

// ANSI codes used to colorize log levels, matching zerolog's console writer.
// Source: https://github.com/rs/zerolog/blob/4fff5db29c3403bc26dee9895e12a108aacc0203/console.go
const (
	// BOLD is the ANSI code for bold text
	BOLD Color = 1
	// RED is the ANSI code for red
	RED Color = 31
	// GREEN is the ANSI code for green
	GREEN Color = 32
	// YELLOW is the ANSI code for yellow
	YELLOW Color = 33
	// BLUE is the ANSI code for blue
	BLUE Color = 34
	// CYAN is the ANSI code for cyan
	CYAN Color = 36
)

// LEFT_ARROW is the glyph prefixing info messages on the console.
const LEFT_ARROW = "⇾"
