package enumeration

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned when a generator is constructed with parameters or a checkpoint which cannot
	// describe a valid enumeration. Errors returned at construction wrap this value and can be matched with errors.Is.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrExhausted is returned by Next when a generator has no more items to produce. Callers are expected to check
	// HasNext first, so receiving this error indicates a programming error in the caller.
	ErrExhausted = errors.New("iterator exhausted")
)

// invalidArgumentf wraps ErrInvalidArgument with a formatted message and a stack trace.
func invalidArgumentf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}
