package utils

import (
	"time"

	"golang.org/x/net/context"
)

// CheckContextDone checks if a provided context has indicated it is done, and returns a boolean indicating if it is.
func CheckContextDone(ctx context.Context) bool {
	// Check if the context is done in a non-blocking fashion.
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// SleepContext blocks for the provided duration or until the context is done, whichever happens first.
// Returns true if the full duration elapsed, or false if the context finished first.
func SleepContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
