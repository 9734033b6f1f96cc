package avl

import (
	"log"

	"github.com/bobboyms/cavl/pkg/diag"
)

// WatchdogOptions configures the bounded spin a reader performs before
// falling back to a lock acquisition, and the diag.Watchdog instrumentation
// wired into Get/Put/Remove's optimistic retry loops. It plays the same
// role for a Tree that an options struct with a Default constructor plays
// for any other component in this module: a plain value, not a global.
type WatchdogOptions struct {
	// ShrinkWaitSpins bounds how many times waitForShrinkDone polls a
	// contended node's version before blocking on its lock instead.
	ShrinkWaitSpins int

	// RetryWarnThreshold is the number of optimistic retries a single
	// Get/Put/Remove call can spend before its diag.Watchdog logs a
	// warning. It exists to surface pathological contention or a stuck
	// writer during development, never to bound correctness.
	RetryWarnThreshold int

	// Logger receives the watchdog's warning line. Nil means log.Default().
	Logger *log.Logger
}

// DefaultWatchdogOptions returns the spin budget and retry-warn threshold
// New uses.
func DefaultWatchdogOptions() WatchdogOptions {
	return WatchdogOptions{
		ShrinkWaitSpins:    shrinkWaitSpins,
		RetryWarnThreshold: diag.DefaultThreshold,
	}
}
