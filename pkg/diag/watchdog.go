// Package diag provides optional diagnostic instrumentation for the map
// packages' retry loops. Nothing in here is on the correctness path — an
// optimistic retry signal never escapes to the caller as an error or a
// return value; a Watchdog only decides when a loop has spun unexpectedly
// long and, if so, logs a warning tagged with its correlation id.
package diag

import (
	"log"

	"github.com/google/uuid"
)

// Watchdog counts retries within a single caller-defined attempt (one
// Get/Put/Remove call) and logs once the count crosses Threshold. It is
// not safe for concurrent use by itself — callers construct one Watchdog
// per operation attempt, mirroring the per-call-scoped retry loops in
// pkg/avl.
type Watchdog struct {
	Logger    *log.Logger
	Threshold int

	id      string
	count   int
	tripped bool
}

// DefaultThreshold is a generous bound: well past what any single-level
// contention retry should need, so tripping it means something is stuck,
// not merely contended.
const DefaultThreshold = 10000

// NewWatchdog returns a Watchdog with a fresh UUIDv7 correlation id, logging
// to logger (log.Default() if nil).
func NewWatchdog(logger *log.Logger) *Watchdog {
	if logger == nil {
		logger = log.Default()
	}
	id, err := uuid.NewV7()
	if err != nil {
		// entropy source failure; fall back to a fixed, clearly-synthetic id
		// rather than panicking out of diagnostic-only code
		id = uuid.Nil
	}
	return &Watchdog{Logger: logger, Threshold: DefaultThreshold, id: id.String()}
}

// ID returns the watchdog's correlation id, the one its warning line names.
func (w *Watchdog) ID() string { return w.id }

// Tick records one retry-loop iteration. When the count reaches Threshold
// it logs the warning (once per Watchdog) and reports true for that call.
func (w *Watchdog) Tick() (justTripped bool) {
	w.count++
	if w.count == w.Threshold && !w.tripped {
		w.tripped = true
		w.Logger.Printf("diag: watchdog %s tripped after %d retries", w.id, w.count)
		return true
	}
	return false
}

// Count returns the number of Tick calls so far.
func (w *Watchdog) Count() int { return w.count }
