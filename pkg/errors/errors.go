package errors

import (
	"fmt"
)

// IncomparableKeyError is raised (via panic) when Compare is called with a
// key of a different concrete type than the receiver. Comparing keys across
// types is a programmer error, not a runtime condition the map can recover
// from.
type IncomparableKeyError struct {
	Want string
	Got  string
}

func (e *IncomparableKeyError) Error() string {
	return fmt.Sprintf("incomparable keys: want %s, got %s", e.Want, e.Got)
}

// AssertionError marks an internal invariant of the version/lock protocol
// that was found broken at runtime — e.g. a reader waking from shrink-wait
// and still observing the version it waited on. These are never expected
// to fire against a correct implementation and are never returned across
// the public API; they panic so the bug surfaces immediately instead of
// corrupting the tree silently.
type AssertionError struct {
	Where string
	Why   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("avl: internal invariant violated in %s: %s", e.Where, e.Why)
}
