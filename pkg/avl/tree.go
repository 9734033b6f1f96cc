// Package avl implements a concurrent, ordered, in-memory key→value map as a
// relaxed-balance AVL tree with fine-grained per-node locks and optimistic,
// lock-free reads, following Bronson et al.'s "A Practical Concurrent Binary
// Search Tree".
package avl

import (
	"fmt"
	"strings"

	"github.com/bobboyms/cavl/pkg/diag"
	"github.com/bobboyms/cavl/pkg/errors"
	"github.com/bobboyms/cavl/pkg/types"
)

// shrinkWaitSpins is the default bounded spin budget before a reader falls
// back to acquiring (and immediately releasing) the contended node's lock.
// Correctness never depends on this value; it only trades a busy spin for a
// lock acquisition under heavy contention. Overridden per-Tree by
// WatchdogOptions.ShrinkWaitSpins.
const shrinkWaitSpins = 100

// Tree is a concurrent ordered map keyed by types.Comparable.
type Tree struct {
	holder *Node // keyless sentinel; holder.right is the externally visible root
	opts   WatchdogOptions
}

// New returns an empty concurrent AVL map using DefaultWatchdogOptions.
func New() *Tree {
	return NewWithWatchdogOptions(DefaultWatchdogOptions())
}

// NewWithWatchdogOptions returns an empty concurrent AVL map that spins for
// opts.ShrinkWaitSpins iterations before falling back to a lock acquisition,
// and tags any Get/Put/Remove call whose optimistic retry loop runs past
// opts.RetryWarnThreshold iterations with a diag.Watchdog.
func NewWithWatchdogOptions(opts WatchdogOptions) *Tree {
	return &Tree{holder: newHolder(), opts: opts}
}

func (t *Tree) newWatchdog() *diag.Watchdog {
	wd := diag.NewWatchdog(t.opts.Logger)
	wd.Threshold = t.opts.RetryWarnThreshold
	return wd
}

// Get returns the value stored for key, or (nil, false) if key is absent.
// Get never blocks on a writer beyond a bounded spin plus a short lock
// acquire/release.
func (t *Tree) Get(key types.Comparable) (any, bool) {
	wd := t.newWatchdog()
	for {
		right := t.holder.getRight()
		if right == nil {
			return nil, false
		}
		cmp := key.Compare(right.key)
		if cmp == 0 {
			return right.loadValue()
		}
		v := right.loadVersion()
		if v.needsShrinkWait() {
			t.waitForShrinkDone(right, v)
			wd.Tick()
			continue
		}
		if right != t.holder.getRight() {
			wd.Tick()
			continue
		}
		value, ok, retry := t.attemptGet(key, right, cmp, v)
		if retry {
			wd.Tick()
			continue
		}
		return value, ok
	}
}

// attemptGet descends from node (sampled at nodeVersion) looking for key.
// retry==true means the caller must resample its own version and redo this
// step; it is an ordinary return value rather than an explicit frame stack
// since Go's call stack already gives the recursive descent that for free.
func (t *Tree) attemptGet(key types.Comparable, node *Node, cmp int, nodeVersion version) (value any, ok bool, retry bool) {
	for {
		child := node.child(cmp)
		if child == nil {
			if node.loadVersion() != nodeVersion {
				return nil, false, true
			}
			return nil, false, false
		}

		childCmp := key.Compare(child.key)
		if childCmp == 0 {
			v, present := child.loadValue()
			return v, present, false
		}

		cv := child.loadVersion()
		switch {
		case cv.needsShrinkWait():
			t.waitForShrinkDone(child, cv)
			if node.loadVersion() != nodeVersion {
				return nil, false, true
			}
			// retry this level with a fresh read of the child
		case child != node.child(cmp):
			if node.loadVersion() != nodeVersion {
				return nil, false, true
			}
			// the child pointer moved under us; retry this level
		default:
			if node.loadVersion() != nodeVersion {
				return nil, false, true
			}
			v, present, childRetry := t.attemptGet(key, child, childCmp, cv)
			if !childRetry {
				return v, present, false
			}
			// retry this level
		}
	}
}

// waitForShrinkDone spins briefly watching for the version to change, then
// falls back to a lock/unlock round-trip to piggyback on the writer's
// release barrier: whichever writer is holding n.mu must bump the version
// past observed before it unlocks, so by the time Lock returns the wait is
// guaranteed to be over.
func (t *Tree) waitForShrinkDone(n *Node, observed version) {
	if !observed.shrinking() {
		// already unlinked or already resolved; nothing to wait for
		return
	}
	for i := 0; i < t.opts.ShrinkWaitSpins; i++ {
		if n.loadVersion() != observed {
			return
		}
	}
	n.Lock()
	n.Unlock()
	if n.loadVersion() == observed {
		panic(&errors.AssertionError{
			Where: "waitForShrinkDone",
			Why:   "version unchanged after acquiring and releasing the contended node's lock",
		})
	}
}

// Min returns the key of the minimum live entry, or (nil, false) if the map
// is empty. May observe a transiently stale minimum under concurrent
// mutation.
func (t *Tree) Min() (types.Comparable, bool) {
	n := t.holder.getRight()
	if n == nil {
		return nil, false
	}
	for {
		left := n.getLeft()
		if left == nil {
			return n.key, true
		}
		n = left
	}
}

// Max returns the key of the maximum live entry, or (nil, false) if the map
// is empty. Symmetric with Min.
func (t *Tree) Max() (types.Comparable, bool) {
	n := t.holder.getRight()
	if n == nil {
		return nil, false
	}
	for {
		right := n.getRight()
		if right == nil {
			return n.key, true
		}
		n = right
	}
}

// String renders a parenthesized pre-order serialization of the tree, for
// tests and debugging. It is not safe to call concurrently with mutators;
// callers must ensure quiescence (or single-threaded use) first.
func (t *Tree) String() string {
	var b strings.Builder
	writeNode(&b, t.holder.getRight())
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	if n == nil {
		b.WriteString("·")
		return
	}
	if v, present := n.loadValue(); present {
		fmt.Fprintf(b, "%v", v)
	} else {
		b.WriteString("_")
	}
	if n.loadHeight() > 1 {
		b.WriteString("(")
		writeNode(b, n.getLeft())
		b.WriteString(",")
		writeNode(b, n.getRight())
		b.WriteString(")")
	}
}
