package avl

import (
	"fmt"

	"github.com/bobboyms/cavl/pkg/diag"
	"github.com/bobboyms/cavl/pkg/types"
)

// Put inserts or updates key→value and returns the previous value, if any.
// put and remove are both expressed as the unified update(key, newValue);
// Put supplies a present value, Remove clears it.
func (t *Tree) Put(key types.Comparable, value any) (any, bool) {
	return t.update(key, value, true)
}

// PutDefault inserts key with its string form as the value, a convenience
// for callers that only care about set membership.
func (t *Tree) PutDefault(key types.Comparable) (any, bool) {
	return t.update(key, fmt.Sprintf("%v", key), true)
}

// Remove deletes key, returning its previous value. It is a no-op
// (observable only as an absent return) if key was not present.
func (t *Tree) Remove(key types.Comparable) (any, bool) {
	return t.update(key, nil, false)
}

func (t *Tree) update(key types.Comparable, newValue any, newPresent bool) (any, bool) {
	wd := t.newWatchdog()
	for {
		right := t.holder.getRight()
		if right == nil {
			if !newPresent {
				return nil, false
			}
			if t.attemptInsertIntoEmpty(key, newValue) {
				return nil, false
			}
			wd.Tick()
			continue
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

		value, present, retry := t.attemptUpdate(key, newValue, newPresent, t.holder, right, v, wd)
		if retry {
			wd.Tick()
			continue
		}
		return value, present
	}
}

func (t *Tree) attemptInsertIntoEmpty(key types.Comparable, value any) bool {
	t.holder.Lock()
	defer t.holder.Unlock()
	if t.holder.getRight() != nil {
		return false
	}
	t.holder.setRight(newNode(key, value, true, t.holder))
	return true
}

// attemptUpdate descends from node (a child of parent, sampled at
// nodeVersion) looking for key, applying the insert/update/logical-delete
// rule at the target position. retry==true tells the caller to resample
// its own version and redo this step. wd ticks once per internal retry so
// a pathologically long descent (stuck writer, relentless contention)
// surfaces in the log instead of just spinning silently.
func (t *Tree) attemptUpdate(key types.Comparable, newValue any, newPresent bool, parent, node *Node, nodeVersion version, wd *diag.Watchdog) (value any, present bool, retry bool) {
	cmp := key.Compare(node.key)
	if cmp == 0 {
		return t.attemptNodeUpdate(newValue, newPresent, parent, node)
	}

	for {
		child := node.child(cmp)
		if node.loadVersion() != nodeVersion {
			return nil, false, true
		}

		if child == nil {
			if !newPresent {
				// key not present; remove is a no-op
				return nil, false, false
			}

			node.Lock()
			if node.loadVersion() != nodeVersion {
				node.Unlock()
				return nil, false, true
			}
			if node.child(cmp) != nil {
				// lost a race with a concurrent insert; retry this level
				node.Unlock()
				wd.Tick()
				continue
			}
			leaf := newNode(key, newValue, true, node)
			if cmp < 0 {
				node.setLeft(leaf)
			} else {
				node.setRight(leaf)
			}
			damaged := t.fixHeight(node)
			node.Unlock()

			t.fixHeightAndRebalance(damaged)
			return nil, false, false
		}

		childVersion := child.loadVersion()
		switch {
		case childVersion.needsShrinkWait():
			t.waitForShrinkDone(child, childVersion)
			wd.Tick()
			// retry this level with a fresh read of the child
		case child != node.child(cmp):
			wd.Tick()
			// child pointer moved under us; retry this level
		default:
			if node.loadVersion() != nodeVersion {
				return nil, false, true
			}
			v, present2, childRetry := t.attemptUpdate(key, newValue, newPresent, node, child, childVersion, wd)
			if !childRetry {
				return v, present2, false
			}
			wd.Tick()
			// retry this level
		}
	}
}

// attemptNodeUpdate applies the update at the node matching key (cmp==0 in
// the caller): update in place, logical-delete-only (node keeps two
// children and survives as a routing node), or
// logical-delete-then-attempt-physical-unlink (node has at most one child).
func (t *Tree) attemptNodeUpdate(newValue any, newPresent bool, parent, node *Node) (value any, present bool, retry bool) {
	if !newPresent && !node.isPresent() {
		return nil, false, false // already absent, nothing to do
	}

	left := node.getLeft()
	right := node.getRight()
	if !newPresent && (left == nil || right == nil) {
		// Potential physical unlink: lock parent, then node, always in
		// that order so a concurrent descent never deadlocks against us.
		parent.Lock()
		if parent.loadVersion().unlinked() || node.getParent() != parent {
			parent.Unlock()
			return nil, false, true
		}

		node.Lock()
		prevValue, prevPresent := node.loadValue()
		if !prevPresent {
			node.Unlock()
			parent.Unlock()
			return nil, false, false
		}
		ok := t.attemptUnlink(parent, node)
		node.Unlock()
		if !ok {
			parent.Unlock()
			return nil, false, true
		}

		damaged := t.fixHeight(parent)
		parent.Unlock()
		t.fixHeightAndRebalance(damaged)
		return prevValue, prevPresent, false
	}

	node.Lock()
	defer node.Unlock()
	if node.loadVersion().unlinked() {
		return nil, false, true
	}
	prevValue, prevPresent := node.loadValue()
	if !newPresent {
		if l, r := node.getLeft(), node.getRight(); l == nil || r == nil {
			// a concurrent mutation made unlink possible since we last
			// checked above; restart through the unlink path
			return nil, false, true
		}
		// two children: logical delete only, node survives as a routing node
	}
	node.storeValue(newValue, newPresent)
	return prevValue, prevPresent, false
}

// attemptUnlink splices node out of the tree by replacing it with its one
// remaining child (or nothing) and clears node's value. Pre: both parent
// and node are locked; node's value may still be present (the remove path
// calls it before clearing). Returns false without changing anything if
// node is no longer a child of parent or now has two children.
func (t *Tree) attemptUnlink(parent, node *Node) bool {
	if parent.getLeft() != node && parent.getRight() != node {
		return false
	}

	left := node.getLeft()
	right := node.getRight()
	if left != nil && right != nil {
		return false // splicing is no longer possible
	}
	splice := left
	if splice == nil {
		splice = right
	}

	if parent.getLeft() == node {
		parent.setLeft(splice)
	} else {
		parent.setRight(splice)
	}

	node.storeVersion(withUnlinked(node.loadVersion()))
	node.storeValue(nil, false)
	return true
}
