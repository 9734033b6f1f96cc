package avl

import (
	"sync"
	"sync/atomic"

	"github.com/bobboyms/cavl/pkg/types"
)

// valueBox wraps a node's payload so "absent" (logically deleted, or never
// set) is distinguishable from a present zero value, and so the pair
// (value, presence) can be published with a single atomic store — without
// this, a reader could observe a freshly-cleared value alongside a
// not-yet-cleared presence bit, or vice versa.
type valueBox struct {
	v       any
	present bool
}

var absentBox = &valueBox{}

// Node is the only persistent entity in the tree. left, right and parent
// are atomic pointers rather than plain fields: the parent back-reference
// is advisory and re-validated under lock, and readers walk left/right
// without ever taking a lock, so every field a concurrent reader can see
// without holding node.mu is declared atomic to give Go's memory model a
// defined happens-before edge (a plain pointer read racing a plain pointer
// write is undefined behavior in Go, unlike the reference algorithm's
// source language).
type Node struct {
	key types.Comparable // immutable once set; nil only for the holder

	value atomic.Pointer[valueBox]

	height atomic.Int32

	parent atomic.Pointer[Node]
	left   atomic.Pointer[Node]
	right  atomic.Pointer[Node]

	ver atomic.Uint64 // packed version word, see version.go

	mu sync.Mutex // grants exclusive write access to this node's links/value/height/version
}

// newNode builds a leaf: height 1, no children, fresh (zero) version.
func newNode(key types.Comparable, value any, present bool, parent *Node) *Node {
	n := &Node{key: key}
	n.height.Store(1)
	n.parent.Store(parent)
	if present {
		n.value.Store(&valueBox{v: value, present: true})
	} else {
		n.value.Store(absentBox)
	}
	return n
}

// newHolder builds the keyless sentinel whose right child is the real root.
func newHolder() *Node {
	n := &Node{}
	n.value.Store(absentBox)
	return n
}

func (n *Node) Lock()   { n.mu.Lock() }
func (n *Node) Unlock() { n.mu.Unlock() }

func (n *Node) loadVersion() version   { return version(n.ver.Load()) }
func (n *Node) storeVersion(v version) { n.ver.Store(uint64(v)) }

func (n *Node) loadValue() (any, bool) {
	b := n.value.Load()
	return b.v, b.present
}

func (n *Node) storeValue(v any, present bool) {
	if present {
		n.value.Store(&valueBox{v: v, present: true})
	} else {
		n.value.Store(absentBox)
	}
}

func (n *Node) isPresent() bool {
	return n.value.Load().present
}

func (n *Node) loadHeight() int32   { return n.height.Load() }
func (n *Node) storeHeight(h int32) { n.height.Store(h) }

func (n *Node) getLeft() *Node   { return n.left.Load() }
func (n *Node) getRight() *Node  { return n.right.Load() }
func (n *Node) getParent() *Node { return n.parent.Load() }

func (n *Node) setLeft(c *Node) {
	n.left.Store(c)
	if c != nil {
		c.parent.Store(n)
	}
}

func (n *Node) setRight(c *Node) {
	n.right.Store(c)
	if c != nil {
		c.parent.Store(n)
	}
}

// child returns the child on the side indicated by cmp: left if cmp<0,
// right if cmp>0, nil if cmp==0 (a node never descends into itself).
func (n *Node) child(cmp int) *Node {
	switch {
	case cmp < 0:
		return n.getLeft()
	case cmp > 0:
		return n.getRight()
	default:
		return nil
	}
}

// heightOf returns a possibly-absent child's cached height, or 0 for a nil
// child so callers never need a nil check before comparing heights.
func heightOf(n *Node) int32 {
	if n == nil {
		return 0
	}
	return n.loadHeight()
}
