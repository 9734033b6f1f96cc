// Package avlseq is the single-threaded sibling of pkg/avl: the same
// sentinel-holder layout and rotation geometry, with no locks and no
// version words.
package avlseq

import "github.com/bobboyms/cavl/pkg/types"

// Node is a plain, unsynchronized tree node. Unlike avl.Node there is
// nothing to publish atomically: every field is read and written only by
// the single goroutine that owns the Tree.
type Node struct {
	key     types.Comparable
	value   any
	present bool

	height int32

	parent *Node
	left   *Node
	right  *Node
}

func newNode(key types.Comparable, value any, parent *Node) *Node {
	return &Node{key: key, value: value, present: true, height: 1, parent: parent}
}

func newHolder() *Node {
	return &Node{}
}

func (n *Node) setLeft(c *Node) {
	n.left = c
	if c != nil {
		c.parent = n
	}
}

func (n *Node) setRight(c *Node) {
	n.right = c
	if c != nil {
		c.parent = n
	}
}

func (n *Node) child(cmp int) *Node {
	switch {
	case cmp < 0:
		return n.left
	case cmp > 0:
		return n.right
	default:
		return nil
	}
}

func heightOf(n *Node) int32 {
	if n == nil {
		return 0
	}
	return n.height
}
