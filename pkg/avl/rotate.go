package avl

// rotateLeft performs a single left rotation promoting nR over dnode.
// Preconditions: nParent, dnode and nR are locked by the caller; hL is
// dnode's left child's height (unaffected by the rotation); nRL is nR's
// left child, hRL and hRR its and nR's right child's heights.
//
// The version word on dnode is marked shrinking for the duration of the
// pointer surgery (its right subtree briefly loses a level from a reader's
// point of view) and the counter is bumped once the new shape is published,
// so any reader that sampled the version mid-rotation is forced to retry.
func (t *Tree) rotateLeft(nParent, dnode *Node, hL int32, nR, nRL *Node, hRL, hRR int32) *Node {
	nPL := nParent.getLeft()

	dnode.storeVersion(dnode.loadVersion().withShrinking(true))

	dnode.setRight(nRL)
	nR.setLeft(dnode)
	if nPL == dnode {
		nParent.setLeft(nR)
	} else {
		nParent.setRight(nR)
	}

	replacement := max(hL, hRL) + 1
	dnode.storeHeight(replacement)
	nR.storeHeight(max(hRR, replacement) + 1)

	dnode.storeVersion(dnode.loadVersion().withShrinking(false).bumped())

	if hRL-hL < -1 || hRL-hL > 1 || ((nRL == nil || hL == 0) && !dnode.isPresent()) {
		return dnode
	}
	if hRR-replacement < -1 || hRR-replacement > 1 || (hRR == 0 && !nR.isPresent()) {
		return nR
	}
	return t.fixHeight(nParent)
}

// rotateRight is the mirror image of rotateLeft.
func (t *Tree) rotateRight(nParent, dnode *Node, hR int32, nL, nLR *Node, hLR, hLL int32) *Node {
	nPL := nParent.getLeft()

	dnode.storeVersion(dnode.loadVersion().withShrinking(true))

	dnode.setLeft(nLR)
	nL.setRight(dnode)
	if nPL == dnode {
		nParent.setLeft(nL)
	} else {
		nParent.setRight(nL)
	}

	replacement := max(hR, hLR) + 1
	dnode.storeHeight(replacement)
	nL.storeHeight(max(hLL, replacement) + 1)

	dnode.storeVersion(dnode.loadVersion().withShrinking(false).bumped())

	if hLR-hR < -1 || hLR-hR > 1 || ((nLR == nil || hR == 0) && !dnode.isPresent()) {
		return dnode
	}
	if hLL-replacement < -1 || hLL-replacement > 1 || (hLL == 0 && !nL.isPresent()) {
		return nL
	}
	return t.fixHeight(nParent)
}

// rotateLeftOverRight performs the double rotation (right rotation on nR
// followed by a left rotation on dnode) needed when nR is left-heavy.
// Preconditions: nParent, dnode, nR and nRL are all locked by the caller.
func (t *Tree) rotateLeftOverRight(nParent, dnode *Node, hL int32, nR, nRL *Node, hRR, hRLR int32) *Node {
	nPL := nParent.getLeft()
	nRLL := nRL.getLeft()
	nRLR := nRL.getRight()
	hRLL := heightOf(nRLL)

	dnode.storeVersion(dnode.loadVersion().withShrinking(true))
	nR.storeVersion(nR.loadVersion().withShrinking(true))

	dnode.setRight(nRLL)
	nR.setLeft(nRLR)
	nRL.setRight(nR)
	nRL.setLeft(dnode)
	if nPL != dnode {
		nParent.setRight(nRL)
	} else {
		nParent.setLeft(nRL)
	}

	replacement := max(hRLL, hL) + 1
	dnode.storeHeight(replacement)
	rRepl := max(hRR, hRLR) + 1
	nR.storeHeight(rRepl)
	nRL.storeHeight(max(replacement, rRepl) + 1)

	dnode.storeVersion(dnode.loadVersion().withShrinking(false).bumped())
	nR.storeVersion(nR.loadVersion().withShrinking(false).bumped())

	if hRLL-hL < -1 || hRLL-hL > 1 || ((nRLL == nil || hL == 0) && !dnode.isPresent()) {
		return dnode
	}
	if rRepl-replacement < -1 || rRepl-replacement > 1 {
		return nRL
	}
	return t.fixHeight(nParent)
}

// rotateRightOverLeft is the mirror image of rotateLeftOverRight.
func (t *Tree) rotateRightOverLeft(nParent, dnode *Node, hR int32, nL, nLR *Node, hLL, hLRL int32) *Node {
	nPL := nParent.getLeft()
	nLRL := nLR.getLeft()
	nLRR := nLR.getRight()
	hLRR := heightOf(nLRR)

	dnode.storeVersion(dnode.loadVersion().withShrinking(true))
	nL.storeVersion(nL.loadVersion().withShrinking(true))

	dnode.setLeft(nLRR)
	nL.setRight(nLRL)
	nLR.setLeft(nL)
	nLR.setRight(dnode)
	if nPL != dnode {
		nParent.setRight(nLR)
	} else {
		nParent.setLeft(nLR)
	}

	replacement := max(hLRR, hR) + 1
	dnode.storeHeight(replacement)
	lRepl := max(hLL, hLRL) + 1
	nL.storeHeight(lRepl)
	nLR.storeHeight(max(replacement, lRepl) + 1)

	dnode.storeVersion(dnode.loadVersion().withShrinking(false).bumped())
	nL.storeVersion(nL.loadVersion().withShrinking(false).bumped())

	if hLRR-hR < -1 || hLRR-hR > 1 || ((nLRR == nil || hR == 0) && !dnode.isPresent()) {
		return dnode
	}
	if lRepl-replacement < -1 || lRepl-replacement > 1 {
		return nLR
	}
	return t.fixHeight(nParent)
}
