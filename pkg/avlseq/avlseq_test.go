package avlseq

import (
	"math/rand"
	"testing"

	"github.com/bobboyms/cavl/pkg/types"
)

func TestTree_GetOnEmpty(t *testing.T) {
	tr := New()
	if _, ok := tr.Get(types.IntKey(1)); ok {
		t.Fatalf("Get on empty tree returned ok=true")
	}
}

func TestTree_PutThenGet_RoundTrip(t *testing.T) {
	tr := New()
	tr.Put(types.IntKey(5), "five")
	v, ok := tr.Get(types.IntKey(5))
	if !ok || v != "five" {
		t.Fatalf("Get(5) = (%v, %v), want (five, true)", v, ok)
	}
}

func TestTree_Put_OverwritesAndReturnsPrevious(t *testing.T) {
	tr := New()
	tr.Put(types.IntKey(5), "five")
	prev, ok := tr.Put(types.IntKey(5), "V")
	if !ok || prev != "five" {
		t.Fatalf("Put overwrite returned (%v, %v), want (five, true)", prev, ok)
	}
}

func TestTree_Remove_ThenAbsent(t *testing.T) {
	tr := New()
	tr.Put(types.IntKey(5), "five")
	prev, ok := tr.Remove(types.IntKey(5))
	if !ok || prev != "five" {
		t.Fatalf("Remove returned (%v, %v), want (five, true)", prev, ok)
	}
	if _, ok := tr.Get(types.IntKey(5)); ok {
		t.Fatalf("Get after Remove returned ok=true")
	}
}

func TestTree_Remove_NoopWhenAbsent(t *testing.T) {
	tr := New()
	tr.Put(types.IntKey(1), "one")
	if _, ok := tr.Remove(types.IntKey(99)); ok {
		t.Fatalf("Remove of absent key returned ok=true")
	}
}

func TestTree_RemoveRoot_ReplacesRootRatherThanRefusing(t *testing.T) {
	// The original sequential reference refused to remove the root node
	// outright (a bug: see DESIGN.md). The sentinel-holder layout shared
	// with pkg/avl makes root removal an ordinary child-pointer update.
	tr := New()
	tr.Put(types.IntKey(1), "one")
	prev, ok := tr.Remove(types.IntKey(1))
	if !ok || prev != "one" {
		t.Fatalf("Remove(root) returned (%v, %v), want (one, true)", prev, ok)
	}
	if _, ok := tr.Get(types.IntKey(1)); ok {
		t.Fatalf("root key still present after Remove")
	}

	tr.Put(types.IntKey(2), "two")
	tr.Put(types.IntKey(1), "one")
	tr.Put(types.IntKey(3), "three")
	// removing the minimum repeatedly (2 is the root by the time it is
	// the minimum) must keep shrinking the tree rather than refusing.
	for i := 0; i < 3; i++ {
		k, ok := tr.Min()
		if !ok {
			t.Fatalf("Min() reported empty with keys still expected")
		}
		if _, ok := tr.Remove(k); !ok {
			t.Fatalf("Remove(%v) reported absent", k)
		}
	}
	if _, ok := tr.Min(); ok {
		t.Fatalf("tree non-empty after removing all three keys")
	}
}

func TestTree_MinMax(t *testing.T) {
	tr := New()
	for _, k := range []int{50, 25, 75, 10, 90} {
		tr.Put(types.IntKey(k), k)
	}
	minKey, ok := tr.Min()
	if !ok || minKey.Compare(types.IntKey(10)) != 0 {
		t.Fatalf("Min() = (%v, %v), want (10, true)", minKey, ok)
	}
	maxKey, ok := tr.Max()
	if !ok || maxKey.Compare(types.IntKey(90)) != 0 {
		t.Fatalf("Max() = (%v, %v), want (90, true)", maxKey, ok)
	}
}

// checkInvariants mirrors pkg/avl's invariant walk; avlseq has no version
// words or locks, so there is nothing to quiesce — every call is already
// single-threaded by construction.
func checkInvariants(t *testing.T, tr *Tree) {
	t.Helper()
	var walk func(n, parent *Node, lo, hi *int)
	walk = func(n, parent *Node, lo, hi *int) {
		if n == nil {
			return
		}
		if n.parent != parent {
			t.Fatalf("node %v: parent pointer mismatch", n.key)
		}
		if parent != nil && parent.left != n && parent.right != n {
			t.Fatalf("node %v: not reachable from its parent", n.key)
		}
		k := int(n.key.(types.IntKey))
		if lo != nil && k <= *lo {
			t.Fatalf("node %v violates lower bound %v", k, *lo)
		}
		if hi != nil && k >= *hi {
			t.Fatalf("node %v violates upper bound %v", k, *hi)
		}

		hl := heightOf(n.left)
		hr := heightOf(n.right)
		if d := hl - hr; d < -1 || d > 1 {
			t.Fatalf("node %v unbalanced: h(left)=%d h(right)=%d", k, hl, hr)
		}
		if want := max(hl, hr) + 1; n.height != want {
			t.Fatalf("node %v height=%d, want %d", k, n.height, want)
		}

		walk(n.left, n, lo, &k)
		walk(n.right, n, &k, hi)
	}
	walk(tr.holder.right, tr.holder, nil, nil)
}

func TestInvariants_AfterRandomPutsAndRemoves(t *testing.T) {
	tr := New()
	rng := rand.New(rand.NewSource(7))
	live := map[int]bool{}

	for i := 0; i < 5000; i++ {
		k := rng.Intn(300)
		if rng.Intn(2) == 0 {
			tr.Put(types.IntKey(k), k)
			live[k] = true
		} else {
			tr.Remove(types.IntKey(k))
			delete(live, k)
		}
		if i%113 == 0 {
			checkInvariants(t, tr)
		}
	}
	checkInvariants(t, tr)

	for k := range live {
		if v, ok := tr.Get(types.IntKey(k)); !ok || v != k {
			t.Fatalf("Get(%d) = (%v, %v), want (%d, true)", k, v, ok, k)
		}
	}
}

func TestTree_StrictlyIncreasingInsertion_StaysBalanced(t *testing.T) {
	tr := New()
	n := 1000
	for i := 0; i < n; i++ {
		tr.Put(types.IntKey(i), i)
	}
	checkInvariants(t, tr)
	for i := 0; i < n; i++ {
		if v, ok := tr.Get(types.IntKey(i)); !ok || v != i {
			t.Fatalf("Get(%d) = (%v, %v), want (%d, true)", i, v, ok, i)
		}
	}
}
