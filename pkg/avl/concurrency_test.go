package avl

import (
	"bytes"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"golang.org/x/sync/errgroup"

	"github.com/bobboyms/cavl/pkg/oplog"
	"github.com/bobboyms/cavl/pkg/types"
)

// TestConcurrency_RandomPutRemoveAgainstOracle runs many goroutines issuing
// random put/remove against a shared Tree and a mutex-guarded oracle map,
// journaling every applied operation to an in-memory oplog; on a mismatch
// the test reads the journal back and logs how many operations it holds.
// Quiescent
// agreement between the tree and the oracle is the property under test;
// per-goroutine keys are partitioned so each key's oracle/tree history is
// produced by a single writer, avoiding the ambiguity of "whose write won"
// on shared keys.
func TestConcurrency_RandomPutRemoveAgainstOracle(t *testing.T) {
	const (
		numGoroutines = 8
		opsPerRoutine = 10000
		keySpace      = 64
	)

	tr := New()

	var oracleMu sync.Mutex
	oracle := make(map[int]int)

	var journalBuf bytes.Buffer
	journal := oplog.NewWriter(&journalBuf, oplog.DefaultOptions())
	var journalMu sync.Mutex

	var g errgroup.Group
	for gID := 0; gID < numGoroutines; gID++ {
		gID := gID
		g.Go(func() error {
			rng := rand.New(rand.NewSource(int64(gID) + 1))
			base := gID * keySpace
			for i := 0; i < opsPerRoutine; i++ {
				key := base + rng.Intn(keySpace)

				fp, ferr := types.Fingerprint(types.IntKey(key))
				if ferr != nil {
					return fmt.Errorf("fingerprint: %w", ferr)
				}

				if rng.Intn(3) == 0 {
					oracleMu.Lock()
					delete(oracle, key)
					oracleMu.Unlock()
					tr.Remove(types.IntKey(key))

					journalMu.Lock()
					_, err := journal.AppendRemove(fp)
					journalMu.Unlock()
					if err != nil {
						return fmt.Errorf("journal remove: %w", err)
					}
				} else {
					val := key * 1000
					oracleMu.Lock()
					oracle[key] = val
					oracleMu.Unlock()
					tr.Put(types.IntKey(key), val)

					journalMu.Lock()
					_, err := journal.AppendPut(fp, fmt.Sprintf("%d", val))
					journalMu.Unlock()
					if err != nil {
						return fmt.Errorf("journal put: %w", err)
					}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent workload returned error: %v", err)
	}
	if err := journal.Flush(); err != nil {
		t.Fatalf("journal flush: %v", err)
	}

	got := make(map[int]int)
	for k := range oracle {
		if v, ok := tr.Get(types.IntKey(k)); ok {
			got[k] = v.(int)
		}
	}
	// also check the tree doesn't contain keys the oracle doesn't
	for k := 0; k < numGoroutines*keySpace; k++ {
		if _, wantAbsent := oracle[k]; !wantAbsent {
			if v, ok := tr.Get(types.IntKey(k)); ok {
				got[k] = v.(int) // record the unexpected entry so the diff shows it
			}
		}
	}

	if diff := pretty.Compare(oracle, got); diff != "" {
		entries, rerr := oplog.NewReader(bytes.NewReader(journalBuf.Bytes())).ReadAll()
		if rerr == nil {
			t.Logf("journaled %d operations leading up to the mismatch", len(entries))
		}
		t.Fatalf("tree state does not match oracle after concurrent workload (-oracle +tree):\n%s", diff)
	}

	checkInvariants(t, tr)
}

// TestConcurrency_ReadersDuringWrites exercises Get running concurrently
// with a steady stream of Put/Remove on overlapping keys: readers must
// never see a panic, a torn value, or block indefinitely.
func TestConcurrency_ReadersDuringWrites(t *testing.T) {
	tr := New()
	for i := 0; i < 200; i++ {
		tr.Put(types.IntKey(i), i)
	}

	stop := make(chan struct{})
	var writers sync.WaitGroup

	for w := 0; w < 4; w++ {
		writers.Add(1)
		go func(seed int64) {
			defer writers.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
				}
				k := rng.Intn(200)
				if rng.Intn(2) == 0 {
					tr.Put(types.IntKey(k), k)
				} else {
					tr.Remove(types.IntKey(k))
				}
			}
		}(int64(99 + w))
	}

	var readers errgroup.Group
	for r := 0; r < 4; r++ {
		readers.Go(func() error {
			for i := 0; i < 20000; i++ {
				k := i % 200
				if v, ok := tr.Get(types.IntKey(k)); ok && v != k {
					return fmt.Errorf("Get(%d) = %v, want either absent or %d", k, v, k)
				}
			}
			return nil
		})
	}

	err := readers.Wait()
	close(stop)
	writers.Wait()
	if err != nil {
		t.Fatalf("reader/writer race: %v", err)
	}
}
