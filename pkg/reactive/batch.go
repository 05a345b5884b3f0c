package reactive

import "sync"

// batchState holds notifications deferred by Batch.
// It is process-wide: a write on any goroutine during a batch is deferred.
var batchState struct {
	mu      sync.Mutex
	depth   int
	pending []Listener
}

// Batch runs fn and defers every change notification it causes until fn
// returns. Each listener is notified at most once per outermost batch, in the
// order it was first queued. Batches nest; only the outermost one flushes.
func Batch(fn func()) {
	batchState.mu.Lock()
	batchState.depth++
	batchState.mu.Unlock()

	defer flushBatch()
	fn()
}

func flushBatch() {
	batchState.mu.Lock()
	batchState.depth--
	if batchState.depth > 0 {
		batchState.mu.Unlock()
		return
	}
	pending := batchState.pending
	batchState.pending = nil
	batchState.mu.Unlock()

	seen := make(map[uint64]struct{}, len(pending))
	for _, l := range pending {
		if _, ok := seen[l.ID()]; ok {
			continue
		}
		seen[l.ID()] = struct{}{}
		l.MarkDirty()
	}
}

// queueIfBatching queues subs when a batch is open and reports whether it did.
func queueIfBatching(subs []Listener) bool {
	batchState.mu.Lock()
	defer batchState.mu.Unlock()

	if batchState.depth == 0 {
		return false
	}
	batchState.pending = append(batchState.pending, subs...)
	return true
}
