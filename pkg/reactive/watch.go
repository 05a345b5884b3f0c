package reactive

import "sync/atomic"

// Watcher runs a callback after every change of the source it watches.
// The callback runs synchronously on the goroutine that changed the source.
type Watcher struct {
	id     uint64
	source Subscribable
	fn     func()

	stopped atomic.Bool
}

// Watch subscribes fn to source. The callback does not run for the current
// value, only for subsequent changes.
func Watch(source Subscribable, fn func()) *Watcher {
	w := &Watcher{
		id:     nextID(),
		source: source,
		fn:     fn,
	}
	source.Subscribe(w)
	return w
}

// MarkDirty runs the callback unless the watcher is stopped.
// Implements the Listener interface.
func (w *Watcher) MarkDirty() {
	if w.stopped.Load() {
		return
	}
	w.fn()
}

// ID returns the unique identifier for this watcher.
func (w *Watcher) ID() uint64 {
	return w.id
}

// Stop unsubscribes the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	if w.stopped.Swap(true) {
		return
	}
	w.source.Unsubscribe(w)
}

// Stopped reports whether Stop has been called.
func (w *Watcher) Stopped() bool {
	return w.stopped.Load()
}
