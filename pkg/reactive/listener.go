package reactive

// Listener is anything that can be notified when a signal changes.
type Listener interface {
	// MarkDirty notifies the listener that a source it subscribed to changed.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication of subscriptions and batched notifications.
	ID() uint64
}

// Subscribable is a source that listeners can subscribe to.
type Subscribable interface {
	Subscribe(l Listener)
	Unsubscribe(l Listener)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc struct {
	id uint64
	fn func()
}

// NewListenerFunc wraps fn in a Listener with a fresh ID.
func NewListenerFunc(fn func()) *ListenerFunc {
	return &ListenerFunc{id: nextID(), fn: fn}
}

// MarkDirty calls the wrapped function.
func (l *ListenerFunc) MarkDirty() {
	if l.fn != nil {
		l.fn()
	}
}

// ID returns the listener's unique identifier.
func (l *ListenerFunc) ID() uint64 {
	return l.id
}
