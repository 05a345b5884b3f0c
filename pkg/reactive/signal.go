package reactive

import (
	"reflect"
	"sync"
)

// signalBase provides type-erased subscriber management.
type signalBase struct {
	id uint64

	// subs are the listeners subscribed to this signal.
	subs []Listener

	// subMu protects the subs slice.
	subMu sync.RWMutex
}

// subscribe adds a listener. Deduplicates by listener ID.
func (s *signalBase) subscribe(l Listener) {
	if l == nil {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for _, existing := range s.subs {
		if existing.ID() == lid {
			return
		}
	}

	s.subs = append(s.subs, l)
}

// unsubscribe removes a listener, preserving the order of the others.
func (s *signalBase) unsubscribe(l Listener) {
	if l == nil {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for i, existing := range s.subs {
		if existing.ID() == lid {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// notifySubscribers notifies all subscribers that this signal changed.
// Subscribers are copied first so no lock is held during notification.
func (s *signalBase) notifySubscribers() {
	s.subMu.RLock()
	subs := make([]Listener, len(s.subs))
	copy(subs, s.subs)
	s.subMu.RUnlock()

	if queueIfBatching(subs) {
		return
	}
	for _, sub := range subs {
		sub.MarkDirty()
	}
}

// count returns the number of subscribers.
func (s *signalBase) count() int {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	return len(s.subs)
}

// Signal is a reactive value container.
// Writes that change the value notify every subscribed listener synchronously,
// in subscription order, on the writer's goroutine.
type Signal[T any] struct {
	base signalBase

	// value is the current signal value.
	value T

	// mu protects the value.
	mu sync.RWMutex

	// equal decides whether a write changed the value.
	// If nil, defaultEquals is used.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		base:  signalBase{id: nextID()},
		value: initial,
	}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Peek returns the current value. It is an alias of Get kept for call sites
// that want to make clear a read has no side effects.
func (s *Signal[T]) Peek() T {
	return s.Get()
}

// Set updates the value and notifies subscribers if the value changed.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.base.notifySubscribers()
	}
}

// Update atomically reads and replaces the value.
// The function receives the current value and returns the new value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	oldValue := s.value
	newValue := fn(oldValue)
	changed := !s.equals(oldValue, newValue)
	if changed {
		s.value = newValue
	}
	s.mu.Unlock()

	if changed {
		s.base.notifySubscribers()
	}
}

// Mutate changes the value in place and always notifies subscribers.
// Use it for nested mutation of maps, slices and structs, where an equality
// check against the aliased old value would miss the change.
func (s *Signal[T]) Mutate(fn func(*T)) {
	s.mu.Lock()
	fn(&s.value)
	s.mu.Unlock()

	s.base.notifySubscribers()
}

// Notify marks the signal changed without touching its value.
// Call it after mutating state reachable from the value through a reference
// the signal does not see, such as a pointer or a shared map.
func (s *Signal[T]) Notify() {
	s.base.notifySubscribers()
}

// WithEquals configures a custom equality function and returns the signal.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.mu.Lock()
	s.equal = fn
	s.mu.Unlock()
	return s
}

// Subscribe adds l to the signal's listeners.
func (s *Signal[T]) Subscribe(l Listener) {
	s.base.subscribe(l)
}

// Unsubscribe removes l from the signal's listeners.
func (s *Signal[T]) Unsubscribe(l Listener) {
	s.base.unsubscribe(l)
}

// Subscribers returns the number of subscribed listeners.
func (s *Signal[T]) Subscribers() int {
	return s.base.count()
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.base.id
}

// equals must be called with s.mu held.
func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for scalar kinds and reflect.DeepEqual otherwise.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return sameScalar(av, any(b))
	case int8:
		return sameScalar(av, any(b))
	case int16:
		return sameScalar(av, any(b))
	case int32:
		return sameScalar(av, any(b))
	case int64:
		return sameScalar(av, any(b))
	case uint:
		return sameScalar(av, any(b))
	case uint8:
		return sameScalar(av, any(b))
	case uint16:
		return sameScalar(av, any(b))
	case uint32:
		return sameScalar(av, any(b))
	case uint64:
		return sameScalar(av, any(b))
	case float32:
		return sameScalar(av, any(b))
	case float64:
		return sameScalar(av, any(b))
	case string:
		return sameScalar(av, any(b))
	case bool:
		return sameScalar(av, any(b))
	default:
		return reflect.DeepEqual(a, b)
	}
}

// sameScalar reports whether b holds a V equal to a. The type check matters
// when T is an interface type and a and b hold different dynamic types.
func sameScalar[V comparable](a V, b any) bool {
	bv, ok := b.(V)
	return ok && a == bv
}
