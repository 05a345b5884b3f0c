package storage

import (
	"sync"
	"sync/atomic"
)

// Bus delivers storage events between windows.
type Bus interface {
	// Publish delivers ev to every subscriber except those subscribed with a
	// context ID equal to ev.Source.
	Publish(ev Event) error

	// Subscribe registers fn under contextID. The returned function cancels
	// the subscription and is safe to call more than once.
	Subscribe(contextID string, fn func(Event)) (cancel func())
}

// LocalBus is an in-process Bus.
// Publish delivers synchronously, in subscription order, on the caller's
// goroutine.
type LocalBus struct {
	subs   []*subscription
	mu     sync.RWMutex
	nextID atomic.Uint64
}

type subscription struct {
	id        uint64
	contextID string
	fn        func(Event)
}

// NewLocalBus creates an empty LocalBus.
func NewLocalBus() *LocalBus {
	return &LocalBus{}
}

// Publish delivers ev to every subscriber but the source.
func (b *LocalBus) Publish(ev Event) error {
	b.mu.RLock()
	subs := make([]*subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, sub := range subs {
		if sub.contextID == ev.Source {
			continue
		}
		sub.fn(ev)
	}
	return nil
}

// Subscribe registers fn under contextID.
func (b *LocalBus) Subscribe(contextID string, fn func(Event)) func() {
	sub := &subscription{
		id:        b.nextID.Add(1),
		contextID: contextID,
		fn:        fn,
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sub.id) })
	}
}

// Len returns the number of subscriptions.
func (b *LocalBus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *LocalBus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}
