package storage

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Window is one execution context sharing storage with others.
//
// Its Local area is shared with every window built on the same Storage; its
// Session area is private unless windows are created with the same session
// storage and scope. Writes through Area publish events on the bus, and
// events published by other windows reach this window's listeners.
type Window struct {
	id      string
	scope   string
	local   Storage
	session Storage
	bus     Bus
	logger  *slog.Logger

	listeners   []*windowListener
	listenersMu sync.RWMutex
	nextID      atomic.Uint64

	cancel func()
	closed atomic.Bool
}

type windowListener struct {
	id uint64
	fn func(Event)
}

// WindowOption configures a Window.
type WindowOption func(*Window)

// WithWindowID sets the window's context ID. Default: a random UUID.
func WithWindowID(id string) WindowOption {
	return func(w *Window) {
		if id != "" {
			w.id = id
		}
	}
}

// WithSessionStorage shares session storage between windows of one session.
// Windows passing the same scope receive each other's Session events.
func WithSessionStorage(s Storage, scope string) WindowOption {
	return func(w *Window) {
		w.session = s
		w.scope = scope
	}
}

// WithWindowLogger sets the logger. Default: slog.Default().
func WithWindowLogger(logger *slog.Logger) WindowOption {
	return func(w *Window) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWindow creates a window over the shared local storage and bus.
// A nil local storage gets a private MemoryStorage. A nil bus gives an
// isolated window that neither sends nor receives events.
func NewWindow(local Storage, bus Bus, opts ...WindowOption) *Window {
	w := &Window{
		id:     uuid.NewString(),
		local:  local,
		bus:    bus,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.local == nil {
		w.local = NewMemoryStorage()
	}
	if w.session == nil {
		w.session = NewMemoryStorage()
	}
	if w.scope == "" {
		w.scope = w.id
	}
	if w.bus != nil {
		w.cancel = w.bus.Subscribe(w.id, w.Dispatch)
	}
	return w
}

// ID returns the window's context ID.
func (w *Window) ID() string {
	return w.id
}

// Area returns a view of the selected area. Writes through the view that
// change the stored value publish an Event. The view reads through to the
// backing storage.
func (w *Window) Area(area Area) Storage {
	backing := w.local
	if area == Session {
		backing = w.session
	}
	return &notifyingStorage{window: w, area: area, backing: backing}
}

// AddListener registers fn to receive storage events from other windows.
// The returned function removes it and is safe to call more than once.
func (w *Window) AddListener(fn func(Event)) (remove func()) {
	l := &windowListener{id: w.nextID.Add(1), fn: fn}

	w.listenersMu.Lock()
	w.listeners = append(w.listeners, l)
	w.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { w.removeListener(l.id) })
	}
}

// Listeners returns the number of registered listeners.
func (w *Window) Listeners() int {
	w.listenersMu.RLock()
	defer w.listenersMu.RUnlock()
	return len(w.listeners)
}

// Dispatch delivers ev to the window's listeners as if it had arrived from
// another window. Session events from another scope are dropped.
func (w *Window) Dispatch(ev Event) {
	if w.closed.Load() {
		return
	}
	if ev.Area == Session && ev.Scope != w.scope {
		return
	}

	w.listenersMu.RLock()
	listeners := make([]*windowListener, len(w.listeners))
	copy(listeners, w.listeners)
	w.listenersMu.RUnlock()

	for _, l := range listeners {
		l.fn(ev)
	}
}

// Close unsubscribes the window from the bus and drops its listeners.
func (w *Window) Close() error {
	if w.closed.Swap(true) {
		return nil
	}
	if w.cancel != nil {
		w.cancel()
	}

	w.listenersMu.Lock()
	w.listeners = nil
	w.listenersMu.Unlock()
	return nil
}

func (w *Window) removeListener(id uint64) {
	w.listenersMu.Lock()
	defer w.listenersMu.Unlock()

	for i, l := range w.listeners {
		if l.id == id {
			w.listeners = append(w.listeners[:i], w.listeners[i+1:]...)
			return
		}
	}
}

func (w *Window) publish(ev Event) {
	if w.bus == nil {
		return
	}
	ev.Source = w.id
	if ev.Area == Session {
		ev.Scope = w.scope
	}
	// The write already happened; a failed notification is not the writer's
	// error.
	if err := w.bus.Publish(ev); err != nil {
		w.logger.Warn("storage event publish failed",
			"key", ev.Key,
			"area", ev.Area.String(),
			"error", err)
	}
}

// notifyingStorage is a window's view of one area.
type notifyingStorage struct {
	window  *Window
	area    Area
	backing Storage
}

func (s *notifyingStorage) GetItem(key string) (string, bool, error) {
	return s.backing.GetItem(key)
}

func (s *notifyingStorage) SetItem(key, value string) error {
	old, existed, err := s.backing.GetItem(key)
	if err != nil {
		return err
	}
	if err := s.backing.SetItem(key, value); err != nil {
		return err
	}
	if existed && old == value {
		return nil
	}

	ev := Event{Key: key, NewValue: stringPtr(value), Area: s.area}
	if existed {
		ev.OldValue = stringPtr(old)
	}
	s.window.publish(ev)
	return nil
}

func (s *notifyingStorage) RemoveItem(key string) error {
	old, existed, err := s.backing.GetItem(key)
	if err != nil {
		return err
	}
	if !existed {
		return nil
	}
	if err := s.backing.RemoveItem(key); err != nil {
		return err
	}
	s.window.publish(Event{Key: key, OldValue: stringPtr(old), Area: s.area})
	return nil
}

func (s *notifyingStorage) Keys() ([]string, error) {
	return s.backing.Keys()
}

func (s *notifyingStorage) Clear() error {
	keys, err := s.backing.Keys()
	if err != nil {
		return err
	}
	if err := s.backing.Clear(); err != nil {
		return err
	}
	if len(keys) > 0 {
		s.window.publish(Event{Area: s.area})
	}
	return nil
}
