package storagecell

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vango-dev/storagesync/pkg/reactive"
	"github.com/vango-dev/storagesync/pkg/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Host is the execution context a cell lives in. *storage.Window implements it.
type Host interface {
	// Area returns the storage for the selected area.
	Area(area storage.Area) storage.Storage

	// AddListener registers fn for storage events from other contexts and
	// returns a function that removes it.
	AddListener(fn func(storage.Event)) (remove func())
}

// Cell is a reactive value persisted at a storage key.
//
// Every change to the value is encoded as JSON and written to the key. While
// attached, storage events for the key from other contexts update the value.
// A Cell is safe for concurrent use, but events and local writes racing on the
// same key resolve as last write wins.
type Cell[T any] struct {
	key     string
	area    storage.Area
	initial T

	host    Host
	store   storage.Storage
	signal  *reactive.Signal[T]
	watcher *reactive.Watcher

	cfg    config
	tracer trace.Tracer

	mu      sync.Mutex
	remove  func()
	closed  bool
	lastErr error
	onError func(error)

	// resetRaw is the encoding installed by a removal reset. The next
	// write-back of exactly this text is dropped so the slot stays absent.
	resetRaw     string
	resetPending bool
}

// New creates a cell for key in the host's storage.
//
// If the slot holds a value, it is decoded into T; malformed content fails
// with a *DecodeError. Otherwise the cell starts from a copy of initial and
// nothing is written until the value first changes. initial is only encoded
// when it is needed: for an absent slot, a reset or a removal. The cell does not receive events
// from other contexts until Attach is called, or until its owner mounts when
// created WithOwner.
func New[T any](host Host, key string, initial T, opts ...Option) (*Cell[T], error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	store := host.Area(cfg.area)
	raw, ok, err := store.GetItem(key)
	if err != nil {
		return nil, fmt.Errorf("storagecell: read %q: %w", key, err)
	}
	if !ok {
		if raw, err = encode(key, initial); err != nil {
			return nil, err
		}
	}
	value, err := decode[T](key, raw)
	if err != nil {
		return nil, err
	}

	c := &Cell[T]{
		key:     key,
		area:    cfg.area,
		initial: initial,
		host:    host,
		store:   store,
		signal:  reactive.NewSignal(value),
		cfg:     cfg,
		tracer:  cfg.resolveTracer(),
	}
	c.watcher = reactive.Watch(c.signal, c.writeBack)

	if cfg.owner != nil {
		cfg.owner.OnBeforeMount(c.Attach)
		cfg.owner.OnUnmount(c.Close)
	}

	return c, nil
}

// Key returns the storage key.
func (c *Cell[T]) Key() string {
	return c.key
}

// Area returns the storage area.
func (c *Cell[T]) Area() storage.Area {
	return c.area
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	return c.signal.Get()
}

// Peek returns the current value. See reactive.Signal.Peek.
func (c *Cell[T]) Peek() T {
	return c.signal.Peek()
}

// Set replaces the value. A changed value is written to storage before Set
// returns.
func (c *Cell[T]) Set(value T) {
	c.signal.Set(value)
}

// Update replaces the value with fn applied to the current one.
func (c *Cell[T]) Update(fn func(T) T) {
	c.signal.Update(fn)
}

// Mutate changes the value in place and always writes it back.
func (c *Cell[T]) Mutate(fn func(*T)) {
	c.signal.Mutate(fn)
}

// NotifyChanged writes the current value back after it was mutated through a
// shared reference.
func (c *Cell[T]) NotifyChanged() {
	c.signal.Notify()
}

// Reset sets the value back to the initial value and writes it.
func (c *Cell[T]) Reset() {
	value, _, err := c.initialValue()
	if err != nil {
		c.fail(err)
		return
	}
	c.signal.Set(value)
}

// Signal returns the underlying signal.
func (c *Cell[T]) Signal() *reactive.Signal[T] {
	return c.signal
}

// Subscribe adds l to the cell's listeners. Implements reactive.Subscribable.
func (c *Cell[T]) Subscribe(l reactive.Listener) {
	c.signal.Subscribe(l)
}

// Unsubscribe removes l from the cell's listeners.
func (c *Cell[T]) Unsubscribe(l reactive.Listener) {
	c.signal.Unsubscribe(l)
}

// Attach starts listening for storage events. It is idempotent and does
// nothing after Close.
func (c *Cell[T]) Attach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.remove != nil {
		return
	}
	c.remove = c.host.AddListener(c.onStorageEvent)
	c.cfg.metrics.recordAttach(1)
	c.cfg.logger.Debug("storage cell attached",
		"key", c.key,
		"area", c.area.String())
}

// Detach stops listening for storage events. It is idempotent.
func (c *Cell[T]) Detach() {
	c.mu.Lock()
	remove := c.remove
	c.remove = nil
	c.mu.Unlock()

	if remove == nil {
		return
	}
	remove()
	c.cfg.metrics.recordAttach(-1)
	c.cfg.logger.Debug("storage cell detached",
		"key", c.key,
		"area", c.area.String())
}

// Attached reports whether the cell is listening for storage events.
func (c *Cell[T]) Attached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remove != nil
}

// Close detaches the cell and stops writing changes back. The value stays
// readable and settable in memory. Close is terminal and idempotent.
func (c *Cell[T]) Close() {
	c.Detach()

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.watcher.Stop()
}

// Err returns the last write-back or sync error, or nil.
func (c *Cell[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// OnError registers fn to receive write-back and sync errors as they occur.
func (c *Cell[T]) OnError(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = fn
}

// HandleStorageEvent applies a storage event from another context.
//
// Events for other keys or areas are ignored. When the event's new value
// equals the current encoding nothing happens. Otherwise the new value is
// decoded and replaces the cell's value; a decoding failure is returned and
// the value is left unchanged. A removal of the key, or a clear of the
// area, resets the cell to its initial value without writing it back.
func (c *Cell[T]) HandleStorageEvent(ev storage.Event) error {
	if ev.Area != c.area {
		return nil
	}
	if !ev.IsClear() && ev.Key != c.key {
		return nil
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	_, span := c.tracer.Start(context.Background(), "storagecell.sync", trace.WithAttributes(
		attribute.String("storage.key", c.key),
		attribute.String("storage.area", c.area.String()),
	))
	defer span.End()

	if ev.IsClear() || ev.IsRemoval() {
		c.resetFromRemoval(span)
		return nil
	}

	current, err := encode(c.key, c.signal.Peek())
	if err == nil && current == *ev.NewValue {
		span.SetAttributes(attribute.String("storage.sync.outcome", syncNoop))
		c.cfg.metrics.recordSync(c.area.String(), syncNoop)
		return nil
	}

	value, err := decode[T](c.key, *ev.NewValue)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.cfg.metrics.recordSync(c.area.String(), syncError)
		c.fail(err)
		return err
	}

	span.SetAttributes(attribute.String("storage.sync.outcome", syncApplied))
	c.cfg.metrics.recordSync(c.area.String(), syncApplied)
	c.signal.Set(value)
	return nil
}

func (c *Cell[T]) onStorageEvent(ev storage.Event) {
	// Errors are already recorded and reported through OnError.
	_ = c.HandleStorageEvent(ev)
}

// initialValue returns a fresh copy of the initial value and its encoding.
func (c *Cell[T]) initialValue() (T, string, error) {
	raw, err := encode(c.key, c.initial)
	if err != nil {
		var zero T
		return zero, "", err
	}
	value, err := decode[T](c.key, raw)
	return value, raw, err
}

func (c *Cell[T]) resetFromRemoval(span trace.Span) {
	value, raw, err := c.initialValue()
	if err != nil {
		c.fail(err)
		return
	}

	span.SetAttributes(attribute.String("storage.sync.outcome", syncReset))
	c.cfg.metrics.recordSync(c.area.String(), syncReset)

	// The write-back may run later, inside an open batch, or race with a
	// local change; it is matched by value, not by timing.
	if current, err := encode(c.key, c.signal.Peek()); err == nil && current != raw {
		c.mu.Lock()
		c.resetRaw = raw
		c.resetPending = true
		c.mu.Unlock()
	}
	c.signal.Set(value)
}

// skipResetWrite reports whether raw is the write-back of a removal reset,
// consuming the pending reset either way.
func (c *Cell[T]) skipResetWrite(raw string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.resetPending {
		return false
	}
	c.resetPending = false
	return raw == c.resetRaw
}

// writeBack runs after every change of the signal.
func (c *Cell[T]) writeBack() {

	_, span := c.tracer.Start(context.Background(), "storagecell.write_back", trace.WithAttributes(
		attribute.String("storage.key", c.key),
		attribute.String("storage.area", c.area.String()),
	))
	defer span.End()

	raw, err := encode(c.key, c.signal.Peek())
	if err == nil && c.skipResetWrite(raw) {
		span.SetAttributes(attribute.Bool("storage.write.skipped", true))
		return
	}
	if err == nil {
		if err = c.store.SetItem(c.key, raw); err != nil {
			err = fmt.Errorf("storagecell: write %q: %w", c.key, err)
		}
	}
	c.cfg.metrics.recordWrite(c.area.String(), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.fail(err)
		return
	}
	span.SetAttributes(attribute.Int("storage.value.bytes", len(raw)))
}

func (c *Cell[T]) fail(err error) {
	c.mu.Lock()
	c.lastErr = err
	onError := c.onError
	c.mu.Unlock()

	c.cfg.logger.Error("storage cell error",
		"key", c.key,
		"area", c.area.String(),
		"error", err)

	if onError != nil {
		onError(err)
	}
}

func encode[T any](key string, value T) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", &EncodeError{Key: key, Err: err}
	}
	return string(data), nil
}

func decode[T any](key, raw string) (T, error) {
	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		var zero T
		return zero, &DecodeError{Key: key, Raw: raw, Err: err}
	}
	return value, nil
}
