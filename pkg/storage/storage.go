package storage

import "errors"

// Storage is a string key-value store.
// Implementations must be safe for concurrent use.
type Storage interface {
	// GetItem returns the value stored at key and whether it was present.
	GetItem(key string) (string, bool, error)

	// SetItem stores value at key, overwriting any previous value.
	SetItem(key, value string) error

	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(key string) error

	// Keys returns the stored keys in unspecified order.
	Keys() ([]string, error)

	// Clear removes every key.
	Clear() error
}

// ErrClosed is returned by storage operations after Close.
var ErrClosed = errors.New("storage: closed")
