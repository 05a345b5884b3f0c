package storagecell

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyKey is returned by New when the key is empty.
	ErrEmptyKey = errors.New("storagecell: empty key")

	// ErrClosed is recorded when a closed cell is asked to sync.
	ErrClosed = errors.New("storagecell: cell closed")
)

// DecodeError reports stored text that could not be decoded into the cell's
// value type. The cell keeps its previous value.
type DecodeError struct {
	Key string
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("storagecell: decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError reports a value that could not be encoded as JSON.
type EncodeError struct {
	Key string
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("storagecell: encode %q: %v", e.Key, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
