package storage

// Event describes a change to a storage area made by another window.
type Event struct {
	// Key is the changed key. Empty when the whole area was cleared.
	Key string `json:"key,omitempty"`

	// OldValue is the previous raw value, nil if the key was absent.
	OldValue *string `json:"oldValue"`

	// NewValue is the new raw value, nil if the key was removed.
	NewValue *string `json:"newValue"`

	// Area is the storage area that changed.
	Area Area `json:"area"`

	// Source is the ID of the window that made the change.
	Source string `json:"source"`

	// Scope identifies the session a Session-area change belongs to.
	// Windows only receive Session events from their own scope.
	Scope string `json:"scope,omitempty"`
}

// IsClear reports whether the event describes a Clear of the whole area.
func (e Event) IsClear() bool {
	return e.Key == ""
}

// IsRemoval reports whether the event describes a removed key.
func (e Event) IsRemoval() bool {
	return e.Key != "" && e.NewValue == nil
}

// stringPtr returns a pointer to a copy of s.
func stringPtr(s string) *string {
	return &s
}
