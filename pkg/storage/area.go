package storage

import (
	"fmt"
	"strings"
)

// Area selects one of the two storage areas of a window.
type Area int

const (
	// Local is the area that persists beyond the session and is shared by
	// every window of the same origin.
	Local Area = iota

	// Session is the area scoped to one browsing session. It is cleared when
	// the session ends and is not shared with other sessions.
	Session
)

// String returns "local" or "session".
func (a Area) String() string {
	switch a {
	case Local:
		return "local"
	case Session:
		return "session"
	default:
		return fmt.Sprintf("Area(%d)", int(a))
	}
}

// ParseArea parses "local" or "session", case-insensitively.
// The empty string parses as Local.
func ParseArea(s string) (Area, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "local":
		return Local, nil
	case "session":
		return Session, nil
	default:
		return Local, fmt.Errorf("storage: unknown area %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Area) MarshalText() ([]byte, error) {
	switch a {
	case Local, Session:
		return []byte(a.String()), nil
	default:
		return nil, fmt.Errorf("storage: invalid area %d", int(a))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Area) UnmarshalText(text []byte) error {
	parsed, err := ParseArea(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
