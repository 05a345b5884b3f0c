package wsbus

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vango-dev/storagesync/pkg/storage"
)

// FrameType identifies the kind of frame.
type FrameType string

const (
	// FrameHello opens a connection and names the client.
	FrameHello FrameType = "hello"

	// FrameEvent carries one storage event.
	FrameEvent FrameType = "event"
)

// Frame is one WebSocket message.
type Frame struct {
	Type    FrameType      `json:"type"`
	Context string         `json:"context,omitempty"`
	Event   *storage.Event `json:"event,omitempty"`
}

// Protocol errors.
var (
	ErrUnknownFrame   = errors.New("wsbus: unknown frame type")
	ErrMissingEvent   = errors.New("wsbus: event frame without event")
	ErrMissingHello   = errors.New("wsbus: first frame must be hello")
	ErrMissingContext = errors.New("wsbus: hello frame without context")
)

// EncodeFrame encodes f as JSON.
func EncodeFrame(f Frame) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("wsbus: encode frame: %w", err)
	}
	return data, nil
}

// DecodeFrame decodes and validates a frame.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("wsbus: decode frame: %w", err)
	}

	switch f.Type {
	case FrameHello:
		if f.Context == "" {
			return Frame{}, ErrMissingContext
		}
	case FrameEvent:
		if f.Event == nil {
			return Frame{}, ErrMissingEvent
		}
	default:
		return Frame{}, fmt.Errorf("%w: %q", ErrUnknownFrame, f.Type)
	}
	return f, nil
}
