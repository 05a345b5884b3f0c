package wsbus

import (
	"errors"
	"testing"

	"github.com/vango-dev/storagesync/pkg/storage"
)

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"hello", `{"type":"hello","context":"a"}`, nil},
		{"event", `{"type":"event","event":{"key":"k","newValue":"1","oldValue":null,"area":"local","source":"w"}}`, nil},
		{"hello without context", `{"type":"hello"}`, ErrMissingContext},
		{"event without event", `{"type":"event"}`, ErrMissingEvent},
		{"unknown type", `{"type":"patch"}`, ErrUnknownFrame},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFrame([]byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DecodeFrame err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := DecodeFrame([]byte("{")); err == nil {
		t.Fatal("DecodeFrame of malformed JSON should fail")
	}
}

func TestEventFrameCarriesAreaAndRemoval(t *testing.T) {
	data, err := EncodeFrame(Frame{Type: FrameEvent, Event: &storage.Event{
		Key:    "draft",
		Area:   storage.Session,
		Source: "w1",
		Scope:  "tab-1",
	}})
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	f, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	ev := f.Event
	if ev.Area != storage.Session || ev.Scope != "tab-1" || !ev.IsRemoval() {
		t.Fatalf("decoded event = %+v", ev)
	}
}
