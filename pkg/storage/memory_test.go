package storage

import (
	"errors"
	"sort"
	"testing"
)

func TestMemoryStorage_GetSetRemove(t *testing.T) {
	m := NewMemoryStorage()

	if _, ok, err := m.GetItem("theme"); ok || err != nil {
		t.Fatalf("GetItem on empty storage = ok=%v err=%v", ok, err)
	}

	if err := m.SetItem("theme", `"dark"`); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	v, ok, err := m.GetItem("theme")
	if err != nil || !ok || v != `"dark"` {
		t.Fatalf("GetItem = %q, %v, %v; want %q, true, nil", v, ok, err, `"dark"`)
	}

	if err := m.RemoveItem("theme"); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if err := m.RemoveItem("theme"); err != nil {
		t.Fatalf("RemoveItem on absent key: %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("Len = %d, want 0", m.Len())
	}
}

func TestMemoryStorage_KeysAndClear(t *testing.T) {
	m := NewMemoryStorage()
	_ = m.SetItem("b", "2")
	_ = m.SetItem("a", "1")

	keys, err := m.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("Keys = %v, want [a b]", keys)
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("Len after Clear = %d", m.Len())
	}
}

func TestMemoryStorage_CloseMakesOperationsFail(t *testing.T) {
	m := NewMemoryStorage()
	_ = m.Close()

	if _, _, err := m.GetItem("k"); !errors.Is(err, ErrClosed) {
		t.Errorf("GetItem err = %v, want ErrClosed", err)
	}
	if err := m.SetItem("k", "v"); !errors.Is(err, ErrClosed) {
		t.Errorf("SetItem err = %v, want ErrClosed", err)
	}
	if err := m.RemoveItem("k"); !errors.Is(err, ErrClosed) {
		t.Errorf("RemoveItem err = %v, want ErrClosed", err)
	}
	if _, err := m.Keys(); !errors.Is(err, ErrClosed) {
		t.Errorf("Keys err = %v, want ErrClosed", err)
	}
	if err := m.Clear(); !errors.Is(err, ErrClosed) {
		t.Errorf("Clear err = %v, want ErrClosed", err)
	}
}

func TestParseArea(t *testing.T) {
	tests := []struct {
		in      string
		want    Area
		wantErr bool
	}{
		{"", Local, false},
		{"local", Local, false},
		{"Session", Session, false},
		{" session ", Session, false},
		{"cookie", Local, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseArea(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseArea(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseArea(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if got := Area(7).String(); got != "Area(7)" {
		t.Errorf("String of unknown area = %q", got)
	}
	if _, err := Area(7).MarshalText(); err == nil {
		t.Error("MarshalText of unknown area should fail")
	}
}
