package storage

import "testing"

func TestLocalBus_SkipsSource(t *testing.T) {
	bus := NewLocalBus()
	var got []string

	bus.Subscribe("a", func(ev Event) { got = append(got, "a:"+ev.Key) })
	cancelB := bus.Subscribe("b", func(ev Event) { got = append(got, "b:"+ev.Key) })
	bus.Subscribe("c", func(ev Event) { got = append(got, "c:"+ev.Key) })

	if err := bus.Publish(Event{Key: "k", Source: "a"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(got) != 2 || got[0] != "b:k" || got[1] != "c:k" {
		t.Fatalf("delivered = %v, want [b:k c:k]", got)
	}

	cancelB()
	cancelB()
	got = nil
	_ = bus.Publish(Event{Key: "k2", Source: "x"})
	if len(got) != 2 || got[0] != "a:k2" || got[1] != "c:k2" {
		t.Fatalf("delivered after cancel = %v", got)
	}
	if bus.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bus.Len())
	}
}

func TestEventKinds(t *testing.T) {
	v := "1"
	if !(Event{}).IsClear() {
		t.Error("event without key should be a clear")
	}
	if !(Event{Key: "k"}).IsRemoval() {
		t.Error("event with nil NewValue should be a removal")
	}
	if (Event{Key: "k", NewValue: &v}).IsRemoval() {
		t.Error("event with NewValue is not a removal")
	}
}
