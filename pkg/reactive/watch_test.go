package reactive

import "testing"

func TestWatchRunsAfterEachChange(t *testing.T) {
	s := NewSignal(0)
	var seen []int
	w := Watch(s, func() { seen = append(seen, s.Peek()) })

	if len(seen) != 0 {
		t.Fatalf("watch ran on creation: %v", seen)
	}

	s.Set(1)
	s.Set(2)
	s.Set(2)

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("seen = %v, want [1 2]", seen)
	}

	w.Stop()
	w.Stop()
	s.Set(3)
	if len(seen) != 2 {
		t.Fatalf("stopped watcher ran: %v", seen)
	}
	if !w.Stopped() {
		t.Error("Stopped() = false after Stop")
	}
	if s.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d after Stop, want 0", s.Subscribers())
	}
}

func TestWatchMayWriteOtherSignals(t *testing.T) {
	src := NewSignal(1)
	dst := NewSignal(0)
	w := Watch(src, func() { dst.Set(src.Peek() * 10) })
	defer w.Stop()

	src.Set(4)
	if dst.Get() != 40 {
		t.Fatalf("dst = %d, want 40", dst.Get())
	}
}

func TestBatchDefersAndDeduplicates(t *testing.T) {
	a := NewSignal(0)
	b := NewSignal(0)
	runs := 0
	l := NewListenerFunc(func() { runs++ })
	a.Subscribe(l)
	b.Subscribe(l)

	Batch(func() {
		a.Set(1)
		b.Set(1)
		Batch(func() {
			a.Set(2)
		})
		if runs != 0 {
			t.Fatalf("listener ran inside batch: %d", runs)
		}
	})

	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
}
