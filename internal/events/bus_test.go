package events

import "testing"

func TestOnAndEmit(t *testing.T) {
	b := NewBus()
	var got []any
	b.On("timeupdate", func(args ...any) { got = append(got, args...) })

	b.Emit("timeupdate", 12.5)
	b.Emit("timeupdate", 13.0)

	if len(got) != 2 || got[0] != 12.5 || got[1] != 13.0 {
		t.Fatalf("unexpected args: %v", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := NewBus()
	calls := 0
	off := b.On("play", func(...any) { calls++ })

	b.Emit("play")
	off()
	b.Emit("play")

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if n := b.ListenerCount("play"); n != 0 {
		t.Fatalf("expected 0 listeners, got %d", n)
	}
}

func TestOnceRunsOnce(t *testing.T) {
	b := NewBus()
	calls := 0
	b.Once("ready", func(...any) { calls++ })

	b.Emit("ready")
	b.Emit("ready")

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestOnceCannotRetriggerItself(t *testing.T) {
	b := NewBus()
	calls := 0
	b.Once("seeked", func(...any) {
		calls++
		// Re-entrant emit: the handler was already removed.
		b.Emit("seeked")
	})

	b.Emit("seeked")

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestPanicIsolated(t *testing.T) {
	b := NewBus()
	delivered := false
	b.On("error", func(...any) { panic("bad handler") })
	b.On("error", func(...any) { delivered = true })

	// Must not propagate to the caller of Emit.
	b.Emit("error", 2, "network failure")

	if !delivered {
		t.Fatal("panic in earlier handler aborted delivery")
	}
}

func TestInsertionOrderWithinGroup(t *testing.T) {
	b := NewBus()
	var order []int
	b.On("pause", func(...any) { order = append(order, 1) })
	b.On("pause", func(...any) { order = append(order, 2) })
	b.On("pause", func(...any) { order = append(order, 3) })

	b.Emit("pause")

	for i, v := range order {
		if v != i+1 {
			t.Fatalf("out of order delivery: %v", order)
		}
	}
}

func TestOffByHandler(t *testing.T) {
	b := NewBus()
	calls := 0
	h := Handler(func(...any) { calls++ })
	b.On("waiting", h)
	b.Off("waiting", h)

	b.Emit("waiting")

	if calls != 0 {
		t.Fatalf("expected handler removed, got %d calls", calls)
	}
}

func TestRemoveAll(t *testing.T) {
	b := NewBus()
	b.On("a", func(...any) {})
	b.Once("a", func(...any) {})
	b.On("b", func(...any) {})

	b.RemoveAll("a")
	if n := b.ListenerCount("a"); n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
	if n := b.ListenerCount("b"); n != 1 {
		t.Fatalf("expected b untouched, got %d", n)
	}

	b.RemoveAll()
	if n := b.ListenerCount("b"); n != 0 {
		t.Fatalf("expected 0 after full reset, got %d", n)
	}
}

func TestUnsubscribeOnce(t *testing.T) {
	b := NewBus()
	calls := 0
	off := b.Once("ready", func(...any) { calls++ })
	off()
	b.Emit("ready")
	if calls != 0 {
		t.Fatalf("expected 0 calls, got %d", calls)
	}
}
