package element

import (
	"testing"

	"playerd/internal/events"
	"playerd/internal/model"
)

func TestNormalizerForwardsTransportEvents(t *testing.T) {
	e := New()
	out := events.NewBus()
	NewNormalizer(e, out)

	var names []string
	for _, name := range []string{events.LoadStart, events.DurationChange, events.Play, events.Waiting} {
		name := name
		out.On(name, func(...any) { names = append(names, name) })
	}

	e.Load("clip.mp4")
	e.SetDuration(30)
	e.Play()

	want := []string{events.LoadStart, events.DurationChange, events.Play, events.Waiting}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestNormalizerTranslatesBufferedRanges(t *testing.T) {
	e := New()
	out := events.NewBus()
	NewNormalizer(e, out)

	var got []model.TimeRange
	out.On(events.Progress, func(args ...any) {
		got = args[0].([]model.TimeRange)
	})

	e.SetBuffered(model.Ranges{{Start: 0, End: 12}, {Start: 20, End: 25}})

	if len(got) != 2 || got[0] != (model.TimeRange{Start: 0, End: 12}) {
		t.Fatalf("got %v", got)
	}
}

func TestNormalizerMapsErrorCodes(t *testing.T) {
	e := New()
	out := events.NewBus()
	NewNormalizer(e, out)

	var code int
	var msg string
	out.On(events.Error, func(args ...any) {
		code = args[0].(int)
		msg = args[1].(string)
	})

	e.Fail(2, "tcp reset")

	if code != 2 {
		t.Fatalf("code = %d, want 2", code)
	}
	if msg != MediaErrorMessage(2) {
		t.Fatalf("msg = %q", msg)
	}
}

func TestNormalizerUnknownCodeFallback(t *testing.T) {
	if MediaErrorMessage(99) != MediaErrorMessage(0) {
		t.Fatal("unknown code must fall back to code 0 message")
	}
}

func TestNormalizerDestroyDetaches(t *testing.T) {
	e := New()
	out := events.NewBus()
	n := NewNormalizer(e, out)

	calls := 0
	out.On(events.TimeUpdate, func(...any) { calls++ })

	n.Destroy()
	e.Load("clip.mp4")
	e.SetDuration(10)
	e.Seek(5)

	if calls != 0 {
		t.Fatalf("detached normalizer still forwarded %d events", calls)
	}
}
