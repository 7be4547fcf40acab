package element

import (
	"testing"

	"playerd/internal/events"
	"playerd/internal/model"
)

func record(e *Element, names ...string) *[]string {
	var got []string
	for _, name := range names {
		name := name
		e.Events().On(name, func(...any) { got = append(got, name) })
	}
	return &got
}

func TestLoadEmitsLoadStart(t *testing.T) {
	e := New()
	got := record(e, events.LoadStart)

	e.Load("https://cdn.example.com/clip.mp4")

	if len(*got) != 1 {
		t.Fatalf("expected loadstart, got %v", *got)
	}
	if e.Src() != "https://cdn.example.com/clip.mp4" {
		t.Fatalf("src = %q", e.Src())
	}
}

func TestReadinessLadder(t *testing.T) {
	e := New()
	got := record(e,
		events.LoadedMetadata, events.LoadedData,
		events.CanPlay, events.CanPlayThrough,
	)

	e.Load("clip.mp4")
	e.AdvanceTo(HaveEnoughData)

	want := []string{
		events.LoadedMetadata, events.LoadedData,
		events.CanPlay, events.CanPlayThrough,
	}
	if len(*got) != len(want) {
		t.Fatalf("got %v, want %v", *got, want)
	}
	for i := range want {
		if (*got)[i] != want[i] {
			t.Fatalf("got %v, want %v", *got, want)
		}
	}

	// Walking backwards is a no-op.
	e.AdvanceTo(HaveMetadata)
	if len(*got) != len(want) {
		t.Fatalf("regressing readiness re-emitted events: %v", *got)
	}
}

func TestPlayBeforeReadyWaits(t *testing.T) {
	e := New()
	got := record(e, events.Play, events.Waiting, events.Playing)

	e.Load("clip.mp4")
	e.Play()

	if len(*got) != 2 || (*got)[0] != events.Play || (*got)[1] != events.Waiting {
		t.Fatalf("got %v, want [play waiting]", *got)
	}

	// Becoming ready resumes the pending playback.
	e.AdvanceTo(HaveFutureData)
	if (*got)[len(*got)-1] != events.Playing {
		t.Fatalf("expected playing after canplay, got %v", *got)
	}
}

func TestAdvanceEndsAtDuration(t *testing.T) {
	e := New()
	got := record(e, events.Pause, events.Ended)

	e.Load("clip.mp4")
	e.SetDuration(10)
	e.AdvanceTo(HaveEnoughData)
	e.Play()
	e.advanceBy(10.5)

	if !e.EndedPlayback() || !e.Paused() {
		t.Fatal("expected ended and paused")
	}
	if e.CurrentTime() != 10 {
		t.Fatalf("currentTime = %v, want 10", e.CurrentTime())
	}
	if len(*got) != 2 || (*got)[0] != events.Pause || (*got)[1] != events.Ended {
		t.Fatalf("got %v, want [pause ended]", *got)
	}
}

func TestStallOutsideBuffered(t *testing.T) {
	e := New()
	got := record(e, events.Waiting, events.Playing)

	e.Load("clip.mp4")
	e.SetDuration(60)
	e.SetBuffered(model.Ranges{{Start: 0, End: 5}})
	e.AdvanceTo(HaveEnoughData)
	e.Play()
	e.advanceBy(6)

	if !e.Waiting() {
		t.Fatal("expected waiting after crossing buffered end")
	}
	if (*got)[len(*got)-1] != events.Waiting {
		t.Fatalf("got %v", *got)
	}

	// Buffer catching up resumes playback.
	e.SetBuffered(model.Ranges{{Start: 0, End: 30}})
	if e.Waiting() {
		t.Fatal("expected stall cleared")
	}
	if (*got)[len(*got)-1] != events.Playing {
		t.Fatalf("got %v", *got)
	}
}

func TestSeekClampsAndEmits(t *testing.T) {
	e := New()
	got := record(e, events.Seeking, events.Seeked)

	e.Load("clip.mp4")
	e.SetDuration(30)
	e.Seek(45)

	if e.CurrentTime() != 30 {
		t.Fatalf("currentTime = %v, want clamped 30", e.CurrentTime())
	}
	if len(*got) != 2 || (*got)[0] != events.Seeking || (*got)[1] != events.Seeked {
		t.Fatalf("got %v", *got)
	}

	e.Seek(-2)
	if e.CurrentTime() != 0 {
		t.Fatalf("currentTime = %v, want 0", e.CurrentTime())
	}
}

func TestPlayAfterEndedRestarts(t *testing.T) {
	e := New()
	e.Load("clip.mp4")
	e.SetDuration(10)
	e.AdvanceTo(HaveEnoughData)
	e.Play()
	e.advanceBy(11)

	e.Play()
	if e.CurrentTime() != 0 {
		t.Fatalf("currentTime = %v, want restart from 0", e.CurrentTime())
	}
	if e.Paused() {
		t.Fatal("expected playing")
	}
	e.Destroy()
}

func TestVolumeAndRateChanges(t *testing.T) {
	e := New()
	var vol, rate []any
	e.Events().On(events.VolumeChange, func(args ...any) { vol = args })
	e.Events().On(events.RateChange, func(args ...any) { rate = args })

	e.SetVolume(0.5)
	e.SetMuted(true)
	e.SetRate(2)

	if vol[0] != 0.5 || vol[1] != true {
		t.Fatalf("volumechange args = %v", vol)
	}
	if rate[0] != 2.0 {
		t.Fatalf("ratechange args = %v", rate)
	}

	// Setting the same value again emits nothing.
	vol = nil
	e.SetVolume(0.5)
	if vol != nil {
		t.Fatal("no-op volume set emitted volumechange")
	}
}

func TestDestroyedElementIsInert(t *testing.T) {
	e := New()
	got := record(e, events.LoadStart, events.Play)

	e.Destroy()
	e.Destroy() // idempotent

	e.Load("clip.mp4")
	e.Play()
	e.Seek(5)

	if len(*got) != 0 {
		t.Fatalf("destroyed element emitted %v", *got)
	}
}

func TestPlayBlockedByAutoplayPolicy(t *testing.T) {
	e := New()
	var code int
	e.Events().On(events.Error, func(args ...any) {
		if me, ok := args[0].(*MediaError); ok && me != nil {
			code = me.Code
		}
	})

	e.Load("clip.mp4")
	e.SetDuration(60)
	e.AdvanceTo(HaveEnoughData)
	e.SetPlaybackBlocked(true)

	if err := e.Play(); err == nil {
		t.Fatal("blocked play must return the permission error")
	}
	if code != 7 {
		t.Fatalf("error code = %d, want 7", code)
	}
	if !e.Paused() {
		t.Fatal("blocked play must leave the transport paused")
	}
	if e.Err() != nil {
		t.Fatalf("permission denial recorded as fatal transport error: %v", e.Err())
	}

	e.SetPlaybackBlocked(false)
	if err := e.Play(); err != nil {
		t.Fatalf("Play after unblock: %v", err)
	}
	if e.Paused() {
		t.Fatal("expected playback to start after the policy cleared")
	}
}
