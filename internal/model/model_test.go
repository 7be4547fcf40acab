package model

import "testing"

func TestSourceExt(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"https://cdn.example.com/movie.mp4", "mp4"},
		{"https://cdn.example.com/live/main.m3u8?token=abc", "m3u8"},
		{"https://cdn.example.com/stream.MPD", "mpd"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", ""},
		{"clip.webm", "webm"},
		{"noext", ""},
	}
	for _, c := range cases {
		if got := NewSource(c.src).Ext(); got != c.want {
			t.Errorf("Ext(%q) = %q, want %q", c.src, got, c.want)
		}
	}
}

func TestRangesAmount(t *testing.T) {
	r := Ranges{{Start: 0, End: 10}, {Start: 5, End: 30}, {Start: 20, End: 25}}

	if got := r.Amount(60); got != 30 {
		t.Fatalf("Amount(60) = %v, want 30", got)
	}
	// Clamped to duration.
	if got := r.Amount(12); got != 12 {
		t.Fatalf("Amount(12) = %v, want 12", got)
	}
	// Zero duration always derives to zero.
	if got := r.Amount(0); got != 0 {
		t.Fatalf("Amount(0) = %v, want 0", got)
	}
	if got := Ranges(nil).Amount(60); got != 0 {
		t.Fatalf("empty Amount(60) = %v, want 0", got)
	}
}

func TestRangesContains(t *testing.T) {
	r := Ranges{{Start: 10, End: 20}, {Start: 0, End: 5}}
	if !r.Contains(15) || !r.Contains(5) {
		t.Fatal("expected 15 and 5 inside ranges")
	}
	if r.Contains(7) {
		t.Fatal("7 should be outside ranges")
	}
}

func TestSelectQualityExclusive(t *testing.T) {
	list := []VideoQuality{
		{ID: "q1", Height: 480, Selected: true},
		{ID: "q2", Height: 720},
		{ID: "q3", Height: 1080},
	}
	list = SelectQuality(list, "q3")

	selected := 0
	for _, q := range list {
		if q.Selected {
			selected++
			if q.ID != "q3" {
				t.Fatalf("selected %s, want q3", q.ID)
			}
		}
	}
	if selected != 1 {
		t.Fatalf("expected exactly one selected quality, got %d", selected)
	}
}

func TestSetTextTrackModeExclusive(t *testing.T) {
	list := []TextTrack{
		{ID: "a", Mode: TextTrackShowing},
		{ID: "b", Mode: TextTrackDisabled},
	}
	list = SetTextTrackMode(list, "b", TextTrackShowing)

	showing := 0
	for _, tr := range list {
		if tr.Mode == TextTrackShowing {
			showing++
			if tr.ID != "b" {
				t.Fatalf("track %s showing, want b", tr.ID)
			}
		}
	}
	if showing != 1 {
		t.Fatalf("expected exactly one showing track, got %d", showing)
	}
	if list[0].Mode == TextTrackShowing {
		t.Fatal("track a should have been demoted")
	}
}

func TestSetTextTrackModeHiddenKeepsOthers(t *testing.T) {
	list := []TextTrack{
		{ID: "a", Mode: TextTrackShowing},
		{ID: "b", Mode: TextTrackDisabled},
	}
	// Hiding a track is not an exclusive transition.
	list = SetTextTrackMode(list, "b", TextTrackHidden)
	if list[0].Mode != TextTrackShowing {
		t.Fatal("track a should still be showing")
	}
	if list[1].Mode != TextTrackHidden {
		t.Fatal("track b should be hidden")
	}
}
