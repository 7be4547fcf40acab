package model

// VideoQuality is one renderable variant of the active stream. IDs are opaque
// and stable only within one backend session; every re-enumeration replaces
// the list wholesale.
type VideoQuality struct {
	ID       string `json:"id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Bitrate  int    `json:"bitrate"`
	Codec    string `json:"codec,omitempty"`
	Selected bool   `json:"selected"`
}

type AudioTrack struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Language string `json:"language,omitempty"`
	Selected bool   `json:"selected"`
}

type TextTrackMode string

const (
	TextTrackDisabled TextTrackMode = "disabled"
	TextTrackHidden   TextTrackMode = "hidden"
	TextTrackShowing  TextTrackMode = "showing"
)

// Cue is one timed text entry. Line and Align are optional layout hints and
// carry zero values when the producer supplied none.
type Cue struct {
	ID        string  `json:"id"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Text      string  `json:"text"`
	Line      int     `json:"line,omitempty"`
	Align     string  `json:"align,omitempty"`
}

type TextTrack struct {
	ID       string        `json:"id"`
	Label    string        `json:"label"`
	Language string        `json:"language,omitempty"`
	Kind     string        `json:"kind,omitempty"`
	Mode     TextTrackMode `json:"mode"`
	Cues     []Cue         `json:"cues,omitempty"`
}

// SelectQuality returns a copy of the list with exactly the quality matching
// id selected. An unknown id clears every selection.
func SelectQuality(list []VideoQuality, id string) []VideoQuality {
	out := make([]VideoQuality, len(list))
	for i, q := range list {
		q.Selected = q.ID == id
		out[i] = q
	}
	return out
}

// SelectAudioTrack returns a copy of the list with exactly the track matching
// id selected.
func SelectAudioTrack(list []AudioTrack, id string) []AudioTrack {
	out := make([]AudioTrack, len(list))
	for i, tr := range list {
		tr.Selected = tr.ID == id
		out[i] = tr
	}
	return out
}

// SetTextTrackMode returns a copy of the list with the track matching id set
// to mode. Enabling one track demotes any other showing track to disabled, so
// at most one track is showing at a time.
func SetTextTrackMode(list []TextTrack, id string, mode TextTrackMode) []TextTrack {
	out := make([]TextTrack, len(list))
	for i, tr := range list {
		if tr.ID == id {
			tr.Mode = mode
		} else if mode == TextTrackShowing && tr.Mode == TextTrackShowing {
			tr.Mode = TextTrackDisabled
		}
		out[i] = tr
	}
	return out
}

// SelectedQuality returns the selected quality, if any.
func SelectedQuality(list []VideoQuality) (VideoQuality, bool) {
	for _, q := range list {
		if q.Selected {
			return q, true
		}
	}
	return VideoQuality{}, false
}
