package model

// PlayerSettings is the subset of playback state persisted across restarts.
type PlayerSettings struct {
	Volume float64 `json:"volume"`
	Muted  bool    `json:"muted"`
	Rate   float64 `json:"rate"`
}

// DefaultSettings returns the settings of a freshly initialized player.
func DefaultSettings() PlayerSettings {
	return PlayerSettings{Volume: 1, Muted: false, Rate: 1}
}
