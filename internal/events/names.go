package events

// The shared event vocabulary. Providers and the player emit the same names
// so consumers can listen at either level.
const (
	Ready = "ready"

	LoadStart      = "loadstart"
	LoadedMetadata = "loadedmetadata"
	LoadedData     = "loadeddata"
	CanPlay        = "canplay"
	CanPlayThrough = "canplaythrough"

	Play           = "play"
	Pause          = "pause"
	Playing        = "playing"
	Waiting        = "waiting"
	Seeking        = "seeking"
	Seeked         = "seeked"
	TimeUpdate     = "timeupdate"
	DurationChange = "durationchange"
	Ended          = "ended"

	VolumeChange = "volumechange"
	RateChange   = "ratechange"
	Progress     = "progress"
	Error        = "error"

	QualitiesChange   = "qualitieschange"
	QualityChange     = "qualitychange"
	AudioTracksChange = "audiotrackschange"
	AudioTrackChange  = "audiotrackchange"
	TextTracksChange  = "texttrackschange"
	TextTrackChange   = "texttrackchange"

	FullscreenChange = "fullscreenchange"
	PiPChange        = "pipchange"

	// Player-level additions.
	Init               = "init"
	Destroy            = "destroy"
	SourcesChange      = "sourceschange"
	ProviderChange     = "providerchange"
	ControlsChange     = "controlschange"
	UserActivityChange = "useractivitychange"
)
