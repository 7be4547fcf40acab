package state

import "playerd/internal/model"

// Key names one field of the player state snapshot.
type Key string

const (
	KeySource       Key = "source"
	KeySources      Key = "sources"
	KeyMediaType    Key = "mediaType"
	KeyStreamType   Key = "streamType"
	KeyProviderType Key = "providerType"

	KeyLoadingStatus Key = "loadingStatus"
	KeyError         Key = "error"

	KeyPaused  Key = "paused"
	KeyPlaying Key = "playing"
	KeyEnded   Key = "ended"
	KeySeeking Key = "seeking"
	KeyWaiting Key = "waiting"

	KeyCurrentTime  Key = "currentTime"
	KeyDuration     Key = "duration"
	KeyPlaybackRate Key = "playbackRate"
	KeyLoop         Key = "loop"
	KeyAutoplay     Key = "autoplay"

	KeyVolume Key = "volume"
	KeyMuted  Key = "muted"

	KeyBuffered       Key = "buffered"
	KeyBufferedAmount Key = "bufferedAmount"
	KeySeekable       Key = "seekable"

	KeyMediaWidth  Key = "mediaWidth"
	KeyMediaHeight Key = "mediaHeight"

	KeyQualities   Key = "qualities"
	KeyAudioTracks Key = "audioTracks"
	KeyTextTracks  Key = "textTracks"

	KeyFullscreenActive Key = "fullscreenActive"
	KeyPiPActive        Key = "pipActive"

	KeyCanSetVolume  Key = "canSetVolume"
	KeyCanFullscreen Key = "canFullscreen"
	KeyCanPiP        Key = "canPiP"

	KeyControlsVisible Key = "controlsVisible"
	KeyUserActive      Key = "userActive"
	KeyPointerOver     Key = "pointerOver"
)

// Defaults returns the documented default value of every snapshot field.
func Defaults() map[Key]any {
	return map[Key]any{
		KeySource:       model.Source{},
		KeySources:      []model.Source(nil),
		KeyMediaType:    model.MediaTypeUnknown,
		KeyStreamType:   model.StreamTypeUnknown,
		KeyProviderType: model.ProviderTypeNone,

		KeyLoadingStatus: model.LoadingIdle,
		KeyError:         (*model.PlayerError)(nil),

		KeyPaused:  true,
		KeyPlaying: false,
		KeyEnded:   false,
		KeySeeking: false,
		KeyWaiting: false,

		KeyCurrentTime:  float64(0),
		KeyDuration:     float64(0),
		KeyPlaybackRate: float64(1),
		KeyLoop:         false,
		KeyAutoplay:     false,

		KeyVolume: float64(1),
		KeyMuted:  false,

		KeyBuffered:       model.Ranges(nil),
		KeyBufferedAmount: float64(0),
		KeySeekable:       model.Ranges(nil),

		KeyMediaWidth:  0,
		KeyMediaHeight: 0,

		KeyQualities:   []model.VideoQuality(nil),
		KeyAudioTracks: []model.AudioTrack(nil),
		KeyTextTracks:  []model.TextTrack(nil),

		KeyFullscreenActive: false,
		KeyPiPActive:        false,

		KeyCanSetVolume:  model.Unavailable,
		KeyCanFullscreen: model.Unavailable,
		KeyCanPiP:        model.Unavailable,

		KeyControlsVisible: true,
		KeyUserActive:      false,
		KeyPointerOver:     false,
	}
}
