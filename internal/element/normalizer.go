package element

import (
	"playerd/internal/events"
	"playerd/internal/model"
)

// mediaErrorMessages is the fixed code-to-message table applied to platform
// transport errors. Code 0 is the fallback when no native error is present.
var mediaErrorMessages = map[int]string{
	0: "unknown media error",
	1: "media playback aborted",
	2: "a network error caused the media download to fail",
	3: "media decoding failed",
	4: "media source not supported",
	7: "playback blocked pending user gesture",
}

// MediaErrorMessage resolves a platform error code to its stable message.
func MediaErrorMessage(code int) string {
	if msg, ok := mediaErrorMessages[code]; ok {
		return msg
	}
	return mediaErrorMessages[0]
}

// Normalizer binds to an element and republishes its transport events onto
// the outward bus in the provider vocabulary, one to one. No event is
// synthesized or suppressed. Buffered-range lists become plain start/end
// pairs and the platform error object is mapped through the fixed
// code-to-message table.
type Normalizer struct {
	el   *Element
	out  *events.Bus
	offs []func()
}

func NewNormalizer(el *Element, out *events.Bus) *Normalizer {
	n := &Normalizer{el: el, out: out}
	n.bind()
	return n
}

func (n *Normalizer) bind() {
	src := n.el.Events()

	forward := func(name string) {
		n.offs = append(n.offs, src.On(name, func(args ...any) {
			n.out.Emit(name, args...)
		}))
	}
	for _, name := range []string{
		events.LoadStart, events.LoadedMetadata, events.LoadedData,
		events.CanPlay, events.CanPlayThrough,
		events.Play, events.Pause, events.Playing, events.Waiting,
		events.Seeking, events.Seeked,
		events.TimeUpdate, events.DurationChange, events.Ended,
		events.VolumeChange, events.RateChange,
	} {
		forward(name)
	}

	n.offs = append(n.offs, src.On(events.Progress, func(args ...any) {
		var pairs []model.TimeRange
		if len(args) > 0 {
			if r, ok := args[0].(model.Ranges); ok {
				pairs = []model.TimeRange(r)
			}
		}
		n.out.Emit(events.Progress, pairs)
	}))

	n.offs = append(n.offs, src.On(events.Error, func(args ...any) {
		code := 0
		var details any
		if len(args) > 0 {
			if me, ok := args[0].(*MediaError); ok && me != nil {
				code = me.Code
				details = me
			}
		}
		n.out.Emit(events.Error, code, MediaErrorMessage(code), details)
	}))
}

// Destroy detaches every native listener.
func (n *Normalizer) Destroy() {
	for _, off := range n.offs {
		off()
	}
	n.offs = nil
}
