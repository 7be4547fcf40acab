package backend

import (
	"net/url"

	"playerd/internal/model"
)

// Loader pairs a source-matching predicate with the logic to instantiate the
// corresponding backend. Loaders must not mutate shared state in CanPlay.
type Loader interface {
	Name() string
	CanPlay(src model.Source) bool
	MediaType(src model.Source) model.MediaType
	New(opts Options) Provider
}

// Preconnector is implemented by loaders that benefit from warming origins
// beyond the source itself (embed SDK and metadata hosts).
type Preconnector interface {
	PreconnectHints(src model.Source) []string
}

// FindLoader returns the first loader in order whose CanPlay accepts the
// source, or nil. Ordering is policy: segmented-manifest formats precede
// generic progressive playback so ambiguous extensions resolve correctly.
func FindLoader(src model.Source, loaders []Loader) Loader {
	for _, l := range loaders {
		if l.CanPlay(src) {
			return l
		}
	}
	return nil
}

// DetectMediaType resolves the source to a loader and asks it for the media
// classification.
func DetectMediaType(src model.Source, loaders []Loader) model.MediaType {
	if l := FindLoader(src, loaders); l != nil {
		return l.MediaType(src)
	}
	return model.MediaTypeUnknown
}

// PreconnectHints returns the origins worth warming before loading the
// source: the source origin plus whatever the resolved loader adds.
func PreconnectHints(src model.Source, loaders []Loader) []string {
	var hints []string
	seen := make(map[string]struct{})
	add := func(origin string) {
		if origin == "" {
			return
		}
		if _, ok := seen[origin]; ok {
			return
		}
		seen[origin] = struct{}{}
		hints = append(hints, origin)
	}

	add(Origin(src.Src))
	if l := FindLoader(src, loaders); l != nil {
		if p, ok := l.(Preconnector); ok {
			for _, h := range p.PreconnectHints(src) {
				add(h)
			}
		}
	}
	return hints
}

// Origin returns the scheme://host origin of an absolute URL, or "".
func Origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
