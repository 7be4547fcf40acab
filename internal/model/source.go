package model

import (
	"net/url"
	"path"
	"strings"
)

// Source identifies what to play and, optionally, how. A bare URL string is
// the common case; the optional fields carry explicit hints a caller may
// already know (MIME type, preferred backend, duration for sources whose
// container is never inspected).
type Source struct {
	Src      string       `json:"src"`
	Type     string       `json:"type,omitempty"`
	Provider ProviderType `json:"provider,omitempty"`
	Duration float64      `json:"duration,omitempty"`
}

func NewSource(src string) Source {
	return Source{Src: src}
}

// Ext returns the lowercase file extension of the source path without the
// leading dot, or "" when there is none.
func (s Source) Ext() string {
	raw := s.Src
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		raw = u.Path
	}
	ext := path.Ext(raw)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// URLs returns the src values of a source list, in order.
func URLs(sources []Source) []string {
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = s.Src
	}
	return out
}
