package hls

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Variant is one EXT-X-STREAM-INF entry of a master playlist.
type Variant struct {
	URI       string
	Bandwidth int
	Width     int
	Height    int
	Codecs    string
}

// Rendition is one EXT-X-MEDIA entry (alternate audio or subtitles).
type Rendition struct {
	Type     string
	Name     string
	Language string
	URI      string
	Default  bool
}

type Master struct {
	Variants   []Variant
	Renditions []Rendition
}

type Segment struct {
	Duration float64
	URI      string
}

type MediaPlaylist struct {
	TargetDuration float64
	Segments       []Segment
	Ended          bool
	LowLatency     bool
}

// Duration returns the summed segment durations.
func (p MediaPlaylist) Duration() float64 {
	var total float64
	for _, s := range p.Segments {
		total += s.Duration
	}
	return total
}

// IsMaster reports whether the playlist text declares stream variants.
func IsMaster(data string) bool {
	return strings.Contains(data, "#EXT-X-STREAM-INF")
}

// ParseMaster reads a master playlist. Relative variant and rendition URIs
// are resolved against base.
func ParseMaster(data string, base *url.URL) (Master, error) {
	if !strings.HasPrefix(strings.TrimSpace(data), "#EXTM3U") {
		return Master{}, fmt.Errorf("not an m3u8 playlist")
	}
	var m Master
	lines := strings.Split(data, "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF:"):
			attrs := parseAttributes(strings.TrimPrefix(line, "#EXT-X-STREAM-INF:"))
			v := Variant{Codecs: attrs["CODECS"]}
			v.Bandwidth, _ = strconv.Atoi(attrs["BANDWIDTH"])
			if res := attrs["RESOLUTION"]; res != "" {
				if w, h, ok := parseResolution(res); ok {
					v.Width, v.Height = w, h
				}
			}
			// The variant URI is the next non-comment line.
			for i+1 < len(lines) {
				i++
				next := strings.TrimSpace(lines[i])
				if next == "" || strings.HasPrefix(next, "#") {
					continue
				}
				v.URI = resolveURI(next, base)
				break
			}
			if v.URI != "" {
				m.Variants = append(m.Variants, v)
			}
		case strings.HasPrefix(line, "#EXT-X-MEDIA:"):
			attrs := parseAttributes(strings.TrimPrefix(line, "#EXT-X-MEDIA:"))
			r := Rendition{
				Type:     attrs["TYPE"],
				Name:     attrs["NAME"],
				Language: attrs["LANGUAGE"],
				Default:  attrs["DEFAULT"] == "YES",
			}
			if uri := attrs["URI"]; uri != "" {
				r.URI = resolveURI(uri, base)
			}
			m.Renditions = append(m.Renditions, r)
		}
	}
	if len(m.Variants) == 0 {
		return Master{}, fmt.Errorf("master playlist has no variants")
	}
	return m, nil
}

// ParseMedia reads a media playlist: target duration, segment list, endlist
// marker, and low-latency part hints.
func ParseMedia(data string, base *url.URL) (MediaPlaylist, error) {
	if !strings.HasPrefix(strings.TrimSpace(data), "#EXTM3U") {
		return MediaPlaylist{}, fmt.Errorf("not an m3u8 playlist")
	}
	var p MediaPlaylist
	var pendingDuration float64
	havePending := false

	for _, raw := range strings.Split(data, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "#EXT-X-TARGETDURATION:"):
			p.TargetDuration, _ = strconv.ParseFloat(strings.TrimPrefix(line, "#EXT-X-TARGETDURATION:"), 64)
		case strings.HasPrefix(line, "#EXTINF:"):
			val := strings.TrimPrefix(line, "#EXTINF:")
			if idx := strings.Index(val, ","); idx >= 0 {
				val = val[:idx]
			}
			pendingDuration, _ = strconv.ParseFloat(val, 64)
			havePending = true
		case strings.HasPrefix(line, "#EXT-X-PART") || strings.HasPrefix(line, "#EXT-X-PART-INF"):
			p.LowLatency = true
		case line == "#EXT-X-ENDLIST":
			p.Ended = true
		case line == "" || strings.HasPrefix(line, "#"):
			// Ignore other tags.
		default:
			if havePending {
				p.Segments = append(p.Segments, Segment{
					Duration: pendingDuration,
					URI:      resolveURI(line, base),
				})
				havePending = false
			}
		}
	}
	return p, nil
}

// parseAttributes splits an m3u8 attribute list, honoring quoted values with
// embedded commas.
func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	var key strings.Builder
	var val strings.Builder
	inKey := true
	inQuotes := false

	flush := func() {
		k := strings.TrimSpace(key.String())
		if k != "" {
			attrs[k] = val.String()
		}
		key.Reset()
		val.Reset()
		inKey = true
	}

	for _, r := range s {
		switch {
		case inKey && r == '=':
			inKey = false
		case !inKey && r == '"':
			inQuotes = !inQuotes
		case !inKey && r == ',' && !inQuotes:
			flush()
		case inKey && r == ',':
			flush()
		case inKey:
			key.WriteRune(r)
		default:
			val.WriteRune(r)
		}
	}
	flush()
	return attrs
}

func parseResolution(s string) (int, int, bool) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, err1 := strconv.Atoi(parts[0])
	h, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return w, h, true
}

func resolveURI(uri string, base *url.URL) string {
	if base == nil {
		return uri
	}
	ref, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	return base.ResolveReference(ref).String()
}
