package dash

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MPD mirrors the subset of a DASH manifest this engine consumes.
type MPD struct {
	XMLName                   xml.Name `xml:"MPD"`
	Type                      string   `xml:"type,attr"`
	MediaPresentationDuration string   `xml:"mediaPresentationDuration,attr"`
	Periods                   []Period `xml:"Period"`
}

type Period struct {
	AdaptationSets []AdaptationSet `xml:"AdaptationSet"`
}

type AdaptationSet struct {
	ContentType     string           `xml:"contentType,attr"`
	MimeType        string           `xml:"mimeType,attr"`
	Lang            string           `xml:"lang,attr"`
	Label           string           `xml:"label,attr"`
	Representations []Representation `xml:"Representation"`
}

type Representation struct {
	ID        string `xml:"id,attr"`
	Bandwidth int    `xml:"bandwidth,attr"`
	Width     int    `xml:"width,attr"`
	Height    int    `xml:"height,attr"`
	Codecs    string `xml:"codecs,attr"`
}

// IsVideo classifies the adaptation set by contentType or mimeType prefix.
func (a AdaptationSet) IsVideo() bool {
	return a.ContentType == "video" || strings.HasPrefix(a.MimeType, "video/")
}

func (a AdaptationSet) IsAudio() bool {
	return a.ContentType == "audio" || strings.HasPrefix(a.MimeType, "audio/")
}

// Dynamic reports whether the manifest describes a live presentation.
func (m MPD) Dynamic() bool { return m.Type == "dynamic" }

// Duration returns the media presentation duration in seconds, 0 when
// absent or dynamic.
func (m MPD) Duration() float64 {
	d, err := parseISODuration(m.MediaPresentationDuration)
	if err != nil {
		return 0
	}
	return d
}

func ParseMPD(data []byte) (MPD, error) {
	var m MPD
	if err := xml.Unmarshal(data, &m); err != nil {
		return MPD{}, fmt.Errorf("parsing mpd: %w", err)
	}
	if len(m.Periods) == 0 {
		return MPD{}, fmt.Errorf("mpd has no periods")
	}
	return m, nil
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// parseISODuration reads the xs:duration subset MPD manifests use
// (days/hours/minutes/seconds; year and month fields are not meaningful for
// media durations).
func parseISODuration(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	match := isoDurationRe.FindStringSubmatch(s)
	if match == nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	var total float64
	for i, mult := range []float64{86400, 3600, 60, 1} {
		if match[i+1] == "" {
			continue
		}
		v, err := strconv.ParseFloat(match[i+1], 64)
		if err != nil {
			return 0, err
		}
		total += v * mult
	}
	return total, nil
}
