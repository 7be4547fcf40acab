// Package embedbase carries the behavior the two embed-iframe backends
// share: a rate-limited oEmbed metadata client and the coarse buffered-range
// simulation remote players report.
package embedbase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"playerd/internal/element"
	"playerd/internal/events"
	"playerd/internal/model"
)

const maxOEmbedBytes = 1 << 20

// OEmbed is the subset of an oEmbed response embed backends consume.
type OEmbed struct {
	Title        string  `json:"title"`
	AuthorName   string  `json:"author_name"`
	ProviderName string  `json:"provider_name"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Duration     float64 `json:"duration"`
	ThumbnailURL string  `json:"thumbnail_url"`
}

// Client fetches oEmbed metadata. Lookups are rate limited so a burst of
// source changes cannot hammer the remote API.
type Client struct {
	http     *http.Client
	limiter  *rate.Limiter
	endpoint string
}

func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		http:     httpClient,
		limiter:  rate.NewLimiter(rate.Limit(4), 2),
		endpoint: endpoint,
	}
}

// Lookup resolves oEmbed metadata for target.
func (c *Client) Lookup(ctx context.Context, target string) (*OEmbed, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid oembed endpoint: %w", err)
	}
	q := u.Query()
	q.Set("url", target)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("embed rejected: status %d", resp.StatusCode)
	default:
		return nil, fmt.Errorf("oembed lookup failed: status %d", resp.StatusCode)
	}

	var meta OEmbed
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxOEmbedBytes)).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decoding oembed response: %w", err)
	}
	return &meta, nil
}

// BindCoarseBuffer simulates the coarse buffered reporting of remote embed
// players: on every position change the buffered range becomes
// [0, position+lookahead] clamped to the duration. The returned func
// detaches the binding.
func BindCoarseBuffer(el *element.Element, lookahead float64) func() {
	return el.Events().On(events.TimeUpdate, func(args ...any) {
		if len(args) == 0 {
			return
		}
		pos, ok := args[0].(float64)
		if !ok {
			return
		}
		end := pos + lookahead
		if d := el.Duration(); d > 0 && end > d {
			end = d
		}
		el.SetBuffered(model.Ranges{{Start: 0, End: end}})
	})
}
