// Package server exposes the playback orchestrator over HTTP: a JSON control
// API, an SSE event stream, a websocket event feed and a metrics endpoint.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"playerd/internal/metrics"
	"playerd/internal/player"
)

type Server struct {
	router        chi.Router
	player        *player.Player
	met           *metrics.Metrics
	corsOrigin    string
	token         string
	sourceTimeout time.Duration
	httpClient    *http.Client
}

type Option func(*Server)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.met = m }
}

func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.corsOrigin = origin }
}

// WithToken enables bearer-token auth on the API routes.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

func WithSourceTimeout(d time.Duration) Option {
	return func(s *Server) { s.sourceTimeout = d }
}

func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) { s.httpClient = c }
}

func NewServer(p *player.Player, opts ...Option) *Server {
	srv := &Server{
		router:        chi.NewRouter(),
		player:        p,
		sourceTimeout: 30 * time.Second,
		httpClient:    http.DefaultClient,
	}
	for _, o := range opts {
		o(srv)
	}
	srv.router.Use(middleware.Logger)
	srv.router.Use(middleware.Recoverer)
	srv.routes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
