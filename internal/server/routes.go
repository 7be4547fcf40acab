package server

import (
	"github.com/go-chi/chi/v5"
)

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)

	if s.met != nil {
		s.router.Method("GET", "/metrics", s.met.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(limitBody)
		r.Use(corsMiddleware(s.corsOrigin))
		if s.token != "" {
			r.Use(requireToken(s.token))
		}

		r.Get("/state", s.handleGetState)
		r.Post("/src", s.handleSetSrc)
		r.Post("/preconnect", s.handlePreconnect)

		r.Post("/play", s.handlePlay)
		r.Post("/pause", s.handlePause)
		r.Post("/stop", s.handleStop)
		r.Post("/seek", s.handleSeek)

		r.Put("/volume", s.handleSetVolume)
		r.Put("/muted", s.handleSetMuted)
		r.Put("/rate", s.handleSetRate)
		r.Put("/loop", s.handleSetLoop)

		r.Post("/fullscreen", s.handleFullscreen)
		r.Post("/pip", s.handlePiP)

		r.Get("/tracks", s.handleGetTracks)
		r.Post("/tracks/{kind}/{id}/select", s.handleSelectTrack)

		r.Get("/events/stream", s.handleEventStream)
		r.Get("/events/ws", s.handleEventSocket)

		r.Post("/activity", s.handleActivity)
	})
}
