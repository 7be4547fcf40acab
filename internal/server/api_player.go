package server

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"playerd/internal/model"
	"playerd/internal/player"
	"playerd/internal/state"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.player.State())
}

func (s *Server) handleSetSrc(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Src     string         `json:"src"`
		Sources []model.Source `json:"sources"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	sources := req.Sources
	if req.Src != "" {
		sources = append([]model.Source{model.NewSource(req.Src)}, sources...)
	}
	if len(sources) == 0 {
		writeError(w, http.StatusBadRequest, "src or sources required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.sourceTimeout)
	defer cancel()

	if err := s.player.SetSrc(ctx, sources...); err != nil {
		var perr *model.PlayerError
		if errors.As(err, &perr) {
			writeJSON(w, http.StatusUnprocessableEntity, perr)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"loadingStatus": s.player.Store().Get(state.KeyLoadingStatus),
		"providerType":  s.player.Store().Get(state.KeyProviderType),
		"mediaType":     s.player.Store().Get(state.KeyMediaType),
	})
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if err := s.player.Play(r.Context()); err != nil {
		writeControlError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.player.Pause()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.player.Stop()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Time float64 `json:"time"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.player.Seek(req.Time)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Volume float64 `json:"volume"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.player.SetVolume(req.Volume)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetMuted(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Muted bool `json:"muted"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.player.SetMuted(req.Muted)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetRate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rate float64 `json:"rate"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Rate <= 0 {
		writeError(w, http.StatusBadRequest, "rate must be positive")
		return
	}
	s.player.SetRate(req.Rate)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetLoop(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Loop bool `json:"loop"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.player.SetLoop(req.Loop)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFullscreen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	var err error
	if req.Active {
		err = s.player.EnterFullscreen(r.Context())
	} else {
		err = s.player.ExitFullscreen(r.Context())
	}
	if err != nil {
		writeControlError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePiP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	var err error
	if req.Active {
		err = s.player.EnterPiP(r.Context())
	} else {
		err = s.player.ExitPiP(r.Context())
	}
	if err != nil {
		writeControlError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetTracks(w http.ResponseWriter, r *http.Request) {
	st := s.player.Store()
	writeJSON(w, http.StatusOK, map[string]any{
		"qualities":   st.Get(state.KeyQualities),
		"audioTracks": st.Get(state.KeyAudioTracks),
		"textTracks":  st.Get(state.KeyTextTracks),
	})
}

func (s *Server) handleSelectTrack(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	id := chi.URLParam(r, "id")

	var err error
	switch kind {
	case "quality":
		err = s.player.SelectQuality(r.Context(), id)
	case "audio":
		err = s.player.SelectAudioTrack(r.Context(), id)
	case "text":
		var req struct {
			Mode string `json:"mode"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		mode := model.TextTrackMode(req.Mode)
		switch mode {
		case model.TextTrackDisabled, model.TextTrackHidden, model.TextTrackShowing:
		default:
			writeError(w, http.StatusBadRequest, "invalid text track mode")
			return
		}
		err = s.player.SetTextTrackMode(id, mode)
	default:
		writeError(w, http.StatusNotFound, "unknown track kind")
		return
	}
	if err != nil {
		writeControlError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PointerOver *bool `json:"pointerOver"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PointerOver != nil {
		s.player.SetPointerOver(*req.PointerOver)
	} else {
		s.player.MarkActive()
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePreconnect warms every origin relevant to the source concurrently.
func (s *Server) handlePreconnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Src string `json:"src"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Src == "" {
		writeError(w, http.StatusBadRequest, "src required")
		return
	}

	hints := s.player.PreconnectHints(model.NewSource(req.Src))

	var mu sync.Mutex
	var warmed []string
	g, ctx := errgroup.WithContext(r.Context())
	for _, origin := range hints {
		g.Go(func() error {
			head, err := http.NewRequestWithContext(ctx, http.MethodHead, origin, nil)
			if err != nil {
				return nil
			}
			resp, err := s.httpClient.Do(head)
			if err != nil {
				return nil
			}
			resp.Body.Close()
			mu.Lock()
			warmed = append(warmed, origin)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	writeJSON(w, http.StatusOK, map[string]any{
		"hints":  hints,
		"warmed": warmed,
	})
}

func writeControlError(w http.ResponseWriter, err error) {
	if errors.Is(err, player.ErrNoProvider) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
