package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/woogles-client/internal/clock"
	"github.com/DoyleJ11/woogles-client/internal/hub"
	"github.com/DoyleJ11/woogles-client/internal/session"
	"github.com/DoyleJ11/woogles-client/internal/types"
	"github.com/DoyleJ11/woogles-client/internal/wire"
	"github.com/DoyleJ11/woogles-client/internal/ws"
)

// HistoryFetcher loads a full game snapshot from the API.
type HistoryFetcher interface {
	GetGameHistory(ctx context.Context, gameID string) (*wire.HistoryRefresher, error)
}

// Joiner subscribes the upstream socket to a game.
type Joiner interface {
	Join(ctx context.Context, gameID string) error
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ServerMessage{Type: "Error", Error: msg})
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func sessionFor(h *hub.Hub, w http.ResponseWriter, r *http.Request) *session.Session {
	s, err := h.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return nil
	}
	if s == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return nil
	}
	return s
}

func ListGames(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan []string, 1)
		h.Inbox() <- hub.ListSessions{Reply: reply}
		select {
		case ids := <-reply:
			writeJSON(w, http.StatusOK, struct {
				Games []string `json:"games"`
			}{Games: ids})
		case <-r.Context().Done():
		}
	}
}

func GetGame(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFor(h, w, r)
		if s == nil {
			return
		}
		reply := make(chan session.View, 1)
		s.Inbox() <- session.GetState{Reply: reply}
		select {
		case v := <-reply:
			writeJSON(w, http.StatusOK, types.NewGameView(v.Version, v.State))
		case <-r.Context().Done():
		}
	}
}

func GetClock(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFor(h, w, r)
		if s == nil {
			return
		}
		c := s.Clock()
		writeJSON(w, http.StatusOK, types.NewClockView(c.MillisOf(clock.P0), c.MillisOf(clock.P1), c.ActivePlayer()))
	}
}

func RefreshGame(h *hub.Hub, f HistoryFetcher, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "id")
		hist, err := f.GetGameHistory(r.Context(), gameID)
		if err != nil {
			log.Warn("fetch game history", zap.String("game_id", gameID), zap.Error(err))
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		s, err := h.Ensure(r.Context(), gameID)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		s.Inbox() <- session.Refresh{Refresher: hist}
		w.WriteHeader(http.StatusAccepted)
	}
}

func JoinGame(j Joiner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := j.Join(r.Context(), chi.URLParam(r, "id"))
		switch {
		case errors.Is(err, ws.ErrNotConnected):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		case err != nil:
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			w.WriteHeader(http.StatusAccepted)
		}
	}
}

// requestLogger logs one line per request through zap.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
