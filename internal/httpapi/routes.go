package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/woogles-client/internal/hub"
	"github.com/DoyleJ11/woogles-client/internal/ws"
)

type Deps struct {
	Hub        *hub.Hub
	History    HistoryFetcher
	Joiner     Joiner
	OutboxSize int
	Log        *zap.Logger
}

func SetupRoutes(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.OutboxSize <= 0 {
		d.OutboxSize = 8
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/games/{id}/ws", ws.FeedHandler(d.Hub, d.OutboxSize, d.Log))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Get("/games", ListGames(d.Hub))
		r.Get("/games/{id}", GetGame(d.Hub))
		r.Get("/games/{id}/clock", GetClock(d.Hub))
		if d.History != nil {
			r.Post("/games/{id}/refresh", RefreshGame(d.Hub, d.History, d.Log))
		}
		if d.Joiner != nil {
			r.Post("/games/{id}/join", JoinGame(d.Joiner))
		}
	})
	return r
}
