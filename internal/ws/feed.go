package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/woogles-client/internal/hub"
	"github.com/DoyleJ11/woogles-client/internal/session"
	"github.com/DoyleJ11/woogles-client/internal/types"
)

// FeedHandler streams one game's session updates to a local watcher as JSON
// text messages. Watchers never send anything that changes the game.
func FeedHandler(h *hub.Hub, outboxSize int, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "id")
		sess, err := h.Get(r.Context(), gameID)
		if err != nil {
			return
		}
		if sess == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan session.Update, outboxSize)
		clientID := randID(6)

		sess.Inbox() <- session.Join{ClientID: clientID, Outbox: out}
		defer leave(sess, clientID, leaveTimeout)
		log.Debug("watcher joined", zap.String("game_id", gameID), zap.String("client_id", clientID))

		// Watchers only read; CloseRead handles their close frame.
		ctx := conn.CloseRead(r.Context())
		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-out:
				if !ok {
					// Dropped as slow, or the session ended.
					conn.Close(websocket.StatusGoingAway, "session closed")
					return
				}
				payload, err := json.Marshal(toServerMessage(u))
				if err != nil {
					log.Warn("encode update", zap.Error(err))
					continue
				}
				wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				err = conn.Write(wctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					return
				}
			}
		}
	}
}

const leaveTimeout = 2 * time.Second

// leave unregisters a watcher, waiting briefly when the session is busy.
// A session that has shut down no longer reads its inbox.
func leave(sess *session.Session, clientID string, within time.Duration) bool {
	t := time.NewTimer(within)
	defer t.Stop()
	select {
	case sess.Inbox() <- session.Leave{ClientID: clientID}:
		return true
	case <-t.C:
		return false
	}
}

func toServerMessage(u session.Update) types.ServerMessage {
	switch u := u.(type) {
	case session.StateUpdate:
		game := types.NewGameView(u.Version, u.State)
		clk := types.NewClockView(u.Times.P0, u.Times.P1, u.Times.ActivePlayer)
		return types.ServerMessage{Type: "StateUpdate", Version: u.Version, Game: &game, Clock: &clk}
	case session.ClockTick:
		return types.ServerMessage{Type: "ClockTick", Player: string(u.Player), Millis: u.Millis}
	case session.ClockTimeout:
		return types.ServerMessage{Type: "ClockTimeout", Player: string(u.Player)}
	default:
		return types.ServerMessage{Type: "Error", Error: "unknown update"}
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
