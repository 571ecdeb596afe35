package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/woogles-client/internal/engine"
	"github.com/DoyleJ11/woogles-client/internal/hub"
	"github.com/DoyleJ11/woogles-client/internal/session"
	"github.com/DoyleJ11/woogles-client/internal/types"
)

func feedServer(t *testing.T, h *hub.Hub) string {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/games/{id}/ws", FeedHandler(h, 8, nil))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(rctx)
	require.NoError(t, err)
	var msg types.ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestFeed_StreamsStateUpdates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := hub.NewHub(ctx, nil)
	sess, err := h.Ensure(ctx, gameID)
	require.NoError(t, err)

	base := feedServer(t, h)
	conn, _, err := websocket.Dial(ctx, base+"/games/"+gameID+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	first := readMessage(t, ctx, conn)
	assert.Equal(t, "StateUpdate", first.Type)
	require.NotNil(t, first.Game)
	assert.Equal(t, 0, first.Version)

	sess.Inbox() <- session.Refresh{Refresher: refresher()}

	// Clock ticks may interleave; wait for the next state.
	for {
		msg := readMessage(t, ctx, conn)
		if msg.Type != "StateUpdate" {
			continue
		}
		assert.Equal(t, 1, msg.Version)
		assert.Equal(t, gameID, msg.Game.GameID)
		assert.Equal(t, "césar", msg.Game.Players[0].Nickname)
		require.NotNil(t, msg.Clock)
		assert.Equal(t, "15:00", msg.Clock.P0)
		assert.Equal(t, "p0", msg.Clock.Active)
		return
	}
}

func TestFeed_UnknownGame(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := hub.NewHub(ctx, nil)

	base := feedServer(t, h)
	_, resp, err := websocket.Dial(ctx, base+"/games/nope/ws", nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
}

// fillInbox queues GetState requests until the session inbox is full.
func fillInbox(s *session.Session) {
	for {
		select {
		case s.Inbox() <- session.GetState{Reply: make(chan session.View, 1)}:
		default:
			return
		}
	}
}

func TestLeave_WaitsForBusySession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sess := session.NewSession(ctx, engine.StartingState("", ""))

	out := make(chan session.Update, 4)
	sess.Inbox() <- session.Join{ClientID: "w1", Outbox: out}
	// Nobody reads this outbox, so the session loop blocks on its join.
	stuck := make(chan session.Update)
	sess.Inbox() <- session.Join{ClientID: "stuck", Outbox: stuck}
	time.Sleep(20 * time.Millisecond)
	fillInbox(sess)

	left := make(chan bool, 1)
	go func() { left <- leave(sess, "w1", 2*time.Second) }()

	time.Sleep(50 * time.Millisecond)
	<-stuck

	select {
	case ok := <-left:
		assert.True(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatalf("leave never returned")
	}
	assert.Equal(t, 1, sessionView(t, sess).NumClients)
}

func TestLeave_GivesUpOnStoppedSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sess := session.NewSession(ctx, engine.StartingState("", ""))
	sess.Inbox() <- session.Shutdown{}
	time.Sleep(20 * time.Millisecond)
	fillInbox(sess)

	assert.False(t, leave(sess, "w1", 50*time.Millisecond))
}
