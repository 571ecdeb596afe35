package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/woogles-client/internal/board"
	"github.com/DoyleJ11/woogles-client/internal/clock"
	"github.com/DoyleJ11/woogles-client/internal/engine"
	"github.com/DoyleJ11/woogles-client/internal/wire"
)

const gameID = "wFQ9dVbX"

// helper: receive one update with a timeout so tests never hang
func recvUpdate(t *testing.T, ch <-chan Update, within time.Duration) Update {
	t.Helper()
	select {
	case u, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return u
	case <-time.After(within):
		t.Fatalf("timed out waiting for update")
		return nil // unreachable
	}
}

// recvState skips clock ticks until the next state update.
func recvState(t *testing.T, ch <-chan Update, within time.Duration) StateUpdate {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case u, ok := <-ch:
			if !ok {
				t.Fatalf("client outbox closed unexpectedly")
			}
			if su, ok := u.(StateUpdate); ok {
				return su
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state update")
			return StateUpdate{}
		}
	}
}

func recvNoState(t *testing.T, ch <-chan Update, within time.Duration) {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case u, ok := <-ch:
			if !ok {
				// channel closed → no further updates possible
				return
			}
			if su, isState := u.(StateUpdate); isState {
				t.Fatalf("expected no state update within %v, got version %d", within, su.Version)
			}
		case <-deadline:
			return
		}
	}
}

func recvView(t *testing.T, s *Session) View {
	t.Helper()
	reply := make(chan View, 1)
	s.Inbox() <- GetState{Reply: reply}
	select {
	case v := <-reply:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for view")
		return View{}
	}
}

func refresher(p1, p2 int) *wire.HistoryRefresher {
	return &wire.HistoryRefresher{
		History: wire.GameHistory{
			UID: gameID,
			Players: []wire.PlayerInfo{
				{Nickname: "césar", UserID: "uid-cesar"},
				{Nickname: "mina", UserID: "uid-mina"},
			},
			LastKnownRacks: []string{"CDEIPTV", "FIMRSUU"},
			PlayState:      wire.PlayStatePlaying,
		},
		TimePlayer1: p1,
		TimePlayer2: p2,
	}
}

func pivot(remaining int) *wire.ServerGameplayEvent {
	return &wire.ServerGameplayEvent{
		GameID: gameID,
		Event: wire.GameEvent{
			Type: wire.EvtTilePlacement, Nickname: "césar", Row: 7, Column: 7,
			Direction: board.Horizontal, PlayedTiles: "PIVOT", Score: 26, Cumulative: 26,
		},
		NewRack:       "EFIKNNV",
		TimeRemaining: remaining,
		Playing:       wire.PlayStatePlaying,
	}
}

func frameOf(t *testing.T, mt wire.MessageType, msg any) wire.Frame {
	t.Helper()
	buf, err := wire.Encode(mt, msg)
	require.NoError(t, err)
	frames, err := wire.Decode(buf)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	return frames[0]
}

func newSession(t *testing.T, opts ...Option) (*Session, chan Update) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s := NewSession(ctx, engine.StartingState("", ""), opts...)
	out := make(chan Update, 16)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}

	first := recvState(t, out, 100*time.Millisecond)
	require.Equal(t, 0, first.Version)
	return s, out
}

func TestSession_FramesAppliedInOrder(t *testing.T) {
	s, out := newSession(t)

	s.Inbox() <- Frames{Frames: []wire.Frame{
		frameOf(t, wire.MsgGameHistoryRefresher, refresher(900000, 850000)),
		frameOf(t, wire.MsgServerGameplayEvent, pivot(880000)),
	}}

	afterRefresh := recvState(t, out, 200*time.Millisecond)
	assert.Equal(t, 1, afterRefresh.Version)
	assert.Equal(t, gameID, afterRefresh.State.GameID)
	assert.Equal(t, "CDEIPTV", afterRefresh.State.Players[0].CurrentRack)
	assert.Equal(t, clock.P0, afterRefresh.Times.ActivePlayer)
	assert.Equal(t, 900000, afterRefresh.Times.P0)

	afterMove := recvState(t, out, 200*time.Millisecond)
	assert.Equal(t, 2, afterMove.Version)
	assert.Equal(t, "EFIKNNV", afterMove.State.Players[0].CurrentRack)
	assert.Equal(t, 26, afterMove.State.Players[0].Score)
	assert.Equal(t, clock.P1, afterMove.Times.ActivePlayer)
	assert.Equal(t, 880000, afterMove.Times.P0)
	assert.InDelta(t, 850000, afterMove.Times.P1, 200)

	s.Inbox() <- Shutdown{}
}

func TestSession_ForeignGameEventIsDropped(t *testing.T) {
	s, out := newSession(t)

	s.Inbox() <- Refresh{Refresher: refresher(900000, 850000)}
	_ = recvState(t, out, 200*time.Millisecond)

	foreign := pivot(880000)
	foreign.GameID = "someOtherGame"
	s.Inbox() <- Frames{Frames: []wire.Frame{frameOf(t, wire.MsgServerGameplayEvent, foreign)}}

	recvNoState(t, out, 150*time.Millisecond)
	v := recvView(t, s)
	assert.Equal(t, 1, v.Version)
	assert.Equal(t, "CDEIPTV", v.State.Players[0].CurrentRack)
}

func TestSession_UnhandledAndBadFramesAreSkipped(t *testing.T) {
	s, out := newSession(t)

	bad := wire.Frame{Type: wire.MsgServerGameplayEvent, Err: errors.New("bad body")}
	chat := frameOf(t, wire.MsgChatMessage, wire.ChatMessage{})
	s.Inbox() <- Frames{Frames: []wire.Frame{bad, chat, frameOf(t, wire.MsgGameHistoryRefresher, refresher(1000, 1000))}}

	su := recvState(t, out, 200*time.Millisecond)
	assert.Equal(t, 1, su.Version)
	assert.Equal(t, gameID, su.State.GameID)
}

func TestSession_ClockTicksThenTimesOut(t *testing.T) {
	s, out := newSession(t)

	s.Inbox() <- Refresh{Refresher: refresher(250, 60000)}

	var ticks []ClockTick
	deadline := time.After(2 * time.Second)
	for {
		select {
		case u := <-out:
			switch u := u.(type) {
			case ClockTick:
				assert.Equal(t, clock.P0, u.Player)
				ticks = append(ticks, u)
			case ClockTimeout:
				assert.Equal(t, clock.P0, u.Player)
				assert.NotEmpty(t, ticks)
				for i := 1; i < len(ticks); i++ {
					assert.Less(t, ticks[i].Millis, ticks[i-1].Millis)
				}
				assert.Equal(t, 0, s.Clock().MillisOf(clock.P0))
				return
			}
		case <-deadline:
			t.Fatalf("clock never timed out; ticks=%v", ticks)
		}
	}
}

type fakeArchiver struct {
	saved chan engine.GameState
}

func (f *fakeArchiver) Save(_ context.Context, s engine.GameState) error {
	f.saved <- s
	return nil
}

func TestSession_GameEndStopsClockAndArchives(t *testing.T) {
	arch := &fakeArchiver{saved: make(chan engine.GameState, 1)}
	s, out := newSession(t, WithArchiver(arch))

	s.Inbox() <- Refresh{Refresher: refresher(900000, 850000)}
	_ = recvState(t, out, 200*time.Millisecond)

	s.Inbox() <- Frames{Frames: []wire.Frame{frameOf(t, wire.MsgGameEndedEvent, wire.GameEndedEvent{
		GameID: gameID,
		Scores: map[string]int{"césar": 412, "mina": 388},
		Winner: "césar",
	})}}

	su := recvState(t, out, 200*time.Millisecond)
	assert.Equal(t, wire.PlayStateGameOver, su.State.PlayState)
	assert.Equal(t, clock.NoPlayer, su.Times.ActivePlayer)
	assert.Equal(t, 412, su.State.Players[0].Score)
	assert.Equal(t, clock.NoPlayer, s.Clock().ActivePlayer())

	select {
	case st := <-arch.saved:
		assert.Equal(t, gameID, st.GameID)
	case <-time.After(time.Second):
		t.Fatalf("finished game was not archived")
	}
}

func TestSession_DropSlowClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewSession(ctx, engine.StartingState("", ""))

	clientOut := make(chan Update, 1)
	s.Inbox() <- Join{ClientID: "ch1", Outbox: clientOut}
	s.Inbox() <- Refresh{Refresher: refresher(900000, 850000)}

	view := recvView(t, s)
	if view.NumClients != 0 {
		t.Fatalf("expected slow client to be dropped; NumClients=%d", view.NumClients)
	}
}

func TestSession_Shutdown_ClosesOutboxesAndStopsClock(t *testing.T) {
	s, out := newSession(t)

	s.Inbox() <- Refresh{Refresher: refresher(300, 300)}
	_ = recvState(t, out, 200*time.Millisecond)
	s.Inbox() <- Shutdown{}

	deadline := time.After(time.Second)
	for {
		select {
		case u, ok := <-out:
			if !ok {
				assert.Equal(t, clock.NoPlayer, s.Clock().ActivePlayer())
				return
			}
			if _, timedOut := u.(ClockTimeout); timedOut {
				t.Fatalf("clock kept running after shutdown")
			}
		case <-deadline:
			t.Fatalf("outbox was not closed on shutdown")
		}
	}
}
