package engine

import (
	"github.com/DoyleJ11/woogles-client/internal/board"
	"github.com/DoyleJ11/woogles-client/internal/clock"
	"github.com/DoyleJ11/woogles-client/internal/wire"
)

// StartingState is the empty state held before any game data arrives.
func StartingState(distribution, layout string) GameState {
	if distribution == "" {
		distribution = board.DistEnglish
	}
	if layout == "" {
		layout = board.LayoutClassic
	}
	return GameState{
		BoardLayout:       layout,
		TileDistribution:  distribution,
		Board:             board.New(board.SizeFor(layout)),
		Pool:              board.Distribution(distribution),
		Players:           make([]Player, 2),
		PlayState:         wire.PlayStatePlaying,
		NickToPlayerOrder: map[string]clock.PlayerOrder{},
		UIDToPlayerOrder:  map[string]clock.PlayerOrder{},
	}
}

// seat keeps a player's identity, last known rack and clock together while
// the seating order is decided.
type seat struct {
	info   wire.PlayerInfo
	rack   string
	millis int
}

// seatsFor returns the two seats in play order. When the second player went
// first the whole seat flips, so a rack or clock can never end up with the
// wrong player.
func seatsFor(r *wire.HistoryRefresher) [2]seat {
	var seats [2]seat
	h := r.History
	for i := range seats {
		if i < len(h.Players) {
			seats[i].info = h.Players[i]
		}
		if i < len(h.LastKnownRacks) {
			seats[i].rack = h.LastKnownRacks[i]
		}
	}
	seats[0].millis = r.TimePlayer1
	seats[1].millis = r.TimePlayer2
	if h.SecondWentFirst {
		seats[0], seats[1] = seats[1], seats[0]
	}
	return seats
}

// RefresherTimes returns the remaining millis for player slots 0 and 1 after
// seating.
func RefresherTimes(r *wire.HistoryRefresher) (p0, p1 int) {
	seats := seatsFor(r)
	return seats[0].millis, seats[1].millis
}

func (s GameState) slotOf(nickname string) int {
	o, ok := s.NickToPlayerOrder[nickname]
	if !ok {
		return s.OnTurn
	}
	if o == clock.P1 {
		return 1
	}
	return 0
}

// twoSeats copies players, padding to two slots.
func twoSeats(players []Player) []Player {
	out := make([]Player, max(len(players), 2))
	copy(out, players)
	return out
}

// OnTurnOrder returns the clock order of the player on turn, or NoPlayer once
// the game is over.
func (s GameState) OnTurnOrder() clock.PlayerOrder {
	if s.PlayState == wire.PlayStateGameOver {
		return clock.NoPlayer
	}
	return clock.OrderOf(s.OnTurn)
}

// Unseen is the pool as a given viewer sees it: their own rack is removed.
func Unseen(s GameState, viewer string) board.Pool {
	p := s.Pool.Copy()
	if o, ok := s.NickToPlayerOrder[viewer]; ok {
		idx := 0
		if o == clock.P1 {
			idx = 1
		}
		p.RemoveRack(s.Players[idx].CurrentRack)
	}
	return p
}
