package engine

import (
	"fmt"
	"slices"

	"github.com/DoyleJ11/woogles-client/internal/board"
	"github.com/DoyleJ11/woogles-client/internal/clock"
	"github.com/DoyleJ11/woogles-client/internal/wire"
)

type Player struct {
	UserID      string
	Nickname    string
	FullName    string
	CurrentRack string
	Score       int
	OnTurn      bool
}

// GameState is the local mirror of one game. Values returned by the reducer
// are never mutated afterwards; every change produces a new GameState.
type GameState struct {
	GameID           string
	BoardLayout      string
	TileDistribution string
	Board            *board.Board
	Pool             board.Pool
	Players          []Player
	Turns            []Turn
	CurrentTurn      Turn
	OnTurn           int
	LastEvent        *wire.GameEvent
	PlayState        wire.PlayState

	NickToPlayerOrder map[string]clock.PlayerOrder
	UIDToPlayerOrder  map[string]clock.PlayerOrder
}

type Action interface{ isAction() }

type RefreshHistory struct {
	Refresher *wire.HistoryRefresher
}

type AddGameEvent struct {
	Event *wire.ServerGameplayEvent
}

type EndGame struct {
	Event *wire.GameEndedEvent
}

type ClearGame struct{}

func (RefreshHistory) isAction() {}
func (AddGameEvent) isAction()   {}
func (EndGame) isAction()        {}
func (ClearGame) isAction()      {}

// Reduce applies one action. An action type without a case is a bug in the
// caller and panics.
func Reduce(s GameState, a Action) GameState {
	switch act := a.(type) {
	case RefreshHistory:
		return ApplyHistoryRefresher(s, act.Refresher)
	case AddGameEvent:
		return ApplySingleMove(s, act.Event)
	case EndGame:
		return applyGameEnded(s, act.Event)
	case ClearGame:
		return StartingState(s.TileDistribution, s.BoardLayout)
	default:
		panic(fmt.Sprintf("engine: unhandled action %T", a))
	}
}

// ApplyHistoryRefresher rebuilds the whole game from a snapshot. Only the
// tile distribution is carried over from s, and only when the snapshot does
// not name one.
func ApplyHistoryRefresher(s GameState, r *wire.HistoryRefresher) GameState {
	if r == nil {
		return s
	}
	h := r.History

	dist := h.LetterDistribution
	if dist == "" {
		dist = s.TileDistribution
	}
	layout := h.BoardLayout
	if layout == "" {
		layout = s.BoardLayout
	}
	ns := StartingState(dist, layout)
	ns.GameID = h.UID
	if h.PlayState != "" {
		ns.PlayState = h.PlayState
	}

	for i, st := range seatsFor(r) {
		ns.Players[i] = Player{
			UserID:      st.info.UserID,
			Nickname:    st.info.Nickname,
			FullName:    st.info.FullName,
			CurrentRack: st.rack,
		}
		ns.NickToPlayerOrder[st.info.Nickname] = clock.OrderOf(i)
		ns.UIDToPlayerOrder[st.info.UserID] = clock.OrderOf(i)
	}

	onturn := 0
	for _, t := range h.Turns {
		turn := Turn{Events: slices.Clone(t.Events)}
		if !turn.ChallengedOff() {
			for _, evt := range turn.Events {
				if evt.Type == wire.EvtTilePlacement {
					placeEvent(ns.Board, ns.Pool, evt)
				}
			}
		}
		if n := len(turn.Events); n > 0 {
			last := turn.Events[n-1]
			ns.Players[onturn].Score = last.Cumulative
			ns.LastEvent = &last
		}
		ns.Turns = append(ns.Turns, turn)
		onturn = nextOnTurn(onturn)
	}

	setOnTurn(&ns, onturn)
	return ns
}

// ApplySingleMove folds one server event into s. Events for another game
// return s unchanged.
func ApplySingleMove(s GameState, sge *wire.ServerGameplayEvent) GameState {
	if sge == nil || sge.GameID != s.GameID {
		return s
	}
	evt := sge.Event
	actor := s.slotOf(evt.Nickname)

	ns := s
	if s.LastEvent != nil && s.LastEvent.Nickname != evt.Nickname {
		if len(s.CurrentTurn.Events) > 0 {
			ns.Turns = append(slices.Clip(s.Turns), s.CurrentTurn)
		}
		ns.CurrentTurn = Turn{Events: []wire.GameEvent{evt}}
	} else if n := len(s.Turns); len(s.CurrentTurn.Events) == 0 && n > 0 && s.Turns[n-1].Nickname() == evt.Nickname {
		// A snapshot closed the actor's last turn; reopen it.
		ns.Turns = slices.Clip(s.Turns[:n-1])
		ns.CurrentTurn = Turn{Events: append(slices.Clone(s.Turns[n-1].Events), evt)}
	} else {
		ns.CurrentTurn = Turn{Events: append(slices.Clone(s.CurrentTurn.Events), evt)}
	}

	if evt.Type == wire.EvtTilePlacement {
		ns.Board = s.Board.Copy()
		if ns.Board == nil {
			ns.Board = board.New(board.SizeFor(s.BoardLayout))
		}
		ns.Pool = s.Pool.Copy()
		placeEvent(ns.Board, ns.Pool, evt)
	}

	ns.Players = twoSeats(s.Players)
	if evt.Type == wire.EvtTilePlacement || evt.Type == wire.EvtExchange {
		ns.Players[actor].CurrentRack = sge.NewRack
	}
	ns.Players[actor].Score = evt.Cumulative
	if sge.Playing != "" {
		ns.PlayState = sge.Playing
	}
	ns.LastEvent = &evt
	setOnTurn(&ns, nextOnTurn(actor))
	return ns
}

func applyGameEnded(s GameState, e *wire.GameEndedEvent) GameState {
	if e == nil || e.GameID != s.GameID {
		return s
	}
	ns := s
	ns.PlayState = wire.PlayStateGameOver
	ns.Players = twoSeats(s.Players)
	for i := range ns.Players {
		if score, ok := e.Scores[ns.Players[i].Nickname]; ok {
			ns.Players[i].Score = score
		}
	}
	setOnTurn(&ns, s.OnTurn)
	return ns
}

func placeEvent(b *board.Board, pool board.Pool, evt wire.GameEvent) {
	for _, t := range b.PlaceTiles(evt.Row, evt.Column, evt.Direction, evt.PlayedTiles) {
		pool.Remove(t)
	}
}
