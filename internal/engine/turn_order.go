package engine

import "github.com/DoyleJ11/woogles-client/internal/wire"

// Turn is one or more consecutive events by the same player.
type Turn struct {
	Events []wire.GameEvent
}

func (t Turn) Nickname() string {
	if len(t.Events) == 0 {
		return ""
	}
	return t.Events[0].Nickname
}

// ChallengedOff reports a play that was challenged off: exactly a placement
// followed by its returned tiles.
func (t Turn) ChallengedOff() bool {
	return len(t.Events) == 2 &&
		t.Events[0].Type == wire.EvtTilePlacement &&
		t.Events[1].Type == wire.EvtPhonyTilesReturned
}

// Score is the turn's net change to the player's total.
func (t Turn) Score() int {
	total := 0
	for _, e := range t.Events {
		total += eventDelta(e)
	}
	return total
}

// Cumulative is the player's total after the turn.
func (t Turn) Cumulative() int {
	if len(t.Events) == 0 {
		return 0
	}
	return t.Events[len(t.Events)-1].Cumulative
}

func eventDelta(e wire.GameEvent) int {
	switch e.Type {
	case wire.EvtTilePlacement:
		return e.Score
	case wire.EvtChallengeBonus:
		return e.Bonus
	case wire.EvtEndRackPoints:
		return e.EndRackPoints
	case wire.EvtPhonyTilesReturned, wire.EvtTimePenalty, wire.EvtEndRackPenalty:
		return -e.LostScore
	default:
		return 0
	}
}

func nextOnTurn(idx int) int {
	return (idx + 1) % 2
}

// setOnTurn points the state at idx and keeps the per-player flags in step.
// Nobody is on turn once the game is over.
func setOnTurn(s *GameState, idx int) {
	s.OnTurn = idx
	over := s.PlayState == wire.PlayStateGameOver
	for i := range s.Players {
		s.Players[i].OnTurn = !over && i == idx
	}
}
