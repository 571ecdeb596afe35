package types

import (
	"github.com/DoyleJ11/woogles-client/internal/clock"
	"github.com/DoyleJ11/woogles-client/internal/engine"
)

type PlayerView struct {
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	Rack     string `json:"rack,omitempty"`
	OnTurn   bool   `json:"onturn"`
}

type TurnView struct {
	Nickname   string `json:"nickname"`
	Score      int    `json:"score"`
	Cumulative int    `json:"cumulative"`
}

type GameView struct {
	GameID    string         `json:"game_id"`
	PlayState string         `json:"play_state"`
	OnTurn    int            `json:"onturn"`
	Version   int            `json:"version"`
	Players   []PlayerView   `json:"players"`
	Board     []string       `json:"board"`
	Turns     []TurnView     `json:"turns"`
	Pool      map[string]int `json:"pool"`
}

type ClockView struct {
	P0     string `json:"p0"`
	P1     string `json:"p1"`
	Active string `json:"active"`
}

type ServerMessage struct {
	Type    string     `json:"type"` // "StateUpdate" | "ClockTick" | "ClockTimeout" | "Error"
	Version int        `json:"version,omitempty"`
	Game    *GameView  `json:"game,omitempty"`
	Clock   *ClockView `json:"clock,omitempty"`
	Player  string     `json:"player,omitempty"`
	Millis  int        `json:"millis,omitempty"`
	Error   string     `json:"error,omitempty"`
}

func NewGameView(version int, s engine.GameState) GameView {
	v := GameView{
		GameID:    s.GameID,
		PlayState: string(s.PlayState),
		OnTurn:    s.OnTurn,
		Version:   version,
		Players:   make([]PlayerView, 0, len(s.Players)),
		Turns:     make([]TurnView, 0, len(s.Turns)+1),
		Pool:      make(map[string]int, len(s.Pool)),
	}
	for _, p := range s.Players {
		v.Players = append(v.Players, PlayerView{
			Nickname: p.Nickname,
			Score:    p.Score,
			Rack:     p.CurrentRack,
			OnTurn:   p.OnTurn,
		})
	}
	if s.Board != nil {
		v.Board = s.Board.Rows()
	}
	turns := s.Turns
	if len(s.CurrentTurn.Events) > 0 {
		turns = append(turns[:len(turns):len(turns)], s.CurrentTurn)
	}
	for _, t := range turns {
		v.Turns = append(v.Turns, TurnView{Nickname: t.Nickname(), Score: t.Score(), Cumulative: t.Cumulative()})
	}
	for letter, n := range s.Pool {
		if n > 0 {
			v.Pool[string(letter)] = n
		}
	}
	return v
}

func NewClockView(p0, p1 int, active clock.PlayerOrder) ClockView {
	return ClockView{
		P0:     clock.MillisToTimeStr(p0),
		P1:     clock.MillisToTimeStr(p1),
		Active: string(active),
	}
}
