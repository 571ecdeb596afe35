package wire

import "github.com/DoyleJ11/woogles-client/internal/board"

// MessageType is the one-byte tag that follows the length prefix of a frame.
type MessageType uint8

const (
	MsgSeekRequest                MessageType = 0
	MsgMatchRequest               MessageType = 1
	MsgSoughtGameProcessEvent     MessageType = 2
	MsgClientGameplayEvent        MessageType = 3
	MsgServerGameplayEvent        MessageType = 4
	MsgGameEndedEvent             MessageType = 5
	MsgGameHistoryRefresher       MessageType = 6
	MsgErrorMessage               MessageType = 7
	MsgNewGameEvent               MessageType = 8
	MsgServerChallengeResultEvent MessageType = 9
	MsgSeekRequests               MessageType = 10
	MsgTimedOut                   MessageType = 13
	MsgChatMessage                MessageType = 20
	MsgUserPresence               MessageType = 22
	MsgServerMessage              MessageType = 24
	MsgReadyForGame               MessageType = 25
	MsgLagMeasurement             MessageType = 26
	MsgJoinPath                   MessageType = 35
)

var messageNames = map[MessageType]string{
	MsgSeekRequest:                "SEEK_REQUEST",
	MsgMatchRequest:               "MATCH_REQUEST",
	MsgSoughtGameProcessEvent:     "SOUGHT_GAME_PROCESS_EVENT",
	MsgClientGameplayEvent:        "CLIENT_GAMEPLAY_EVENT",
	MsgServerGameplayEvent:        "SERVER_GAMEPLAY_EVENT",
	MsgGameEndedEvent:             "GAME_ENDED_EVENT",
	MsgGameHistoryRefresher:       "GAME_HISTORY_REFRESHER",
	MsgErrorMessage:               "ERROR_MESSAGE",
	MsgNewGameEvent:               "NEW_GAME_EVENT",
	MsgServerChallengeResultEvent: "SERVER_CHALLENGE_RESULT_EVENT",
	MsgSeekRequests:               "SEEK_REQUESTS",
	MsgTimedOut:                   "TIMED_OUT",
	MsgChatMessage:                "CHAT_MESSAGE",
	MsgUserPresence:               "USER_PRESENCE",
	MsgServerMessage:              "SERVER_MESSAGE",
	MsgReadyForGame:               "READY_FOR_GAME",
	MsgLagMeasurement:             "LAG_MEASUREMENT",
	MsgJoinPath:                   "JOIN_PATH",
}

func (t MessageType) String() string {
	if n, ok := messageNames[t]; ok {
		return n
	}
	return "UNKNOWN"
}

type PlayState string

const (
	PlayStatePlaying             PlayState = "PLAYING"
	PlayStateWaitingForFinalPass PlayState = "WAITING_FOR_FINAL_PASS"
	PlayStateGameOver            PlayState = "GAME_OVER"
)

type GameEventType string

const (
	EvtTilePlacement                 GameEventType = "TILE_PLACEMENT_MOVE"
	EvtPhonyTilesReturned            GameEventType = "PHONY_TILES_RETURNED"
	EvtPass                          GameEventType = "PASS"
	EvtChallengeBonus                GameEventType = "CHALLENGE_BONUS"
	EvtExchange                      GameEventType = "EXCHANGE"
	EvtEndRackPoints                 GameEventType = "END_RACK_PTS"
	EvtTimePenalty                   GameEventType = "TIME_PENALTY"
	EvtEndRackPenalty                GameEventType = "END_RACK_PENALTY"
	EvtUnsuccessfulChallengeTurnLoss GameEventType = "UNSUCCESSFUL_CHALLENGE_TURN_LOSS"
	EvtChallenge                     GameEventType = "CHALLENGE"
)

// GameEvent is one atomic event inside a turn.
type GameEvent struct {
	Type            GameEventType   `json:"type"`
	Nickname        string          `json:"nickname"`
	Rack            string          `json:"rack,omitempty"`
	Position        string          `json:"position,omitempty"`
	Row             int             `json:"row"`
	Column          int             `json:"column"`
	Direction       board.Direction `json:"direction,omitempty"`
	PlayedTiles     string          `json:"played_tiles,omitempty"`
	Exchanged       string          `json:"exchanged,omitempty"`
	Score           int             `json:"score"`
	Bonus           int             `json:"bonus,omitempty"`
	Cumulative      int             `json:"cumulative"`
	EndRackPoints   int             `json:"end_rack_points,omitempty"`
	LostScore       int             `json:"lost_score,omitempty"`
	IsBingo         bool            `json:"is_bingo,omitempty"`
	WordsFormed     []string        `json:"words_formed,omitempty"`
	MillisRemaining int             `json:"millis_remaining,omitempty"`
}

type PlayerInfo struct {
	Nickname string `json:"nickname"`
	UserID   string `json:"user_id"`
	FullName string `json:"full_name,omitempty"`
}

type GameTurn struct {
	Events []GameEvent `json:"events"`
}

type GameHistory struct {
	UID                string       `json:"uid"`
	Players            []PlayerInfo `json:"players"`
	SecondWentFirst    bool         `json:"second_went_first"`
	Turns              []GameTurn   `json:"turns"`
	LastKnownRacks     []string     `json:"last_known_racks"`
	PlayState          PlayState    `json:"play_state"`
	Lexicon            string       `json:"lexicon,omitempty"`
	BoardLayout        string       `json:"board_layout,omitempty"`
	LetterDistribution string       `json:"letter_distribution,omitempty"`
	FinalScores        []int        `json:"final_scores,omitempty"`
}

// HistoryRefresher replaces local game state wholesale. TimePlayer1 and
// TimePlayer2 follow the order of History.Players as sent.
type HistoryRefresher struct {
	History            GameHistory `json:"history"`
	TimePlayer1        int         `json:"time_player1"`
	TimePlayer2        int         `json:"time_player2"`
	MaxOvertimeMinutes int         `json:"max_overtime_minutes,omitempty"`
	OutstandingEvent   *GameEvent  `json:"outstanding_event,omitempty"`
}

type ServerGameplayEvent struct {
	Event         GameEvent `json:"event"`
	GameID        string    `json:"game_id"`
	NewRack       string    `json:"new_rack"`
	TimeRemaining int       `json:"time_remaining"`
	Playing       PlayState `json:"playing"`
	UserID        string    `json:"user_id,omitempty"`
}

type GameEndedEvent struct {
	GameID    string         `json:"game_id"`
	Scores    map[string]int `json:"scores,omitempty"`
	EndReason string         `json:"end_reason,omitempty"`
	Winner    string         `json:"winner,omitempty"`
	Loser     string         `json:"loser,omitempty"`
	Tie       bool           `json:"tie,omitempty"`
}

type ServerChallengeResultEvent struct {
	GameID        string `json:"game_id"`
	Valid         bool   `json:"valid"`
	Challenger    string `json:"challenger"`
	ChallengeRule string `json:"challenge_rule,omitempty"`
	ReturnedTiles string `json:"returned_tiles,omitempty"`
}

type ClientGameplayEvent struct {
	Type           string `json:"type"`
	GameID         string `json:"game_id"`
	PositionCoords string `json:"position_coords,omitempty"`
	Tiles          string `json:"tiles,omitempty"`
}

type NewGameEvent struct {
	GameID       string `json:"game_id"`
	RequesterCID string `json:"requester_cid,omitempty"`
	AccepterCID  string `json:"accepter_cid,omitempty"`
}

type TimedOut struct {
	GameID string `json:"game_id"`
	UserID string `json:"user_id"`
}

type ChatMessage struct {
	ID        string `json:"id,omitempty"`
	Username  string `json:"username"`
	UserID    string `json:"user_id,omitempty"`
	Channel   string `json:"channel"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type UserPresence struct {
	Username    string `json:"username"`
	UserID      string `json:"user_id"`
	Channel     string `json:"channel"`
	IsAnonymous bool   `json:"is_anonymous,omitempty"`
	Deleting    bool   `json:"deleting,omitempty"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

type ServerMessage struct {
	Message string `json:"message"`
}

type ReadyForGame struct {
	GameID string `json:"game_id"`
}

type LagMeasurement struct {
	LagMs int `json:"lag_ms"`
}

type JoinPath struct {
	Path string `json:"path"`
}

type SeekRequest struct {
	User            PlayerInfo `json:"user"`
	InitialTimeSecs int        `json:"initial_time_seconds"`
	IncrementSecs   int        `json:"increment_seconds,omitempty"`
	Lexicon         string     `json:"lexicon,omitempty"`
}

type SeekRequests struct {
	Requests []SeekRequest `json:"requests"`
}

type SoughtGameProcessEvent struct {
	RequestID string `json:"request_id"`
}

type MatchRequest struct {
	RequestID     string     `json:"request_id"`
	ReceivingUser PlayerInfo `json:"receiving_user"`
}
