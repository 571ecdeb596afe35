package wire

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// A frame is [uint16 big-endian length of tag+body][uint8 tag][body].
const (
	lengthSize = 2
	tagSize    = 1
	// MaxBody is the largest body a single frame can carry.
	MaxBody = math.MaxUint16 - tagSize
)

var ErrShortHeader = errors.New("short frame header")
var ErrShortFrame = errors.New("frame length exceeds buffer")
var ErrEmptyFrame = errors.New("frame has no message type")
var ErrFrameTooLarge = errors.New("frame body too large")

type Frame struct {
	Type MessageType
	Body []byte
	// Payload is a pointer to the decoded record, or nil when the tag is
	// unknown or the body failed to decode.
	Payload any
	// Err is set when a known tag carried a body that did not decode.
	Err error
}

// Decode splits one socket delivery into frames, left to right. Frames
// decoded before a framing error are returned along with the error.
func Decode(buf []byte) ([]Frame, error) {
	var frames []Frame
	for len(buf) > 0 {
		if len(buf) < lengthSize {
			return frames, ErrShortHeader
		}
		n := int(binary.BigEndian.Uint16(buf[:lengthSize]))
		buf = buf[lengthSize:]
		if n == 0 {
			return frames, ErrEmptyFrame
		}
		if n > len(buf) {
			return frames, fmt.Errorf("%w: want %d bytes, have %d", ErrShortFrame, n, len(buf))
		}

		f := Frame{Type: MessageType(buf[0]), Body: buf[tagSize:n]}
		f.Payload, f.Err = parse(f.Type, f.Body)
		frames = append(frames, f)
		buf = buf[n:]
	}
	return frames, nil
}

// AppendFrame appends one framed message to dst.
func AppendFrame(dst []byte, t MessageType, body []byte) ([]byte, error) {
	if len(body) > MaxBody {
		return dst, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(body))
	}
	var hdr [lengthSize + tagSize]byte
	binary.BigEndian.PutUint16(hdr[:lengthSize], uint16(len(body)+tagSize))
	hdr[lengthSize] = byte(t)
	dst = append(dst, hdr[:]...)
	return append(dst, body...), nil
}

// Encode marshals msg and frames it under tag t.
func Encode(t MessageType, msg any) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", t, err)
	}
	return AppendFrame(nil, t, body)
}

func parse(t MessageType, body []byte) (any, error) {
	v := newPayload(t)
	if v == nil {
		return nil, nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", t, err)
	}
	return v, nil
}

// newPayload is the closed set of tags this client understands.
func newPayload(t MessageType) any {
	switch t {
	case MsgSeekRequest:
		return &SeekRequest{}
	case MsgMatchRequest:
		return &MatchRequest{}
	case MsgSoughtGameProcessEvent:
		return &SoughtGameProcessEvent{}
	case MsgClientGameplayEvent:
		return &ClientGameplayEvent{}
	case MsgServerGameplayEvent:
		return &ServerGameplayEvent{}
	case MsgGameEndedEvent:
		return &GameEndedEvent{}
	case MsgGameHistoryRefresher:
		return &HistoryRefresher{}
	case MsgErrorMessage:
		return &ErrorMessage{}
	case MsgNewGameEvent:
		return &NewGameEvent{}
	case MsgServerChallengeResultEvent:
		return &ServerChallengeResultEvent{}
	case MsgSeekRequests:
		return &SeekRequests{}
	case MsgTimedOut:
		return &TimedOut{}
	case MsgChatMessage:
		return &ChatMessage{}
	case MsgUserPresence:
		return &UserPresence{}
	case MsgServerMessage:
		return &ServerMessage{}
	case MsgReadyForGame:
		return &ReadyForGame{}
	case MsgLagMeasurement:
		return &LagMeasurement{}
	case MsgJoinPath:
		return &JoinPath{}
	default:
		return nil
	}
}

// GameID returns the game a frame belongs to, or "" for frames that are not
// tied to a single game.
func (f Frame) GameID() string {
	switch p := f.Payload.(type) {
	case *HistoryRefresher:
		return p.History.UID
	case *ServerGameplayEvent:
		return p.GameID
	case *GameEndedEvent:
		return p.GameID
	case *ServerChallengeResultEvent:
		return p.GameID
	case *TimedOut:
		return p.GameID
	case *NewGameEvent:
		return p.GameID
	default:
		return ""
	}
}
