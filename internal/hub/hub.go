package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/DoyleJ11/woogles-client/internal/engine"
	"github.com/DoyleJ11/woogles-client/internal/session"
	"github.com/DoyleJ11/woogles-client/internal/wire"
)

type HubMsg interface{ isHubMsg() }

type GetSession struct {
	GameID string
	Reply  chan *session.Session
}

type EnsureSession struct {
	GameID string
	Reply  chan *session.Session
}

type RemoveSession struct {
	GameID string
}

// Route hands one socket delivery to the sessions it concerns. Frames are
// grouped per game, keeping their relative order.
type Route struct {
	Frames []wire.Frame
}

type ListSessions struct {
	Reply chan []string
}

type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*session.Session
	opts     []session.Option
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

type ShutdownHub struct{}

func (GetSession) isHubMsg()    {}
func (EnsureSession) isHubMsg() {}
func (RemoveSession) isHubMsg() {}
func (Route) isHubMsg()         {}
func (ListSessions) isHubMsg()  {}
func (ShutdownHub) isHubMsg()   {}

// NewHub starts the hub loop. opts are passed to every session it creates.
func NewHub(parent context.Context, log *zap.Logger, opts ...session.Option) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*session.Session),
		opts:     append([]session.Option{session.WithLogger(log)}, opts...),
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Ensure asks the hub for the session of gameID, creating it if needed.
func (h *Hub) Ensure(ctx context.Context, gameID string) (*session.Session, error) {
	reply := make(chan *session.Session, 1)
	return h.ask(ctx, EnsureSession{GameID: gameID, Reply: reply}, reply)
}

// Get returns the session of gameID, or nil when there is none.
func (h *Hub) Get(ctx context.Context, gameID string) (*session.Session, error) {
	reply := make(chan *session.Session, 1)
	return h.ask(ctx, GetSession{GameID: gameID, Reply: reply}, reply)
}

func (h *Hub) ask(ctx context.Context, m HubMsg, reply chan *session.Session) (*session.Session, error) {
	select {
	case h.inbox <- m:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case GetSession:
				msg.Reply <- h.sessions[msg.GameID] // May be nil

			case EnsureSession:
				msg.Reply <- h.ensure(msg.GameID)

			case RemoveSession:
				if s := h.sessions[msg.GameID]; s != nil {
					s.Inbox() <- session.Shutdown{}
					delete(h.sessions, msg.GameID)
				}

			case Route:
				h.route(msg.Frames)

			case ListSessions:
				ids := make([]string, 0, len(h.sessions))
				for id := range h.sessions {
					ids = append(ids, id)
				}
				msg.Reply <- ids

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) ensure(gameID string) *session.Session {
	if s := h.sessions[gameID]; s != nil {
		return s
	}
	s := session.NewSession(h.ctx, engine.StartingState("", ""), h.opts...)
	h.sessions[gameID] = s
	h.log.Info("session created", zap.String("game_id", gameID))
	return s
}

func (h *Hub) route(frames []wire.Frame) {
	var order []string
	groups := make(map[string][]wire.Frame)
	for _, f := range frames {
		id := f.GameID()
		if id == "" {
			h.log.Debug("frame has no game", zap.Stringer("type", f.Type))
			continue
		}
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], f)
	}

	for _, id := range order {
		s := h.sessions[id]
		if s == nil {
			// Only a full snapshot can start a session.
			if !hasRefresher(groups[id]) {
				h.log.Debug("no session for game", zap.String("game_id", id))
				continue
			}
			s = h.ensure(id)
		}
		s.Inbox() <- session.Frames{Frames: groups[id]}
	}
}

func hasRefresher(frames []wire.Frame) bool {
	for _, f := range frames {
		if _, ok := f.Payload.(*wire.HistoryRefresher); ok {
			return true
		}
	}
	return false
}

func (h *Hub) shutdown() {
	for _, s := range h.sessions {
		select {
		case s.Inbox() <- session.Shutdown{}:
		default:
			// Sessions also stop when h.ctx is cancelled.
		}
	}
	clear(h.sessions)
	h.cancel()
}
