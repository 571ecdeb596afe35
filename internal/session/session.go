package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/woogles-client/internal/clock"
	"github.com/DoyleJ11/woogles-client/internal/engine"
	"github.com/DoyleJ11/woogles-client/internal/wire"
)

type Msg interface{ isSessionMsg() }

// Frames is one socket delivery. Frames are applied strictly in order.
type Frames struct {
	Frames []wire.Frame
}

func (Frames) isSessionMsg() {}

// Refresh applies a snapshot fetched outside the socket.
type Refresh struct {
	Refresher *wire.HistoryRefresher
}

func (Refresh) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Update // where this client wants to receive updates
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type clockTick struct {
	player clock.PlayerOrder
	millis int
}

func (clockTick) isSessionMsg() {}

type clockTimeout struct {
	player clock.PlayerOrder
}

func (clockTimeout) isSessionMsg() {}

type Update interface{ isUpdate() }

type StateUpdate struct {
	Version int
	State   engine.GameState
	Times   clock.Times
}

type ClockTick struct {
	Player clock.PlayerOrder
	Millis int
}

type ClockTimeout struct {
	Player clock.PlayerOrder
}

func (StateUpdate) isUpdate()  {}
func (ClockTick) isUpdate()    {}
func (ClockTimeout) isUpdate() {}

type View struct {
	Version    int
	NumClients int
	State      engine.GameState
	Times      clock.Times
}

// Archiver stores finished games.
type Archiver interface {
	Save(ctx context.Context, s engine.GameState) error
}

type Session struct {
	inbox    chan Msg
	state    engine.GameState
	version  int
	clients  map[string]chan Update
	clock    *clock.Controller
	archiver Archiver
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	clockOps []clock.Option
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func WithArchiver(a Archiver) Option {
	return func(s *Session) { s.archiver = a }
}

func WithClockOptions(opts ...clock.Option) Option {
	return func(s *Session) { s.clockOps = append(s.clockOps, opts...) }
}

func NewSession(parent context.Context, initial engine.GameState, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		inbox:   make(chan Msg, 64),
		state:   initial,
		version: 0,
		clients: make(map[string]chan Update),
		log:     zap.NewNop(),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, o := range opts {
		o(s)
	}
	s.clock = clock.NewController(clock.Times{}, s.onTimeout, s.onTick, s.clockOps...)

	go s.loop()
	return s
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current state immediately
				s.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- s.stateUpdate()

			case Leave:
				delete(s.clients, msg.ClientID)

			case Frames:
				for _, f := range msg.Frames {
					s.applyFrame(f)
				}

			case Refresh:
				s.applyRefresher(msg.Refresher)

			case clockTick:
				s.broadcast(ClockTick{Player: msg.player, Millis: msg.millis}, false)

			case clockTimeout:
				s.log.Info("clock ran out", zap.String("game_id", s.state.GameID), zap.String("player", string(msg.player)))
				s.broadcast(ClockTimeout{Player: msg.player}, true)

			case GetState:
				msg.Reply <- View{
					Version:    s.version,
					NumClients: len(s.clients),
					State:      s.state,
					Times:      s.clock.Times(),
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) applyFrame(f wire.Frame) {
	switch p := f.Payload.(type) {
	case *wire.HistoryRefresher:
		s.applyRefresher(p)
	case *wire.ServerGameplayEvent:
		s.applyMove(p)
	case *wire.GameEndedEvent:
		s.applyGameEnded(p)
	default:
		if f.Err != nil {
			s.log.Warn("undecodable frame", zap.Stringer("type", f.Type), zap.Error(f.Err))
			return
		}
		s.log.Debug("frame not handled by session", zap.Stringer("type", f.Type))
	}
}

func (s *Session) applyRefresher(r *wire.HistoryRefresher) {
	if r == nil {
		return
	}
	s.state = engine.Reduce(s.state, engine.RefreshHistory{Refresher: r})

	p0, p1 := engine.RefresherTimes(r)
	s.clock.SetClock(s.state.PlayState, clock.Times{
		P0:           p0,
		P1:           p1,
		ActivePlayer: s.state.OnTurnOrder(),
	}, 0)
	s.publishState()
}

func (s *Session) applyMove(sge *wire.ServerGameplayEvent) {
	if sge.GameID != s.state.GameID {
		s.log.Debug("dropping event for another game",
			zap.String("game_id", sge.GameID), zap.String("current", s.state.GameID))
		return
	}
	s.state = engine.Reduce(s.state, engine.AddGameEvent{Event: sge})

	mover, ok := s.state.NickToPlayerOrder[sge.Event.Nickname]
	if !ok {
		mover = clock.OrderOf(s.state.OnTurn).Other()
	}
	ts := clock.Times{ActivePlayer: s.state.OnTurnOrder()}.
		With(mover, sge.TimeRemaining).
		With(mover.Other(), s.clock.MillisOf(mover.Other()))
	s.clock.SetClock(s.state.PlayState, ts, 0)
	s.publishState()
}

func (s *Session) applyGameEnded(e *wire.GameEndedEvent) {
	if e.GameID != s.state.GameID {
		s.log.Debug("dropping game end for another game", zap.String("game_id", e.GameID))
		return
	}
	s.state = engine.Reduce(s.state, engine.EndGame{Event: e})
	if elapsed, ok := s.clock.StopClock(); ok {
		s.log.Debug("clock stopped at game end", zap.Int("elapsed_ms", elapsed))
	}
	s.publishState()

	if s.archiver != nil {
		go s.archive(s.state)
	}
}

func (s *Session) archive(st engine.GameState) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.archiver.Save(ctx, st); err != nil {
		s.log.Warn("archive finished game", zap.String("game_id", st.GameID), zap.Error(err))
	}
}

func (s *Session) publishState() {
	s.version++
	s.broadcast(s.stateUpdate(), true)
}

func (s *Session) stateUpdate() StateUpdate {
	return StateUpdate{Version: s.version, State: s.state, Times: s.clock.Times()}
}

func (s *Session) shutdown() {
	s.clock.StopClock()
	for id, ch := range s.clients {
		close(ch) // Tell client no more updates
		delete(s.clients, id)
	}
	s.cancel()
}

// broadcast fans u out. Clients that cannot keep up are dropped when
// dropSlow is set; otherwise they just miss this update.
func (s *Session) broadcast(u Update, dropSlow bool) {
	for id, ch := range s.clients {
		select {
		case ch <- u:
			//ok
		default:
			if !dropSlow {
				continue
			}
			s.log.Debug("dropping slow client", zap.String("client_id", id))
			close(ch)
			delete(s.clients, id)
		}
	}
}

// Clock callbacks run on the timer goroutine.
func (s *Session) onTick(p clock.PlayerOrder, ms int) {
	select {
	case s.inbox <- clockTick{player: p, millis: ms}:
	default:
		// Busy; the next tick carries a fresher value anyway.
	}
}

func (s *Session) onTimeout(p clock.PlayerOrder) {
	select {
	case s.inbox <- clockTimeout{player: p}:
	case <-s.ctx.Done():
	}
}

// Expose the inbox so the hub, socket and http layers can send messages.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Clock is safe to read from any goroutine.
func (s *Session) Clock() *clock.Controller { return s.clock }
