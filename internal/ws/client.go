package ws

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/DoyleJ11/woogles-client/internal/hub"
	"github.com/DoyleJ11/woogles-client/internal/wire"
)

var ErrNotConnected = errors.New("ws: not connected")

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// Client holds the one upstream socket and feeds every delivery to the hub.
// A dropped socket is redialled and every joined game is joined again.
type Client struct {
	url         string
	token       string
	gameID      string
	readTimeout time.Duration
	hub         *hub.Hub
	log         *zap.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	joined map[string]struct{}
}

type Option func(*Client)

// WithGameID joins gameID as soon as the socket is up.
func WithGameID(id string) Option {
	return func(c *Client) { c.gameID = id }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithReadTimeout bounds how long the server may take to answer a ping
// before the socket is considered dead. Pings go out at the same interval.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Client) { c.readTimeout = d }
}

func NewClient(socketURL string, h *hub.Hub, log *zap.Logger, opts ...Option) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		url:         socketURL,
		hub:         h,
		log:         log,
		readTimeout: 60 * time.Second,
		joined:      make(map[string]struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	if c.gameID != "" {
		c.joined[c.gameID] = struct{}{}
	}
	return c
}

func (c *Client) dialURL() (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", err
	}
	if c.token != "" {
		q := u.Query()
		q.Set("token", c.token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Run keeps the socket up until ctx ends. Only a failure of the very first
// dial is returned; later drops are redialled with backoff.
func (c *Client) Run(ctx context.Context) error {
	target, err := c.dialURL()
	if err != nil {
		return fmt.Errorf("socket url: %w", err)
	}

	conn, err := c.dial(ctx, target)
	if err != nil {
		return err
	}
	backoff := minBackoff
	for {
		err := c.serve(ctx, conn)
		if ctx.Err() != nil {
			return nil
		}
		c.log.Warn("socket lost, redialling", zap.Error(err))

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			conn, err = c.dial(ctx, target)
			if err == nil {
				backoff = minBackoff
				break
			}
			if ctx.Err() != nil {
				return nil
			}
			backoff = min(backoff*2, maxBackoff)
			c.log.Warn("redial failed", zap.Duration("retry_in", backoff), zap.Error(err))
		}
	}
}

func (c *Client) dial(ctx context.Context, target string) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.url, err)
	}
	conn.SetReadLimit(1 << 20)
	c.log.Info("socket connected", zap.String("url", c.url))
	return conn, nil
}

// serve joins every known game on conn and reads until it fails.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	c.mu.Lock()
	c.conn = conn
	games := make([]string, 0, len(c.joined))
	for id := range c.joined {
		games = append(games, id)
	}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
	}()

	for _, id := range games {
		if err := c.Join(ctx, id); err != nil {
			return err
		}
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.keepAlive(connCtx, conn)

	for {
		typ, data, err := conn.Read(connCtx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				c.log.Info("socket closed by server")
			}
			return fmt.Errorf("read socket: %w", err)
		}
		if typ != websocket.MessageBinary {
			c.log.Debug("ignoring text message", zap.Int("bytes", len(data)))
			continue
		}
		c.deliver(ctx, data)
	}
}

// keepAlive pings on an interval. A ping left unanswered closes the socket,
// which ends the read loop.
func (c *Client) keepAlive(ctx context.Context, conn *websocket.Conn) {
	t := time.NewTicker(c.readTimeout)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, c.readTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					c.log.Warn("ping failed", zap.Error(err))
					conn.Close(websocket.StatusGoingAway, "ping timeout")
				}
				return
			}
		}
	}
}

func (c *Client) deliver(ctx context.Context, data []byte) {
	frames, err := wire.Decode(data)
	if err != nil {
		c.log.Warn("bad socket delivery", zap.Int("decoded", len(frames)), zap.Error(err))
	}
	if len(frames) == 0 {
		return
	}
	select {
	case c.hub.Inbox() <- hub.Route{Frames: frames}:
	case <-ctx.Done():
	}
}

// Join subscribes the socket to gameID and ensures a session for it. The
// game is joined again after every redial.
func (c *Client) Join(ctx context.Context, gameID string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	buf, err := wire.Encode(wire.MsgJoinPath, wire.JoinPath{Path: "/game/" + gameID})
	if err != nil {
		return err
	}
	if _, err := c.hub.Ensure(ctx, gameID); err != nil {
		return err
	}
	if err := conn.Write(ctx, websocket.MessageBinary, buf); err != nil {
		return fmt.Errorf("join %s: %w", gameID, err)
	}

	c.mu.Lock()
	c.joined[gameID] = struct{}{}
	c.mu.Unlock()
	c.log.Info("joined game", zap.String("game_id", gameID))
	return nil
}
