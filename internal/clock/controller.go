package clock

import (
	"sync"
	"time"

	"github.com/DoyleJ11/woogles-client/internal/wire"
)

type PlayerOrder string

const (
	NoPlayer PlayerOrder = ""
	P0       PlayerOrder = "p0"
	P1       PlayerOrder = "p1"
)

// OrderOf maps a player slot (0 or 1) to its order.
func OrderOf(idx int) PlayerOrder {
	if idx == 1 {
		return P1
	}
	return P0
}

// Other returns the opponent's order.
func (p PlayerOrder) Other() PlayerOrder {
	switch p {
	case P0:
		return P1
	case P1:
		return P0
	default:
		return NoPlayer
	}
}

// Times is the authoritative clock state: remaining millis per player, who
// is running, and when the values were last set.
type Times struct {
	P0           int
	P1           int
	ActivePlayer PlayerOrder
	LastUpdate   time.Time
}

func (t Times) Of(p PlayerOrder) int {
	if p == P1 {
		return t.P1
	}
	return t.P0
}

// With returns a copy of t with p's remaining time replaced.
func (t Times) With(p PlayerOrder, ms int) Times {
	t.set(p, ms)
	return t
}

func (t *Times) set(p PlayerOrder, ms int) {
	if p == P1 {
		t.P1 = ms
		return
	}
	t.P0 = ms
}

const (
	fastThreshold = 10000
	fastCadence   = 100
	slowCadence   = 500
)

type TickFunc func(p PlayerOrder, millis int)
type TimeoutFunc func(p PlayerOrder)

// Controller runs two countdown clocks, at most one at a time, ticking
// locally between authoritative SetClock calls. It is safe for concurrent use;
// callbacks run on the timer goroutine without the lock held.
type Controller struct {
	mu        sync.Mutex
	times     Times
	sched     Scheduler
	timer     Timer
	gen       uint64
	onTick    TickFunc
	onTimeout TimeoutFunc
}

type Option func(*Controller)

// WithScheduler replaces the wall clock and timers.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

func NewController(ts Times, onTimeout TimeoutFunc, onTick TickFunc, opts ...Option) *Controller {
	c := &Controller{
		sched:     realScheduler{},
		onTick:    onTick,
		onTimeout: onTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	if c.onTick == nil {
		c.onTick = func(PlayerOrder, int) {}
	}
	if c.onTimeout == nil {
		c.onTimeout = func(PlayerOrder) {}
	}

	c.mu.Lock()
	c.times = ts
	c.times.LastUpdate = c.sched.Now()
	if ts.ActivePlayer != NoPlayer {
		c.scheduleLocked(ts.Of(ts.ActivePlayer), 0)
	}
	c.mu.Unlock()
	return c
}

// SetClock resyncs both clocks to authoritative values. The running clock
// starts counting down after delay. Nothing runs once the game is over.
func (c *Controller) SetClock(ps wire.PlayState, ts Times, delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	c.times = ts
	c.times.LastUpdate = c.sched.Now().Add(delay)
	if ps == wire.PlayStateGameOver {
		c.times.ActivePlayer = NoPlayer
	}
	if c.times.ActivePlayer != NoPlayer {
		c.scheduleLocked(c.times.Of(c.times.ActivePlayer), delay)
	}
}

// StopClock freezes the running clock and returns the millis it consumed
// since the last update. ok is false when no clock was running.
func (c *Controller) StopClock() (elapsed int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.times.ActivePlayer
	if p == NoPlayer {
		return 0, false
	}
	stored := c.times.Of(p)
	elapsed = c.elapsedLocked()
	if elapsed > stored {
		elapsed = max(stored, 0)
	}
	c.times.set(p, stored-elapsed)
	c.times.ActivePlayer = NoPlayer
	c.cancelLocked()
	return elapsed, true
}

// MillisOf returns a player's remaining time, never below zero.
func (c *Controller) MillisOf(p PlayerOrder) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return max(c.remainingLocked(p), 0)
}

// Times returns a copy of the stored clock state.
func (c *Controller) Times() Times {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.times
}

func (c *Controller) ActivePlayer() PlayerOrder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.times.ActivePlayer
}

func (c *Controller) remainingLocked(p PlayerOrder) int {
	stored := c.times.Of(p)
	if p == NoPlayer || p != c.times.ActivePlayer {
		return stored
	}
	return stored - c.elapsedLocked()
}

func (c *Controller) elapsedLocked() int {
	d := c.sched.Now().Sub(c.times.LastUpdate)
	if d < 0 {
		return 0
	}
	return int(d.Milliseconds())
}

func (c *Controller) cancelLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// scheduleLocked arms the next tick so it lands just after the displayed
// value changes: every 100ms under ten seconds, every 500ms otherwise.
func (c *Controller) scheduleLocked(remaining int, extra time.Duration) {
	if c.timer != nil {
		c.timer.Stop()
	}
	cadence := slowCadence
	if remaining < fastThreshold {
		cadence = fastCadence
	}
	wait := remaining % cadence
	if wait < 0 {
		wait = 0
	}
	d := time.Duration(wait+1)*time.Millisecond + extra
	gen := c.gen
	c.timer = c.sched.AfterFunc(d, func() { c.tick(gen) })
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	p := c.times.ActivePlayer
	if p == NoPlayer {
		c.mu.Unlock()
		return
	}
	ms := c.remainingLocked(p)
	if ms <= 0 {
		c.mu.Unlock()
		c.onTimeout(p)
		return
	}
	c.scheduleLocked(ms, 0)
	c.mu.Unlock()
	c.onTick(p, ms)
}
