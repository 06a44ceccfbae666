// Package notify carries transient feedback (notices) and destructive-action
// confirmation for the desk front ends.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/ports"
)

// DefaultTTL is how long a notice stays visible unless dismissed.
const DefaultTTL = 3 * time.Second

// Level classifies a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is one transient message.
type Notice struct {
	ID        uint64
	Level     Level
	Text      string
	CreatedAt time.Time
	TTL       time.Duration
}

// EventKind tells subscribers what happened to a notice.
type EventKind int

const (
	EventShown EventKind = iota
	EventDismissed
)

// Event is delivered to subscribers.
type Event struct {
	Kind   EventKind
	Notice Notice
}

// Timer is the part of *time.Timer the center relies on.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Center.
type Option func(*Center)

// WithTTL overrides the auto-dismiss delay; non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Center) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Center) {
		if now != nil {
			c.now = now
		}
	}
}

// WithAfterFunc replaces time.AfterFunc.
func WithAfterFunc(after AfterFunc) Option {
	return func(c *Center) {
		if after != nil {
			c.after = after
		}
	}
}

// WithLogger mirrors every notice into the log.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Center) {
		c.logger = logger
	}
}

type entry struct {
	notice Notice
	timer  Timer
}

// Center is the single channel for notices. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type Center struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	after  AfterFunc
	logger *slog.Logger

	nextID  uint64
	active  []entry
	subs    map[int]chan Event
	nextSub int
}

var _ ports.Notifier = (*Center)(nil)

// NewCenter builds a center with a 3s TTL unless overridden.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		ttl:   DefaultTTL,
		now:   time.Now,
		after: realAfterFunc,
		subs:  make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Publish shows a notice and schedules its dismissal.
func (c *Center) Publish(level Level, text string) Notice {
	c.mu.Lock()
	c.nextID++
	n := Notice{
		ID:        c.nextID,
		Level:     level,
		Text:      text,
		CreatedAt: c.now(),
		TTL:       c.ttl,
	}
	c.active = append(c.active, entry{notice: n})
	c.broadcastLocked(Event{Kind: EventShown, Notice: n})
	c.mu.Unlock()

	timer := c.after(n.TTL, func() { c.Dismiss(n.ID) })
	c.attachTimer(n.ID, timer)

	if c.logger != nil {
		c.logger.Info("notice", "level", string(level), "text", text)
	}
	return n
}

// attachTimer records the dismissal timer, or stops it when the notice
// was dismissed before the timer was armed.
func (c *Center) attachTimer(id uint64, timer Timer) {
	if timer == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.active {
		if c.active[i].notice.ID == id {
			c.active[i].timer = timer
			return
		}
	}
	timer.Stop()
}

func (c *Center) Info(text string)    { c.Publish(LevelInfo, text) }
func (c *Center) Success(text string) { c.Publish(LevelSuccess, text) }
func (c *Center) Warn(text string)    { c.Publish(LevelWarning, text) }
func (c *Center) Error(text string)   { c.Publish(LevelError, text) }

// Dismiss removes a visible notice. It reports false when the notice was
// already gone.
func (c *Center) Dismiss(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, e := range c.active {
		if e.notice.ID != id {
			continue
		}
		if e.timer != nil {
			e.timer.Stop()
		}
		c.active = append(c.active[:i], c.active[i+1:]...)
		c.broadcastLocked(Event{Kind: EventDismissed, Notice: e.notice})
		return true
	}
	return false
}

// DismissAll clears every visible notice.
func (c *Center) DismissAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.active {
		if e.timer != nil {
			e.timer.Stop()
		}
		c.broadcastLocked(Event{Kind: EventDismissed, Notice: e.notice})
	}
	c.active = nil
}

// Active lists visible notices, oldest first.
func (c *Center) Active() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notice, 0, len(c.active))
	for _, e := range c.active {
		out = append(out, e.notice)
	}
	return out
}

// Latest returns the newest visible notice.
func (c *Center) Latest() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.active) == 0 {
		return Notice{}, false
	}
	return c.active[len(c.active)-1].notice, true
}

// Subscribe returns a buffered event stream and a function that closes it.
func (c *Center) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}

func (c *Center) broadcastLocked(ev Event) {
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
