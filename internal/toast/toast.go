package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a toast for presentation
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// DefaultTTL is how long a toast stays visible before self-removal
const DefaultTTL = 2800 * time.Millisecond

// Toast is an ephemeral user-facing message. Message is always a plain
// string; raw errors must be reduced before reaching this package.
type Toast struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clock abstracts time for the channel so expiry can be tested with a
// simulated clock
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the stoppable handle returned by Clock.AfterFunc
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Channel queues auto-expiring toasts. Toasts are never persisted.
type Channel struct {
	mu     sync.Mutex
	toasts []Toast
	timers map[string]Timer
	ttl    time.Duration
	clock  Clock
}

// NewChannel creates a channel with the default display duration
func NewChannel() *Channel {
	return NewChannelWithTTL(DefaultTTL)
}

// NewChannelWithTTL creates a channel with a custom display duration
func NewChannelWithTTL(ttl time.Duration) *Channel {
	return newChannel(ttl, realClock{})
}

// NewChannelWithClock creates a channel driven by an injected clock
func NewChannelWithClock(ttl time.Duration, clock Clock) *Channel {
	return newChannel(ttl, clock)
}

func newChannel(ttl time.Duration, clock Clock) *Channel {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Channel{
		timers: make(map[string]Timer),
		ttl:    ttl,
		clock:  clock,
	}
}

// Notify enqueues a toast and schedules its own removal
func (c *Channel) Notify(message string, kind Kind) Toast {
	t := Toast{
		ID:        uuid.New().String(),
		Message:   message,
		Kind:      kind,
		CreatedAt: c.clock.Now(),
	}

	c.mu.Lock()
	c.toasts = append(c.toasts, t)
	c.timers[t.ID] = c.clock.AfterFunc(c.ttl, func() { c.Dismiss(t.ID) })
	c.mu.Unlock()

	return t
}

// Info enqueues an info toast
func (c *Channel) Info(message string) Toast { return c.Notify(message, KindInfo) }

// Success enqueues a success toast
func (c *Channel) Success(message string) Toast { return c.Notify(message, KindSuccess) }

// Error enqueues an error toast
func (c *Channel) Error(message string) Toast { return c.Notify(message, KindError) }

// Dismiss removes a toast immediately. Dismissing an unknown id is a no-op.
func (c *Channel) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timer, ok := c.timers[id]; ok {
		timer.Stop()
		delete(c.timers, id)
	}
	for i, t := range c.toasts {
		if t.ID == id {
			c.toasts = append(c.toasts[:i], c.toasts[i+1:]...)
			return
		}
	}
}

// List returns the currently visible toasts in creation order
func (c *Channel) List() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Toast, len(c.toasts))
	copy(out, c.toasts)
	return out
}

// Reset drops all toasts and cancels their timers
func (c *Channel) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
	c.toasts = nil
}
