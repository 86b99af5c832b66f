// Package notify keeps the transient, dismissible notifications shown to the
// operator. Nothing here is modal: notifications expire on their own.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	Info    Level = "info"
	Success Level = "success"
	Warning Level = "warning"
	Error   Level = "error"
)

type Notification struct {
	ID        uuid.UUID `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notifier is what the workflow controllers push through.
type Notifier interface {
	Push(level Level, message string) Notification
}

type Center struct {
	mu    sync.Mutex
	ttl   time.Duration
	items []Notification
	subs  map[chan Notification]struct{}
	now   func() time.Time
}

var _ Notifier = &Center{}

func NewCenter(ttl time.Duration) *Center {
	return &Center{
		ttl:  ttl,
		subs: make(map[chan Notification]struct{}),
		now:  time.Now,
	}
}

func (c *Center) Push(level Level, message string) Notification {
	now := c.now()
	n := Notification{
		ID:        uuid.New(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked(now)
	c.items = append(c.items, n)
	for ch := range c.subs {
		select {
		case ch <- n:
		default:
			// slow subscriber; it can catch up through List
		}
	}
	return n
}

// List returns live notifications, oldest first.
func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked(c.now())
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Dismiss removes a notification. It reports whether it was still live.
func (c *Center) Dismiss(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Subscribe streams new notifications until cancel is called.
func (c *Center) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, 16)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, ch)
			c.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (c *Center) pruneLocked(now time.Time) {
	live := c.items[:0]
	for _, n := range c.items {
		if now.Before(n.ExpiresAt) {
			live = append(live, n)
		}
	}
	c.items = live
}
