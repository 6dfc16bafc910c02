// Package notify keeps the state behind "achievement unlocked" toasts.
// Rendering is the presentation layer's concern; this package only
// decides what is currently visible.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultTTL is how long a toast stays active before it expires on its own.
const DefaultTTL = 5 * time.Second

// Toast is a single achievement notification.
type Toast struct {
	ID        int64
	Key       string // achievement identifier, unlocked at most once
	Title     string
	Message   string
	CreatedAt time.Time
}

// Center queues achievement toasts, deduplicates unlocks by key, and
// expires shown toasts after a TTL.
type Center struct {
	mu       sync.Mutex
	ttl      time.Duration
	nextID   int64
	unlocked map[string]bool
	active   []Toast
	now      func() time.Time
}

// NewCenter creates a Center with the given toast lifetime.
// A non-positive ttl falls back to DefaultTTL.
func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{
		ttl:      ttl,
		unlocked: make(map[string]bool),
		now:      time.Now,
	}
}

// Unlock records an achievement and queues its toast. Repeat unlocks of
// the same key are ignored. Returns true if the toast was queued.
func (c *Center) Unlock(key, title, message string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unlocked[key] {
		return false
	}
	c.unlocked[key] = true

	c.nextID++
	c.active = append(c.active, Toast{
		ID:        c.nextID,
		Key:       key,
		Title:     title,
		Message:   message,
		CreatedAt: c.now(),
	})
	slog.Debug("achievement unlocked", "key", key)
	return true
}

// Active returns the toasts still visible at now, dropping expired ones.
func (c *Center) Active(now time.Time) []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.active[:0]
	for _, t := range c.active {
		if now.Sub(t.CreatedAt) < c.ttl {
			kept = append(kept, t)
		}
	}
	c.active = kept

	out := make([]Toast, len(kept))
	copy(out, kept)
	return out
}

// Dismiss removes a toast by ID before its TTL elapses.
func (c *Center) Dismiss(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, t := range c.active {
		if t.ID == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			return
		}
	}
}
