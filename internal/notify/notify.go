package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification is one short-lived user-facing message
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Feed is an append-only log of user-facing messages. Mutating operations
// write to it; the toast surface reads it. Old entries are pruned by the
// retention job rather than by readers.
type Feed struct {
	mu      sync.Mutex
	entries []Notification
}

// NewFeed creates an empty feed
func NewFeed() *Feed {
	return &Feed{}
}

// Add appends a message and returns the stored notification
func (f *Feed) Add(message string) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		CreatedAt: time.Now(),
	}

	f.mu.Lock()
	f.entries = append(f.entries, n)
	f.mu.Unlock()

	return n
}

// List returns a snapshot of the feed, oldest first
func (f *Feed) List() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notification, len(f.entries))
	copy(out, f.entries)
	return out
}

// Len returns the current number of entries
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// Prune drops entries older than maxAge and returns how many were removed
func (f *Feed) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.entries[:0]
	for _, n := range f.entries {
		if n.CreatedAt.After(cutoff) {
			kept = append(kept, n)
		}
	}
	removed := len(f.entries) - len(kept)
	f.entries = kept
	return removed
}
