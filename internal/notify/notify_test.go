package notify

import (
	"testing"
	"time"
)

func TestAddAndList(t *testing.T) {
	f := NewFeed()

	f.Add("first")
	f.Add("second")

	got := f.List()
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].Message != "first" || got[1].Message != "second" {
		t.Errorf("unexpected order: %q, %q", got[0].Message, got[1].Message)
	}
	if got[0].ID == got[1].ID {
		t.Error("notification ids must be unique")
	}
}

func TestListIsSnapshot(t *testing.T) {
	f := NewFeed()
	f.Add("one")

	snap := f.List()
	snap[0].Message = "mutated"

	if f.List()[0].Message != "one" {
		t.Error("List leaked internal state")
	}
}

func TestPrune(t *testing.T) {
	f := NewFeed()
	f.Add("old")
	f.Add("older")

	// Backdate both entries past the retention window.
	f.mu.Lock()
	for i := range f.entries {
		f.entries[i].CreatedAt = time.Now().Add(-2 * time.Hour)
	}
	f.mu.Unlock()

	f.Add("fresh")

	removed := f.Prune(time.Hour)
	if removed != 2 {
		t.Errorf("expected 2 pruned, got %d", removed)
	}

	got := f.List()
	if len(got) != 1 || got[0].Message != "fresh" {
		t.Errorf("unexpected feed after prune: %+v", got)
	}
}
