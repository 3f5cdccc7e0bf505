package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSyncPolicyOnlyClientsPersist(t *testing.T) {
	p := DefaultSyncPolicy()

	clients := p.For("clients")
	if !clients.CacheBacked || !clients.RemoteBacked {
		t.Errorf("clients should be cache- and remote-backed, got %+v", clients)
	}

	for _, kind := range []string{"users", "projects", "tasks", "assignments", "timelogs"} {
		if ep := p.For(kind); ep.CacheBacked || ep.RemoteBacked {
			t.Errorf("%s should be session-only, got %+v", kind, ep)
		}
	}
}

func TestForUnknownKindIsSessionOnly(t *testing.T) {
	p := DefaultSyncPolicy()
	if ep := p.For("gadgets"); ep.CacheBacked || ep.RemoteBacked {
		t.Errorf("unknown kind should get the zero policy, got %+v", ep)
	}
}

func TestLoadSyncPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync_policy.json")
	content := `{"entities": {"tasks": {"cache_backed": true, "remote_backed": false}}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}

	p, err := LoadSyncPolicy(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !p.For("tasks").CacheBacked {
		t.Error("tasks should be cache-backed per the file")
	}
	if p.For("clients").RemoteBacked {
		t.Error("kinds absent from the file should be session-only")
	}
}

func TestLoadSyncPolicyRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync_policy.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}

	if _, err := LoadSyncPolicy(path); err == nil {
		t.Error("malformed policy file should fail to load")
	}
}

func TestPolicyHolderHotSwap(t *testing.T) {
	holder := NewPolicyHolder(DefaultSyncPolicy())

	if !holder.Get().For("clients").CacheBacked {
		t.Fatal("seed policy not visible")
	}

	holder.Set(&SyncPolicy{Entities: map[string]EntityPolicy{
		"clients": {CacheBacked: false, RemoteBacked: false},
	}})
	if holder.Get().For("clients").CacheBacked {
		t.Error("swapped policy not visible")
	}

	// A nil swap must keep the current policy rather than clearing it.
	holder.Set(nil)
	if holder.Get() == nil {
		t.Error("nil swap cleared the active policy")
	}
}
