package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
)

// EntityPolicy describes where one entity kind persists outside the
// in-memory store.
type EntityPolicy struct {
	CacheBacked  bool `json:"cache_backed"`  // mirrored to the local snapshot cache
	RemoteBacked bool `json:"remote_backed"` // mutations pushed to the upstream API
}

// SyncPolicy maps entity kinds to their persistence strategy. Historically
// each page decided this on its own (clients were cached and synced, tasks
// lived only in memory); the policy file makes the divergence explicit.
type SyncPolicy struct {
	Entities map[string]EntityPolicy `json:"entities"`
}

// DefaultSyncPolicy returns the built-in policy: clients survive reloads and
// sync upstream, everything else is session-only.
func DefaultSyncPolicy() *SyncPolicy {
	return &SyncPolicy{
		Entities: map[string]EntityPolicy{
			"clients":     {CacheBacked: true, RemoteBacked: true},
			"users":       {},
			"projects":    {},
			"tasks":       {},
			"assignments": {},
			"timelogs":    {},
		},
	}
}

// LoadSyncPolicy loads a sync policy from a JSON file
func LoadSyncPolicy(path string) (*SyncPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync policy file: %w", err)
	}

	var policy SyncPolicy
	if err := json.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("failed to parse sync policy JSON: %w", err)
	}

	return &policy, nil
}

// For returns the policy for an entity kind. Unknown kinds get the zero
// policy (session-only).
func (p *SyncPolicy) For(kind string) EntityPolicy {
	if p == nil || p.Entities == nil {
		return EntityPolicy{}
	}
	return p.Entities[kind]
}

// PolicyHolder holds the active sync policy and allows hot swapping when the
// policy file changes on disk.
type PolicyHolder struct {
	current atomic.Pointer[SyncPolicy]
}

// NewPolicyHolder creates a holder seeded with the given policy
func NewPolicyHolder(p *SyncPolicy) *PolicyHolder {
	h := &PolicyHolder{}
	h.current.Store(p)
	return h
}

// Get returns the active policy
func (h *PolicyHolder) Get() *SyncPolicy {
	return h.current.Load()
}

// Set swaps in a new policy
func (h *PolicyHolder) Set(p *SyncPolicy) {
	if p == nil {
		return
	}
	h.current.Store(p)
}
