package jobs

import (
	"log"
	"time"

	"studiodesk/internal/cache"
	"studiodesk/internal/config"
	"studiodesk/internal/store"
)

// SnapshotFlushJob periodically writes the client collection to the local
// snapshot cache. The change hook already persists on every mutation; this
// job is the backstop that guarantees a recent snapshot even if a hook write
// failed, so a process restart always finds usable data.
type SnapshotFlushJob struct {
	store  *store.Store
	cache  *cache.ClientCache
	policy *config.PolicyHolder
}

// NewSnapshotFlushJob creates a new snapshot flush job
func NewSnapshotFlushJob(st *store.Store, c *cache.ClientCache, policy *config.PolicyHolder) *SnapshotFlushJob {
	return &SnapshotFlushJob{store: st, cache: c, policy: policy}
}

// Run writes the current client collection to disk when the active policy
// marks clients cache-backed.
func (j *SnapshotFlushJob) Run() {
	if !j.policy.Get().For("clients").CacheBacked {
		return
	}

	start := time.Now()
	if err := j.cache.Persist(j.store.Clients()); err != nil {
		log.Printf("❌ [SNAPSHOT] Flush failed: %v", err)
		return
	}
	log.Printf("💾 [SNAPSHOT] Client snapshot flushed in %v", time.Since(start))
}
