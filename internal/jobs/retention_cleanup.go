package jobs

import (
	"log"
	"time"

	"studiodesk/internal/notify"
)

// RetentionCleanupJob prunes old entries from the notification feed so an
// always-on session doesn't accumulate toasts forever.
type RetentionCleanupJob struct {
	feed   *notify.Feed
	maxAge time.Duration
}

// NewRetentionCleanupJob creates a new retention cleanup job
func NewRetentionCleanupJob(feed *notify.Feed, maxAge time.Duration) *RetentionCleanupJob {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &RetentionCleanupJob{feed: feed, maxAge: maxAge}
}

// Run drops notifications older than the retention window
func (j *RetentionCleanupJob) Run() {
	removed := j.feed.Prune(j.maxAge)
	if removed > 0 {
		log.Printf("🧹 [RETENTION] Pruned %d notifications older than %v", removed, j.maxAge)
	}
}
