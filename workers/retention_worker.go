// workers/retention_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"
)

const retentionDeleteChunk = 1000

// RetentionWorker purges keystroke events older than the retention window.
// Raw telemetry is the only data purged; submitted scores are kept forever.
type RetentionWorker struct {
	db            *gorm.DB
	interval      time.Duration
	retentionDays int
}

func NewRetentionWorker(db *gorm.DB, retentionDays int) *RetentionWorker {
	return &RetentionWorker{
		db:            db,
		interval:      1 * time.Hour,
		retentionDays: retentionDays,
	}
}

// Start runs the purge loop until ctx is cancelled. A retention of 0 days
// disables purging entirely.
func (w *RetentionWorker) Start(ctx context.Context) {
	if w.retentionDays <= 0 {
		log.Println("ℹ️ [RETENTION] disabled (retention days <= 0)")
		return
	}

	// First pass immediately, then hourly.
	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("[RETENTION] stopping")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *RetentionWorker) runOnce(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -w.retentionDays)

	var total int64
	for {
		if ctx.Err() != nil {
			return
		}
		res := w.db.WithContext(ctx).Exec(
			`DELETE FROM keystroke_events WHERE id IN (
				SELECT id FROM keystroke_events WHERE recorded_at < ? LIMIT ?
			)`, cutoff, retentionDeleteChunk)
		if res.Error != nil {
			log.Printf("❌ [RETENTION] purge failed: %v", res.Error)
			return
		}
		total += res.RowsAffected
		if res.RowsAffected < retentionDeleteChunk {
			break
		}
	}
	if total > 0 {
		log.Printf("🧹 [RETENTION] purged %d keystroke events older than %s", total, cutoff.Format(time.RFC3339))
	}
}
