package services

import (
	"context"
	"fmt"
	"time"

	"typing-test-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// Postgres handles larger inserts fine, but 100 rows per statement keeps
	// transactions small and matches the capture client's flush size.
	insertChunkSize = 100

	// Erasure deletes in chunks so a heavy user never holds one giant
	// transaction open.
	deleteChunkSize = 1000
)

// KeystrokeStore is the narrow persistence contract the analytics engine
// consumes. Any backing store (Postgres, in-memory fake) can implement it.
type KeystrokeStore interface {
	AddEvent(ctx context.Context, event *models.KeystrokeEvent) (*models.KeystrokeEvent, error)
	AddEventsBatch(ctx context.Context, events []models.KeystrokeEvent) (int, error)
	GetUserEvents(ctx context.Context, userID string, limit int) ([]models.KeystrokeEvent, error)
	GetSessionEvents(ctx context.Context, userID, gameID string) ([]models.KeystrokeEvent, error)
	GetUserEventsInRange(ctx context.Context, userID string, start, end time.Time) ([]models.KeystrokeEvent, error)
	DeleteUserEvents(ctx context.Context, userID string) (int64, error)
	CountUserEvents(ctx context.Context, userID string) (int64, error)
}

// GormKeystrokeStore is the production KeystrokeStore backed by Postgres.
type GormKeystrokeStore struct {
	DB *gorm.DB
}

func NewGormKeystrokeStore(db *gorm.DB) *GormKeystrokeStore {
	return &GormKeystrokeStore{DB: db}
}

// AddEvent inserts a single event. Re-submitting the same
// (user_id, game_id, sequence_number) is a no-op rather than an error, so
// capture clients can retry safely.
func (s *GormKeystrokeStore) AddEvent(ctx context.Context, event *models.KeystrokeEvent) (*models.KeystrokeEvent, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if event.RecordedAt.IsZero() {
		event.RecordedAt = time.Now().UTC()
	}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event).Error
	if err != nil {
		return nil, fmt.Errorf("add keystroke event for user %s game %s: %w", event.UserID, event.GameID, err)
	}
	return event, nil
}

// AddEventsBatch bulk-inserts events, partitioned by user so each user's rows
// land in their own transactions, chunked to insertChunkSize rows per
// statement. Returns the number of events accepted.
func (s *GormKeystrokeStore) AddEventsBatch(ctx context.Context, events []models.KeystrokeEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	for i := range events {
		if err := events[i].Validate(); err != nil {
			return 0, fmt.Errorf("event %d: %w", i, err)
		}
		if events[i].RecordedAt.IsZero() {
			events[i].RecordedAt = now
		}
	}

	inserted := 0
	for userID, batch := range partitionByUser(events) {
		err := s.DB.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(batch, insertChunkSize).Error
		if err != nil {
			return inserted, fmt.Errorf("batch insert for user %s: %w", userID, err)
		}
		inserted += len(batch)
	}
	return inserted, nil
}

// partitionByUser groups events by owner, preserving input order per user.
func partitionByUser(events []models.KeystrokeEvent) map[string][]models.KeystrokeEvent {
	batches := make(map[string][]models.KeystrokeEvent)
	for _, e := range events {
		batches[e.UserID] = append(batches[e.UserID], e)
	}
	return batches
}

// GetUserEvents returns a user's events across sessions ordered by capture
// time then sequence. limit <= 0 means no cap.
func (s *GormKeystrokeStore) GetUserEvents(ctx context.Context, userID string, limit int) ([]models.KeystrokeEvent, error) {
	var events []models.KeystrokeEvent
	q := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at ASC, sequence_number ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("get events for user %s: %w", userID, err)
	}
	return events, nil
}

// GetSessionEvents returns one session's events in sequence order.
func (s *GormKeystrokeStore) GetSessionEvents(ctx context.Context, userID, gameID string) ([]models.KeystrokeEvent, error) {
	var events []models.KeystrokeEvent
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND game_id = ?", userID, gameID).
		Order("sequence_number ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("get events for user %s game %s: %w", userID, gameID, err)
	}
	return events, nil
}

// GetUserEventsInRange returns a user's events captured in [start, end).
func (s *GormKeystrokeStore) GetUserEventsInRange(ctx context.Context, userID string, start, end time.Time) ([]models.KeystrokeEvent, error) {
	var events []models.KeystrokeEvent
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND recorded_at >= ? AND recorded_at < ?", userID, start, end).
		Order("recorded_at ASC, sequence_number ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("get events for user %s in range: %w", userID, err)
	}
	return events, nil
}

// DeleteUserEvents erases every event a user owns, chunked so the erasure of
// a long-lived account never runs as one oversized transaction. Returns rows
// removed.
func (s *GormKeystrokeStore) DeleteUserEvents(ctx context.Context, userID string) (int64, error) {
	var total int64
	for {
		res := s.DB.WithContext(ctx).Exec(
			`DELETE FROM keystroke_events WHERE id IN (
				SELECT id FROM keystroke_events WHERE user_id = ? LIMIT ?
			)`, userID, deleteChunkSize)
		if res.Error != nil {
			return total, fmt.Errorf("delete events for user %s: %w", userID, res.Error)
		}
		total += res.RowsAffected
		if res.RowsAffected < deleteChunkSize {
			return total, nil
		}
	}
}

// CountUserEvents returns how many events a user has recorded.
func (s *GormKeystrokeStore) CountUserEvents(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.KeystrokeEvent{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count events for user %s: %w", userID, err)
	}
	return count, nil
}
