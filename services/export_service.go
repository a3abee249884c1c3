package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"typing-test-system/models"
	"typing-test-system/utils"
)

// ExportService writes a user's full keystroke history to object storage as a
// JSON archive. Used for data-portability requests and as a safety copy ahead
// of GDPR erasure.
type ExportService struct {
	Store KeystrokeStore
}

func NewExportService(store KeystrokeStore) *ExportService {
	return &ExportService{Store: store}
}

type keystrokeArchive struct {
	UserID     string                  `json:"user_id"`
	ExportedAt time.Time               `json:"exported_at"`
	EventCount int                     `json:"event_count"`
	Events     []models.KeystrokeEvent `json:"events"`
}

// ExportUserEvents uploads the archive to
// archives/<user_id>/<unix_timestamp>.json and returns its public URL.
func (s *ExportService) ExportUserEvents(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", models.ErrMissingUserID
	}

	events, err := s.Store.GetUserEvents(ctx, userID, 0)
	if err != nil {
		return "", fmt.Errorf("load events for export of user %s: %w", userID, err)
	}

	now := time.Now().UTC()
	archive := keystrokeArchive{
		UserID:     userID,
		ExportedAt: now,
		EventCount: len(events),
		Events:     events,
	}
	payload, err := json.Marshal(archive)
	if err != nil {
		return "", fmt.Errorf("marshal archive for user %s: %w", userID, err)
	}

	key := fmt.Sprintf("archives/%s/%d.json", userID, now.Unix())
	url, err := utils.UploadBytesToR2(ctx, key, "application/json", payload)
	if err != nil {
		return "", fmt.Errorf("upload archive for user %s: %w", userID, err)
	}
	return url, nil
}
