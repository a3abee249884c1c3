package models

import (
	"errors"
	"time"
)

// Validation failures surfaced to callers as client-side errors before any
// store call is made.
var (
	ErrMissingUserID    = errors.New("user_id is required")
	ErrMissingGameID    = errors.New("game_id is required")
	ErrNegativeSequence = errors.New("sequence_number must be >= 0")
	ErrNegativeTiming   = errors.New("elapsed_ms and interval_ms must be >= 0")
	ErrNegativePosition = errors.New("text_position must be >= 0")
)

// KeystrokeEvent is one recorded key press inside a typing session.
// Events are immutable once recorded; sequence_number is unique within a
// (user_id, game_id) pair and is the only ordering used for rhythm/fatigue.
type KeystrokeEvent struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID string `gorm:"index;uniqueIndex:idx_keystroke_identity,priority:1;not null" json:"user_id"`
	GameID string `gorm:"index;uniqueIndex:idx_keystroke_identity,priority:2;not null" json:"game_id"`

	// SequenceNumber is strictly increasing within a session and doubles as
	// the row address for idempotent re-submission.
	SequenceNumber int `gorm:"uniqueIndex:idx_keystroke_identity,priority:3" json:"sequence_number"`

	Key          string `json:"key"`
	ExpectedChar string `json:"expected_char"`
	IsCorrect    bool   `json:"is_correct"`
	IsBackspace  bool   `json:"is_backspace"`

	ElapsedMs    int64 `json:"elapsed_ms"`
	IntervalMs   int64 `json:"interval_ms"`
	TextPosition int   `json:"text_position"`

	// Point-in-time metrics computed by the capture client; the analytics
	// engine reduces over these, it never recomputes them.
	CurrentWPM      float64 `json:"current_wpm"`
	CurrentAccuracy float64 `json:"current_accuracy"`

	RecordedAt time.Time `gorm:"index" json:"recorded_at"`
}

// Validate rejects events that must never reach the store.
func (e *KeystrokeEvent) Validate() error {
	if e.UserID == "" {
		return ErrMissingUserID
	}
	if e.GameID == "" {
		return ErrMissingGameID
	}
	if e.SequenceNumber < 0 {
		return ErrNegativeSequence
	}
	if e.ElapsedMs < 0 || e.IntervalMs < 0 {
		return ErrNegativeTiming
	}
	if e.TextPosition < 0 {
		return ErrNegativePosition
	}
	return nil
}
