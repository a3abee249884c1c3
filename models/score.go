package models

import (
	"time"

	"gorm.io/gorm"
)

// TypingScore is the final result of one completed typing session, submitted
// once per game_id by the session client.
type TypingScore struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"index;not null" json:"user_id"`
	GameID string `gorm:"uniqueIndex;not null" json:"game_id"`

	WPM      float64 `json:"wpm"`
	RawWPM   float64 `json:"raw_wpm" gorm:"default:0"`
	Accuracy float64 `json:"accuracy"` // percent

	DurationMs int64 `json:"duration_ms"`
	CharsTyped int   `json:"chars_typed" gorm:"default:0"`
	ErrorCount int   `json:"error_count" gorm:"default:0"`

	// PassageSlug links the score to the text that was typed, if known.
	PassageSlug string `json:"passage_slug,omitempty" gorm:"index"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
