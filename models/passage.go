package models

import "time"

// Passage statuses mirror the publish lifecycle: drafts are invisible,
// scheduled passages go live when publish_at passes.
const (
	PassageStatusDraft     = "draft"
	PassageStatusScheduled = "scheduled"
	PassageStatusPublished = "published"
)

// Passage is a source text users type against.
type Passage struct {
	ID    string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Title string `gorm:"not null" json:"title"`
	Slug  string `gorm:"uniqueIndex;not null" json:"slug"`

	Content  string `gorm:"type:text;not null" json:"content"`
	Language string `gorm:"default:'en'" json:"language"`

	// Difficulty 1 (easy) to 5 (hard), set editorially.
	Difficulty int `gorm:"default:1" json:"difficulty"`

	Status    string     `gorm:"default:'draft';index" json:"status"`
	PublishAt *time.Time `json:"publish_at,omitempty"`

	Timestamps
}
