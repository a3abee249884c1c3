package services

import (
	"log"
	"strconv"
	"time"

	"typing-test-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultLeaderboardSize = 50

type ScoreService struct {
	DB *gorm.DB
}

func NewScoreService(db *gorm.DB) *ScoreService {
	return &ScoreService{DB: db}
}

type SubmitScoreRequest struct {
	UserID      string  `json:"user_id" validate:"required"`
	GameID      string  `json:"game_id" validate:"required"`
	WPM         float64 `json:"wpm" validate:"gte=0"`
	RawWPM      float64 `json:"raw_wpm,omitempty"`
	Accuracy    float64 `json:"accuracy" validate:"gte=0,lte=100"`
	DurationMs  int64   `json:"duration_ms" validate:"gt=0"`
	CharsTyped  int     `json:"chars_typed,omitempty"`
	ErrorCount  int     `json:"error_count,omitempty"`
	PassageSlug string  `json:"passage_slug,omitempty"`
}

// SubmitScore handles POST /scores — one score per session, duplicates conflict.
func (s *ScoreService) SubmitScore(c *fiber.Ctx) error {
	var req SubmitScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid JSON",
			"details": err.Error(),
		})
	}
	if req.UserID == "" || req.GameID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id and game_id are required"})
	}
	if req.WPM < 0 || req.RawWPM < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "wpm must be >= 0"})
	}
	if req.Accuracy < 0 || req.Accuracy > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "accuracy must be between 0 and 100"})
	}
	if req.DurationMs <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duration_ms must be > 0"})
	}

	var count int64
	if err := s.DB.Model(&models.TypingScore{}).
		Where("game_id = ?", req.GameID).
		Count(&count).Error; err != nil {
		log.Printf("❌ DB error checking score uniqueness for game %s: %v", req.GameID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "score already submitted for this session"})
	}

	score := models.TypingScore{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		GameID:      req.GameID,
		WPM:         req.WPM,
		RawWPM:      req.RawWPM,
		Accuracy:    req.Accuracy,
		DurationMs:  req.DurationMs,
		CharsTyped:  req.CharsTyped,
		ErrorCount:  req.ErrorCount,
		PassageSlug: req.PassageSlug,
	}
	if err := s.DB.Create(&score).Error; err != nil {
		log.Printf("❌ failed to save score for user %s game %s: %v", req.UserID, req.GameID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save score"})
	}
	return c.Status(fiber.StatusCreated).JSON(score)
}

// GetLeaderboard handles GET /leaderboard?limit=N&since=RFC3339
func (s *ScoreService) GetLeaderboard(c *fiber.Ctx) error {
	limit := defaultLeaderboardSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be between 1 and 500"})
		}
		limit = parsed
	}

	q := s.DB.Model(&models.TypingScore{})
	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "since must be an RFC3339 timestamp"})
		}
		q = q.Where("created_at >= ?", since)
	}

	var scores []models.TypingScore
	if err := q.Order("wpm DESC, accuracy DESC").Limit(limit).Find(&scores).Error; err != nil {
		log.Printf("❌ failed to load leaderboard: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load leaderboard"})
	}
	return c.JSON(fiber.Map{"scores": scores, "count": len(scores)})
}

// GetUserScores handles GET /users/:user_id/scores?limit=N
func (s *ScoreService) GetUserScores(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	limit := defaultLeaderboardSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a positive integer"})
		}
		limit = parsed
	}

	var scores []models.TypingScore
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&scores).Error
	if err != nil {
		log.Printf("❌ failed to load scores for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load scores"})
	}
	return c.JSON(fiber.Map{"scores": scores, "count": len(scores)})
}
