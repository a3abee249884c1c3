package services

import (
	"log"
	"time"

	"typing-test-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type PassageService struct {
	DB *gorm.DB
}

func NewPassageService(db *gorm.DB) *PassageService {
	return &PassageService{DB: db}
}

type CreatePassageRequest struct {
	Title      string `json:"title" validate:"required"`
	Content    string `json:"content" validate:"required"`
	Language   string `json:"language,omitempty"`
	Difficulty int    `json:"difficulty,omitempty"`
}

// CreatePassage handles POST /passages — new passages start as drafts.
func (s *PassageService) CreatePassage(c *fiber.Ctx) error {
	var req CreatePassageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid JSON",
			"details": err.Error(),
		})
	}
	if req.Title == "" || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title and content are required"})
	}
	if req.Difficulty < 0 || req.Difficulty > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "difficulty must be between 1 and 5"})
	}

	passageSlug := slug.Make(req.Title)
	var count int64
	if err := s.DB.Model(&models.Passage{}).
		Where("slug = ?", passageSlug).
		Count(&count).Error; err != nil {
		log.Printf("❌ DB error checking passage slug %s: %v", passageSlug, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "a passage with this title already exists"})
	}

	passage := models.Passage{
		ID:         uuid.NewString(),
		Title:      req.Title,
		Slug:       passageSlug,
		Content:    req.Content,
		Language:   req.Language,
		Difficulty: req.Difficulty,
		Status:     models.PassageStatusDraft,
	}
	if passage.Language == "" {
		passage.Language = "en"
	}
	if passage.Difficulty == 0 {
		passage.Difficulty = 1
	}
	if err := s.DB.Create(&passage).Error; err != nil {
		log.Printf("❌ failed to create passage %s: %v", passageSlug, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create passage"})
	}
	return c.Status(fiber.StatusCreated).JSON(passage)
}

// GetPublishedPassages handles GET /passages/published
func (s *PassageService) GetPublishedPassages(c *fiber.Ctx) error {
	var passages []models.Passage
	err := s.DB.Where("status = ?", models.PassageStatusPublished).
		Order("created_at DESC").
		Find(&passages).Error
	if err != nil {
		log.Printf("❌ failed to list published passages: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list passages"})
	}
	return c.JSON(fiber.Map{"passages": passages, "count": len(passages)})
}

// GetPassageBySlug handles GET /passages/:slug
func (s *PassageService) GetPassageBySlug(c *fiber.Ctx) error {
	var passage models.Passage
	err := s.DB.Where("slug = ? AND status = ?", c.Params("slug"), models.PassageStatusPublished).
		First(&passage).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "passage not found"})
	}
	if err != nil {
		log.Printf("❌ failed to load passage %s: %v", c.Params("slug"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load passage"})
	}
	return c.JSON(passage)
}

// PublishNow handles POST /passages/:id/publish/now
func (s *PassageService) PublishNow(c *fiber.Ctx) error {
	return s.updatePublishState(c, func(p *models.Passage) {
		p.Status = models.PassageStatusPublished
		p.PublishAt = nil
	})
}

type schedulePublishRequest struct {
	PublishAt time.Time `json:"publish_at" validate:"required"`
}

// SchedulePublish handles POST /passages/:id/publish/schedule
func (s *PassageService) SchedulePublish(c *fiber.Ctx) error {
	var req schedulePublishRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid JSON",
			"details": err.Error(),
		})
	}
	if !req.PublishAt.After(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "publish_at must be in the future"})
	}
	return s.updatePublishState(c, func(p *models.Passage) {
		p.Status = models.PassageStatusScheduled
		p.PublishAt = &req.PublishAt
	})
}

// CancelScheduledPublish handles POST /passages/:id/publish/cancel
func (s *PassageService) CancelScheduledPublish(c *fiber.Ctx) error {
	return s.updatePublishState(c, func(p *models.Passage) {
		p.Status = models.PassageStatusDraft
		p.PublishAt = nil
	})
}

func (s *PassageService) updatePublishState(c *fiber.Ctx, mutate func(*models.Passage)) error {
	var passage models.Passage
	err := s.DB.First(&passage, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "passage not found"})
	}
	if err != nil {
		log.Printf("❌ failed to load passage %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load passage"})
	}

	mutate(&passage)
	if err := s.DB.Save(&passage).Error; err != nil {
		log.Printf("❌ failed to update passage %s: %v", passage.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update passage"})
	}
	return c.JSON(passage)
}

// DeletePassage handles DELETE /passages/:id
func (s *PassageService) DeletePassage(c *fiber.Ctx) error {
	res := s.DB.Delete(&models.Passage{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		log.Printf("❌ failed to delete passage %s: %v", c.Params("id"), res.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete passage"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "passage not found"})
	}
	return c.JSON(fiber.Map{"deleted": res.RowsAffected})
}
