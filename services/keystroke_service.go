package services

import (
	"errors"
	"log"
	"strconv"
	"time"

	"typing-test-system/models"

	"github.com/gofiber/fiber/v2"
)

// KeystrokeService owns the event ingestion and erasure surface. Analytics
// never writes; this is the only write path into the keystroke store.
type KeystrokeService struct {
	Store  KeystrokeStore
	Export *ExportService
}

func NewKeystrokeService(store KeystrokeStore, export *ExportService) *KeystrokeService {
	return &KeystrokeService{Store: store, Export: export}
}

func isValidationError(err error) bool {
	return errors.Is(err, models.ErrMissingUserID) ||
		errors.Is(err, models.ErrMissingGameID) ||
		errors.Is(err, models.ErrNegativeSequence) ||
		errors.Is(err, models.ErrNegativeTiming) ||
		errors.Is(err, models.ErrNegativePosition)
}

// RecordEvent handles POST /keystrokes
func (s *KeystrokeService) RecordEvent(c *fiber.Ctx) error {
	var event models.KeystrokeEvent
	if err := c.BodyParser(&event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid JSON",
			"details": err.Error(),
		})
	}

	stored, err := s.Store.AddEvent(c.UserContext(), &event)
	if err != nil {
		if isValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("❌ failed to record keystroke for user %s game %s: %v", event.UserID, event.GameID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record keystroke"})
	}
	return c.Status(fiber.StatusCreated).JSON(stored)
}

type recordBatchRequest struct {
	Events []models.KeystrokeEvent `json:"events"`
}

// RecordEventsBatch handles POST /keystrokes/batch
func (s *KeystrokeService) RecordEventsBatch(c *fiber.Ctx) error {
	var req recordBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid JSON",
			"details": err.Error(),
		})
	}
	if len(req.Events) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "events must not be empty"})
	}

	inserted, err := s.Store.AddEventsBatch(c.UserContext(), req.Events)
	if err != nil {
		if isValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("❌ batch insert failed after %d events: %v", inserted, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":    "failed to record keystroke batch",
			"inserted": inserted,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"inserted": inserted})
}

// GetUserEvents handles GET /users/:user_id/keystrokes?limit=N
func (s *KeystrokeService) GetUserEvents(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a non-negative integer"})
		}
		limit = parsed
	}

	events, err := s.Store.GetUserEvents(c.UserContext(), userID, limit)
	if err != nil {
		log.Printf("❌ failed to list keystrokes for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list keystrokes"})
	}
	return c.JSON(fiber.Map{"events": events, "count": len(events)})
}

// GetSessionEvents handles GET /users/:user_id/sessions/:game_id/keystrokes
func (s *KeystrokeService) GetSessionEvents(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	gameID := c.Params("game_id")
	if userID == "" || gameID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id and game_id are required"})
	}

	events, err := s.Store.GetSessionEvents(c.UserContext(), userID, gameID)
	if err != nil {
		log.Printf("❌ failed to list session keystrokes for user %s game %s: %v", userID, gameID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list keystrokes"})
	}
	return c.JSON(fiber.Map{"events": events, "count": len(events)})
}

// GetUserEventsInRange handles GET /users/:user_id/keystrokes/range?start=&end=
// with RFC3339 bounds, end exclusive.
func (s *KeystrokeService) GetUserEventsInRange(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start must be an RFC3339 timestamp"})
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end must be an RFC3339 timestamp"})
	}
	if !end.After(start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end must be after start"})
	}

	events, err := s.Store.GetUserEventsInRange(c.UserContext(), userID, start, end)
	if err != nil {
		log.Printf("❌ failed to list ranged keystrokes for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list keystrokes"})
	}
	return c.JSON(fiber.Map{"events": events, "count": len(events)})
}

// CountUserEvents handles GET /users/:user_id/keystrokes/count
func (s *KeystrokeService) CountUserEvents(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	count, err := s.Store.CountUserEvents(c.UserContext(), userID)
	if err != nil {
		log.Printf("❌ failed to count keystrokes for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count keystrokes"})
	}
	return c.JSON(fiber.Map{"user_id": userID, "count": count})
}

// DeleteUserEvents handles DELETE /users/:user_id/keystrokes
//
// Full erasure for privacy compliance. The user's history is archived to
// object storage first so accidental deletions are recoverable; pass
// ?skip_archive=true to erase without a safety copy.
func (s *KeystrokeService) DeleteUserEvents(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	archiveURL := ""
	if c.Query("skip_archive") != "true" && s.Export != nil {
		url, err := s.Export.ExportUserEvents(c.UserContext(), userID)
		if err != nil {
			log.Printf("⚠️ archive before erasure failed for user %s: %v", userID, err)
		} else {
			archiveURL = url
		}
	}

	deleted, err := s.Store.DeleteUserEvents(c.UserContext(), userID)
	if err != nil {
		log.Printf("❌ failed to erase keystrokes for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to erase keystrokes"})
	}

	resp := fiber.Map{"user_id": userID, "deleted": deleted}
	if archiveURL != "" {
		resp["archive_url"] = archiveURL
	}
	return c.JSON(resp)
}

// ExportUserEvents handles POST /users/:user_id/keystrokes/export
func (s *KeystrokeService) ExportUserEvents(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}
	if s.Export == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "export storage is not configured"})
	}

	url, err := s.Export.ExportUserEvents(c.UserContext(), userID)
	if err != nil {
		log.Printf("❌ export failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to export keystrokes"})
	}
	return c.JSON(fiber.Map{"user_id": userID, "archive_url": url})
}
