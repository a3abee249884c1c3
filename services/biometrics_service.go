package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"typing-test-system/models"

	"github.com/gofiber/fiber/v2"
)

const (
	problemKeyAccuracyMax = 85.0
	strongKeyAccuracyMin  = 95.0
	strongKeyMinPresses   = 5
	keyListLimit          = 10
)

// ErrInsufficientEvents marks a session too short for fatigue analysis. In
// user-wide aggregation such sessions are skipped, not averaged in as zeros.
var ErrInsufficientEvents = errors.New("session has too few events for fatigue analysis")

// BiometricsService turns raw keystroke events into derived statistics. It is
// stateless: every call is a pure function of the fetched event set, so
// concurrent requests need no locking.
type BiometricsService struct {
	Store KeystrokeStore
}

func NewBiometricsService(store KeystrokeStore) *BiometricsService {
	return &BiometricsService{Store: store}
}

// GetUserStats aggregates biometrics across every session a user has
// recorded. Zero events is a normal state and yields zero-valued stats.
func (s *BiometricsService) GetUserStats(ctx context.Context, userID string) (*models.BiometricStats, error) {
	if userID == "" {
		return nil, models.ErrMissingUserID
	}

	events, err := s.Store.GetUserEvents(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return emptyStats(userID, ""), nil
	}

	stats := computeStats(userID, "", events)

	fatigue, err := s.userFatigueIndex(ctx, userID, events)
	if err != nil {
		return nil, err
	}
	stats.FatigueIndex = fatigue

	return stats, nil
}

// GetSessionStats aggregates biometrics for one session.
func (s *BiometricsService) GetSessionStats(ctx context.Context, userID, gameID string) (*models.BiometricStats, error) {
	if userID == "" {
		return nil, models.ErrMissingUserID
	}
	if gameID == "" {
		return nil, models.ErrMissingGameID
	}

	events, err := s.Store.GetSessionEvents(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return emptyStats(userID, gameID), nil
	}

	stats := computeStats(userID, gameID, events)
	stats.FatigueIndex = CalculateFatigueIndex(events)
	return stats, nil
}

// userFatigueIndex averages the per-session fatigue index over all of the
// user's sessions. Sessions fan out as independent tasks; one failing or
// undersized session is logged and skipped rather than aborting the whole
// aggregation. On cancellation the partial results are discarded.
func (s *BiometricsService) userFatigueIndex(ctx context.Context, userID string, events []models.KeystrokeEvent) (float64, error) {
	gameIDs := sessionIDs(events)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		indexes []float64
	)
	for _, gameID := range gameIDs {
		wg.Add(1)
		go func(gameID string) {
			defer wg.Done()
			index, err := s.sessionFatigue(ctx, userID, gameID)
			if err != nil {
				log.Printf("⚠️ skipping fatigue for user %s session %s: %v", userID, gameID, err)
				return
			}
			mu.Lock()
			indexes = append(indexes, index)
			mu.Unlock()
		}(gameID)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(indexes) == 0 {
		return 0, nil
	}

	var sum float64
	for _, index := range indexes {
		sum += index
	}
	return roundTo(sum/float64(len(indexes)), 2), nil
}

func (s *BiometricsService) sessionFatigue(ctx context.Context, userID, gameID string) (float64, error) {
	if gameID == "" {
		return 0, models.ErrMissingGameID
	}
	events, err := s.Store.GetSessionEvents(ctx, userID, gameID)
	if err != nil {
		return 0, err
	}
	if len(events) < fatigueMinEvents {
		return 0, ErrInsufficientEvents
	}
	return CalculateFatigueIndex(events), nil
}

// sessionIDs lists the distinct game IDs in first-seen order.
func sessionIDs(events []models.KeystrokeEvent) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, e := range events {
		if !seen[e.GameID] {
			seen[e.GameID] = true
			ids = append(ids, e.GameID)
		}
	}
	return ids
}

// computeStats runs the calculators over an event set and merges their output.
// FatigueIndex is left for the caller, since it is scoped differently for
// user-wide versus single-session requests.
func computeStats(userID, gameID string, events []models.KeystrokeEvent) *models.BiometricStats {
	heatmap := CalculateHeatmap(events)

	stats := &models.BiometricStats{
		UserID:            userID,
		GameID:            gameID,
		TotalKeystrokes:   len(events),
		SessionsAnalyzed:  len(sessionIDs(events)),
		KeyboardHeatmap:   heatmap,
		RhythmVariance:    CalculateRhythmVariance(events),
		AverageIntervalMs: AverageInterval(events),
		ErrorPatterns:     DetectErrorPatterns(events),
		ProblemKeys:       problemKeys(heatmap),
		StrongKeys:        strongKeys(heatmap),
		ComputedAt:        time.Now().UTC(),
	}

	// Peak/average WPM and overall accuracy reduce the point-in-time values
	// the capture client embedded on each event; they are not recomputed
	// from raw correctness or timing.
	var wpmSum, accSum float64
	for _, e := range events {
		if e.CurrentWPM > stats.PeakWPM {
			stats.PeakWPM = e.CurrentWPM
		}
		wpmSum += e.CurrentWPM
		accSum += e.CurrentAccuracy
	}
	stats.AverageWPM = roundTo(wpmSum/float64(len(events)), 2)
	stats.OverallAccuracy = roundTo(accSum/float64(len(events)), 2)

	return stats
}

// problemKeys flags low-accuracy keys, worst first, capped at 10.
func problemKeys(heatmap []models.KeyMetrics) []string {
	candidates := make([]models.KeyMetrics, 0)
	for _, m := range heatmap {
		if m.Accuracy < problemKeyAccuracyMax {
			candidates = append(candidates, m)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Accuracy != candidates[j].Accuracy {
			return candidates[i].Accuracy < candidates[j].Accuracy
		}
		return candidates[i].Key < candidates[j].Key
	})
	return keyNames(candidates, keyListLimit)
}

// strongKeys flags high-accuracy keys with enough presses to trust, best
// first (ties broken by faster average interval), capped at 10.
func strongKeys(heatmap []models.KeyMetrics) []string {
	candidates := make([]models.KeyMetrics, 0)
	for _, m := range heatmap {
		if m.Accuracy > strongKeyAccuracyMin && m.TotalPresses > strongKeyMinPresses {
			candidates = append(candidates, m)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Accuracy != candidates[j].Accuracy {
			return candidates[i].Accuracy > candidates[j].Accuracy
		}
		return candidates[i].AverageIntervalMs < candidates[j].AverageIntervalMs
	})
	return keyNames(candidates, keyListLimit)
}

func keyNames(metrics []models.KeyMetrics, limit int) []string {
	if len(metrics) > limit {
		metrics = metrics[:limit]
	}
	names := make([]string, len(metrics))
	for i, m := range metrics {
		names[i] = m.Key
	}
	return names
}

// emptyStats is the "no data yet" document: identity values everywhere,
// empty lists rather than nulls.
func emptyStats(userID, gameID string) *models.BiometricStats {
	return &models.BiometricStats{
		UserID:          userID,
		GameID:          gameID,
		KeyboardHeatmap: []models.KeyMetrics{},
		ErrorPatterns:   []models.ErrorPattern{},
		ProblemKeys:     []string{},
		StrongKeys:      []string{},
		ComputedAt:      time.Now().UTC(),
	}
}

// --- HTTP handlers ---

// GetUserBiometrics handles GET /users/:user_id/biometrics
func (s *BiometricsService) GetUserBiometrics(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	stats, err := s.GetUserStats(c.UserContext(), userID)
	if err != nil {
		log.Printf("❌ biometrics failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "failed to compute biometrics",
			"details": err.Error(),
		})
	}
	return c.JSON(stats)
}

// GetSessionBiometrics handles GET /users/:user_id/sessions/:game_id/biometrics
func (s *BiometricsService) GetSessionBiometrics(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	gameID := c.Params("game_id")
	if userID == "" || gameID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id and game_id are required"})
	}

	stats, err := s.GetSessionStats(c.UserContext(), userID, gameID)
	if err != nil {
		log.Printf("❌ biometrics failed for user %s session %s: %v", userID, gameID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "failed to compute biometrics",
			"details": err.Error(),
		})
	}
	return c.JSON(stats)
}
