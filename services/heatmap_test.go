package services

import (
	"testing"

	"typing-test-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pressEvent builds a minimal typed event for calculator tests.
func pressEvent(key, expected string, correct bool, intervalMs int64) models.KeystrokeEvent {
	return models.KeystrokeEvent{
		UserID:       "user-1",
		GameID:       "game-1",
		Key:          key,
		ExpectedChar: expected,
		IsCorrect:    correct,
		IntervalMs:   intervalMs,
	}
}

func TestCalculateHeatmap_EmptyInput(t *testing.T) {
	require.Empty(t, CalculateHeatmap(nil))
	require.Empty(t, CalculateHeatmap([]models.KeystrokeEvent{}))
}

func TestCalculateHeatmap_SingleKey(t *testing.T) {
	// Key "e" pressed 10 times, 9 correct, every interval 250ms:
	// accuracy 90.0, accuracyScore 0.10, speedScore 0.5, heat 0.22.
	events := make([]models.KeystrokeEvent, 0, 10)
	for i := 0; i < 9; i++ {
		events = append(events, pressEvent("e", "e", true, 250))
	}
	// one miss: "e" pressed where "r" was expected
	events = append(events, pressEvent("e", "r", false, 250))

	heatmap := CalculateHeatmap(events)
	require.Len(t, heatmap, 1)

	m := heatmap[0]
	assert.Equal(t, "e", m.Key)
	assert.Equal(t, 10, m.TotalPresses)
	assert.Equal(t, 9, m.CorrectPresses)
	assert.Equal(t, 1, m.IncorrectPresses)
	assert.Equal(t, 90.0, m.Accuracy)
	assert.Equal(t, 250.0, m.AverageIntervalMs)
	assert.Equal(t, 250.0, m.FastestIntervalMs)
	assert.Equal(t, 250.0, m.SlowestIntervalMs)
	assert.Equal(t, 0.22, m.HeatLevel)
}

func TestCalculateHeatmap_ExcludesBackspacesAndEmptyKeys(t *testing.T) {
	events := []models.KeystrokeEvent{
		pressEvent("a", "a", true, 100),
		{UserID: "user-1", GameID: "game-1", Key: "Backspace", IsBackspace: true, IntervalMs: 100},
		{UserID: "user-1", GameID: "game-1", Key: "", IntervalMs: 100},
	}
	heatmap := CalculateHeatmap(events)
	require.Len(t, heatmap, 1)
	assert.Equal(t, "a", heatmap[0].Key)
}

func TestCalculateHeatmap_OrderedByTotalPressesDescending(t *testing.T) {
	events := []models.KeystrokeEvent{
		pressEvent("a", "a", true, 100),
		pressEvent("b", "b", true, 100),
		pressEvent("b", "b", true, 100),
		pressEvent("c", "c", true, 100),
		pressEvent("c", "c", true, 100),
		pressEvent("c", "c", true, 100),
	}
	heatmap := CalculateHeatmap(events)
	require.Len(t, heatmap, 3)
	assert.Equal(t, "c", heatmap[0].Key)
	assert.Equal(t, "b", heatmap[1].Key)
	assert.Equal(t, "a", heatmap[2].Key)
}

func TestCalculateHeatmap_IgnoresZeroIntervals(t *testing.T) {
	events := []models.KeystrokeEvent{
		pressEvent("a", "a", true, 0),
		pressEvent("a", "a", true, 300),
		pressEvent("a", "a", true, 100),
	}
	heatmap := CalculateHeatmap(events)
	require.Len(t, heatmap, 1)
	assert.Equal(t, 200.0, heatmap[0].AverageIntervalMs)
	assert.Equal(t, 100.0, heatmap[0].FastestIntervalMs)
	assert.Equal(t, 300.0, heatmap[0].SlowestIntervalMs)
}

func TestCalculateHeatmap_BoundsHold(t *testing.T) {
	events := []models.KeystrokeEvent{
		pressEvent("a", "a", false, 5000), // slow and wrong: hottest case
		pressEvent("b", "b", true, 1),     // fast and right: coolest case
		pressEvent("c", "c", false, 0),
	}
	for _, m := range CalculateHeatmap(events) {
		assert.GreaterOrEqual(t, m.Accuracy, 0.0)
		assert.LessOrEqual(t, m.Accuracy, 100.0)
		assert.GreaterOrEqual(t, m.HeatLevel, 0.0)
		assert.LessOrEqual(t, m.HeatLevel, 1.0)
	}
}

func TestHeatLevel_MonotonicInAccuracy(t *testing.T) {
	// Holding the interval fixed, heat must never decrease as accuracy drops.
	prev := -1.0
	for accuracy := 100.0; accuracy >= 0; accuracy -= 5 {
		h := heatLevel(accuracy, 250)
		assert.GreaterOrEqual(t, h, prev, "heat dropped when accuracy fell to %.0f", accuracy)
		prev = h
	}
}
