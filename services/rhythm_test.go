package services

import (
	"testing"

	"typing-test-system/models"

	"github.com/stretchr/testify/assert"
)

func intervalEvents(intervals ...int64) []models.KeystrokeEvent {
	events := make([]models.KeystrokeEvent, len(intervals))
	for i, iv := range intervals {
		events[i] = pressEvent("a", "a", true, iv)
	}
	return events
}

func TestCalculateRhythmVariance_PopulationVariance(t *testing.T) {
	// mean 200, deviations ±100 and 0: variance = 20000/3 = 6666.67
	got := CalculateRhythmVariance(intervalEvents(100, 200, 300))
	assert.Equal(t, 6666.67, got)
}

func TestCalculateRhythmVariance_PerfectlySteady(t *testing.T) {
	assert.Equal(t, 0.0, CalculateRhythmVariance(intervalEvents(150, 150, 150, 150)))
}

func TestCalculateRhythmVariance_ExcludesPausesAndZeroes(t *testing.T) {
	// 0 and >= 2000 carry no rhythm signal; only 100/200/300 qualify.
	with := CalculateRhythmVariance(intervalEvents(0, 100, 200, 300, 2000, 9999))
	without := CalculateRhythmVariance(intervalEvents(100, 200, 300))
	assert.Equal(t, without, with)
}

func TestCalculateRhythmVariance_InsufficientIntervals(t *testing.T) {
	assert.Equal(t, 0.0, CalculateRhythmVariance(nil))
	assert.Equal(t, 0.0, CalculateRhythmVariance(intervalEvents(250)))
	// two intervals present but only one qualifies
	assert.Equal(t, 0.0, CalculateRhythmVariance(intervalEvents(250, 3000)))
}

func TestAverageInterval(t *testing.T) {
	assert.Equal(t, 200.0, AverageInterval(intervalEvents(100, 200, 300)))
	assert.Equal(t, 0.0, AverageInterval(nil))
	assert.Equal(t, 0.0, AverageInterval(intervalEvents(0, 2000)))
}
