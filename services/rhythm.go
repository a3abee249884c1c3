package services

import (
	"typing-test-system/models"
)

// Intervals at or above this are thinking-time pauses, not typing rhythm.
const rhythmPauseThresholdMs = 2000

// qualifyingIntervals selects the inter-keystroke intervals that carry rhythm
// signal: strictly positive and below the pause threshold.
func qualifyingIntervals(events []models.KeystrokeEvent) []float64 {
	intervals := make([]float64, 0, len(events))
	for _, e := range events {
		if e.IntervalMs > 0 && e.IntervalMs < rhythmPauseThresholdMs {
			intervals = append(intervals, float64(e.IntervalMs))
		}
	}
	return intervals
}

// CalculateRhythmVariance returns the population variance of qualifying
// inter-keystroke intervals, rounded to 2 decimals. Lower is steadier. With
// fewer than 2 qualifying intervals there is no rhythm to measure and the
// result is 0.
func CalculateRhythmVariance(events []models.KeystrokeEvent) float64 {
	intervals := qualifyingIntervals(events)
	if len(intervals) < 2 {
		return 0
	}

	var sum float64
	for _, iv := range intervals {
		sum += iv
	}
	mean := sum / float64(len(intervals))

	var variance float64
	for _, iv := range intervals {
		d := iv - mean
		variance += d * d
	}
	variance /= float64(len(intervals))

	return roundTo(variance, 2)
}

// AverageInterval is the mean of qualifying intervals, rounded to 2 decimals;
// 0 when nothing qualifies.
func AverageInterval(events []models.KeystrokeEvent) float64 {
	intervals := qualifyingIntervals(events)
	if len(intervals) == 0 {
		return 0
	}
	var sum float64
	for _, iv := range intervals {
		sum += iv
	}
	return roundTo(sum/float64(len(intervals)), 2)
}
