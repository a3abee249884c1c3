package services

import (
	"math"
	"sort"

	"typing-test-system/models"
)

// Heat weighting: accuracy dominates, timing seasons. A key the user misses
// often runs hotter than one they merely type slowly.
const (
	heatAccuracyWeight = 0.7
	heatSpeedWeight    = 0.3

	// Intervals are normalized against this ceiling; anything slower than
	// 500ms per press saturates the speed component.
	heatIntervalCeilingMs = 500.0
)

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// typedEvents drops backspaces and empty-key events; neither belongs in the
// heatmap or the error patterns.
func typedEvents(events []models.KeystrokeEvent) []models.KeystrokeEvent {
	out := make([]models.KeystrokeEvent, 0, len(events))
	for _, e := range events {
		if e.IsBackspace || e.Key == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

// CalculateHeatmap aggregates raw events into per-key metrics, ordered by
// descending total presses (ties broken by key) so the most-practiced keys
// come first and the output is deterministic.
func CalculateHeatmap(events []models.KeystrokeEvent) []models.KeyMetrics {
	groups := make(map[string][]models.KeystrokeEvent)
	for _, e := range typedEvents(events) {
		groups[e.Key] = append(groups[e.Key], e)
	}

	metrics := make([]models.KeyMetrics, 0, len(groups))
	for key, group := range groups {
		m := models.KeyMetrics{Key: key, TotalPresses: len(group)}

		var intervalSum, fastest, slowest float64
		intervalCount := 0
		for _, e := range group {
			if e.IsCorrect {
				m.CorrectPresses++
			} else {
				m.IncorrectPresses++
			}
			// Zero intervals mean "first event of the session" or a
			// capture gap; they carry no timing signal.
			if e.IntervalMs > 0 {
				iv := float64(e.IntervalMs)
				intervalSum += iv
				if intervalCount == 0 || iv < fastest {
					fastest = iv
				}
				if iv > slowest {
					slowest = iv
				}
				intervalCount++
			}
		}

		m.Accuracy = roundTo(float64(m.CorrectPresses)/float64(m.TotalPresses)*100, 2)
		if intervalCount > 0 {
			m.AverageIntervalMs = roundTo(intervalSum/float64(intervalCount), 2)
			m.FastestIntervalMs = roundTo(fastest, 2)
			m.SlowestIntervalMs = roundTo(slowest, 2)
		}
		m.HeatLevel = heatLevel(m.Accuracy, m.AverageIntervalMs)

		metrics = append(metrics, m)
	}

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].TotalPresses != metrics[j].TotalPresses {
			return metrics[i].TotalPresses > metrics[j].TotalPresses
		}
		return metrics[i].Key < metrics[j].Key
	})
	return metrics
}

// heatLevel blends an inverted accuracy score with a normalized slowness
// score into a [0,1] value, rounded to 3 decimals.
func heatLevel(accuracy, averageIntervalMs float64) float64 {
	accuracyScore := (100 - accuracy) / 100
	speedScore := math.Min(averageIntervalMs/heatIntervalCeilingMs, 1.0)
	return roundTo(heatAccuracyWeight*accuracyScore+heatSpeedWeight*speedScore, 3)
}
