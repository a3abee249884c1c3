package services

import (
	"sort"

	"typing-test-system/models"
)

// Sessions shorter than this have no meaningful first/last quarter contrast.
const fatigueMinEvents = 20

// CalculateFatigueIndex measures speed change across one session: the signed
// percentage drop in average WPM between the first and last quarter of the
// event sequence. Positive means the typist slowed down, negative means they
// warmed up. Sessions with fewer than 20 events, or a zero first-quarter
// baseline, yield 0.
func CalculateFatigueIndex(events []models.KeystrokeEvent) float64 {
	if len(events) < fatigueMinEvents {
		return 0
	}

	ordered := make([]models.KeystrokeEvent, len(events))
	copy(ordered, events)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SequenceNumber < ordered[j].SequenceNumber
	})

	quarter := len(ordered) / 4
	first := ordered[:quarter]
	last := ordered[len(ordered)-quarter:]

	firstQuarterWPM := averageWPM(first)
	if firstQuarterWPM == 0 {
		return 0
	}
	lastQuarterWPM := averageWPM(last)

	return roundTo((firstQuarterWPM-lastQuarterWPM)/firstQuarterWPM*100, 2)
}

func averageWPM(events []models.KeystrokeEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	var sum float64
	for _, e := range events {
		sum += e.CurrentWPM
	}
	return sum / float64(len(events))
}
