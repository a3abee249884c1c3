package services

import (
	"sort"

	"typing-test-system/models"
)

const (
	// Confusions seen this many times or fewer are statistical noise.
	errorPatternNoiseFloor = 2

	// Only the most frequent confusions are worth surfacing.
	errorPatternLimit = 20
)

// DetectErrorPatterns finds recurring expected→actual key confusions among the
// incorrect, non-backspace events. Output is sorted by descending occurrences
// (ties: higher error rate, then expected key) and capped at the top 20.
func DetectErrorPatterns(events []models.KeystrokeEvent) []models.ErrorPattern {
	typed := typedEvents(events)

	// Error rate is relative to every press that expected the key, correct
	// or not, so count those first.
	expectedTotals := make(map[string]int)
	for _, e := range typed {
		expectedTotals[e.ExpectedChar]++
	}

	type confusion struct {
		expected string
		actual   string
	}
	groups := make(map[confusion]int)
	for _, e := range typed {
		if e.IsCorrect {
			continue
		}
		groups[confusion{expected: e.ExpectedChar, actual: e.Key}]++
	}

	patterns := make([]models.ErrorPattern, 0, len(groups))
	for k, occurrences := range groups {
		if occurrences <= errorPatternNoiseFloor {
			continue
		}
		total := expectedTotals[k.expected]
		if total == 0 {
			continue
		}
		patterns = append(patterns, models.ErrorPattern{
			ExpectedKey: k.expected,
			ActualKey:   k.actual,
			Occurrences: occurrences,
			ErrorRate:   roundTo(float64(occurrences)/float64(total)*100, 2),
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Occurrences != patterns[j].Occurrences {
			return patterns[i].Occurrences > patterns[j].Occurrences
		}
		if patterns[i].ErrorRate != patterns[j].ErrorRate {
			return patterns[i].ErrorRate > patterns[j].ErrorRate
		}
		return patterns[i].ExpectedKey < patterns[j].ExpectedKey
	})

	if len(patterns) > errorPatternLimit {
		patterns = patterns[:errorPatternLimit]
	}
	return patterns
}
