package services

import (
	"fmt"
	"testing"

	"typing-test-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectErrorPatterns_EmptyInput(t *testing.T) {
	require.Empty(t, DetectErrorPatterns(nil))
}

func TestDetectErrorPatterns_NoiseFloorAndRate(t *testing.T) {
	// 10 events expect "e": 5 correct, 3 confused with "r", 2 with "w".
	// e→r survives with rate 30.0; e→w sits at the noise floor and is cut.
	events := make([]models.KeystrokeEvent, 0, 10)
	for i := 0; i < 5; i++ {
		events = append(events, pressEvent("e", "e", true, 100))
	}
	for i := 0; i < 3; i++ {
		events = append(events, pressEvent("r", "e", false, 100))
	}
	for i := 0; i < 2; i++ {
		events = append(events, pressEvent("w", "e", false, 100))
	}

	patterns := DetectErrorPatterns(events)
	require.Len(t, patterns, 1)
	assert.Equal(t, "e", patterns[0].ExpectedKey)
	assert.Equal(t, "r", patterns[0].ActualKey)
	assert.Equal(t, 3, patterns[0].Occurrences)
	assert.Equal(t, 30.0, patterns[0].ErrorRate)
}

func TestDetectErrorPatterns_NeverBelowNoiseFloor(t *testing.T) {
	events := []models.KeystrokeEvent{
		pressEvent("b", "a", false, 100),
		pressEvent("b", "a", false, 100),
		pressEvent("c", "a", false, 100),
	}
	for _, p := range DetectErrorPatterns(events) {
		assert.Greater(t, p.Occurrences, errorPatternNoiseFloor)
	}
	require.Empty(t, DetectErrorPatterns(events))
}

func TestDetectErrorPatterns_ExcludesBackspaces(t *testing.T) {
	events := make([]models.KeystrokeEvent, 0, 3)
	for i := 0; i < 3; i++ {
		e := pressEvent("b", "a", false, 100)
		e.IsBackspace = true
		events = append(events, e)
	}
	require.Empty(t, DetectErrorPatterns(events))
}

func TestDetectErrorPatterns_SortedAndTruncated(t *testing.T) {
	// 25 distinct confusions, pair i occurring 3+i times: output keeps the
	// 20 most frequent, most frequent first.
	var events []models.KeystrokeEvent
	for i := 0; i < 25; i++ {
		expected := fmt.Sprintf("k%02d", i)
		for j := 0; j < 3+i; j++ {
			events = append(events, pressEvent("x", expected, false, 100))
		}
	}

	patterns := DetectErrorPatterns(events)
	require.Len(t, patterns, errorPatternLimit)
	assert.Equal(t, "k24", patterns[0].ExpectedKey)
	assert.Equal(t, 27, patterns[0].Occurrences)
	for i := 1; i < len(patterns); i++ {
		assert.GreaterOrEqual(t, patterns[i-1].Occurrences, patterns[i].Occurrences)
	}
	// The five rarest confusions fell off the end.
	for _, p := range patterns {
		assert.Greater(t, p.Occurrences, 7)
	}
}
