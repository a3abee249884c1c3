package models

import "time"

// KeyMetrics is the per-key slice of the keyboard heatmap. Derived on demand,
// never persisted.
type KeyMetrics struct {
	Key               string  `json:"key"`
	TotalPresses      int     `json:"total_presses"`
	CorrectPresses    int     `json:"correct_presses"`
	IncorrectPresses  int     `json:"incorrect_presses"`
	Accuracy          float64 `json:"accuracy"`            // percent, 2 decimals
	AverageIntervalMs float64 `json:"average_interval_ms"` // from intervals > 0 only
	FastestIntervalMs float64 `json:"fastest_interval_ms"`
	SlowestIntervalMs float64 `json:"slowest_interval_ms"`

	// HeatLevel is a [0,1] score: low accuracy plus slow timing runs hot.
	HeatLevel float64 `json:"heat_level"`
}

// ErrorPattern is a recurring expected-vs-actual key confusion.
type ErrorPattern struct {
	ExpectedKey string  `json:"expected_key"`
	ActualKey   string  `json:"actual_key"`
	Occurrences int     `json:"occurrences"`
	ErrorRate   float64 `json:"error_rate"` // percent of all presses expecting ExpectedKey
}

// BiometricStats is the aggregate analytics document for a user or a single
// session. All fields are identity-valued (zero, empty) when no events exist;
// "no data yet" is a normal state, not an error.
type BiometricStats struct {
	UserID string `json:"user_id"`
	GameID string `json:"game_id,omitempty"` // empty for user-wide stats

	TotalKeystrokes  int `json:"total_keystrokes"`
	SessionsAnalyzed int `json:"sessions_analyzed"`

	KeyboardHeatmap []KeyMetrics `json:"keyboard_heatmap"`

	RhythmVariance    float64 `json:"rhythm_variance"`
	AverageIntervalMs float64 `json:"average_interval_ms"`

	ErrorPatterns []ErrorPattern `json:"error_patterns"`

	// FatigueIndex is a signed percentage; positive means the typist slowed
	// down between the first and last quarter of the session.
	FatigueIndex float64 `json:"fatigue_index"`

	PeakWPM         float64 `json:"peak_wpm"`
	AverageWPM      float64 `json:"average_wpm"`
	OverallAccuracy float64 `json:"overall_accuracy"`

	ProblemKeys []string `json:"problem_keys"`
	StrongKeys  []string `json:"strong_keys"`

	ComputedAt time.Time `json:"computed_at"`
}
