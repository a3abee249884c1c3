package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"typing-test-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeKeystrokeStore implements KeystrokeStore in memory for aggregator tests.
type fakeKeystrokeStore struct {
	events []models.KeystrokeEvent

	// failSessions maps game IDs whose session fetch should error.
	failSessions map[string]error

	// err, when set, fails every call.
	err error
}

func (f *fakeKeystrokeStore) AddEvent(ctx context.Context, event *models.KeystrokeEvent) (*models.KeystrokeEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.events = append(f.events, *event)
	return event, nil
}

func (f *fakeKeystrokeStore) AddEventsBatch(ctx context.Context, events []models.KeystrokeEvent) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.events = append(f.events, events...)
	return len(events), nil
}

func (f *fakeKeystrokeStore) GetUserEvents(ctx context.Context, userID string, limit int) ([]models.KeystrokeEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.KeystrokeEvent
	for _, e := range f.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeKeystrokeStore) GetSessionEvents(ctx context.Context, userID, gameID string) ([]models.KeystrokeEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := f.failSessions[gameID]; err != nil {
		return nil, err
	}
	var out []models.KeystrokeEvent
	for _, e := range f.events {
		if e.UserID == userID && e.GameID == gameID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeKeystrokeStore) GetUserEventsInRange(ctx context.Context, userID string, start, end time.Time) ([]models.KeystrokeEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.KeystrokeEvent
	for _, e := range f.events {
		if e.UserID == userID && !e.RecordedAt.Before(start) && e.RecordedAt.Before(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeKeystrokeStore) DeleteUserEvents(ctx context.Context, userID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	kept := f.events[:0]
	var deleted int64
	for _, e := range f.events {
		if e.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	f.events = kept
	return deleted, nil
}

func (f *fakeKeystrokeStore) CountUserEvents(ctx context.Context, userID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var count int64
	for _, e := range f.events {
		if e.UserID == userID {
			count++
		}
	}
	return count, nil
}

// fatigueSession appends a 20-event session whose first quarter averages
// firstWPM and last quarter lastWPM.
func fatigueSession(store *fakeKeystrokeStore, userID, gameID string, firstWPM, lastWPM float64) {
	for i := 0; i < 20; i++ {
		wpm := (firstWPM + lastWPM) / 2
		if i < 5 {
			wpm = firstWPM
		} else if i >= 15 {
			wpm = lastWPM
		}
		store.events = append(store.events, models.KeystrokeEvent{
			UserID:          userID,
			GameID:          gameID,
			SequenceNumber:  i,
			Key:             "a",
			ExpectedChar:    "a",
			IsCorrect:       true,
			IntervalMs:      150,
			CurrentWPM:      wpm,
			CurrentAccuracy: 95,
		})
	}
}

func TestGetUserStats_ValidatesUserID(t *testing.T) {
	svc := NewBiometricsService(&fakeKeystrokeStore{})
	_, err := svc.GetUserStats(context.Background(), "")
	require.ErrorIs(t, err, models.ErrMissingUserID)
}

func TestGetSessionStats_ValidatesIDs(t *testing.T) {
	svc := NewBiometricsService(&fakeKeystrokeStore{})
	_, err := svc.GetSessionStats(context.Background(), "", "game-1")
	require.ErrorIs(t, err, models.ErrMissingUserID)
	_, err = svc.GetSessionStats(context.Background(), "user-1", "")
	require.ErrorIs(t, err, models.ErrMissingGameID)
}

func TestGetUserStats_NoDataIsNotAnError(t *testing.T) {
	svc := NewBiometricsService(&fakeKeystrokeStore{})

	stats, err := svc.GetUserStats(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, "ghost", stats.UserID)
	assert.Equal(t, 0, stats.TotalKeystrokes)
	assert.Empty(t, stats.KeyboardHeatmap)
	assert.Empty(t, stats.ErrorPatterns)
	assert.Empty(t, stats.ProblemKeys)
	assert.Empty(t, stats.StrongKeys)
	assert.Equal(t, 0.0, stats.FatigueIndex)
	assert.Equal(t, 0.0, stats.PeakWPM)
}

func TestGetUserStats_PropagatesStoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := NewBiometricsService(&fakeKeystrokeStore{err: storeErr})
	_, err := svc.GetUserStats(context.Background(), "user-1")
	require.ErrorIs(t, err, storeErr)
}

func TestGetUserStats_SkipsFailedSessionsInFatigueAverage(t *testing.T) {
	store := &fakeKeystrokeStore{failSessions: map[string]error{
		"game-3": errors.New("row corrupted"),
	}}
	fatigueSession(store, "user-1", "game-1", 50, 45) // index 10
	fatigueSession(store, "user-1", "game-2", 50, 40) // index 20
	fatigueSession(store, "user-1", "game-3", 50, 30) // fails, skipped

	svc := NewBiometricsService(store)
	stats, err := svc.GetUserStats(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.SessionsAnalyzed)
	assert.Equal(t, 15.0, stats.FatigueIndex)
}

func TestGetUserStats_SkipsUndersizedSessionsInFatigueAverage(t *testing.T) {
	store := &fakeKeystrokeStore{}
	fatigueSession(store, "user-1", "game-1", 50, 45) // index 10
	// a 5-event warmup session: too short for fatigue, skipped rather than
	// dragging the average to 5
	for i := 0; i < 5; i++ {
		store.events = append(store.events, models.KeystrokeEvent{
			UserID: "user-1", GameID: "game-short", SequenceNumber: i,
			Key: "a", ExpectedChar: "a", IsCorrect: true, CurrentWPM: 60,
		})
	}

	svc := NewBiometricsService(store)
	stats, err := svc.GetUserStats(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, stats.FatigueIndex)
}

func TestGetUserStats_Idempotent(t *testing.T) {
	store := &fakeKeystrokeStore{}
	fatigueSession(store, "user-1", "game-1", 60, 50)
	for i, iv := range []int64{180, 190, 200} {
		store.events = append(store.events, models.KeystrokeEvent{
			UserID: "user-1", GameID: "game-2", SequenceNumber: i,
			Key: "q", ExpectedChar: "w", IsCorrect: false, IntervalMs: iv,
		})
	}

	svc := NewBiometricsService(store)
	first, err := svc.GetUserStats(context.Background(), "user-1")
	require.NoError(t, err)
	second, err := svc.GetUserStats(context.Background(), "user-1")
	require.NoError(t, err)

	// Identical except for the computation timestamp.
	first.ComputedAt = second.ComputedAt
	assert.Equal(t, first, second)
}

func TestGetUserStats_CancelledContextDiscardsResults(t *testing.T) {
	store := &fakeKeystrokeStore{}
	fatigueSession(store, "user-1", "game-1", 50, 45)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewBiometricsService(store)
	_, err := svc.GetUserStats(ctx, "user-1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestGetSessionStats_ComputesFatigueInline(t *testing.T) {
	store := &fakeKeystrokeStore{}
	fatigueSession(store, "user-1", "game-1", 50, 40)

	svc := NewBiometricsService(store)
	stats, err := svc.GetSessionStats(context.Background(), "user-1", "game-1")
	require.NoError(t, err)

	assert.Equal(t, "game-1", stats.GameID)
	assert.Equal(t, 20, stats.TotalKeystrokes)
	assert.Equal(t, 1, stats.SessionsAnalyzed)
	assert.Equal(t, 20.0, stats.FatigueIndex)
	assert.Equal(t, 50.0, stats.PeakWPM)
	assert.Equal(t, 95.0, stats.OverallAccuracy)
}

func TestProblemAndStrongKeys(t *testing.T) {
	store := &fakeKeystrokeStore{}
	// "z": 2/10 correct → problem key. "a": 10/10 correct over >5 presses →
	// strong key. "m": 100% but only 3 presses → neither list.
	for i := 0; i < 10; i++ {
		correct := i < 2
		store.events = append(store.events, models.KeystrokeEvent{
			UserID: "u", GameID: "g", SequenceNumber: i,
			Key: "z", ExpectedChar: "z", IsCorrect: correct, IntervalMs: 200,
		})
	}
	for i := 0; i < 10; i++ {
		store.events = append(store.events, models.KeystrokeEvent{
			UserID: "u", GameID: "g", SequenceNumber: 10 + i,
			Key: "a", ExpectedChar: "a", IsCorrect: true, IntervalMs: 120,
		})
	}
	for i := 0; i < 3; i++ {
		store.events = append(store.events, models.KeystrokeEvent{
			UserID: "u", GameID: "g", SequenceNumber: 20 + i,
			Key: "m", ExpectedChar: "m", IsCorrect: true, IntervalMs: 120,
		})
	}

	svc := NewBiometricsService(store)
	stats, err := svc.GetUserStats(context.Background(), "u")
	require.NoError(t, err)

	assert.Equal(t, []string{"z"}, stats.ProblemKeys)
	assert.Equal(t, []string{"a"}, stats.StrongKeys)
}
