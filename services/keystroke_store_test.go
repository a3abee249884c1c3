package services

import (
	"context"
	"testing"

	"typing-test-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionByUser(t *testing.T) {
	events := []models.KeystrokeEvent{
		{UserID: "a", SequenceNumber: 0},
		{UserID: "b", SequenceNumber: 0},
		{UserID: "a", SequenceNumber: 1},
		{UserID: "a", SequenceNumber: 2},
	}
	batches := partitionByUser(events)
	require.Len(t, batches, 2)
	require.Len(t, batches["a"], 3)
	require.Len(t, batches["b"], 1)

	// Per-user input order is preserved.
	for i, e := range batches["a"] {
		assert.Equal(t, i, e.SequenceNumber)
	}
}

func TestAddEvent_RejectsInvalidBeforeStoreCall(t *testing.T) {
	// nil DB proves validation fires before any database access.
	store := NewGormKeystrokeStore(nil)

	cases := []struct {
		name  string
		event models.KeystrokeEvent
		want  error
	}{
		{"missing user", models.KeystrokeEvent{GameID: "g"}, models.ErrMissingUserID},
		{"missing game", models.KeystrokeEvent{UserID: "u"}, models.ErrMissingGameID},
		{"negative sequence", models.KeystrokeEvent{UserID: "u", GameID: "g", SequenceNumber: -1}, models.ErrNegativeSequence},
		{"negative interval", models.KeystrokeEvent{UserID: "u", GameID: "g", IntervalMs: -5}, models.ErrNegativeTiming},
		{"negative position", models.KeystrokeEvent{UserID: "u", GameID: "g", TextPosition: -1}, models.ErrNegativePosition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.AddEvent(context.Background(), &tc.event)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAddEventsBatch_RejectsFirstInvalidEvent(t *testing.T) {
	store := NewGormKeystrokeStore(nil)
	events := []models.KeystrokeEvent{
		{UserID: "u", GameID: "g", SequenceNumber: 0},
		{UserID: "u", GameID: "", SequenceNumber: 1},
	}
	inserted, err := store.AddEventsBatch(context.Background(), events)
	require.ErrorIs(t, err, models.ErrMissingGameID)
	assert.Zero(t, inserted)
}

func TestAddEventsBatch_EmptyIsNoop(t *testing.T) {
	store := NewGormKeystrokeStore(nil)
	inserted, err := store.AddEventsBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}
