package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/habitr/internal/tracker"
)

func TestResolveTracker(t *testing.T) {
	ts := []tracker.Tracker{
		{ID: "a1", Name: "Mood"},
		{ID: "b2", Name: "Sleep"},
		{ID: "c3", Name: "Sleep"},
	}

	got, err := resolveTracker(ts, "b2")
	require.NoError(t, err)
	assert.Equal(t, "Sleep", got.Name)

	got, err = resolveTracker(ts, "Mood")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)

	_, err = resolveTracker(ts, "mood")
	assert.ErrorIs(t, err, tracker.ErrNotFound, "names match exactly")

	_, err = resolveTracker(ts, "Sleep")
	assert.ErrorIs(t, err, ErrAmbiguousTracker)

	_, err = resolveTracker(ts, "Water")
	assert.ErrorIs(t, err, tracker.ErrNotFound)

	_, err = resolveTracker(ts, "  ")
	assert.ErrorIs(t, err, tracker.ErrNotFound)
}

func TestResolveTrackerByIDPrefix(t *testing.T) {
	ts := []tracker.Tracker{
		{ID: "0192abcd-1111", Name: "Mood"},
		{ID: "0192abff-2222", Name: "Water"},
		{ID: "0193ffff-3333", Name: "Sleep"},
	}

	got, err := resolveTracker(ts, "0192abc")
	require.NoError(t, err)
	assert.Equal(t, "Mood", got.Name)

	got, err = resolveTracker(ts, "0193")
	require.NoError(t, err)
	assert.Equal(t, "Sleep", got.Name)

	_, err = resolveTracker(ts, "0192ab")
	assert.ErrorIs(t, err, ErrAmbiguousTracker)
}

func TestResolveDate(t *testing.T) {
	e := newTestEnv(t)

	date, year, err := resolveDate(e, "today")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", date)
	assert.Equal(t, 2024, year)

	date, year, err = resolveDate(e, "2023-12-31")
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", date)
	assert.Equal(t, 2023, year)

	_, _, err = resolveDate(e, "31/12/2023")
	assert.ErrorIs(t, err, tracker.ErrInvalidDate)
}
