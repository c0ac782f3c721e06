package cli

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/habitr/internal/config"
	"github.com/sadopc/habitr/internal/stats"
	"github.com/sadopc/habitr/internal/store"
	"github.com/sadopc/habitr/internal/tracker"
)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func sampleTracker() tracker.Tracker {
	return tracker.Tracker{
		ID:       "t1",
		Name:     "Mood",
		Category: "Health",
		Options: []tracker.Option{
			{Label: "Good", Color: "#22c55e", TextColor: "#000000"},
			{Label: "Bad", Color: "#ef4444", TextColor: "#ffffff"},
		},
		Data: tracker.Data{2024: {
			"2024-03-14": "Good",
			"2024-03-10": "Bad",
		}},
		CurrentDate: 2024,
	}
}

func newTestEnv(t *testing.T, seed ...tracker.Tracker) *env {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	repo := tracker.NewRepository(s, zerolog.Nop())
	require.NoError(t, repo.Load(context.Background()))
	for _, tr := range seed {
		require.NoError(t, repo.AddTracker(tr))
	}
	return &env{
		cfg:   config.Default(),
		store: s,
		repo:  repo,
		log:   zerolog.Nop(),
		clock: stats.FixedClock(testNow),
	}
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	out := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	return cmd, out
}

func decline(_ string) (bool, error) { return false, nil }

func mustGet(t *testing.T, e *env, id string) tracker.Tracker {
	t.Helper()
	tr, err := e.repo.Get(id)
	require.NoError(t, err)
	return tr
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
