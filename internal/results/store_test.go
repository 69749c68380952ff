package results

import (
	"context"
	"path/filepath"
	"testing"
	"time"
	"umami-loadtest/internal/loadtest"

	"github.com/stretchr/testify/require"
)

func stats(name string, failure string, durations ...time.Duration) *loadtest.Stats {
	s := loadtest.NewStats(name)
	for i, d := range durations {
		if i == 0 {
			s.Add(d, failure)
			continue
		}
		s.Add(d, "")
	}
	return s
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)

	started := time.Unix(1_700_000_000, 0)
	report := loadtest.Report{
		Started: started,
		Elapsed: 90 * time.Second,
		Users:   10,
		Tasks: []*loadtest.Stats{
			stats("anon /", "", 10*time.Millisecond, 30*time.Millisecond),
			stats("anon /en/recipes/%", "/en/recipes/watercress-soup: title not found: Watercress soup", 50*time.Millisecond),
		},
		Requests: []*loadtest.Stats{
			stats("static asset", "404 Not Found", 2*time.Millisecond, 4*time.Millisecond, 6*time.Millisecond),
		},
	}

	runId, err := store.SaveReport(ctx, "https://drupal-9.0.7.ddev.site/", 42, report)
	require.NoError(t, err)
	secondId, err := store.SaveReport(ctx, "http://localhost:8080/", 7, loadtest.Report{Started: started, Users: 1})
	require.NoError(t, err)
	require.Greater(t, secondId, runId)
	require.NoError(t, store.Close())

	// everything survives reopening the file
	store, err = Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, secondId, runs[0].ID)
	require.Equal(t, Run{
		ID:        runId,
		StartedAt: started,
		Elapsed:   90 * time.Second,
		Host:      "https://drupal-9.0.7.ddev.site/",
		Users:     10,
		Seed:      42,
	}, runs[1])

	rows, err := store.Stats(ctx, runId)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	first := rows[0]
	require.Equal(t, KindTask, first.Kind)
	require.Equal(t, "anon /", first.Name)
	require.Equal(t, 2, first.Count)
	require.Equal(t, 0, first.Failures)
	require.Equal(t, 20*time.Millisecond, first.Avg)
	require.Equal(t, 10*time.Millisecond, first.Min)
	require.Equal(t, 30*time.Millisecond, first.Max)
	require.Equal(t, 20*time.Millisecond, first.P50)
	require.InDelta(t, float64(29*time.Millisecond), float64(first.P95), float64(2*time.Microsecond))
	require.InDelta(t, float64(29800*time.Microsecond), float64(first.P99), float64(2*time.Microsecond))
	require.Equal(t, "anon /en/recipes/%", rows[1].Name)
	require.Equal(t, 1, rows[1].Failures)
	require.Equal(t, KindRequest, rows[2].Kind)
	require.Equal(t, 3, rows[2].Count)
	require.Equal(t, 4*time.Millisecond, rows[2].Avg)

	failures, err := store.Failures(ctx, runId)
	require.NoError(t, err)
	require.Equal(t, []FailureRow{{
		Name:   "anon /en/recipes/%",
		Reason: "/en/recipes/watercress-soup: title not found: Watercress soup",
		Count:  1,
	}}, failures)

	rows, err = store.Stats(ctx, secondId)
	require.NoError(t, err)
	require.Empty(t, rows)
}
