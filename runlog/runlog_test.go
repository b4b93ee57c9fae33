package runlog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Khayman1/titanic-streamlit/classifier"
	"github.com/Khayman1/titanic-streamlit/runlog"
)

func openStore(t *testing.T) *runlog.Store {
	t.Helper()
	s, err := runlog.Open(filepath.Join(t.TempDir(), "nested", "runs.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, acc := range []float64{0.7, 0.8, 0.75} {
		_, err := s.Record(ctx, runlog.Run{
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
			Source:     "cli",
			FeatureSet: "basic",
			Seed:       42,
			Trees:      100,
			TrainSize:  712,
			TestSize:   179,
			Accuracy:   acc,
		})
		require.NoError(t, err)
	}

	runs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 0.75, runs[0].Accuracy, "newest first")
	assert.Equal(t, 0.8, runs[1].Accuracy)
	assert.True(t, runs[0].CreatedAt.Equal(base.Add(2*time.Second)))
	assert.NotEmpty(t, runs[0].ID)

	n, err := s.Count(ctx, "basic")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = s.Count(ctx, "extended")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecordSubSecondOrdering(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	_, err := s.Record(ctx, runlog.Run{ID: "a", CreatedAt: base, FeatureSet: "basic"})
	require.NoError(t, err)
	_, err = s.Record(ctx, runlog.Run{ID: "b", CreatedAt: base.Add(100 * time.Millisecond), FeatureSet: "basic"})
	require.NoError(t, err)

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ID)
}

func TestReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := runlog.Open(path, nil)
	require.NoError(t, err)
	_, err = s.Record(ctx, runlog.Run{FeatureSet: "form"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = runlog.Open(path, nil)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFromReport(t *testing.T) {
	run := runlog.FromReport(&classifier.Report{
		FeatureSet: "basic",
		Seed:       42,
		Trees:      100,
		TrainSize:  712,
		TestSize:   179,
		Metrics:    classifier.Metrics{Accuracy: 0.78, F1: 0.7},
	}, "view")
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "view", run.Source)
	assert.Equal(t, 0.78, run.Accuracy)
	assert.Equal(t, 0.7, run.F1)
	assert.False(t, run.CreatedAt.IsZero())
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := runlog.Open("", nil)
	assert.Error(t, err)
}
