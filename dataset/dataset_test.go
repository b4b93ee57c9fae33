package dataset_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Khayman1/titanic-streamlit/dataset"
	"github.com/Khayman1/titanic-streamlit/dataset/datasettest"
)

// ============================================================================
// 1. CSV PARSING
// ============================================================================

func TestParseCSVTrain(t *testing.T) {
	table, err := dataset.ParseCSV(datasettest.Bytes("train.csv"), dataset.Train)
	require.NoError(t, err)

	rows, cols := table.Shape()
	assert.Equal(t, datasettest.TrainRows, rows)
	assert.Equal(t, 12, cols)
	require.Len(t, table.Passengers, datasettest.TrainRows)

	first := table.Passengers[0]
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, dataset.Int(0), first.Survived)
	assert.Equal(t, 3, first.Pclass)
	assert.Equal(t, "Braund, Mr. Owen Harris", first.Name)
	assert.Equal(t, "male", first.Sex)
	assert.Equal(t, dataset.Float(22), first.Age)
	assert.Equal(t, 1, first.SibSp)
	assert.Equal(t, dataset.Float(7.25), first.Fare)
	assert.Equal(t, "S", first.Embarked)

	moran := table.Passengers[5]
	assert.Equal(t, 6, moran.ID)
	assert.False(t, moran.Age.Valid, "empty Age parses as null")

	icard := table.Passengers[22]
	assert.Equal(t, 62, icard.ID)
	assert.Equal(t, "", icard.Embarked)
}

func TestParseCSVTestSplitHasNoOutcome(t *testing.T) {
	table, err := dataset.ParseCSV(datasettest.Bytes("test.csv"), dataset.Test)
	require.NoError(t, err)
	assert.Equal(t, datasettest.TestRows, table.Len())
	for _, p := range table.Passengers {
		assert.False(t, p.Survived.Valid)
	}
}

func TestParseCSVSubmission(t *testing.T) {
	table, err := dataset.ParseCSV(datasettest.Bytes("gender_submission.csv"), dataset.Submission)
	require.NoError(t, err)
	rows, cols := table.Shape()
	assert.Equal(t, datasettest.SubmissionRows, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, dataset.Int(1), table.Passengers[1].Survived)
}

func TestParseCSVStripsBOMAndTrimsHeader(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(" PassengerId , Survived \n1,0\n")...)
	table, err := dataset.ParseCSV(data, dataset.Submission)
	require.NoError(t, err)
	assert.Equal(t, []string{"PassengerId", "Survived"}, table.Header)
	assert.Equal(t, 1, table.Passengers[0].ID)
}

func TestParseCSVFailures(t *testing.T) {
	cases := []struct {
		name string
		data string
		res  dataset.Resource
	}{
		{"empty", "", dataset.Submission},
		{"missing column", "PassengerId\n1\n", dataset.Submission},
		{"short row", "PassengerId,Survived\n1\n", dataset.Submission},
		{"long row", "PassengerId,Survived\n1,0,9\n", dataset.Submission},
		{"bad id", "PassengerId,Survived\nabc,0\n", dataset.Submission},
		{"empty id", "PassengerId,Survived\n,0\n", dataset.Submission},
		{"bad age", "PassengerId,Survived,Pclass,Name,Sex,Age,SibSp,Parch,Ticket,Fare,Cabin,Embarked\n1,0,3,x,male,old,0,0,t,1,,S\n", dataset.Train},
		{"unbalanced quote", "PassengerId,Survived\n\"1,0\n", dataset.Submission},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := dataset.ParseCSV([]byte(tc.data), tc.res)
			require.Error(t, err)
			assert.True(t, errors.Is(err, dataset.ErrResourceUnavailable), "got %v", err)

			var rerr *dataset.ResourceError
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, tc.res, rerr.Resource)
		})
	}
}

func TestParseCSVUnknownResource(t *testing.T) {
	_, err := dataset.ParseCSV([]byte("a\n1\n"), dataset.Resource("nope"))
	assert.ErrorIs(t, err, dataset.ErrUnknownResource)
}

// ============================================================================
// 2. RESOURCES
// ============================================================================

func TestParseResource(t *testing.T) {
	for in, want := range map[string]dataset.Resource{
		"train":                 dataset.Train,
		"TEST":                  dataset.Test,
		"test.csv":              dataset.Test,
		"gender_submission.csv": dataset.Submission,
		"submission":            dataset.Submission,
	} {
		got, err := dataset.ParseResource(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := dataset.ParseResource("passengers")
	assert.ErrorIs(t, err, dataset.ErrUnknownResource)
}

func TestFilesOverride(t *testing.T) {
	files := dataset.Files{dataset.Train: "titanic.csv"}
	assert.Equal(t, "titanic.csv", files.Name(dataset.Train))
	assert.Equal(t, "test.csv", files.Name(dataset.Test))

	res, ok := files.Lookup("titanic.csv")
	assert.True(t, ok)
	assert.Equal(t, dataset.Train, res)
	_, ok = files.Lookup("train.csv")
	assert.False(t, ok)
}

// ============================================================================
// 3. CACHE
// ============================================================================

func TestCacheLoadIsMemoized(t *testing.T) {
	ctx := context.Background()
	cache := datasettest.NewCache()

	first, err := cache.Load(ctx, dataset.Train)
	require.NoError(t, err)
	second, err := cache.Load(ctx, dataset.Train)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Builds(dataset.Train))
	assert.Equal(t, []dataset.Resource{dataset.Train}, cache.Loaded())
	assert.Equal(t, "train.csv", first.Path)
}

func TestCacheSuccessiveLoadsHaveIdenticalContent(t *testing.T) {
	ctx := context.Background()
	cache := datasettest.NewCache()

	a, err := cache.Load(ctx, dataset.Train)
	require.NoError(t, err)
	cache.InvalidateAll()
	b, err := cache.Load(ctx, dataset.Train)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("reloaded table differs (-first +second):\n%s", diff)
	}
}

func TestCacheInvalidateForcesReread(t *testing.T) {
	ctx := context.Background()
	fsys := datasettest.FS()
	cache := dataset.NewCache(fsys, dataset.DefaultFiles())

	before, err := cache.Load(ctx, dataset.Submission)
	require.NoError(t, err)
	assert.Equal(t, datasettest.SubmissionRows, before.Len())

	fsys["gender_submission.csv"] = &fstest.MapFile{Data: []byte("PassengerId,Survived\n1,1\n")}

	unchanged, err := cache.Load(ctx, dataset.Submission)
	require.NoError(t, err)
	assert.Same(t, before, unchanged, "no re-read without invalidation")

	cache.Invalidate(dataset.Submission)
	assert.Empty(t, cache.Loaded())

	after, err := cache.Load(ctx, dataset.Submission)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Len())
	assert.Equal(t, 2, cache.Builds(dataset.Submission))
}

func TestCacheFailedLoadIsNotMemoized(t *testing.T) {
	ctx := context.Background()
	fsys := datasettest.FS()
	delete(fsys, "test.csv")
	cache := dataset.NewCache(fsys, dataset.DefaultFiles())

	_, err := cache.Load(ctx, dataset.Test)
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrResourceUnavailable)

	var rerr *dataset.ResourceError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "test.csv", rerr.Path)

	// Other resources are unaffected.
	_, err = cache.Load(ctx, dataset.Train)
	require.NoError(t, err)

	fsys["test.csv"] = &fstest.MapFile{Data: datasettest.Bytes("test.csv")}
	table, err := cache.Load(ctx, dataset.Test)
	require.NoError(t, err)
	assert.Equal(t, datasettest.TestRows, table.Len())
}

func TestCacheParseErrorCarriesPath(t *testing.T) {
	fsys := fstest.MapFS{"train.csv": &fstest.MapFile{Data: []byte("PassengerId\n1\n")}}
	cache := dataset.NewCache(fsys, nil)

	_, err := cache.Load(context.Background(), dataset.Train)
	var rerr *dataset.ResourceError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "train.csv", rerr.Path)
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestCacheConcurrentFirstLoadsConstructOnce(t *testing.T) {
	ctx := context.Background()
	cache := datasettest.NewCache()

	const workers = 16
	tables := make([]*dataset.Table, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table, err := cache.Load(ctx, dataset.Train)
			assert.NoError(t, err)
			tables[i] = table
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, cache.Builds(dataset.Train))
	for _, table := range tables[1:] {
		assert.Same(t, tables[0], table)
	}
}

func TestCacheHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := datasettest.NewCache().Load(ctx, dataset.Train)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCacheUnknownResource(t *testing.T) {
	_, err := datasettest.NewCache().Load(context.Background(), dataset.Resource("passengers"))
	assert.ErrorIs(t, err, dataset.ErrUnknownResource)
}

// ============================================================================
// 4. WRITE CSV
// ============================================================================

func TestWriteCSVRoundTrip(t *testing.T) {
	table := datasettest.Load(t, dataset.Submission)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))
	assert.Equal(t, string(datasettest.Bytes("gender_submission.csv")), buf.String())
}

func TestWriteCSVWithBOM(t *testing.T) {
	table := datasettest.Load(t, dataset.Train)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf, dataset.WithBOM()))
	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}))

	again, err := dataset.ParseCSV(out, dataset.Train)
	require.NoError(t, err)
	assert.Equal(t, table.Passengers, again.Passengers)
}

// ============================================================================
// 5. SYNTHETIC MANIFEST
// ============================================================================

func TestManifestSexCounts(t *testing.T) {
	table, err := dataset.ParseCSV(datasettest.Manifest(891, 577, 42), dataset.Train)
	require.NoError(t, err)
	require.Equal(t, 891, table.Len())

	counts := map[string]int{}
	for _, p := range table.Passengers {
		counts[p.Sex]++
	}
	assert.Equal(t, map[string]int{"male": 577, "female": 314}, counts)
}
