package classifier_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Khayman1/titanic-streamlit/classifier"
	"github.com/Khayman1/titanic-streamlit/dataset"
	"github.com/Khayman1/titanic-streamlit/dataset/datasettest"
)

func manifest(t *testing.T) []dataset.Passenger {
	t.Helper()
	table, err := dataset.ParseCSV(datasettest.Manifest(891, 577, 7), dataset.Train)
	require.NoError(t, err)
	return table.Passengers
}

func fastOptions() classifier.Options {
	opts := classifier.DefaultOptions()
	opts.Trees = 15
	return opts
}

// ── Split ─────────────────────────────────────────────────────────────────────

func TestSplitSizes(t *testing.T) {
	train, test, err := classifier.Split(891, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, test, 179)
	assert.Len(t, train, 712)

	seen := make(map[int]bool, 891)
	for _, i := range append(append([]int{}, train...), test...) {
		assert.False(t, seen[i], "index %d appears twice", i)
		seen[i] = true
	}
	assert.Len(t, seen, 891)
}

func TestSplitDeterministic(t *testing.T) {
	a1, b1, err := classifier.Split(100, 0.2, 42)
	require.NoError(t, err)
	a2, b2, err := classifier.Split(100, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)

	_, b3, err := classifier.Split(100, 0.2, 43)
	require.NoError(t, err)
	assert.NotEqual(t, b1, b3)
}

func TestSplitRejects(t *testing.T) {
	_, _, err := classifier.Split(1, 0.2, 42)
	assert.ErrorIs(t, err, classifier.ErrNotEnoughData)

	_, _, err = classifier.Split(10, 1.5, 42)
	assert.Error(t, err)
}

// ── Metrics ───────────────────────────────────────────────────────────────────

func TestScore(t *testing.T) {
	m := classifier.Score([]int{1, 1, 0, 0, 1}, []int{1, 0, 0, 1, 1})
	assert.Equal(t, 2, m.TruePositive)
	assert.Equal(t, 1, m.FalsePositive)
	assert.Equal(t, 1, m.TrueNegative)
	assert.Equal(t, 1, m.FalseNegative)
	assert.InDelta(t, 0.6, m.Accuracy, 1e-9)
	assert.InDelta(t, 2.0/3, m.Precision, 1e-9)
	assert.InDelta(t, 2.0/3, m.Recall, 1e-9)
	assert.InDelta(t, 2.0/3, m.F1, 1e-9)

	empty := classifier.Score(nil, nil)
	assert.Zero(t, empty.Accuracy)
}

// ── Features ──────────────────────────────────────────────────────────────────

func TestFeatureVector(t *testing.T) {
	p := dataset.Passenger{Sex: "male", Pclass: 3, SibSp: 1, Fare: dataset.Float(7.25)}

	assert.Equal(t, []float64{1, 3}, classifier.Basic.Vector(p))
	assert.Equal(t, []float64{1, 3, 1, 0, 7.25}, classifier.Extended.Vector(p))

	form := classifier.Form.Vector(p)
	require.Len(t, form, 4)
	assert.True(t, math.IsNaN(form[2]), "missing age is NaN")

	p.Sex = ""
	assert.True(t, math.IsNaN(classifier.Basic.Vector(p)[0]))
}

func TestParseFeatureSet(t *testing.T) {
	set, err := classifier.ParseFeatureSet(" Extended ")
	require.NoError(t, err)
	assert.Equal(t, classifier.Extended, set)
	assert.Equal(t, "extended", set.String())

	_, err = classifier.ParseFeatureSet("deep")
	assert.Error(t, err)
}

// ── Trees & forests ───────────────────────────────────────────────────────────

func TestDecisionTreeSeparable(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {10}, {11}, {12}}
	y := []int{0, 0, 0, 1, 1, 1}

	tree := classifier.NewDecisionTree()
	require.NoError(t, tree.Fit(X, y))
	assert.Equal(t, y, tree.Predict(X))
	assert.Equal(t, 1, tree.Depth())
	assert.Equal(t, []int{0, 1}, tree.Classes())
}

func TestDecisionTreeRoutesMissing(t *testing.T) {
	nan := math.NaN()
	X := [][]float64{{0}, {1}, {nan}, {10}, {11}, {nan}}
	y := []int{0, 0, 1, 1, 1, 1}

	tree := classifier.NewDecisionTree()
	require.NoError(t, tree.Fit(X, y))
	assert.Equal(t, []int{1}, tree.Predict([][]float64{{nan}}))
}

func TestForestDeterministic(t *testing.T) {
	rows := manifest(t)
	X := make([][]float64, 0, len(rows))
	y := make([]int, 0, len(rows))
	for _, p := range rows {
		X = append(X, classifier.Extended.Vector(p))
		y = append(y, p.Survived.Value)
	}

	fit := func(workers int) []int {
		f := classifier.NewForest(classifier.WithEstimators(10), classifier.WithWorkers(workers))
		require.NoError(t, f.Fit(context.Background(), X, y))
		return f.Predict(X)
	}
	assert.Equal(t, fit(1), fit(0), "scheduling does not change the fitted forest")
}

func TestForestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := classifier.NewForest(classifier.WithEstimators(5))
	err := f.Fit(ctx, [][]float64{{0}, {1}}, []int{0, 1})
	assert.ErrorIs(t, err, context.Canceled)
}

// ── Evaluate / Train ──────────────────────────────────────────────────────────

func TestEvaluateDeterministic(t *testing.T) {
	rows := manifest(t)
	opts := fastOptions()

	first, err := classifier.Evaluate(context.Background(), rows, opts)
	require.NoError(t, err)
	second, err := classifier.Evaluate(context.Background(), rows, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Metrics, second.Metrics)
	assert.Equal(t, 712, first.TrainSize)
	assert.Equal(t, 179, first.TestSize)
	assert.Equal(t, []string{"Sex", "Pclass"}, first.Features)
	// Survival in the manifest follows sex, so the basic features beat chance.
	assert.Greater(t, first.Accuracy, 0.6)
}

func TestEvaluateSkipsUnlabelled(t *testing.T) {
	rows := manifest(t)[:100]
	rows[0].Survived = dataset.NullInt{}
	rows[1].Survived = dataset.NullInt{}

	report, err := classifier.Evaluate(context.Background(), rows, fastOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 98, report.TrainSize+report.TestSize)
}

func TestEvaluateNotEnoughData(t *testing.T) {
	test := datasettest.Load(t, dataset.Test)
	_, err := classifier.Evaluate(context.Background(), test.Passengers, fastOptions())
	assert.ErrorIs(t, err, classifier.ErrNotEnoughData)

	_, err = classifier.Train(context.Background(), test.Passengers, fastOptions())
	assert.ErrorIs(t, err, classifier.ErrNotEnoughData)
}

func TestTrainPredictPassenger(t *testing.T) {
	opts := fastOptions()
	opts.FeatureSet = classifier.Form
	opts.MaxDepth = 3
	model, err := classifier.Train(context.Background(), manifest(t), opts)
	require.NoError(t, err)

	woman := model.PredictPassenger(dataset.Passenger{Sex: "female", Pclass: 1, Age: dataset.Float(30), Fare: dataset.Float(80)})
	man := model.PredictPassenger(dataset.Passenger{Sex: "male", Pclass: 3, Age: dataset.Float(30), Fare: dataset.Float(8)})

	assert.True(t, woman.Survived)
	assert.Equal(t, 1, woman.Class)
	assert.False(t, man.Survived)
	assert.Greater(t, woman.Probability, man.Probability)
	assert.GreaterOrEqual(t, man.Probability, 0.0)
	assert.LessOrEqual(t, woman.Probability, 1.0)
}
