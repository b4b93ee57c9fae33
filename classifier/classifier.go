// Package classifier fits the survival demo model: a random forest over a
// small fixed feature set, evaluated on a seeded hold-out split.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Khayman1/titanic-streamlit/dataset"
)

// ErrNotEnoughData is returned when too few labelled rows remain to train
// or to split.
var ErrNotEnoughData = errors.New("not enough labelled rows")

// Options configure training and evaluation.
type Options struct {
	Seed       int64
	TestRatio  float64
	Trees      int
	MaxDepth   int // 0 => unlimited
	Workers    int // 0 => one goroutine per tree
	FeatureSet FeatureSet
	Criterion  string
	Logger     *zap.Logger
}

// DefaultOptions mirror the dashboard: 100 trees, 80/20 split, seed 42.
func DefaultOptions() Options {
	return Options{
		Seed:       42,
		TestRatio:  0.2,
		Trees:      100,
		FeatureSet: Basic,
		Criterion:  "gini",
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) forest() *Forest {
	return NewForest(
		WithEstimators(o.Trees),
		WithForestSeed(o.Seed),
		WithForestMaxDepth(o.MaxDepth),
		WithForestCriterion(o.Criterion),
		WithWorkers(o.Workers),
	)
}

// Report is the outcome of one evaluation.
type Report struct {
	FeatureSet string   `json:"featureSet"`
	Features   []string `json:"features"`
	Seed       int64    `json:"seed"`
	Trees      int      `json:"trees"`
	TrainSize  int      `json:"trainSize"`
	TestSize   int      `json:"testSize"`
	Skipped    int      `json:"skipped"`
	Metrics
	Elapsed time.Duration `json:"elapsed"`
}

// Evaluate splits the labelled rows, fits a forest on the training part
// and scores it on the held-out part. The result depends only on rows,
// the seed and the feature set.
func Evaluate(ctx context.Context, rows []dataset.Passenger, opts Options) (*Report, error) {
	start := time.Now()
	X, y, skipped := design(rows, opts.FeatureSet)

	trainIdx, testIdx, err := Split(len(X), opts.TestRatio, opts.Seed)
	if err != nil {
		return nil, err
	}

	forest := opts.forest()
	if err := forest.Fit(ctx, pick(X, trainIdx), pickLabels(y, trainIdx)); err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}
	pred := forest.Predict(pick(X, testIdx))

	report := &Report{
		FeatureSet: opts.FeatureSet.String(),
		Features:   opts.FeatureSet.Columns(),
		Seed:       opts.Seed,
		Trees:      forest.NEstimators,
		TrainSize:  len(trainIdx),
		TestSize:   len(testIdx),
		Skipped:    skipped,
		Metrics:    Score(pickLabels(y, testIdx), pred),
		Elapsed:    time.Since(start),
	}
	opts.logger().Info("classifier evaluated",
		zap.String("feature_set", report.FeatureSet),
		zap.Int("train", report.TrainSize),
		zap.Int("test", report.TestSize),
		zap.Float64("accuracy", report.Accuracy),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// Model is a forest fitted on every labelled row.
type Model struct {
	FeatureSet FeatureSet
	forest     *Forest
}

// Train fits a forest on all labelled rows.
func Train(ctx context.Context, rows []dataset.Passenger, opts Options) (*Model, error) {
	X, y, _ := design(rows, opts.FeatureSet)
	if len(X) == 0 {
		return nil, ErrNotEnoughData
	}
	forest := opts.forest()
	if err := forest.Fit(ctx, X, y); err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}
	opts.logger().Debug("classifier trained",
		zap.String("feature_set", opts.FeatureSet.String()),
		zap.Int("rows", len(X)),
	)
	return &Model{FeatureSet: opts.FeatureSet, forest: forest}, nil
}

// Prediction is the model's answer for one passenger.
type Prediction struct {
	Class       int     `json:"class"`
	Survived    bool    `json:"survived"`
	Probability float64 `json:"probability"` // P(survived)
}

// PredictPassenger classifies a single passenger.
func (m *Model) PredictPassenger(p dataset.Passenger) Prediction {
	x := [][]float64{m.FeatureSet.Vector(p)}
	class := m.forest.Predict(x)[0]

	var prob float64
	for i, cls := range m.forest.Classes() {
		if cls == 1 {
			prob = m.forest.PredictProba(x)[0][i]
		}
	}
	return Prediction{Class: class, Survived: class == 1, Probability: prob}
}

// design builds the feature matrix and labels, skipping rows without an
// outcome.
func design(rows []dataset.Passenger, set FeatureSet) (X [][]float64, y []int, skipped int) {
	X = make([][]float64, 0, len(rows))
	y = make([]int, 0, len(rows))
	for _, p := range rows {
		if !p.Survived.Valid {
			skipped++
			continue
		}
		X = append(X, set.Vector(p))
		y = append(y, p.Survived.Value)
	}
	return X, y, skipped
}

func pick(X [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = X[j]
	}
	return out
}

func pickLabels(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
