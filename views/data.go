// Package views renders the dashboard pages. Each page is a View variant
// selected by Kind; every variant reads the same augmented train table
// through Data.
package views

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Khayman1/titanic-streamlit/classifier"
	"github.com/Khayman1/titanic-streamlit/dataset"
	"github.com/Khayman1/titanic-streamlit/features"
	"github.com/Khayman1/titanic-streamlit/runlog"
)

// View is one dashboard page variant.
type View interface {
	Kind() Kind
	Render(ctx context.Context, d *Data) (*Page, error)
}

// New returns the default variant of k.
func New(k Kind) (View, error) {
	switch k {
	case Home:
		return HomeView{}, nil
	case Passengers:
		return PassengersView{}, nil
	case Survival:
		return SurvivalView{}, nil
	case Search:
		return SearchView{}, nil
	case Predict:
		return PredictView{Input: DefaultPredictInput()}, nil
	case Download:
		return DownloadView{}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownView, k)
}

// RunStore records classifier evaluations. *runlog.Store implements it.
type RunStore interface {
	Record(ctx context.Context, run runlog.Run) (runlog.Run, error)
	Recent(ctx context.Context, limit int) ([]runlog.Run, error)
}

// Data is what views render from. The zero value is not usable; set Cache.
type Data struct {
	Cache      *dataset.Cache
	Classifier classifier.Options
	Runs       RunStore // optional
	Logger     *zap.Logger

	mu        sync.Mutex
	source    *dataset.Table // train table the memoized values were built from
	augmented *features.Table
	model     *classifier.Model
	report    *classifier.Report
}

// NewData returns Data over cache with default classifier options.
func NewData(cache *dataset.Cache, logger *zap.Logger) *Data {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := classifier.DefaultOptions()
	opts.Logger = logger
	return &Data{Cache: cache, Classifier: opts, Logger: logger}
}

func (d *Data) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Table loads res.
func (d *Data) Table(ctx context.Context, res dataset.Resource) (*dataset.Table, error) {
	return d.Cache.Load(ctx, res)
}

// Train returns the augmented train table. The augmented copy and the
// models are rebuilt whenever the cache hands out a different train table,
// i.e. after invalidation.
func (d *Data) Train(ctx context.Context) (*features.Table, error) {
	src, err := d.Cache.Load(ctx, dataset.Train)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.refresh(src)
	if d.augmented == nil {
		d.augmented = features.Augment(src)
	}
	return d.augmented, nil
}

// refresh drops memoized values derived from a previous train table.
// Callers hold d.mu.
func (d *Data) refresh(src *dataset.Table) {
	if d.source == src {
		return
	}
	if d.source != nil {
		d.logger().Info("train table changed, dropping derived state")
	}
	d.source = src
	d.augmented = nil
	d.model = nil
	d.report = nil
}

// Model returns the prediction-form model, trained on the full train table.
func (d *Data) Model(ctx context.Context) (*classifier.Model, error) {
	src, err := d.Cache.Load(ctx, dataset.Train)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.refresh(src)
	if d.model == nil {
		opts := d.Classifier
		opts.FeatureSet = classifier.Form
		if opts.Logger == nil {
			opts.Logger = d.logger()
		}
		m, err := classifier.Train(ctx, src.Passengers, opts)
		if err != nil {
			return nil, fmt.Errorf("train prediction model: %w", err)
		}
		d.model = m
	}
	return d.model, nil
}

// Evaluation returns the hold-out evaluation of the configured classifier.
// A fresh evaluation is recorded in Runs.
func (d *Data) Evaluation(ctx context.Context) (*classifier.Report, error) {
	src, err := d.Cache.Load(ctx, dataset.Train)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.refresh(src)
	if d.report != nil {
		return d.report, nil
	}

	opts := d.Classifier
	if opts.Logger == nil {
		opts.Logger = d.logger()
	}
	report, err := classifier.Evaluate(ctx, src.Passengers, opts)
	if err != nil {
		return nil, fmt.Errorf("evaluate classifier: %w", err)
	}
	d.report = report

	if d.Runs != nil {
		if _, err := d.Runs.Record(ctx, runlog.FromReport(report, "view")); err != nil {
			d.logger().Warn("failed to record run", zap.Error(err))
		}
	}
	return report, nil
}

// RecentRuns returns the latest recorded runs, or nil without a store.
func (d *Data) RecentRuns(ctx context.Context, limit int) ([]runlog.Run, error) {
	if d.Runs == nil {
		return nil, nil
	}
	return d.Runs.Recent(ctx, limit)
}
