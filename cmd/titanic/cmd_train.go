package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Khayman1/titanic-streamlit/classifier"
	"github.com/Khayman1/titanic-streamlit/dataset"
	"github.com/Khayman1/titanic-streamlit/engine"
	"github.com/Khayman1/titanic-streamlit/logging"
	"github.com/Khayman1/titanic-streamlit/runlog"
	"github.com/Khayman1/titanic-streamlit/views"
)

var (
	trainFeatureSet string
	trainTrees      int
	trainSeed       int64
	trainRatio      float64
	trainNoRecord   bool
	trainHistory    int
	trainSubmit     string
	trainFormat     string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Evaluate the survival model on a seeded hold-out split",
	Long: `Fit the random forest on the train split and report hold-out accuracy,
precision, recall and F1. Each run is recorded in the run log unless
--no-record is given.

With --submit the model is refitted on every labelled row and the test
passengers are written in the gender_submission.csv layout.`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&trainFeatureSet, "feature-set", "", "Feature set: basic, extended, form (default from config)")
	trainCmd.Flags().IntVar(&trainTrees, "trees", 0, "Number of trees (default from config)")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 0, "Split and forest seed (default from config)")
	trainCmd.Flags().Float64Var(&trainRatio, "test-ratio", 0, "Hold-out share (default from config)")
	trainCmd.Flags().BoolVar(&trainNoRecord, "no-record", false, "Do not record the run")
	trainCmd.Flags().IntVar(&trainHistory, "history", 5, "Recent runs to list after the report (0 = none)")
	trainCmd.Flags().StringVar(&trainSubmit, "submit", "", "Write test-set predictions to this CSV file")
	trainCmd.Flags().StringVarP(&trainFormat, "format", "f", "table", "Output format: table, json")
}

func trainOptions(cmd *cobra.Command) (classifier.Options, error) {
	opts := cfg.ClassifierOptions()
	opts.Logger = logger.Named(logging.Classifier)
	if cmd.Flags().Changed("feature-set") {
		set, err := classifier.ParseFeatureSet(trainFeatureSet)
		if err != nil {
			return opts, fmt.Errorf("%w: %v", views.ErrInvalidInput, err)
		}
		opts.FeatureSet = set
	}
	if cmd.Flags().Changed("trees") {
		opts.Trees = trainTrees
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = trainSeed
	}
	if cmd.Flags().Changed("test-ratio") {
		opts.TestRatio = trainRatio
	}
	return opts, nil
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	opts, err := trainOptions(cmd)
	if err != nil {
		return err
	}

	cache := newCache()
	train, err := cache.Load(ctx, dataset.Train)
	if err != nil {
		return err
	}

	report, err := classifier.Evaluate(ctx, train.Passengers, opts)
	if err != nil {
		return err
	}

	var history []runlog.Run
	if cfg.Runlog.Path != "" && (!trainNoRecord || trainHistory > 0) {
		store, err := runlog.Open(cfg.Runlog.Path, logger.Named(logging.Runlog))
		if err != nil {
			return err
		}
		defer store.Close()
		if !trainNoRecord {
			run, err := store.Record(ctx, runlog.FromReport(report, "cli"))
			if err != nil {
				return err
			}
			logger.Debug("run recorded", zap.String("id", run.ID))
		}
		if trainHistory > 0 {
			if history, err = store.Recent(ctx, trainHistory); err != nil {
				return err
			}
		}
	}

	out := cmd.OutOrStdout()
	if trainFormat == "json" {
		if err := writeJSON(out, struct {
			Report  *classifier.Report `json:"report"`
			History []runlog.Run       `json:"history,omitempty"`
		}{report, history}, true); err != nil {
			return err
		}
	} else if err := writeReport(out, report, history); err != nil {
		return err
	}

	if trainSubmit != "" {
		return writeSubmission(cmd, cache, opts)
	}
	return nil
}

func writeReport(w io.Writer, r *classifier.Report, history []runlog.Run) error {
	rows := [][]string{
		{"feature set", r.FeatureSet},
		{"features", fmt.Sprint(r.Features)},
		{"seed", strconv.FormatInt(r.Seed, 10)},
		{"trees", strconv.Itoa(r.Trees)},
		{"train / test", fmt.Sprintf("%d / %d", r.TrainSize, r.TestSize)},
		{"accuracy", fmt.Sprintf("%.2f%%", r.Accuracy*100)},
		{"precision", fmt.Sprintf("%.3f", r.Precision)},
		{"recall", fmt.Sprintf("%.3f", r.Recall)},
		{"f1", fmt.Sprintf("%.3f", r.F1)},
		{"confusion (tp fp tn fn)", fmt.Sprintf("%d %d %d %d", r.TruePositive, r.FalsePositive, r.TrueNegative, r.FalseNegative)},
		{"elapsed", r.Elapsed.Round(1e6).String()},
	}
	if r.Skipped > 0 {
		rows = append(rows, []string{"skipped (no outcome)", strconv.Itoa(r.Skipped)})
	}
	if err := writeTable(w, &engine.TableData{
		Columns: []engine.Column{{Label: "metric"}, {Label: "value"}},
		Rows:    rows,
	}); err != nil {
		return err
	}
	if len(history) == 0 {
		return nil
	}

	hist := &engine.TableData{Columns: []engine.Column{
		{Label: "when"}, {Label: "source"}, {Label: "feature set"}, {Label: "trees"}, {Label: "accuracy"}, {Label: "f1"},
	}}
	for _, run := range history {
		hist.Rows = append(hist.Rows, []string{
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Source,
			run.FeatureSet,
			strconv.Itoa(run.Trees),
			fmt.Sprintf("%.2f%%", run.Accuracy*100),
			fmt.Sprintf("%.3f", run.F1),
		})
	}
	return writeTable(w, hist)
}

// writeSubmission predicts every test passenger with a model fitted on all
// labelled train rows.
func writeSubmission(cmd *cobra.Command, cache *dataset.Cache, opts classifier.Options) error {
	ctx := cmd.Context()
	train, err := cache.Load(ctx, dataset.Train)
	if err != nil {
		return err
	}
	test, err := cache.Load(ctx, dataset.Test)
	if err != nil {
		return err
	}
	model, err := classifier.Train(ctx, train.Passengers, opts)
	if err != nil {
		return err
	}

	w, closeOut, err := openOutput(trainSubmit)
	if err != nil {
		return err
	}
	defer closeOut()

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"PassengerId", "Survived"}); err != nil {
		return err
	}
	for _, p := range test.Passengers {
		pred := model.PredictPassenger(p)
		if err := cw.Write([]string{strconv.Itoa(p.ID), strconv.Itoa(pred.Class)}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	logger.Info("submission written", zap.String("path", trainSubmit), zap.Int("rows", len(test.Passengers)))
	return nil
}
