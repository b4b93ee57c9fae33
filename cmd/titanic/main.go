package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Khayman1/titanic-streamlit/config"
	"github.com/Khayman1/titanic-streamlit/dataset"
	"github.com/Khayman1/titanic-streamlit/logging"
	"github.com/Khayman1/titanic-streamlit/runlog"
	"github.com/Khayman1/titanic-streamlit/views"
)

// ============================================================================
// TITANIC CLI — survival dashboard over the Kaggle manifest
// ============================================================================

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

var (
	// Global flags
	configPath string
	dataDir    string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "titanic",
	Short: "Titanic survival dashboard",
	Long: `titanic serves an exploratory dashboard over the Kaggle Titanic passenger
manifest (train.csv, test.csv, gender_submission.csv): passenger breakdowns,
survival statistics, a passenger search and a small survival model.

Run "titanic serve" for the web dashboard or "titanic tui" in a terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.Data.Dir = dataDir
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "titanic.yaml", "Config file (missing file = defaults)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Directory holding the CSV files (overrides data.dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// ============================================================================
// WIRING
// ============================================================================

func newCache() *dataset.Cache {
	return dataset.NewCache(os.DirFS(cfg.Data.Dir), cfg.Files(),
		dataset.WithLogger(logger.Named(logging.Dataset)))
}

// newData wires the cache, classifier options and run history. The returned
// func closes the history database.
func newData(cache *dataset.Cache, withRuns bool) (*views.Data, func(), error) {
	data := views.NewData(cache, logger.Named(logging.Views))
	data.Classifier = cfg.ClassifierOptions()
	data.Classifier.Logger = logger.Named(logging.Classifier)

	if !withRuns || cfg.Runlog.Path == "" {
		return data, func() {}, nil
	}
	store, err := runlog.Open(cfg.Runlog.Path, logger.Named(logging.Runlog))
	if err != nil {
		return nil, nil, err
	}
	data.Runs = store
	return data, func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close run log", zap.Error(err))
		}
	}, nil
}
