// Package config loads the dashboard configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Khayman1/titanic-streamlit/classifier"
	"github.com/Khayman1/titanic-streamlit/dataset"
)

// Config holds all dashboard configuration.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Server     ServerConfig     `yaml:"server"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Runlog     RunlogConfig     `yaml:"runlog"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DataConfig locates the three CSV files.
type DataConfig struct {
	Dir            string `yaml:"dir"`
	TrainFile      string `yaml:"train_file"`
	TestFile       string `yaml:"test_file"`
	SubmissionFile string `yaml:"submission_file"`
	Watch          bool   `yaml:"watch"` // invalidate the cache when files change
}

// ServerConfig configures the HTTP dashboard.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// ClassifierConfig configures the survival model.
type ClassifierConfig struct {
	Seed       int64   `yaml:"seed"`
	TestRatio  float64 `yaml:"test_ratio"`
	Trees      int     `yaml:"trees"`
	MaxDepth   int     `yaml:"max_depth"` // 0 = unlimited
	FeatureSet string  `yaml:"feature_set"`
	Workers    int     `yaml:"workers"` // 0 = one goroutine per tree
}

// RunlogConfig locates the evaluation history database.
type RunlogConfig struct {
	Path string `yaml:"path"` // empty disables the history
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Default returns the default configuration.
func Default() *Config {
	files := dataset.DefaultFiles()
	opts := classifier.DefaultOptions()
	return &Config{
		Data: DataConfig{
			Dir:            "data",
			TrainFile:      files[dataset.Train],
			TestFile:       files[dataset.Test],
			SubmissionFile: files[dataset.Submission],
		},
		Server: ServerConfig{
			Addr:            ":8501",
			ReadTimeout:     "10s",
			WriteTimeout:    "30s",
			ShutdownTimeout: "10s",
		},
		Classifier: ClassifierConfig{
			Seed:       opts.Seed,
			TestRatio:  opts.TestRatio,
			Trees:      opts.Trees,
			MaxDepth:   opts.MaxDepth,
			FeatureSet: opts.FeatureSet.String(),
		},
		Runlog: RunlogConfig{
			Path: filepath.Join("data", "runs.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file yields the defaults; an empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("TITANIC_DATA_DIR"); dir != "" {
		c.Data.Dir = dir
	}
	if addr := os.Getenv("TITANIC_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("TITANIC_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if path, ok := os.LookupEnv("TITANIC_RUNLOG"); ok {
		c.Runlog.Path = path
	}
}

// Files returns the data file names.
func (c *Config) Files() dataset.Files {
	return dataset.Files{
		dataset.Train:      c.Data.TrainFile,
		dataset.Test:       c.Data.TestFile,
		dataset.Submission: c.Data.SubmissionFile,
	}
}

// ClassifierOptions converts the classifier section. Validate first.
func (c *Config) ClassifierOptions() classifier.Options {
	opts := classifier.DefaultOptions()
	opts.Seed = c.Classifier.Seed
	opts.TestRatio = c.Classifier.TestRatio
	opts.Trees = c.Classifier.Trees
	opts.MaxDepth = c.Classifier.MaxDepth
	opts.Workers = c.Classifier.Workers
	if set, err := classifier.ParseFeatureSet(c.Classifier.FeatureSet); err == nil {
		opts.FeatureSet = set
	}
	return opts
}

// GetReadTimeout returns the server read timeout as a duration.
func (c *Config) GetReadTimeout() time.Duration {
	return duration(c.Server.ReadTimeout, 10*time.Second)
}

// GetWriteTimeout returns the server write timeout as a duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return duration(c.Server.WriteTimeout, 30*time.Second)
}

// GetShutdownTimeout returns the graceful shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	return duration(c.Server.ShutdownTimeout, 10*time.Second)
}

func duration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// ValidLevels lists the supported log levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// ValidFormats lists the supported log formats.
var ValidFormats = []string{"json", "console"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.Data.Dir == "" {
		errs = append(errs, errors.New("data.dir is required"))
	}
	for name, file := range map[string]string{
		"data.train_file":      c.Data.TrainFile,
		"data.test_file":       c.Data.TestFile,
		"data.submission_file": c.Data.SubmissionFile,
	} {
		if file == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	for name, v := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if r := c.Classifier.TestRatio; r <= 0 || r >= 1 {
		errs = append(errs, fmt.Errorf("classifier.test_ratio must be within (0, 1), got %v", r))
	}
	if c.Classifier.Trees < 1 {
		errs = append(errs, fmt.Errorf("classifier.trees must be positive, got %d", c.Classifier.Trees))
	}
	if c.Classifier.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("classifier.max_depth must not be negative, got %d", c.Classifier.MaxDepth))
	}
	if _, err := classifier.ParseFeatureSet(c.Classifier.FeatureSet); err != nil {
		errs = append(errs, fmt.Errorf("classifier.feature_set: %w", err))
	}
	if !oneOf(c.Logging.Level, ValidLevels) {
		errs = append(errs, fmt.Errorf("invalid logging.level: %s (valid: %v)", c.Logging.Level, ValidLevels))
	}
	if !oneOf(c.Logging.Format, ValidFormats) {
		errs = append(errs, fmt.Errorf("invalid logging.format: %s (valid: %v)", c.Logging.Format, ValidFormats))
	}
	return errors.Join(errs...)
}

func oneOf(v string, valid []string) bool {
	for _, s := range valid {
		if v == s {
			return true
		}
	}
	return false
}
