package engine

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Khayman1/titanic-streamlit/schema"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	DefaultMeasure string // measure key if Query.Measure is empty
	Schema         *schema.Config
	Logger         *zap.Logger
}

// WithDefaultMeasure sets the measure to aggregate when Query.Measure is empty.
func WithDefaultMeasure(measure string) Option {
	return func(c *config) {
		c.DefaultMeasure = measure
	}
}

// WithSchema supplies display names for axis labels and table headers.
func WithSchema(s schema.Config) Option {
	return func(c *config) {
		c.Schema = &s
	}
}

// WithLogger sets the logger for pipeline diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		DefaultMeasure: schema.MeasurePassengerCount,
		Logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// dimensionLabel returns the display name of a dimension key.
func (c *config) dimensionLabel(key string) string {
	if c.Schema != nil {
		if d, ok := c.Schema.Dimension(key); ok && d.DisplayName != "" {
			return d.DisplayName
		}
	}
	return LabelForDimension(key)
}

// measureLabel returns the display name of a measure key.
func (c *config) measureLabel(key string) string {
	if c.Schema != nil {
		for _, m := range c.Schema.Measures {
			if m.Key == key && m.DisplayName != "" {
				return m.DisplayName
			}
		}
	}
	return LabelForDimension(key)
}

// LabelForDimension returns a capitalized label for a key.
func LabelForDimension(key string) string {
	if len(key) == 0 {
		return ""
	}
	return strings.ToUpper(key[:1]) + key[1:]
}
