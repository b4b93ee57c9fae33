package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Khayman1/titanic-streamlit/classifier"
	"github.com/Khayman1/titanic-streamlit/dataset"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, dataset.DefaultFiles(), cfg.Files())
	assert.Equal(t, classifier.DefaultOptions().Seed, cfg.ClassifierOptions().Seed)
	assert.Equal(t, classifier.Basic, cfg.ClassifierOptions().FeatureSet)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("TITANIC_DATA_DIR", "")
	t.Setenv("TITANIC_ADDR", "")
	t.Setenv("TITANIC_LOG_LEVEL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, ":8501", cfg.Server.Addr)
}

func TestLoadOverlaysFile(t *testing.T) {
	t.Setenv("TITANIC_DATA_DIR", "")
	t.Setenv("TITANIC_LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "titanic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  dir: /srv/titanic
  watch: true
classifier:
  trees: 25
  feature_set: extended
logging:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/titanic", cfg.Data.Dir)
	assert.True(t, cfg.Data.Watch)
	assert.Equal(t, "train.csv", cfg.Data.TrainFile, "unset keys keep defaults")
	assert.Equal(t, 25, cfg.Classifier.Trees)
	assert.Equal(t, classifier.Extended, cfg.ClassifierOptions().FeatureSet)
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data: [unterminated"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TITANIC_DATA_DIR", "/tmp/csv")
	t.Setenv("TITANIC_ADDR", "127.0.0.1:9000")
	t.Setenv("TITANIC_LOG_LEVEL", "warn")
	t.Setenv("TITANIC_RUNLOG", "")

	cfg := Default()
	cfg.applyEnvOverrides()

	assert.Equal(t, "/tmp/csv", cfg.Data.Dir)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Empty(t, cfg.Runlog.Path, "an empty TITANIC_RUNLOG disables the history")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"ratio", func(c *Config) { c.Classifier.TestRatio = 1 }, "test_ratio"},
		{"trees", func(c *Config) { c.Classifier.Trees = 0 }, "trees"},
		{"feature set", func(c *Config) { c.Classifier.FeatureSet = "everything" }, "feature_set"},
		{"level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"timeout", func(c *Config) { c.Server.ReadTimeout = "soon" }, "server.read_timeout"},
		{"dir", func(c *Config) { c.Data.Dir = "" }, "data.dir"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}
}

func TestTimeouts(t *testing.T) {
	cfg := Default()
	cfg.Server.ReadTimeout = "2s"
	cfg.Server.WriteTimeout = "bogus"
	assert.Equal(t, 2*time.Second, cfg.GetReadTimeout())
	assert.Equal(t, 30*time.Second, cfg.GetWriteTimeout())
	assert.Equal(t, 10*time.Second, cfg.GetShutdownTimeout())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "titanic.yaml")
	want := Default()
	want.Classifier.Trees = 7
	require.NoError(t, want.Save(path))

	t.Setenv("TITANIC_DATA_DIR", "")
	t.Setenv("TITANIC_ADDR", "")
	t.Setenv("TITANIC_LOG_LEVEL", "")
	t.Setenv("TITANIC_RUNLOG", want.Runlog.Path)
	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}
