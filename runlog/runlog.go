// Package runlog keeps a SQLite history of classifier evaluations.
package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Khayman1/titanic-streamlit/classifier"
)

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded evaluation.
type Run struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	Source     string    `json:"source"` // "cli", "view"
	FeatureSet string    `json:"featureSet"`
	Seed       int64     `json:"seed"`
	Trees      int       `json:"trees"`
	TrainSize  int       `json:"trainSize"`
	TestSize   int       `json:"testSize"`
	Accuracy   float64   `json:"accuracy"`
	Precision  float64   `json:"precision"`
	Recall     float64   `json:"recall"`
	F1         float64   `json:"f1"`
}

// FromReport converts an evaluation report into a run with a fresh ID.
func FromReport(r *classifier.Report, source string) Run {
	return Run{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Source:     source,
		FeatureSet: r.FeatureSet,
		Seed:       r.Seed,
		Trees:      r.Trees,
		TrainSize:  r.TrainSize,
		TestSize:   r.TestSize,
		Accuracy:   r.Accuracy,
		Precision:  r.Precision,
		Recall:     r.Recall,
		F1:         r.F1,
	}
}

// Store manages the run database.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// Open creates or opens the run database at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return nil, errors.New("runlog: empty path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("runlog: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("runlog: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
	PRAGMA journal_mode = WAL;
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		source TEXT NOT NULL,
		feature_set TEXT NOT NULL,
		seed INTEGER NOT NULL,
		trees INTEGER NOT NULL,
		train_size INTEGER NOT NULL,
		test_size INTEGER NOT NULL,
		accuracy REAL NOT NULL,
		precision REAL NOT NULL,
		recall REAL NOT NULL,
		f1 REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`)
	return err
}

// Record stores run. An empty ID or zero timestamp is filled in.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, source, feature_set, seed, trees,
			train_size, test_size, accuracy, precision, recall, f1)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(timeLayout), run.Source, run.FeatureSet,
		run.Seed, run.Trees, run.TrainSize, run.TestSize,
		run.Accuracy, run.Precision, run.Recall, run.F1,
	)
	if err != nil {
		return Run{}, fmt.Errorf("runlog: insert run: %w", err)
	}
	s.logger.Debug("run recorded",
		zap.String("id", run.ID),
		zap.String("feature_set", run.FeatureSet),
		zap.Float64("accuracy", run.Accuracy),
	)
	return run, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, source, feature_set, seed, trees,
			train_size, test_size, accuracy, precision, recall, f1
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("runlog: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			created string
		)
		if err := rows.Scan(&run.ID, &created, &run.Source, &run.FeatureSet, &run.Seed, &run.Trees,
			&run.TrainSize, &run.TestSize, &run.Accuracy, &run.Precision, &run.Recall, &run.F1); err != nil {
			return nil, fmt.Errorf("runlog: scan run: %w", err)
		}
		if run.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("runlog: run %s timestamp: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Count returns the number of recorded runs, optionally for one feature set.
func (s *Store) Count(ctx context.Context, featureSet string) (int, error) {
	query := "SELECT COUNT(*) FROM runs"
	var args []any
	if featureSet = strings.TrimSpace(featureSet); featureSet != "" {
		query += " WHERE feature_set = ?"
		args = append(args, featureSet)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("runlog: count runs: %w", err)
	}
	return n, nil
}
