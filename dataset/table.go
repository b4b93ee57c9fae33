package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Table is one loaded CSV resource.
// A Table returned by Cache.Load is shared; callers must treat it as
// read-only.
type Table struct {
	Resource   Resource    `json:"resource"`
	Path       string      `json:"path,omitempty"`
	Header     []string    `json:"header"`
	Records    [][]string  `json:"-"` // raw cells, kept for re-serialization
	Passengers []Passenger `json:"passengers"`
}

// Shape returns (rows, columns) like a dataframe.
func (t *Table) Shape() (int, int) {
	return len(t.Records), len(t.Header)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Passengers) }

type writeConfig struct {
	bom bool
}

// WriteOption configures WriteCSV.
type WriteOption func(*writeConfig)

// WithBOM prefixes the output with a UTF-8 byte order mark so spreadsheet
// applications detect the encoding of the Korean labels.
func WithBOM() WriteOption {
	return func(c *writeConfig) { c.bom = true }
}

// WriteCSV re-serializes the header and raw records.
func (t *Table) WriteCSV(w io.Writer, opts ...WriteOption) error {
	cfg := &writeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Records); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}
