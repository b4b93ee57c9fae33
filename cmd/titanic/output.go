package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Khayman1/titanic-streamlit/engine"
)

// ============================================================================
// OUTPUT WRITER
// ============================================================================

// openOutput returns stdout, or the file at path.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// ============================================================================
// CSV OUTPUT — chart and table data ready for spreadsheets
// ============================================================================

func writeTableCSV(w io.Writer, t *engine.TableData) error {
	cw := csv.NewWriter(w)
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Label
	}
	if err := cw.Write(headers); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func writeChartCSV(w io.Writer, cfg *engine.ChartConfig) error {
	cw := csv.NewWriter(w)
	xLabel := cfg.XAxis
	if xLabel == "" {
		xLabel = "Label"
	}

	headers := []string{xLabel}
	for _, s := range cfg.Series {
		headers = append(headers, s.Name)
	}
	if err := cw.Write(headers); err != nil {
		return err
	}
	if len(cfg.Series) > 0 {
		for i, d := range cfg.Series[0].Data {
			row := []string{d.Label}
			for _, s := range cfg.Series {
				if i < len(s.Data) {
					row = append(row, fmtNum(s.Data[i].Value))
				} else {
					row = append(row, "")
				}
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ============================================================================
// TERMINAL OUTPUT
// ============================================================================

func writeTable(w io.Writer, t *engine.TableData) error {
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Label
	}
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#8b8d98"))).
		Headers(headers...).
		Rows(t.Rows...)
	_, err := fmt.Fprintln(w, tbl.String())
	return err
}

// renderMarkdown styles md for the terminal with glamour.
func renderMarkdown(md, style string, width int) (string, error) {
	opt := glamour.WithAutoStyle()
	if style != "" {
		opt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	return r.Render(md)
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	return nil
}

// ============================================================================
// HELPERS
// ============================================================================

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
