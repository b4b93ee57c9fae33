package views

import (
	"fmt"
	"strings"

	"github.com/Khayman1/titanic-streamlit/chart"
	"github.com/Khayman1/titanic-streamlit/engine"
)

// Markdown renders p for terminals. Charts become label/value tables.
func Markdown(p *Page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	if p.Intro != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Intro)
	}
	if len(p.Tabs) > 0 {
		tabs := make([]string, len(p.Tabs))
		for i, t := range p.Tabs {
			tabs[i] = t.Label
			if t.Active {
				tabs[i] = "**[" + t.Label + "]**"
			}
		}
		fmt.Fprintf(&b, "%s\n\n", strings.Join(tabs, " | "))
	}

	for _, s := range p.Sections {
		if s.Heading != "" {
			fmt.Fprintf(&b, "## %s\n\n", s.Heading)
		}
		if len(s.Metrics) > 0 {
			writeMetrics(&b, s.Metrics)
		}
		if s.Chart != nil {
			writeChart(&b, s.Chart)
		}
		if s.Table != nil {
			writeTable(&b, s.Table)
		}
		if s.Text != "" {
			fmt.Fprintf(&b, "%s\n\n", s.Text)
		}
		if len(s.Notes) > 0 {
			for _, n := range s.Notes {
				fmt.Fprintf(&b, "- %s\n", n)
			}
			b.WriteString("\n")
		}
		for _, l := range s.Links {
			fmt.Fprintf(&b, "- [%s](%s)\n", l.Label, l.Href)
		}
		if len(s.Links) > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeMetrics(b *strings.Builder, metrics []Metric) {
	b.WriteString("| 항목 | 값 | 비고 |\n|---|---:|---|\n")
	for _, m := range metrics {
		fmt.Fprintf(b, "| %s | %s | %s |\n", cell(m.Label), cell(m.Value), cell(m.Delta))
	}
	b.WriteString("\n")
}

func writeChart(b *strings.Builder, cfg *engine.ChartConfig) {
	if cfg.Title != "" {
		fmt.Fprintf(b, "**%s**\n\n", cfg.Title)
	}
	if len(cfg.Series) == 0 {
		return
	}

	label := cfg.XAxis
	if label == "" {
		label = "항목"
	}
	header := []string{label}
	for _, s := range cfg.Series {
		header = append(header, s.Name)
	}
	fmt.Fprintf(b, "| %s |\n|---%s|\n", strings.Join(header, " | "), strings.Repeat("|---:", len(cfg.Series)))

	first := cfg.Series[0]
	total := first.Total()
	for i, pt := range first.Data {
		name := pt.Label
		if pt.Highlight {
			name = "**" + name + "**"
		}
		row := []string{cell(name)}
		for _, s := range cfg.Series {
			if i >= len(s.Data) {
				row = append(row, "")
				continue
			}
			v := s.Data[i]
			if cfg.ChartType == "pie" {
				row = append(row, chart.SliceLabel(v.Value, total, v.Count))
			} else {
				row = append(row, engine.FormatNumber(v.Value))
			}
		}
		fmt.Fprintf(b, "| %s |\n", strings.Join(row, " | "))
	}
	b.WriteString("\n")
}

func writeTable(b *strings.Builder, t *engine.TableData) {
	if t.Title != "" {
		fmt.Fprintf(b, "**%s**\n\n", t.Title)
	}
	if len(t.Columns) == 0 {
		return
	}
	header := make([]string, len(t.Columns))
	align := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = cell(c.Label)
		align[i] = "---"
		if c.Align == "right" {
			align[i] = "---:"
		}
	}
	fmt.Fprintf(b, "| %s |\n| %s |\n", strings.Join(header, " | "), strings.Join(align, " | "))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = cell(v)
		}
		fmt.Fprintf(b, "| %s |\n", strings.Join(cells, " | "))
	}
	if t.Summary != nil {
		cells := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cells[i] = cell(t.Summary.Values[c.Key])
		}
		cells[0] = "**" + t.Summary.Label + "**"
		fmt.Fprintf(b, "| %s |\n", strings.Join(cells, " | "))
	}
	b.WriteString("\n")
}

func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
