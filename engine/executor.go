package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// ============================================================================
// EXECUTOR — Dispatcher + Placeholder Resolution
// ============================================================================
// Entry point: Execute(query, view, opts...)
//
// Pipeline:
//   1. Normalize the Query
//   2. Apply the selection → SubView
//   3. Group and aggregate
//   4. Dispatch to builder (chart / table / text)
//   5. Resolve reply template placeholders
//   6. Return Result
//
// Zero data copy — the engine reads consumer data through RecordView.
// ============================================================================

// ErrUnknownDimension is returned when a query groups by a key the view does
// not expose.
var ErrUnknownDimension = errors.New("unknown dimension")

// Execute runs a Query against a RecordView and returns a render-ready Result.
//
// Options:
//   - WithDefaultMeasure(key) — sets the measure when Query.Measure is empty
//   - WithSchema(cfg) — display names for axes and table headers
//   - WithLogger(logger) — pipeline diagnostics
func Execute(q Query, view RecordView, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)
	q = NormalizeQuery(q)

	if err := validateQuery(q, view); err != nil {
		return nil, err
	}

	measure := q.Measure
	if measure == "" {
		measure = cfg.DefaultMeasure
	}
	if q.XAxis == "" && len(q.GroupBy) > 0 {
		q.XAxis = cfg.dimensionLabel(q.GroupBy[0])
	}
	if q.YAxis == "" {
		switch q.Aggregation {
		case "sum", "avg", "rate", "max", "min":
			q.YAxis = fmt.Sprintf("%s %s", cfg.measureLabel(measure), LabelForAggregation(q.Aggregation))
		default:
			q.YAxis = LabelForAggregation(q.Aggregation)
		}
	}

	cfg.Logger.Debug("executing query",
		zap.Int("records", view.Len()),
		zap.String("intent", q.Intent),
		zap.String("visualize", q.Visualize),
		zap.String("aggregation", q.Aggregation),
		zap.String("measure", measure),
		zap.Strings("group_by", q.GroupBy))

	// 1. Apply selection → SubView (zero-copy)
	filtered := ApplySelection(view, q.Filters)
	cfg.Logger.Debug("selection applied", zap.Int("matched", filtered.Len()), zap.Int("total", view.Len()))

	// 2. Group and aggregate
	groups := GroupAndAggregate(filtered, q, measure)

	result := &Result{
		Success: true,
		Title:   q.Title,
		Groups:  groups,
		Query:   &q,
	}

	// 3. Dispatch to builder
	switch q.Intent {
	case "chart":
		result.Type = "chart"
		result.ChartConfig = BuildChart(q, groups)
		if result.ChartConfig == nil {
			result.Type = "text"
			result.Reply = "차트를 그릴 데이터가 없습니다."
			return result, nil
		}

	case "table":
		result.Type = "table"
		result.TableData = BuildTable(q, groups, filtered)
		if q.Aggregation == "list" {
			for i, col := range result.TableData.Columns {
				result.TableData.Columns[i].Label = cfg.dimensionLabel(col.Key)
			}
		}

	default:
		result.Type = "text"
		result.TextData = BuildText(q, filtered, measure, unitFor(cfg, measure))
	}

	// 4. Resolve reply template placeholders
	result.Reply = ResolvePlaceholders(q.Reply, groups, filtered, measure, q.Aggregation)

	return result, nil
}

// validateQuery rejects queries the pipeline cannot answer.
func validateQuery(q Query, view RecordView) error {
	known := make(map[string]bool)
	for _, key := range view.DimensionKeys() {
		known[key] = true
	}
	if len(known) == 0 {
		return nil // ad-hoc view without declared keys
	}
	for _, key := range q.GroupBy {
		if !known[key] {
			return fmt.Errorf("%w: %q", ErrUnknownDimension, key)
		}
	}
	return nil
}

func unitFor(cfg *config, measure string) string {
	if cfg.Schema == nil {
		return ""
	}
	for _, m := range cfg.Schema.Measures {
		if m.Key == measure {
			return m.Unit
		}
	}
	return ""
}

// ============================================================================
// PLACEHOLDER RESOLUTION
// ============================================================================

// ResolvePlaceholders substitutes computed values into the reply template.
//
//	{count}      number of matching records
//	{total}      sum of the measure
//	{avg}        mean of the measure
//	{top_label}  label of the highest-valued group
//	{top_value}  value of the highest-valued group
func ResolvePlaceholders(template string, groups []Group, view RecordView, measure string, aggregation string) string {
	if template == "" {
		return buildDefaultReply(view)
	}

	count := view.Len()
	replacements := map[string]string{
		"{count}": FormatInt(count),
		"{total}": FormatNumber(RoundTo2(SumMeasure(view, measure))),
	}

	if count > 0 {
		replacements["{avg}"] = FormatNumber(RoundTo2(AvgMeasure(view, measure)))
	}

	// Top group (highest value, first wins on ties)
	if len(groups) > 0 {
		top := groups[0]
		for _, g := range groups[1:] {
			if g.Value > top.Value {
				top = g
			}
		}
		replacements["{top_label}"] = top.Label
		replacements["{top_value}"] = FormatValue(top.Value, aggregation)
	}

	result := template
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Safety net: strip unresolved placeholders
	return stripUnresolvedPlaceholders(result)
}

// ============================================================================
// QUERY NORMALIZATION
// ============================================================================

// NormalizeQuery applies deterministic rules to keep intent, aggregation and
// grouping consistent.
func NormalizeQuery(q Query) Query {
	if q.Aggregation == "" {
		q.Aggregation = "count"
	}

	// Rule 1: "list" aggregation must be a table
	if q.Aggregation == "list" {
		q.Intent = "table"
		q.Visualize = "table"
	}

	// Rule 2: Charts must have a groupBy dimension
	if q.Intent == "chart" && len(q.GroupBy) == 0 {
		q.Intent = "text"
		q.Visualize = "text"
	}

	// Rule 3: only two grouping levels are supported
	if len(q.GroupBy) > 2 {
		q.GroupBy = q.GroupBy[:2]
	}

	return q
}

// ============================================================================
// INTERNAL HELPERS
// ============================================================================

func buildDefaultReply(view RecordView) string {
	if view.Len() == 0 {
		return "조건에 맞는 탑승자가 없습니다."
	}
	return fmt.Sprintf("총 %s명", FormatInt(view.Len()))
}

var placeholderRegex = regexp.MustCompile(`\{[a-z_]+\}`)

func stripUnresolvedPlaceholders(text string) string {
	cleaned := placeholderRegex.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimRight(cleaned, " .—-–")
	if cleaned == "" {
		return text
	}
	return cleaned
}
