package engine

import (
	"fmt"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from Query + Groups
// ============================================================================
// All functions operate on RecordView — zero-copy access to any data source.
// Column discovery uses view.DimensionKeys() unless Query.Columns is set.
// ============================================================================

// BuildTable produces a TableData from a Query, its groups and the filtered view.
func BuildTable(q Query, groups []Group, view RecordView) *TableData {
	if q.Aggregation == "list" {
		return buildListTable(q, view)
	}
	return buildAggregatedTable(q, groups)
}

// ============================================================================
// LIST TABLE — Row per record
// ============================================================================

func buildListTable(q Query, view RecordView) *TableData {
	keys := q.Columns
	if len(keys) == 0 {
		keys = view.DimensionKeys()
	}

	columns := make([]Column, 0, len(keys))
	for _, key := range keys {
		columns = append(columns, Column{
			Key:   key,
			Label: LabelForDimension(key),
			Type:  "text",
			Align: "left",
		})
	}

	n := view.Len()
	if q.Limit > 0 && n > q.Limit {
		n = q.Limit
	}
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, 0, len(keys))
		for _, key := range keys {
			row = append(row, view.Dimension(i, key))
		}
		rows = append(rows, row)
	}

	return &TableData{
		Title:   q.Title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label:  fmt.Sprintf("총 %s명", FormatInt(view.Len())),
			Values: map[string]string{"count": FormatInt(view.Len())},
		},
	}
}

// ============================================================================
// AGGREGATED TABLE — Summary rows
// ============================================================================

func buildAggregatedTable(q Query, groups []Group) *TableData {
	if len(groups) == 0 {
		return &TableData{
			Title:   q.Title,
			Columns: []Column{},
			Rows:    [][]string{},
		}
	}

	groupLabel := q.XAxis
	if groupLabel == "" && len(q.GroupBy) > 0 {
		groupLabel = LabelForDimension(q.GroupBy[0])
	}
	if groupLabel == "" {
		groupLabel = "구분"
	}
	valueLabel := q.YAxis
	if valueLabel == "" {
		valueLabel = LabelForAggregation(q.Aggregation)
	}

	columns := []Column{
		{Key: "group", Label: groupLabel, Type: "text", Align: "left"},
		{Key: "value", Label: valueLabel, Type: "number", Align: "right"},
		{Key: "count", Label: "인원 수", Type: "number", Align: "center"},
	}

	rows := make([][]string, 0, len(groups))
	var totalCount int
	for _, g := range groups {
		rows = append(rows, []string{
			g.Label,
			FormatValue(g.Value, q.Aggregation),
			FormatInt(g.Count),
		})
		totalCount += g.Count
	}

	summary := &Summary{
		Label:  "합계",
		Values: map[string]string{"count": FormatInt(totalCount)},
	}
	if q.Aggregation == "sum" || q.Aggregation == "count" {
		var totalValue float64
		for _, g := range groups {
			totalValue += g.Value
		}
		summary.Values["value"] = FormatValue(totalValue, q.Aggregation)
	}

	return &TableData{
		Title:   q.Title,
		Columns: columns,
		Rows:    rows,
		Summary: summary,
	}
}
