package engine

// ============================================================================
// TEXT BUILDER — Produces TextData for single-value queries
// ============================================================================
// All functions operate on RecordView — zero-copy access to any data source.
// ============================================================================

// BuildText produces a single value from the filtered records.
func BuildText(q Query, view RecordView, measure string, unit string) *TextData {
	if view.Len() == 0 {
		return &TextData{
			Value: "0",
			Unit:  unit,
		}
	}

	var value float64
	switch q.Aggregation {
	case "count", "list":
		value = float64(view.Len())
	case "sum":
		value = SumMeasure(view, measure)
	case "avg", "rate":
		value = AvgMeasure(view, measure)
	case "max":
		value = MaxMeasure(view, measure)
	case "min":
		value = MinMeasure(view, measure)
	default:
		value = float64(view.Len())
	}

	return &TextData{
		Value:    FormatValue(value, q.Aggregation),
		RawValue: value,
		Unit:     unit,
		Count:    view.Len(),
	}
}
