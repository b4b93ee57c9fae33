package engine

// ============================================================================
// ENGINE TYPES — Dimension/measure analytics over record views
// ============================================================================
// The engine knows nothing about passengers. Dashboards describe what they
// want with a Query, bind their rows through a RecordView and render the
// Result (chart, table or text).
// ============================================================================

// ============================================================================
// RECORD — Generic data row
// ============================================================================

// Record is a single data row with string dimensions and numeric measures.
//
//	Record{Dimensions["resource"]="train", Measures["rows"]=891}
type Record struct {
	Dimensions map[string]string  `json:"dimensions"`
	Measures   map[string]float64 `json:"measures"`
}

// ============================================================================
// QUERY — What the engine should compute
// ============================================================================

// Query defines what the engine should compute.
type Query struct {
	Intent      string    `json:"intent"`      // "chart", "table", "text"
	Filters     Selection `json:"filters"`     // which records to include
	Aggregation string    `json:"aggregation"` // "count", "sum", "avg", "rate", "max", "min", "list"
	Measure     string    `json:"measure"`     // empty → default measure
	GroupBy     []string  `json:"groupBy"`     // one or two dimension keys
	SortBy      string    `json:"sortBy"`      // "value_desc", "value_asc", "label_asc", "label_desc"
	Limit       int       `json:"limit"`       // 0 = all
	Visualize   string    `json:"visualize"`   // "bar", "grouped_bar", "pie", "table", "text"
	Title       string    `json:"title"`
	XAxis       string    `json:"xAxis,omitempty"`
	YAxis       string    `json:"yAxis,omitempty"`
	Reply       string    `json:"reply"` // template: "총 {count}명 중 {top_label}"

	// Order fixes the sequence of primary groups. Listed keys are kept even
	// when no record falls in them; unlisted keys follow in first-seen order.
	Order []string `json:"order,omitempty"`
	// SeriesOrder does the same for the secondary grouping dimension.
	SeriesOrder []string `json:"seriesOrder,omitempty"`
	// Labels and SeriesLabels rename group keys for display.
	Labels       map[string]string `json:"labels,omitempty"`
	SeriesLabels map[string]string `json:"seriesLabels,omitempty"`
	// DropEmpty drops groups whose dimension value is empty (missing data).
	DropEmpty bool `json:"dropEmpty,omitempty"`
	// Highlight marks primary group keys to be drawn in the accent color.
	Highlight []string `json:"highlight,omitempty"`
	// Columns lists the dimension keys of a list table; empty → all.
	Columns []string `json:"columns,omitempty"`
}

// Selection restricts records by dimension value.
// OR within a dimension, AND across dimensions. A key absent from the map
// is unconstrained; a key mapped to an empty list matches nothing.
// Matching is exact.
type Selection map[string][]string

// Constrains reports whether dimension is restricted by the selection.
func (s Selection) Constrains(dimension string) bool {
	_, ok := s[dimension]
	return ok
}

// IsEmpty returns true if the selection restricts nothing.
func (s Selection) IsEmpty() bool { return len(s) == 0 }

// ============================================================================
// RESULT — Render-ready output
// ============================================================================

// Result is the engine's render-ready output.
type Result struct {
	Success bool   `json:"success"`
	Type    string `json:"type"` // "chart", "table", "text"
	Reply   string `json:"reply"`
	Title   string `json:"title"`

	// Exactly one of these is populated based on Type.
	ChartConfig *ChartConfig `json:"chartConfig,omitempty"`
	TableData   *TableData   `json:"tableData,omitempty"`
	TextData    *TextData    `json:"textData,omitempty"`

	Groups []Group  `json:"groups,omitempty"`
	Errors []string `json:"errors,omitempty"`
	Query  *Query   `json:"query,omitempty"`
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group represents a grouped/aggregated result.
// Builders convert these into ChartConfig, TableData, or TextData.
type Group struct {
	Key       string     `json:"key"`
	Label     string     `json:"label"`
	Value     float64    `json:"value"`
	Count     int        `json:"count"`
	SubGroups []Group    `json:"subGroups,omitempty"`
	View      RecordView `json:"-"` // sub-view for records in this group (zero-copy)
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"` // "bar", "grouped_bar", "pie"
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Count     int     `json:"count"`
	Highlight bool    `json:"highlight,omitempty"`
}

// Total sums the values of a series.
func (s ChartSeries) Total() float64 {
	var total float64
	for _, p := range s.Data {
		total += p.Value
	}
	return total
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals or aggregations for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// ============================================================================
// TEXT TYPES
// ============================================================================

// TextData is structured data for single-value answers (type="text").
type TextData struct {
	Value    string  `json:"value"`
	RawValue float64 `json:"rawValue"`
	Unit     string  `json:"unit,omitempty"`
	Count    int     `json:"count"`
}
