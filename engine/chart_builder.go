package engine

// ============================================================================
// CHART BUILDER — Produces ChartConfig from Query + Groups
// ============================================================================
// One grouping dimension → one series. Two grouping dimensions → one series
// per secondary key ("grouped_bar"), points aligned on the primary groups.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4C72B0", "#DD8452", "#55A868", "#C44E52", "#8172B3",
	"#937860", "#DA8BC3", "#8C8C8C", "#CCB974", "#64B5CD",
}

// HighlightColor is used for points flagged by Query.Highlight.
const HighlightColor = "#E4572E"

// BuildChart produces a ChartConfig from a Query and aggregated groups.
func BuildChart(q Query, groups []Group) *ChartConfig {
	if len(groups) == 0 {
		return nil
	}

	chartType := q.Visualize
	if chartType == "" || chartType == "chart" {
		chartType = "bar"
	}
	if len(q.GroupBy) >= 2 && hasSubGroups(groups) && chartType != "pie" {
		chartType = "grouped_bar"
	}

	config := &ChartConfig{
		ChartType:  chartType,
		Title:      q.Title,
		XAxis:      q.XAxis,
		YAxis:      q.YAxis,
		ShowLegend: chartType != "bar",
		ShowGrid:   chartType != "pie",
	}
	if config.XAxis == "" && len(q.GroupBy) > 0 {
		config.XAxis = LabelForDimension(q.GroupBy[0])
	}
	if config.YAxis == "" {
		config.YAxis = LabelForAggregation(q.Aggregation)
	}

	if chartType == "grouped_bar" {
		config.Series = buildMultiSeries(groups)
	} else {
		config.Series = buildSingleSeries(groups, q.Title, toSet(q.Highlight))
	}

	config.Colors = assignColors(len(config.Series))
	if chartType == "pie" && len(config.Series) == 1 {
		config.Colors = assignColors(len(config.Series[0].Data))
	}
	return config
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildSingleSeries(groups []Group, seriesName string, highlight map[string]bool) []ChartSeries {
	if seriesName == "" {
		seriesName = "Value"
	}

	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, ChartPoint{
			Label:     g.Label,
			Value:     RoundTo2(g.Value),
			Count:     g.Count,
			Highlight: highlight[g.Key],
		})
	}

	return []ChartSeries{{
		Name:  seriesName,
		Data:  points,
		Color: defaultColors[0],
	}}
}

// buildMultiSeries pivots sub-groups into one series per secondary key.
// Secondary keys keep the order in which they first appear.
func buildMultiSeries(groups []Group) []ChartSeries {
	var subKeys []string
	subLabels := make(map[string]string)
	for _, g := range groups {
		for _, sg := range g.SubGroups {
			if _, ok := subLabels[sg.Key]; !ok {
				subKeys = append(subKeys, sg.Key)
				subLabels[sg.Key] = sg.Label
			}
		}
	}

	series := make([]ChartSeries, 0, len(subKeys))
	for i, key := range subKeys {
		points := make([]ChartPoint, 0, len(groups))
		for _, g := range groups {
			point := ChartPoint{Label: g.Label}
			for _, sg := range g.SubGroups {
				if sg.Key == key {
					point.Value = RoundTo2(sg.Value)
					point.Count = sg.Count
					break
				}
			}
			points = append(points, point)
		}
		series = append(series, ChartSeries{
			Name:  subLabels[key],
			Data:  points,
			Color: defaultColors[i%len(defaultColors)],
		})
	}

	return series
}

func hasSubGroups(groups []Group) bool {
	for _, g := range groups {
		if len(g.SubGroups) > 0 {
			return true
		}
	}
	return false
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
