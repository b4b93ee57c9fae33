package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ============================================================================
// AGGREGATORS — Grouping, Aggregation, and Sorting via RecordView
// ============================================================================
// All functions operate on RecordView — zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view).
// ============================================================================

// GroupAndAggregate is the main entry point for the aggregation pipeline.
// Pipeline: group → order → aggregate → sort → limit.
func GroupAndAggregate(view RecordView, q Query, measure string) []Group {
	// 1. Group
	var groups []Group
	switch len(q.GroupBy) {
	case 0:
		if view.Len() == 0 {
			return nil
		}
		groups = []Group{{Key: "all", Label: "전체", View: view}}
	case 1:
		groups = groupBySingle(view, q.GroupBy[0], q.Order, q.DropEmpty)
	default:
		groups = groupBySingle(view, q.GroupBy[0], q.Order, q.DropEmpty)
		for i := range groups {
			groups[i].SubGroups = groupBySingle(groups[i].View, q.GroupBy[1], q.SeriesOrder, q.DropEmpty)
		}
	}

	// 2. Labels + aggregate
	for i := range groups {
		relabel(&groups[i], q.Labels)
		aggregateGroup(&groups[i], measure, q.Aggregation)
		for j := range groups[i].SubGroups {
			relabel(&groups[i].SubGroups[j], q.SeriesLabels)
			aggregateGroup(&groups[i].SubGroups[j], measure, q.Aggregation)
		}
	}

	// 3. Sort
	SortGroups(groups, q.SortBy)

	// 4. Limit
	if q.Limit > 0 && len(groups) > q.Limit {
		groups = groups[:q.Limit]
	}

	return groups
}

// ============================================================================
// GROUPING
// ============================================================================

// groupBySingle groups records by one dimension. Keys listed in order come
// first (present or not), remaining keys follow in first-seen order.
func groupBySingle(view RecordView, dimension string, order []string, dropEmpty bool) []Group {
	grouped := make(map[string][]int)
	seen := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, dimension)
		if dropEmpty && key == "" {
			continue
		}
		if _, exists := grouped[key]; !exists {
			seen = append(seen, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	keys := make([]string, 0, len(seen)+len(order))
	listed := make(map[string]bool, len(order))
	for _, key := range order {
		if !listed[key] {
			listed[key] = true
			keys = append(keys, key)
		}
	}
	for _, key := range seen {
		if !listed[key] {
			keys = append(keys, key)
		}
	}

	groups := make([]Group, 0, len(keys))
	for _, key := range keys {
		indices := grouped[key]
		if indices == nil {
			indices = []int{}
		}
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			View:  newSubView(view, indices),
		})
	}
	return groups
}

func relabel(g *Group, labels map[string]string) {
	if label, ok := labels[g.Key]; ok {
		g.Label = label
	}
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregateGroup(group *Group, measure string, aggregation string) {
	group.Count = group.View.Len()
	if group.Count == 0 {
		return
	}

	switch aggregation {
	case "count":
		group.Value = float64(group.Count)
	case "sum":
		group.Value = SumMeasure(group.View, measure)
	case "avg", "rate":
		group.Value = AvgMeasure(group.View, measure)
	case "max":
		group.Value = MaxMeasure(group.View, measure)
	case "min":
		group.Value = MinMeasure(group.View, measure)
	case "list":
		group.Value = float64(group.Count) // for sorting
	default:
		group.Value = float64(group.Count)
	}
}

// SumMeasure sums a named measure across a view, skipping missing values.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		if v := view.Measure(i, measure); !math.IsNaN(v) {
			total += v
		}
	}
	return total
}

// CountMeasure counts the records where measure is present.
func CountMeasure(view RecordView, measure string) int {
	n := 0
	for i := 0; i < view.Len(); i++ {
		if !math.IsNaN(view.Measure(i, measure)) {
			n++
		}
	}
	return n
}

// AvgMeasure computes the mean of a named measure over present values.
func AvgMeasure(view RecordView, measure string) float64 {
	n := CountMeasure(view, measure)
	if n == 0 {
		return 0
	}
	return SumMeasure(view, measure) / float64(n)
}

// MaxMeasure returns the largest present value of a named measure.
func MaxMeasure(view RecordView, measure string) float64 {
	m := math.Inf(-1)
	found := false
	for i := 0; i < view.Len(); i++ {
		v := view.Measure(i, measure)
		if math.IsNaN(v) {
			continue
		}
		if !found || v > m {
			m = v
			found = true
		}
	}
	if !found {
		return 0
	}
	return m
}

// MinMeasure returns the smallest present value of a named measure.
func MinMeasure(view RecordView, measure string) float64 {
	m := math.Inf(1)
	found := false
	for i := 0; i < view.Len(); i++ {
		v := view.Measure(i, measure)
		if math.IsNaN(v) {
			continue
		}
		if !found || v < m {
			m = v
			found = true
		}
	}
	if !found {
		return 0
	}
	return m
}

// MeasureValues collects the present values of a measure, in view order.
func MeasureValues(view RecordView, measure string) []float64 {
	out := make([]float64, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		if v := view.Measure(i, measure); !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups sorts aggregate groups by the specified sort mode.
// Ties keep their grouping order.
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case "value_desc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
	case "value_asc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value < groups[j].Value })
	case "label_asc":
		sort.SliceStable(groups, func(i, j int) bool { return lessKey(groups[i].Key, groups[j].Key) })
	case "label_desc":
		sort.SliceStable(groups, func(i, j int) bool { return lessKey(groups[j].Key, groups[i].Key) })
	default:
		// preserve grouping order
	}
}

// lessKey orders numeric keys numerically ("2" < "10") and others lexically.
func lessKey(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// FormatNumber formats whole numbers with separators and others with two
// decimals.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return FormatInt(int(v))
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatPercent formats a 0..1 ratio as "38.4%".
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// FormatValue formats an aggregated value for its aggregation.
func FormatValue(v float64, aggregation string) string {
	switch aggregation {
	case "rate":
		return FormatPercent(v)
	case "count", "list":
		return FormatInt(int(v))
	default:
		return FormatNumber(v)
	}
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LabelForAggregation returns a display label for an aggregation type.
func LabelForAggregation(aggregation string) string {
	switch aggregation {
	case "sum":
		return "합계"
	case "count", "list":
		return "인원 수"
	case "avg":
		return "평균"
	case "rate":
		return "비율"
	case "max":
		return "최대"
	case "min":
		return "최소"
	default:
		return "값"
	}
}
