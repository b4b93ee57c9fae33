// Package features derives the categorical columns the dashboard groups and
// filters by: age group, fare group and a normalized sex category.
package features

import (
	"math"
	"sort"

	"github.com/Khayman1/titanic-streamlit/dataset"
)

// Other is the label of values no bucket covers, including missing ones.
const Other = "기타"

// Bins maps a number to one of a fixed set of labelled ranges.
// Bin i covers [Edges[i], Edges[i+1]); the last bin is unbounded above.
type Bins struct {
	Edges  []float64
	Labels []string
	Other  string
}

// Label returns the bucket label for v, or b.Other when v is null, NaN or
// below the first edge.
func (b Bins) Label(v dataset.NullFloat) string {
	if !v.Valid || math.IsNaN(v.Value) || len(b.Edges) == 0 || v.Value < b.Edges[0] {
		return b.Other
	}
	// Index of the first edge strictly greater than v, minus one.
	i := sort.Search(len(b.Edges), func(i int) bool { return b.Edges[i] > v.Value }) - 1
	if i < 0 || i >= len(b.Labels) {
		return b.Other
	}
	return b.Labels[i]
}

// All returns the bucket labels followed by the fallback label.
func (b Bins) All() []string {
	out := make([]string, 0, len(b.Labels)+1)
	out = append(out, b.Labels...)
	return append(out, b.Other)
}

// AgeBins buckets ages into 20-year bands.
var AgeBins = Bins{
	Edges:  []float64{0, 20, 40, 60, 80},
	Labels: []string{"0-19세", "20-39세", "40-59세", "60-79세", "80세 이상"},
	Other:  Other,
}

// FareBins buckets fares by ticket price band.
var FareBins = Bins{
	Edges:  []float64{0, 10, 30, 100, 250},
	Labels: []string{"0-10", "10-30", "30-100", "100-250", "250+"},
	Other:  Other,
}

// AgeGroup returns the age band of age.
func AgeGroup(age dataset.NullFloat) string { return AgeBins.Label(age) }

// FareGroup returns the fare band of fare.
func FareGroup(fare dataset.NullFloat) string { return FareBins.Label(fare) }

// Sex categories.
const (
	Male   = "male"
	Female = "female"
)

// SexCategory keeps "male" and "female" and maps anything else to Other.
func SexCategory(sex string) string {
	switch sex {
	case Male, Female:
		return sex
	default:
		return Other
	}
}

// AgeLabels returns the age group labels in display order.
func AgeLabels() []string { return AgeBins.All() }

// FareLabels returns the fare group labels in display order.
func FareLabels() []string { return FareBins.All() }

// SexLabels returns the sex categories in display order.
func SexLabels() []string { return []string{Male, Female, Other} }
