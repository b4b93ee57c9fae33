// Package filter selects passengers by sex category, cabin class, age group
// and survival. Values within one dimension are OR-combined; the four
// dimensions are AND-combined.
package filter

import (
	"fmt"
	"strings"

	"github.com/Khayman1/titanic-streamlit/engine"
	"github.com/Khayman1/titanic-streamlit/features"
	"github.com/Khayman1/titanic-streamlit/schema"
)

// Criteria holds one selection set per dimension.
// A nil or empty set selects nothing for that dimension.
type Criteria struct {
	Sex      []string `json:"sex"`
	Pclass   []string `json:"pclass"`
	AgeGroup []string `json:"ageGroup"`
	Survived []string `json:"survived"`
}

// Domain value lists of the four dimensions.
var (
	PclassValues   = []string{"1", "2", "3"}
	SurvivedValues = []string{"0", "1"}
)

// FullDomain returns criteria selecting every value each dimension can take.
// Applying it to a table returns every row.
func FullDomain() Criteria {
	return Criteria{
		Sex:      features.SexLabels(),
		Pclass:   append([]string(nil), PclassValues...),
		AgeGroup: features.AgeLabels(),
		Survived: append([]string(nil), SurvivedValues...),
	}
}

// Selection converts c to an engine selection over the augmented table keys.
func (c Criteria) Selection() engine.Selection {
	return engine.Selection{
		schema.DimSexCategory: nonNil(c.Sex),
		schema.DimPclass:      nonNil(c.Pclass),
		schema.DimAgeGroup:    nonNil(c.AgeGroup),
		schema.DimSurvived:    nonNil(c.Survived),
	}
}

// Apply returns the rows of t matching c, in their original order.
// Values outside a dimension's domain match nothing and are not an error.
func Apply(t *features.Table, c Criteria) *features.Table {
	return t.Subset(engine.SelectIndices(t.View(), c.Selection()))
}

// Count returns how many rows of t match c.
func Count(t *features.Table, c Criteria) int {
	return len(engine.SelectIndices(t.View(), c.Selection()))
}

// Summary renders the result line shown above a filtered table.
func Summary(n int) string {
	return fmt.Sprintf("🔍 검색 결과: 총 %s명", engine.FormatInt(n))
}

// String describes c for logs.
func (c Criteria) String() string {
	return fmt.Sprintf("sex=[%s] pclass=[%s] age_group=[%s] survived=[%s]",
		strings.Join(c.Sex, ","), strings.Join(c.Pclass, ","),
		strings.Join(c.AgeGroup, ","), strings.Join(c.Survived, ","))
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
