package schema

import (
	"fmt"
	"strings"
)

// ============================================================================
// SCHEMA — Column contracts of the CSV resources + augmented table metadata
// ============================================================================
// The loader validates CSV headers against a Resource contract.
// The engine, the API and the views use Config to know which dimensions and
// measures the augmented passenger table exposes.
// ============================================================================

// Dimension keys exposed by the augmented passenger table.
const (
	DimSex         = "sex"
	DimSexCategory = "sex_category"
	DimPclass      = "pclass"
	DimAgeGroup    = "age_group"
	DimFareGroup   = "fare_group"
	DimSurvived    = "survived"
	DimEmbarked    = "embarked"
	DimSibSp       = "sibsp"
	DimParch       = "parch"

	// Identifying and raw numeric columns, exposed for row listings.
	DimPassengerID = "passenger_id"
	DimName        = "name"
	DimAge         = "age"
	DimFare        = "fare"
	DimTicket      = "ticket"
	DimCabin       = "cabin"
)

// Measure keys exposed by the augmented passenger table.
const (
	MeasureAge            = "age"
	MeasureFare           = "fare"
	MeasureSibSp          = "sibsp"
	MeasureParch          = "parch"
	MeasureSurvived       = "survived"
	MeasurePassengerCount = "passenger_count"
)

// ============================================================================
// RESOURCE CONTRACTS
// ============================================================================

// ColumnKind is the parse type of a CSV column.
type ColumnKind int

const (
	KindString ColumnKind = iota
	KindInt
	KindFloat
)

func (k ColumnKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// Column describes one CSV column of a resource.
type Column struct {
	Name     string     `json:"name"`
	Kind     ColumnKind `json:"kind"`
	Required bool       `json:"required"`
	Nullable bool       `json:"nullable"`
}

// Resource is the column contract of one CSV file.
type Resource struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

var passengerColumns = []Column{
	{Name: "PassengerId", Kind: KindInt, Required: true},
	{Name: "Pclass", Kind: KindInt, Required: true},
	{Name: "Name", Kind: KindString},
	{Name: "Sex", Kind: KindString, Required: true, Nullable: true},
	{Name: "Age", Kind: KindFloat, Required: true, Nullable: true},
	{Name: "SibSp", Kind: KindInt, Required: true},
	{Name: "Parch", Kind: KindInt, Required: true},
	{Name: "Ticket", Kind: KindString},
	{Name: "Fare", Kind: KindFloat, Required: true, Nullable: true},
	{Name: "Cabin", Kind: KindString, Nullable: true},
	{Name: "Embarked", Kind: KindString, Required: true, Nullable: true},
}

// Train is the contract of train.csv.
var Train = Resource{
	Name:    "train",
	Columns: append([]Column{{Name: "Survived", Kind: KindInt, Required: true}}, passengerColumns...),
}

// Test is the contract of test.csv (no outcome column).
var Test = Resource{
	Name:    "test",
	Columns: passengerColumns,
}

// Submission is the contract of gender_submission.csv.
var Submission = Resource{
	Name: "submission",
	Columns: []Column{
		{Name: "PassengerId", Kind: KindInt, Required: true},
		{Name: "Survived", Kind: KindInt, Required: true},
	},
}

// Column returns the named column contract.
func (r Resource) Column(name string) (Column, bool) {
	for _, c := range r.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Validate checks that every required column is present in header.
// Header cells are compared after trimming surrounding whitespace.
func (r Resource) Validate(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	var missing []string
	for _, c := range r.Columns {
		if c.Required && !present[c.Name] {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing required columns %s", r.Name, strings.Join(missing, ", "))
	}
	return nil
}

// Index maps trimmed header names to their column position.
func Index(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

// ============================================================================
// AUGMENTED TABLE METADATA
// ============================================================================

// Config describes the dimensions and measures of a record view.
type Config struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Dimensions []DimensionMeta `json:"dimensions"`
	Measures   []MeasureMeta   `json:"measures"`
}

// DimensionMeta describes a string field used for grouping/filtering.
type DimensionMeta struct {
	Key          string   `json:"key"`
	DisplayName  string   `json:"displayName"`
	Description  string   `json:"description,omitempty"`
	SampleValues []string `json:"sampleValues"`
	Groupable    bool     `json:"groupable"`
	Filterable   bool     `json:"filterable"`
	DerivedFrom  string   `json:"derivedFrom,omitempty"` // source column when bucketed
}

// MeasureMeta describes a numeric field used for aggregation.
type MeasureMeta struct {
	Key                string   `json:"key"`
	DisplayName        string   `json:"displayName"`
	Description        string   `json:"description,omitempty"`
	Unit               string   `json:"unit,omitempty"`
	IsSynthetic        bool     `json:"isSynthetic,omitempty"`
	Aggregations       []string `json:"aggregations,omitempty"`
	DefaultAggregation string   `json:"defaultAggregation,omitempty"`
}

// DefaultDimension creates a DimensionMeta with sensible defaults.
func DefaultDimension(key, displayName string, samples []string) DimensionMeta {
	return DimensionMeta{
		Key:          key,
		DisplayName:  displayName,
		SampleValues: samples,
		Groupable:    true,
		Filterable:   true,
	}
}

// DefaultMeasure creates a MeasureMeta with sensible defaults.
func DefaultMeasure(key, displayName string) MeasureMeta {
	return MeasureMeta{
		Key:                key,
		DisplayName:        displayName,
		Aggregations:       []string{"sum", "avg", "count"},
		DefaultAggregation: "sum",
	}
}

// Passengers returns the metadata of the augmented passenger table.
// Sample values of derived dimensions are supplied by the caller so this
// package stays free of the bucket definitions.
func Passengers(ageLabels, fareLabels, sexLabels []string) Config {
	age := DefaultDimension(DimAgeGroup, "나이대", ageLabels)
	age.DerivedFrom = "Age"
	fare := DefaultDimension(DimFareGroup, "요금 구간", fareLabels)
	fare.DerivedFrom = "Fare"
	sex := DefaultDimension(DimSexCategory, "성별", sexLabels)
	sex.DerivedFrom = "Sex"

	survived := DefaultMeasure(MeasureSurvived, "생존")
	survived.Aggregations = []string{"sum", "avg", "rate"}
	survived.DefaultAggregation = "rate"

	count := MeasureMeta{
		Key:                MeasurePassengerCount,
		DisplayName:        "탑승자 수",
		Description:        "Number of passengers (always 1 per row)",
		Unit:               "명",
		IsSynthetic:        true,
		Aggregations:       []string{"count"},
		DefaultAggregation: "count",
	}

	return Config{
		Name:        "titanic-passengers",
		Description: "Kaggle Titanic train split with derived categories",
		Dimensions: []DimensionMeta{
			sex,
			DefaultDimension(DimSex, "성별 (원본)", []string{"male", "female"}),
			DefaultDimension(DimPclass, "객실 등급", []string{"1", "2", "3"}),
			age,
			fare,
			DefaultDimension(DimSurvived, "생존 여부", []string{"0", "1"}),
			DefaultDimension(DimEmbarked, "탑승 위치", []string{"C", "Q", "S"}),
			DefaultDimension(DimSibSp, "형제자매/배우자 수", nil),
			DefaultDimension(DimParch, "부모/자녀 수", nil),
			listing(DimPassengerID, "PassengerId"),
			listing(DimName, "이름"),
			listing(DimAge, "나이"),
			listing(DimFare, "요금"),
			listing(DimTicket, "티켓"),
			listing(DimCabin, "객실"),
		},
		Measures: []MeasureMeta{
			count,
			survived,
			DefaultMeasure(MeasureAge, "나이"),
			DefaultMeasure(MeasureFare, "요금"),
			DefaultMeasure(MeasureSibSp, "형제자매/배우자 수"),
			DefaultMeasure(MeasureParch, "부모/자녀 수"),
		},
	}
}

// listing describes a per-passenger column that is displayed but never grouped.
func listing(key, displayName string) DimensionMeta {
	return DimensionMeta{Key: key, DisplayName: displayName}
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// MeasureKeys returns all measure keys.
func (c Config) MeasureKeys() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}

// Dimension returns the metadata for key.
func (c Config) Dimension(key string) (DimensionMeta, bool) {
	for _, d := range c.Dimensions {
		if d.Key == key {
			return d, true
		}
	}
	return DimensionMeta{}, false
}
