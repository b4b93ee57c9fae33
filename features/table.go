package features

import (
	"math"
	"strconv"

	"github.com/Khayman1/titanic-streamlit/dataset"
	"github.com/Khayman1/titanic-streamlit/engine"
	"github.com/Khayman1/titanic-streamlit/schema"
)

// Row is a passenger plus its derived categories.
type Row struct {
	dataset.Passenger
	AgeGroup    string `json:"ageGroup"`
	FareGroup   string `json:"fareGroup"`
	SexCategory string `json:"sexCategory"`
}

// Derive computes the derived categories of p.
func Derive(p dataset.Passenger) Row {
	return Row{
		Passenger:   p,
		AgeGroup:    AgeGroup(p.Age),
		FareGroup:   FareGroup(p.Fare),
		SexCategory: SexCategory(p.Sex),
	}
}

// Table is an augmented passenger table.
// Source points at the loaded table it was derived from, which is never
// modified.
type Table struct {
	Source *dataset.Table
	Rows   []Row
}

// Augment returns a new table holding a copy of every passenger of t with
// its derived categories.
func Augment(t *dataset.Table) *Table {
	rows := make([]Row, len(t.Passengers))
	for i, p := range t.Passengers {
		rows[i] = Derive(p)
	}
	return &Table{Source: t, Rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Subset returns a table of the rows at indices, sharing the same source.
func (t *Table) Subset(indices []int) *Table {
	rows := make([]Row, len(indices))
	for i, idx := range indices {
		rows[i] = t.Rows[idx]
	}
	return &Table{Source: t.Source, Rows: rows}
}

// View binds the rows to an engine.RecordView.
func (t *Table) View() engine.RecordView {
	return adapter.Bind(t.Rows)
}

// Schema returns the dimension and measure metadata of augmented tables.
func Schema() schema.Config {
	return schema.Passengers(AgeLabels(), FareLabels(), SexLabels())
}

var adapter = engine.NewDomainAdapter[Row]().
	Dimension(schema.DimSexCategory, func(r Row) string { return r.SexCategory }).
	Dimension(schema.DimSex, func(r Row) string { return r.Sex }).
	Dimension(schema.DimPclass, func(r Row) string { return strconv.Itoa(r.Pclass) }).
	Dimension(schema.DimAgeGroup, func(r Row) string { return r.AgeGroup }).
	Dimension(schema.DimFareGroup, func(r Row) string { return r.FareGroup }).
	Dimension(schema.DimSurvived, func(r Row) string { return r.Survived.String() }).
	Dimension(schema.DimEmbarked, func(r Row) string { return r.Embarked }).
	Dimension(schema.DimSibSp, func(r Row) string { return strconv.Itoa(r.SibSp) }).
	Dimension(schema.DimParch, func(r Row) string { return strconv.Itoa(r.Parch) }).
	Dimension(schema.DimPassengerID, func(r Row) string { return strconv.Itoa(r.ID) }).
	Dimension(schema.DimName, func(r Row) string { return r.Name }).
	Dimension(schema.DimAge, func(r Row) string { return r.Age.String() }).
	Dimension(schema.DimFare, func(r Row) string { return r.Fare.String() }).
	Dimension(schema.DimTicket, func(r Row) string { return r.Ticket }).
	Dimension(schema.DimCabin, func(r Row) string { return r.Cabin }).
	Measure(schema.MeasurePassengerCount, func(Row) float64 { return 1 }).
	Measure(schema.MeasureSurvived, func(r Row) float64 { return nullInt(r.Survived) }).
	Measure(schema.MeasureAge, func(r Row) float64 { return nullFloat(r.Age) }).
	Measure(schema.MeasureFare, func(r Row) float64 { return nullFloat(r.Fare) }).
	Measure(schema.MeasureSibSp, func(r Row) float64 { return float64(r.SibSp) }).
	Measure(schema.MeasureParch, func(r Row) float64 { return float64(r.Parch) })

func nullFloat(v dataset.NullFloat) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Value
}

func nullInt(v dataset.NullInt) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return float64(v.Value)
}
