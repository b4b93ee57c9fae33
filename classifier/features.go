package classifier

import (
	"fmt"
	"math"
	"strings"

	"github.com/Khayman1/titanic-streamlit/dataset"
)

// FeatureSet selects which passenger attributes the model sees.
type FeatureSet int

const (
	// Basic uses sex and cabin class.
	Basic FeatureSet = iota
	// Extended adds family size columns and fare to Basic.
	Extended
	// Form uses the inputs of the prediction form: class, sex, age and fare.
	Form
)

var featureSetNames = map[FeatureSet]string{
	Basic:    "basic",
	Extended: "extended",
	Form:     "form",
}

func (f FeatureSet) String() string {
	if name, ok := featureSetNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FeatureSet(%d)", int(f))
}

// ParseFeatureSet converts a feature set name.
func ParseFeatureSet(s string) (FeatureSet, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for set, name := range featureSetNames {
		if name == key {
			return set, nil
		}
	}
	return Basic, fmt.Errorf("unknown feature set %q (want basic, extended or form)", s)
}

// Columns returns the source column of each feature, in vector order.
func (f FeatureSet) Columns() []string {
	switch f {
	case Extended:
		return []string{"Sex", "Pclass", "SibSp", "Parch", "Fare"}
	case Form:
		return []string{"Pclass", "Sex", "Age", "Fare"}
	default:
		return []string{"Sex", "Pclass"}
	}
}

// Vector encodes p for this feature set. Sex is 1 for male, 0 for female
// and missing otherwise; missing numbers are NaN.
func (f FeatureSet) Vector(p dataset.Passenger) []float64 {
	cols := f.Columns()
	x := make([]float64, len(cols))
	for i, col := range cols {
		switch col {
		case "Sex":
			x[i] = encodeSex(p.Sex)
		case "Pclass":
			x[i] = float64(p.Pclass)
		case "SibSp":
			x[i] = float64(p.SibSp)
		case "Parch":
			x[i] = float64(p.Parch)
		case "Age":
			x[i] = nullFloat(p.Age)
		case "Fare":
			x[i] = nullFloat(p.Fare)
		}
	}
	return x
}

func encodeSex(sex string) float64 {
	switch sex {
	case "male":
		return 1
	case "female":
		return 0
	default:
		return math.NaN()
	}
}

func nullFloat(v dataset.NullFloat) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Value
}
