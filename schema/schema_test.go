package schema

import (
	"strings"
	"testing"
)

// ============================================================================
// RESOURCE CONTRACTS
// ============================================================================

var kaggleTrainHeader = []string{
	"PassengerId", "Survived", "Pclass", "Name", "Sex", "Age",
	"SibSp", "Parch", "Ticket", "Fare", "Cabin", "Embarked",
}

func TestValidateTrainHeader(t *testing.T) {
	if err := Train.Validate(kaggleTrainHeader); err != nil {
		t.Fatalf("train header rejected: %v", err)
	}
	// test.csv is the train layout without the outcome column.
	if err := Test.Validate(append([]string{kaggleTrainHeader[0]}, kaggleTrainHeader[2:]...)); err != nil {
		t.Fatalf("test header rejected: %v", err)
	}
}

func TestValidateTrimsHeaderCells(t *testing.T) {
	if err := Submission.Validate([]string{" PassengerId", "Survived\r "}); err != nil {
		t.Fatalf("padded header rejected: %v", err)
	}
}

func TestValidateReportsEveryMissingColumn(t *testing.T) {
	err := Train.Validate([]string{"PassengerId", "Name", "Ticket"})
	if err == nil {
		t.Fatal("expected missing columns error")
	}
	for _, col := range []string{"Survived", "Pclass", "Sex", "Age", "SibSp", "Parch", "Fare", "Embarked"} {
		if !strings.Contains(err.Error(), col) {
			t.Errorf("error %q does not name %s", err, col)
		}
	}
	// Optional columns are never reported.
	for _, col := range []string{"Name", "Ticket", "Cabin"} {
		if strings.Contains(err.Error(), col) {
			t.Errorf("error %q names optional column %s", err, col)
		}
	}
}

func TestTrainHasOutcomeColumn(t *testing.T) {
	c, ok := Train.Column("Survived")
	if !ok || c.Kind != KindInt || !c.Required {
		t.Fatalf("Survived = %+v, %v", c, ok)
	}
	if _, ok := Test.Column("Survived"); ok {
		t.Fatal("test contract must not carry Survived")
	}
	age, _ := Train.Column("Age")
	if !age.Nullable || age.Kind.String() != "float" {
		t.Errorf("Age = %+v", age)
	}
}

func TestIndex(t *testing.T) {
	idx := Index([]string{"\ufeffPassengerId", " Survived "})
	if got, ok := idx["Survived"]; !ok || got != 1 {
		t.Errorf("Survived index = %d, %v", got, ok)
	}
}

// ============================================================================
// AUGMENTED TABLE METADATA
// ============================================================================

func TestPassengersConfig(t *testing.T) {
	ages := []string{"0-19세", "20-39세"}
	cfg := Passengers(ages, []string{"0-10"}, []string{"male", "female", "기타"})

	for _, key := range []string{DimSexCategory, DimPclass, DimAgeGroup, DimFareGroup, DimSurvived, DimName} {
		if _, ok := cfg.Dimension(key); !ok {
			t.Errorf("dimension %s missing", key)
		}
	}
	age, _ := cfg.Dimension(DimAgeGroup)
	if age.DerivedFrom != "Age" || len(age.SampleValues) != len(ages) {
		t.Errorf("age_group = %+v", age)
	}
	if name, _ := cfg.Dimension(DimName); name.Groupable {
		t.Error("listing columns are not groupable")
	}

	measures := cfg.MeasureKeys()
	if len(measures) == 0 || measures[0] != MeasurePassengerCount {
		t.Errorf("measures = %v, want passenger_count first", measures)
	}
	if len(cfg.DimensionKeys()) != len(cfg.Dimensions) {
		t.Error("DimensionKeys length mismatch")
	}
}
