package dataset

import "strconv"

// NullFloat is a float64 that may be missing in the source CSV.
type NullFloat struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Float returns a valid NullFloat.
func Float(v float64) NullFloat { return NullFloat{Value: v, Valid: true} }

func (n NullFloat) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// NullInt is an int that may be missing in the source CSV.
type NullInt struct {
	Value int  `json:"value"`
	Valid bool `json:"valid"`
}

// Int returns a valid NullInt.
func Int(v int) NullInt { return NullInt{Value: v, Valid: true} }

func (n NullInt) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.Itoa(n.Value)
}

// Passenger is one row of a Titanic manifest.
// Survived is null in the test split; Pclass and the numeric attributes are
// zero in the submission example, which only carries the id and outcome.
type Passenger struct {
	ID       int       `json:"passengerId"`
	Survived NullInt   `json:"survived"`
	Pclass   int       `json:"pclass"`
	Name     string    `json:"name"`
	Sex      string    `json:"sex"`
	Age      NullFloat `json:"age"`
	SibSp    int       `json:"sibSp"`
	Parch    int       `json:"parch"`
	Ticket   string    `json:"ticket"`
	Fare     NullFloat `json:"fare"`
	Cabin    string    `json:"cabin"`
	Embarked string    `json:"embarked"`
}
