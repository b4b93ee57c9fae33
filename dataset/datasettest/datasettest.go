// Package datasettest provides Titanic fixture files and helpers for tests.
//
// The embedded train.csv holds 25 rows of the Kaggle manifest chosen to cover
// every derived bucket: missing ages, an 80-year-old, a 512.33 fare and a row
// without an embarkation port.
package datasettest

import (
	"bytes"
	"context"
	"embed"
	"encoding/csv"
	"fmt"
	"math/rand"
	"strconv"
	"testing"
	"testing/fstest"

	"github.com/Khayman1/titanic-streamlit/dataset"
)

//go:embed testdata/*.csv
var files embed.FS

// Fixture counts of testdata/train.csv.
const (
	TrainRows          = 25
	TrainSurvivors     = 13
	TrainMale          = 11
	TrainFemale        = 14
	TrainMaleSurvivors = 2
	TestRows           = 5
	SubmissionRows     = 5
)

// Bytes returns the content of a fixture file ("train.csv", ...).
func Bytes(name string) []byte {
	data, err := files.ReadFile("testdata/" + name)
	if err != nil {
		panic(fmt.Sprintf("datasettest: %v", err))
	}
	return data
}

// FS returns a fresh in-memory data directory with the three fixture files.
// Callers may add, replace or delete entries freely.
func FS() fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, name := range dataset.DefaultFiles() {
		fsys[name] = &fstest.MapFile{Data: Bytes(name)}
	}
	return fsys
}

// NewCache returns a cache over FS().
func NewCache(opts ...dataset.CacheOption) *dataset.Cache {
	return dataset.NewCache(FS(), dataset.DefaultFiles(), opts...)
}

// Load loads res from a fresh fixture cache, failing the test on error.
func Load(tb testing.TB, res dataset.Resource) *dataset.Table {
	tb.Helper()
	t, err := NewCache().Load(context.Background(), res)
	if err != nil {
		tb.Fatalf("load %s fixture: %v", res, err)
	}
	return t
}

// Manifest generates a deterministic train.csv with n rows, of which male are
// male and the rest female. Ages are missing for roughly one row in five.
func Manifest(n, male int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	sexes := make([]string, n)
	for i := range sexes {
		if i < male {
			sexes[i] = "male"
		} else {
			sexes[i] = "female"
		}
	}
	rng.Shuffle(len(sexes), func(i, j int) { sexes[i], sexes[j] = sexes[j], sexes[i] })

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"PassengerId", "Survived", "Pclass", "Name", "Sex", "Age", "SibSp", "Parch", "Ticket", "Fare", "Cabin", "Embarked"})
	ports := []string{"S", "S", "S", "C", "Q", ""}
	for i := 0; i < n; i++ {
		pclass := 1 + rng.Intn(3)
		survived := 0
		chance := 0.2
		if sexes[i] == "female" {
			chance = 0.74
		}
		if rng.Float64() < chance {
			survived = 1
		}
		age := ""
		if rng.Intn(5) != 0 {
			age = strconv.FormatFloat(float64(rng.Intn(800))/10, 'f', -1, 64)
		}
		fare := strconv.FormatFloat(float64(rng.Intn(30000))/100/float64(pclass), 'f', 2, 64)
		_ = w.Write([]string{
			strconv.Itoa(i + 1),
			strconv.Itoa(survived),
			strconv.Itoa(pclass),
			fmt.Sprintf("Passenger %d", i+1),
			sexes[i],
			age,
			strconv.Itoa(rng.Intn(3)),
			strconv.Itoa(rng.Intn(3)),
			fmt.Sprintf("T%05d", rng.Intn(100000)),
			fare,
			"",
			ports[rng.Intn(len(ports))],
		})
	}
	w.Flush()
	return buf.Bytes()
}
