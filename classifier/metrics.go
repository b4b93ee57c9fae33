package classifier

import (
	"fmt"
	"math"
	"math/rand"
)

// Metrics scores binary predictions (labels 0/1, 1 = positive).
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`

	TruePositive  int `json:"truePositive"`
	FalsePositive int `json:"falsePositive"`
	TrueNegative  int `json:"trueNegative"`
	FalseNegative int `json:"falseNegative"`
}

// Score compares predictions with the true labels.
func Score(yTrue, yPred []int) Metrics {
	var m Metrics
	for i := range yTrue {
		switch {
		case yPred[i] == 1 && yTrue[i] == 1:
			m.TruePositive++
		case yPred[i] == 1 && yTrue[i] == 0:
			m.FalsePositive++
		case yPred[i] == 0 && yTrue[i] == 1:
			m.FalseNegative++
		default:
			m.TrueNegative++
		}
	}
	if n := len(yTrue); n > 0 {
		m.Accuracy = float64(m.TruePositive+m.TrueNegative) / float64(n)
	}
	if tp, fp := m.TruePositive, m.FalsePositive; tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp, fn := m.TruePositive, m.FalseNegative; tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// Split returns a seeded permutation of 0..n-1 cut into train and test
// indices. The test part holds ceil(n*testRatio) rows.
func Split(n int, testRatio float64, seed int64) (train, test []int, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("test ratio %v outside (0, 1)", testRatio)
	}
	nTest := int(math.Ceil(float64(n) * testRatio))
	if nTest < 1 || n-nTest < 1 {
		return nil, nil, fmt.Errorf("%w: %d rows cannot be split at %.2f", ErrNotEnoughData, n, testRatio)
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}
