package classifier

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"
)

// Forest is a random forest of DecisionTrees.
// Each tree is fitted on its own bootstrap sample with its own seed, so a
// fitted forest depends only on the data and Seed, never on scheduling.
type Forest struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 => sqrt(number of features)
	Criterion       string
	Bootstrap       bool
	Seed            int64
	Workers         int // concurrent tree fits; 0 => unlimited

	Trees   []*DecisionTree
	classes []int
}

// ForestOption configures a Forest.
type ForestOption func(*Forest)

func WithEstimators(n int) ForestOption         { return func(f *Forest) { f.NEstimators = n } }
func WithBootstrap(b bool) ForestOption         { return func(f *Forest) { f.Bootstrap = b } }
func WithForestSeed(seed int64) ForestOption    { return func(f *Forest) { f.Seed = seed } }
func WithForestMaxDepth(d int) ForestOption     { return func(f *Forest) { f.MaxDepth = d } }
func WithForestCriterion(c string) ForestOption { return func(f *Forest) { f.Criterion = c } }
func WithForestMaxFeatures(k int) ForestOption  { return func(f *Forest) { f.MaxFeatures = k } }
func WithWorkers(n int) ForestOption            { return func(f *Forest) { f.Workers = n } }

// NewForest initializes a forest with sensible defaults.
func NewForest(opts ...ForestOption) *Forest {
	f := &Forest{
		NEstimators:     100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       "gini",
		Bootstrap:       true,
		Seed:            42,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fit trains every tree concurrently. It stops early when ctx is cancelled.
func (f *Forest) Fit(ctx context.Context, X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("randomforest: empty X")
	}
	n := len(X)
	if len(y) != n {
		return errors.New("randomforest: X and y length mismatch")
	}
	if f.NEstimators <= 0 {
		return errors.New("randomforest: need at least one estimator")
	}

	maxFeatures := f.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Max(1, math.Floor(math.Sqrt(float64(len(X[0]))))))
	}

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	f.classes = uniqueClasses(y, all)

	trees := make([]*DecisionTree, f.NEstimators)
	eg, egCtx := errgroup.WithContext(ctx)
	if f.Workers > 0 {
		eg.SetLimit(f.Workers)
	}

	for i := 0; i < f.NEstimators; i++ {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			seed := f.Seed + int64(i)
			treeRand := rand.New(rand.NewSource(seed))

			// Bootstrap sampling: an index slice, not a copy of the data.
			sample := make([]int, n)
			for j := range sample {
				if f.Bootstrap {
					sample[j] = treeRand.Intn(n)
				} else {
					sample[j] = j
				}
			}

			tree := NewDecisionTree(
				WithMaxDepth(f.MaxDepth),
				WithMinSamplesSplit(f.MinSamplesSplit),
				WithMinSamplesLeaf(f.MinSamplesLeaf),
				WithCriterion(f.Criterion),
				WithMaxFeatures(maxFeatures),
				WithSeed(seed),
			)
			if err := tree.FitIndices(X, y, sample); err != nil {
				return err
			}
			trees[i] = tree
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	f.Trees = trees
	return nil
}

// Classes returns the class labels seen during Fit, ascending.
func (f *Forest) Classes() []int { return f.classes }

// Predict returns the majority vote of all trees. Ties go to the lowest class.
func (f *Forest) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	preds := make([][]int, len(f.Trees))
	for t, tree := range f.Trees {
		preds[t] = tree.Predict(X)
	}
	for i := range X {
		votes := make(map[int]int, len(f.classes))
		for t := range f.Trees {
			votes[preds[t][i]]++
		}
		best, bestCount := 0, -1
		for _, cls := range f.classes {
			if votes[cls] > bestCount {
				best, bestCount = cls, votes[cls]
			}
		}
		out[i] = best
	}
	return out
}

// PredictProba returns, per row, the mean of the trees' probabilities
// aligned with Classes().
func (f *Forest) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range out {
		out[i] = make([]float64, len(f.classes))
	}
	if len(f.Trees) == 0 {
		return out
	}
	for _, tree := range f.Trees {
		probas := tree.PredictProba(X)
		for i := range X {
			for k, cls := range tree.Classes() {
				out[i][classIndex(cls, f.classes)] += probas[i][k]
			}
		}
	}
	for i := range out {
		for k := range out[i] {
			out[i][k] /= float64(len(f.Trees))
		}
	}
	return out
}
