package classifier

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// ---------------------------
// Types & options
// ---------------------------

// DecisionTree is a CART-style binary-split classifier.
// Missing feature values are NaN; at every split they are sent to the side
// that gives the larger impurity decrease.
type DecisionTree struct {
	MaxDepth            int     // maximum depth (root depth = 0). 0 => no limit
	MinSamplesSplit     int     // minimum samples to attempt a split
	MinSamplesLeaf      int     // minimum samples required in each leaf
	Criterion           string  // "gini" (default) or "entropy"
	MaxFeatures         int     // 0 => all features, >0 => features sampled per split
	MinImpurityDecrease float64 // minimal impurity decrease to accept a split
	Seed                int64   // seed for feature subsampling

	root    *node
	classes []int // sorted unique class labels (order used by probabilities)
}

type node struct {
	isLeaf    bool
	feature   int
	threshold float64 // numeric: x <= threshold => left
	isCat     bool    // categorical equality split: x == threshold => left
	nanLeft   bool    // side taken by missing values
	left      *node
	right     *node

	n      int
	probas []float64 // aligned with tree.classes
}

// TreeOption configures a DecisionTree.
type TreeOption func(*DecisionTree)

func WithMaxDepth(d int) TreeOption        { return func(t *DecisionTree) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) TreeOption { return func(t *DecisionTree) { t.MinSamplesSplit = n } }
func WithMinSamplesLeaf(n int) TreeOption  { return func(t *DecisionTree) { t.MinSamplesLeaf = n } }
func WithCriterion(c string) TreeOption    { return func(t *DecisionTree) { t.Criterion = c } }
func WithMaxFeatures(k int) TreeOption     { return func(t *DecisionTree) { t.MaxFeatures = k } }
func WithSeed(seed int64) TreeOption       { return func(t *DecisionTree) { t.Seed = seed } }

// NewDecisionTree returns a tree with CART defaults.
func NewDecisionTree(opts ...TreeOption) *DecisionTree {
	t := &DecisionTree{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       "gini",
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// ---------------------------
// Public API: Fit / Predict / PredictProba
// ---------------------------

// Fit trains the tree on every row of X.
func (t *DecisionTree) Fit(X [][]float64, y []int) error {
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	return t.FitIndices(X, y, idx)
}

// FitIndices trains the tree on the rows of X listed in idx. Indices may
// repeat (bootstrap samples).
func (t *DecisionTree) FitIndices(X [][]float64, y []int, idx []int) error {
	if len(X) == 0 || len(idx) == 0 {
		return errors.New("dtree: empty X")
	}
	if len(y) != len(X) {
		return errors.New("dtree: X and y length mismatch")
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return errors.New("dtree: inconsistent number of features in X rows")
		}
	}

	t.classes = uniqueClasses(y, idx)
	rnd := rand.New(rand.NewSource(t.Seed))
	t.root = t.buildNode(X, y, idx, 0, p, rnd)
	return nil
}

// Classes returns the class labels in probability order.
func (t *DecisionTree) Classes() []int { return t.classes }

// Predict returns the predicted class of each row. Ties go to the lowest class.
func (t *DecisionTree) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range X {
		out[i] = t.classes[argmaxFloat(t.predictProbaSingle(X[i]))]
	}
	return out
}

// PredictProba returns the per-class probability vectors for rows in X.
func (t *DecisionTree) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = t.predictProbaSingle(X[i])
	}
	return out
}

// Depth returns the depth of the fitted tree.
func (t *DecisionTree) Depth() int { return depth(t.root) }

func depth(n *node) int {
	if n == nil || n.isLeaf {
		return 0
	}
	return 1 + max(depth(n.left), depth(n.right))
}

// ---------------------------
// Internal builders & helpers
// ---------------------------

type splitResult struct {
	gain      float64
	feature   int
	threshold float64
	isCat     bool
	nanLeft   bool
	leftIdx   []int
	rightIdx  []int
}

type pair struct {
	v float64
	i int
}

func (t *DecisionTree) impurity(counts []int) float64 {
	if t.Criterion == "entropy" {
		return entropyFromCounts(counts)
	}
	return giniFromCounts(counts)
}

func (t *DecisionTree) leaf(n *node, counts []int) *node {
	n.isLeaf = true
	n.probas = countsToProbas(counts)
	return n
}

func (t *DecisionTree) buildNode(X [][]float64, y []int, idx []int, depth, p int, rnd *rand.Rand) *node {
	n := &node{n: len(idx)}
	counts := t.countsFromIndices(y, idx)

	if isPure(counts) || (t.MinSamplesSplit > 0 && len(idx) < t.MinSamplesSplit) {
		return t.leaf(n, counts)
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		return t.leaf(n, counts)
	}

	// Features to try, in a seeded order; the first best one wins ties.
	featIndices := make([]int, p)
	for j := range featIndices {
		featIndices[j] = j
	}
	if t.MaxFeatures > 0 && t.MaxFeatures < p {
		rnd.Shuffle(p, func(i, j int) { featIndices[i], featIndices[j] = featIndices[j], featIndices[i] })
		featIndices = featIndices[:t.MaxFeatures]
		sort.Ints(featIndices)
	}

	parentImpurity := t.impurity(counts)
	best := splitResult{feature: -1}
	for _, f := range featIndices {
		r := t.findBestSplitForFeature(X, y, idx, f, parentImpurity)
		if r.feature >= 0 && r.gain > best.gain {
			best = r
		}
	}

	if best.feature == -1 || best.gain <= t.MinImpurityDecrease {
		return t.leaf(n, counts)
	}

	n.feature = best.feature
	n.threshold = best.threshold
	n.isCat = best.isCat
	n.nanLeft = best.nanLeft
	n.left = t.buildNode(X, y, best.leftIdx, depth+1, p, rnd)
	n.right = t.buildNode(X, y, best.rightIdx, depth+1, p, rnd)
	return n
}

// findBestSplitForFeature scans equality splits (for small integer-valued
// features) and threshold splits, trying missing values on either side.
func (t *DecisionTree) findBestSplitForFeature(X [][]float64, y []int, idx []int, f int, parentImpurity float64) splitResult {
	result := splitResult{feature: -1}

	var nans []int
	valid := make([]pair, 0, len(idx))
	for _, ii := range idx {
		if v := X[ii][f]; math.IsNaN(v) {
			nans = append(nans, ii)
		} else {
			valid = append(valid, pair{v, ii})
		}
	}
	if len(valid) == 0 {
		return result
	}

	consider := func(left, right []int, threshold float64, isCat bool) {
		for _, nanLeft := range []bool{true, false} {
			l, r := left, right
			if len(nans) > 0 {
				if nanLeft {
					l = append(append([]int(nil), left...), nans...)
				} else {
					r = append(append([]int(nil), right...), nans...)
				}
			}
			if len(l) < t.MinSamplesLeaf || len(r) < t.MinSamplesLeaf || len(l) == 0 || len(r) == 0 {
				continue
			}
			weighted := (float64(len(l))*t.impurity(t.countsFromIndices(y, l)) +
				float64(len(r))*t.impurity(t.countsFromIndices(y, r))) / float64(len(idx))
			if gain := parentImpurity - weighted; gain > result.gain {
				result = splitResult{gain: gain, feature: f, threshold: threshold, isCat: isCat,
					nanLeft: nanLeft, leftIdx: l, rightIdx: r}
			}
			if len(nans) == 0 {
				return
			}
		}
	}

	uniqueVals := uniqueValuesFromPairs(valid)
	if len(uniqueVals) <= 30 && allIntLike(uniqueVals) && len(uniqueVals) > 2 {
		for _, uv := range uniqueVals {
			var left, right []int
			for _, pv := range valid {
				if pv.v == uv {
					left = append(left, pv.i)
				} else {
					right = append(right, pv.i)
				}
			}
			consider(left, right, uv, true)
		}
	}

	sort.SliceStable(valid, func(a, b int) bool { return valid[a].v < valid[b].v })
	for s := 1; s < len(valid); s++ {
		if valid[s].v == valid[s-1].v {
			continue
		}
		thr := (valid[s-1].v + valid[s].v) / 2.0
		consider(indicesFromPairs(valid[:s]), indicesFromPairs(valid[s:]), thr, false)
	}
	return result
}

func (t *DecisionTree) predictProbaSingle(x []float64) []float64 {
	if t.root == nil {
		p := make([]float64, len(t.classes))
		for i := range p {
			p[i] = 1.0 / float64(len(p))
		}
		return p
	}
	n := t.root
	for !n.isLeaf {
		val := x[n.feature]
		switch {
		case math.IsNaN(val):
			if n.nanLeft {
				n = n.left
			} else {
				n = n.right
			}
		case n.isCat:
			if val == n.threshold {
				n = n.left
			} else {
				n = n.right
			}
		default:
			if val <= n.threshold {
				n = n.left
			} else {
				n = n.right
			}
		}
	}
	return n.probas
}

func (t *DecisionTree) countsFromIndices(y []int, idx []int) []int {
	counts := make([]int, len(t.classes))
	for _, ii := range idx {
		counts[classIndex(y[ii], t.classes)]++
	}
	return counts
}

// ---------------------------
// Utilities: impurity & misc
// ---------------------------

func uniqueClasses(y []int, idx []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, ii := range idx {
		if !seen[y[ii]] {
			seen[y[ii]] = true
			out = append(out, y[ii])
		}
	}
	sort.Ints(out)
	return out
}

func allIntLike(vals []float64) bool {
	for _, v := range vals {
		if math.IsInf(v, 0) {
			return false
		}
		if _, frac := math.Modf(math.Abs(v)); frac > 1e-9 && frac < 1-1e-9 {
			return false
		}
	}
	return true
}

func uniqueValuesFromPairs(pairs []pair) []float64 {
	m := make(map[float64]struct{})
	out := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		if _, ok := m[p.v]; !ok {
			m[p.v] = struct{}{}
			out = append(out, p.v)
		}
	}
	sort.Float64s(out)
	return out
}

func indicesFromPairs(pairs []pair) []int {
	out := make([]int, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.i)
	}
	return out
}

func giniFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		p := float64(c) / n
		res += p * (1 - p)
	}
	return res
}

func entropyFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		res -= p * math.Log2(p)
	}
	return res
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func countsToProbas(counts []int) []float64 {
	n := 0
	for _, c := range counts {
		n += c
	}
	p := make([]float64, len(counts))
	if n == 0 {
		return p
	}
	for i := range counts {
		p[i] = float64(counts[i]) / float64(n)
	}
	return p
}

// argmaxFloat returns the first index of the largest value.
func argmaxFloat(arr []float64) int {
	best := 0
	for i := 1; i < len(arr); i++ {
		if arr[i] > arr[best] {
			best = i
		}
	}
	return best
}

func classIndex(label int, classes []int) int {
	for i, v := range classes {
		if v == label {
			return i
		}
	}
	return 0
}
