// Package tree implements CART decision trees for classification and regression.
package tree

import (
	"fmt"
	"math"
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Params holds the growth constraints shared by classifiers, regressors and
// the trees of a random forest.
type Params struct {
	Criterion       string // "gini", "entropy" or "squared_error"
	MaxDepth        int    // <= 0 means unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // <= 0 means all features
}

func (p Params) validate(regression bool) error {
	switch p.Criterion {
	case "gini", "entropy":
		if regression {
			return fmt.Errorf("criterion %q is for classification", p.Criterion)
		}
	case "squared_error":
		if !regression {
			return fmt.Errorf("criterion %q is for regression", p.Criterion)
		}
	default:
		return fmt.Errorf("unknown criterion %q", p.Criterion)
	}
	if p.MinSamplesSplit < 2 {
		return fmt.Errorf("min_samples_split must be >= 2, got %d", p.MinSamplesSplit)
	}
	if p.MinSamplesLeaf < 1 {
		return fmt.Errorf("min_samples_leaf must be >= 1, got %d", p.MinSamplesLeaf)
	}
	return nil
}

type node struct {
	feature     int // -1 for leaves
	threshold   float64
	left, right int
	value       []float64 // class proportions, or the mean target for regression
	nSamples    int
	impurity    float64
	depth       int
}

// Tree is a fitted binary tree stored as a flat node slice; node 0 is the root.
type Tree struct {
	nodes       []node
	nFeatures   int
	importances []float64
}

// Data is a row-major training set. Y holds class indices for classification
// and targets for regression.
type Data struct {
	X []float64
	N int
	P int
	Y []float64
}

// NewData copies X and y into row-major form.
func NewData(X mat.Matrix, y []float64) *Data {
	n, p := X.Dims()
	d := &Data{X: make([]float64, n*p), N: n, P: p, Y: y}
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			d.X[i*p+j] = X.At(i, j)
		}
	}
	return d
}

func (d *Data) at(i, j int) float64 { return d.X[i*d.P+j] }

type builder struct {
	params   Params
	nClasses int // 0 for regression
	rng      *rand.Rand
	data     *Data
	tree     *Tree
}

// Grow fits a tree on the given rows of d. Rows may repeat (bootstrap samples).
// rng is only consulted when MaxFeatures selects a feature subset.
func Grow(d *Data, rows []int, nClasses int, params Params, rng *rand.Rand) (*Tree, error) {
	if err := params.validate(nClasses == 0); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot grow a tree on zero rows")
	}
	b := &builder{
		params:   params,
		nClasses: nClasses,
		rng:      rng,
		data:     d,
		tree:     &Tree{nFeatures: d.P, importances: make([]float64, d.P)},
	}
	b.grow(slices.Clone(rows), 0)

	total := 0.0
	for _, v := range b.tree.importances {
		total += v
	}
	if total > 0 {
		for j := range b.tree.importances {
			b.tree.importances[j] /= total
		}
	}
	return b.tree, nil
}

func (b *builder) grow(rows []int, depth int) int {
	value, imp := b.summarize(rows)
	id := len(b.tree.nodes)
	b.tree.nodes = append(b.tree.nodes, node{
		feature:  -1,
		value:    value,
		nSamples: len(rows),
		impurity: imp,
		depth:    depth,
	})

	p := b.params
	if imp <= 1e-12 || len(rows) < p.MinSamplesSplit || len(rows) < 2*p.MinSamplesLeaf ||
		(p.MaxDepth > 0 && depth >= p.MaxDepth) {
		return id
	}

	feature, threshold, gain, ok := b.bestSplit(rows, imp)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range rows {
		if b.data.at(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	b.tree.importances[feature] += gain * float64(len(rows))

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	n := &b.tree.nodes[id]
	n.feature = feature
	n.threshold = threshold
	n.left = l
	n.right = r
	return id
}

func (b *builder) candidateFeatures() []int {
	p := b.data.P
	if b.params.MaxFeatures <= 0 || b.params.MaxFeatures >= p || b.rng == nil {
		feats := make([]int, p)
		for j := range feats {
			feats[j] = j
		}
		return feats
	}
	feats := b.rng.Perm(p)[:b.params.MaxFeatures]
	slices.Sort(feats)
	return feats
}

// bestSplit sweeps the sorted values of every candidate feature. Splits with
// zero gain are accepted so impure nodes keep splitting while constraints allow.
func (b *builder) bestSplit(rows []int, parentImp float64) (feature int, threshold, gain float64, ok bool) {
	n := len(rows)
	minLeaf := b.params.MinSamplesLeaf
	bestGain := -1.0
	sorted := slices.Clone(rows)

	for _, j := range b.candidateFeatures() {
		slices.SortStableFunc(sorted, func(a, c int) int {
			va, vc := b.data.at(a, j), b.data.at(c, j)
			switch {
			case va < vc:
				return -1
			case va > vc:
				return 1
			}
			return 0
		})

		acc := b.newAccumulator(sorted)
		for k := 0; k < n-1; k++ {
			acc.move(b.data.Y[sorted[k]])
			nl := k + 1
			nr := n - nl
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			v, next := b.data.at(sorted[k], j), b.data.at(sorted[k+1], j)
			if v == next {
				continue
			}
			il, ir := acc.impurities()
			g := parentImp - (float64(nl)*il+float64(nr)*ir)/float64(n)
			if g > bestGain+1e-12 {
				bestGain = g
				feature = j
				threshold = (v + next) / 2
				ok = true
			}
		}
	}
	if ok && bestGain < 0 {
		bestGain = 0
	}
	return feature, threshold, bestGain, ok
}

func (b *builder) summarize(rows []int) ([]float64, float64) {
	if b.nClasses > 0 {
		counts := make([]float64, b.nClasses)
		for _, i := range rows {
			counts[int(b.data.Y[i])]++
		}
		for c := range counts {
			counts[c] /= float64(len(rows))
		}
		return counts, classImpurity(b.params.Criterion, counts)
	}
	var sum, sumSq float64
	for _, i := range rows {
		y := b.data.Y[i]
		sum += y
		sumSq += y * y
	}
	n := float64(len(rows))
	mean := sum / n
	return []float64{mean}, math.Max(sumSq/n-mean*mean, 0)
}

func classImpurity(criterion string, probs []float64) float64 {
	switch criterion {
	case "entropy":
		h := 0.0
		for _, p := range probs {
			if p > 0 {
				h -= p * math.Log2(p)
			}
		}
		return h
	default:
		g := 1.0
		for _, p := range probs {
			g -= p * p
		}
		return g
	}
}

// accumulator tracks left/right statistics while the split point moves right.
type accumulator struct {
	criterion   string
	nClasses    int
	left, right []float64
	nl, nr      float64
	sumL, sumR  float64
	sqL, sqR    float64
}

func (b *builder) newAccumulator(rows []int) *accumulator {
	a := &accumulator{criterion: b.params.Criterion, nClasses: b.nClasses, nr: float64(len(rows))}
	if b.nClasses > 0 {
		a.left = make([]float64, b.nClasses)
		a.right = make([]float64, b.nClasses)
	}
	for _, i := range rows {
		y := b.data.Y[i]
		if b.nClasses > 0 {
			a.right[int(y)]++
		} else {
			a.sumR += y
			a.sqR += y * y
		}
	}
	return a
}

func (a *accumulator) move(y float64) {
	a.nl++
	a.nr--
	if a.nClasses > 0 {
		a.left[int(y)]++
		a.right[int(y)]--
		return
	}
	a.sumL += y
	a.sqL += y * y
	a.sumR -= y
	a.sqR -= y * y
}

func (a *accumulator) impurities() (float64, float64) {
	if a.nClasses > 0 {
		pl := make([]float64, a.nClasses)
		pr := make([]float64, a.nClasses)
		for c := range pl {
			pl[c] = a.left[c] / a.nl
			pr[c] = a.right[c] / a.nr
		}
		return classImpurity(a.criterion, pl), classImpurity(a.criterion, pr)
	}
	ml := a.sumL / a.nl
	mr := a.sumR / a.nr
	return math.Max(a.sqL/a.nl-ml*ml, 0), math.Max(a.sqR/a.nr-mr*mr, 0)
}

// Leaf returns the value stored at the leaf reached by row x.
func (t *Tree) Leaf(x []float64) []float64 {
	i := 0
	for t.nodes[i].feature >= 0 {
		n := t.nodes[i]
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
	return t.nodes[i].value
}

// Depth returns the depth of the deepest leaf; a single leaf has depth 0.
func (t *Tree) Depth() int {
	d := 0
	for _, n := range t.nodes {
		if n.feature < 0 && n.depth > d {
			d = n.depth
		}
	}
	return d
}

// NLeaves returns the number of leaves.
func (t *Tree) NLeaves() int {
	c := 0
	for _, n := range t.nodes {
		if n.feature < 0 {
			c++
		}
	}
	return c
}

// Importances returns impurity-decrease importances normalized to sum to 1.
func (t *Tree) Importances() []float64 { return slices.Clone(t.importances) }

// NFeatures returns the number of features seen while growing.
func (t *Tree) NFeatures() int { return t.nFeatures }

func row(X mat.Matrix, i int, buf []float64) []float64 {
	for j := range buf {
		buf[j] = X.At(i, j)
	}
	return buf
}
