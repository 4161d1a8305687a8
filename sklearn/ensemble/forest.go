// Package ensemble implements bagged ensembles of CART trees.
package ensemble

import (
	"context"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/core/parallel"
	"github.com/YuminosukeSato/diagplot/sklearn/tree"
)

// Option configures a random forest.
type Option func(*forest)

type forest struct {
	state *model.StateManager

	NEstimators int
	Bootstrap   bool
	RandomState int64
	NJobs       int
	Tree        tree.Params

	trees []*tree.Tree
}

func newForest(criterion string) forest {
	return forest{
		state:       model.NewStateManager(),
		NEstimators: 100,
		Bootstrap:   true,
		RandomState: -1,
		Tree: tree.Params{
			Criterion:       criterion,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
		},
	}
}

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) Option { return func(f *forest) { f.NEstimators = n } }

// WithBootstrap toggles sampling rows with replacement for each tree.
func WithBootstrap(b bool) Option { return func(f *forest) { f.Bootstrap = b } }

// WithRandomState seeds the row and feature samplers; tree i uses seed+i.
func WithRandomState(seed int64) Option { return func(f *forest) { f.RandomState = seed } }

// WithNJobs limits the number of trees grown concurrently; 0 uses every CPU.
func WithNJobs(n int) Option { return func(f *forest) { f.NJobs = n } }

// WithMaxDepth limits the depth of every tree.
func WithMaxDepth(d int) Option { return func(f *forest) { f.Tree.MaxDepth = d } }

// WithMinSamplesLeaf sets the minimum leaf size of every tree.
func WithMinSamplesLeaf(n int) Option { return func(f *forest) { f.Tree.MinSamplesLeaf = n } }

// WithMaxFeatures sets the number of features drawn at each split.
func WithMaxFeatures(n int) Option { return func(f *forest) { f.Tree.MaxFeatures = n } }

// Family returns the random-forest family.
func (f *forest) Family() model.Family { return model.FamilyRandomForest }

// IsFitted reports whether Fit has completed.
func (f *forest) IsFitted() bool { return f.state.IsFitted() }

// grow fits NEstimators trees concurrently, each on its own bootstrap sample.
func (f *forest) grow(ctx context.Context, d *tree.Data, nClasses int) error {
	if f.NEstimators <= 0 {
		f.NEstimators = 1
	}
	base := f.RandomState
	if base < 0 {
		base = time.Now().UnixNano()
	}
	trees := make([]*tree.Tree, f.NEstimators)
	err := parallel.ForEach(ctx, f.NEstimators, f.NJobs, func(_ context.Context, i int) error {
		rng := rand.New(rand.NewSource(base + int64(i)))
		rows := make([]int, d.N)
		for j := range rows {
			if f.Bootstrap {
				rows[j] = rng.Intn(d.N)
			} else {
				rows[j] = j
			}
		}
		t, err := tree.Grow(d, rows, nClasses, f.Tree, rng)
		if err != nil {
			return err
		}
		trees[i] = t
		return nil
	})
	if err != nil {
		return err
	}
	f.trees = trees
	f.state.SetFitted(d.P, d.N)
	return nil
}

// average returns the mean leaf value over all trees for every row of X.
func (f *forest) average(X mat.Matrix, width int) *mat.Dense {
	r, c := X.Dims()
	out := mat.NewDense(r, width, nil)
	parallel.ParallelizeWithThreshold(r, 256, func(start, end int) {
		buf := make([]float64, c)
		acc := make([]float64, width)
		for i := start; i < end; i++ {
			for j := range buf {
				buf[j] = X.At(i, j)
			}
			for k := range acc {
				acc[k] = 0
			}
			for _, t := range f.trees {
				for k, v := range t.Leaf(buf) {
					acc[k] += v
				}
			}
			for k := range acc {
				out.Set(i, k, acc[k]/float64(len(f.trees)))
			}
		}
	})
	return out
}

// FeatureImportances returns the mean of the per-tree importances.
func (f *forest) FeatureImportances() []float64 {
	if len(f.trees) == 0 {
		return nil
	}
	out := make([]float64, f.trees[0].NFeatures())
	for _, t := range f.trees {
		for j, v := range t.Importances() {
			out[j] += v / float64(len(f.trees))
		}
	}
	return out
}
