package ensemble

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

func sineData(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x0 := float64(i) / float64(n) * 6
		x1 := float64(i % 5)
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		y.Set(i, 0, math.Sin(x0))
	}
	return X, y
}

func TestRandomForestRegressor(t *testing.T) {
	X, y := sineData(120)
	rf := NewRandomForestRegressor(WithNEstimators(20), WithRandomState(7))
	require.NoError(t, rf.Fit(X, y))

	assert.Equal(t, model.FamilyRandomForest, rf.Family())
	score, err := rf.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.9)

	imp := rf.FeatureImportances()
	require.Len(t, imp, 2)
	assert.InDelta(t, 1.0, floats.Sum(imp), 1e-9)
	assert.Greater(t, imp[0], imp[1])
}

func TestRandomForestRegressor_Deterministic(t *testing.T) {
	X, y := sineData(60)
	a := NewRandomForestRegressor(WithNEstimators(5), WithRandomState(3))
	b := NewRandomForestRegressor(WithNEstimators(5), WithRandomState(3), WithNJobs(1))
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	pa, err := a.Predict(X)
	require.NoError(t, err)
	pb, err := b.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(pa, pb))
}

func TestRandomForestClassifier(t *testing.T) {
	X := mat.NewDense(8, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
		3, 3,
		3, 4,
		4, 3,
		4, 4,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})

	rf := NewRandomForestClassifier(WithNEstimators(15), WithRandomState(1), WithBootstrap(false))
	require.NoError(t, rf.Fit(X, y))
	assert.Equal(t, []int{0, 1}, rf.Classes())

	acc, err := rf.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)

	proba, err := rf.PredictProba(X)
	require.NoError(t, err)
	r, c := proba.Dims()
	for i := 0; i < r; i++ {
		assert.InDelta(t, 1.0, floats.Sum(mat.Row(nil, i, proba)), 1e-12)
	}
	assert.Equal(t, 2, c)
}

func TestRandomForest_Errors(t *testing.T) {
	rf := NewRandomForestRegressor()
	_, err := rf.Predict(mat.NewDense(1, 1, []float64{1}))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	X, y := sineData(10)
	assert.Error(t, rf.FitContext(ctx, X, y))
	assert.False(t, rf.IsFitted())
}
