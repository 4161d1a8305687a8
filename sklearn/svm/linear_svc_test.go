package svm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

func blobs() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(8, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
		4, 4,
		4, 5,
		5, 4,
		5, 5,
	})
	y := mat.NewDense(8, 1, []float64{-1, -1, -1, -1, 1, 1, 1, 1})
	return X, y
}

func TestLinearSVC_Binary(t *testing.T) {
	X, y := blobs()
	svc := NewLinearSVC(WithC(10))
	require.NoError(t, svc.Fit(X, y))
	assert.Equal(t, model.FamilySupportVector, svc.Family())
	assert.Equal(t, []int{-1, 1}, svc.Classes())

	acc, err := svc.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)

	scores, err := svc.DecisionFunction(mat.NewDense(2, 2, []float64{0, 0, 5, 5}))
	require.NoError(t, err)
	_, k := scores.Dims()
	assert.Equal(t, 1, k)
	assert.Less(t, scores.At(0, 0), 0.0)
	assert.Greater(t, scores.At(1, 0), 0.0)
}

func TestLinearSVC_Standardize(t *testing.T) {
	X, y := blobs()
	svc := NewLinearSVC(WithStandardize(true))
	require.NoError(t, svc.Fit(X, y))

	pred, err := svc.Predict(mat.NewDense(2, 2, []float64{0.5, 0.5, 4.5, 4.5}))
	require.NoError(t, err)
	assert.Equal(t, -1.0, pred.At(0, 0))
	assert.Equal(t, 1.0, pred.At(1, 0))
}

func TestLinearSVC_Multiclass(t *testing.T) {
	X := mat.NewDense(9, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		10, 0,
		10, 1,
		11, 0,
		0, 10,
		1, 10,
		0, 11,
	})
	y := mat.NewDense(9, 1, []float64{0, 0, 0, 1, 1, 1, 2, 2, 2})
	svc := NewLinearSVC(WithC(10))
	require.NoError(t, svc.Fit(X, y))

	scores, err := svc.DecisionFunction(X)
	require.NoError(t, err)
	_, k := scores.Dims()
	assert.Equal(t, 3, k)

	acc, err := svc.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)
}

func TestLinearSVC_Errors(t *testing.T) {
	svc := NewLinearSVC()
	_, err := svc.Predict(mat.NewDense(1, 2, []float64{0, 0}))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	X := mat.NewDense(2, 1, []float64{1, 2})
	assert.Error(t, svc.Fit(X, mat.NewDense(2, 1, []float64{1, 1})))
	assert.Error(t, NewLinearSVC(WithC(0)).Fit(X, mat.NewDense(2, 1, []float64{0, 1})))
}
