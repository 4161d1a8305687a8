package linear

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

// y = 1 + 2x に交互のノイズを加えたデータ
func noisyLine(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x := float64(i)
		noise := 0.5
		if i%2 == 1 {
			noise = -0.5
		}
		X.Set(i, 0, x)
		y.Set(i, 0, 1+2*x+noise)
	}
	return X, y
}

func TestLinearRegression_Fit(t *testing.T) {
	X, y := noisyLine(20)
	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	assert.Equal(t, model.FamilyLinear, lr.Family())
	assert.InDelta(t, 2.0, lr.GetWeights()[0], 0.05)
	assert.InDelta(t, 1.0, lr.GetIntercept(), 0.5)
	assert.Equal(t, 2, lr.NumParams())

	score, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.99)
}

func TestLinearRegression_NoIntercept(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{2.1, 3.9, 6.2, 7.8})
	lr := NewLinearRegression(WithFitIntercept(false))
	require.NoError(t, lr.Fit(X, y))

	assert.Equal(t, 0.0, lr.GetIntercept())
	assert.Equal(t, 1, lr.NumParams())
	// w = Σxy / Σx²
	assert.InDelta(t, (2.1+7.8+18.6+31.2)/30, lr.GetWeights()[0], 1e-10)
}

func TestLinearRegression_Diagnostics(t *testing.T) {
	X, y := noisyLine(12)
	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	fitted, err := lr.FittedValues()
	require.NoError(t, err)
	resid, err := lr.ResidualValues()
	require.NoError(t, err)
	for i := range fitted {
		assert.InDelta(t, y.At(i, 0), fitted[i]+resid[i], 1e-10)
	}

	// 切片付き OLS の残差和はゼロ
	assert.InDelta(t, 0, floats.Sum(resid), 1e-9)

	lev, err := lr.Leverage()
	require.NoError(t, err)
	assert.InDelta(t, 2.0, floats.Sum(lev), 1e-9)

	scale, err := lr.Scale()
	require.NoError(t, err)
	std, err := lr.StandardizedResiduals()
	require.NoError(t, err)
	cooks, err := lr.CooksDistance()
	require.NoError(t, err)
	for i := range std {
		assert.InDelta(t, resid[i]/math.Sqrt(scale*(1-lev[i])), std[i], 1e-10)
		assert.InDelta(t, std[i]*std[i]*lev[i]/(2*(1-lev[i])), cooks[i], 1e-10)
		assert.GreaterOrEqual(t, cooks[i], 0.0)
	}
}

func TestLinearRegression_Errors(t *testing.T) {
	lr := NewLinearRegression()

	_, err := lr.Predict(mat.NewDense(1, 1, []float64{1}))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	_, err = lr.CooksDistance()
	assert.Error(t, err)

	err = lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(2, 1, []float64{1, 2}))
	assert.Error(t, err)

	// 全てゼロの列があると XᵀX は特異
	Xs := mat.NewDense(4, 2, []float64{1, 0, 2, 0, 3, 0, 4, 0})
	err = lr.Fit(Xs, mat.NewDense(4, 1, []float64{1, 2, 3, 5}))
	assert.True(t, errors.Is(err, errors.ErrSingularMatrix))

	X, y := noisyLine(6)
	require.NoError(t, lr.Fit(X, y))
	_, err = lr.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))
}
