package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

func vec(v ...float64) *mat.VecDense { return mat.NewVecDense(len(v), v) }

func TestErrorMagnitudes(t *testing.T) {
	tests := []struct {
		name          string
		yTrue, yPred  *mat.VecDense
		mse, rmse, ae float64
	}{
		{name: "exact", yTrue: vec(1, 2, 3), yPred: vec(1, 2, 3)},
		{
			// 残差 ±0.5
			name: "symmetric", yTrue: vec(1, 2, 3, 4), yPred: vec(1.5, 2.5, 2.5, 3.5),
			mse: 0.25, rmse: 0.5, ae: 0.5,
		},
		{
			// 残差 -2, 2, -3
			name: "mixed", yTrue: vec(10, 20, 30), yPred: vec(12, 18, 33),
			mse: 17.0 / 3, rmse: math.Sqrt(17.0 / 3), ae: 7.0 / 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mse, err := MSE(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.mse, mse, 1e-12)

			rmse, err := RMSE(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.rmse, rmse, 1e-12)

			mae, err := MAE(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.ae, mae, 1e-12)
		})
	}
}

func TestErrorMagnitudes_InvalidPairs(t *testing.T) {
	fns := map[string]func(a, b *mat.VecDense) (float64, error){
		"MSE": MSE, "RMSE": RMSE, "MAE": MAE, "R2Score": R2Score,
	}
	for name, fn := range fns {
		t.Run(name, func(t *testing.T) {
			_, err := fn(vec(1, 2, 3), vec(1, 2))
			var de *errors.DimensionError
			require.True(t, errors.As(err, &de))

			_, err = fn(nil, vec(1))
			var ve *errors.ValueError
			assert.True(t, errors.As(err, &ve))

			_, err = fn(vec(1, 2), nil)
			assert.True(t, errors.As(err, &de))
		})
	}
}

func TestMSEMatrix(t *testing.T) {
	yTrue := mat.NewDense(3, 1, []float64{10, 20, 30})
	yPred := mat.NewDense(3, 1, []float64{12, 18, 33})
	got, err := MSEMatrix(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 17.0/3, got, 1e-12)

	_, err = MSEMatrix(mat.NewDense(3, 2, nil), mat.NewDense(3, 2, nil))
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))

	_, err = MSEMatrix(yTrue, mat.NewDense(2, 1, nil))
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))

	_, err = MSEMatrix(&mat.Dense{}, &mat.Dense{})
	assert.Error(t, err)
}

func TestR2Score(t *testing.T) {
	r2, err := R2Score(vec(1, 2, 3, 4), vec(1, 2, 3, 4))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r2, 1e-12)

	// 平均で予測すると 0
	r2, err = R2Score(vec(1, 2, 3, 4), vec(2.5, 2.5, 2.5, 2.5))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, r2, 1e-12)

	r2, err = R2Score(vec(1, 2, 3), vec(3, 2, 1))
	require.NoError(t, err)
	assert.InDelta(t, -3.0, r2, 1e-12)

	_, err = R2Score(vec(5, 5, 5), vec(1, 2, 3))
	assert.Error(t, err)
}

func TestResidualsAndColumn(t *testing.T) {
	r, err := Residuals([]float64{3, 1, 4}, []float64{1, 1, 5})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 0, -1}, r)

	_, err = Residuals([]float64{1}, []float64{1, 2})
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))

	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	assert.Equal(t, []float64{2, 5}, Column(m, 1))
}

func BenchmarkRMSE(b *testing.B) {
	n := 10000
	yTrue := mat.NewVecDense(n, nil)
	yPred := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yTrue.SetVec(i, float64(i))
		yPred.SetVec(i, float64(i)+0.5)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = RMSE(yTrue, yPred)
	}
}
