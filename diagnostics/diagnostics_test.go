package diagnostics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/linear"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
	"github.com/YuminosukeSato/diagplot/sklearn/tree"
)

var allStatistics = []Statistic{Fitted, Residuals, StandardizedResiduals, Leverage, CooksDistance}

func twoVariable(n int) (*mat.Dense, *mat.Dense, []float64) {
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x1 := float64(i)
		x2 := float64((i * 7) % 5)
		X.Set(i, 0, x1)
		X.Set(i, 1, x2)
		y[i] = 1 + 0.5*x1 - 2*x2 + 0.3*math.Sin(float64(i))
	}
	return X, mat.NewDense(n, 1, y), y
}

// mixedFake は混合効果モデルの診断アクセサを模した固定値のモデル
type mixedFake struct{}

func (mixedFake) Family() model.Family { return model.FamilyMixedEffects }
func (mixedFake) Predict(X mat.Matrix) (mat.Matrix, error) {
	n, _ := X.Dims()
	return mat.NewDense(n, 1, nil), nil
}
func (mixedFake) FittedValues() ([]float64, error)          { return []float64{1, 2, 3}, nil }
func (mixedFake) ResidualValues() ([]float64, error)        { return []float64{0.1, -0.2, 0.1}, nil }
func (mixedFake) StandardizedResiduals() ([]float64, error) { return []float64{0.5, -1, 0.5}, nil }
func (mixedFake) Leverage() ([]float64, error)              { return []float64{0.3, 0.4, 0.3}, nil }
func (mixedFake) CooksDistance() ([]float64, error)         { return []float64{0.01, 0.2, 0.01}, nil }

// linearWithoutInfluence は線形ファミリーを名乗るが診断アクセサを持たない
type linearWithoutInfluence struct{}

func (linearWithoutInfluence) Family() model.Family { return model.FamilyLinear }
func (linearWithoutInfluence) Predict(X mat.Matrix) (mat.Matrix, error) {
	return nil, nil
}

type familyOnly struct{}

func (familyOnly) Family() model.Family { return model.FamilyRandomForest }

type unknownFamily struct{ linearWithoutInfluence }

func (unknownFamily) Family() model.Family { return model.FamilyUnknown }

func TestFromHandle_Unsupported(t *testing.T) {
	handles := map[string]any{
		"nil":            nil,
		"string":         "lm",
		"no predict":     familyOnly{},
		"no influence":   linearWithoutInfluence{},
		"unknown family": unknownFamily{},
	}
	for name, h := range handles {
		t.Run(name, func(t *testing.T) {
			_, err := FromHandle(h)
			require.Error(t, err)
			var target *errors.UnsupportedModelTypeError
			require.True(t, errors.As(err, &target))
			assert.Len(t, target.Allowed, 6)
			assert.Contains(t, err.Error(), "random_forest")
		})
	}
}

func TestCompute_Linear(t *testing.T) {
	X, y, _ := twoVariable(30)
	lr := linear.NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	m, err := FromHandle(lr)
	require.NoError(t, err)
	assert.Equal(t, model.FamilyLinear, m.Family())
	for _, s := range allStatistics {
		assert.True(t, m.Supports(s), s.String())
	}

	f, err := Compute(m, allStatistics, Inputs{})
	require.NoError(t, err)
	assert.Equal(t, 30, f.Len())
	assert.Equal(t, "1", f.IDs[0])
	assert.Equal(t, "30", f.IDs[29])
	assert.Equal(t, 3, f.Params())

	cooks, err := f.Values(CooksDistance)
	require.NoError(t, err)
	want, err := lr.CooksDistance()
	require.NoError(t, err)
	assert.Equal(t, want, cooks)

	fitted, _ := f.Values(Fitted)
	resid, _ := f.Values(Residuals)
	for i := range fitted {
		assert.InDelta(t, y.At(i, 0), fitted[i]+resid[i], 1e-9)
	}
}

func TestCompute_OnlyRequested(t *testing.T) {
	X, y, _ := twoVariable(20)
	lr := linear.NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))
	m, err := FromHandle(lr)
	require.NoError(t, err)

	f, err := Compute(m, []Statistic{CooksDistance}, Inputs{})
	require.NoError(t, err)
	assert.True(t, f.Available(CooksDistance))
	assert.False(t, f.Available(Fitted))
	assert.Equal(t, 0, f.Params())
}

func TestCompute_Predictive(t *testing.T) {
	X, y, yv := twoVariable(40)
	dt := tree.NewDecisionTreeRegressor(tree.WithMaxDepth(3))
	require.NoError(t, dt.Fit(X, y))

	m, err := FromHandle(dt)
	require.NoError(t, err)
	assert.Equal(t, model.FamilyDecisionTree, m.Family())
	assert.False(t, m.Supports(Leverage))

	f, err := Compute(m, allStatistics, Inputs{X: X, Y: yv})
	require.NoError(t, err)
	assert.True(t, f.Available(Fitted))
	assert.True(t, f.Available(Residuals))
	for _, s := range []Statistic{StandardizedResiduals, Leverage, CooksDistance} {
		assert.False(t, f.Available(s))
		_, err := f.Values(s)
		assert.True(t, errors.Is(err, errors.ErrStatisticUnavailable), s.String())
	}

	pred, err := dt.Predict(X)
	require.NoError(t, err)
	resid, err := f.Values(Residuals)
	require.NoError(t, err)
	for i := range resid {
		assert.InDelta(t, yv[i]-pred.At(i, 0), resid[i], 1e-12)
	}

	_, err = m.CooksDistance()
	assert.True(t, errors.Is(err, errors.ErrStatisticUnavailable))
}

func TestCompute_PredictiveMissingInputs(t *testing.T) {
	X, y, yv := twoVariable(20)
	dt := tree.NewDecisionTreeRegressor()
	require.NoError(t, dt.Fit(X, y))
	m, err := FromHandle(dt)
	require.NoError(t, err)

	var target *errors.InvalidArgumentError
	_, err = Compute(m, []Statistic{Fitted}, Inputs{Y: yv})
	require.Error(t, err)
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, "features", target.Name)

	_, err = Compute(m, []Statistic{Residuals}, Inputs{X: X})
	require.Error(t, err)
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, "response", target.Name)

	_, err = Compute(m, []Statistic{Residuals}, Inputs{X: X, Y: yv[:5]})
	assert.Error(t, err)
}

func TestCompute_MixedEffects(t *testing.T) {
	m, err := FromHandle(mixedFake{})
	require.NoError(t, err)
	assert.Equal(t, model.FamilyMixedEffects, m.Family())

	f, err := Compute(m, allStatistics, Inputs{Labels: []string{"a", "b", "c"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, f.IDs)
	assert.Equal(t, 1, f.Params())
	lev, err := f.Values(Leverage)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3, 0.4, 0.3}, lev)
}

func TestCompute_NotFitted(t *testing.T) {
	m, err := FromHandle(linear.NewLinearRegression())
	require.NoError(t, err)
	_, err = Compute(m, []Statistic{Fitted}, Inputs{})
	require.Error(t, err)
	var target *errors.NotFittedError
	assert.True(t, errors.As(err, &target))
}

func TestNormalQQ(t *testing.T) {
	q, err := NormalQQ([]float64{2, -1, math.NaN(), 0, -2, 1})
	require.NoError(t, err)

	assert.Equal(t, []float64{-2, -1, 0, 1, 2}, q.Sample)
	assert.Equal(t, []int{4, 1, 3, 5, 0}, q.Index)
	assert.InDelta(t, 0, q.Theoretical[2], 1e-12)
	assert.InDelta(t, -q.Theoretical[0], q.Theoretical[4], 1e-12)
	for i := 1; i < len(q.Theoretical); i++ {
		assert.Greater(t, q.Theoretical[i], q.Theoretical[i-1])
	}
	// (1 - 3/8) / (5 + 1 - 3/4)
	assert.InDelta(t, distuv.UnitNormal.Quantile(0.625/5.25), q.Theoretical[0], 1e-12)

	iqr := distuv.UnitNormal.Quantile(0.75) - distuv.UnitNormal.Quantile(0.25)
	assert.InDelta(t, 3/iqr, q.Slope, 1e-9)
	assert.InDelta(t, 0, q.Intercept, 1e-9)

	_, err = NormalQQ([]float64{1, math.Inf(1)})
	assert.Error(t, err)
}

func TestSmooth(t *testing.T) {
	x := make([]float64, 10)
	y := make([]float64, 10)
	for i := range x {
		x[9-i] = float64(i)
		y[9-i] = float64(i)
	}
	y[4] = 100 // x = 5

	xs, ys := Smooth(x, y, 0.3)
	require.Len(t, xs, 10)
	assert.Equal(t, 0.0, xs[0])
	assert.Equal(t, 9.0, xs[9])
	assert.Equal(t, 6.0, ys[5])
	assert.Equal(t, 0.5, ys[0])

	xs, ys = Smooth([]float64{1, 2}, []float64{1, 2}, 0.5)
	assert.Nil(t, xs)
	assert.Nil(t, ys)
}

func TestExtremes(t *testing.T) {
	values := []float64{1, -5, 3, math.NaN(), 4}
	assert.Equal(t, []int{1, 4}, Extremes(values, 2))
	assert.Equal(t, []int{1, 4, 2, 0}, Extremes(values, 10))
	assert.Empty(t, Extremes(values, 0))
}

func TestStatisticString(t *testing.T) {
	assert.Equal(t, "Cook's distance", CooksDistance.String())
	assert.Equal(t, "unknown statistic", Statistic(42).String())
}

func TestCompute_LabelLengthMismatch(t *testing.T) {
	m, err := FromHandle(mixedFake{})
	require.NoError(t, err)

	_, err = Compute(m, allStatistics, Inputs{Labels: []string{"a", "b"}})
	require.Error(t, err)
	var target *errors.InvalidArgumentError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "labels", target.Name)

	f, err := Compute(m, allStatistics, Inputs{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, f.IDs)
}
