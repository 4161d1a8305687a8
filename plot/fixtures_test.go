package plot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/linear"
	"github.com/YuminosukeSato/diagplot/sklearn/ensemble"
	"github.com/YuminosukeSato/diagplot/sklearn/linear_model"
	"github.com/YuminosukeSato/diagplot/sklearn/svm"
	"github.com/YuminosukeSato/diagplot/sklearn/tree"
)

// fixture is a fitted model together with the inputs its family needs.
type fixture struct {
	name   string
	handle any
	family model.Family
	opts   []Option
}

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

func fittedLinear(t *testing.T) *linear.LinearRegression {
	t.Helper()
	X, y, _ := twoVariable(30)
	lr := linear.NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))
	return lr
}

func fittedLogistic(t *testing.T) *linear_model.LogisticRegression {
	t.Helper()
	x := []float64{0.5, 1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0, 4.5, 5.0, 5.5, 6.0}
	labels := []float64{0, 0, 0, 1, 0, 0, 1, 0, 1, 1, 1, 1}
	lr := linear_model.NewLogisticRegression()
	require.NoError(t, lr.Fit(mat.NewDense(len(x), 1, x), mat.NewDense(len(labels), 1, labels)))
	return lr
}

// blobs are two separable clusters labelled -1 and 1.
func blobs() (*mat.Dense, []float64) {
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
	return X, []float64{-1, -1, -1, -1, 1, 1, 1, 1}
}

func fittedSVC(t *testing.T) (*svm.LinearSVC, *mat.Dense, []float64) {
	t.Helper()
	X, y := blobs()
	svc := svm.NewLinearSVC(svm.WithC(10))
	require.NoError(t, svc.Fit(X, mat.NewDense(len(y), 1, y)))
	return svc, X, y
}

func fittedForest(t *testing.T) (*ensemble.RandomForestRegressor, *mat.Dense, []float64) {
	t.Helper()
	X, y, yv := twoVariable(40)
	rf := ensemble.NewRandomForestRegressor(
		ensemble.WithNEstimators(10),
		ensemble.WithMaxDepth(4),
		ensemble.WithRandomState(7),
	)
	require.NoError(t, rf.Fit(X, y))
	return rf, X, yv
}

// mixedModel mimics a fitted mixed-effects model with fixed diagnostics.
type mixedModel struct{}

func (mixedModel) Family() model.Family { return model.FamilyMixedEffects }

func (mixedModel) Predict(X mat.Matrix) (mat.Matrix, error) {
	n, _ := X.Dims()
	return mat.NewDense(n, 1, nil), nil
}

func (mixedModel) FittedValues() ([]float64, error) {
	return []float64{1.0, 1.4, 2.1, 2.9, 3.2, 4.1, 4.8, 5.5}, nil
}

func (mixedModel) ResidualValues() ([]float64, error) {
	return []float64{0.2, -0.3, 0.1, 0.4, -0.5, 0.05, -0.1, 0.15}, nil
}

func (mixedModel) StandardizedResiduals() ([]float64, error) {
	return []float64{0.6, -0.9, 0.3, 1.2, -1.6, 0.1, -0.3, 0.5}, nil
}

func (mixedModel) Leverage() ([]float64, error) {
	return []float64{0.45, 0.30, 0.25, 0.35, 0.40, 0.30, 0.45, 0.50}, nil
}

func (mixedModel) CooksDistance() ([]float64, error) {
	return []float64{0.1, 0.12, 0.01, 0.26, 0.57, 0.0, 0.03, 0.08}, nil
}

func fixtures(t *testing.T) []fixture {
	t.Helper()
	X, y, yv := twoVariable(40)
	dt := tree.NewDecisionTreeRegressor(tree.WithMaxDepth(3))
	require.NoError(t, dt.Fit(X, y))

	rf, rfX, rfY := fittedForest(t)
	svc, svcX, svcY := fittedSVC(t)

	return []fixture{
		{name: "linear", handle: fittedLinear(t), family: model.FamilyLinear},
		{name: "glm", handle: fittedLogistic(t), family: model.FamilyGeneralizedLinear},
		{name: "mixed", handle: mixedModel{}, family: model.FamilyMixedEffects},
		{
			name: "random_forest", handle: rf, family: model.FamilyRandomForest,
			opts: []Option{WithFeatures(rfX), WithResponse(rfY)},
		},
		{
			name: "decision_tree", handle: dt, family: model.FamilyDecisionTree,
			opts: []Option{WithFeatures(X), WithResponse(yv)},
		},
		{
			name: "support_vector", handle: svc, family: model.FamilySupportVector,
			opts: []Option{WithFeatures(svcX), WithResponse(svcY)},
		},
	}
}

// quiet is the base option set of the tests: no progress lines and small
// grids for the partial dependence and decision boundary kinds.
func quiet(opts ...Option) []Option {
	base := []Option{
		WithVerbose(false),
		WithRenderOptions(map[string]any{"grid_resolution": 20}),
	}
	return append(base, opts...)
}
