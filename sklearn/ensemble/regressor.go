package ensemble

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/metrics"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
	"github.com/YuminosukeSato/diagplot/sklearn/tree"
)

// RandomForestRegressor averages the predictions of bagged regression trees.
type RandomForestRegressor struct {
	forest
}

// NewRandomForestRegressor creates a regressor with 100 trees by default.
func NewRandomForestRegressor(opts ...Option) *RandomForestRegressor {
	rf := &RandomForestRegressor{forest: newForest("squared_error")}
	for _, opt := range opts {
		opt(&rf.forest)
	}
	return rf
}

// Fit grows the forest.
func (rf *RandomForestRegressor) Fit(X, y mat.Matrix) error {
	return rf.FitContext(context.Background(), X, y)
}

// FitContext grows the forest; cancelling ctx stops scheduling new trees.
func (rf *RandomForestRegressor) FitContext(ctx context.Context, X, y mat.Matrix) error {
	n, p := X.Dims()
	ry, cy := y.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("RandomForestRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != n {
		return errors.NewDimensionError("RandomForestRegressor.Fit", n, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("RandomForestRegressor.Fit", "y must be a column vector")
	}
	rf.state.Reset()
	if err := rf.grow(ctx, tree.NewData(X, metrics.Column(y, 0)), 0); err != nil {
		return errors.Wrap(err, "RandomForestRegressor.Fit")
	}
	return nil
}

// Predict returns the mean tree prediction for each row.
func (rf *RandomForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := rf.state.RequireFitted("RandomForestRegressor", "Predict"); err != nil {
		return nil, err
	}
	if err := rf.state.RequireFeatures("RandomForestRegressor.Predict", X); err != nil {
		return nil, err
	}
	return rf.average(X, 1), nil
}

// Score returns R² on X, y.
func (rf *RandomForestRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	r, _ := y.Dims()
	return metrics.R2Score(mat.NewVecDense(r, metrics.Column(y, 0)), mat.NewVecDense(r, metrics.Column(pred, 0)))
}
