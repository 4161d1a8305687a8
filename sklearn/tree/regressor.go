package tree

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/metrics"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

// DecisionTreeRegressor is a CART regressor minimizing squared error.
type DecisionTreeRegressor struct {
	config
	state *model.StateManager
	tree_ *Tree
}

// NewDecisionTreeRegressor creates a regressor with the "squared_error" criterion.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	dt := &DecisionTreeRegressor{config: defaultConfig("squared_error"), state: model.NewStateManager()}
	for _, opt := range opts {
		opt(&dt.config)
	}
	return dt
}

// Family returns the decision-tree family.
func (dt *DecisionTreeRegressor) Family() model.Family { return model.FamilyDecisionTree }

// Fit grows the tree on X and the continuous target y.
func (dt *DecisionTreeRegressor) Fit(X, y mat.Matrix) error {
	n, p := X.Dims()
	ry, cy := y.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("DecisionTreeRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != n {
		return errors.NewDimensionError("DecisionTreeRegressor.Fit", n, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("DecisionTreeRegressor.Fit", "y must be a column vector")
	}
	dt.state.Reset()
	tree, err := Grow(NewData(X, metrics.Column(y, 0)), allRows(n), 0, dt.Params, newRand(dt.randomState))
	if err != nil {
		return errors.NewValueError("DecisionTreeRegressor.Fit", err.Error())
	}
	dt.tree_ = tree
	dt.state.SetFitted(p, n)
	return nil
}

// Predict returns the leaf mean for each row.
func (dt *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.state.RequireFitted("DecisionTreeRegressor", "Predict"); err != nil {
		return nil, err
	}
	if err := dt.state.RequireFeatures("DecisionTreeRegressor.Predict", X); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	out := mat.NewDense(r, 1, nil)
	buf := make([]float64, c)
	for i := 0; i < r; i++ {
		out.Set(i, 0, dt.tree_.Leaf(row(X, i, buf))[0])
	}
	return out, nil
}

// Score returns R² on X, y.
func (dt *DecisionTreeRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	r, _ := y.Dims()
	return metrics.R2Score(mat.NewVecDense(r, metrics.Column(y, 0)), mat.NewVecDense(r, metrics.Column(pred, 0)))
}

// GetFeatureImportances returns normalized impurity-decrease importances.
func (dt *DecisionTreeRegressor) GetFeatureImportances() []float64 {
	if dt.tree_ == nil {
		return nil
	}
	return dt.tree_.Importances()
}

// GetDepth returns the depth of the fitted tree.
func (dt *DecisionTreeRegressor) GetDepth() int {
	if dt.tree_ == nil {
		return 0
	}
	return dt.tree_.Depth()
}
