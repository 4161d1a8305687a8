package tree

import (
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/metrics"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

// DecisionTreeClassifier is a CART classifier.
type DecisionTreeClassifier struct {
	config
	state *model.StateManager

	classes_  []int
	nClasses_ int
	tree_     *Tree
}

// NewDecisionTreeClassifier creates a classifier; the default criterion is "gini".
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{config: defaultConfig("gini"), state: model.NewStateManager()}
	for _, opt := range opts {
		opt(&dt.config)
	}
	return dt
}

// Family returns the decision-tree family.
func (dt *DecisionTreeClassifier) Family() model.Family { return model.FamilyDecisionTree }

// Fit grows the tree on X and integer class labels y.
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	classes, idx, err := EncodeLabels("DecisionTreeClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	dt.state.Reset()
	tree, err := Grow(NewData(X, idx), allRows(len(idx)), len(classes), dt.Params, newRand(dt.randomState))
	if err != nil {
		return errors.NewValueError("DecisionTreeClassifier.Fit", err.Error())
	}
	dt.classes_ = classes
	dt.nClasses_ = len(classes)
	dt.tree_ = tree
	n, p := X.Dims()
	dt.state.SetFitted(p, n)
	return nil
}

// PredictProba returns the class proportions of the leaf reached by each row.
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.check("PredictProba", X); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	out := mat.NewDense(r, dt.nClasses_, nil)
	buf := make([]float64, c)
	for i := 0; i < r; i++ {
		out.SetRow(i, dt.tree_.Leaf(row(X, i, buf)))
	}
	return out, nil
}

// Predict returns the majority class of the leaf reached by each row.
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := dt.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return ArgmaxLabels(proba, dt.classes_), nil
}

// Score returns the mean accuracy on X, y.
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	r, _ := y.Dims()
	return metrics.Accuracy(mat.NewVecDense(r, metrics.Column(y, 0)), mat.NewVecDense(r, metrics.Column(pred, 0)))
}

// Classes returns the class labels in ascending order.
func (dt *DecisionTreeClassifier) Classes() []int { return slices.Clone(dt.classes_) }

// GetFeatureImportances returns normalized impurity-decrease importances.
func (dt *DecisionTreeClassifier) GetFeatureImportances() []float64 {
	if dt.tree_ == nil {
		return nil
	}
	return dt.tree_.Importances()
}

// GetDepth returns the depth of the fitted tree.
func (dt *DecisionTreeClassifier) GetDepth() int {
	if dt.tree_ == nil {
		return 0
	}
	return dt.tree_.Depth()
}

// GetNLeaves returns the number of leaves of the fitted tree.
func (dt *DecisionTreeClassifier) GetNLeaves() int {
	if dt.tree_ == nil {
		return 0
	}
	return dt.tree_.NLeaves()
}

func (dt *DecisionTreeClassifier) check(method string, X mat.Matrix) error {
	if err := dt.state.RequireFitted("DecisionTreeClassifier", method); err != nil {
		return err
	}
	return dt.state.RequireFeatures("DecisionTreeClassifier."+method, X)
}

// EncodeLabels maps integer labels in y to class indices 0..k-1.
// It returns the sorted labels and the per-row index.
func EncodeLabels(op string, X, y mat.Matrix) ([]int, []float64, error) {
	n, p := X.Dims()
	ry, cy := y.Dims()
	if n == 0 || p == 0 {
		return nil, nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if ry != n {
		return nil, nil, errors.NewDimensionError(op, n, ry, 0)
	}
	if cy != 1 {
		return nil, nil, errors.NewValueError(op, "y must be a column vector")
	}
	seen := map[int]struct{}{}
	var classes []int
	for i := 0; i < n; i++ {
		label := int(y.At(i, 0))
		if _, ok := seen[label]; !ok {
			seen[label] = struct{}{}
			classes = append(classes, label)
		}
	}
	slices.Sort(classes)
	idx := make([]float64, n)
	for i := 0; i < n; i++ {
		k, _ := slices.BinarySearch(classes, int(y.At(i, 0)))
		idx[i] = float64(k)
	}
	return classes, idx, nil
}

// ArgmaxLabels returns an n×1 matrix with the label of the largest column per row.
func ArgmaxLabels(proba mat.Matrix, classes []int) *mat.Dense {
	r, c := proba.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		best := 0
		for j := 1; j < c; j++ {
			if proba.At(i, j) > proba.At(i, best) {
				best = j
			}
		}
		out.Set(i, 0, float64(classes[best]))
	}
	return out
}

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func newRand(seed int64) *rand.Rand {
	if seed < 0 {
		return rand.New(rand.NewSource(rand.Int63()))
	}
	return rand.New(rand.NewSource(seed))
}
