package ensemble

import (
	"context"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/metrics"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
	"github.com/YuminosukeSato/diagplot/sklearn/tree"
)

// RandomForestClassifier soft-votes the leaf class proportions of bagged trees.
type RandomForestClassifier struct {
	forest
	classes []int
}

// NewRandomForestClassifier creates a classifier with 100 gini trees by default.
func NewRandomForestClassifier(opts ...Option) *RandomForestClassifier {
	rf := &RandomForestClassifier{forest: newForest("gini")}
	for _, opt := range opts {
		opt(&rf.forest)
	}
	return rf
}

// Fit grows the forest on integer class labels.
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) error {
	return rf.FitContext(context.Background(), X, y)
}

// FitContext grows the forest; cancelling ctx stops scheduling new trees.
func (rf *RandomForestClassifier) FitContext(ctx context.Context, X, y mat.Matrix) error {
	classes, idx, err := tree.EncodeLabels("RandomForestClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	rf.state.Reset()
	if err := rf.grow(ctx, tree.NewData(X, idx), len(classes)); err != nil {
		return errors.Wrap(err, "RandomForestClassifier.Fit")
	}
	rf.classes = classes
	return nil
}

// PredictProba returns the mean class proportions over all trees.
func (rf *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := rf.state.RequireFitted("RandomForestClassifier", "PredictProba"); err != nil {
		return nil, err
	}
	if err := rf.state.RequireFeatures("RandomForestClassifier.PredictProba", X); err != nil {
		return nil, err
	}
	return rf.average(X, len(rf.classes)), nil
}

// Predict returns the class with the highest mean proportion.
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return tree.ArgmaxLabels(proba, rf.classes), nil
}

// Classes returns the class labels in ascending order.
func (rf *RandomForestClassifier) Classes() []int { return slices.Clone(rf.classes) }

// Score returns the mean accuracy on X, y.
func (rf *RandomForestClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	r, _ := y.Dims()
	return metrics.Accuracy(mat.NewVecDense(r, metrics.Column(y, 0)), mat.NewVecDense(r, metrics.Column(pred, 0)))
}
