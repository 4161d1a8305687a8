// Package model provides the interfaces shared by the estimators and the
// diagnostic plot dispatcher.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// FamilyMember is implemented by every estimator that declares which model
// family it belongs to.
type FamilyMember interface {
	Family() Family
}

// Influencer is the accessor set of families with closed-form diagnostics
// (linear, generalized-linear, mixed-effects). All slices are aligned with the
// training rows.
type Influencer interface {
	// FittedValues returns the fitted response on the training data.
	FittedValues() ([]float64, error)

	// ResidualValues returns the response residuals (deviance residuals for GLMs).
	ResidualValues() ([]float64, error)

	// StandardizedResiduals returns residuals scaled by their estimated standard deviation.
	StandardizedResiduals() ([]float64, error)

	// Leverage returns the diagonal of the hat matrix.
	Leverage() ([]float64, error)

	// CooksDistance returns Cook's distance for each training observation.
	CooksDistance() ([]float64, error)
}

// DecisionFunctioner is implemented by margin classifiers. It returns the
// signed distance to the separating hyperplane for each class.
type DecisionFunctioner interface {
	DecisionFunction(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the coefficient of determination R^2 of the prediction.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}
