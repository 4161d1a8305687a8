package linear_model

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/metrics"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

// LogisticRegression is a binomial generalized linear model with logit link,
// fitted by iteratively reweighted least squares. Besides prediction it keeps
// the quantities needed for GLM influence diagnostics.
type LogisticRegression struct {
	state *model.StateManager

	// Hyperparameters
	penalty      string  // "l2" or "none"
	C            float64 // Inverse regularization strength
	fitIntercept bool
	maxIter      int
	tol          float64

	// Model parameters
	coef_      []float64
	intercept_ float64
	classes_   []int
	nIter_     int

	// Training diagnostics
	design   *mat.Dense
	eta      []float64
	mu       []float64
	y01      []float64
	weights  []float64
	leverage []float64
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		penalty:      "l2",
		C:            1.0,
		fitIntercept: true,
		maxIter:      100,
		tol:          1e-6,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithLRPenalty sets the regularization type ("l2" or "none")
func WithLRPenalty(penalty string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.penalty = penalty
	}
}

// WithLRC sets the inverse regularization strength
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithLogisticFitIntercept sets whether to fit intercept
func WithLogisticFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRMaxIter sets the maximum number of IRLS iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance on the coefficient update
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// Family returns the generalized-linear family.
func (lr *LogisticRegression) Family() model.Family { return model.FamilyGeneralizedLinear }

// IsFitted reports whether Fit has completed.
func (lr *LogisticRegression) IsFitted() bool { return lr.state.IsFitted() }

// Classes returns the two class labels in ascending order.
func (lr *LogisticRegression) Classes() []int { return slices.Clone(lr.classes_) }

// Coef returns the fitted coefficients without the intercept.
func (lr *LogisticRegression) Coef() []float64 { return slices.Clone(lr.coef_) }

// Intercept returns the fitted intercept.
func (lr *LogisticRegression) Intercept() float64 { return lr.intercept_ }

// NIter returns the number of IRLS iterations used by the last Fit.
func (lr *LogisticRegression) NIter() int { return lr.nIter_ }

// Fit trains the logistic regression model
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("LogisticRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if nSamples != yRows {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("LogisticRegression.Fit", fmt.Sprintf("y must be a column vector: got shape (%d, %d)", yRows, yCols))
	}
	if lr.penalty != "l2" && lr.penalty != "none" {
		return errors.NewValueError("LogisticRegression.Fit", fmt.Sprintf("unsupported penalty %q", lr.penalty))
	}

	lr.state.Reset()
	lr.classes_ = extractClasses(y)
	if len(lr.classes_) != 2 {
		return errors.NewValueError("LogisticRegression.Fit",
			fmt.Sprintf("binomial family needs exactly 2 classes, got %d", len(lr.classes_)))
	}

	lr.y01 = make([]float64, nSamples)
	for i := range lr.y01 {
		if int(y.At(i, 0)) == lr.classes_[1] {
			lr.y01[i] = 1
		}
	}

	lr.design = lr.designMatrix(X)
	beta, err := lr.irls()
	if err != nil {
		return err
	}

	off := 0
	lr.intercept_ = 0
	if lr.fitIntercept {
		lr.intercept_ = beta[0]
		off = 1
	}
	lr.coef_ = slices.Clone(beta[off:])

	ridge := lr.ridge()
	lev, err := metrics.PenalizedHatDiagonal(lr.design, lr.weights, ridge)
	if err != nil {
		return err
	}
	lr.leverage = lev

	lr.state.SetFitted(nFeatures, nSamples)
	return nil
}

func extractClasses(y mat.Matrix) []int {
	rows, _ := y.Dims()
	seen := make(map[int]struct{})
	var classes []int
	for i := 0; i < rows; i++ {
		label := int(y.At(i, 0))
		if _, ok := seen[label]; !ok {
			seen[label] = struct{}{}
			classes = append(classes, label)
		}
	}
	slices.Sort(classes)
	return classes
}

func (lr *LogisticRegression) designMatrix(X mat.Matrix) *mat.Dense {
	r, c := X.Dims()
	if !lr.fitIntercept {
		return mat.DenseCopyOf(X)
	}
	d := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		d.Set(i, 0, 1)
		for j := 0; j < c; j++ {
			d.Set(i, j+1, X.At(i, j))
		}
	}
	return d
}

// ridge returns the diagonal L2 term; the intercept is never penalized.
func (lr *LogisticRegression) ridge() []float64 {
	if lr.penalty != "l2" || lr.C <= 0 {
		return nil
	}
	_, p := lr.design.Dims()
	r := make([]float64, p)
	for j := range r {
		r[j] = 1 / lr.C
	}
	if lr.fitIntercept {
		r[0] = 0
	}
	return r
}

// irls solves (XᵀWX + Λ) β = XᵀWz until the coefficient update falls below tol.
func (lr *LogisticRegression) irls() ([]float64, error) {
	n, p := lr.design.Dims()
	ridge := lr.ridge()
	beta := mat.NewVecDense(p, nil)
	lr.eta = make([]float64, n)
	lr.mu = make([]float64, n)
	lr.weights = make([]float64, n)

	converged := false
	for iter := 0; iter < lr.maxIter; iter++ {
		lr.nIter_ = iter + 1
		lr.updateLinearPredictor(beta)

		xw := mat.NewDense(n, p, nil)
		wz := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			w := lr.weights[i]
			z := lr.eta[i] + (lr.y01[i]-lr.mu[i])/w
			sw := math.Sqrt(w)
			for j := 0; j < p; j++ {
				xw.Set(i, j, sw*lr.design.At(i, j))
			}
			wz.SetVec(i, sw*z)
		}

		var xtx mat.SymDense
		xtx.SymOuterK(1, xw.T())
		for j, v := range ridge {
			xtx.SetSym(j, j, xtx.At(j, j)+v)
		}
		var chol mat.Cholesky
		if ok := chol.Factorize(&xtx); !ok {
			return nil, errors.NewModelError("LogisticRegression.Fit", "singular information matrix", errors.ErrSingularMatrix)
		}
		var rhs, next mat.VecDense
		rhs.MulVec(xw.T(), wz)
		if err := chol.SolveVecTo(&next, &rhs); err != nil {
			return nil, errors.NewModelError("LogisticRegression.Fit", "singular information matrix", errors.ErrSingularMatrix)
		}

		var delta mat.VecDense
		delta.SubVec(&next, beta)
		beta.CopyVec(&next)
		if err := errors.CheckNumericalStability("LogisticRegression.Fit", beta.RawVector().Data, iter); err != nil {
			return nil, err
		}
		if mat.Norm(&delta, math.Inf(1)) < lr.tol {
			converged = true
			break
		}
	}
	lr.updateLinearPredictor(beta)

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.maxIter, "IRLS did not reach tolerance; the data may be separable"))
	}
	return metrics.Column(beta, 0), nil
}

func (lr *LogisticRegression) updateLinearPredictor(beta *mat.VecDense) {
	var eta mat.VecDense
	eta.MulVec(lr.design, beta)
	for i := range lr.eta {
		lr.eta[i] = eta.AtVec(i)
		lr.mu[i] = sigmoid(lr.eta[i])
		lr.weights[i] = math.Max(lr.mu[i]*(1-lr.mu[i]), 1e-10)
	}
}

func (lr *LogisticRegression) decision(X mat.Matrix) []float64 {
	r, _ := X.Dims()
	var z mat.VecDense
	z.MulVec(X, mat.NewVecDense(len(lr.coef_), lr.coef_))
	out := make([]float64, r)
	for i := range out {
		out[i] = z.AtVec(i) + lr.intercept_
	}
	return out
}

// Predict makes predictions for input data
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.checkInput("Predict", X); err != nil {
		return nil, err
	}
	z := lr.decision(X)
	predictions := mat.NewDense(len(z), 1, nil)
	for i, v := range z {
		label := lr.classes_[0]
		if sigmoid(v) >= 0.5 {
			label = lr.classes_[1]
		}
		predictions.Set(i, 0, float64(label))
	}
	return predictions, nil
}

// PredictProba returns probability estimates for each class
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.checkInput("PredictProba", X); err != nil {
		return nil, err
	}
	z := lr.decision(X)
	probas := mat.NewDense(len(z), 2, nil)
	for i, v := range z {
		p1 := sigmoid(v)
		probas.Set(i, 0, 1-p1)
		probas.Set(i, 1, p1)
	}
	return probas, nil
}

// Score returns the mean accuracy on the given test data and labels
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	r, _ := y.Dims()
	return metrics.Accuracy(mat.NewVecDense(r, metrics.Column(y, 0)), mat.NewVecDense(r, metrics.Column(predictions, 0)))
}

func (lr *LogisticRegression) checkInput(method string, X mat.Matrix) error {
	if err := lr.state.RequireFitted("LogisticRegression", method); err != nil {
		return err
	}
	return lr.state.RequireFeatures("LogisticRegression."+method, X)
}

// Deviance returns the residual deviance -2·loglik of the fitted model.
func (lr *LogisticRegression) Deviance() (float64, error) {
	d, err := lr.ResidualValues()
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, v := range d {
		sum += v * v
	}
	if err := errors.CheckScalar("LogisticRegression.Deviance", sum, 0); err != nil {
		return 0, err
	}
	return sum, nil
}

// FittedValues returns the linear predictor η on the training rows.
func (lr *LogisticRegression) FittedValues() ([]float64, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "FittedValues"); err != nil {
		return nil, err
	}
	return slices.Clone(lr.eta), nil
}

// ResidualValues returns the deviance residuals.
func (lr *LogisticRegression) ResidualValues() ([]float64, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "ResidualValues"); err != nil {
		return nil, err
	}
	out := make([]float64, len(lr.mu))
	for i, mu := range lr.mu {
		y := lr.y01[i]
		var unit float64
		if y == 1 {
			unit = -2 * math.Log(math.Max(mu, 1e-300))
		} else {
			unit = -2 * math.Log(math.Max(1-mu, 1e-300))
		}
		out[i] = math.Copysign(math.Sqrt(unit), y-mu)
	}
	return out, nil
}

// PearsonResiduals returns (y-μ)/sqrt(μ(1-μ)).
func (lr *LogisticRegression) PearsonResiduals() ([]float64, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "PearsonResiduals"); err != nil {
		return nil, err
	}
	out := make([]float64, len(lr.mu))
	for i, mu := range lr.mu {
		out[i] = (lr.y01[i] - mu) / math.Sqrt(lr.weights[i])
	}
	return out, nil
}

// Leverage returns the diagonal of the weighted hat matrix at convergence.
func (lr *LogisticRegression) Leverage() ([]float64, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "Leverage"); err != nil {
		return nil, err
	}
	return slices.Clone(lr.leverage), nil
}

// StandardizedResiduals returns deviance residuals scaled by sqrt(1-h);
// the binomial dispersion is fixed at 1.
func (lr *LogisticRegression) StandardizedResiduals() ([]float64, error) {
	d, err := lr.ResidualValues()
	if err != nil {
		return nil, err
	}
	return metrics.StandardizedResiduals(d, lr.leverage, 1)
}

// CooksDistance returns Cook's distance computed from standardized Pearson residuals.
func (lr *LogisticRegression) CooksDistance() ([]float64, error) {
	pr, err := lr.PearsonResiduals()
	if err != nil {
		return nil, err
	}
	std, err := metrics.StandardizedResiduals(pr, lr.leverage, 1)
	if err != nil {
		return nil, err
	}
	_, p := lr.design.Dims()
	return metrics.CooksDistance(std, lr.leverage, p)
}

// sigmoid computes the sigmoid function
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
