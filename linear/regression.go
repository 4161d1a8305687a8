// Package linear は最小二乗法による線形回帰と、その影響度診断量を提供する。
package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/core/parallel"
	"github.com/YuminosukeSato/diagplot/metrics"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

// LinearRegression は線形回帰モデル
type LinearRegression struct {
	state *model.StateManager

	fitIntercept      bool
	parallelThreshold int
	featureNames      []string

	Weights   *mat.VecDense // 重み（係数）
	Intercept float64       // 切片

	// 学習データに対する診断量（Fit 時に計算）
	design   *mat.Dense
	y        []float64
	fitted   []float64
	resid    []float64
	leverage []float64
	scale    float64
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{
		state:             model.NewStateManager(),
		fitIntercept:      true,
		parallelThreshold: 1000,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Family はモデルファミリーを返す
func (lr *LinearRegression) Family() model.Family { return model.FamilyLinear }

// IsFitted は学習済みかどうかを返す
func (lr *LinearRegression) IsFitted() bool { return lr.state.IsFitted() }

// FeatureNames は特徴量名を返す（未設定なら nil）
func (lr *LinearRegression) FeatureNames() []string { return lr.featureNames }

// NumParams は推定したパラメータ数（切片を含む）を返す
func (lr *LinearRegression) NumParams() int {
	if lr.design == nil {
		return 0
	}
	_, p := lr.design.Dims()
	return p
}

// Fit はモデルを訓練データで学習させる。
// 正規方程式 (XᵀX) w = Xᵀy を Cholesky 分解で解く。
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	lr.state.Reset()
	design := lr.designMatrix(X)
	_, p := design.Dims()
	if r <= p {
		return errors.NewValueError("LinearRegression.Fit", "need more observations than parameters")
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, design.T())
	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	yVec := mat.NewVecDense(r, metrics.Column(y, 0))
	var xty mat.VecDense
	xty.MulVec(design.T(), yVec)

	var w mat.VecDense
	if err := chol.SolveVecTo(&w, &xty); err != nil {
		return errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	off := 0
	lr.Intercept = 0
	if lr.fitIntercept {
		lr.Intercept = w.AtVec(0)
		off = 1
	}
	lr.Weights = mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		lr.Weights.SetVec(j, w.AtVec(j+off))
	}

	if err := lr.computeDiagnostics(design, yVec, &w); err != nil {
		return err
	}
	lr.state.SetFitted(c, r)
	return nil
}

// designMatrix は切片列 [1, X] を付けた計画行列を作る
func (lr *LinearRegression) designMatrix(X mat.Matrix) *mat.Dense {
	r, c := X.Dims()
	off := 0
	if lr.fitIntercept {
		off = 1
	}
	design := mat.NewDense(r, c+off, nil)
	parallel.ParallelizeWithThreshold(r, lr.parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if off == 1 {
				design.Set(i, 0, 1.0)
			}
			for j := 0; j < c; j++ {
				design.Set(i, j+off, X.At(i, j))
			}
		}
	})
	return design
}

func (lr *LinearRegression) computeDiagnostics(design *mat.Dense, y *mat.VecDense, w *mat.VecDense) error {
	_, p := design.Dims()
	var fitted mat.VecDense
	fitted.MulVec(design, w)

	lr.design = design
	lr.y = metrics.Column(y, 0)
	lr.fitted = metrics.Column(&fitted, 0)

	resid, err := metrics.Residuals(lr.y, lr.fitted)
	if err != nil {
		return err
	}
	lr.resid = resid

	lev, err := metrics.HatDiagonal(design, nil)
	if err != nil {
		return err
	}
	lr.leverage = lev

	scale, err := metrics.ResidualScale(resid, p)
	if err != nil {
		return err
	}
	lr.scale = scale
	return nil
}

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.state.RequireFitted("LinearRegression", "Predict"); err != nil {
		return nil, err
	}
	if err := lr.state.RequireFeatures("LinearRegression.Predict", X); err != nil {
		return nil, err
	}

	r, _ := X.Dims()
	var out mat.VecDense
	out.MulVec(X, lr.Weights)
	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		predictions.Set(i, 0, out.AtVec(i)+lr.Intercept)
	}
	return predictions, nil
}

// GetWeights は学習された重み（係数）を返す
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}
	return metrics.Column(lr.Weights, 0)
}

// GetIntercept は学習された切片を返す
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// Score はモデルの決定係数（R²）を計算する
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	r, _ := y.Dims()
	return metrics.R2Score(mat.NewVecDense(r, metrics.Column(y, 0)), mat.NewVecDense(r, metrics.Column(yPred, 0)))
}

// Scale は残差分散の推定値 σ² = RSS/(n-p) を返す
func (lr *LinearRegression) Scale() (float64, error) {
	if err := lr.state.RequireFitted("LinearRegression", "Scale"); err != nil {
		return 0, err
	}
	return lr.scale, nil
}

// FittedValues は学習データに対する当てはめ値を返す
func (lr *LinearRegression) FittedValues() ([]float64, error) {
	if err := lr.state.RequireFitted("LinearRegression", "FittedValues"); err != nil {
		return nil, err
	}
	return append([]float64(nil), lr.fitted...), nil
}

// ResidualValues は学習データの残差 y - ŷ を返す
func (lr *LinearRegression) ResidualValues() ([]float64, error) {
	if err := lr.state.RequireFitted("LinearRegression", "ResidualValues"); err != nil {
		return nil, err
	}
	return append([]float64(nil), lr.resid...), nil
}

// Leverage はハット行列の対角成分を返す
func (lr *LinearRegression) Leverage() ([]float64, error) {
	if err := lr.state.RequireFitted("LinearRegression", "Leverage"); err != nil {
		return nil, err
	}
	return append([]float64(nil), lr.leverage...), nil
}

// StandardizedResiduals は内部スチューデント化残差を返す
func (lr *LinearRegression) StandardizedResiduals() ([]float64, error) {
	if err := lr.state.RequireFitted("LinearRegression", "StandardizedResiduals"); err != nil {
		return nil, err
	}
	return metrics.StandardizedResiduals(lr.resid, lr.leverage, lr.scale)
}

// CooksDistance は各観測の Cook 距離を返す
func (lr *LinearRegression) CooksDistance() ([]float64, error) {
	std, err := lr.StandardizedResiduals()
	if err != nil {
		return nil, err
	}
	return metrics.CooksDistance(std, lr.leverage, lr.NumParams())
}
