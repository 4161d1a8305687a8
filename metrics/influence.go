package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

// HatDiagonal はハット行列 H = W^½ X (XᵀWX)⁻¹ XᵀW^½ の対角成分（レバレッジ）を返す。
// X は切片列を含む計画行列。weights が nil のときは全て 1 とみなす。
func HatDiagonal(X mat.Matrix, weights []float64) ([]float64, error) {
	return PenalizedHatDiagonal(X, weights, nil)
}

// PenalizedHatDiagonal は XᵀWX の対角に ridge を加えたハット行列の対角成分を返す。
// ridge が nil のときは HatDiagonal と同じ。
func PenalizedHatDiagonal(X mat.Matrix, weights, ridge []float64) ([]float64, error) {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return nil, errors.NewModelError("HatDiagonal", "empty data", errors.ErrEmptyData)
	}
	if weights != nil && len(weights) != n {
		return nil, errors.NewDimensionError("HatDiagonal", n, len(weights), 0)
	}

	xw := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		s := 1.0
		if weights != nil {
			if weights[i] < 0 {
				return nil, errors.NewValueError("HatDiagonal", "weights must be non-negative")
			}
			s = math.Sqrt(weights[i])
		}
		for j := 0; j < p; j++ {
			xw.Set(i, j, s*X.At(i, j))
		}
	}

	// XᵀWX は対称正定値なので Cholesky 分解で解く
	var xtx mat.SymDense
	xtx.SymOuterK(1, xw.T())
	if ridge != nil {
		if len(ridge) != p {
			return nil, errors.NewDimensionError("PenalizedHatDiagonal", p, len(ridge), 1)
		}
		for j, v := range ridge {
			xtx.SetSym(j, j, xtx.At(j, j)+v)
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, errors.NewModelError("HatDiagonal", "singular design matrix", errors.ErrSingularMatrix)
	}

	var z mat.Dense
	if err := chol.SolveTo(&z, xw.T()); err != nil {
		return nil, errors.NewModelError("HatDiagonal", "cholesky solve", err)
	}

	h := make([]float64, n)
	for i := 0; i < n; i++ {
		var v float64
		for j := 0; j < p; j++ {
			v += xw.At(i, j) * z.At(j, i)
		}
		h[i] = v
	}
	return h, nil
}

// ResidualScale は残差分散の不偏推定量 RSS/(n-p) を返す
func ResidualScale(resid []float64, p int) (float64, error) {
	n := len(resid)
	if n <= p {
		return 0, errors.NewValueError("ResidualScale", "need more observations than parameters")
	}
	return floats.Dot(resid, resid) / float64(n-p), nil
}

// StandardizedResiduals は r_i / sqrt(scale·(1-h_i)) を返す。
// h_i が 1 に達した観測は NaN になる。
func StandardizedResiduals(resid, leverage []float64, scale float64) ([]float64, error) {
	if len(resid) != len(leverage) {
		return nil, errors.NewDimensionError("StandardizedResiduals", len(resid), len(leverage), 0)
	}
	if scale <= 0 || !errors.Finite(scale) {
		return nil, errors.NewValueError("StandardizedResiduals", "scale must be positive and finite")
	}
	out := make([]float64, len(resid))
	for i, r := range resid {
		d := 1 - leverage[i]
		if d <= 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = r / math.Sqrt(scale*d)
	}
	return out, nil
}

// CooksDistance は D_i = r_i² h_i / (p (1-h_i)) を返す。r は標準化残差、p はパラメータ数。
func CooksDistance(stdResid, leverage []float64, p int) ([]float64, error) {
	if len(stdResid) != len(leverage) {
		return nil, errors.NewDimensionError("CooksDistance", len(stdResid), len(leverage), 0)
	}
	if p <= 0 {
		return nil, errors.NewValueError("CooksDistance", "number of parameters must be positive")
	}
	out := make([]float64, len(stdResid))
	for i, r := range stdResid {
		d := 1 - leverage[i]
		if d <= 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = r * r * leverage[i] / (float64(p) * d)
	}
	return out, nil
}

// CooksContour は Cook 距離が level となる標準化残差の大きさをレバレッジ h について返す
func CooksContour(level float64, p int, h float64) float64 {
	if h <= 0 || h >= 1 {
		return math.NaN()
	}
	return math.Sqrt(level * float64(p) * (1 - h) / h)
}
