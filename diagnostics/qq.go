package diagnostics

import (
	"cmp"
	"math"
	"slices"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

// QQ は正規QQプロットの座標と参照直線
type QQ struct {
	Theoretical []float64
	Sample      []float64
	// Index は Sample[i] の元の観測位置
	Index     []int
	Slope     float64
	Intercept float64
}

// NormalQQ は有限な値だけを昇順に並べ、正規分布の理論分位点と対応させる。
// 参照直線は第1・第3四分位点を通る。
func NormalQQ(values []float64) (*QQ, error) {
	idx := finiteIndex(values)
	n := len(idx)
	if n < 2 {
		return nil, errors.NewValueError("NormalQQ", "at least two finite values are required")
	}
	slices.SortStableFunc(idx, func(a, b int) int { return cmp.Compare(values[a], values[b]) })

	q := &QQ{
		Theoretical: make([]float64, n),
		Sample:      make([]float64, n),
		Index:       idx,
	}
	// プロット位置 (i - a) / (n + 1 - 2a)
	a := 0.5
	if n <= 10 {
		a = 3.0 / 8
	}
	for i, j := range idx {
		q.Sample[i] = values[j]
		q.Theoretical[i] = distuv.UnitNormal.Quantile((float64(i+1) - a) / (float64(n) + 1 - 2*a))
	}

	quartiles, err := stats.Quartile(q.Sample)
	if err != nil {
		return nil, errors.Wrap(err, "NormalQQ")
	}
	x1 := distuv.UnitNormal.Quantile(0.25)
	x3 := distuv.UnitNormal.Quantile(0.75)
	q.Slope = (quartiles.Q3 - quartiles.Q1) / (x3 - x1)
	q.Intercept = quartiles.Q1 - q.Slope*x1
	return q, nil
}

// Smooth は x で並べ替えた y の移動中央値を返す。窓幅は観測数の span 倍（奇数、最小3）。
func Smooth(x, y []float64, span float64) (xs, ys []float64) {
	if len(x) != len(y) {
		return nil, nil
	}
	idx := make([]int, 0, len(x))
	for i := range x {
		if errors.Finite(x[i]) && errors.Finite(y[i]) {
			idx = append(idx, i)
		}
	}
	n := len(idx)
	if n < 3 {
		return nil, nil
	}
	slices.SortStableFunc(idx, func(a, b int) int { return cmp.Compare(x[a], x[b]) })

	k := max(3, int(span*float64(n)))
	if k%2 == 0 {
		k++
	}
	half := k / 2
	xs = make([]float64, n)
	ys = make([]float64, n)
	window := make([]float64, 0, k)
	for i := range idx {
		window = window[:0]
		for j := max(0, i-half); j <= min(n-1, i+half); j++ {
			window = append(window, y[idx[j]])
		}
		med, err := stats.Median(window)
		if err != nil {
			med = math.NaN()
		}
		xs[i] = x[idx[i]]
		ys[i] = med
	}
	return xs, ys
}

// Extremes は絶対値の大きい順に k 個の観測位置を返す（非有限値は除く）
func Extremes(values []float64, k int) []int {
	idx := finiteIndex(values)
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(math.Abs(values[b]), math.Abs(values[a]))
	})
	if k < len(idx) {
		idx = idx[:max(k, 0)]
	}
	return idx
}

func finiteIndex(values []float64) []int {
	idx := make([]int, 0, len(values))
	for i, v := range values {
		if errors.Finite(v) {
			idx = append(idx, i)
		}
	}
	return idx
}
