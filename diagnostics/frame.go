package diagnostics

import (
	"math"
	"strconv"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

// Statistic は診断統計量の種類
type Statistic int

const (
	// Fitted は当てはめ値
	Fitted Statistic = iota
	// Residuals は残差
	Residuals
	// StandardizedResiduals は標準化残差
	StandardizedResiduals
	// Leverage はレバレッジ（ハット値）
	Leverage
	// CooksDistance はCook距離
	CooksDistance

	numStatistics
)

var statisticNames = [numStatistics]string{
	"fitted values",
	"residuals",
	"standardized residuals",
	"leverage",
	"Cook's distance",
}

func (s Statistic) String() string {
	if s < 0 || s >= numStatistics {
		return "unknown statistic"
	}
	return statisticNames[s]
}

// Column は統計量の列と利用可否
type Column struct {
	Values    []float64
	Available bool
}

// Frame はリクエスト単位の派生統計量テーブル。描画後に破棄される。
type Frame struct {
	Family  model.Family
	IDs     []string
	columns [numStatistics]Column
}

// Compute は need に列挙された統計量だけを計算する。
// ファミリーで定義されない統計量は利用不可の列として残す。
func Compute(m Model, need []Statistic, in Inputs) (*Frame, error) {
	f := &Frame{Family: m.Family()}
	for _, s := range need {
		if s < 0 || s >= numStatistics {
			return nil, errors.NewValueError("diagnostics.Compute", "unknown statistic")
		}
		if f.columns[s].Available || !m.Supports(s) {
			continue
		}
		values, err := statistic(m, s, in)
		if err != nil {
			return nil, errors.Wrapf(err, "computing %s", s)
		}
		if f.IDs == nil {
			if in.Labels != nil && len(in.Labels) != len(values) {
				return nil, errors.NewInvalidArgumentError("labels", "length must match the observations", len(in.Labels))
			}
			f.IDs = labels(in.Labels, len(values))
		} else if len(values) != len(f.IDs) {
			return nil, errors.NewDimensionError("diagnostics.Compute", len(f.IDs), len(values), 0)
		}
		f.columns[s] = Column{Values: values, Available: true}
	}
	return f, nil
}

func statistic(m Model, s Statistic, in Inputs) ([]float64, error) {
	switch s {
	case Fitted:
		return m.Fitted(in)
	case Residuals:
		return m.Residuals(in)
	case StandardizedResiduals:
		return m.StandardizedResiduals()
	case Leverage:
		return m.Leverage()
	default:
		return m.CooksDistance()
	}
}

// labels は指定が無ければ 1..n の行番号を振る
func labels(given []string, n int) []string {
	if given != nil {
		return given
	}
	ids := make([]string, n)
	for i := range ids {
		ids[i] = strconv.Itoa(i + 1)
	}
	return ids
}

// Len は観測数を返す
func (f *Frame) Len() int { return len(f.IDs) }

// Column は統計量の列を返す
func (f *Frame) Column(s Statistic) Column {
	if s < 0 || s >= numStatistics {
		return Column{}
	}
	return f.columns[s]
}

// Available は統計量が計算済みかどうか
func (f *Frame) Available(s Statistic) bool { return f.Column(s).Available }

// Values は統計量の値を返す。利用不可なら ErrStatisticUnavailable を包んだエラー。
func (f *Frame) Values(s Statistic) ([]float64, error) {
	c := f.Column(s)
	if !c.Available {
		return nil, errors.Wrapf(errors.ErrStatisticUnavailable, "%s for %s models", s, f.Family)
	}
	return c.Values, nil
}

// Params はハット行列のトレース（有効パラメータ数）を返す。レバレッジが無ければ 0。
func (f *Frame) Params() int {
	lev := f.Column(Leverage)
	if !lev.Available {
		return 0
	}
	trace := 0.0
	for _, h := range lev.Values {
		if errors.Finite(h) {
			trace += h
		}
	}
	return int(math.Round(trace))
}
