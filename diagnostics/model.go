// Package diagnostics はモデルファミリーごとの診断統計量へのアクセスを提供します。
// 閉形式の診断量を持つファミリー（線形・一般化線形・混合効果）と、予測のみを持つ
// ファミリー（ランダムフォレスト・決定木・サポートベクター）をそれぞれ別の実装で表し、
// 定義されない統計量は「利用不可」として明示します。
package diagnostics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/metrics"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

// Inputs は予測系ファミリーの統計量計算に使う入力
type Inputs struct {
	// X は特徴量行列（予測系ファミリーでは必須）
	X mat.Matrix
	// Y は観測された応答（予測系ファミリーの残差で必須）
	Y []float64
	// Labels は観測ごとの識別子。空なら 1 始まりの行番号
	Labels []string
}

// Model はファミリーごとの診断能力を表すインターフェース
type Model interface {
	// Family はモデルファミリーを返す
	Family() model.Family
	// Supports は統計量がこのファミリーで定義されるかを返す
	Supports(s Statistic) bool
	// Predict は新しいデータに対する予測（n×1）を返す
	Predict(X mat.Matrix) (mat.Matrix, error)
	// Fitted は当てはめ値を返す
	Fitted(in Inputs) ([]float64, error)
	// Residuals は残差を返す
	Residuals(in Inputs) ([]float64, error)
	// StandardizedResiduals は標準化残差を返す
	StandardizedResiduals() ([]float64, error)
	// Leverage はハット行列の対角成分を返す
	Leverage() ([]float64, error)
	// CooksDistance はCook距離を返す
	CooksDistance() ([]float64, error)
}

// FromHandle は任意のモデルハンドルを対応するファミリーの Model に変換する
func FromHandle(h any) (Model, error) {
	allowed := familyNames()
	if h == nil {
		return nil, errors.NewUnsupportedModelTypeError("<nil>", allowed, "")
	}
	got := fmt.Sprintf("%T", h)

	fm, ok := h.(model.FamilyMember)
	if !ok {
		return nil, errors.NewUnsupportedModelTypeError(got, allowed, "model does not declare a family")
	}
	family := fm.Family()
	if family.String() == "unknown" {
		return nil, errors.NewUnsupportedModelTypeError(got, allowed, "unknown family")
	}
	p, ok := h.(model.Predictor)
	if !ok {
		return nil, errors.NewUnsupportedModelTypeError(got, allowed, family.String()+" models must implement Predict")
	}

	if family.ClosedForm() {
		inf, ok := h.(model.Influencer)
		if !ok {
			return nil, errors.NewUnsupportedModelTypeError(got, allowed,
				family.String()+" models must provide fitted values, residuals, standardized residuals, leverage and Cook's distance")
		}
		return &closedForm{family: family, predictor: p, influencer: inf}, nil
	}
	return &predictive{family: family, predictor: p}, nil
}

func familyNames() []string {
	fams := model.Families()
	names := make([]string, len(fams))
	for i, f := range fams {
		names[i] = f.String()
	}
	return names
}

// closedForm はモデル自身のアクセサで全統計量を得るファミリー
type closedForm struct {
	family     model.Family
	predictor  model.Predictor
	influencer model.Influencer
}

func (c *closedForm) Family() model.Family { return c.family }

func (c *closedForm) Supports(Statistic) bool { return true }

func (c *closedForm) Predict(X mat.Matrix) (mat.Matrix, error) { return c.predictor.Predict(X) }

func (c *closedForm) Fitted(Inputs) ([]float64, error) { return c.influencer.FittedValues() }

func (c *closedForm) Residuals(Inputs) ([]float64, error) { return c.influencer.ResidualValues() }

func (c *closedForm) StandardizedResiduals() ([]float64, error) {
	return c.influencer.StandardizedResiduals()
}

func (c *closedForm) Leverage() ([]float64, error) { return c.influencer.Leverage() }

func (c *closedForm) CooksDistance() ([]float64, error) { return c.influencer.CooksDistance() }

// predictive は予測のみを持つファミリー。当てはめ値は X に対する予測、
// 残差は応答から予測を引いたもの。それ以外は利用不可。
type predictive struct {
	family    model.Family
	predictor model.Predictor
}

func (p *predictive) Family() model.Family { return p.family }

func (p *predictive) Supports(s Statistic) bool {
	return s == Fitted || s == Residuals
}

func (p *predictive) Predict(X mat.Matrix) (mat.Matrix, error) { return p.predictor.Predict(X) }

func (p *predictive) Fitted(in Inputs) ([]float64, error) {
	if in.X == nil {
		return nil, errors.NewInvalidArgumentError("features", "a feature matrix is required for "+p.family.String()+" models", nil)
	}
	pred, err := p.predictor.Predict(in.X)
	if err != nil {
		return nil, err
	}
	return metrics.Column(pred, 0), nil
}

func (p *predictive) Residuals(in Inputs) ([]float64, error) {
	if in.Y == nil {
		return nil, errors.NewInvalidArgumentError("response", "a response vector is required for "+p.family.String()+" models", nil)
	}
	fitted, err := p.Fitted(in)
	if err != nil {
		return nil, err
	}
	if len(in.Y) != len(fitted) {
		return nil, errors.NewDimensionError("diagnostics.Residuals", len(fitted), len(in.Y), 0)
	}
	return metrics.Residuals(in.Y, fitted)
}

func (p *predictive) unavailable(s Statistic) error {
	return errors.Wrapf(errors.ErrStatisticUnavailable, "%s for %s models", s, p.family)
}

func (p *predictive) StandardizedResiduals() ([]float64, error) {
	return nil, p.unavailable(StandardizedResiduals)
}

func (p *predictive) Leverage() ([]float64, error) { return nil, p.unavailable(Leverage) }

func (p *predictive) CooksDistance() ([]float64, error) { return nil, p.unavailable(CooksDistance) }
