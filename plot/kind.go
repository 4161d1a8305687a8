package plot

import (
	"slices"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/diagnostics"
)

// Kind names a diagnostic chart.
type Kind string

// The chart kinds accepted by Render.
const (
	KindResidual          Kind = "residual"
	KindQQ                Kind = "qq"
	KindScaleLocation     Kind = "scale_location"
	KindCooks             Kind = "cooks"
	KindResidualLeverage  Kind = "residual_leverage"
	KindCooksLeverage     Kind = "cooks_leverage"
	KindPartialDependence Kind = "partial_dependence"
	KindDecisionBoundary  Kind = "decision_boundary"
)

// kindSpec is one row of the dispatch table shared by the static and
// interactive paths.
type kindSpec struct {
	// panel is the built-in diagnostic panel index, or 0 for kinds drawn by a
	// dedicated routine.
	panel    int
	needs    []diagnostics.Statistic
	families []model.Family
	build    func(b *builder) (*Chart, error)
}

var closedForm = []model.Family{
	model.FamilyLinear,
	model.FamilyGeneralizedLinear,
	model.FamilyMixedEffects,
}

var kindOrder = []Kind{
	KindResidual,
	KindQQ,
	KindScaleLocation,
	KindCooks,
	KindResidualLeverage,
	KindCooksLeverage,
	KindPartialDependence,
	KindDecisionBoundary,
}

var kinds = map[Kind]kindSpec{
	KindResidual: {
		panel:    1,
		needs:    []diagnostics.Statistic{diagnostics.Fitted, diagnostics.Residuals},
		families: model.Families(),
		build:    (*builder).residualPanel,
	},
	KindQQ: {
		panel:    2,
		needs:    []diagnostics.Statistic{diagnostics.StandardizedResiduals},
		families: closedForm,
		build:    (*builder).qqPanel,
	},
	KindScaleLocation: {
		panel:    3,
		needs:    []diagnostics.Statistic{diagnostics.Fitted, diagnostics.StandardizedResiduals},
		families: closedForm,
		build:    (*builder).scaleLocationPanel,
	},
	KindCooks: {
		panel:    4,
		needs:    []diagnostics.Statistic{diagnostics.CooksDistance},
		families: closedForm,
		build:    (*builder).cooksPanel,
	},
	KindResidualLeverage: {
		panel: 5,
		needs: []diagnostics.Statistic{
			diagnostics.Leverage,
			diagnostics.StandardizedResiduals,
			diagnostics.CooksDistance,
		},
		families: closedForm,
		build:    (*builder).residualLeveragePanel,
	},
	KindCooksLeverage: {
		panel:    6,
		needs:    []diagnostics.Statistic{diagnostics.Leverage, diagnostics.CooksDistance},
		families: closedForm,
		build:    (*builder).cooksLeveragePanel,
	},
	KindPartialDependence: {
		families: []model.Family{model.FamilyRandomForest},
		build:    (*builder).partialDependence,
	},
	KindDecisionBoundary: {
		families: []model.Family{model.FamilySupportVector},
		build:    (*builder).decisionBoundary,
	},
}

// Kinds returns the valid chart kinds in panel order.
func Kinds() []Kind { return slices.Clone(kindOrder) }

func kindNames() []string {
	names := make([]string, len(kindOrder))
	for i, k := range kindOrder {
		names[i] = string(k)
	}
	return names
}

// Panel returns the built-in panel index of k, or 0 for kinds drawn by a
// dedicated routine and for unknown kinds.
func (k Kind) Panel() int { return kinds[k].panel }

// Supports reports whether k can be drawn for models of family f.
func (k Kind) Supports(f model.Family) bool {
	spec, ok := kinds[k]
	return ok && slices.Contains(spec.families, f)
}

func (k Kind) valid() bool {
	_, ok := kinds[k]
	return ok
}
