// Package diagplot renders diagnostic charts for fitted statistical and
// machine-learning models.
//
// A caller hands a fitted model to plot.Render together with a chart kind:
//
//   - residual: residuals against fitted values
//   - qq: normal Q-Q plot of standardized residuals
//   - scale_location: √|standardized residuals| against fitted values
//   - cooks: Cook's distance per observation
//   - residual_leverage: standardized residuals against leverage
//   - cooks_leverage: Cook's distance against leverage/(1-leverage)
//   - partial_dependence: average prediction along one feature
//   - decision_boundary: predicted classes over the first two features
//
// The first six kinds need closed-form influence measures and are available
// for linear, generalized-linear and mixed-effects models. Residuals are also
// available for random forests, decision trees and support vector machines
// given the training data. Partial dependence is drawn for random forests
// and decision boundaries for support vector machines.
//
// # Packages
//
//   - plot: the dispatcher, static (gonum/plot) and interactive (go-echarts) renderers
//   - plot/device: process-wide panel layout with scoped acquisition
//   - diagnostics: statistic frames, Q-Q quantiles and smoothers
//   - inspection: partial dependence
//   - linear, sklearn/...: estimators exposing the diagnostics
//   - dataset: CSV and XLSX loading for the diagplot command
//
// # Example
//
//	lr := linear.NewLinearRegression()
//	if err := lr.Fit(X, y); err != nil {
//	    return err
//	}
//	fig, err := plot.Render(lr,
//	    plot.WithKind(plot.KindResidualLeverage),
//	    plot.WithOutput("out/leverage.svg"),
//	    plot.WithCreateDir(true),
//	)
//
// # Errors
//
// All errors are defined in pkg/errors and carry stack traces from
// cockroachdb/errors. Use errors.As to tell validation failures
// (UnsupportedModelTypeError, UnsupportedPlotTypeError,
// UnsupportedCombinationError, InvalidArgumentError) from RenderingError.
package diagplot
