// Package log defines standard attribute keys for diagnostic plotting.
//
// Keys follow a hierarchical naming convention ("model.family",
// "plot.kind") so that log lines can be filtered by component.

package log

// Model context
const (
	// ModelNameKey identifies the concrete estimator type.
	// Examples: "*linear.LinearRegression", "*svm.LinearSVC"
	ModelNameKey = "model.name"

	// ModelFamilyKey identifies the model family the dispatcher resolved.
	// Examples: "linear", "random_forest"
	ModelFamilyKey = "model.family"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "render", "save"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"
)

// Plot request context
const (
	// RequestIDKey is a unique identifier for one dispatcher invocation.
	RequestIDKey = "request.id"

	// PlotKindKey is the requested chart kind.
	PlotKindKey = "plot.kind"

	// PlotPathKey is the rendering path taken: "static" or "interactive".
	PlotPathKey = "plot.path"

	// OutputPathKey is the file the static chart is written to.
	OutputPathKey = "output.path"

	// CanvasWidthKey and CanvasHeightKey are the canvas size in inches.
	CanvasWidthKey  = "canvas.width_in"
	CanvasHeightKey = "canvas.height_in"
)

// Data shape
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"
)

// Metrics and timing
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2ScoreKey records R² coefficient of determination for regression.
	R2ScoreKey = "metrics.r2_score"

	// MSEKey records the mean squared error of the fitted values.
	MSEKey = "metrics.mse"

	// AccuracyKey records classification accuracy.
	AccuracyKey = "metrics.accuracy"
)

// Error context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	// Examples: "UnsupportedPlotType", "RenderingFailure"
	ErrorTypeKey = "error.type"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationRender  = "render"
	OperationSave    = "save"

	PathStatic      = "static"
	PathInteractive = "interactive"
)
