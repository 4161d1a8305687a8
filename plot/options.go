package plot

import (
	"io"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/pkg/log"
)

// Request is a fully resolved chart request. Build it with Option values.
type Request struct {
	Kind Kind
	// Size is the canvas width and height in inches.
	Size  []float64
	Color string
	// Output is the file the static chart is written to; empty skips saving.
	Output        string
	Customization map[string]any
	Interactive   bool
	Verbose       bool
	CreateDir     bool
	// RenderOptions are passed through to the renderers. Recognized keys:
	// point_size, grid_resolution, feature, format, id_n.
	RenderOptions map[string]any

	Response []float64
	Features mat.Matrix
	Labels   []string

	Logger    log.Logger
	LogWriter io.Writer
}

// Option configures a Request.
type Option func(*Request)

// DefaultRequest returns the request used when no option is given.
func DefaultRequest() Request {
	return Request{
		Kind:      KindResidual,
		Size:      []float64{10, 6},
		Color:     "blue",
		Verbose:   true,
		LogWriter: os.Stderr,
	}
}

// WithKind selects the chart kind.
func WithKind(kind Kind) Option { return func(r *Request) { r.Kind = kind } }

// WithSize sets the canvas size in inches. Exactly two values are accepted.
func WithSize(dims ...float64) Option { return func(r *Request) { r.Size = dims } }

// WithColor sets the point color: a CSS color name or #rrggbb.
func WithColor(color string) Option { return func(r *Request) { r.Color = color } }

// WithOutput sets the file the static chart is saved to. The extension picks
// the vector format: .svg, .pdf or .eps.
func WithOutput(path string) Option { return func(r *Request) { r.Output = path } }

// WithCustomization sets chart customizations. Recognized keys: title,
// x_label, y_label, theme, boundary_colors, contour. Others are ignored.
func WithCustomization(c map[string]any) Option {
	return func(r *Request) { r.Customization = c }
}

// WithInteractive selects the interactive rendering path.
func WithInteractive(on bool) Option { return func(r *Request) { r.Interactive = on } }

// WithVerbose toggles progress logging.
func WithVerbose(on bool) Option { return func(r *Request) { r.Verbose = on } }

// WithCreateDir allows creating the output directory when it is missing.
func WithCreateDir(on bool) Option { return func(r *Request) { r.CreateDir = on } }

// WithRenderOptions sets options passed through to the renderers.
func WithRenderOptions(o map[string]any) Option {
	return func(r *Request) { r.RenderOptions = o }
}

// WithResponse sets the observed response. Predictive families need it for
// residuals and decision boundaries.
func WithResponse(y []float64) Option { return func(r *Request) { r.Response = y } }

// WithFeatures sets the feature matrix predictions are computed on.
func WithFeatures(X mat.Matrix) Option { return func(r *Request) { r.Features = X } }

// WithLabels sets observation identifiers shown on labels and tooltips.
func WithLabels(labels []string) Option { return func(r *Request) { r.Labels = labels } }

// WithLogger sends progress lines to l instead of the default stream.
func WithLogger(l log.Logger) Option { return func(r *Request) { r.Logger = l } }

// WithLogWriter sets the stream of the default progress logger.
func WithLogWriter(w io.Writer) Option { return func(r *Request) { r.LogWriter = w } }

func (r *Request) logger() log.Logger {
	if !r.Verbose {
		return log.NewNopLogger()
	}
	if r.Logger != nil {
		return r.Logger
	}
	w := r.LogWriter
	if w == nil {
		w = os.Stderr
	}
	return log.NewProgressLogger(w)
}
