// Package plot renders diagnostic charts for fitted models.
//
// Render is the single entry point. It validates the request, computes the
// statistics the chart kind needs through the diagnostics package and draws
// the chart either statically with gonum/plot, optionally saving a vector
// document, or interactively with go-echarts:
//
//	fig, err := plot.Render(lr,
//	    plot.WithKind(plot.KindCooks),
//	    plot.WithOutput("out/cooks.svg"),
//	    plot.WithCreateDir(true),
//	)
//
// Validation failures are returned before any statistic is computed.
// Failures of the statistics or charting calls are logged and returned as
// *errors.RenderingError. A missing output directory without permission to
// create it is reported through errors.Warn and does not fail the call.
package plot

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/diagnostics"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
	"github.com/YuminosukeSato/diagplot/pkg/log"
	"github.com/YuminosukeSato/diagplot/plot/device"
)

// Result is a rendered chart: a *Figure on the static path or an
// *Interactive on the interactive path.
type Result interface {
	Chart() *Chart
}

// Render draws a diagnostic chart for the fitted model handle.
func Render(handle any, opts ...Option) (Result, error) {
	return RenderContext(context.Background(), handle, opts...)
}

// RenderContext is Render with a context bounding the statistics computation.
func RenderContext(ctx context.Context, handle any, opts ...Option) (Result, error) {
	req := DefaultRequest()
	for _, opt := range opts {
		opt(&req)
	}

	path := "static"
	if req.Interactive {
		path = "interactive"
	}
	logger := req.logger().With(
		log.RequestIDKey, uuid.NewString(),
		log.PlotKindKey, string(req.Kind),
		log.PlotPathKey, path,
	)
	logger.Info("starting diagnostic plot")

	b, err := prepare(ctx, handle, &req)
	if err != nil {
		return nil, err
	}
	logger = logger.With(log.ModelFamilyKey, b.model.Family().String())

	start := time.Now()
	var res Result
	err = errors.SafeExecute("plot."+string(req.Kind), func() error {
		var rerr error
		if req.Interactive {
			res, rerr = b.interactive(logger)
		} else {
			res, rerr = b.static(logger)
		}
		return rerr
	})
	if err != nil {
		logger.Error("rendering failed", log.ErrorTypeKey, "RenderingFailure", "error", err)
		return nil, err
	}
	logger.Info("completed diagnostic plot", log.DurationMsKey, time.Since(start).Milliseconds())
	return res, nil
}

// prepare validates the request in order: model, kind, size, color,
// kind/family combination, then the inputs the kind needs.
func prepare(ctx context.Context, handle any, req *Request) (*builder, error) {
	m, err := diagnostics.FromHandle(handle)
	if err != nil {
		return nil, err
	}
	if !req.Kind.valid() {
		return nil, errors.NewUnsupportedPlotTypeError(string(req.Kind), kindNames())
	}
	if err := validateSize(req.Size); err != nil {
		return nil, err
	}
	if err := validateColor(req.Color); err != nil {
		return nil, err
	}

	spec := kinds[req.Kind]
	family := m.Family()
	if !slices.Contains(spec.families, family) {
		names := make([]string, len(spec.families))
		for i, f := range spec.families {
			names[i] = f.String()
		}
		return nil, errors.NewUnsupportedCombinationError(string(req.Kind), family.String(),
			"supported families: "+strings.Join(names, ", "))
	}
	for _, s := range spec.needs {
		if !m.Supports(s) {
			return nil, errors.NewUnsupportedCombinationError(string(req.Kind), family.String(),
				s.String()+" is unavailable")
		}
	}

	custom, err := parseCustomization(req.Customization)
	if err != nil {
		return nil, err
	}
	render, err := parseRenderOptions(req.RenderOptions)
	if err != nil {
		return nil, err
	}
	format := ""
	if !req.Interactive {
		if format, err = outputFormat(req.Output, render.format); err != nil {
			return nil, err
		}
	}
	if err := validateInputs(req, family.ClosedForm(), render); err != nil {
		return nil, err
	}

	col, _ := parseColor(req.Color)
	return &builder{
		ctx:    ctx,
		handle: handle,
		model:  m,
		spec:   spec,
		req:    req,
		custom: custom,
		render: render,
		color:  col,
		format: format,
	}, nil
}

func validateInputs(req *Request, closedForm bool, render renderOptions) error {
	needX := !closedForm || req.Kind == KindPartialDependence || req.Kind == KindDecisionBoundary
	needY := (!closedForm && req.Kind == KindResidual) || req.Kind == KindDecisionBoundary
	if req.Labels != nil && req.Features != nil {
		if n, _ := req.Features.Dims(); len(req.Labels) != n {
			return errors.NewInvalidArgumentError("labels", "length must match the feature rows", len(req.Labels))
		}
	}
	if !needX {
		return nil
	}
	if req.Features == nil {
		return errors.NewInvalidArgumentError("features", "a feature matrix is required for "+string(req.Kind), nil)
	}
	n, cols := req.Features.Dims()
	if n == 0 || cols == 0 {
		return errors.NewInvalidArgumentError("features", "feature matrix is empty", dims(req.Features))
	}
	switch req.Kind {
	case KindPartialDependence:
		if render.feature >= cols {
			return errors.NewInvalidArgumentError("render_options.feature", "feature index out of range", render.feature)
		}
	case KindDecisionBoundary:
		if cols < 2 {
			return errors.NewInvalidArgumentError("features", "a decision boundary needs at least two features", dims(req.Features))
		}
	}
	if needY {
		if req.Response == nil {
			return errors.NewInvalidArgumentError("response", "a response vector is required for "+string(req.Kind), nil)
		}
		if len(req.Response) != n {
			return errors.NewInvalidArgumentError("response", "length must match the feature rows", len(req.Response))
		}
	}
	return nil
}

func dims(m mat.Matrix) [2]int {
	r, c := m.Dims()
	return [2]int{r, c}
}

func (b *builder) static(logger log.Logger) (*Figure, error) {
	dev, restore := device.Acquire(panelLayout, b.format)
	defer restore()

	c, err := b.build()
	if err != nil {
		return nil, err
	}
	fig, err := drawFigure(dev, c, b.req.Size, b.format)
	if err != nil {
		return nil, err
	}
	if b.req.Output != "" {
		if err := b.save(fig, logger); err != nil {
			return nil, err
		}
	}
	return fig, nil
}

func (b *builder) interactive(logger log.Logger) (*Interactive, error) {
	c, err := b.build()
	if err != nil {
		return nil, err
	}
	if b.req.Output != "" {
		logger.Debug("interactive charts are not saved", log.OutputPathKey, b.req.Output)
	}
	return newInteractive(c, b.req.Size), nil
}

// save writes the figure, creating the parent directory only when allowed.
func (b *builder) save(fig *Figure, logger log.Logger) error {
	path := b.req.Output
	dir := filepath.Dir(path)
	logger = logger.With(log.OutputPathKey, path)

	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			logger.Error("save failed", "error", err)
			return errors.Wrap(err, "checking output directory")
		}
		if !b.req.CreateDir {
			errors.Warn(errors.NewOutputDirectoryWarning(path, dir))
			logger.Warn("save skipped: output directory does not exist", "dir", dir)
			return nil
		}
		logger.Info("creating output directory", "dir", dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("save failed", "error", err)
			return errors.Wrap(err, "creating output directory")
		}
	}
	if err := fig.Save(path); err != nil {
		logger.Error("save failed", "error", err)
		return err
	}
	logger.Info("saved chart",
		log.CanvasWidthKey, b.req.Size[0],
		log.CanvasHeightKey, b.req.Size[1],
	)
	return nil
}
