package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/pkg/log"
	"github.com/YuminosukeSato/diagplot/plot"
)

// options are the flags shared by render and serve.
type options struct {
	data     string
	family   string
	response string
	idColumn string
	sheet    string
	classify bool
	seed     int64

	kind           string
	size           string
	color          string
	title          string
	contour        bool
	feature        int
	gridResolution int

	quiet    bool
	logLevel string
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:           "diagplot",
		Short:         "Render diagnostic charts for fitted models",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return log.SetupLogger(o.logLevel)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&o.data, "data", "d", "", "dataset file (.csv or .xlsx)")
	f.StringVarP(&o.family, "model", "m", envOr(envModel, "linear"), "model family: "+familyNames())
	f.StringVar(&o.response, "response", "", "response column (default: last column)")
	f.StringVar(&o.idColumn, "id-column", "", "column holding observation labels")
	f.StringVar(&o.sheet, "sheet", "", "XLSX sheet (default: first sheet)")
	f.BoolVar(&o.classify, "classify", false, "fit a classifier for tree-based families")
	f.Int64Var(&o.seed, "seed", 42, "random seed for randomized estimators")

	f.StringVarP(&o.kind, "kind", "k", envOr(envKind, string(plot.KindResidual)), "chart kind: "+kindNames())
	f.StringVar(&o.size, "size", envOr(envSize, "10x6"), "canvas size in inches, WIDTHxHEIGHT")
	f.StringVar(&o.color, "color", envOr(envColor, "blue"), "point color")
	f.StringVar(&o.title, "title", "", "chart title override")
	f.BoolVar(&o.contour, "contour", false, "draw the class boundary on decision_boundary charts")
	f.IntVar(&o.feature, "feature", 0, "feature index for partial_dependence")
	f.IntVar(&o.gridResolution, "grid-resolution", 0, "grid points per axis (default depends on the kind)")

	f.BoolVarP(&o.quiet, "quiet", "q", false, "suppress progress lines")
	f.StringVar(&o.logLevel, "log-level", envOr(envLogLevel, "info"), "log level: debug, info, warn, error")

	cmd.AddCommand(newRenderCmd(o), newServeCmd(o))
	return cmd
}

func familyNames() string {
	var names []string
	for _, f := range model.Families() {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}

func kindNames() string {
	var names []string
	for _, k := range plot.Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

// plotOptions translates the shared flags into render options.
func (o *options) plotOptions(fm *fitted, logger log.Logger) ([]plot.Option, error) {
	size, err := plot.ParseSize(o.size)
	if err != nil {
		return nil, err
	}
	custom := map[string]any{"contour": o.contour}
	if o.title != "" {
		custom["title"] = o.title
	}
	render := map[string]any{"feature": o.feature}
	if o.gridResolution > 0 {
		render["grid_resolution"] = o.gridResolution
	}
	return []plot.Option{
		plot.WithKind(plot.Kind(o.kind)),
		plot.WithSize(size...),
		plot.WithColor(o.color),
		plot.WithCustomization(custom),
		plot.WithRenderOptions(render),
		plot.WithFeatures(fm.data.X),
		plot.WithResponse(fm.data.Y),
		plot.WithLabels(fm.data.Labels),
		plot.WithVerbose(!o.quiet),
		plot.WithLogger(logger),
	}, nil
}

func (o *options) requireData() error {
	if o.data == "" {
		return fmt.Errorf("--data is required")
	}
	return nil
}
