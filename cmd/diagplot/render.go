package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/diagplot/pkg/errors"
	"github.com/YuminosukeSato/diagplot/plot"
)

func newRenderCmd(o *options) *cobra.Command {
	var (
		output    string
		html      string
		createDir bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Fit a model and render one diagnostic chart",
		Example: `  diagplot render -d cars.csv -m linear -k cooks -o out/cooks.svg --create-dir
  diagplot render -d iris.xlsx -m svm -k decision_boundary --html boundary.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := o.newLogger(cmd.ErrOrStderr())
			fm, err := o.fit(logger)
			if err != nil {
				return err
			}
			opts, err := o.plotOptions(fm, logger)
			if err != nil {
				return err
			}

			if html == "" {
				opts = append(opts, plot.WithOutput(output), plot.WithCreateDir(createDir))
				_, err := plot.RenderContext(cmd.Context(), fm.est, opts...)
				return err
			}

			res, err := plot.RenderContext(cmd.Context(), fm.est, append(opts, plot.WithInteractive(true))...)
			if err != nil {
				return err
			}
			return writeHTML(html, res.(*plot.Interactive))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "vector file for the static chart (.svg, .pdf or .eps)")
	cmd.Flags().StringVar(&html, "html", "", "write the interactive chart to this HTML file instead")
	cmd.Flags().BoolVar(&createDir, "create-dir", false, "create the output directory when it is missing")
	return cmd
}

func writeHTML(path string, it *plot.Interactive) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating html file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "closing html file")
		}
	}()
	return it.Render(f)
}
