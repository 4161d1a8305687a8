// Command diagplot fits a model on a CSV or XLSX dataset and renders its
// diagnostic charts, either to a vector file, to an interactive HTML page or
// over HTTP.
package main

import (
	"log/slog"
	"os"

	"github.com/YuminosukeSato/diagplot/pkg/log"
)

func main() {
	if err := loadEnv(); err != nil {
		slog.Error("loading environment", log.ErrAttr(err))
		os.Exit(1)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
