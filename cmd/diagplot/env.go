package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

// Environment variables overriding flag defaults.
const (
	envKind     = "DIAGPLOT_KIND"
	envSize     = "DIAGPLOT_SIZE"
	envColor    = "DIAGPLOT_COLOR"
	envLogLevel = "DIAGPLOT_LOG_LEVEL"
	envAddr     = "DIAGPLOT_ADDR"
	envModel    = "DIAGPLOT_MODEL"
)

// loadEnv reads the given dotenv files (".env" when none is given). Missing
// files are ignored and variables already set win.
func loadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return errors.Wrapf(err, "loading %s", f)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
