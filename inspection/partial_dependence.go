// Package inspection computes model-agnostic explanations of fitted predictors.
package inspection

import (
	"context"
	"math"
	"slices"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/core/parallel"
	"github.com/YuminosukeSato/diagplot/metrics"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

// PartialDependence holds the averaged response of a predictor as one
// feature sweeps a grid while the other features keep their observed values.
type PartialDependence struct {
	Feature int
	Grid    []float64
	Average []float64
}

// Option configures a partial dependence computation.
type Option func(*config)

type config struct {
	resolution  int
	lower       float64
	upper       float64
	targetClass int
	workers     int
}

// WithGridResolution sets the maximum number of grid points (default 100).
func WithGridResolution(n int) Option { return func(c *config) { c.resolution = n } }

// WithPercentiles sets the percentiles bounding the grid (default 5 and 95).
func WithPercentiles(lower, upper float64) Option {
	return func(c *config) {
		c.lower = lower
		c.upper = upper
	}
}

// WithTargetClass selects the probability column averaged for classifiers.
// A negative index selects the last class.
func WithTargetClass(i int) Option { return func(c *config) { c.targetClass = i } }

// WithWorkers limits the number of grid points evaluated concurrently.
func WithWorkers(n int) Option { return func(c *config) { c.workers = n } }

// Compute evaluates the partial dependence of m on the given feature of X.
//
// Classifiers implementing model.Classifier are averaged on the predicted
// probability of the target class; other predictors on Predict.
func Compute(ctx context.Context, m model.Predictor, X mat.Matrix, feature int, opts ...Option) (*PartialDependence, error) {
	cfg := config{resolution: 100, lower: 5, upper: 95, targetClass: -1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if X == nil {
		return nil, errors.NewValueError("PartialDependence", "feature matrix is required")
	}
	n, p := X.Dims()
	if n == 0 {
		return nil, errors.NewModelError("PartialDependence", "empty data", errors.ErrEmptyData)
	}
	if feature < 0 || feature >= p {
		return nil, errors.NewValueError("PartialDependence", "feature index out of range")
	}
	if cfg.resolution < 2 {
		return nil, errors.NewValueError("PartialDependence", "grid resolution must be at least 2")
	}
	if cfg.lower < 0 || cfg.upper > 100 || cfg.lower >= cfg.upper {
		return nil, errors.NewValueError("PartialDependence", "percentiles must satisfy 0 <= lower < upper <= 100")
	}

	grid, err := Grid(metrics.Column(X, feature), cfg.resolution, cfg.lower, cfg.upper)
	if err != nil {
		return nil, err
	}

	predict := func(Xg mat.Matrix) ([]float64, error) {
		pred, err := m.Predict(Xg)
		if err != nil {
			return nil, err
		}
		return metrics.Column(pred, 0), nil
	}
	if clf, ok := m.(model.Classifier); ok {
		predict = func(Xg mat.Matrix) ([]float64, error) {
			proba, err := clf.PredictProba(Xg)
			if err != nil {
				return nil, err
			}
			_, k := proba.Dims()
			col := cfg.targetClass
			if col < 0 || col >= k {
				col = k - 1
			}
			return metrics.Column(proba, col), nil
		}
	}

	base := mat.DenseCopyOf(X)
	avg := make([]float64, len(grid))
	err = parallel.ForEach(ctx, len(grid), cfg.workers, func(_ context.Context, g int) error {
		Xg := mat.DenseCopyOf(base)
		for i := 0; i < n; i++ {
			Xg.Set(i, feature, grid[g])
		}
		values, err := predict(Xg)
		if err != nil {
			return err
		}
		avg[g] = mean(values)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "PartialDependence")
	}
	return &PartialDependence{Feature: feature, Grid: grid, Average: avg}, nil
}

// Grid returns the evaluation points for one feature column: the sorted unique
// values when there are at most resolution of them, otherwise resolution
// equally spaced points between the lower and upper percentiles.
func Grid(values []float64, resolution int, lower, upper float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, errors.NewModelError("PartialDependence", "empty data", errors.ErrEmptyData)
	}
	if err := errors.CheckNumericalStability("PartialDependence.Grid", values, 0); err != nil {
		return nil, err
	}
	uniq := slices.Clone(values)
	slices.Sort(uniq)
	uniq = slices.Compact(uniq)
	if len(uniq) <= resolution {
		return uniq, nil
	}

	lo := percentile(values, lower, uniq[0])
	hi := percentile(values, upper, uniq[len(uniq)-1])
	if hi <= lo {
		return nil, errors.NewValueError("PartialDependence", "percentiles are too close to build a grid")
	}
	grid := make([]float64, resolution)
	step := (hi - lo) / float64(resolution-1)
	for i := range grid {
		grid[i] = lo + float64(i)*step
	}
	grid[resolution-1] = hi
	return grid, nil
}

// percentile falls back to the extreme value when the sample is too small
// for the requested percentile.
func percentile(values []float64, pct, fallback float64) float64 {
	switch pct {
	case 0, 100:
		return fallback
	}
	v, err := stats.Percentile(values, pct)
	if err != nil || math.IsNaN(v) {
		return fallback
	}
	return v
}

func mean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return math.NaN()
	}
	return m
}
