package main

import (
	"io"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/dataset"
	"github.com/YuminosukeSato/diagplot/linear"
	"github.com/YuminosukeSato/diagplot/metrics"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
	"github.com/YuminosukeSato/diagplot/pkg/log"
	"github.com/YuminosukeSato/diagplot/sklearn/ensemble"
	"github.com/YuminosukeSato/diagplot/sklearn/linear_model"
	"github.com/YuminosukeSato/diagplot/sklearn/svm"
	"github.com/YuminosukeSato/diagplot/sklearn/tree"
)

// fitted is a model trained on the loaded dataset.
type fitted struct {
	family model.Family
	est    model.Estimator
	data   *dataset.Dataset
}

// newEstimator returns an unfitted estimator for the family. Tree-based
// families fit a classifier when classify is set.
func newEstimator(family model.Family, classify bool, seed int64) (model.Estimator, error) {
	switch family {
	case model.FamilyLinear:
		return linear.NewLinearRegression(), nil
	case model.FamilyGeneralizedLinear:
		return linear_model.NewLogisticRegression(), nil
	case model.FamilyRandomForest:
		if classify {
			return ensemble.NewRandomForestClassifier(ensemble.WithRandomState(seed)), nil
		}
		return ensemble.NewRandomForestRegressor(ensemble.WithRandomState(seed)), nil
	case model.FamilyDecisionTree:
		if classify {
			return tree.NewDecisionTreeClassifier(tree.WithRandomState(seed)), nil
		}
		return tree.NewDecisionTreeRegressor(tree.WithRandomState(seed)), nil
	case model.FamilySupportVector:
		return svm.NewLinearSVC(svm.WithRandomState(seed)), nil
	}
	return nil, errors.NewUnsupportedModelTypeError(family.String(),
		[]string{"linear", "generalized_linear", "random_forest", "decision_tree", "support_vector"},
		"no estimator can be fitted from a dataset for this family")
}

func (o *options) newLogger(w io.Writer) log.Logger {
	if o.quiet {
		return log.NewNopLogger()
	}
	l := log.NewProgressLogger(w)
	l.InstallWarnings()
	return l
}

// fit loads the dataset and trains the requested family on it.
func (o *options) fit(logger log.Logger) (*fitted, error) {
	if err := o.requireData(); err != nil {
		return nil, err
	}
	var dopts []dataset.Option
	if o.response != "" {
		dopts = append(dopts, dataset.WithResponse(o.response))
	}
	if o.idColumn != "" {
		dopts = append(dopts, dataset.WithIDColumn(o.idColumn))
	}
	if o.sheet != "" {
		dopts = append(dopts, dataset.WithSheet(o.sheet))
	}
	ds, err := dataset.Load(o.data, dopts...)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded dataset", "path", o.data, "rows", ds.Rows(), "features", len(ds.Features))

	family, err := model.ParseFamily(o.family)
	if err != nil {
		return nil, errors.NewInvalidArgumentError("model", err.Error(), o.family)
	}
	est, err := newEstimator(family, o.classify, o.seed)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := est.Fit(ds.X, mat.NewDense(ds.Rows(), 1, ds.Y)); err != nil {
		return nil, errors.Wrapf(err, "fitting %s model", family)
	}
	fm := &fitted{family: family, est: est, data: ds}
	if err := fm.summarize(logger, time.Since(start)); err != nil {
		return nil, err
	}
	return fm, nil
}

// summarize logs the in-sample fit: accuracy for classifiers, R² and the
// error magnitudes otherwise.
func (f *fitted) summarize(logger log.Logger, took time.Duration) error {
	pred, err := f.est.Predict(f.data.X)
	if err != nil {
		return errors.Wrap(err, "predicting training rows")
	}
	n := f.data.Rows()
	yTrue := mat.NewVecDense(n, f.data.Y)
	yPred := mat.NewVecDense(n, metrics.Column(pred, 0))

	fields := []any{
		log.ModelFamilyKey, f.family.String(),
		log.DurationMsKey, took.Milliseconds(),
	}
	if _, ok := f.est.(interface{ Classes() []int }); ok {
		acc, err := metrics.Accuracy(yTrue, yPred)
		if err != nil {
			return err
		}
		rate, err := metrics.ErrorRate(yTrue, yPred)
		if err != nil {
			return err
		}
		fields = append(fields, "accuracy", acc, "error_rate", rate)
	} else {
		r2, err := metrics.R2Score(yTrue, yPred)
		if err != nil {
			return err
		}
		mse, err := metrics.MSEMatrix(mat.NewDense(n, 1, f.data.Y), pred)
		if err != nil {
			return err
		}
		rmse, err := metrics.RMSE(yTrue, yPred)
		if err != nil {
			return err
		}
		mae, err := metrics.MAE(yTrue, yPred)
		if err != nil {
			return err
		}
		fields = append(fields, "r2", r2, "mse", mse, "rmse", rmse, "mae", mae)
	}
	logger.Info("fitted model", fields...)
	return nil
}
