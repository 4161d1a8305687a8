package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

// Accuracy は予測ラベルが真のラベルと一致した割合を返す
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ErrorRate は 1 - Accuracy を返す
func ErrorRate(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, errors.Wrap(err, "ErrorRate")
	}
	return 1 - acc, nil
}
