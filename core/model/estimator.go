package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う（n×1 の列ベクトルを返す）
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Estimator は Fit と Predict を両方持つ教師あり学習モデル
type Estimator interface {
	Fitter
	Predictor
}

// Classifier は分類モデルのインターフェース
type Classifier interface {
	Estimator

	// PredictProba は各クラスの所属確率を返す（列は Classes() の順）
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes は学習時に観測したクラスラベルを昇順で返す
	Classes() []int
}
