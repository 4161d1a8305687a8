package linear

// Option は LinearRegression を設定する関数
type Option func(*LinearRegression)

// WithFitIntercept は切片を推定するかどうかを設定する（デフォルト true）
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

// WithParallelThreshold は計画行列の構築を並列化する行数の閾値を設定する
func WithParallelThreshold(rows int) Option {
	return func(lr *LinearRegression) {
		lr.parallelThreshold = rows
	}
}

// WithFeatureNames は特徴量名を設定する（プロットの軸ラベルに使われる）
func WithFeatureNames(names ...string) Option {
	return func(lr *LinearRegression) {
		lr.featureNames = append([]string(nil), names...)
	}
}
