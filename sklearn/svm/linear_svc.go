// Package svm はサポートベクターマシンによる分類を提供する。
package svm

import (
	"math"
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/metrics"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
	"github.com/YuminosukeSato/diagplot/preprocessing"
	"github.com/YuminosukeSato/diagplot/sklearn/tree"
)

// LinearSVC は L1 ヒンジ損失の線形サポートベクター分類器。
// 双対座標降下法で解き、多クラスは one-vs-rest で扱う。
type LinearSVC struct {
	state *model.StateManager

	// ハイパーパラメータ
	C           float64 // 正則化パラメータ
	maxIter     int     // 最大エポック数
	tol         float64 // 射影勾配の幅による収束判定
	standardize bool    // 学習前に StandardScaler を通すか
	randomState int64   // 座標の巡回順序の乱数シード

	// 学習パラメータ
	coef_      [][]float64 // クラス数（二値では1） x 特徴数
	intercept_ []float64
	classes_   []int
	nIter_     int

	scaler *preprocessing.StandardScaler
}

// Option は LinearSVC の設定オプション
type Option func(*LinearSVC)

// WithC は正則化パラメータを設定する
func WithC(c float64) Option { return func(s *LinearSVC) { s.C = c } }

// WithMaxIter は最大エポック数を設定する
func WithMaxIter(n int) Option { return func(s *LinearSVC) { s.maxIter = n } }

// WithTol は収束判定の許容誤差を設定する
func WithTol(tol float64) Option { return func(s *LinearSVC) { s.tol = tol } }

// WithStandardize は特徴量を標準化してから学習するかを設定する
func WithStandardize(on bool) Option { return func(s *LinearSVC) { s.standardize = on } }

// WithRandomState は乱数シードを設定する
func WithRandomState(seed int64) Option { return func(s *LinearSVC) { s.randomState = seed } }

// NewLinearSVC は新しい LinearSVC を作成する
func NewLinearSVC(opts ...Option) *LinearSVC {
	s := &LinearSVC{
		state:       model.NewStateManager(),
		C:           1.0,
		maxIter:     1000,
		tol:         1e-4,
		randomState: 0,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Family はサポートベクターファミリーを返す
func (s *LinearSVC) Family() model.Family { return model.FamilySupportVector }

// IsFitted は学習済みかどうかを返す
func (s *LinearSVC) IsFitted() bool { return s.state.IsFitted() }

// Classes は学習時に観測したクラスラベルを昇順で返す
func (s *LinearSVC) Classes() []int { return slices.Clone(s.classes_) }

// Coef は（標準化後の空間での）重みを返す
func (s *LinearSVC) Coef() [][]float64 {
	out := make([][]float64, len(s.coef_))
	for i, c := range s.coef_ {
		out[i] = slices.Clone(c)
	}
	return out
}

// Intercept は切片を返す
func (s *LinearSVC) Intercept() []float64 { return slices.Clone(s.intercept_) }

// Fit はモデルを訓練データで学習させる
func (s *LinearSVC) Fit(X, y mat.Matrix) error {
	if s.C <= 0 {
		return errors.NewValueError("LinearSVC.Fit", "C must be positive")
	}
	classes, idx, err := tree.EncodeLabels("LinearSVC.Fit", X, y)
	if err != nil {
		return err
	}
	if len(classes) < 2 {
		return errors.NewValueError("LinearSVC.Fit", "need at least 2 classes")
	}
	s.state.Reset()

	Xw := mat.Matrix(X)
	if s.standardize {
		s.scaler = preprocessing.NewStandardScalerDefault()
		if Xw, err = s.scaler.FitTransform(X); err != nil {
			return err
		}
	} else {
		s.scaler = nil
	}

	n, p := X.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, Xw)
	}

	nModels := len(classes)
	if nModels == 2 {
		nModels = 1
	}
	s.coef_ = make([][]float64, nModels)
	s.intercept_ = make([]float64, nModels)
	s.nIter_ = 0
	rng := rand.New(rand.NewSource(s.randomState))

	for k := 0; k < nModels; k++ {
		target := k
		if nModels == 1 {
			target = 1
		}
		signs := make([]float64, n)
		for i := range signs {
			signs[i] = -1
			if int(idx[i]) == target {
				signs[i] = 1
			}
		}
		w, b, iters := s.solveDual(rows, signs, rng)
		s.coef_[k] = w
		s.intercept_[k] = b
		s.nIter_ = max(s.nIter_, iters)
	}
	if s.nIter_ >= s.maxIter {
		errors.Warn(errors.NewConvergenceWarning("LinearSVC", s.nIter_, "dual coordinate descent reached max_iter"))
	}

	s.classes_ = classes
	s.state.SetFitted(p, n)
	return nil
}

// solveDual は 0 <= α_i <= C の双対問題を座標ごとに解く。
// 切片は値 1 の追加特徴量として扱う。
func (s *LinearSVC) solveDual(rows [][]float64, y []float64, rng *rand.Rand) ([]float64, float64, int) {
	n := len(rows)
	p := len(rows[0])
	w := make([]float64, p)
	b := 0.0
	alpha := make([]float64, n)
	qd := make([]float64, n)
	for i, x := range rows {
		qd[i] = floats.Dot(x, x) + 1
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	iter := 0
	for iter < s.maxIter {
		iter++
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		maxPG, minPG := math.Inf(-1), math.Inf(1)
		for _, i := range order {
			g := y[i]*(floats.Dot(w, rows[i])+b) - 1
			pg := g
			switch {
			case alpha[i] == 0:
				pg = math.Min(g, 0)
			case alpha[i] == s.C:
				pg = math.Max(g, 0)
			}
			maxPG = math.Max(maxPG, pg)
			minPG = math.Min(minPG, pg)
			if math.Abs(pg) < 1e-12 {
				continue
			}
			old := alpha[i]
			alpha[i] = math.Min(math.Max(old-g/qd[i], 0), s.C)
			d := (alpha[i] - old) * y[i]
			floats.AddScaled(w, d, rows[i])
			b += d
		}
		if maxPG-minPG < s.tol {
			break
		}
	}
	return w, b, iter
}

func (s *LinearSVC) prepare(method string, X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("LinearSVC", method); err != nil {
		return nil, err
	}
	if err := s.state.RequireFeatures("LinearSVC."+method, X); err != nil {
		return nil, err
	}
	if s.scaler != nil {
		return s.scaler.Transform(X)
	}
	return X, nil
}

// DecisionFunction は各クラスの超平面への符号付き距離を返す。
// 二値分類では n×1（正が Classes()[1] 側）、多クラスでは n×k。
func (s *LinearSVC) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	Xw, err := s.prepare("DecisionFunction", X)
	if err != nil {
		return nil, err
	}
	r, _ := Xw.Dims()
	k := len(s.coef_)
	W := mat.NewDense(k, len(s.coef_[0]), nil)
	for c, w := range s.coef_ {
		W.SetRow(c, w)
	}
	var out mat.Dense
	out.Mul(Xw, W.T())
	for i := 0; i < r; i++ {
		for c := 0; c < k; c++ {
			out.Set(i, c, out.At(i, c)+s.intercept_[c])
		}
	}
	return &out, nil
}

// Predict は入力データのクラスラベルを返す
func (s *LinearSVC) Predict(X mat.Matrix) (mat.Matrix, error) {
	scores, err := s.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	r, k := scores.Dims()
	if k > 1 {
		return tree.ArgmaxLabels(scores, s.classes_), nil
	}
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		label := s.classes_[0]
		if scores.At(i, 0) > 0 {
			label = s.classes_[1]
		}
		out.Set(i, 0, float64(label))
	}
	return out, nil
}

// Score は平均正解率を返す
func (s *LinearSVC) Score(X, y mat.Matrix) (float64, error) {
	pred, err := s.Predict(X)
	if err != nil {
		return 0, err
	}
	r, _ := y.Dims()
	return metrics.Accuracy(mat.NewVecDense(r, metrics.Column(y, 0)), mat.NewVecDense(r, metrics.Column(pred, 0)))
}
