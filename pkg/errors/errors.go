// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 診断プロットの失敗分類（未対応モデル、未対応プロット種別、不正引数、未対応の組み合わせ、
// 描画失敗）と、致命的でない状態を通知する警告シンクを含みます。
package errors

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("diagplot-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// 以前のハンドラを返すので、テストでは defer で戻せます。
//
// 例:
//
//	prev := errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
//	defer errors.SetWarningHandler(prev)
func SetWarningHandler(handler func(w error)) func(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	prev := warningHandler
	warningHandler = handler
	return prev
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// OutputDirectoryWarning は出力先ディレクトリが存在せず、作成も許可されていないため
// 保存をスキップしたことを示す警告です。
type OutputDirectoryWarning struct {
	Path string
	Dir  string
}

func (w *OutputDirectoryWarning) Error() string {
	return fmt.Sprintf("directory %q does not exist and creation is not allowed; skipping save of %q", w.Dir, w.Path)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *OutputDirectoryWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("path", w.Path).
		Str("dir", w.Dir).
		Str("type", "OutputDirectoryWarning")
}

// NewOutputDirectoryWarning は新しいOutputDirectoryWarningを作成します。
func NewOutputDirectoryWarning(path, dir string) *OutputDirectoryWarning {
	return &OutputDirectoryWarning{Path: path, Dir: dir}
}

// ConvergenceWarning は反復アルゴリズムが収束しなかった場合に発生する警告です。
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing max_iter or adjusting parameters.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning は新しいConvergenceWarningを作成します。
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// ===========================================================================
//
//	診断プロットのエラー分類
//
// ===========================================================================

// UnsupportedModelTypeError はモデルがどのファミリーの能力セットも満たさない場合のエラーです。
type UnsupportedModelTypeError struct {
	Got     string
	Allowed []string
	Reason  string
}

func (e *UnsupportedModelTypeError) Error() string {
	msg := fmt.Sprintf("diagplot: unsupported model type %s; allowed families: %s", e.Got, strings.Join(e.Allowed, ", "))
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedModelTypeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("got", e.Got).
		Strs("allowed", e.Allowed).
		Str("reason", e.Reason).
		Str("type", "UnsupportedModelType")
}

// NewUnsupportedModelTypeError は新しいUnsupportedModelTypeErrorを作成し、スタックトレースを付与します。
func NewUnsupportedModelTypeError(got string, allowed []string, reason string) error {
	return errors.WithStack(&UnsupportedModelTypeError{Got: got, Allowed: allowed, Reason: reason})
}

// UnsupportedPlotTypeError は許可リストにないプロット種別が要求された場合のエラーです。
type UnsupportedPlotTypeError struct {
	Got   string
	Valid []string
}

func (e *UnsupportedPlotTypeError) Error() string {
	return fmt.Sprintf("diagplot: unsupported plot type %q; valid values: %s", e.Got, strings.Join(e.Valid, ", "))
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedPlotTypeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("got", e.Got).
		Strs("valid", e.Valid).
		Str("type", "UnsupportedPlotType")
}

// NewUnsupportedPlotTypeError は新しいUnsupportedPlotTypeErrorを作成し、スタックトレースを付与します。
func NewUnsupportedPlotTypeError(got string, valid []string) error {
	return errors.WithStack(&UnsupportedPlotTypeError{Got: got, Valid: valid})
}

// InvalidArgumentError はキャンバスサイズや色などの引数が不正な場合のエラーです。
type InvalidArgumentError struct {
	Name   string
	Reason string
	Value  interface{}
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("diagplot: invalid argument '%s': %s (got: %v)", e.Name, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidArgumentError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("name", e.Name).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "InvalidArgument")
}

// NewInvalidArgumentError は新しいInvalidArgumentErrorを作成し、スタックトレースを付与します。
func NewInvalidArgumentError(name, reason string, value interface{}) error {
	return errors.WithStack(&InvalidArgumentError{Name: name, Reason: reason, Value: value})
}

// UnsupportedCombinationError はプロット種別とモデルファミリーの組み合わせが成立しない場合のエラーです。
type UnsupportedCombinationError struct {
	Kind   string
	Family string
	Reason string
}

func (e *UnsupportedCombinationError) Error() string {
	return fmt.Sprintf("diagplot: plot type %q is not supported for %s models: %s", e.Kind, e.Family, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedCombinationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("kind", e.Kind).
		Str("family", e.Family).
		Str("reason", e.Reason).
		Str("type", "UnsupportedCombination")
}

// NewUnsupportedCombinationError は新しいUnsupportedCombinationErrorを作成し、スタックトレースを付与します。
func NewUnsupportedCombinationError(kind, family, reason string) error {
	return errors.WithStack(&UnsupportedCombinationError{Kind: kind, Family: family, Reason: reason})
}

// RenderingError は統計量の計算や描画ライブラリの呼び出しで発生したエラーを包みます。
// 元のエラーは Unwrap で取り出せます。
type RenderingError struct {
	Op  string
	Err error
}

func (e *RenderingError) Error() string {
	return fmt.Sprintf("diagplot: %s: rendering failed: %v", e.Op, e.Err)
}

func (e *RenderingError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *RenderingError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		AnErr("cause", e.Err).
		Str("type", "RenderingFailure")
}

// NewRenderingError は新しいRenderingErrorを作成し、スタックトレースを付与します。
// すでに RenderingError の場合はそのまま返します。
func NewRenderingError(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RenderingError
	if errors.As(err, &re) {
		return err
	}
	return errors.WithStack(&RenderingError{Op: op, Err: err})
}

// ===========================================================================
//
//	推定器のエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` や診断量を要求した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("diagplot: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("diagplot: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("diagplot: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ModelError は機械学習モデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("diagplot: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("diagplot: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	var b strings.Builder
	for i, v := range e.Values {
		if i > 0 {
			b.WriteString(", ")
		}
		if i >= 5 {
			b.WriteString("...")
			break
		}
		fmt.Fprintf(&b, "%.6g", v)
	}
	return fmt.Sprintf("diagplot: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, b.String())
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return errors.WithStack(&NumericalInstabilityError{Operation: operation, Values: values, Iteration: iteration})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")

	// ErrStatisticUnavailable はそのファミリーでは定義されない診断統計量を要求した場合のエラーです。
	ErrStatisticUnavailable = New("statistic unavailable for this model family")
)
