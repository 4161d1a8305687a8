package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Fit",
			kind:    "invalid input",
			err:     fmt.Errorf("test error"),
			wantMsg: "diagplot: Fit: invalid input: test error",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "diagplot: Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			// 基本的なエラーメッセージの確認
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewUnsupportedPlotTypeError(t *testing.T) {
	err := NewUnsupportedPlotTypeError("banana", []string{"residual", "qq"})

	want := `diagplot: unsupported plot type "banana"; valid values: residual, qq`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var pe *UnsupportedPlotTypeError
	if !As(err, &pe) {
		t.Fatal("Error should be castable to *UnsupportedPlotTypeError")
	}
	if len(pe.Valid) != 2 {
		t.Errorf("Valid = %v, want 2 entries", pe.Valid)
	}
}

func TestNewUnsupportedModelTypeError(t *testing.T) {
	err := NewUnsupportedModelTypeError("*main.custom", []string{"linear", "support_vector"}, "")

	if !strings.Contains(err.Error(), "allowed families: linear, support_vector") {
		t.Errorf("Error() = %v, should list allowed families", err.Error())
	}

	withReason := NewUnsupportedModelTypeError("*main.custom", []string{"linear"}, "missing Leverage")
	if !strings.HasSuffix(withReason.Error(), "(missing Leverage)") {
		t.Errorf("Error() = %v, should end with the reason", withReason.Error())
	}
}

func TestNewInvalidArgumentError(t *testing.T) {
	err := NewInvalidArgumentError("size", "must contain exactly two numbers", []float64{1, 2, 3})

	want := "diagplot: invalid argument 'size': must contain exactly two numbers (got: [1 2 3])"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestNewUnsupportedCombinationError(t *testing.T) {
	err := NewUnsupportedCombinationError("decision_boundary", "linear", "requires a support_vector model")

	var ce *UnsupportedCombinationError
	if !As(err, &ce) {
		t.Fatal("Error should be castable to *UnsupportedCombinationError")
	}
	if ce.Kind != "decision_boundary" || ce.Family != "linear" {
		t.Errorf("unexpected fields: %+v", ce)
	}
}

func TestNewRenderingError(t *testing.T) {
	cause := fmt.Errorf("canvas too small")
	err := NewRenderingError("static.draw", cause)

	// 元のエラーがチェーンに残ること
	if !Is(err, cause) {
		t.Error("RenderingError should unwrap to its cause")
	}

	// 二重に包まないこと
	again := NewRenderingError("outer", err)
	var re *RenderingError
	if !As(again, &re) || re.Op != "static.draw" {
		t.Errorf("expected the original RenderingError to be kept, got %v", again)
	}

	if NewRenderingError("noop", nil) != nil {
		t.Error("nil cause should produce nil error")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("LinearRegression", "Predict")

	want := "diagplot: LinearRegression: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 2, 3, 1)

	want := "diagplot: Predict: dimension mismatch on axis 1 (features). Expected 2, got 3"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWarn(t *testing.T) {
	var got []error
	prev := SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(prev)

	Warn(NewOutputDirectoryWarning("/tmp/missing/out.svg", "/tmp/missing"))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	var dw *OutputDirectoryWarning
	if !As(got[0], &dw) {
		t.Fatalf("expected *OutputDirectoryWarning, got %T", got[0])
	}

	// zerolog関数が設定されていればそちらが優先される
	var viaZerolog int
	SetZerologWarnFunc(func(error) { viaZerolog++ })
	defer SetZerologWarnFunc(nil)
	Warn(NewConvergenceWarning("IRLS", 25, ""))
	if viaZerolog != 1 || len(got) != 1 {
		t.Errorf("zerolog func should take precedence: zerolog=%d handler=%d", viaZerolog, len(got))
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d, got %d", "Predict", 10, 5)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}

	expectedMsg := "in Predict: expected 10, got 5"
	if !strings.Contains(wrapped.Error(), expectedMsg) {
		t.Errorf("Expected wrapped error to contain %q", expectedMsg)
	}
}
