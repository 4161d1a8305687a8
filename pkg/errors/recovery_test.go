package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestRecover_WithPanic tests the Recover function when a panic occurs
func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		panic("test panic message")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if panicErr.Operation != "TestOperation" {
		t.Errorf("Expected operation 'TestOperation', got '%s'", panicErr.Operation)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}
	if panicErr.Error() != "panic in TestOperation: test panic message" {
		t.Errorf("unexpected message %q", panicErr.Error())
	}
}

// TestRecover_WithoutPanic tests the Recover function when no panic occurs
func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		return nil
	}

	if err := testFunc(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

// TestRecover_KeepsExistingError checks the original error stays in the chain
func TestRecover_KeepsExistingError(t *testing.T) {
	base := fmt.Errorf("original")
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		err = base
		panic("late panic")
	}

	err := testFunc()
	if !errors.Is(err, base) {
		t.Errorf("expected original error in chain, got %v", err)
	}
	if !strings.Contains(err.Error(), "late panic") {
		t.Errorf("expected panic value in message, got %v", err)
	}
}

func TestSafeExecute(t *testing.T) {
	t.Run("panic becomes RenderingError", func(t *testing.T) {
		err := SafeExecute("static.draw", func() error {
			var m map[string]int
			m["boom"]++
			return nil
		})

		var re *RenderingError
		if !As(err, &re) {
			t.Fatalf("expected *RenderingError, got %T", err)
		}
		var pe *PanicError
		if !As(err, &pe) {
			t.Error("expected the PanicError to be reachable through Unwrap")
		}
	})

	t.Run("returned error becomes RenderingError", func(t *testing.T) {
		cause := fmt.Errorf("bad axis")
		err := SafeExecute("static.draw", func() error { return cause })
		if !Is(err, cause) {
			t.Errorf("expected cause in chain, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		if err := SafeExecute("noop", func() error { return nil }); err != nil {
			t.Errorf("unexpected error %v", err)
		}
	})
}
