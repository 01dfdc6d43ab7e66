package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "Fit",
			kind:     "invalid input",
			err:      fmt.Errorf("test error"),
			wantMsg:  "facet: Fit: invalid input: test error",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "Predict",
			kind:     "not fitted",
			err:      nil,
			wantMsg:  "facet: Predict: not fitted",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestModelErrorUnwrap(t *testing.T) {
	err := NewModelError("Regression.Fit", "singular matrix", ErrSingularMatrix)
	if !Is(err, ErrSingularMatrix) {
		t.Error("ModelError should unwrap to its sentinel cause")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("ElasticNet", "Predict")

	want := "facet: ElasticNet: this estimator is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var nfErr *NotFittedError
	if !As(err, &nfErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
	if nfErr.ModelName != "ElasticNet" {
		t.Errorf("ModelName = %v, want ElasticNet", nfErr.ModelName)
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 10, 8, 0)

	if !strings.Contains(err.Error(), "facet: Predict") {
		t.Errorf("Error() = %v, want op prefix", err.Error())
	}
	if !strings.Contains(err.Error(), "10") || !strings.Contains(err.Error(), "8") {
		t.Errorf("Error() = %v, want expected and got dimensions", err.Error())
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("alpha", "must be non-negative", -1.0)

	var valErr *ValidationError
	if !As(err, &valErr) {
		t.Fatal("Error should be castable to *ValidationError")
	}
	if valErr.ParamName != "alpha" {
		t.Errorf("ParamName = %v, want alpha", valErr.ParamName)
	}
}

func TestConvergenceWarning(t *testing.T) {
	w := NewConvergenceWarning("ElasticNet", 1000, "did not reach tolerance")

	msg := w.Error()
	if !strings.Contains(msg, "ElasticNet") {
		t.Errorf("Error() = %v, want algorithm name", msg)
	}
	if !strings.Contains(msg, "1000") {
		t.Errorf("Error() = %v, want iteration count", msg)
	}

	short := NewConvergenceWarning("MLP", 500, "")
	if !strings.Contains(short.Error(), "Consider increasing") {
		t.Errorf("Error() = %v, want default advice", short.Error())
	}
}

func TestWarningHandler(t *testing.T) {
	var got error
	SetWarningHandler(func(w error) { got = w })
	defer SetWarningHandler(nil)

	warning := NewConvergenceWarning("ElasticNet", 100, "")
	Warn(warning)

	if got == nil {
		t.Fatal("handler was not invoked")
	}
	var cw *ConvergenceWarning
	if !As(got, &cw) {
		t.Errorf("handler received %T, want *ConvergenceWarning", got)
	}
}

func TestSentinels(t *testing.T) {
	wrapped := Wrapf(ErrUnknownCategory, "column cut: %q", "Shiny")
	if !Is(wrapped, ErrUnknownCategory) {
		t.Error("wrapped sentinel should still match")
	}
	if !strings.Contains(wrapped.Error(), "Shiny") {
		t.Errorf("Error() = %v, want wrap context", wrapped.Error())
	}
}
