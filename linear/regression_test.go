package linear

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/facetlab/facet/pkg/errors"
)

func TestRegressionFitPredict(t *testing.T) {
	// y = 1 + 2*x1 + 3*x2, exactly.
	X := mat.NewDense(5, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
		1, 1,
		2, 1,
	})
	y := mat.NewDense(5, 1, []float64{1, 3, 4, 6, 8})

	lr := NewRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if got := lr.GetIntercept(); math.Abs(got-1.0) > 1e-8 {
		t.Errorf("intercept = %v, want 1.0", got)
	}
	weights := lr.GetWeights()
	wantWeights := []float64{2.0, 3.0}
	for i, want := range wantWeights {
		if math.Abs(weights[i]-want) > 1e-8 {
			t.Errorf("weights[%d] = %v, want %v", i, weights[i], want)
		}
	}

	pred, err := lr.Predict(mat.NewDense(2, 2, []float64{3, 2, -1, 0}))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	wantPred := []float64{13, -1} // 1+6+6, 1-2+0
	for i, want := range wantPred {
		if got := pred.At(i, 0); math.Abs(got-want) > 1e-8 {
			t.Errorf("pred[%d] = %v, want %v", i, got, want)
		}
	}

	score, err := lr.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if math.Abs(score-1.0) > 1e-10 {
		t.Errorf("Score() = %v, want 1.0", score)
	}
}

func TestRegressionNotFitted(t *testing.T) {
	lr := NewRegression()
	X := mat.NewDense(2, 1, []float64{1, 2})

	_, err := lr.Predict(X)
	if err == nil {
		t.Fatal("Predict() before Fit() should fail")
	}
	var nf *errors.NotFittedError
	if !errors.As(err, &nf) {
		t.Errorf("Predict() error = %T, want *NotFittedError", err)
	}
}

func TestRegressionDimensionChecks(t *testing.T) {
	lr := NewRegression()
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 5, 5, 4})

	if err := lr.Fit(X, mat.NewDense(2, 1, []float64{1, 2})); err == nil {
		t.Error("Fit() with mismatched rows should fail")
	}
	if err := lr.Fit(X, mat.NewDense(3, 2, nil)); err == nil {
		t.Error("Fit() with a two-column target should fail")
	}

	y := mat.NewDense(3, 1, []float64{1, 2, 3})
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if _, err := lr.Predict(mat.NewDense(2, 3, nil)); err == nil {
		t.Error("Predict() with the wrong feature count should fail")
	}
}

func TestRegressionSingularMatrix(t *testing.T) {
	// Two identical columns make X^T X rank deficient.
	X := mat.NewDense(4, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
		4, 4,
	})
	y := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	lr := NewRegression()
	err := lr.Fit(X, y)
	if err == nil {
		t.Fatal("Fit() on collinear data should fail")
	}
	if !errors.Is(err, errors.ErrSingularMatrix) {
		t.Errorf("Fit() error = %v, want ErrSingularMatrix", err)
	}
}
