package linear

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/facetlab/facet/pkg/errors"
)

func TestElasticNetLowPenaltyRecoversLine(t *testing.T) {
	// y = 1 + 2x. With a vanishing penalty the coordinate descent
	// solution approaches least squares.
	X := mat.NewDense(5, 1, []float64{-2, -1, 0, 1, 2})
	y := mat.NewDense(5, 1, []float64{-3, -1, 1, 3, 5})

	en := NewElasticNet(WithAlpha(1e-6), WithTol(1e-8), WithMaxIter(10000))
	if err := en.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if got := en.Weights.AtVec(0); math.Abs(got-2.0) > 1e-3 {
		t.Errorf("weight = %v, want ~2.0", got)
	}
	if math.Abs(en.Intercept-1.0) > 1e-3 {
		t.Errorf("intercept = %v, want ~1.0", en.Intercept)
	}

	score, err := en.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score < 0.999 {
		t.Errorf("Score() = %v, want near 1.0", score)
	}
}

func TestElasticNetHeavyL1ZeroesWeights(t *testing.T) {
	X := mat.NewDense(5, 1, []float64{-2, -1, 0, 1, 2})
	y := mat.NewDense(5, 1, []float64{-3, -1, 1, 3, 5})

	en := NewElasticNet(WithAlpha(10.0), WithL1Ratio(1.0))
	if err := en.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if got := en.Weights.AtVec(0); got != 0 {
		t.Errorf("weight = %v, want exactly 0 under a dominating L1 penalty", got)
	}
	if math.Abs(en.Intercept-1.0) > 1e-8 {
		t.Errorf("intercept = %v, want the target mean 1.0", en.Intercept)
	}
}

func TestElasticNetShrinksTowardZero(t *testing.T) {
	X := mat.NewDense(5, 1, []float64{-2, -1, 0, 1, 2})
	y := mat.NewDense(5, 1, []float64{-3, -1, 1, 3, 5})

	weak := NewElasticNet(WithAlpha(0.01), WithTol(1e-8), WithMaxIter(10000))
	if err := weak.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	strong := NewElasticNet(WithAlpha(1.0), WithTol(1e-8), WithMaxIter(10000))
	if err := strong.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if math.Abs(strong.Weights.AtVec(0)) >= math.Abs(weak.Weights.AtVec(0)) {
		t.Errorf("stronger penalty should shrink the weight: weak=%v strong=%v",
			weak.Weights.AtVec(0), strong.Weights.AtVec(0))
	}
}

func TestElasticNetValidation(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1, 2})
	y := mat.NewDense(2, 1, []float64{1, 2})

	if err := NewElasticNet(WithAlpha(-1)).Fit(X, y); err == nil {
		t.Error("Fit() with negative alpha should fail")
	}
	if err := NewElasticNet(WithL1Ratio(1.5)).Fit(X, y); err == nil {
		t.Error("Fit() with l1_ratio above 1 should fail")
	}
	if err := NewElasticNet().Fit(X, mat.NewDense(3, 1, nil)); err == nil {
		t.Error("Fit() with mismatched rows should fail")
	}
}

func TestElasticNetConvergenceWarning(t *testing.T) {
	var warned error
	errors.SetWarningHandler(func(w error) { warned = w })
	defer errors.SetWarningHandler(nil)

	X := mat.NewDense(5, 1, []float64{-2, -1, 0, 1, 2})
	y := mat.NewDense(5, 1, []float64{-3, -1, 1, 3, 5})

	en := NewElasticNet(WithAlpha(1e-6), WithTol(1e-15), WithMaxIter(1))
	if err := en.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if !en.IsFitted() {
		t.Error("model should be fitted even without convergence")
	}

	if warned == nil {
		t.Fatal("expected a convergence warning")
	}
	var cw *errors.ConvergenceWarning
	if !errors.As(warned, &cw) {
		t.Errorf("warning = %T, want *ConvergenceWarning", warned)
	}
}

func TestElasticNetGetParams(t *testing.T) {
	en := NewElasticNet(WithAlpha(0.5), WithL1Ratio(0.3))
	params := en.GetParams()

	if params["alpha"] != 0.5 {
		t.Errorf("alpha = %v, want 0.5", params["alpha"])
	}
	if params["l1_ratio"] != 0.3 {
		t.Errorf("l1_ratio = %v, want 0.3", params["l1_ratio"])
	}
}
