package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/facetlab/facet/core/model"
	"github.com/facetlab/facet/pkg/errors"
)

// ElasticNet is a linear model regularized with a mixture of L1 and L2
// penalties, fitted by cyclic coordinate descent. The objective is
//
//	(1/2n) ||y - Xw - b||^2 + alpha * (l1Ratio*||w||_1 + (1-l1Ratio)/2*||w||_2^2)
//
// With l1Ratio=1 this is the lasso, with l1Ratio=0 ridge regression.
type ElasticNet struct {
	model.BaseEstimator

	// Hyperparameters
	alpha        float64 // overall penalty strength
	l1Ratio      float64 // L1/L2 mixture in [0, 1]
	maxIter      int
	tol          float64
	fitIntercept bool

	// Learned parameters
	Weights   *mat.VecDense
	Intercept float64
	NFeatures int
	NIter     int // iterations actually run
}

// NewElasticNet creates an elastic net model with the given options.
// Defaults: alpha=1.0, l1Ratio=0.5, maxIter=1000, tol=1e-4, intercept on.
func NewElasticNet(options ...ElasticNetOption) *ElasticNet {
	en := &ElasticNet{
		alpha:        1.0,
		l1Ratio:      0.5,
		maxIter:      1000,
		tol:          1e-4,
		fitIntercept: true,
	}
	for _, opt := range options {
		opt(en)
	}
	return en
}

// Alpha returns the penalty strength.
func (en *ElasticNet) Alpha() float64 { return en.alpha }

// L1Ratio returns the L1/L2 mixture.
func (en *ElasticNet) L1Ratio() float64 { return en.l1Ratio }

// GetParams returns the model's hyperparameters.
func (en *ElasticNet) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":         en.alpha,
		"l1_ratio":      en.l1Ratio,
		"max_iter":      en.maxIter,
		"tol":           en.tol,
		"fit_intercept": en.fitIntercept,
	}
}

// Fit runs cyclic coordinate descent until the largest coefficient
// update falls below tol. Hitting maxIter raises a ConvergenceWarning
// but the model stays usable.
func (en *ElasticNet) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("ElasticNet.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("ElasticNet.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("ElasticNet.Fit", "y must be a column vector")
	}
	if en.alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", en.alpha)
	}
	if en.l1Ratio < 0 || en.l1Ratio > 1 {
		return errors.NewValidationError("l1_ratio", "must be in [0, 1]", en.l1Ratio)
	}

	en.NFeatures = c
	n := float64(r)

	// Column views and per-feature squared norms, fixed for the run.
	cols := make([][]float64, c)
	colSq := make([]float64, c)
	for j := 0; j < c; j++ {
		cols[j] = make([]float64, r)
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			cols[j][i] = v
			colSq[j] += v * v
		}
		colSq[j] /= n
	}

	w := make([]float64, c)
	b := 0.0
	if en.fitIntercept {
		for i := 0; i < r; i++ {
			b += y.At(i, 0)
		}
		b /= n
	}

	// residual = y - Xw - b, maintained incrementally.
	residual := make([]float64, r)
	for i := 0; i < r; i++ {
		residual[i] = y.At(i, 0) - b
	}

	l1Penalty := en.alpha * en.l1Ratio
	l2Penalty := en.alpha * (1 - en.l1Ratio)

	converged := false
	iter := 0
	for ; iter < en.maxIter; iter++ {
		maxDelta := 0.0

		for j := 0; j < c; j++ {
			if colSq[j] == 0 {
				continue
			}
			// rho is the partial correlation with the residual that
			// excludes feature j's own contribution.
			rho := 0.0
			for i := 0; i < r; i++ {
				rho += cols[j][i] * (residual[i] + cols[j][i]*w[j])
			}
			rho /= n

			wNew := softThreshold(rho, l1Penalty) / (colSq[j] + l2Penalty)
			if wNew != w[j] {
				delta := w[j] - wNew
				for i := 0; i < r; i++ {
					residual[i] += cols[j][i] * delta
				}
				if math.Abs(delta) > maxDelta {
					maxDelta = math.Abs(delta)
				}
				w[j] = wNew
			}
		}

		if en.fitIntercept {
			shift := 0.0
			for i := 0; i < r; i++ {
				shift += residual[i]
			}
			shift /= n
			if shift != 0 {
				b += shift
				for i := 0; i < r; i++ {
					residual[i] -= shift
				}
				if math.Abs(shift) > maxDelta {
					maxDelta = math.Abs(shift)
				}
			}
		}

		if maxDelta < en.tol {
			converged = true
			iter++
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("ElasticNet", en.maxIter,
			"coordinate descent did not reach tolerance"))
	}

	en.NIter = iter
	en.Intercept = b
	en.Weights = mat.NewVecDense(c, w)
	en.SetFitted()
	return nil
}

// softThreshold is the proximal operator of the L1 penalty.
func softThreshold(z, gamma float64) float64 {
	switch {
	case z > gamma:
		return z - gamma
	case z < -gamma:
		return z + gamma
	default:
		return 0
	}
}

// Predict returns predictions as an n x 1 matrix.
func (en *ElasticNet) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !en.IsFitted() {
		return nil, errors.NewNotFittedError("ElasticNet", "Predict")
	}

	r, c := X.Dims()
	if c != en.NFeatures {
		return nil, errors.NewDimensionError("ElasticNet.Predict", en.NFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := en.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * en.Weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}
	return predictions, nil
}

// Score returns the coefficient of determination R^2.
func (en *ElasticNet) Score(X, y mat.Matrix) (float64, error) {
	if !en.IsFitted() {
		return 0, errors.NewNotFittedError("ElasticNet", "Score")
	}
	yPred, err := en.Predict(X)
	if err != nil {
		return 0, err
	}
	return r2(y, yPred)
}

// r2 computes R^2 between a target and a prediction column.
func r2(y, yPred mat.Matrix) (float64, error) {
	r, _ := y.Dims()

	var yMean float64
	for i := 0; i < r; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(r)

	var tss, rss float64
	for i := 0; i < r; i++ {
		yTrue := y.At(i, 0)
		yPredVal := yPred.At(i, 0)
		tss += (yTrue - yMean) * (yTrue - yMean)
		rss += (yTrue - yPredVal) * (yTrue - yPredVal)
	}
	if tss == 0 {
		return 0, errors.Newf("total sum of squares is zero")
	}
	return 1 - rss/tss, nil
}
