package tuning

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/facetlab/facet/core/model"
	"github.com/facetlab/facet/metrics"
	"github.com/facetlab/facet/pkg/errors"
	"github.com/facetlab/facet/pkg/log"
)

// ModelFactory builds a fresh, unfitted model. Cross-validation fits
// one instance per fold so fold results stay independent.
type ModelFactory func() model.Regressor

// FoldScore holds the validation metrics of one fold.
type FoldScore struct {
	R2   float64
	MAE  float64
	RMSE float64
}

// CVResult aggregates the per-fold validation scores of one model.
type CVResult struct {
	FoldScores []FoldScore
}

// MeanR2 returns the mean validation R^2 over the folds.
func (cv *CVResult) MeanR2() float64 {
	return cv.mean(func(s FoldScore) float64 { return s.R2 })
}

// MeanMAE returns the mean validation MAE over the folds.
func (cv *CVResult) MeanMAE() float64 {
	return cv.mean(func(s FoldScore) float64 { return s.MAE })
}

// MeanRMSE returns the mean validation RMSE over the folds.
func (cv *CVResult) MeanRMSE() float64 {
	return cv.mean(func(s FoldScore) float64 { return s.RMSE })
}

// StdRMSE returns the sample standard deviation of the fold RMSEs.
func (cv *CVResult) StdRMSE() float64 {
	n := len(cv.FoldScores)
	if n <= 1 {
		return 0
	}
	mean := cv.MeanRMSE()
	sumSq := 0.0
	for _, s := range cv.FoldScores {
		diff := s.RMSE - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

func (cv *CVResult) mean(pick func(FoldScore) float64) float64 {
	if len(cv.FoldScores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range cv.FoldScores {
		sum += pick(s)
	}
	return sum / float64(len(cv.FoldScores))
}

// CrossValidate evaluates the factory's model with k-fold
// cross-validation. Folds run concurrently; each fold fits a fresh
// model on its training rows and scores the held-out rows.
func CrossValidate(factory ModelFactory, X, y mat.Matrix, kf *KFold) (*CVResult, error) {
	if factory == nil {
		return nil, errors.NewValueError("CrossValidate", "nil model factory")
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("CrossValidate", "empty data", errors.ErrEmptyData)
	}
	if kf.NSplits > r {
		return nil, errors.NewValueError("CrossValidate", "more folds than samples")
	}

	folds := kf.Split(X)
	nFolds := len(folds)

	result := &CVResult{FoldScores: make([]FoldScore, nFolds)}
	foldErrs := make([]error, nFolds)

	logger := log.GetLoggerWithName("tuning.crossval")

	var wg sync.WaitGroup
	for foldIdx := 0; foldIdx < nFolds; foldIdx++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			fold := folds[idx]
			trainX, trainY := extractSubset(X, y, fold.TrainIndices)
			testX, testY := extractSubset(X, y, fold.TestIndices)

			m := factory()
			if err := m.Fit(trainX, trainY); err != nil {
				foldErrs[idx] = errors.Wrapf(err, "fold %d training failed", idx)
				return
			}

			pred, err := m.Predict(testX)
			if err != nil {
				foldErrs[idx] = errors.Wrapf(err, "fold %d prediction failed", idx)
				return
			}

			score, err := scoreFold(testY, pred)
			if err != nil {
				foldErrs[idx] = errors.Wrapf(err, "fold %d scoring failed", idx)
				return
			}
			result.FoldScores[idx] = score

			logger.Debug("fold evaluated",
				log.FoldKey, idx,
				log.R2ScoreKey, score.R2,
				log.RMSEKey, score.RMSE,
			)
		}(foldIdx)
	}
	wg.Wait()

	for _, err := range foldErrs {
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// scoreFold computes the validation metrics for one fold.
func scoreFold(yTrue mat.Matrix, yPred mat.Matrix) (FoldScore, error) {
	trueVec, err := metrics.ColumnVec(yTrue)
	if err != nil {
		return FoldScore{}, err
	}
	predVec, err := metrics.ColumnVec(yPred)
	if err != nil {
		return FoldScore{}, err
	}

	r2, err := metrics.R2Score(trueVec, predVec)
	if err != nil {
		return FoldScore{}, err
	}
	mae, err := metrics.MAE(trueVec, predVec)
	if err != nil {
		return FoldScore{}, err
	}
	rmse, err := metrics.RMSE(trueVec, predVec)
	if err != nil {
		return FoldScore{}, err
	}
	return FoldScore{R2: r2, MAE: mae, RMSE: rmse}, nil
}

// extractSubset copies the rows at indices out of X and y.
func extractSubset(X, y mat.Matrix, indices []int) (mat.Matrix, mat.Matrix) {
	rows := len(indices)
	_, xCols := X.Dims()
	_, yCols := y.Dims()

	sortedIndices := make([]int, len(indices))
	copy(sortedIndices, indices)
	sort.Ints(sortedIndices)

	xSubset := mat.NewDense(rows, xCols, nil)
	ySubset := mat.NewDense(rows, yCols, nil)
	for i, idx := range sortedIndices {
		for j := 0; j < xCols; j++ {
			xSubset.Set(i, j, X.At(idx, j))
		}
		for j := 0; j < yCols; j++ {
			ySubset.Set(i, j, y.At(idx, j))
		}
	}
	return xSubset, ySubset
}
