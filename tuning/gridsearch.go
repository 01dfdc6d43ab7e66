package tuning

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/facetlab/facet/core/model"
	"github.com/facetlab/facet/pkg/errors"
	"github.com/facetlab/facet/pkg/log"
)

// ParamGrid maps a hyperparameter name to the discrete values to try.
// Integer-valued hyperparameters are carried as float64 and truncated
// by the factory.
type ParamGrid map[string][]float64

// Candidates returns the cartesian product of the grid in a
// deterministic order: parameter names sorted, first name varying
// slowest.
func (g ParamGrid) Candidates() []map[string]float64 {
	if len(g) == 0 {
		return nil
	}

	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)

	candidates := []map[string]float64{{}}
	for _, name := range names {
		values := g[name]
		next := make([]map[string]float64, 0, len(candidates)*len(values))
		for _, base := range candidates {
			for _, v := range values {
				candidate := make(map[string]float64, len(names))
				for k, bv := range base {
					candidate[k] = bv
				}
				candidate[name] = v
				next = append(next, candidate)
			}
		}
		candidates = next
	}
	return candidates
}

// ParamFactory builds a fresh model configured with one grid candidate.
type ParamFactory func(params map[string]float64) model.Regressor

// CandidateResult records the cross-validation outcome of one grid
// candidate.
type CandidateResult struct {
	Params map[string]float64
	CV     *CVResult
}

// GridSearch exhaustively cross-validates every candidate in a
// hyperparameter grid and refits the best candidate, judged by lowest
// mean validation RMSE, on the full training data.
type GridSearch struct {
	model.BaseEstimator

	factory ParamFactory
	grid    ParamGrid
	kf      *KFold

	Results    []CandidateResult
	BestParams map[string]float64
	BestRMSE   float64
	BestCV     *CVResult
	BestModel  model.Regressor
}

// NewGridSearch creates a grid search over the given grid.
func NewGridSearch(factory ParamFactory, grid ParamGrid, kf *KFold) *GridSearch {
	return &GridSearch{
		factory: factory,
		grid:    grid,
		kf:      kf,
	}
}

// Fit cross-validates every candidate and refits the winner.
func (gs *GridSearch) Fit(X, y mat.Matrix) error {
	if gs.factory == nil {
		return errors.NewValueError("GridSearch.Fit", "nil model factory")
	}
	candidates := gs.grid.Candidates()
	if len(candidates) == 0 {
		return errors.NewValueError("GridSearch.Fit", "empty parameter grid")
	}

	start := time.Now()
	logger := log.GetLoggerWithName("tuning.gridsearch")

	gs.Results = make([]CandidateResult, 0, len(candidates))
	gs.BestRMSE = math.Inf(1)

	for _, params := range candidates {
		cv, err := CrossValidate(func() model.Regressor {
			return gs.factory(params)
		}, X, y, gs.kf)
		if err != nil {
			return errors.Wrapf(err, "evaluating candidate %v", params)
		}

		gs.Results = append(gs.Results, CandidateResult{Params: params, CV: cv})

		rmse := cv.MeanRMSE()
		logger.Debug("candidate evaluated",
			"params", params,
			log.RMSEKey, rmse,
			log.R2ScoreKey, cv.MeanR2(),
		)
		if rmse < gs.BestRMSE {
			gs.BestRMSE = rmse
			gs.BestParams = params
			gs.BestCV = cv
		}
	}

	// Refit the winning configuration on all training rows.
	best := gs.factory(gs.BestParams)
	if err := best.Fit(X, y); err != nil {
		return errors.Wrap(err, "refitting best candidate")
	}
	gs.BestModel = best
	gs.SetFitted()

	logger.Info("grid search finished",
		log.OperationKey, "tune",
		"candidates", len(candidates),
		"best_params", gs.BestParams,
		log.RMSEKey, gs.BestRMSE,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict delegates to the refitted best model.
func (gs *GridSearch) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !gs.IsFitted() {
		return nil, errors.NewNotFittedError("GridSearch", "Predict")
	}
	return gs.BestModel.Predict(X)
}

// Score delegates to the refitted best model.
func (gs *GridSearch) Score(X, y mat.Matrix) (float64, error) {
	if !gs.IsFitted() {
		return 0, errors.NewNotFittedError("GridSearch", "Score")
	}
	return gs.BestModel.Score(X, y)
}
