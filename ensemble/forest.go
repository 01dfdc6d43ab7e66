package ensemble

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/facetlab/facet/core/model"
	"github.com/facetlab/facet/core/parallel"
	"github.com/facetlab/facet/pkg/errors"
	"github.com/facetlab/facet/pkg/log"
)

// RandomForest is a bagged ensemble of regression trees. Each tree is
// grown on a bootstrap resample of the training rows with a fresh
// random feature subset considered at every split; the forest predicts
// the mean of its trees.
type RandomForest struct {
	model.BaseEstimator

	// Hyperparameters
	numTrees    int
	maxDepth    int // 0 means unlimited
	minLeaf     int
	maxFeatures int // 0 means all features
	seed        int64

	// Learned state
	Trees     []Tree
	NFeatures int
	OOBScore  float64 // out-of-bag R^2, NaN when unavailable
}

// ForestOption configures a RandomForest.
type ForestOption func(*RandomForest)

// WithNumTrees sets the ensemble size.
func WithNumTrees(n int) ForestOption {
	return func(rf *RandomForest) { rf.numTrees = n }
}

// WithMaxDepth limits tree depth. 0 disables the limit.
func WithMaxDepth(d int) ForestOption {
	return func(rf *RandomForest) { rf.maxDepth = d }
}

// WithMinLeaf sets the minimum number of samples per leaf.
func WithMinLeaf(n int) ForestOption {
	return func(rf *RandomForest) { rf.minLeaf = n }
}

// WithMaxFeatures sets how many candidate features each split
// considers. 0 means all.
func WithMaxFeatures(n int) ForestOption {
	return func(rf *RandomForest) { rf.maxFeatures = n }
}

// WithSeed fixes the bootstrap and feature sampling randomness.
func WithSeed(seed int64) ForestOption {
	return func(rf *RandomForest) { rf.seed = seed }
}

// NewRandomForest creates a forest with the given options.
// Defaults: 100 trees, unlimited depth, min leaf 5, all features.
func NewRandomForest(options ...ForestOption) *RandomForest {
	rf := &RandomForest{
		numTrees: 100,
		minLeaf:  5,
		seed:     1,
	}
	for _, opt := range options {
		opt(rf)
	}
	return rf
}

// GetParams returns the forest's hyperparameters.
func (rf *RandomForest) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"num_trees":    rf.numTrees,
		"max_depth":    rf.maxDepth,
		"min_leaf":     rf.minLeaf,
		"max_features": rf.maxFeatures,
		"seed":         rf.seed,
	}
}

// Fit grows the ensemble. Trees are built in parallel; each tree's
// randomness is seeded from the forest seed and the tree index, so the
// result does not depend on the goroutine schedule.
func (rf *RandomForest) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("RandomForest.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("RandomForest.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("RandomForest.Fit", "y must be a column vector")
	}
	if rf.numTrees <= 0 {
		return errors.NewValidationError("num_trees", "must be positive", rf.numTrees)
	}
	if rf.minLeaf <= 0 {
		return errors.NewValidationError("min_leaf", "must be positive", rf.minLeaf)
	}
	if rf.maxFeatures < 0 || rf.maxFeatures > c {
		return errors.NewValidationError("max_features", "must be in [0, n_features]", rf.maxFeatures)
	}

	start := time.Now()
	rf.NFeatures = c

	xDense := mat.DenseCopyOf(X)
	targets := make([]float64, r)
	for i := 0; i < r; i++ {
		targets[i] = y.At(i, 0)
	}

	rf.Trees = make([]Tree, rf.numTrees)
	inBag := make([][]bool, rf.numTrees)

	parallel.Parallelize(rf.numTrees, func(startTree, endTree int) {
		for t := startTree; t < endTree; t++ {
			rng := rand.New(rand.NewPCG(uint64(rf.seed), uint64(t)))

			// Bootstrap resample of the rows.
			indices := make([]int, r)
			bag := make([]bool, r)
			for i := range indices {
				idx := rng.IntN(r)
				indices[i] = idx
				bag[idx] = true
			}
			inBag[t] = bag

			builder := &treeBuilder{
				x:           xDense,
				y:           targets,
				maxDepth:    rf.maxDepth,
				minLeaf:     rf.minLeaf,
				maxFeatures: rf.maxFeatures,
				rng:         rng,
			}
			rf.Trees[t] = builder.build(indices)
		}
	})

	rf.OOBScore = rf.computeOOBScore(xDense, targets, inBag)
	rf.SetFitted()

	logger := log.GetLoggerWithName("ensemble.forest")
	logger.Debug("forest fitted",
		log.ModelNameKey, "RandomForest",
		log.OperationKey, "fit",
		log.SamplesKey, r,
		log.FeaturesKey, c,
		"num_trees", rf.numTrees,
		"oob_r2", rf.OOBScore,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// computeOOBScore evaluates each sample with the trees that did not
// see it during bootstrap and returns the R^2 of those predictions.
func (rf *RandomForest) computeOOBScore(x *mat.Dense, targets []float64, inBag [][]bool) float64 {
	n := len(targets)
	sums := make([]float64, n)
	counts := make([]int, n)

	for t := range rf.Trees {
		for i := 0; i < n; i++ {
			if inBag[t][i] {
				continue
			}
			sums[i] += rf.Trees[t].Predict(x, i)
			counts[i]++
		}
	}

	var yMean float64
	covered := 0
	for i := 0; i < n; i++ {
		if counts[i] > 0 {
			yMean += targets[i]
			covered++
		}
	}
	if covered == 0 {
		return math.NaN()
	}
	yMean /= float64(covered)

	var tss, rss float64
	for i := 0; i < n; i++ {
		if counts[i] == 0 {
			continue
		}
		pred := sums[i] / float64(counts[i])
		tss += (targets[i] - yMean) * (targets[i] - yMean)
		rss += (targets[i] - pred) * (targets[i] - pred)
	}
	if tss == 0 {
		return math.NaN()
	}
	return 1 - rss/tss
}

// Predict returns the mean tree prediction as an n x 1 matrix.
func (rf *RandomForest) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForest", "Predict")
	}

	r, c := X.Dims()
	if c != rf.NFeatures {
		return nil, errors.NewDimensionError("RandomForest.Predict", rf.NFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)

	const parallelThreshold = 256
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			sum := 0.0
			for t := range rf.Trees {
				sum += rf.Trees[t].Predict(X, i)
			}
			predictions.Set(i, 0, sum/float64(len(rf.Trees)))
		}
	})

	return predictions, nil
}

// Score returns the coefficient of determination R^2.
func (rf *RandomForest) Score(X, y mat.Matrix) (float64, error) {
	if !rf.IsFitted() {
		return 0, errors.NewNotFittedError("RandomForest", "Score")
	}

	yPred, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}

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
