package ensemble

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/mat"

	"github.com/facetlab/facet/pkg/errors"
)

// stepData builds a noiseless piecewise target that a handful of axis
// aligned splits can represent exactly.
func stepData(n int) (*mat.Dense, *mat.Dense) {
	r := rand.New(rand.NewPCG(11, 11))
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		a := r.Float64()
		b := r.Float64()
		X.Set(i, 0, a)
		X.Set(i, 1, b)
		target := 1.0
		if a > 0.5 {
			target = 3.0
		}
		if b > 0.5 {
			target += 2.0
		}
		y.Set(i, 0, target)
	}
	return X, y
}

func TestRandomForestFitPredict(t *testing.T) {
	X, y := stepData(300)

	rf := NewRandomForest(WithNumTrees(50), WithMinLeaf(2), WithSeed(1))
	require.NoError(t, rf.Fit(X, y))
	assert.Len(t, rf.Trees, 50)
	assert.Equal(t, 2, rf.NFeatures)

	score, err := rf.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.9, "a forest should fit a noiseless step function well")

	if !math.IsNaN(rf.OOBScore) {
		assert.Greater(t, rf.OOBScore, 0.5)
	}
}

func TestRandomForestDeterministic(t *testing.T) {
	X, y := stepData(200)

	first := NewRandomForest(WithNumTrees(20), WithSeed(7))
	require.NoError(t, first.Fit(X, y))
	second := NewRandomForest(WithNumTrees(20), WithSeed(7))
	require.NoError(t, second.Fit(X, y))

	p1, err := first.Predict(X)
	require.NoError(t, err)
	p2, err := second.Predict(X)
	require.NoError(t, err)

	rows, _ := p1.Dims()
	for i := 0; i < rows; i++ {
		assert.Equal(t, p1.At(i, 0), p2.At(i, 0),
			"identical seeds must give identical forests, row %d", i)
	}
}

func TestRandomForestMaxFeatures(t *testing.T) {
	X, y := stepData(150)

	rf := NewRandomForest(WithNumTrees(20), WithMaxFeatures(1), WithSeed(3))
	require.NoError(t, rf.Fit(X, y))

	score, err := rf.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.5)
}

func TestRandomForestNotFitted(t *testing.T) {
	rf := NewRandomForest()
	_, err := rf.Predict(mat.NewDense(2, 2, nil))
	require.Error(t, err)

	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
}

func TestRandomForestValidation(t *testing.T) {
	rf := NewRandomForest()

	err := rf.Fit(&mat.Dense{}, &mat.Dense{})
	assert.Error(t, err, "empty data must be rejected")

	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	err = rf.Fit(X, mat.NewDense(2, 1, []float64{1, 2}))
	assert.Error(t, err, "row mismatch must be rejected")

	require.NoError(t, rf.Fit(X, mat.NewDense(3, 1, []float64{1, 2, 3})))
	_, err = rf.Predict(mat.NewDense(2, 3, nil))
	assert.Error(t, err, "feature count mismatch must be rejected")
}

func TestTreePredictConstantTarget(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{5, 5, 5, 5})

	rf := NewRandomForest(WithNumTrees(5), WithSeed(1))
	require.NoError(t, rf.Fit(X, y))

	pred, err := rf.Predict(X)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		assert.InDelta(t, 5.0, pred.At(i, 0), 1e-12,
			"constant targets yield single-leaf trees")
	}
}
