package neural

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/mat"

	"github.com/facetlab/facet/pkg/errors"
)

// lineData samples a noiseless linear target over [-1, 1].
func lineData(n int) (*mat.Dense, *mat.Dense) {
	r := rand.New(rand.NewPCG(5, 5))
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x := r.Float64()*2 - 1
		X.Set(i, 0, x)
		y.Set(i, 0, 0.5*x+0.2)
	}
	return X, y
}

func quiet(t *testing.T) {
	t.Helper()
	errors.SetWarningHandler(func(error) {})
	t.Cleanup(func() { errors.SetWarningHandler(nil) })
}

func TestMLPLearnsLinearTarget(t *testing.T) {
	quiet(t)
	X, y := lineData(200)

	m := NewMLP(
		WithHiddenUnits(8),
		WithLearningRate(0.05),
		WithMaxEpochs(2000),
		WithSeed(1),
	)
	require.NoError(t, m.Fit(X, y))
	assert.True(t, m.IsFitted())
	assert.Equal(t, 1, m.NFeatures)
	assert.Greater(t, m.NEpochs, 0)

	score, err := m.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.9, "a small network should fit a noiseless line")
}

func TestMLPDeterministic(t *testing.T) {
	quiet(t)
	X, y := lineData(100)

	first := NewMLP(WithMaxEpochs(50), WithSeed(9))
	require.NoError(t, first.Fit(X, y))
	second := NewMLP(WithMaxEpochs(50), WithSeed(9))
	require.NoError(t, second.Fit(X, y))

	p1, err := first.Predict(X)
	require.NoError(t, err)
	p2, err := second.Predict(X)
	require.NoError(t, err)

	rows, _ := p1.Dims()
	for i := 0; i < rows; i++ {
		assert.Equal(t, p1.At(i, 0), p2.At(i, 0),
			"identical seeds must give identical networks, row %d", i)
	}
}

func TestMLPNotFitted(t *testing.T) {
	m := NewMLP()
	_, err := m.Predict(mat.NewDense(2, 1, []float64{1, 2}))
	require.Error(t, err)

	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
}

func TestMLPValidation(t *testing.T) {
	quiet(t)
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{1, 2, 3})

	assert.Error(t, NewMLP(WithHiddenUnits(0)).Fit(X, y))
	assert.Error(t, NewMLP(WithLearningRate(0)).Fit(X, y))
	assert.Error(t, NewMLP(WithMomentum(1.0)).Fit(X, y))
	assert.Error(t, NewMLP().Fit(X, mat.NewDense(2, 1, []float64{1, 2})))
	assert.Error(t, NewMLP().Fit(&mat.Dense{}, &mat.Dense{}))

	require.NoError(t, NewMLP(WithMaxEpochs(10)).Fit(X, y))
}

func TestMLPPredictDimensionCheck(t *testing.T) {
	quiet(t)
	X, y := lineData(50)

	m := NewMLP(WithMaxEpochs(20), WithSeed(2))
	require.NoError(t, m.Fit(X, y))

	_, err := m.Predict(mat.NewDense(2, 3, nil))
	assert.Error(t, err)
}
