// Package neural implements a small feedforward neural network
// regressor: one hidden tanh layer with a linear output, trained by
// mini-batch stochastic gradient descent with momentum and L2 weight
// decay.
package neural

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/facetlab/facet/core/model"
	"github.com/facetlab/facet/pkg/errors"
	"github.com/facetlab/facet/pkg/log"
)

// MLP is a single-hidden-layer perceptron for regression.
type MLP struct {
	model.BaseEstimator

	// Hyperparameters
	hiddenUnits  int
	learningRate float64
	momentum     float64
	weightDecay  float64
	maxEpochs    int
	batchSize    int
	tol          float64
	seed         int64

	// Learned parameters. w1 is hidden x input, w2 is 1 x hidden.
	w1 [][]float64
	b1 []float64
	w2 []float64
	b2 float64

	NFeatures int
	NEpochs   int     // epochs actually run
	FinalLoss float64 // training MSE at the last epoch
}

// Option configures an MLP.
type Option func(*MLP)

// WithHiddenUnits sets the hidden layer width.
func WithHiddenUnits(n int) Option {
	return func(m *MLP) { m.hiddenUnits = n }
}

// WithLearningRate sets the SGD step size.
func WithLearningRate(lr float64) Option {
	return func(m *MLP) { m.learningRate = lr }
}

// WithMomentum sets the velocity coefficient.
func WithMomentum(mu float64) Option {
	return func(m *MLP) { m.momentum = mu }
}

// WithWeightDecay sets the L2 penalty on the weights.
func WithWeightDecay(wd float64) Option {
	return func(m *MLP) { m.weightDecay = wd }
}

// WithMaxEpochs sets the training epoch limit.
func WithMaxEpochs(n int) Option {
	return func(m *MLP) { m.maxEpochs = n }
}

// WithBatchSize sets the mini-batch size.
func WithBatchSize(n int) Option {
	return func(m *MLP) { m.batchSize = n }
}

// WithTol sets the loss-improvement tolerance used for early stopping.
func WithTol(tol float64) Option {
	return func(m *MLP) { m.tol = tol }
}

// WithSeed fixes weight initialization and batch shuffling.
func WithSeed(seed int64) Option {
	return func(m *MLP) { m.seed = seed }
}

// NewMLP creates a network with the given options. Defaults: 16 hidden
// units, learning rate 0.01, momentum 0.9, no weight decay, 500
// epochs, batch size 32, tol 1e-6.
func NewMLP(options ...Option) *MLP {
	m := &MLP{
		hiddenUnits:  16,
		learningRate: 0.01,
		momentum:     0.9,
		maxEpochs:    500,
		batchSize:    32,
		tol:          1e-6,
		seed:         1,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// GetParams returns the network's hyperparameters.
func (m *MLP) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"hidden_units":  m.hiddenUnits,
		"learning_rate": m.learningRate,
		"momentum":      m.momentum,
		"weight_decay":  m.weightDecay,
		"max_epochs":    m.maxEpochs,
		"batch_size":    m.batchSize,
		"tol":           m.tol,
		"seed":          m.seed,
	}
}

// Fit trains the network. Training stops early once the epoch loss
// stops improving by more than tol; hitting the epoch limit without
// that raises a ConvergenceWarning.
func (m *MLP) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("MLP.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("MLP.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("MLP.Fit", "y must be a column vector")
	}
	if m.hiddenUnits <= 0 {
		return errors.NewValidationError("hidden_units", "must be positive", m.hiddenUnits)
	}
	if m.learningRate <= 0 {
		return errors.NewValidationError("learning_rate", "must be positive", m.learningRate)
	}
	if m.momentum < 0 || m.momentum >= 1 {
		return errors.NewValidationError("momentum", "must be in [0, 1)", m.momentum)
	}
	if m.batchSize <= 0 {
		return errors.NewValidationError("batch_size", "must be positive", m.batchSize)
	}

	start := time.Now()
	m.NFeatures = c
	h := m.hiddenUnits
	rng := rand.New(rand.NewPCG(uint64(m.seed), uint64(m.seed)))

	// Glorot uniform initialization.
	limit1 := math.Sqrt(6.0 / float64(c+h))
	limit2 := math.Sqrt(6.0 / float64(h+1))
	m.w1 = make([][]float64, h)
	for i := range m.w1 {
		m.w1[i] = make([]float64, c)
		for j := range m.w1[i] {
			m.w1[i][j] = (rng.Float64()*2 - 1) * limit1
		}
	}
	m.b1 = make([]float64, h)
	m.w2 = make([]float64, h)
	for i := range m.w2 {
		m.w2[i] = (rng.Float64()*2 - 1) * limit2
	}
	m.b2 = 0

	// Momentum velocities.
	vw1 := make([][]float64, h)
	for i := range vw1 {
		vw1[i] = make([]float64, c)
	}
	vb1 := make([]float64, h)
	vw2 := make([]float64, h)
	vb2 := 0.0

	// Gradient accumulators, reused across batches.
	gw1 := make([][]float64, h)
	for i := range gw1 {
		gw1[i] = make([]float64, c)
	}
	gb1 := make([]float64, h)
	gw2 := make([]float64, h)

	sample := make([]float64, c)
	hidden := make([]float64, h)

	indices := make([]int, r)
	for i := range indices {
		indices[i] = i
	}

	logger := log.GetLoggerWithName("neural.mlp")

	prevLoss := math.Inf(1)
	converged := false
	epoch := 0
	for ; epoch < m.maxEpochs; epoch++ {
		rng.Shuffle(r, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		epochLoss := 0.0
		for batchStart := 0; batchStart < r; batchStart += m.batchSize {
			batchEnd := batchStart + m.batchSize
			if batchEnd > r {
				batchEnd = r
			}
			batch := indices[batchStart:batchEnd]
			bn := float64(len(batch))

			for i := range gw1 {
				for j := range gw1[i] {
					gw1[i][j] = 0
				}
				gb1[i] = 0
				gw2[i] = 0
			}
			gb2 := 0.0

			for _, idx := range batch {
				for j := 0; j < c; j++ {
					sample[j] = X.At(idx, j)
				}

				// Forward pass.
				for k := 0; k < h; k++ {
					z := m.b1[k]
					for j := 0; j < c; j++ {
						z += m.w1[k][j] * sample[j]
					}
					hidden[k] = math.Tanh(z)
				}
				out := m.b2
				for k := 0; k < h; k++ {
					out += m.w2[k] * hidden[k]
				}

				// Backward pass for squared error loss.
				diff := out - y.At(idx, 0)
				epochLoss += diff * diff

				for k := 0; k < h; k++ {
					gw2[k] += diff * hidden[k]
					// d tanh(z) / dz = 1 - tanh(z)^2
					dHidden := diff * m.w2[k] * (1 - hidden[k]*hidden[k])
					gb1[k] += dHidden
					for j := 0; j < c; j++ {
						gw1[k][j] += dHidden * sample[j]
					}
				}
				gb2 += diff
			}

			// Momentum update with weight decay on the weights only.
			for k := 0; k < h; k++ {
				for j := 0; j < c; j++ {
					grad := gw1[k][j]/bn + m.weightDecay*m.w1[k][j]
					vw1[k][j] = m.momentum*vw1[k][j] - m.learningRate*grad
					m.w1[k][j] += vw1[k][j]
				}
				vb1[k] = m.momentum*vb1[k] - m.learningRate*gb1[k]/bn
				m.b1[k] += vb1[k]

				grad2 := gw2[k]/bn + m.weightDecay*m.w2[k]
				vw2[k] = m.momentum*vw2[k] - m.learningRate*grad2
				m.w2[k] += vw2[k]
			}
			vb2 = m.momentum*vb2 - m.learningRate*gb2/bn
			m.b2 += vb2
		}

		epochLoss /= float64(r)
		if math.IsNaN(epochLoss) || math.IsInf(epochLoss, 0) {
			return errors.NewModelError("MLP.Fit", "training diverged; lower the learning rate",
				errors.Newf("non-finite loss at epoch %d", epoch))
		}

		if epoch%100 == 0 {
			logger.Debug("training progress",
				log.ModelNameKey, "MLP",
				log.EpochKey, epoch,
				log.LossKey, epochLoss,
			)
		}

		if math.Abs(prevLoss-epochLoss) < m.tol {
			m.FinalLoss = epochLoss
			converged = true
			epoch++
			break
		}
		prevLoss = epochLoss
		m.FinalLoss = epochLoss
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("MLP", m.maxEpochs,
			"loss still improving at the epoch limit"))
	}

	m.NEpochs = epoch
	m.SetFitted()

	logger.Debug("network fitted",
		log.ModelNameKey, "MLP",
		log.OperationKey, "fit",
		log.SamplesKey, r,
		log.FeaturesKey, c,
		log.LossKey, m.FinalLoss,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict returns predictions as an n x 1 matrix.
func (m *MLP) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MLP", "Predict")
	}

	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, errors.NewDimensionError("MLP.Predict", m.NFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	h := m.hiddenUnits
	for i := 0; i < r; i++ {
		out := m.b2
		for k := 0; k < h; k++ {
			z := m.b1[k]
			for j := 0; j < c; j++ {
				z += m.w1[k][j] * X.At(i, j)
			}
			out += m.w2[k] * math.Tanh(z)
		}
		predictions.Set(i, 0, out)
	}
	return predictions, nil
}

// Score returns the coefficient of determination R^2.
func (m *MLP) Score(X, y mat.Matrix) (float64, error) {
	if !m.IsFitted() {
		return 0, errors.NewNotFittedError("MLP", "Score")
	}

	yPred, err := m.Predict(X)
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
