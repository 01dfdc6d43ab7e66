// Standard attribute keys for machine learning operations. Using these
// keys keeps records filterable across the whole pipeline.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the type of model.
	// Examples: "LinearRegression", "RandomForest", "MLP"
	ModelNameKey = "model.name"

	// OperationKey names the ML operation being performed.
	// Standard values: "fit", "predict", "transform", "score", "tune"
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	// Examples: "linear", "recipe", "tuning"
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of samples (rows) being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of features (columns) being processed.
	FeaturesKey = "data.features"
)

// Performance and metrics.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records a loss value during training or evaluation.
	LossKey = "metrics.loss"

	// R2ScoreKey records the coefficient of determination.
	R2ScoreKey = "metrics.r2_score"

	// RMSEKey records root-mean-squared error.
	RMSEKey = "metrics.rmse"

	// MAEKey records mean absolute error.
	MAEKey = "metrics.mae"

	// IterationKey records the iteration number of an iterative solver.
	IterationKey = "training.iteration"

	// EpochKey records the epoch number during neural network training.
	EpochKey = "training.epoch"

	// FoldKey records the cross-validation fold index.
	FoldKey = "cv.fold"
)
