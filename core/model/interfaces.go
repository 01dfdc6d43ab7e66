// Package model defines the estimator interfaces shared by every model
// and preprocessing step in facet.
package model

import "gonum.org/v1/gonum/mat"

// Fitter is any model that learns parameters from labeled data.
type Fitter interface {
	// Fit trains the model on X (n_samples x n_features) and the target
	// column vector y (n_samples x 1).
	Fit(X, y mat.Matrix) error
}

// Predictor produces a prediction column vector for the given samples.
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer computes the coefficient of determination R^2 of the prediction.
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Regressor is the contract every price model in this repository
// satisfies: least squares, elastic net, random forest and the MLP.
type Regressor interface {
	Fitter
	Predictor
	Scorer
}

// ParameterGetter exposes an estimator's hyperparameters.
type ParameterGetter interface {
	GetParams() map[string]interface{}
}
