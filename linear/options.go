package linear

// ElasticNetOption configures an ElasticNet model.
type ElasticNetOption func(*ElasticNet)

// WithAlpha sets the overall penalty strength.
func WithAlpha(alpha float64) ElasticNetOption {
	return func(en *ElasticNet) {
		en.alpha = alpha
	}
}

// WithL1Ratio sets the L1/L2 mixture. 1 is pure lasso, 0 pure ridge.
func WithL1Ratio(ratio float64) ElasticNetOption {
	return func(en *ElasticNet) {
		en.l1Ratio = ratio
	}
}

// WithMaxIter sets the coordinate descent iteration limit.
func WithMaxIter(n int) ElasticNetOption {
	return func(en *ElasticNet) {
		en.maxIter = n
	}
}

// WithTol sets the convergence tolerance on coefficient updates.
func WithTol(tol float64) ElasticNetOption {
	return func(en *ElasticNet) {
		en.tol = tol
	}
}

// WithFitIntercept sets whether the intercept is learned.
func WithFitIntercept(fit bool) ElasticNetOption {
	return func(en *ElasticNet) {
		en.fitIntercept = fit
	}
}
