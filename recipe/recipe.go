// Package recipe implements the feature preprocessing pipeline: a
// declarative sequence of steps (encoding, filtering, scaling) that is
// fit on the training partition and then applied, or "baked", onto any
// table with the same schema.
package recipe

import (
	"github.com/facetlab/facet/core/model"
	"github.com/facetlab/facet/dataset"
	"github.com/facetlab/facet/pkg/errors"
	"github.com/facetlab/facet/pkg/log"
)

// Step is a single preprocessing operation with learned state. Fit
// learns from the training table; Apply transforms a table using that
// state. The target column is never modified by a step.
type Step interface {
	Name() string
	Fit(t *dataset.Table, target string) error
	Apply(t *dataset.Table) (*dataset.Table, error)
}

// Recipe is an ordered list of preprocessing steps bound to a target
// column. Steps are fit in sequence, each on the output of the
// previous one, so a filter sees the columns the encoder produced.
type Recipe struct {
	model.BaseEstimator

	target string
	steps  []Step
}

// New creates a recipe predicting the given target column.
func New(target string, steps ...Step) *Recipe {
	return &Recipe{target: target, steps: steps}
}

// Target returns the target column name.
func (r *Recipe) Target() string { return r.target }

// Fit learns every step's parameters from the training table.
func (r *Recipe) Fit(train *dataset.Table) error {
	if train.NumRows() == 0 {
		return errors.NewModelError("Recipe.Fit", "empty table", errors.ErrEmptyData)
	}
	if !train.Has(r.target) {
		return errors.NewValueError("Recipe.Fit", "missing target column: "+r.target)
	}

	logger := log.GetLoggerWithName("recipe")
	cur := train
	for _, step := range r.steps {
		if err := step.Fit(cur, r.target); err != nil {
			return errors.Wrapf(err, "fitting step %s", step.Name())
		}
		next, err := step.Apply(cur)
		if err != nil {
			return errors.Wrapf(err, "applying step %s during fit", step.Name())
		}
		logger.Debug("fitted recipe step",
			"step", step.Name(),
			log.FeaturesKey, next.NumCols()-1,
		)
		cur = next
	}

	r.SetFitted()
	return nil
}

// Bake applies the fitted steps to a table in order.
func (r *Recipe) Bake(t *dataset.Table) (*dataset.Table, error) {
	if !r.IsFitted() {
		return nil, errors.NewNotFittedError("Recipe", "Bake")
	}
	cur := t
	for _, step := range r.steps {
		next, err := step.Apply(cur)
		if err != nil {
			return nil, errors.Wrapf(err, "applying step %s", step.Name())
		}
		cur = next
	}
	return cur, nil
}

// featureNames returns the numeric columns of t except the target.
func featureNames(t *dataset.Table, target string) []string {
	var names []string
	for _, name := range t.NumericNames() {
		if name != target {
			names = append(names, name)
		}
	}
	return names
}
