package recipe

import (
	"sort"

	"github.com/facetlab/facet/core/model"
	"github.com/facetlab/facet/dataset"
	"github.com/facetlab/facet/pkg/errors"
)

// OneHot expands categorical columns into indicator columns. Levels
// are learned at fit time; the first level of each column is dropped
// as the reference so the design matrix stays full rank for the
// linear models. A level not seen during Fit is an error at Apply.
type OneHot struct {
	model.BaseEstimator

	// Columns to encode. Empty means every categorical column.
	Columns []string

	levels map[string][]string // learned, sorted per column
	order  []string            // encoded columns in table order
}

// NewOneHot creates a one-hot encoding step for the given columns.
func NewOneHot(columns ...string) *OneHot {
	return &OneHot{Columns: columns}
}

// Name implements Step.
func (o *OneHot) Name() string { return "one_hot" }

// Fit learns the sorted set of levels for each configured column.
func (o *OneHot) Fit(t *dataset.Table, _ string) error {
	columns := o.Columns
	if len(columns) == 0 {
		columns = t.CategoricalNames()
	}

	o.levels = make(map[string][]string, len(columns))
	o.order = nil
	for _, name := range columns {
		values, err := t.CategoricalColumn(name)
		if err != nil {
			return err
		}
		seen := make(map[string]bool)
		var levels []string
		for _, v := range values {
			if !seen[v] {
				seen[v] = true
				levels = append(levels, v)
			}
		}
		sort.Strings(levels)
		if len(levels) < 2 {
			return errors.NewValueError("OneHot.Fit", "column has fewer than two levels: "+name)
		}
		o.levels[name] = levels
		o.order = append(o.order, name)
	}

	o.SetFitted()
	return nil
}

// Apply replaces each encoded column with its indicator columns.
func (o *OneHot) Apply(t *dataset.Table) (*dataset.Table, error) {
	if !o.IsFitted() {
		return nil, errors.NewNotFittedError("OneHot", "Apply")
	}

	out := t.Clone()
	for _, name := range o.order {
		values, err := out.CategoricalColumn(name)
		if err != nil {
			return nil, err
		}
		levels := o.levels[name]
		index := make(map[string]int, len(levels))
		for i, l := range levels {
			index[l] = i
		}

		// One indicator per level, skipping the reference level.
		indicators := make([][]float64, len(levels))
		for i := 1; i < len(levels); i++ {
			indicators[i] = make([]float64, len(values))
		}
		for row, v := range values {
			li, ok := index[v]
			if !ok {
				return nil, errors.Wrapf(errors.ErrUnknownCategory, "column %s: %q", name, v)
			}
			if li > 0 {
				indicators[li][row] = 1.0
			}
		}

		if err := out.Drop(name); err != nil {
			return nil, err
		}
		for i := 1; i < len(levels); i++ {
			if err := out.AddNumeric(name+"_"+levels[i], indicators[i]); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Levels returns the learned levels for an encoded column.
func (o *OneHot) Levels(column string) []string {
	return o.levels[column]
}
