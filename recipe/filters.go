package recipe

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/facetlab/facet/core/model"
	"github.com/facetlab/facet/dataset"
	"github.com/facetlab/facet/pkg/errors"
)

// NearZeroVariance drops numeric feature columns whose variance on the
// training data falls below Threshold. Indicator columns for levels
// that almost never occur are the usual casualty.
type NearZeroVariance struct {
	model.BaseEstimator

	Threshold float64

	dropped []string
}

// NewNearZeroVariance creates the filter with the given variance threshold.
func NewNearZeroVariance(threshold float64) *NearZeroVariance {
	return &NearZeroVariance{Threshold: threshold}
}

// Name implements Step.
func (f *NearZeroVariance) Name() string { return "near_zero_variance" }

// Fit records which feature columns fall below the threshold.
func (f *NearZeroVariance) Fit(t *dataset.Table, target string) error {
	if f.Threshold < 0 {
		return errors.NewValidationError("Threshold", "must be non-negative", f.Threshold)
	}
	f.dropped = nil
	for _, name := range featureNames(t, target) {
		values, err := t.NumericColumn(name)
		if err != nil {
			return err
		}
		if stat.Variance(values, nil) < f.Threshold {
			f.dropped = append(f.dropped, name)
		}
	}
	f.SetFitted()
	return nil
}

// Apply drops the recorded columns. Columns already absent are ignored
// so the filter composes with earlier drops.
func (f *NearZeroVariance) Apply(t *dataset.Table) (*dataset.Table, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("NearZeroVariance", "Apply")
	}
	out := t.Clone()
	for _, name := range f.dropped {
		if out.Has(name) {
			if err := out.Drop(name); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Dropped returns the names of the columns the filter removes.
func (f *NearZeroVariance) Dropped() []string { return f.dropped }

// CorrFilter drops one column of every pair of numeric feature columns
// whose absolute Pearson correlation on the training data exceeds
// Threshold. The later column in table order is dropped, which keeps
// the choice deterministic. The diamond dimensions x, y and z are the
// motivating case: they are nearly collinear with carat.
type CorrFilter struct {
	model.BaseEstimator

	Threshold float64

	dropped []string
}

// NewCorrFilter creates the filter with the given absolute correlation
// threshold.
func NewCorrFilter(threshold float64) *CorrFilter {
	return &CorrFilter{Threshold: threshold}
}

// Name implements Step.
func (f *CorrFilter) Name() string { return "correlation_filter" }

// Fit finds the columns to drop.
func (f *CorrFilter) Fit(t *dataset.Table, target string) error {
	if f.Threshold <= 0 || f.Threshold > 1 {
		return errors.NewValidationError("Threshold", "must be in (0, 1]", f.Threshold)
	}

	names := featureNames(t, target)
	cols := make([][]float64, len(names))
	for i, name := range names {
		values, err := t.NumericColumn(name)
		if err != nil {
			return err
		}
		cols[i] = values
	}

	droppedSet := make(map[string]bool)
	for i := 0; i < len(names); i++ {
		if droppedSet[names[i]] {
			continue
		}
		for j := i + 1; j < len(names); j++ {
			if droppedSet[names[j]] {
				continue
			}
			r := stat.Correlation(cols[i], cols[j], nil)
			if math.IsNaN(r) {
				// Zero-variance columns are the variance filter's job.
				continue
			}
			if math.Abs(r) > f.Threshold {
				droppedSet[names[j]] = true
			}
		}
	}

	f.dropped = nil
	for _, name := range names {
		if droppedSet[name] {
			f.dropped = append(f.dropped, name)
		}
	}
	f.SetFitted()
	return nil
}

// Apply drops the recorded columns.
func (f *CorrFilter) Apply(t *dataset.Table) (*dataset.Table, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("CorrFilter", "Apply")
	}
	out := t.Clone()
	for _, name := range f.dropped {
		if out.Has(name) {
			if err := out.Drop(name); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Dropped returns the names of the columns the filter removes.
func (f *CorrFilter) Dropped() []string { return f.dropped }
