package recipe

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/facetlab/facet/core/model"
	"github.com/facetlab/facet/dataset"
	"github.com/facetlab/facet/pkg/errors"
)

// Scale centers and scales every numeric feature column to zero mean
// and unit standard deviation using statistics learned on the training
// data. The target column is left untouched.
type Scale struct {
	model.BaseEstimator

	means  map[string]float64
	scales map[string]float64
	order  []string
}

// NewScale creates a centering and scaling step.
func NewScale() *Scale {
	return &Scale{}
}

// Name implements Step.
func (s *Scale) Name() string { return "scale" }

// Fit computes per-column mean and standard deviation.
func (s *Scale) Fit(t *dataset.Table, target string) error {
	names := featureNames(t, target)
	if len(names) == 0 {
		return errors.NewModelError("Scale.Fit", "no numeric feature columns", errors.ErrEmptyData)
	}

	s.means = make(map[string]float64, len(names))
	s.scales = make(map[string]float64, len(names))
	s.order = names
	for _, name := range names {
		values, err := t.NumericColumn(name)
		if err != nil {
			return err
		}
		mean, std := stat.MeanStdDev(values, nil)
		// Constant columns divide by one instead of zero.
		if math.Abs(std) < 1e-8 || math.IsNaN(std) {
			std = 1.0
		}
		s.means[name] = mean
		s.scales[name] = std
	}

	s.SetFitted()
	return nil
}

// Apply standardizes the learned columns. Columns dropped by a later
// refit of the pipeline are ignored.
func (s *Scale) Apply(t *dataset.Table) (*dataset.Table, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("Scale", "Apply")
	}
	out := t.Clone()
	for _, name := range s.order {
		if !out.Has(name) {
			continue
		}
		values, err := out.NumericColumn(name)
		if err != nil {
			return nil, err
		}
		mean := s.means[name]
		scale := s.scales[name]
		for i := range values {
			values[i] = (values[i] - mean) / scale
		}
	}
	return out, nil
}

// Mean returns the learned mean for a column.
func (s *Scale) Mean(column string) float64 { return s.means[column] }

// Std returns the learned standard deviation for a column.
func (s *Scale) Std(column string) float64 { return s.scales[column] }
