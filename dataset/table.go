// Package dataset provides the tabular data model for the diamond
// price pipeline: a column-ordered table with numeric and categorical
// columns, the bundled diamonds sample, and the train/test partition.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/facetlab/facet/pkg/errors"
)

// ColumnKind distinguishes numeric from categorical columns.
type ColumnKind int

const (
	// Numeric columns hold float64 values.
	Numeric ColumnKind = iota
	// Categorical columns hold string levels.
	Categorical
)

// Table is a column-ordered collection of equally sized columns.
// Column order is preserved so matrix views are deterministic.
type Table struct {
	names       []string
	kinds       map[string]ColumnKind
	numeric     map[string][]float64
	categorical map[string][]string
	rows        int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		kinds:       make(map[string]ColumnKind),
		numeric:     make(map[string][]float64),
		categorical: make(map[string][]string),
	}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.names) }

// Names returns the column names in order. The slice is a copy.
func (t *Table) Names() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)
	return names
}

// Kind returns the kind of the named column.
func (t *Table) Kind(name string) (ColumnKind, error) {
	kind, ok := t.kinds[name]
	if !ok {
		return 0, errors.NewValueError("Table.Kind", "unknown column: "+name)
	}
	return kind, nil
}

// Has reports whether a column with the given name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.kinds[name]
	return ok
}

func (t *Table) checkLength(op string, n int) error {
	if len(t.names) > 0 && n != t.rows {
		return errors.NewDimensionError(op, t.rows, n, 0)
	}
	return nil
}

// AddNumeric appends a numeric column. All columns must have the same
// number of rows.
func (t *Table) AddNumeric(name string, values []float64) error {
	if t.Has(name) {
		return errors.NewValueError("Table.AddNumeric", "duplicate column: "+name)
	}
	if err := t.checkLength("Table.AddNumeric", len(values)); err != nil {
		return err
	}
	t.names = append(t.names, name)
	t.kinds[name] = Numeric
	t.numeric[name] = values
	t.rows = len(values)
	return nil
}

// AddCategorical appends a categorical column.
func (t *Table) AddCategorical(name string, values []string) error {
	if t.Has(name) {
		return errors.NewValueError("Table.AddCategorical", "duplicate column: "+name)
	}
	if err := t.checkLength("Table.AddCategorical", len(values)); err != nil {
		return err
	}
	t.names = append(t.names, name)
	t.kinds[name] = Categorical
	t.categorical[name] = values
	t.rows = len(values)
	return nil
}

// NumericColumn returns the values of a numeric column. The slice is
// shared, not copied.
func (t *Table) NumericColumn(name string) ([]float64, error) {
	values, ok := t.numeric[name]
	if !ok {
		return nil, errors.NewValueError("Table.NumericColumn", "no numeric column: "+name)
	}
	return values, nil
}

// CategoricalColumn returns the values of a categorical column.
func (t *Table) CategoricalColumn(name string) ([]string, error) {
	values, ok := t.categorical[name]
	if !ok {
		return nil, errors.NewValueError("Table.CategoricalColumn", "no categorical column: "+name)
	}
	return values, nil
}

// NumericNames returns the names of numeric columns in column order.
func (t *Table) NumericNames() []string {
	var names []string
	for _, name := range t.names {
		if t.kinds[name] == Numeric {
			names = append(names, name)
		}
	}
	return names
}

// CategoricalNames returns the names of categorical columns in column order.
func (t *Table) CategoricalNames() []string {
	var names []string
	for _, name := range t.names {
		if t.kinds[name] == Categorical {
			names = append(names, name)
		}
	}
	return names
}

// Drop removes a column. Dropping an unknown column is an error.
func (t *Table) Drop(name string) error {
	if !t.Has(name) {
		return errors.NewValueError("Table.Drop", "unknown column: "+name)
	}
	for i, n := range t.names {
		if n == name {
			t.names = append(t.names[:i], t.names[i+1:]...)
			break
		}
	}
	delete(t.kinds, name)
	delete(t.numeric, name)
	delete(t.categorical, name)
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	clone := NewTable()
	for _, name := range t.names {
		switch t.kinds[name] {
		case Numeric:
			values := make([]float64, t.rows)
			copy(values, t.numeric[name])
			_ = clone.AddNumeric(name, values)
		case Categorical:
			values := make([]string, t.rows)
			copy(values, t.categorical[name])
			_ = clone.AddCategorical(name, values)
		}
	}
	return clone
}

// Subset returns a new table containing the given rows in the given
// order. Indices out of range are an error.
func (t *Table) Subset(indices []int) (*Table, error) {
	for _, idx := range indices {
		if idx < 0 || idx >= t.rows {
			return nil, errors.NewValueError("Table.Subset", "row index out of range")
		}
	}
	sub := NewTable()
	for _, name := range t.names {
		switch t.kinds[name] {
		case Numeric:
			src := t.numeric[name]
			values := make([]float64, len(indices))
			for i, idx := range indices {
				values[i] = src[idx]
			}
			_ = sub.AddNumeric(name, values)
		case Categorical:
			src := t.categorical[name]
			values := make([]string, len(indices))
			for i, idx := range indices {
				values[i] = src[idx]
			}
			_ = sub.AddCategorical(name, values)
		}
	}
	return sub, nil
}

// Design splits the table into a feature matrix X and a target vector
// y. Every column except the target must already be numeric; the
// recipe's one-hot step is responsible for that. Feature names are
// returned in column order.
func (t *Table) Design(target string) (*mat.Dense, *mat.VecDense, []string, error) {
	if t.rows == 0 || len(t.names) == 0 {
		return nil, nil, nil, errors.NewModelError("Table.Design", "empty table", errors.ErrEmptyData)
	}
	targetValues, ok := t.numeric[target]
	if !ok {
		return nil, nil, nil, errors.NewValueError("Table.Design", "target must be a numeric column: "+target)
	}

	var features []string
	for _, name := range t.names {
		if name == target {
			continue
		}
		if t.kinds[name] != Numeric {
			return nil, nil, nil, errors.NewValueError("Table.Design", "non-numeric feature column: "+name)
		}
		features = append(features, name)
	}
	if len(features) == 0 {
		return nil, nil, nil, errors.NewModelError("Table.Design", "no feature columns", errors.ErrEmptyData)
	}

	X := mat.NewDense(t.rows, len(features), nil)
	for j, name := range features {
		col := t.numeric[name]
		for i := 0; i < t.rows; i++ {
			X.Set(i, j, col[i])
		}
	}

	y := mat.NewVecDense(t.rows, nil)
	for i := 0; i < t.rows; i++ {
		y.SetVec(i, targetValues[i])
	}

	return X, y, features, nil
}
