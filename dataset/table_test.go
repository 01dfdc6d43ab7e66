package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTable(t *testing.T) *Table {
	t.Helper()
	tbl := NewTable()
	require.NoError(t, tbl.AddNumeric("carat", []float64{0.3, 0.5, 0.9, 1.2}))
	require.NoError(t, tbl.AddCategorical("cut", []string{"Fair", "Good", "Good", "Ideal"}))
	require.NoError(t, tbl.AddNumeric("price", []float64{500, 1500, 4000, 7000}))
	return tbl
}

func TestTableAdd(t *testing.T) {
	tbl := buildTable(t)

	assert.Equal(t, 4, tbl.NumRows())
	assert.Equal(t, 3, tbl.NumCols())
	assert.Equal(t, []string{"carat", "cut", "price"}, tbl.Names())

	kind, err := tbl.Kind("cut")
	require.NoError(t, err)
	assert.Equal(t, Categorical, kind)

	err = tbl.AddNumeric("carat", []float64{1, 2, 3, 4})
	assert.Error(t, err, "duplicate column name must be rejected")

	err = tbl.AddNumeric("short", []float64{1, 2})
	assert.Error(t, err, "column length must match existing rows")
}

func TestTableColumnsShareStorage(t *testing.T) {
	tbl := buildTable(t)

	col, err := tbl.NumericColumn("carat")
	require.NoError(t, err)
	col[0] = 99.0

	again, err := tbl.NumericColumn("carat")
	require.NoError(t, err)
	assert.Equal(t, 99.0, again[0])
}

func TestTableClone(t *testing.T) {
	tbl := buildTable(t)
	clone := tbl.Clone()

	col, err := clone.NumericColumn("carat")
	require.NoError(t, err)
	col[0] = -1.0

	orig, err := tbl.NumericColumn("carat")
	require.NoError(t, err)
	assert.Equal(t, 0.3, orig[0], "clone must not share storage with the original")
	assert.Equal(t, tbl.Names(), clone.Names())
}

func TestTableDrop(t *testing.T) {
	tbl := buildTable(t)

	require.NoError(t, tbl.Drop("cut"))
	assert.False(t, tbl.Has("cut"))
	assert.Equal(t, []string{"carat", "price"}, tbl.Names())

	assert.Error(t, tbl.Drop("missing"))
}

func TestTableSubset(t *testing.T) {
	tbl := buildTable(t)

	sub, err := tbl.Subset([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, sub.NumRows())

	carat, err := sub.NumericColumn("carat")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.3}, carat)

	cut, err := sub.CategoricalColumn("cut")
	require.NoError(t, err)
	assert.Equal(t, []string{"Good", "Fair"}, cut)

	_, err = tbl.Subset([]int{0, 7})
	assert.Error(t, err, "out-of-range index must be rejected")
}

func TestTableDesign(t *testing.T) {
	tbl := buildTable(t)

	_, _, _, err := tbl.Design("price")
	assert.Error(t, err, "categorical columns cannot enter a design matrix")

	require.NoError(t, tbl.Drop("cut"))
	x, y, names, err := tbl.Design("price")
	require.NoError(t, err)

	rows, cols := x.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 1, cols)
	assert.Equal(t, []string{"carat"}, names)
	assert.Equal(t, 4, y.Len())
	assert.Equal(t, 500.0, y.AtVec(0))
	assert.Equal(t, 0.3, x.At(0, 0))

	_, _, _, err = tbl.Design("missing")
	assert.Error(t, err)
}
