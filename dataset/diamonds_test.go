package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facetlab/facet/pkg/errors"
)

func TestLoadDiamonds(t *testing.T) {
	tbl, err := LoadDiamonds()
	require.NoError(t, err)

	assert.Equal(t, 10, tbl.NumCols())
	assert.Greater(t, tbl.NumRows(), 100, "bundled sample should be non-trivial")
	assert.Equal(t, []string{
		ColCarat, ColCut, ColColor, ColClarity,
		ColDepth, ColTable, ColPrice, ColX, ColY, ColZ,
	}, tbl.Names())

	cuts, err := tbl.CategoricalColumn(ColCut)
	require.NoError(t, err)
	for _, c := range cuts {
		assert.Contains(t, CutLevels, c)
	}

	prices, err := tbl.NumericColumn(ColPrice)
	require.NoError(t, err)
	for _, p := range prices {
		assert.Greater(t, p, 0.0)
	}
}

func TestLoadDiamondsFile(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	header := "carat,cut,color,clarity,depth,table,price,x,y,z\n"
	good := header +
		"0.23,Ideal,E,SI2,61.5,55,326,3.95,3.98,2.43\n" +
		"0.21,Premium,E,SI1,59.8,61,326,3.89,3.84,2.31\n"

	tbl, err := LoadDiamondsFile(write("good.csv", good))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())

	_, err = LoadDiamondsFile(write("badheader.csv",
		"carat,cut,color\n0.23,Ideal,E\n"))
	assert.Error(t, err)

	_, err = LoadDiamondsFile(write("badlevel.csv", header+
		"0.23,Shiny,E,SI2,61.5,55,326,3.95,3.98,2.43\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownCategory))

	_, err = LoadDiamondsFile(write("badnumber.csv", header+
		"abc,Ideal,E,SI2,61.5,55,326,3.95,3.98,2.43\n"))
	assert.Error(t, err)

	_, err = LoadDiamondsFile(write("empty.csv", header))
	assert.Error(t, err, "a header with no rows is not a dataset")

	_, err = LoadDiamondsFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestWithLogPrice(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddNumeric(ColCarat, []float64{0.3, 0.5}))
	require.NoError(t, tbl.AddNumeric(ColPrice, []float64{100, 1000}))

	out, err := WithLogPrice(tbl)
	require.NoError(t, err)

	assert.False(t, out.Has(ColPrice))
	lp, err := out.NumericColumn(ColLogPrice)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, lp[0], 1e-12)
	assert.InDelta(t, 3.0, lp[1], 1e-12)

	// Original table is untouched.
	assert.True(t, tbl.Has(ColPrice))
	assert.False(t, tbl.Has(ColLogPrice))

	bad := NewTable()
	require.NoError(t, bad.AddNumeric(ColPrice, []float64{100, 0}))
	_, err = WithLogPrice(bad)
	assert.Error(t, err, "non-positive price has no logarithm")
}
