package dataset

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/facetlab/facet/pkg/errors"
)

//go:embed diamonds.csv
var diamondsCSV []byte

// Column names of the diamonds schema.
const (
	ColCarat   = "carat"
	ColCut     = "cut"
	ColColor   = "color"
	ColClarity = "clarity"
	ColDepth   = "depth"
	ColTable   = "table"
	ColPrice   = "price"
	ColX       = "x"
	ColY       = "y"
	ColZ       = "z"

	// ColLogPrice is the derived modeling target, log10 of price.
	ColLogPrice = "log_price"
)

// Ordered levels of the categorical attributes, worst to best.
var (
	CutLevels     = []string{"Fair", "Good", "Very Good", "Premium", "Ideal"}
	ColorLevels   = []string{"D", "E", "F", "G", "H", "I", "J"}
	ClarityLevels = []string{"I1", "SI2", "SI1", "VS2", "VS1", "VVS2", "VVS1", "IF"}
)

var diamondLevels = map[string][]string{
	ColCut:     CutLevels,
	ColColor:   ColorLevels,
	ColClarity: ClarityLevels,
}

var diamondColumns = []struct {
	name string
	kind ColumnKind
}{
	{ColCarat, Numeric},
	{ColCut, Categorical},
	{ColColor, Categorical},
	{ColClarity, Categorical},
	{ColDepth, Numeric},
	{ColTable, Numeric},
	{ColPrice, Numeric},
	{ColX, Numeric},
	{ColY, Numeric},
	{ColZ, Numeric},
}

// LoadDiamonds parses the bundled diamonds sample.
func LoadDiamonds() (*Table, error) {
	return readDiamonds(csv.NewReader(bytes.NewReader(diamondsCSV)))
}

// LoadDiamondsFile parses a diamonds CSV with the standard schema from
// a file on disk.
func LoadDiamondsFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening diamonds csv %s", path)
	}
	defer f.Close()
	return readDiamonds(csv.NewReader(f))
}

func readDiamonds(r *csv.Reader) (*Table, error) {
	header, err := r.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading diamonds header")
	}
	if len(header) != len(diamondColumns) {
		return nil, errors.NewDimensionError("dataset.readDiamonds", len(diamondColumns), len(header), 1)
	}
	for i, col := range diamondColumns {
		if header[i] != col.name {
			return nil, errors.Newf("dataset: unexpected column %q at position %d, want %q", header[i], i, col.name)
		}
	}

	numeric := make(map[string][]float64)
	categorical := make(map[string][]string)

	row := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading diamonds row %d", row)
		}
		for i, col := range diamondColumns {
			value := record[i]
			switch col.kind {
			case Numeric:
				v, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return nil, errors.Wrapf(err, "row %d: parsing %s", row, col.name)
				}
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, errors.Newf("dataset: row %d: non-finite %s", row, col.name)
				}
				numeric[col.name] = append(numeric[col.name], v)
			case Categorical:
				if !validLevel(diamondLevels[col.name], value) {
					return nil, errors.Wrapf(errors.ErrUnknownCategory, "row %d: %s=%q", row, col.name, value)
				}
				categorical[col.name] = append(categorical[col.name], value)
			}
		}
		row++
	}
	if row == 1 {
		return nil, errors.NewModelError("dataset.readDiamonds", "no data rows", errors.ErrEmptyData)
	}

	t := NewTable()
	for _, col := range diamondColumns {
		switch col.kind {
		case Numeric:
			if err := t.AddNumeric(col.name, numeric[col.name]); err != nil {
				return nil, err
			}
		case Categorical:
			if err := t.AddCategorical(col.name, categorical[col.name]); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

func validLevel(levels []string, value string) bool {
	for _, l := range levels {
		if l == value {
			return true
		}
	}
	return false
}

// WithLogPrice returns a copy of the table with the log_price target
// column added and the raw price column removed. Price must be
// strictly positive.
func WithLogPrice(t *Table) (*Table, error) {
	prices, err := t.NumericColumn(ColPrice)
	if err != nil {
		return nil, err
	}
	logPrice := make([]float64, len(prices))
	for i, p := range prices {
		if p <= 0 {
			return nil, errors.NewValueError("dataset.WithLogPrice", "price must be positive")
		}
		logPrice[i] = math.Log10(p)
	}
	out := t.Clone()
	if err := out.Drop(ColPrice); err != nil {
		return nil, err
	}
	if err := out.AddNumeric(ColLogPrice, logPrice); err != nil {
		return nil, err
	}
	return out, nil
}
