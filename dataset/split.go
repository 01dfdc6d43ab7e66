package dataset

import (
	"math/rand/v2"

	"github.com/facetlab/facet/pkg/errors"
)

// Split is a disjoint, exhaustive train/test partition of a table.
type Split struct {
	Train        *Table
	Test         *Table
	TrainIndices []int
	TestIndices  []int
}

// TrainTestSplit shuffles the row indices with a seeded generator and
// partitions the table so that roughly testFraction of the rows land
// in the test set. Together the two partitions cover every row exactly
// once.
func TrainTestSplit(t *Table, testFraction float64, seed int64) (*Split, error) {
	if t.NumRows() < 2 {
		return nil, errors.NewModelError("dataset.TrainTestSplit", "need at least two rows", errors.ErrEmptyData)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, errors.NewValidationError("testFraction", "must be in (0, 1)", testFraction)
	}

	n := t.NumRows()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	nTest := int(float64(n) * testFraction)
	if nTest == 0 {
		nTest = 1
	}
	if nTest >= n {
		nTest = n - 1
	}

	testIdx := indices[:nTest]
	trainIdx := indices[nTest:]

	train, err := t.Subset(trainIdx)
	if err != nil {
		return nil, err
	}
	test, err := t.Subset(testIdx)
	if err != nil {
		return nil, err
	}

	return &Split{
		Train:        train,
		Test:         test,
		TrainIndices: trainIdx,
		TestIndices:  testIdx,
	}, nil
}
