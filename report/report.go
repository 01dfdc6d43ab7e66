// Package report renders the model comparison table and the
// predicted-versus-actual scatter plot.
package report

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/facetlab/facet/pkg/errors"
)

// Row is one model's aggregated metrics.
type Row struct {
	Model   string
	R2      float64
	MAE     float64
	RMSE    float64
	StdRMSE float64 // spread of RMSE across folds; 0 for single evaluations
	Tuned   bool
}

// Comparison collects per-model metric rows for rendering and winner
// selection.
type Comparison struct {
	Rows []Row
}

// Add appends a model's metrics.
func (c *Comparison) Add(row Row) {
	c.Rows = append(c.Rows, row)
}

// Best returns the row with the lowest RMSE.
func (c *Comparison) Best() (Row, error) {
	if len(c.Rows) == 0 {
		return Row{}, errors.NewValueError("Comparison.Best", "no rows")
	}
	best := c.Rows[0]
	for _, row := range c.Rows[1:] {
		if row.RMSE < best.RMSE {
			best = row
		}
	}
	return best, nil
}

// Render formats the comparison as an aligned text table.
func (c *Comparison) Render() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "MODEL\tR2\tMAE\tRMSE\tRMSE SD\tTUNED")
	for _, row := range c.Rows {
		tuned := ""
		if row.Tuned {
			tuned = "yes"
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%s\n",
			row.Model, row.R2, row.MAE, row.RMSE, row.StdRMSE, tuned)
	}
	_ = w.Flush()
	return sb.String()
}
