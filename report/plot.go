package report

import (
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/facetlab/facet/pkg/errors"
)

// PredictedActualPlot writes a scatter plot of predictions against the
// held-out targets, with the identity line for reference, as a PNG.
func PredictedActualPlot(yTrue, yPred *mat.VecDense, title, path string) error {
	n := yTrue.Len()
	if n == 0 {
		return errors.NewValueError("PredictedActualPlot", "empty vector")
	}
	if yPred.Len() != n {
		return errors.NewDimensionError("PredictedActualPlot", n, yPred.Len(), 0)
	}

	points := make(plotter.XYs, n)
	minVal := yTrue.AtVec(0)
	maxVal := yTrue.AtVec(0)
	for i := 0; i < n; i++ {
		actual := yTrue.AtVec(i)
		predicted := yPred.AtVec(i)
		points[i].X = actual
		points[i].Y = predicted
		for _, v := range []float64{actual, predicted} {
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "actual log10(price)"
	p.Y.Label.Text = "predicted log10(price)"

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return errors.Wrap(err, "building scatter")
	}
	scatter.GlyphStyle.Radius = vg.Points(2)
	scatter.GlyphStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}

	identity := plotter.NewFunction(func(x float64) float64 { return x })
	identity.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	identity.Width = vg.Points(1)

	p.Add(scatter, identity)
	p.X.Min, p.X.Max = minVal, maxVal
	p.Y.Min, p.Y.Max = minVal, maxVal

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving plot to %s", path)
	}
	return nil
}
