package reporting

import (
	"fmt"

	"github.com/will-rowe/cdbgstream/src/cdbg"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotUnitigLengths plots a histogram of unitig lengths and saves it to
// fileName, following the same plot.New/Save shape the teacher uses for
// its coverage plot in reporting.go.
func PlotUnitigLengths(store *cdbg.Store, fileName string) error {
	lengths := make(plotter.Values, 0, store.NumUnodes())
	for _, u := range store.Unodes() {
		lengths = append(lengths, float64(u.Length(store.K())))
	}

	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Title.Text = "unitig length distribution"
	p.X.Label.Text = "length (k-mers)"
	p.Y.Label.Text = "count"

	hist, err := plotter.NewHist(lengths, 50)
	if err != nil {
		return fmt.Errorf("reporting: could not build unitig length histogram: %w", err)
	}
	p.Add(hist)

	return p.Save(8*vg.Inch, 8*vg.Inch, fileName)
}
