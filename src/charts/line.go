// Package charts renders the analysis aggregates as PNG figures.
package charts

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/javierwelch/challenge-latam/src/analysis"
	"github.com/javierwelch/challenge-latam/src/utils"
)

// Seasonality renders the (time, group) count aggregate as one line per
// group across the time axis and writes the figure to path.
func Seasonality(agg dataframe.DataFrame, timeCol, groupCol, path string) error {
	if err := utils.RequireColumns(agg, timeCol, groupCol, analysis.CountColumn); err != nil {
		return err
	}

	axis := analysis.TimeAxis(agg, timeCol)
	axisPos := make(map[string]float64, len(axis))
	for i, t := range axis {
		axisPos[t] = float64(i)
	}

	times := agg.Col(timeCol).Records()
	groups := agg.Col(groupCol).Records()
	counts := agg.Col(analysis.CountColumn).Float()

	byGroup := make(map[string]plotter.XYs)
	for i := range times {
		byGroup[groups[i]] = append(byGroup[groups[i]], plotter.XY{
			X: axisPos[times[i]],
			Y: counts[i],
		})
	}

	names := make([]string, 0, len(byGroup))
	for g := range byGroup {
		names = append(names, g)
	}
	sort.Strings(names)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Number of flights by %s and %s", groupCol, timeCol)
	p.X.Label.Text = timeCol
	p.Y.Label.Text = "Number of flights"
	p.NominalX(axis...)

	for i, g := range names {
		pts := byGroup[g]
		sort.Slice(pts, func(a, b int) bool { return pts[a].X < pts[b].X })

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("build line for %q: %w", g, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(g, line)
	}
	p.Legend.Top = true

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save seasonality chart: %w", err)
	}
	return nil
}
