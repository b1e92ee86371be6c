package charts

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/javierwelch/challenge-latam/src/analysis"
	"github.com/javierwelch/challenge-latam/src/utils"
)

// DelayRate renders the per-group delay rates as a bar chart with a
// percent-formatted y axis, x tick labels rotated 90 degrees and a
// horizontal reference line at the dataset-wide mean. Groups whose rate is
// NaN get no bar.
func DelayRate(rates dataframe.DataFrame, groupCol string, globalMean float64, path string) error {
	if err := utils.RequireColumns(rates, groupCol, analysis.RateColumn); err != nil {
		return err
	}

	allNames := rates.Col(groupCol).Records()
	allRates := rates.Col(analysis.RateColumn).Float()

	var names []string
	var vals plotter.Values
	for i := range allNames {
		if math.IsNaN(allRates[i]) {
			continue
		}
		names = append(names, allNames[i])
		vals = append(vals, allRates[i])
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Proportion of Delayed Flights by %s", groupCol)
	p.X.Label.Text = groupCol
	p.Y.Label.Text = "Proportion of Delayed Flights"
	p.Y.Tick.Marker = percentTicks{}

	bars, err := plotter.NewBarChart(vals, vg.Points(18))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	bars.LineStyle.Width = 0
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(names...)

	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XLeft
	p.X.Tick.Label.YAlign = draw.YCenter

	if !math.IsNaN(globalMean) && len(vals) > 0 {
		ref, err := plotter.NewLine(plotter.XYs{
			{X: -0.5, Y: globalMean},
			{X: float64(len(vals)) - 0.5, Y: globalMean},
		})
		if err != nil {
			return fmt.Errorf("build reference line: %w", err)
		}
		ref.Color = plotutil.Color(1)
		p.Add(ref)
	}

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save delay rate chart: %w", err)
	}
	return nil
}

// percentTicks appends a percent sign to the default tick labels.
type percentTicks struct{}

func (percentTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label += "%"
		}
	}
	return ticks
}
