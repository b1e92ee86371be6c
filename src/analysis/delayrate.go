package analysis

import (
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"

	"github.com/javierwelch/challenge-latam/src/utils"
)

// DelayColumn is the binary outcome column: 1 if the flight was delayed
// by 15 minutes or more, 0 otherwise.
const DelayColumn = "delay_15"

// RateColumn holds per-group delay rates as percentages.
const RateColumn = "delay_rate"

// DelayRatesByGroup computes the per-group mean of delay_15 scaled to a
// percentage, sorted descending by rate. A group whose delay_15 values are
// all missing gets NaN (sorted last), not an error.
func DelayRatesByGroup(df dataframe.DataFrame, groupCol string) (dataframe.DataFrame, error) {
	if err := utils.RequireColumns(df, groupCol, DelayColumn); err != nil {
		return dataframe.DataFrame{}, err
	}

	groups := df.Col(groupCol).Records()
	delays := df.Col(DelayColumn).Float()

	sums := make(map[string]float64)
	counts := make(map[string]int)
	var order []string
	for i, g := range groups {
		if _, seen := counts[g]; !seen {
			counts[g] = 0
			order = append(order, g)
		}
		if !math.IsNaN(delays[i]) {
			sums[g] += delays[i]
			counts[g]++
		}
	}

	rates := make([]float64, len(order))
	for i, g := range order {
		if counts[g] == 0 {
			rates[i] = math.NaN()
			continue
		}
		rates[i] = sums[g] / float64(counts[g]) * 100
	}

	idx := make([]int, len(order))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := rates[idx[a]], rates[idx[b]]
		if math.IsNaN(ra) {
			return false
		}
		if math.IsNaN(rb) {
			return true
		}
		return ra > rb
	})

	outGroups := make([]string, len(idx))
	outRates := make([]float64, len(idx))
	for i, j := range idx {
		outGroups[i] = order[j]
		outRates[i] = rates[j]
	}

	return dataframe.New(
		series.New(outGroups, series.String, groupCol),
		series.New(outRates, series.Float, RateColumn),
	), nil
}

// GlobalDelayRate is the dataset-wide mean of delay_15 as a percentage,
// ignoring missing values. NaN when no value is present at all.
func GlobalDelayRate(df dataframe.DataFrame) (float64, error) {
	if err := utils.RequireColumns(df, DelayColumn); err != nil {
		return math.NaN(), err
	}

	var vals []float64
	for _, v := range df.Col(DelayColumn).Float() {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return math.NaN(), nil
	}
	return stat.Mean(vals, nil) * 100, nil
}
