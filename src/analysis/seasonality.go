package analysis

import (
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/javierwelch/challenge-latam/src/utils"
)

// CountColumn is the count column of the seasonality aggregate.
const CountColumn = "count"

// FlightCountsByTimeAndGroup counts co-occurrences of each (time, group)
// pair. The result has columns [timeCol, groupCol, count], ordered by
// group and then by time so each group's series reads contiguously. Time
// values that parse as numbers (months, hours) sort numerically.
func FlightCountsByTimeAndGroup(df dataframe.DataFrame, timeCol, groupCol string) (dataframe.DataFrame, error) {
	if err := utils.RequireColumns(df, timeCol, groupCol); err != nil {
		return dataframe.DataFrame{}, err
	}

	times := df.Col(timeCol).Records()
	groups := df.Col(groupCol).Records()

	type pair struct{ t, g string }
	counts := make(map[pair]int, len(times))
	for i := range times {
		counts[pair{times[i], groups[i]}]++
	}

	keys := make([]pair, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].g != keys[j].g {
			return keys[i].g < keys[j].g
		}
		return timeLess(keys[i].t, keys[j].t)
	})

	outTimes := make([]string, len(keys))
	outGroups := make([]string, len(keys))
	outCounts := make([]int, len(keys))
	for i, k := range keys {
		outTimes[i] = k.t
		outGroups[i] = k.g
		outCounts[i] = counts[k]
	}

	return dataframe.New(
		series.New(outTimes, series.String, timeCol),
		series.New(outGroups, series.String, groupCol),
		series.New(outCounts, series.Int, CountColumn),
	), nil
}

// TimeAxis returns the distinct time values of the aggregate in axis order.
func TimeAxis(agg dataframe.DataFrame, timeCol string) []string {
	seen := make(map[string]bool)
	var axis []string
	for _, t := range agg.Col(timeCol).Records() {
		if !seen[t] {
			seen[t] = true
			axis = append(axis, t)
		}
	}
	sort.Slice(axis, func(i, j int) bool { return timeLess(axis[i], axis[j]) })
	return axis
}

func timeLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	return a < b
}
