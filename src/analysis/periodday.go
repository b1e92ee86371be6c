package analysis

import (
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/javierwelch/challenge-latam/src/utils"
)

// Period-of-day labels. Morning covers 5:00-11:59, afternoon 12:00-18:59
// and night the rest (19:00-4:59).
const (
	Morning   = "morning"
	Afternoon = "afternoon"
	Night     = "night"
)

// PeriodColumn is the derived column added by AddPeriodDay.
const PeriodColumn = "period_day"

// PeriodOfDay classifies a timestamp by its hour. Only the hour matters;
// date and zone are ignored.
func PeriodOfDay(t time.Time) string {
	h := t.Hour()
	switch {
	case h >= 5 && h <= 11:
		return Morning
	case h >= 12 && h <= 18:
		return Afternoon
	default:
		return Night
	}
}

// AddPeriodDay returns a copy of df with a period_day column derived from
// the given timestamp column.
func AddPeriodDay(df dataframe.DataFrame, timeCol string) (dataframe.DataFrame, error) {
	if err := utils.RequireColumns(df, timeCol); err != nil {
		return df, err
	}

	col := df.Col(timeCol)
	periods := make([]string, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		t, err := utils.ParseTime(col.Elem(i))
		if err != nil {
			return df, fmt.Errorf("parse %s at row %d: %w", timeCol, i, err)
		}
		periods = append(periods, PeriodOfDay(t))
	}

	return df.Mutate(series.New(periods, series.String, PeriodColumn)), nil
}
