package analysis

import (
	"testing"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

func TestPeriodOfDayAllHours(t *testing.T) {
	expected := map[int]string{
		0: Night, 1: Night, 2: Night, 3: Night, 4: Night,
		5: Morning, 6: Morning, 7: Morning, 8: Morning, 9: Morning, 10: Morning, 11: Morning,
		12: Afternoon, 13: Afternoon, 14: Afternoon, 15: Afternoon, 16: Afternoon, 17: Afternoon, 18: Afternoon,
		19: Night, 20: Night, 21: Night, 22: Night, 23: Night,
	}

	for hour := 0; hour < 24; hour++ {
		ts := time.Date(2017, 3, 15, hour, 30, 0, 0, time.UTC)
		if got := PeriodOfDay(ts); got != expected[hour] {
			t.Errorf("hour %d: got %q, want %q", hour, got, expected[hour])
		}
	}
}

func TestPeriodOfDayIgnoresDate(t *testing.T) {
	dates := []time.Time{
		time.Date(2017, 1, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2017, 12, 31, 8, 59, 59, 0, time.UTC),
		time.Date(1999, 6, 15, 8, 15, 0, 0, time.FixedZone("CLT", -4*3600)),
	}
	for _, ts := range dates {
		if got := PeriodOfDay(ts); got != Morning {
			t.Errorf("PeriodOfDay(%v) = %q, want %q", ts, got, Morning)
		}
	}
}

func TestAddPeriodDay(t *testing.T) {
	df := dataframe.New(
		series.New([]string{
			"2017-01-01 06:00:00",
			"2017-01-01 13:30:00",
			"2017-01-01 23:10:00",
		}, series.String, "Fecha-I"),
	)

	out, err := AddPeriodDay(df, "Fecha-I")
	if err != nil {
		t.Fatalf("AddPeriodDay: %v", err)
	}

	got := out.Col(PeriodColumn).Records()
	want := []string{Morning, Afternoon, Night}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAddPeriodDayMissingColumn(t *testing.T) {
	df := dataframe.New(series.New([]string{"x"}, series.String, "other"))
	if _, err := AddPeriodDay(df, "Fecha-I"); err == nil {
		t.Fatal("expected an error for a missing timestamp column")
	}
}
