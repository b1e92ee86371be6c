package charts

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/javierwelch/challenge-latam/src/analysis"
)

func TestSeasonalityWritesPNG(t *testing.T) {
	agg := dataframe.New(
		series.New([]string{"1", "2", "1", "2"}, series.String, "MES"),
		series.New([]string{"I", "I", "N", "N"}, series.String, "TIPOVUELO"),
		series.New([]int{10, 12, 5, 7}, series.Int, analysis.CountColumn),
	)

	path := filepath.Join(t.TempDir(), "seasonality.png")
	if err := Seasonality(agg, "MES", "TIPOVUELO", path); err != nil {
		t.Fatalf("Seasonality: %v", err)
	}
	assertNonEmptyFile(t, path)
}

func TestDelayRateWritesPNG(t *testing.T) {
	rates := dataframe.New(
		series.New([]string{"B", "A", "C"}, series.String, "OPERA"),
		series.New([]float64{100, 50, math.NaN()}, series.Float, analysis.RateColumn),
	)

	path := filepath.Join(t.TempDir(), "delay_rate.png")
	if err := DelayRate(rates, "OPERA", 75, path); err != nil {
		t.Fatalf("DelayRate: %v", err)
	}
	assertNonEmptyFile(t, path)
}

func TestDelayRateMissingColumn(t *testing.T) {
	rates := dataframe.New(series.New([]string{"A"}, series.String, "OPERA"))
	if err := DelayRate(rates, "OPERA", 50, filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Fatal("expected an error for a missing rate column")
	}
}

func assertNonEmptyFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("chart file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("chart file is empty")
	}
}
