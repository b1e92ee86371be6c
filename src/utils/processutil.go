package utils

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrMissingColumn is returned when a required column is absent from a
// DataFrame. Callers match it with errors.Is.
var ErrMissingColumn = errors.New("missing column")

// TimeLayout is the canonical timestamp layout used across the dataset
// ("Fecha-I", "Fecha-O" and friends are stored this way).
const TimeLayout = "2006-01-02 15:04:05"

// HasColumn reports whether df carries a column with the given name.
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// RequireColumns checks the named columns exist in df and returns an
// ErrMissingColumn-wrapping error for the first one that does not.
func RequireColumns(df dataframe.DataFrame, names ...string) error {
	for _, name := range names {
		if !HasColumn(df, name) {
			return fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	return nil
}

// ParseTime parses a dataset timestamp element. Empty and NA elements
// parse to the zero time without error.
func ParseTime(el series.Element) (time.Time, error) {
	if el.IsNA() || el.String() == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(TimeLayout, el.String())
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// SubSeriesTime appends a float column named outCol holding, per row, the
// difference colA - colB in minutes. Rows missing either timestamp get NaN.
func SubSeriesTime(df dataframe.DataFrame, colA, colB, outCol string) (dataframe.DataFrame, error) {
	if err := RequireColumns(df, colA, colB); err != nil {
		return df, err
	}

	a := df.Col(colA)
	b := df.Col(colB)

	diffs := make([]float64, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		start, err := ParseTime(a.Elem(i))
		if err != nil {
			return df, fmt.Errorf("parse %s at row %d: %w", colA, i, err)
		}
		end, err := ParseTime(b.Elem(i))
		if err != nil {
			return df, fmt.Errorf("parse %s at row %d: %w", colB, i, err)
		}
		if start.IsZero() || end.IsZero() {
			diffs = append(diffs, math.NaN())
			continue
		}
		diffs = append(diffs, start.Sub(end).Minutes())
	}

	return df.Mutate(series.New(diffs, series.Float, outCol)), nil
}
