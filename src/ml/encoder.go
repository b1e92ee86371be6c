// Package ml holds the feature encoding and model selection used to train
// the delay classifier.
package ml

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/javierwelch/challenge-latam/src/utils"
)

// ErrNotFitted is returned when Transform runs before Fit.
var ErrNotFitted = errors.New("encoder not fitted")

// OneHotEncoder expands categorical columns into 0/1 indicator columns,
// one per category seen during Fit. Transforming a value that was not seen
// during Fit is an error.
type OneHotEncoder struct {
	columns    []string
	categories map[string][]string       // per column, sorted
	index      map[string]map[string]int // column -> category -> offset in block
	offsets    map[string]int            // column -> block start
	width      int
	fitted     bool
}

// NewOneHotEncoder creates an encoder over the given categorical columns.
func NewOneHotEncoder(columns ...string) *OneHotEncoder {
	return &OneHotEncoder{columns: columns}
}

// Fit learns the category sets from df.
func (e *OneHotEncoder) Fit(df dataframe.DataFrame) error {
	if err := utils.RequireColumns(df, e.columns...); err != nil {
		return err
	}

	e.categories = make(map[string][]string, len(e.columns))
	e.index = make(map[string]map[string]int, len(e.columns))
	e.offsets = make(map[string]int, len(e.columns))
	e.width = 0

	for _, col := range e.columns {
		seen := make(map[string]bool)
		var cats []string
		for _, v := range df.Col(col).Records() {
			if !seen[v] {
				seen[v] = true
				cats = append(cats, v)
			}
		}
		sort.Strings(cats)

		idx := make(map[string]int, len(cats))
		for i, c := range cats {
			idx[c] = i
		}

		e.categories[col] = cats
		e.index[col] = idx
		e.offsets[col] = e.width
		e.width += len(cats)
	}

	e.fitted = true
	return nil
}

// FeatureNames returns the output column names in matrix order, formed as
// "<column>_<category>".
func (e *OneHotEncoder) FeatureNames() []string {
	names := make([]string, 0, e.width)
	for _, col := range e.columns {
		for _, cat := range e.categories[col] {
			names = append(names, col+"_"+cat)
		}
	}
	return names
}

// Transform one-hot encodes df into a dense matrix of shape
// (rows, len(FeatureNames())). A frame with no rows transforms to an
// empty matrix.
func (e *OneHotEncoder) Transform(df dataframe.DataFrame) (*mat.Dense, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	if err := utils.RequireColumns(df, e.columns...); err != nil {
		return nil, err
	}

	// mat.NewDense panics on a zero dimension.
	if df.Nrow() == 0 || e.width == 0 {
		return &mat.Dense{}, nil
	}

	out := mat.NewDense(df.Nrow(), e.width, nil)
	for _, col := range e.columns {
		records := df.Col(col).Records()
		for i, v := range records {
			j, ok := e.index[col][v]
			if !ok {
				return nil, fmt.Errorf("column %q: unknown category %q at row %d", col, v, i)
			}
			out.Set(i, e.offsets[col]+j, 1)
		}
	}
	return out, nil
}

// EncodeFeatures applies a fitted encoder and re-wraps the result as a
// DataFrame whose column names come from the encoder's feature names.
func EncodeFeatures(enc *OneHotEncoder, df dataframe.DataFrame) (dataframe.DataFrame, error) {
	m, err := enc.Transform(df)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	rows, _ := m.Dims()
	names := enc.FeatureNames()

	cols := make([]series.Series, len(names))
	for j, name := range names {
		vals := make([]float64, rows)
		if rows > 0 {
			mat.Col(vals, j, m)
		}
		cols[j] = series.New(vals, series.Float, name)
	}
	return dataframe.New(cols...), nil
}
