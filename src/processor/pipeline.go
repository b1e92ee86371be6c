// Package processor wires the dataset, the analysis, the charts, the
// reports and the run store into one pipeline.
package processor

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/javierwelch/challenge-latam/src/analysis"
	"github.com/javierwelch/challenge-latam/src/charts"
	"github.com/javierwelch/challenge-latam/src/config"
	"github.com/javierwelch/challenge-latam/src/datasource/file"
	"github.com/javierwelch/challenge-latam/src/logger"
	"github.com/javierwelch/challenge-latam/src/ml"
	"github.com/javierwelch/challenge-latam/src/report"
	"github.com/javierwelch/challenge-latam/src/storage"
	"github.com/javierwelch/challenge-latam/src/utils"
)

// DelayThresholdMinutes defines a delayed flight: actual departure 15
// minutes or more after the scheduled one.
const DelayThresholdMinutes = 15.0

// MinDiffColumn holds the actual-minus-scheduled departure difference in
// minutes.
const MinDiffColumn = "min_diff"

// Pipeline runs the full analysis over a dataset snapshot.
type Pipeline struct {
	cfg   *config.Config
	dcfg  *config.DataConfig
	hubs  *analysis.HubTable
	store *storage.RunStore // nil disables run history
	log   *logger.Logger
}

// Result carries everything a single run produced.
type Result struct {
	Run           *storage.Run
	RatesByColumn map[string]dataframe.DataFrame
	Seasonality   dataframe.DataFrame
	ChartPaths    []string
}

func New(cfg *config.Config, dcfg *config.DataConfig, store *storage.RunStore, log *logger.Logger) *Pipeline {
	return &Pipeline{
		cfg:   cfg,
		dcfg:  dcfg,
		hubs:  analysis.NewHubTable(dcfg.Hubs),
		store: store,
		log:   log.Named("pipeline"),
	}
}

// LoadDataset reads the configured dataset file.
func (p *Pipeline) LoadDataset() (dataframe.DataFrame, error) {
	return p.LoadDatasetFrom(p.cfg.Data.Path)
}

// LoadDatasetFrom reads a dataset file, picking the reader by the
// configured format.
func (p *Pipeline) LoadDatasetFrom(path string) (dataframe.DataFrame, error) {
	switch p.cfg.Data.Format {
	case "", "csv":
		return file.ReadCSVToDataFrame(path, p.cfg.Data.Encoding)
	case "xlsx":
		return file.ReadXLSXToDataFrame(path, p.cfg.Data.SheetName)
	default:
		return dataframe.DataFrame{}, fmt.Errorf("unsupported dataset format: %q", p.cfg.Data.Format)
	}
}

// Run derives the analysis columns, computes the aggregates, renders the
// charts and reports, optionally trains the delay model, and records the
// run. The caller's frame is not modified.
func (p *Pipeline) Run(df dataframe.DataFrame, source string) (*Result, error) {
	t0 := time.Now()

	df, err := p.prepare(df)
	if err != nil {
		return nil, err
	}

	global, err := analysis.GlobalDelayRate(df)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RatesByColumn: make(map[string]dataframe.DataFrame),
	}
	run := &storage.Run{
		CreatedAt:       time.Now(),
		Source:          source,
		Rows:            df.Nrow(),
		GlobalDelayRate: global,
		Rates:           make(map[string]map[string]float64),
	}

	var rateSheets []report.RateSheet
	for _, groupCol := range p.dcfg.Groupings {
		rates, err := analysis.DelayRatesByGroup(df, groupCol)
		if err != nil {
			return nil, fmt.Errorf("delay rates by %s: %w", groupCol, err)
		}
		result.RatesByColumn[groupCol] = rates
		run.Rates[groupCol] = ratesToMap(rates, groupCol)
		rateSheets = append(rateSheets, report.RateSheet{GroupColumn: groupCol, Rates: rates})
	}

	timeCol := p.dcfg.GetFlightData("time")
	carrierCol := p.dcfg.GetFlightData("carrier")
	result.Seasonality, err = analysis.FlightCountsByTimeAndGroup(df, timeCol, carrierCol)
	if err != nil {
		return nil, fmt.Errorf("seasonality counts: %w", err)
	}

	if p.cfg.ChartsDir != "" {
		if result.ChartPaths, err = p.renderCharts(result, global, timeCol, carrierCol); err != nil {
			return nil, err
		}
	}

	if len(p.dcfg.Features) > 0 && len(p.dcfg.ModelGrid) > 0 {
		if err := p.trainModel(df, run); err != nil {
			return nil, err
		}
	}

	if err := p.writeReports(global, df.Nrow(), rateSheets, result.ChartPaths); err != nil {
		return nil, err
	}

	if p.store != nil {
		if run.ID, err = p.store.StoreRun(run); err != nil {
			return nil, err
		}
	}

	result.Run = run
	p.log.Info("analysis run complete",
		logger.String("source", source),
		logger.Int("rows", run.Rows),
		logger.Duration("took", time.Since(t0)))
	return result, nil
}

// prepare adds the derived columns (delay_15, period_day, to_hub) to a
// copy of the frame.
func (p *Pipeline) prepare(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	df = df.Copy()

	scheduledCol := p.dcfg.GetFlightData("scheduled")
	actualCol := p.dcfg.GetFlightData("actual")

	if !utils.HasColumn(df, analysis.DelayColumn) {
		var err error
		df, err = p.deriveDelay(df, scheduledCol, actualCol)
		if err != nil {
			return df, err
		}
	}

	if utils.HasColumn(df, scheduledCol) && !utils.HasColumn(df, analysis.PeriodColumn) {
		var err error
		df, err = analysis.AddPeriodDay(df, scheduledCol)
		if err != nil {
			return df, err
		}
	}

	carrierCol := p.dcfg.GetFlightData("carrier")
	destCol := p.dcfg.GetFlightData("destination")
	if len(p.dcfg.Hubs) > 0 && utils.HasColumn(df, carrierCol) && utils.HasColumn(df, destCol) {
		var err error
		df, err = analysis.AddToHubFlag(df, carrierCol, destCol, p.hubs)
		if err != nil {
			return df, err
		}
	}

	return df, nil
}

// deriveDelay computes min_diff and delay_15 from the scheduled and
// actual timestamps. Rows missing either timestamp get NaN, which the
// aggregation ignores.
func (p *Pipeline) deriveDelay(df dataframe.DataFrame, scheduledCol, actualCol string) (dataframe.DataFrame, error) {
	df, err := utils.SubSeriesTime(df, actualCol, scheduledCol, MinDiffColumn)
	if err != nil {
		return df, fmt.Errorf("cannot derive %s: %w", analysis.DelayColumn, err)
	}

	diffs := df.Col(MinDiffColumn).Float()
	delays := make([]float64, len(diffs))
	for i, d := range diffs {
		switch {
		case math.IsNaN(d):
			delays[i] = math.NaN()
		case d >= DelayThresholdMinutes:
			delays[i] = 1
		}
	}

	return df.Mutate(series.New(delays, series.Float, analysis.DelayColumn)), nil
}

func (p *Pipeline) renderCharts(result *Result, global float64, timeCol, carrierCol string) ([]string, error) {
	if err := os.MkdirAll(p.cfg.ChartsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create charts dir: %w", err)
	}

	var paths []string

	seasonalityPath := filepath.Join(p.cfg.ChartsDir, "seasonality.png")
	if err := charts.Seasonality(result.Seasonality, timeCol, carrierCol, seasonalityPath); err != nil {
		return nil, err
	}
	paths = append(paths, seasonalityPath)

	for _, groupCol := range p.dcfg.Groupings {
		path := filepath.Join(p.cfg.ChartsDir, fmt.Sprintf("delay_rate_%s.png", groupCol))
		if err := charts.DelayRate(result.RatesByColumn[groupCol], groupCol, global, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// trainModel one-hot encodes the configured feature columns and grid
// searches the delay classifier over them.
func (p *Pipeline) trainModel(df dataframe.DataFrame, run *storage.Run) error {
	enc := ml.NewOneHotEncoder(p.dcfg.Features...)
	if err := enc.Fit(df); err != nil {
		return fmt.Errorf("fit encoder: %w", err)
	}

	X, err := enc.Transform(df)
	if err != nil {
		return fmt.Errorf("encode features: %w", err)
	}

	y := df.Col(analysis.DelayColumn).Float()
	Xf, yf := dropMissingLabels(X, y)
	if len(yf) == 0 {
		p.log.Warn("skipping model training, no labeled rows")
		return nil
	}

	search := ml.NewGridSearchCV(ml.NewLogisticRegression(), p.dcfg.ModelGrid)
	if p.dcfg.Scoring != "" {
		search.Scoring = p.dcfg.Scoring
	}
	if err := search.Fit(Xf, yf); err != nil {
		return fmt.Errorf("grid search: %w", err)
	}

	run.BestParams = search.BestParams
	run.BestScore = search.BestScore
	p.log.Info("model selected",
		logger.Any("params", search.BestParams),
		logger.Float64("score", search.BestScore))
	return nil
}

func (p *Pipeline) writeReports(global float64, rows int, sheets []report.RateSheet, chartPaths []string) error {
	if p.cfg.Report.XLSX != "" && len(sheets) > 0 {
		if err := report.WriteWorkbook(p.cfg.Report.XLSX, global, sheets); err != nil {
			return err
		}
	}
	if p.cfg.Report.PDF != "" {
		if err := report.WritePDF(p.cfg.Report.PDF, global, rows, chartPaths); err != nil {
			return err
		}
	}
	return nil
}

func ratesToMap(rates dataframe.DataFrame, groupCol string) map[string]float64 {
	groups := rates.Col(groupCol).Records()
	vals := rates.Col(analysis.RateColumn).Float()
	out := make(map[string]float64, len(groups))
	for i, g := range groups {
		out[g] = vals[i]
	}
	return out
}

// dropMissingLabels filters out rows whose delay label is NaN.
func dropMissingLabels(X *mat.Dense, y []float64) (*mat.Dense, []float64) {
	var idx []int
	for i, v := range y {
		if !math.IsNaN(v) {
			idx = append(idx, i)
		}
	}
	if len(idx) == len(y) {
		return X, y
	}
	if len(idx) == 0 {
		return nil, nil
	}

	_, cols := X.Dims()
	Xf := mat.NewDense(len(idx), cols, nil)
	yf := make([]float64, len(idx))
	for i, j := range idx {
		Xf.SetRow(i, X.RawRowView(j))
		yf[i] = y[j]
	}
	return Xf, yf
}
