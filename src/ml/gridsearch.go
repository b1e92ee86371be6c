package ml

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// GridSearchCV exhaustively evaluates every hyperparameter combination in
// ParamGrid with k-fold cross-validation, selects the combination with the
// best mean score and refits it on the full training set.
type GridSearchCV struct {
	Estimator Estimator
	ParamGrid map[string][]float64
	Scoring   string // metric name, default "f1_micro"
	NJobs     int    // parallel candidate evaluations, default all cores
	Folds     int    // default 5

	BestEstimator Estimator
	BestParams    map[string]float64
	BestScore     float64
}

// NewGridSearchCV wires a grid search around an estimator with defaults
// matching the delegated-library contract: micro-averaged F1 and maximum
// available parallelism.
func NewGridSearchCV(est Estimator, grid map[string][]float64) *GridSearchCV {
	return &GridSearchCV{
		Estimator: est,
		ParamGrid: grid,
		Scoring:   "f1_micro",
		NJobs:     runtime.NumCPU(),
		Folds:     5,
	}
}

// Fit runs the search over (X, y) and refits the winning candidate.
func (g *GridSearchCV) Fit(X *mat.Dense, y []float64) error {
	if g.Estimator == nil {
		return errors.New("grid search has no estimator")
	}
	rows, _ := X.Dims()
	if rows != len(y) {
		return fmt.Errorf("X has %d rows but y has %d labels", rows, len(y))
	}

	scorer, err := ScorerByName(g.Scoring)
	if err != nil {
		return err
	}

	folds := g.Folds
	if folds <= 0 {
		folds = 5
	}
	if folds > rows {
		folds = rows
	}
	if folds < 2 {
		return fmt.Errorf("need at least 2 samples for cross-validation, have %d", rows)
	}

	njobs := g.NJobs
	if njobs <= 0 {
		njobs = runtime.NumCPU()
	}

	candidates := enumerateGrid(g.ParamGrid)
	scores := make([]float64, len(candidates))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	jobs := make(chan int)

	for w := 0; w < njobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				score, err := crossValScore(g.Estimator, candidates[i], X, y, folds, scorer)
				mu.Lock()
				if err != nil && firstErr == nil {
					firstErr = err
				}
				scores[i] = score
				mu.Unlock()
			}
		}()
	}
	for i := range candidates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}

	// First strictly-greater candidate wins, so ties resolve to grid order.
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}

	winner := g.Estimator.Clone()
	if err := winner.SetParams(candidates[best]); err != nil {
		return err
	}
	if err := winner.Fit(X, y); err != nil {
		return fmt.Errorf("refit best candidate: %w", err)
	}

	g.BestEstimator = winner
	g.BestParams = candidates[best]
	g.BestScore = scores[best]
	return nil
}

func crossValScore(base Estimator, params map[string]float64, X *mat.Dense, y []float64, folds int, scorer ScoreFunc) (float64, error) {
	rows, _ := X.Dims()
	foldScores := make([]float64, 0, folds)

	for f := 0; f < folds; f++ {
		start := f * rows / folds
		end := (f + 1) * rows / folds

		var trainIdx, valIdx []int
		for i := 0; i < rows; i++ {
			if i >= start && i < end {
				valIdx = append(valIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}

		est := base.Clone()
		if err := est.SetParams(params); err != nil {
			return 0, err
		}
		if err := est.Fit(takeRows(X, trainIdx), takeFloats(y, trainIdx)); err != nil {
			return 0, fmt.Errorf("fit fold %d: %w", f, err)
		}

		pred, err := est.Predict(takeRows(X, valIdx))
		if err != nil {
			return 0, fmt.Errorf("predict fold %d: %w", f, err)
		}
		foldScores = append(foldScores, scorer(takeFloats(y, valIdx), pred))
	}

	return stat.Mean(foldScores, nil), nil
}

// enumerateGrid expands the grid into every combination, iterating keys in
// sorted order so the candidate sequence is deterministic.
func enumerateGrid(grid map[string][]float64) []map[string]float64 {
	keys := make([]string, 0, len(grid))
	for k := range grid {
		if len(grid[k]) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	combos := []map[string]float64{{}}
	for _, k := range keys {
		var next []map[string]float64
		for _, combo := range combos {
			for _, v := range grid[k] {
				c := make(map[string]float64, len(combo)+1)
				for ck, cv := range combo {
					c[ck] = cv
				}
				c[k] = v
				next = append(next, c)
			}
		}
		combos = next
	}
	return combos
}

func takeRows(X *mat.Dense, idx []int) *mat.Dense {
	_, cols := X.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	for i, j := range idx {
		out.SetRow(i, X.RawRowView(j))
	}
	return out
}

func takeFloats(xs []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = xs[j]
	}
	return out
}
