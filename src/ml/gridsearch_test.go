package ml

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

// separableData builds an interleaved, linearly separable binary problem
// so every contiguous fold sees both classes.
func separableData(n int) (*mat.Dense, []float64) {
	X := mat.NewDense(n, 1, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			X.Set(i, 0, -1)
			y[i] = 0
		} else {
			X.Set(i, 0, 1)
			y[i] = 1
		}
	}
	return X, y
}

func TestGridSearchCVSelectsFromGrid(t *testing.T) {
	X, y := separableData(20)

	grid := map[string][]float64{
		"learning_rate": {0.1, 0.5},
		"l2":            {0, 0.1},
		"epochs":        {50},
	}

	search := NewGridSearchCV(NewLogisticRegression(), grid)
	search.NJobs = 2
	if err := search.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if search.BestEstimator == nil {
		t.Fatal("no best estimator after Fit")
	}
	// Selected hyperparameters must come from the candidate sets.
	for name, candidates := range grid {
		v, ok := search.BestParams[name]
		if !ok {
			t.Fatalf("best params missing %q: %v", name, search.BestParams)
		}
		found := false
		for _, c := range candidates {
			if v == c {
				found = true
			}
		}
		if !found {
			t.Errorf("best %s = %v not among candidates %v", name, v, candidates)
		}
	}

	if search.BestScore < 0.9 {
		t.Errorf("best score = %v, want >= 0.9 on separable data", search.BestScore)
	}

	// The refitted estimator carries the winning hyperparameters.
	params := search.BestEstimator.Params()
	for name, v := range search.BestParams {
		if params[name] != v {
			t.Errorf("refit estimator %s = %v, want %v", name, params[name], v)
		}
	}

	pred, err := search.BestEstimator.Predict(X)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if acc := Accuracy(y, pred); acc < 0.9 {
		t.Errorf("training accuracy = %v, want >= 0.9", acc)
	}
}

func TestGridSearchCVEmptyGridUsesDefaults(t *testing.T) {
	X, y := separableData(10)

	search := NewGridSearchCV(NewLogisticRegression(), nil)
	if err := search.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if len(search.BestParams) != 0 {
		t.Errorf("best params = %v, want the single empty candidate", search.BestParams)
	}
	if search.BestEstimator == nil {
		t.Fatal("no best estimator after Fit")
	}
}

func TestGridSearchCVLengthMismatch(t *testing.T) {
	X, _ := separableData(10)
	if err := NewGridSearchCV(NewLogisticRegression(), nil).Fit(X, []float64{1, 0}); err == nil {
		t.Fatal("expected an error for mismatched X and y")
	}
}

func TestEnumerateGridDeterministic(t *testing.T) {
	grid := map[string][]float64{
		"b": {1, 2},
		"a": {10},
	}
	first := enumerateGrid(grid)
	second := enumerateGrid(grid)

	if len(first) != 2 {
		t.Fatalf("got %d combos, want 2", len(first))
	}
	for i := range first {
		for k, v := range first[i] {
			if second[i][k] != v {
				t.Fatalf("enumeration order changed between calls: %v vs %v", first, second)
			}
		}
	}
	// Keys iterate sorted, so "a" varies slowest.
	if first[0]["b"] != 1 || first[1]["b"] != 2 {
		t.Errorf("combos out of order: %v", first)
	}
}

func TestLogisticRegressionRejectsBadLabels(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{0, 1})
	if err := NewLogisticRegression().Fit(X, []float64{0, 2}); err == nil {
		t.Fatal("expected an error for non-binary labels")
	}
}
