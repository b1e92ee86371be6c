package storage

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/javierwelch/challenge-latam/src/logger"
)

func testStore(t *testing.T) *RunStore {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "json"})
	if err != nil {
		t.Fatal(err)
	}
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"), log)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreAndListRuns(t *testing.T) {
	store := testStore(t)

	run := &Run{
		CreatedAt:       time.Date(2017, 6, 1, 12, 0, 0, 0, time.UTC),
		Source:          "data/dataset_SCL.csv",
		Rows:            4,
		GlobalDelayRate: 75,
		Rates: map[string]map[string]float64{
			"OPERA": {"A": 50, "B": 100, "C": math.NaN()},
		},
		BestParams: map[string]float64{"learning_rate": 0.1},
		BestScore:  0.9,
	}

	id, err := store.StoreRun(run)
	if err != nil {
		t.Fatalf("StoreRun: %v", err)
	}
	if id == 0 {
		t.Error("expected a non-zero run id")
	}

	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}

	got := runs[0]
	if got.Source != run.Source || got.Rows != run.Rows {
		t.Errorf("run = %+v", got)
	}
	if got.GlobalDelayRate != 75 {
		t.Errorf("global rate = %v, want 75", got.GlobalDelayRate)
	}
	if got.Rates["OPERA"]["B"] != 100 {
		t.Errorf("rates = %v", got.Rates)
	}
	// NaN entries are stripped before JSON encoding.
	if _, ok := got.Rates["OPERA"]["C"]; ok {
		t.Error("NaN rate should not round-trip")
	}
	if got.BestParams["learning_rate"] != 0.1 {
		t.Errorf("best params = %v", got.BestParams)
	}
}

func TestStoreRunNaNGlobal(t *testing.T) {
	store := testStore(t)

	_, err := store.StoreRun(&Run{
		CreatedAt:       time.Now(),
		Source:          "empty.csv",
		GlobalDelayRate: math.NaN(),
		Rates:           map[string]map[string]float64{},
		BestParams:      map[string]float64{},
	})
	if err != nil {
		t.Fatalf("StoreRun with NaN global: %v", err)
	}

	runs, err := store.ListRuns(1)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if !math.IsNaN(runs[0].GlobalDelayRate) {
		t.Errorf("global rate = %v, want NaN back from NULL", runs[0].GlobalDelayRate)
	}
}
