package server

import (
	"encoding/json"
	"math"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/javierwelch/challenge-latam/src/analysis"
	"github.com/javierwelch/challenge-latam/src/logger"
	"github.com/javierwelch/challenge-latam/src/processor"
	"github.com/javierwelch/challenge-latam/src/storage"
)

// Handler serves the latest analysis result and the run history.
type Handler struct {
	chartsDir string
	store     *storage.RunStore // nil disables /runs
	logger    *logger.Logger

	mu     sync.RWMutex
	latest *processor.Result
}

func NewHandler(chartsDir string, store *storage.RunStore, log *logger.Logger) *Handler {
	return &Handler{
		chartsDir: chartsDir,
		store:     store,
		logger:    log.Named("api-handler"),
	}
}

// SetResult publishes a freshly computed result.
func (h *Handler) SetResult(res *processor.Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = res
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// rateEntry is one bar of the delay-rate table. Rate is nil for groups
// whose delay values were all missing; JSON has no NaN.
type rateEntry struct {
	Group string   `json:"group"`
	Rate  *float64 `json:"delay_rate"`
}

// GetRates returns the delay rates for one grouping column.
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")

	h.mu.RLock()
	res := h.latest
	h.mu.RUnlock()

	if res == nil {
		http.Error(w, "no analysis run yet", http.StatusServiceUnavailable)
		return
	}
	rates, ok := res.RatesByColumn[column]
	if !ok {
		http.Error(w, "unknown grouping column", http.StatusNotFound)
		return
	}

	groups := rates.Col(column).Records()
	vals := rates.Col(analysis.RateColumn).Float()
	entries := make([]rateEntry, len(groups))
	for i := range groups {
		entries[i].Group = groups[i]
		if !math.IsNaN(vals[i]) {
			v := vals[i]
			entries[i].Rate = &v
		}
	}
	writeJSON(w, entries)
}

// GetSummary returns the headline numbers of the latest run.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	res := h.latest
	h.mu.RUnlock()

	if res == nil || res.Run == nil {
		http.Error(w, "no analysis run yet", http.StatusServiceUnavailable)
		return
	}

	var global *float64
	if !math.IsNaN(res.Run.GlobalDelayRate) {
		g := res.Run.GlobalDelayRate
		global = &g
	}
	writeJSON(w, map[string]any{
		"source":            res.Run.Source,
		"rows":              res.Run.Rows,
		"global_delay_rate": global,
		"best_params":       res.Run.BestParams,
		"best_score":        res.Run.BestScore,
	})
}

// GetRuns returns the stored run history, newest first.
func (h *Handler) GetRuns(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "run history disabled", http.StatusNotFound)
		return
	}
	runs, err := h.store.ListRuns(20)
	if err != nil {
		h.logger.Error("list runs", logger.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	type runView struct {
		ID        int64  `json:"id"`
		CreatedAt string `json:"created_at"`
		Source    string `json:"source"`
		Rows      int    `json:"rows"`
	}
	views := make([]runView, len(runs))
	for i, run := range runs {
		views[i] = runView{
			ID:        run.ID,
			CreatedAt: run.CreatedAt.Format("2006-01-02 15:04:05"),
			Source:    run.Source,
			Rows:      run.Rows,
		}
	}
	writeJSON(w, views)
}

// GetChart serves a rendered chart PNG by filename.
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name != filepath.Base(name) || filepath.Ext(name) != ".png" {
		http.Error(w, "bad chart name", http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.chartsDir, name))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
