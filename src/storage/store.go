// Package storage persists analysis-run history in a local sqlite file.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/javierwelch/challenge-latam/src/logger"
)

// Run is one completed analysis over a dataset snapshot.
type Run struct {
	ID              int64
	CreatedAt       time.Time
	Source          string // dataset path the run was computed from
	Rows            int
	GlobalDelayRate float64                       // percent; NaN when delay_15 was fully missing
	Rates           map[string]map[string]float64 // grouping column -> group -> rate
	BestParams      map[string]float64
	BestScore       float64
}

// RunStore stores runs in sqlite.
type RunStore struct {
	db  *sql.DB
	log *logger.Logger
}

// Open opens (and if needed creates) the run database.
func Open(path string, log *logger.Logger) (*RunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run database: %w", err)
	}

	s := &RunStore{db: db, log: log.Named("run-store")}
	if err := s.initDB(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *RunStore) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TIMESTAMP NOT NULL,
			source TEXT NOT NULL,
			rows INTEGER NOT NULL,
			global_delay_rate REAL,
			rates_json TEXT NOT NULL,
			best_params_json TEXT NOT NULL,
			best_score REAL NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`)
	if err != nil {
		return fmt.Errorf("create runs index: %w", err)
	}
	return nil
}

// StoreRun inserts a run and returns its id.
func (s *RunStore) StoreRun(run *Run) (int64, error) {
	ratesJSON, err := json.Marshal(stripNaN(run.Rates))
	if err != nil {
		return 0, fmt.Errorf("encode rates: %w", err)
	}
	paramsJSON, err := json.Marshal(run.BestParams)
	if err != nil {
		return 0, fmt.Errorf("encode params: %w", err)
	}

	global := sql.NullFloat64{Float64: run.GlobalDelayRate, Valid: !math.IsNaN(run.GlobalDelayRate)}

	result, err := s.db.Exec(
		`INSERT INTO runs
		(created_at, source, rows, global_delay_rate, rates_json, best_params_json, best_score)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.CreatedAt.Format(time.RFC3339),
		run.Source,
		run.Rows,
		global,
		string(ratesJSON),
		string(paramsJSON),
		run.BestScore,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	s.log.Debug("stored run", logger.Int64("id", id), logger.String("source", run.Source))
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *RunStore) ListRuns(limit int) ([]*Run, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, source, rows, global_delay_rate, rates_json, best_params_json, best_score
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var (
			run        Run
			createdAt  string
			global     sql.NullFloat64
			ratesJSON  string
			paramsJSON string
		)
		if err := rows.Scan(&run.ID, &createdAt, &run.Source, &run.Rows, &global, &ratesJSON, &paramsJSON, &run.BestScore); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp: %w", err)
		}
		if global.Valid {
			run.GlobalDelayRate = global.Float64
		} else {
			run.GlobalDelayRate = math.NaN()
		}
		if err := json.Unmarshal([]byte(ratesJSON), &run.Rates); err != nil {
			return nil, fmt.Errorf("decode rates: %w", err)
		}
		if err := json.Unmarshal([]byte(paramsJSON), &run.BestParams); err != nil {
			return nil, fmt.Errorf("decode params: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

func (s *RunStore) Close() error {
	return s.db.Close()
}

// stripNaN drops all-missing groups before JSON encoding; encoding/json
// rejects NaN.
func stripNaN(rates map[string]map[string]float64) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(rates))
	for col, groups := range rates {
		clean := make(map[string]float64, len(groups))
		for g, r := range groups {
			if !math.IsNaN(r) {
				clean[g] = r
			}
		}
		out[col] = clean
	}
	return out
}
