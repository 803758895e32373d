package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/hydroloc/internal/anneal"
	"github.com/banshee-data/hydroloc/internal/geometry"
	"github.com/banshee-data/hydroloc/internal/timeutil"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Run is a persisted optimisation run.
type Run struct {
	RunID       string
	Label       string
	Seed        uint64
	Iteration   int
	Schedule    anneal.Schedule
	ConfigJSON  json.RawMessage
	InitialCost float64
	FinalCost   float64
	BestCost    float64
	StopReason  string
	Steps       int
	Trials      int
	Elapsed     time.Duration
	FinalLayout geometry.Layout
	BestLayout  geometry.Layout
	CreatedAt   int64 // unix nanoseconds

	// AcceptanceRates is only populated by Get.
	AcceptanceRates []anneal.RateSample
}

// NewRun builds a Run from an optimiser result.
func NewRun(res *anneal.Result, schedule anneal.Schedule, seed uint64, iteration int) *Run {
	run := &Run{
		Seed:        seed,
		Iteration:   iteration,
		Schedule:    schedule,
		FinalCost:   res.Cost,
		BestCost:    res.BestCost,
		StopReason:  string(res.StopReason),
		Steps:       res.Steps,
		Elapsed:     res.Elapsed,
		FinalLayout: res.Layout.Clone(),
		BestLayout:  res.BestLayout.Clone(),
	}
	if res.Trace != nil {
		run.InitialCost = res.Trace.InitialCost
		run.Trials = len(res.Trace.Costs)
		run.AcceptanceRates = append([]anneal.RateSample(nil), res.Trace.AcceptanceRates...)
	}
	return run
}

// RunStore persists optimisation runs.
type RunStore struct {
	db    *DB
	clock timeutil.Clock
}

// NewRunStore creates a RunStore on db.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db, clock: timeutil.RealClock{}}
}

// SetClock overrides the clock used for created_at.
func (s *RunStore) SetClock(c timeutil.Clock) {
	s.clock = c
}

// Insert stores run and its acceptance samples. An empty RunID is filled
// with a new UUID.
func (s *RunStore) Insert(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.clock.Now().UnixNano()
	}

	scheduleJSON, err := json.Marshal(run.Schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}
	finalJSON, err := json.Marshal(run.FinalLayout)
	if err != nil {
		return fmt.Errorf("marshal final layout: %w", err)
	}
	bestJSON, err := json.Marshal(run.BestLayout)
	if err != nil {
		return fmt.Errorf("marshal best layout: %w", err)
	}
	var configJSON sql.NullString
	if len(run.ConfigJSON) > 0 {
		configJSON = sql.NullString{String: string(run.ConfigJSON), Valid: true}
	}

	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		_, err = tx.Exec(`
			INSERT INTO optimization_runs (
				run_id, label, seed, iteration, receivers, schedule_json, config_json,
				initial_cost, final_cost, best_cost, stop_reason, steps, trials,
				elapsed_ns, final_layout_json, best_layout_json, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.Label, int64(run.Seed), run.Iteration, len(run.FinalLayout),
			string(scheduleJSON), configJSON,
			run.InitialCost, run.FinalCost, run.BestCost, run.StopReason, run.Steps, run.Trials,
			int64(run.Elapsed), string(finalJSON), string(bestJSON), run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO optimization_steps (run_id, step, temperature, acceptance_rate)
			VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare step insert: %w", err)
		}
		defer stmt.Close()
		for i, r := range run.AcceptanceRates {
			if _, err := stmt.Exec(run.RunID, i+1, r.Temperature, r.Rate); err != nil {
				return fmt.Errorf("insert step %d: %w", i+1, err)
			}
		}
		return tx.Commit()
	})
}

const runColumns = `run_id, label, seed, iteration, schedule_json, config_json,
	initial_cost, final_cost, best_cost, stop_reason, steps, trials,
	elapsed_ns, final_layout_json, best_layout_json, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run                 Run
		label, configJSON   sql.NullString
		seed, elapsed       int64
		scheduleJSON        string
		finalJSON, bestJSON string
	)
	err := row.Scan(&run.RunID, &label, &seed, &run.Iteration, &scheduleJSON, &configJSON,
		&run.InitialCost, &run.FinalCost, &run.BestCost, &run.StopReason, &run.Steps, &run.Trials,
		&elapsed, &finalJSON, &bestJSON, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	run.Label = label.String
	run.Seed = uint64(seed)
	run.Elapsed = time.Duration(elapsed)
	if configJSON.Valid {
		run.ConfigJSON = json.RawMessage(configJSON.String)
	}
	if err := json.Unmarshal([]byte(scheduleJSON), &run.Schedule); err != nil {
		return nil, fmt.Errorf("decode schedule for run %s: %w", run.RunID, err)
	}
	if err := json.Unmarshal([]byte(finalJSON), &run.FinalLayout); err != nil {
		return nil, fmt.Errorf("decode final layout for run %s: %w", run.RunID, err)
	}
	if err := json.Unmarshal([]byte(bestJSON), &run.BestLayout); err != nil {
		return nil, fmt.Errorf("decode best layout for run %s: %w", run.RunID, err)
	}
	return &run, nil
}

// Get returns the run with the given ID, including its acceptance samples.
func (s *RunStore) Get(id string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM optimization_runs WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT temperature, acceptance_rate FROM optimization_steps
		WHERE run_id = ? ORDER BY step`, id)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r anneal.RateSample
		if err := rows.Scan(&r.Temperature, &r.Rate); err != nil {
			return nil, err
		}
		run.AcceptanceRates = append(run.AcceptanceRates, r)
	}
	return run, rows.Err()
}

// List returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *RunStore) List(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM optimization_runs
		ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Delete removes a run and, through the foreign key, its steps.
func (s *RunStore) Delete(id string) error {
	return retryOnBusy(func() error {
		res, err := s.db.Exec(`DELETE FROM optimization_runs WHERE run_id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("run %s: %w", id, ErrNotFound)
		}
		return nil
	})
}
