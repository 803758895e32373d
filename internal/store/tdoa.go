package store

import (
	"database/sql"
	"fmt"

	"github.com/banshee-data/hydroloc/internal/tdoa"
	"github.com/banshee-data/hydroloc/internal/timeutil"
	"github.com/google/uuid"
)

// Measurement is one stored pair result. Error is empty on success.
type Measurement struct {
	PairIndex    int
	RefChannel   int
	OtherChannel int
	Lag          int
	Delay        float64
	Correlation  float64

	// SamplingFrequency is the rate Lag is counted at.
	SamplingFrequency float64
	Error             string
}

// Batch describes one stored estimation batch.
type Batch struct {
	BatchID string
	Label   string
	// SamplingFrequency is the rate of the input waveforms.
	SamplingFrequency float64
	// EffectiveSamplingFrequency is the rate the channels were correlated
	// at. It exceeds SamplingFrequency when upsampling was applied.
	EffectiveSamplingFrequency float64
	MaxTDOA                    float64
	CreatedAt                  int64
}

// effectiveRate returns the correlation rate reported by the results,
// falling back to fs when no result carries one.
func effectiveRate(results []tdoa.Result, fs float64) float64 {
	for _, r := range results {
		if r.SamplingFrequency > 0 {
			return r.SamplingFrequency
		}
	}
	return fs
}

// TDOAStore persists batches of TDOA measurements.
type TDOAStore struct {
	db    *DB
	clock timeutil.Clock
}

// NewTDOAStore creates a TDOAStore on db.
func NewTDOAStore(db *DB) *TDOAStore {
	return &TDOAStore{db: db, clock: timeutil.RealClock{}}
}

// InsertBatch stores results as a new batch and returns its ID. fs is the
// input sampling frequency; the rate each lag is counted at is taken from
// the results.
func (s *TDOAStore) InsertBatch(label string, fs, maxTDOA float64, results []tdoa.Result) (string, error) {
	batchID := uuid.New().String()
	createdAt := s.clock.Now().UnixNano()
	effective := effectiveRate(results, fs)

	err := retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`
			INSERT INTO tdoa_batches (
				batch_id, label, sampling_frequency, effective_sampling_frequency, max_tdoa, created_at
			) VALUES (?, ?, ?, ?, ?, ?)`, batchID, label, fs, effective, maxTDOA, createdAt); err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO tdoa_measurements (
				batch_id, pair_index, ref_channel, other_channel,
				lag_samples, tdoa_sec, correlation, sampling_frequency, error
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare measurement insert: %w", err)
		}
		defer stmt.Close()

		for i, r := range results {
			var (
				lag         sql.NullInt64
				delay, corr sql.NullFloat64
				rate        sql.NullFloat64
				errText     sql.NullString
			)
			if r.SamplingFrequency > 0 {
				rate = sql.NullFloat64{Float64: r.SamplingFrequency, Valid: true}
			}
			if r.Err != nil {
				errText = sql.NullString{String: r.Err.Error(), Valid: true}
			} else {
				lag = sql.NullInt64{Int64: int64(r.Lag), Valid: true}
				delay = sql.NullFloat64{Float64: r.Delay, Valid: true}
				corr = sql.NullFloat64{Float64: r.Correlation, Valid: true}
			}
			if _, err := stmt.Exec(batchID, i, r.Pair.Ref, r.Pair.Other, lag, delay, corr, rate, errText); err != nil {
				return fmt.Errorf("insert measurement %d: %w", i, err)
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return "", err
	}
	return batchID, nil
}

// ListByBatch returns the measurements of a batch in pair order.
func (s *TDOAStore) ListByBatch(batchID string) ([]Measurement, error) {
	rows, err := s.db.Query(`
		SELECT pair_index, ref_channel, other_channel, lag_samples, tdoa_sec, correlation,
			sampling_frequency, error
		FROM tdoa_measurements WHERE batch_id = ? ORDER BY pair_index`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}
	defer rows.Close()

	var out []Measurement
	for rows.Next() {
		var (
			m           Measurement
			lag         sql.NullInt64
			delay, corr sql.NullFloat64
			rate        sql.NullFloat64
			errText     sql.NullString
		)
		if err := rows.Scan(&m.PairIndex, &m.RefChannel, &m.OtherChannel, &lag, &delay, &corr, &rate, &errText); err != nil {
			return nil, err
		}
		m.Lag = int(lag.Int64)
		m.Delay = delay.Float64
		m.Correlation = corr.Float64
		m.SamplingFrequency = rate.Float64
		m.Error = errText.String
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		var exists int
		err := s.db.QueryRow(`SELECT 1 FROM tdoa_batches WHERE batch_id = ?`, batchID).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("batch %s: %w", batchID, ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetBatch returns the metadata of a batch.
func (s *TDOAStore) GetBatch(batchID string) (*Batch, error) {
	var (
		b         Batch
		label     sql.NullString
		effective sql.NullFloat64
	)
	err := s.db.QueryRow(`
		SELECT batch_id, label, sampling_frequency, effective_sampling_frequency, max_tdoa, created_at
		FROM tdoa_batches WHERE batch_id = ?`, batchID).
		Scan(&b.BatchID, &label, &b.SamplingFrequency, &effective, &b.MaxTDOA, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("batch %s: %w", batchID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	b.Label = label.String
	b.EffectiveSamplingFrequency = effective.Float64
	return &b, nil
}
