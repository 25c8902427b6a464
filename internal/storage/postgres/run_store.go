package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"clocklab/internal/domain"
	"clocklab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.MeasurementRun) (err error) {
	defer observeQuery("runs_insert", time.Now(), &err)

	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO measurement_runs (
			run_id, test_name, source, sample_rate_hz, start_time_ns, sample_count
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.pool.Exec(ctx, query,
		r.RunID,
		r.TestName,
		string(r.Source),
		r.SampleRateHz,
		r.StartTimeNs,
		r.SampleCount,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (run *domain.MeasurementRun, err error) {
	defer observeQuery("runs_get_by_id", time.Now(), &err)

	query := `
		SELECT run_id, test_name, source, sample_rate_hz, start_time_ns, sample_count,
		       (EXTRACT(EPOCH FROM created_at) * 1000)::BIGINT
		FROM measurement_runs
		WHERE run_id = $1
	`

	var r domain.MeasurementRun
	var source string
	err = s.pool.QueryRow(ctx, query, runID).Scan(
		&r.RunID,
		&r.TestName,
		&source,
		&r.SampleRateHz,
		&r.StartTimeNs,
		&r.SampleCount,
		&r.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run by id: %w", err)
	}
	r.Source = domain.Source(source)
	return &r, nil
}

// GetAll retrieves all runs, ordered by start time ASC.
func (s *RunStore) GetAll(ctx context.Context) (runs []*domain.MeasurementRun, err error) {
	defer observeQuery("runs_get_all", time.Now(), &err)

	query := `
		SELECT run_id, test_name, source, sample_rate_hz, start_time_ns, sample_count,
		       (EXTRACT(EPOCH FROM created_at) * 1000)::BIGINT
		FROM measurement_runs
		ORDER BY start_time_ns ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// GetByTimeRange retrieves runs started within [start, end] (inclusive).
func (s *RunStore) GetByTimeRange(ctx context.Context, start, end int64) (runs []*domain.MeasurementRun, err error) {
	defer observeQuery("runs_get_by_time_range", time.Now(), &err)

	query := `
		SELECT run_id, test_name, source, sample_rate_hz, start_time_ns, sample_count,
		       (EXTRACT(EPOCH FROM created_at) * 1000)::BIGINT
		FROM measurement_runs
		WHERE start_time_ns >= $1 AND start_time_ns <= $2
		ORDER BY start_time_ns ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get runs by time range: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// GetBySource retrieves all runs of a given provenance.
func (s *RunStore) GetBySource(ctx context.Context, source domain.Source) (runs []*domain.MeasurementRun, err error) {
	defer observeQuery("runs_get_by_source", time.Now(), &err)

	query := `
		SELECT run_id, test_name, source, sample_rate_hz, start_time_ns, sample_count,
		       (EXTRACT(EPOCH FROM created_at) * 1000)::BIGINT
		FROM measurement_runs
		WHERE source = $1
		ORDER BY start_time_ns ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query, string(source))
	if err != nil {
		return nil, fmt.Errorf("get runs by source: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// scanRuns scans multiple rows into a slice of MeasurementRun.
func scanRuns(rows pgx.Rows) ([]*domain.MeasurementRun, error) {
	var runs []*domain.MeasurementRun

	for rows.Next() {
		var r domain.MeasurementRun
		var source string

		err := rows.Scan(
			&r.RunID,
			&r.TestName,
			&source,
			&r.SampleRateHz,
			&r.StartTimeNs,
			&r.SampleCount,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		r.Source = domain.Source(source)

		runs = append(runs, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	return runs, nil
}
