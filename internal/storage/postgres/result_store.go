package postgres

import (
	"context"
	"fmt"
	"time"

	"clocklab/internal/domain"
	"clocklab/internal/storage"
)

// ResultStore implements storage.ResultStore using PostgreSQL.
type ResultStore struct {
	pool *Pool
}

// NewResultStore creates a new ResultStore.
func NewResultStore(pool *Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ResultStore = (*ResultStore)(nil)

// InsertBulk adds metric rows atomically. Fails entire batch on any duplicate.
func (s *ResultStore) InsertBulk(ctx context.Context, rows []domain.MetricRow) (err error) {
	defer observeQuery("results_insert_bulk", time.Now(), &err)

	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO metric_results (
			run_id, family, tau_s, value_ns, defined
		) VALUES ($1, $2, $3, $4, $5)
	`

	for _, row := range rows {
		if row.RunID == "" || row.Family == "" {
			return storage.ErrInvalidInput
		}
		_, err = tx.Exec(ctx, query,
			row.RunID,
			row.Family,
			row.TauS,
			row.ValueNs,
			row.Defined,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert metric row in bulk: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByRunID retrieves all metric rows for a run, ordered by family then tau.
func (s *ResultStore) GetByRunID(ctx context.Context, runID string) (rows []domain.MetricRow, err error) {
	defer observeQuery("results_get_by_run_id", time.Now(), &err)

	query := `
		SELECT run_id, family, tau_s, value_ns, defined
		FROM metric_results
		WHERE run_id = $1
		ORDER BY family ASC, tau_s ASC
	`

	pgRows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get metric rows by run id: %w", err)
	}
	defer pgRows.Close()

	for pgRows.Next() {
		var row domain.MetricRow
		if err := pgRows.Scan(&row.RunID, &row.Family, &row.TauS, &row.ValueNs, &row.Defined); err != nil {
			return nil, fmt.Errorf("scan metric row: %w", err)
		}
		rows = append(rows, row)
	}
	if err := pgRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metric rows: %w", err)
	}

	return rows, nil
}

// GetByFamily retrieves one metric family for a run as a MetricResult.
func (s *ResultStore) GetByFamily(ctx context.Context, runID, family string) (result domain.MetricResult, err error) {
	defer observeQuery("results_get_by_family", time.Now(), &err)

	query := `
		SELECT tau_s, value_ns, defined
		FROM metric_results
		WHERE run_id = $1 AND family = $2
	`

	pgRows, err := s.pool.Query(ctx, query, runID, family)
	if err != nil {
		return nil, fmt.Errorf("get metric family: %w", err)
	}
	defer pgRows.Close()

	result = make(domain.MetricResult)
	for pgRows.Next() {
		var tauS, valueNs float64
		var defined bool
		if err := pgRows.Scan(&tauS, &valueNs, &defined); err != nil {
			return nil, fmt.Errorf("scan metric family row: %w", err)
		}
		result[tauS] = domain.MetricValue{Ns: valueNs, Defined: defined}
	}
	if err := pgRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metric family rows: %w", err)
	}

	return result, nil
}
