package storage

import (
	"context"

	"clocklab/internal/domain"
)

// RunStore provides access to measurement_runs storage.
type RunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.MeasurementRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.MeasurementRun, error)

	// GetAll retrieves all runs, ordered by start time ASC.
	GetAll(ctx context.Context) ([]*domain.MeasurementRun, error)

	// GetByTimeRange retrieves runs whose start time falls within
	// [start, end] (inclusive, nanoseconds).
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.MeasurementRun, error)

	// GetBySource retrieves all runs of a given provenance.
	GetBySource(ctx context.Context, source domain.Source) ([]*domain.MeasurementRun, error)
}

// SampleStore provides access to te_samples storage.
type SampleStore interface {
	// InsertBulk adds multiple samples for a run atomically. Fails entire
	// batch on duplicate (run_id, timestamp_ns).
	InsertBulk(ctx context.Context, runID string, samples []domain.TimeErrorSample) error

	// GetByRunID retrieves all samples for a run, ordered by timestamp ASC.
	GetByRunID(ctx context.Context, runID string) ([]domain.TimeErrorSample, error)

	// GetByTimeRange retrieves samples for a run within [start, end]
	// (inclusive, nanoseconds).
	GetByTimeRange(ctx context.Context, runID string, start, end int64) ([]domain.TimeErrorSample, error)
}

// ResultStore provides access to metric_results storage.
type ResultStore interface {
	// InsertBulk adds metric rows for a run atomically. Fails entire batch
	// on duplicate (run_id, family, tau_s).
	InsertBulk(ctx context.Context, rows []domain.MetricRow) error

	// GetByRunID retrieves all metric rows for a run, ordered by family,
	// then tau ASC.
	GetByRunID(ctx context.Context, runID string) ([]domain.MetricRow, error)

	// GetByFamily retrieves one metric family for a run as a MetricResult.
	GetByFamily(ctx context.Context, runID, family string) (domain.MetricResult, error)
}
