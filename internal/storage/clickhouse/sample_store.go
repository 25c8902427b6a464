package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"clocklab/internal/domain"
	"clocklab/internal/storage"
)

// SampleStore implements storage.SampleStore using ClickHouse. TE samples are
// the high-volume table: hundreds of rows per second per run, write-once,
// scanned in timestamp order.
type SampleStore struct {
	conn *Conn
}

// NewSampleStore creates a new SampleStore.
func NewSampleStore(conn *Conn) *SampleStore {
	return &SampleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SampleStore = (*SampleStore)(nil)

// InsertBulk adds samples for a run. MergeTree does not enforce uniqueness,
// so duplicates are checked explicitly before the batch is sent: intra-batch
// first, then against existing rows.
func (s *SampleStore) InsertBulk(ctx context.Context, runID string, samples []domain.TimeErrorSample) (err error) {
	defer observeQuery("samples_insert_bulk", time.Now(), &err)

	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(samples) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(samples))
	for _, sample := range samples {
		if _, exists := seen[sample.TimestampNs]; exists {
			return storage.ErrDuplicateKey
		}
		seen[sample.TimestampNs] = struct{}{}
	}

	existing, err := s.countInRange(ctx, runID, samples[0].TimestampNs, samples[len(samples)-1].TimestampNs)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if existing > 0 {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO te_samples (
			run_id, timestamp_ns, te_ns
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, sample := range samples {
		if err := batch.Append(runID, sample.TimestampNs, sample.TENs); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves all samples for a run, ordered by timestamp ASC.
func (s *SampleStore) GetByRunID(ctx context.Context, runID string) (samples []domain.TimeErrorSample, err error) {
	defer observeQuery("samples_get_by_run_id", time.Now(), &err)

	query := `
		SELECT timestamp_ns, te_ns
		FROM te_samples
		WHERE run_id = ?
		ORDER BY timestamp_ns ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run id: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

// GetByTimeRange retrieves samples for a run within [start, end] (inclusive).
func (s *SampleStore) GetByTimeRange(ctx context.Context, runID string, start, end int64) (samples []domain.TimeErrorSample, err error) {
	defer observeQuery("samples_get_by_time_range", time.Now(), &err)

	query := `
		SELECT timestamp_ns, te_ns
		FROM te_samples
		WHERE run_id = ? AND timestamp_ns >= ? AND timestamp_ns <= ?
		ORDER BY timestamp_ns ASC
	`

	rows, err := s.conn.Query(ctx, query, runID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

// countInRange counts existing samples for a run within [start, end].
func (s *SampleStore) countInRange(ctx context.Context, runID string, start, end int64) (uint64, error) {
	query := `
		SELECT count(*) FROM te_samples
		WHERE run_id = ? AND timestamp_ns >= ? AND timestamp_ns <= ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, runID, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("count samples: %w", err)
	}
	return count, nil
}

func scanSamples(rows driver.Rows) ([]domain.TimeErrorSample, error) {
	var samples []domain.TimeErrorSample

	for rows.Next() {
		var sample domain.TimeErrorSample
		if err := rows.Scan(&sample.TimestampNs, &sample.TENs); err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}
		samples = append(samples, sample)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sample rows: %w", err)
	}

	return samples, nil
}
