package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"clocklab/internal/domain"
	"clocklab/internal/storage"
)

// ResultStore is an in-memory implementation of storage.ResultStore.
type ResultStore struct {
	mu   sync.RWMutex
	data map[string]domain.MetricRow // keyed by (run_id, family, tau_s)
}

// NewResultStore creates a new in-memory result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		data: make(map[string]domain.MetricRow),
	}
}

var _ storage.ResultStore = (*ResultStore)(nil)

func resultKey(runID, family string, tauS float64) string {
	return fmt.Sprintf("%s|%s|%g", runID, family, tauS)
}

// InsertBulk adds metric rows atomically. Fails entire batch on any duplicate.
func (s *ResultStore) InsertBulk(_ context.Context, rows []domain.MetricRow) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if row.RunID == "" || row.Family == "" {
			return storage.ErrInvalidInput
		}
		key := resultKey(row.RunID, row.Family, row.TauS)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, row := range rows {
		s.data[resultKey(row.RunID, row.Family, row.TauS)] = row
	}
	return nil
}

// GetByRunID retrieves all metric rows for a run, ordered by family then tau.
func (s *ResultStore) GetByRunID(_ context.Context, runID string) ([]domain.MetricRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.MetricRow
	for _, row := range s.data {
		if row.RunID == runID {
			result = append(result, row)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Family != result[j].Family {
			return result[i].Family < result[j].Family
		}
		return result[i].TauS < result[j].TauS
	})
	return result, nil
}

// GetByFamily retrieves one metric family for a run as a MetricResult.
func (s *ResultStore) GetByFamily(_ context.Context, runID, family string) (domain.MetricResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(domain.MetricResult)
	for _, row := range s.data {
		if row.RunID == runID && row.Family == family {
			result[row.TauS] = domain.MetricValue{Ns: row.ValueNs, Defined: row.Defined}
		}
	}
	return result, nil
}
