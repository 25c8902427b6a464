package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"clocklab/internal/domain"
	"clocklab/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.MeasurementRun // keyed by run_id
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.MeasurementRun),
	}
}

var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(_ context.Context, r *domain.MeasurementRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *r
	copy.CreatedAt = time.Now().UnixMilli()
	s.data[r.RunID] = &copy
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.MeasurementRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	copy := *r
	return &copy, nil
}

// GetAll retrieves all runs, ordered by start time ASC.
func (s *RunStore) GetAll(_ context.Context) ([]*domain.MeasurementRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.MeasurementRun, 0, len(s.data))
	for _, r := range s.data {
		copy := *r
		result = append(result, &copy)
	}
	sortRuns(result)
	return result, nil
}

// GetByTimeRange retrieves runs started within [start, end] (inclusive).
func (s *RunStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.MeasurementRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MeasurementRun
	for _, r := range s.data {
		if r.StartTimeNs >= start && r.StartTimeNs <= end {
			copy := *r
			result = append(result, &copy)
		}
	}
	sortRuns(result)
	return result, nil
}

// GetBySource retrieves all runs of a given provenance.
func (s *RunStore) GetBySource(_ context.Context, source domain.Source) ([]*domain.MeasurementRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MeasurementRun
	for _, r := range s.data {
		if r.Source == source {
			copy := *r
			result = append(result, &copy)
		}
	}
	sortRuns(result)
	return result, nil
}

func sortRuns(runs []*domain.MeasurementRun) {
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartTimeNs != runs[j].StartTimeNs {
			return runs[i].StartTimeNs < runs[j].StartTimeNs
		}
		return runs[i].RunID < runs[j].RunID
	})
}
