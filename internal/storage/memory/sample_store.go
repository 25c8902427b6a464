package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"clocklab/internal/domain"
	"clocklab/internal/storage"
)

// SampleStore is an in-memory implementation of storage.SampleStore.
type SampleStore struct {
	mu   sync.RWMutex
	data map[string]domain.TimeErrorSample // keyed by (run_id, timestamp_ns)
}

// NewSampleStore creates a new in-memory sample store.
func NewSampleStore() *SampleStore {
	return &SampleStore{
		data: make(map[string]domain.TimeErrorSample),
	}
}

var _ storage.SampleStore = (*SampleStore)(nil)

func sampleKey(runID string, timestampNs int64) string {
	return fmt.Sprintf("%s|%d", runID, timestampNs)
}

// InsertBulk adds samples atomically. Fails entire batch on any duplicate.
func (s *SampleStore) InsertBulk(_ context.Context, runID string, samples []domain.TimeErrorSample) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(samples) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: check existing and intra-batch duplicates.
	batchKeys := make(map[string]struct{}, len(samples))
	for _, sample := range samples {
		key := sampleKey(runID, sample.TimestampNs)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all.
	for _, sample := range samples {
		s.data[sampleKey(runID, sample.TimestampNs)] = sample
	}
	return nil
}

// GetByRunID retrieves all samples for a run, ordered by timestamp ASC.
func (s *SampleStore) GetByRunID(_ context.Context, runID string) ([]domain.TimeErrorSample, error) {
	return s.collect(runID, func(domain.TimeErrorSample) bool { return true })
}

// GetByTimeRange retrieves samples for a run within [start, end] (inclusive).
func (s *SampleStore) GetByTimeRange(_ context.Context, runID string, start, end int64) ([]domain.TimeErrorSample, error) {
	return s.collect(runID, func(sample domain.TimeErrorSample) bool {
		return sample.TimestampNs >= start && sample.TimestampNs <= end
	})
}

func (s *SampleStore) collect(runID string, keep func(domain.TimeErrorSample) bool) ([]domain.TimeErrorSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := runID + "|"
	var result []domain.TimeErrorSample
	for key, sample := range s.data {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix && keep(sample) {
			result = append(result, sample)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampNs < result[j].TimestampNs
	})
	return result, nil
}
