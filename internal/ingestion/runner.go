package ingestion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"clocklab/internal/domain"
	"clocklab/internal/idhash"
	"clocklab/internal/observability"
	"clocklab/internal/storage"
)

// RunnerConfig tunes the sample-to-store batching.
type RunnerConfig struct {
	// TestName labels the measurement run being captured.
	TestName string
	// SampleRateHz is the nominal monitor rate; 0 lets analysis infer it.
	SampleRateHz float64
	// BatchSize is the number of samples per bulk insert.
	BatchSize int
	// FlushInterval bounds how long a partial batch may wait.
	FlushInterval time.Duration
}

// DefaultRunnerConfig returns the default batching configuration.
func DefaultRunnerConfig(testName string) RunnerConfig {
	return RunnerConfig{
		TestName:      testName,
		BatchSize:     500,
		FlushInterval: 5 * time.Second,
	}
}

// Runner drains a TE sample stream into the sample store under a fresh
// measurement run.
type Runner struct {
	config  RunnerConfig
	runs    storage.RunStore
	samples storage.SampleStore
	log     *zap.Logger

	mu          sync.Mutex
	runID       string
	startTimeNs int64
	stored      int
}

// NewRunner creates a runner writing to the given stores.
func NewRunner(config RunnerConfig, runs storage.RunStore, samples storage.SampleStore, log *zap.Logger) *Runner {
	if config.BatchSize <= 0 {
		config.BatchSize = 500
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		config:  config,
		runs:    runs,
		samples: samples,
		log:     log,
	}
}

// RunID returns the run identifier once the run has been registered, or ""
// before the first sample arrives. Safe to call while Run is in progress.
func (r *Runner) RunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runID
}

// Run consumes the stream until the channel closes or the context is
// cancelled. The measurement run is registered on the first sample (the run
// ID hashes the first timestamp) and its sample count is final only after
// Run returns.
func (r *Runner) Run(ctx context.Context, stream <-chan domain.TimeErrorSample) error {
	batch := make([]domain.TimeErrorSample, 0, r.config.BatchSize)
	ticker := time.NewTicker(r.config.FlushInterval)
	defer ticker.Stop()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.samples.InsertBulk(ctx, r.runID, batch); err != nil {
			observability.RecordIngestError("store")
			return fmt.Errorf("store sample batch: %w", err)
		}
		r.stored += len(batch)
		observability.DefaultMetrics.SamplesStored.Add(float64(len(batch)))
		observability.DefaultMetrics.SampleBufferSize.Set(0)
		batch = batch[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			if err := flush(); err != nil {
				return err
			}
			return ctx.Err()

		case <-ticker.C:
			if err := flush(); err != nil {
				return err
			}

		case sample, ok := <-stream:
			if !ok {
				if err := flush(); err != nil {
					return err
				}
				r.log.Info("monitor stream closed",
					zap.String("run_id", r.runID),
					zap.Int("samples_stored", r.stored),
				)
				return nil
			}

			if r.runID == "" {
				if err := r.registerRun(ctx, sample.TimestampNs); err != nil {
					return err
				}
			}

			batch = append(batch, sample)
			observability.DefaultMetrics.SampleBufferSize.Set(float64(len(batch)))
			observability.DefaultMetrics.LastSampleUnixSeconds.SetToCurrentTime()

			if len(batch) >= r.config.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
}

func (r *Runner) registerRun(ctx context.Context, startTimeNs int64) error {
	runID := idhash.ComputeRunID(r.config.TestName, domain.SourceMonitor, startTimeNs, r.config.SampleRateHz)
	r.mu.Lock()
	r.startTimeNs = startTimeNs
	r.runID = runID
	r.mu.Unlock()

	run := &domain.MeasurementRun{
		RunID:        r.runID,
		TestName:     r.config.TestName,
		Source:       domain.SourceMonitor,
		SampleRateHz: r.config.SampleRateHz,
		StartTimeNs:  startTimeNs,
	}
	if err := r.runs.Insert(ctx, run); err != nil {
		observability.RecordIngestError("register_run")
		return fmt.Errorf("register run: %w", err)
	}

	observability.RecordRunCreated(string(domain.SourceMonitor))
	r.log.Info("measurement run registered",
		zap.String("run_id", r.runID),
		zap.String("test_name", r.config.TestName),
		zap.Int64("start_time_ns", startTimeNs),
	)
	return nil
}
