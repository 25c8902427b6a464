package ingestion

import (
	"context"
	"testing"
	"time"

	"clocklab/internal/domain"
	"clocklab/internal/storage/memory"
)

func TestRunner_DrainsStreamIntoStores(t *testing.T) {
	runs := memory.NewRunStore()
	samples := memory.NewSampleStore()
	runner := NewRunner(RunnerConfig{
		TestName:      "live_capture",
		SampleRateHz:  10,
		BatchSize:     3,
		FlushInterval: time.Minute, // flush by size only
	}, runs, samples, nil)

	stream := make(chan domain.TimeErrorSample, 10)
	for i := int64(0); i < 7; i++ {
		stream <- domain.TimeErrorSample{TimestampNs: i * 100_000_000, TENs: float64(i)}
	}
	close(stream)

	if err := runner.Run(context.Background(), stream); err != nil {
		t.Fatalf("Run: %v", err)
	}

	runID := runner.RunID()
	if runID == "" {
		t.Fatal("run not registered")
	}

	run, err := runs.GetByID(context.Background(), runID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if run.Source != domain.SourceMonitor || run.TestName != "live_capture" {
		t.Errorf("run = %+v", run)
	}
	if run.StartTimeNs != 0 {
		t.Errorf("StartTimeNs = %d, want first sample timestamp", run.StartTimeNs)
	}

	stored, err := samples.GetByRunID(context.Background(), runID)
	if err != nil {
		t.Fatalf("GetByRunID: %v", err)
	}
	if len(stored) != 7 {
		t.Errorf("stored %d samples, want 7 (partial batch flushed on close)", len(stored))
	}
}

func TestRunner_FlushOnInterval(t *testing.T) {
	runs := memory.NewRunStore()
	samples := memory.NewSampleStore()
	runner := NewRunner(RunnerConfig{
		TestName:      "slow_capture",
		BatchSize:     1000, // never reached
		FlushInterval: 20 * time.Millisecond,
	}, runs, samples, nil)

	stream := make(chan domain.TimeErrorSample, 2)
	stream <- domain.TimeErrorSample{TimestampNs: 100, TENs: 1}
	stream <- domain.TimeErrorSample{TimestampNs: 200, TENs: 2}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, stream) }()

	// Wait for at least one interval flush, then stop.
	deadline := time.After(2 * time.Second)
	for {
		stored, _ := samples.GetByRunID(context.Background(), runner.RunID())
		if len(stored) == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("interval flush never happened")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

func TestRunner_ContextCancelFlushesPartialBatch(t *testing.T) {
	runs := memory.NewRunStore()
	samples := memory.NewSampleStore()
	runner := NewRunner(DefaultRunnerConfig("cancelled_capture"), runs, samples, nil)

	stream := make(chan domain.TimeErrorSample, 1)
	stream <- domain.TimeErrorSample{TimestampNs: 100, TENs: 1}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, stream) }()

	// Let the runner pick the sample up before cancelling.
	deadline := time.After(2 * time.Second)
	for runner.RunID() == "" {
		select {
		case <-deadline:
			t.Fatal("run never registered")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; err != context.Canceled {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	stored, _ := samples.GetByRunID(context.Background(), runner.RunID())
	if len(stored) != 1 {
		t.Errorf("stored %d samples, want 1 (partial batch flushed on cancel)", len(stored))
	}
}
