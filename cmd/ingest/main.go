package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"clocklab/internal/ingestion"
	"clocklab/internal/observability"
	"clocklab/internal/storage"
	chstore "clocklab/internal/storage/clickhouse"
	"clocklab/internal/storage/memory"
	"clocklab/internal/storage/migrations"
	pgstore "clocklab/internal/storage/postgres"
)

func main() {
	// Parse flags
	wsEndpoint := flag.String("ws-endpoint", "", "TE monitor WebSocket endpoint")
	testName := flag.String("test-name", "live_capture", "Test name labeling the measurement run")
	sampleRate := flag.Float64("sample-rate", 0, "Nominal monitor sample rate in Hz (0 = infer at analysis time)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of databases")
	batchSize := flag.Int("batch-size", 500, "Samples per bulk insert")
	flushInterval := flag.Duration("flush-interval", 5*time.Second, "Max time a partial batch may wait")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *wsEndpoint == "" {
		logger.Fatal("--ws-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Info("starting metrics server", zap.String("addr", *metricsAddr))
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, initiating graceful shutdown", zap.Stringer("signal", sig))
		cancel()

		select {
		case sig := <-sigCh:
			logger.Warn("received second signal, forcing immediate shutdown", zap.Stringer("signal", sig))
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Warn("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err = run(ctx, logger, *wsEndpoint, *testName, *sampleRate, *postgresDSN, *clickhouseDSN, *useMemory, *batchSize, *flushInterval)

	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("ingestion failed", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func run(
	ctx context.Context,
	logger *zap.Logger,
	wsEndpoint, testName string,
	sampleRate float64,
	postgresDSN, clickhouseDSN string,
	useMemory bool,
	batchSize int,
	flushInterval time.Duration,
) error {
	runStore, sampleStore, cleanup, err := createStores(ctx, postgresDSN, clickhouseDSN, useMemory)
	if err != nil {
		return err
	}
	defer cleanup()

	client, err := ingestion.NewStreamClient(ctx, wsEndpoint, nil, logger)
	if err != nil {
		return fmt.Errorf("connect to monitor: %w", err)
	}
	defer client.Close()

	config := ingestion.RunnerConfig{
		TestName:      testName,
		SampleRateHz:  sampleRate,
		BatchSize:     batchSize,
		FlushInterval: flushInterval,
	}
	runner := ingestion.NewRunner(config, runStore, sampleStore, logger)

	logger.Info("ingestion started",
		zap.String("ws_endpoint", wsEndpoint),
		zap.String("test_name", testName),
	)
	return runner.Run(ctx, client.Samples())
}

// createStores wires either in-memory stores or the PostgreSQL run store
// plus the ClickHouse sample store, running migrations on both.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (storage.RunStore, storage.SampleStore, func(), error) {
	if useMemory {
		return memory.NewRunStore(), memory.NewSampleStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	cleanup := func() {
		pool.Close()
		conn.Close()
	}
	return pgstore.NewRunStore(pool), chstore.NewSampleStore(conn), cleanup, nil
}
