// Package ingestion collects live TE samples from a clock-monitor stream and
// persists them under a measurement run. It only gathers data; metric
// computation always runs afterwards on the complete in-memory series.
package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"clocklab/internal/domain"
	"clocklab/internal/observability"
)

// StreamConfig configures the monitor stream client.
type StreamConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing control messages.
	WriteTimeout time.Duration
}

// DefaultStreamConfig returns default stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// sampleMessage is the wire format pushed by the clock monitor: one JSON
// object per sample.
type sampleMessage struct {
	TimestampNs int64   `json:"timestamp_ns"`
	TENs        float64 `json:"te_ns"`
}

// StreamClient subscribes to a clock-monitor websocket endpoint that pushes
// TE samples. It reconnects with exponential backoff and keeps the
// subscription alive with ping frames.
type StreamClient struct {
	endpoint string
	config   StreamConfig
	log      *zap.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	samples chan domain.TimeErrorSample

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool
}

// NewStreamClient creates a stream client and connects to the endpoint.
func NewStreamClient(ctx context.Context, endpoint string, config *StreamConfig, log *zap.Logger) (*StreamClient, error) {
	cfg := DefaultStreamConfig()
	if config != nil {
		cfg = *config
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &StreamClient{
		endpoint: endpoint,
		config:   cfg,
		log:      log,
		// Blocking send ensures no sample loss; buffer absorbs bursts.
		samples: make(chan domain.TimeErrorSample, 10000),
		done:    make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// Samples returns the stream of received TE samples. The channel is closed
// when the client shuts down.
func (c *StreamClient) Samples() <-chan domain.TimeErrorSample {
	return c.samples
}

// connect establishes the websocket connection.
func (c *StreamClient) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// Close closes the websocket connection and the sample channel.
func (c *StreamClient) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	close(c.samples)
	return nil
}

// readLoop reads sample messages and dispatches them to the channel,
// reconnecting with exponential backoff on read errors.
func (c *StreamClient) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// handleMessage decodes one sample message and forwards it.
func (c *StreamClient) handleMessage(message []byte) {
	var msg sampleMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.log.Warn("dropping malformed sample message", zap.Error(err))
		observability.RecordIngestError("decode")
		return
	}

	sample := domain.TimeErrorSample{TimestampNs: msg.TimestampNs, TENs: msg.TENs}
	select {
	case c.samples <- sample:
		observability.RecordSampleIngested()
	case <-c.done:
	}
}

// reconnect attempts to re-establish the connection after a delay.
func (c *StreamClient) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	observability.DefaultMetrics.WSReconnectsTotal.Inc()
	c.log.Info("reconnecting to monitor stream",
		zap.String("endpoint", c.endpoint),
		zap.Duration("delay", delay),
	)

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error.
		c.log.Warn("reconnect failed", zap.Error(err))
		return
	}
}

// pingLoop keeps the connection alive with periodic ping frames.
func (c *StreamClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			conn := c.conn
			if conn != nil {
				conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					c.log.Debug("ping failed", zap.Error(err))
				}
			}
			c.connMu.Unlock()
		}
	}
}
