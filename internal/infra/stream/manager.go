package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/tracking"
	"github.com/DioGolang/GoTrack/pkg/events"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
)

// Manager owns the tracking stream session: it dials, reconnects with backoff, fans wire
// events out to subscribers and writes commands. All lifecycle transitions happen on a
// single run loop.
type Manager struct {
	cfg        Config
	dialer     Dialer
	dispatcher *events.Dispatcher
	logger     logger.Logger
	metrics    metrics.Metrics

	mu     sync.Mutex
	status tracking.ConnectionStatus
	conn   Conn
	cancel context.CancelFunc
	done   chan struct{}
}

var _ outbound.TrackingStream = (*Manager)(nil)

func NewManager(cfg Config, dialer Dialer, log logger.Logger, m metrics.Metrics) *Manager {
	return &Manager{
		cfg:        cfg.withDefaults(),
		dialer:     dialer,
		dispatcher: events.NewDispatcher(),
		logger:     log,
		metrics:    m,
		status:     tracking.ConnectionStatus{State: tracking.Disconnected},
	}
}

func (m *Manager) OnEvent(kind string, handler events.EventHandler) {
	if err := m.dispatcher.Register(kind, handler); err != nil {
		m.logger.Debug(context.Background(), "stream handler already registered", logger.String("event", kind))
	}
}

// OffEvent unregisters a handler added with OnEvent. Unknown handlers are ignored.
func (m *Manager) OffEvent(kind string, handler events.EventHandler) {
	_ = m.dispatcher.Remove(kind, handler)
}

func (m *Manager) Status() tracking.ConnectionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Connect starts the session loop and returns immediately. Connectivity problems are
// reported through the "error" signal.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	go m.run(runCtx, done)
	return nil
}

// Disconnect stops the session, cancelling any pending reconnect wait. It blocks until the
// loop has exited and is safe to call more than once.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	conn := m.conn
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if conn != nil {
		_ = conn.Close()
	}
	<-done
}

func (m *Manager) Emit(ctx context.Context, command string, payload any) error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s: %w", command, err)
		}
		data = raw
	}
	if err := conn.WriteFrame(ctx, Frame{Event: command, Data: data}); err != nil {
		return fmt.Errorf("emit %s: %w", command, err)
	}
	m.logger.Debug(ctx, "stream command sent", logger.String("command", command))
	return nil
}

func (m *Manager) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		m.setStatus(context.WithoutCancel(ctx), tracking.Disconnected, 0)
		m.mu.Lock()
		if m.done == done {
			m.cancel()
			m.cancel, m.done = nil, nil
		}
		m.mu.Unlock()
	}()

	bo := m.cfg.newBackOff()
	attempt := 0
	for {
		attempt++
		m.setStatus(ctx, tracking.Connecting, attempt)

		conn, err := m.dialer.Dial(ctx, m.cfg.Endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.metrics.RecordReconnectAttempt("failure")
			m.reportError(ctx, &ConnectivityError{Op: "dial", Attempt: attempt, Err: err})
			if !m.cfg.Reconnect {
				return
			}
			if attempt >= m.cfg.MaxAttempts {
				m.reportError(ctx, &ConnectivityError{Op: "reconnect", Attempt: attempt, Err: ErrReconnectExhausted})
				return
			}
			if !m.wait(ctx, bo.NextBackOff()) {
				return
			}
			continue
		}

		m.metrics.RecordReconnectAttempt("success")
		attempt = 0
		bo.Reset()

		lost := m.serve(ctx, conn)
		if ctx.Err() != nil {
			m.dispatch(context.WithoutCancel(ctx), outbound.SignalDisconnect, nil)
			return
		}
		m.reportError(ctx, &ConnectivityError{Op: "read", Err: lost})
		m.dispatch(ctx, outbound.SignalDisconnect, lost)
		if !m.cfg.Reconnect {
			return
		}
		m.setStatus(ctx, tracking.Connecting, attempt+1)
		if !m.wait(ctx, bo.NextBackOff()) {
			return
		}
	}
}

// serve runs one live session until the transport fails or ctx is cancelled.
func (m *Manager) serve(ctx context.Context, conn Conn) error {
	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()
	defer func() {
		close(stop)
		m.mu.Lock()
		m.conn = nil
		m.mu.Unlock()
		_ = conn.Close()
	}()

	m.setStatus(ctx, tracking.Connected, 0)
	m.dispatch(ctx, outbound.SignalConnect, m.Status())
	if err := m.Emit(ctx, outbound.CommandGetActiveOrders, nil); err != nil {
		m.logger.Warn(ctx, "resync request failed", logger.WithError(err))
	}

	for {
		f, err := conn.ReadFrame(ctx)
		if errors.Is(err, ErrMalformedFrame) {
			m.logger.Warn(ctx, "dropping malformed frame", logger.WithError(err))
			continue
		}
		if err != nil {
			return err
		}
		if f.Event == "" {
			m.logger.Warn(ctx, "dropping frame without event name")
			continue
		}
		if f.Event == outbound.SignalHandshake {
			m.logger.Info(ctx, "tracking server acknowledged connection")
		}
		m.dispatch(frameContext(ctx, f), f.Event, f.Data)
	}
}

// frameContext continues the producer's trace when the frame carries one.
func frameContext(ctx context.Context, f Frame) context.Context {
	if len(f.Trace) == 0 {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(f.Trace))
}

func (m *Manager) wait(ctx context.Context, d time.Duration) bool {
	if d == backoff.Stop {
		return false
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (m *Manager) setStatus(ctx context.Context, state tracking.ConnectionState, attempt int) {
	next := tracking.ConnectionStatus{State: state, Attempt: attempt}
	m.mu.Lock()
	if m.status == next {
		m.mu.Unlock()
		return
	}
	m.status = next
	m.mu.Unlock()

	m.metrics.SetConnectionState(string(state))
	m.logger.Info(ctx, "stream connection state changed",
		logger.String("state", string(state)),
		logger.Int("attempt", attempt),
	)
	m.dispatch(ctx, outbound.SignalState, next)
}

func (m *Manager) reportError(ctx context.Context, err *ConnectivityError) {
	m.logger.Warn(ctx, "stream connectivity error",
		logger.String("op", err.Op),
		logger.Int("attempt", err.Attempt),
		logger.WithError(err.Err),
	)
	m.dispatch(ctx, outbound.SignalError, err)
}

func (m *Manager) dispatch(ctx context.Context, name string, payload any) {
	_ = m.dispatcher.Dispatch(ctx, events.NewEvent(name, payload))
}
