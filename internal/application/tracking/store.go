package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/application/usecase/order"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	domain "github.com/DioGolang/GoTrack/internal/domain/tracking"
	"github.com/DioGolang/GoTrack/pkg/events"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
)

const (
	defaultInboxSize = 256
	resyncCooldown   = 5 * time.Second
)

var (
	ErrAlreadyRunning = errors.New("tracking store already running")
	ErrNotRunning     = errors.New("tracking store not running")
	ErrOrderIDEmpty   = errors.New("order id is required")
)

type envelope struct {
	event   domain.Event
	source  string
	applied chan struct{}
}

// Store is the single writer of canonical tracking state. Stream events and command
// results are serialized through one inbox and applied with domain.Reduce.
type Store struct {
	stream  outbound.TrackingStream
	decoder outbound.EventDecoder
	gateway order.CommandGateway
	logger  logger.Logger
	metrics metrics.Metrics

	inboxSize int
	now       func() time.Time

	inbox   chan envelope
	quit    chan struct{}
	running atomic.Bool
	handler events.EventHandler
	handled []string

	mu         sync.RWMutex
	state      domain.State
	subs       map[*Subscription]struct{}
	tracked    map[string]int
	lastResync time.Time
}

type Option func(*Store)

func WithInboxSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.inboxSize = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(
	stream outbound.TrackingStream,
	decoder outbound.EventDecoder,
	gateway order.CommandGateway,
	log logger.Logger,
	m metrics.Metrics,
	opts ...Option,
) *Store {
	s := &Store{
		stream:    stream,
		decoder:   decoder,
		gateway:   gateway,
		logger:    log,
		metrics:   m,
		inboxSize: defaultInboxSize,
		now:       time.Now,
		quit:      make(chan struct{}),
		state:     domain.NewState(),
		subs:      make(map[*Subscription]struct{}),
		tracked:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.inbox = make(chan envelope, s.inboxSize)
	return s
}

// Run connects the stream and applies inbox items until ctx is done. It can run once.
func (s *Store) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.shutdown()

	s.registerHandlers()
	if err := s.stream.Connect(ctx); err != nil {
		return fmt.Errorf("connect tracking stream: %w", err)
	}

	s.logger.Info(ctx, "tracking store started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "tracking store stopping")
			return nil
		case env := <-s.inbox:
			s.apply(ctx, env)
		}
	}
}

func (s *Store) shutdown() {
	close(s.quit)
	for _, name := range s.handled {
		s.stream.OffEvent(name, s.handler)
	}
	s.stream.Disconnect()

	s.mu.Lock()
	for sub := range s.subs {
		sub.closeLocked()
	}
	s.subs = map[*Subscription]struct{}{}
	s.mu.Unlock()
	s.metrics.SetSubscribers(0)
}

// Snapshot returns a deep copy of the canonical state.
func (s *Store) Snapshot() domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// View returns the current view for the given order ids, or for every order when none are given.
func (s *Store) View(orderIDs ...string) View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return buildView(s.state, scopeOf(orderIDs))
}

func (s *Store) apply(ctx context.Context, env envelope) {
	kind := string(env.event.Kind())

	s.mu.Lock()
	next, err := domain.Reduce(s.state, env.event)
	outcome := s.classify(ctx, kind, env.source, err)
	changed := err == nil || outcome == "gap"
	if changed {
		s.state = next
		for sub := range s.subs {
			sub.deliverLocked(buildView(next, sub.scope))
		}
	}
	s.mu.Unlock()

	s.metrics.RecordEventApplied(kind, outcome)
	if env.applied != nil {
		close(env.applied)
	}
	if outcome == "gap" {
		s.requestResync(ctx)
	}
}

func (s *Store) classify(ctx context.Context, kind, source string, err error) string {
	var gap *domain.GapError
	switch {
	case err == nil:
		return "applied"
	case errors.As(err, &gap):
		s.logger.Warn(ctx, "reconciliation gap",
			logger.String("event", kind),
			logger.String("order_id", gap.OrderID),
			logger.String("source", source),
		)
		return "gap"
	case errors.Is(err, domain.ErrMalformedEvent):
		s.logger.Warn(ctx, "dropping malformed event",
			logger.String("event", kind),
			logger.String("source", source),
			logger.WithError(err),
		)
		return "malformed"
	default:
		s.logger.Error(ctx, "event not applied",
			logger.String("event", kind),
			logger.WithError(err),
		)
		return "rejected"
	}
}

// requestResync asks for a fresh snapshot, at most once per cooldown.
func (s *Store) requestResync(ctx context.Context) {
	s.mu.Lock()
	now := s.now()
	if now.Sub(s.lastResync) < resyncCooldown {
		s.mu.Unlock()
		return
	}
	s.lastResync = now
	s.mu.Unlock()

	go func() {
		if err := s.stream.Emit(context.WithoutCancel(ctx), outbound.CommandGetActiveOrders, nil); err != nil {
			s.logger.Debug(ctx, "resync request not sent", logger.WithError(err))
		}
	}()
}

func (s *Store) registerHandlers() {
	names := map[string]struct{}{
		outbound.SignalState:   {},
		outbound.SignalError:   {},
		outbound.SignalConnect: {},
	}
	for _, kind := range s.decoder.Kinds() {
		names[kind] = struct{}{}
	}
	s.handler = events.HandlerFunc(s.handleStreamEvent)
	for name := range names {
		s.handled = append(s.handled, name)
		s.stream.OnEvent(name, s.handler)
	}
}

// handleStreamEvent runs on the stream's goroutine. It only decodes and enqueues.
func (s *Store) handleStreamEvent(ctx context.Context, ev events.Event) {
	if ev.GetName() == outbound.SignalConnect {
		s.retrack(ctx)
		return
	}
	switch p := ev.GetPayload().(type) {
	case domain.ConnectionStatus:
		s.enqueue(ctx, envelope{event: domain.ConnectionChanged{Status: p}, source: "stream"})
		return
	case error:
		s.enqueue(ctx, envelope{event: domain.StreamFailed{Message: p.Error()}, source: "stream"})
		return
	}

	decoded, err := s.decoder.Decode(ev)
	switch {
	case errors.Is(err, domain.ErrUnknownEvent):
		s.logger.Debug(ctx, "ignoring stream event", logger.String("event", ev.GetName()))
		return
	case err != nil:
		s.metrics.RecordEventApplied(ev.GetName(), "malformed")
		s.logger.Warn(ctx, "dropping malformed event", logger.String("event", ev.GetName()), logger.WithError(err))
		return
	}
	s.enqueue(ctx, envelope{event: decoded, source: "stream"})
}

// retrack re-announces tracked orders after a reconnect; server-side interest does not
// survive a new session.
func (s *Store) retrack(ctx context.Context) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.tracked))
	for id := range s.tracked {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		if err := s.stream.Emit(ctx, outbound.CommandTrackOrder, outbound.OrderCommand{OrderID: id}); err != nil {
			s.logger.Warn(ctx, "re-tracking order failed", logger.String("order_id", id), logger.WithError(err))
		}
	}
}

func (s *Store) enqueue(ctx context.Context, env envelope) bool {
	select {
	case s.inbox <- env:
		return true
	case <-s.quit:
		return false
	case <-ctx.Done():
		return false
	}
}

// submit enqueues a command result and waits until it has been applied.
func (s *Store) submit(ctx context.Context, ev domain.Event) error {
	if !s.running.Load() {
		return ErrNotRunning
	}
	env := envelope{event: ev, source: "command", applied: make(chan struct{})}
	if !s.enqueue(ctx, env) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrNotRunning
	}
	select {
	case <-env.applied:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.quit:
		return ErrNotRunning
	}
}

// CreateOrder creates the order remotely and returns once it is visible in local state.
func (s *Store) CreateOrder(ctx context.Context, in order.CreateInput) (order.CreateOutput, error) {
	out, err := s.gateway.CreateOrder(ctx, in)
	if err != nil {
		return order.CreateOutput{}, err
	}
	if err := s.submit(ctx, domain.OrderCreated{Order: out.Order}); err != nil {
		return out, fmt.Errorf("apply created order %s: %w", out.Order.ID, err)
	}
	return out, nil
}

func (s *Store) SetStatus(ctx context.Context, in order.SetStatusInput) (entity.Order, error) {
	return s.replace(ctx, func() (entity.Order, error) { return s.gateway.SetStatus(ctx, in) })
}

func (s *Store) AssignDriver(ctx context.Context, in order.AssignDriverInput) (entity.Order, error) {
	return s.replace(ctx, func() (entity.Order, error) { return s.gateway.AssignDriver(ctx, in) })
}

// ConfirmDelivery releases escrow through the order API, then tells the stream so other
// clients hear about it.
func (s *Store) ConfirmDelivery(ctx context.Context, in order.ConfirmDeliveryInput) (entity.Order, error) {
	o, err := s.replace(ctx, func() (entity.Order, error) { return s.gateway.ConfirmDelivery(ctx, in) })
	if err != nil {
		return o, err
	}
	if err := s.stream.Emit(ctx, outbound.CommandConfirmDelivery, outbound.OrderCommand{OrderID: o.ID}); err != nil {
		s.logger.Debug(ctx, "confirm_delivery not broadcast", logger.String("order_id", o.ID), logger.WithError(err))
	}
	return o, nil
}

func (s *Store) replace(ctx context.Context, call func() (entity.Order, error)) (entity.Order, error) {
	o, err := call()
	if err != nil {
		return entity.Order{}, err
	}
	if err := s.submit(ctx, domain.OrderReplaced{Order: o}); err != nil {
		return o, fmt.Errorf("apply order %s: %w", o.ID, err)
	}
	return o, nil
}

// Refresh asks the server for a full snapshot of active orders.
func (s *Store) Refresh(ctx context.Context) error {
	return s.stream.Emit(ctx, outbound.CommandGetActiveOrders, nil)
}

// SimulateDelivery asks the server to play a demo delivery for orderID.
func (s *Store) SimulateDelivery(ctx context.Context, orderID string) error {
	if orderID == "" {
		return ErrOrderIDEmpty
	}
	return s.stream.Emit(ctx, outbound.CommandSimulateDelivery, outbound.OrderCommand{OrderID: orderID})
}

func (s *Store) ConnectionStatus() domain.ConnectionStatus {
	return s.stream.Status()
}

func scopeOf(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	scope := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			scope[id] = struct{}{}
		}
	}
	return scope
}
