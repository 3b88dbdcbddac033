package tracking

import (
	"context"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/pkg/logger"
)

// Subscription receives a View after every change. A slow reader only ever misses
// intermediate views: an undelivered view is replaced by the newest one.
type Subscription struct {
	store *Store
	ch    chan View

	// guarded by store.mu. A nil scope selects every order; once Track is called the
	// scope stays non-nil, so removing the last id leaves an empty view.
	scope  map[string]struct{}
	closed bool
}

// Subscribe registers an observer. The current view is delivered immediately.
func (s *Store) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	sub := &Subscription{store: s, ch: make(chan View, buffer)}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	n := len(s.subs)
	sub.deliverLocked(buildView(s.state, sub.scope))
	s.mu.Unlock()

	s.metrics.SetSubscribers(n)
	return sub
}

func (sub *Subscription) C() <-chan View { return sub.ch }

// Track narrows the subscription to orderID (adding to any ids already tracked) and
// announces interest to the server when no other subscription tracks it yet.
func (sub *Subscription) Track(ctx context.Context, orderID string) error {
	if orderID == "" {
		return ErrOrderIDEmpty
	}
	s := sub.store

	s.mu.Lock()
	if sub.closed {
		s.mu.Unlock()
		return nil
	}
	if sub.scope == nil {
		sub.scope = make(map[string]struct{})
	}
	first := false
	if _, ok := sub.scope[orderID]; !ok {
		sub.scope[orderID] = struct{}{}
		s.tracked[orderID]++
		first = s.tracked[orderID] == 1
	}
	sub.deliverLocked(buildView(s.state, sub.scope))
	s.mu.Unlock()

	if first {
		s.emitInterest(ctx, outbound.CommandTrackOrder, orderID)
	}
	return nil
}

// StopTracking removes orderID from this subscription's scope. Canonical state is never
// touched; the server is told only when no subscription tracks the order any more.
func (sub *Subscription) StopTracking(ctx context.Context, orderID string) error {
	if orderID == "" {
		return ErrOrderIDEmpty
	}
	s := sub.store

	s.mu.Lock()
	if sub.closed {
		s.mu.Unlock()
		return nil
	}
	last := false
	if _, ok := sub.scope[orderID]; ok {
		delete(sub.scope, orderID)
		last = s.release(orderID)
	}
	sub.deliverLocked(buildView(s.state, sub.scope))
	s.mu.Unlock()

	if last {
		s.emitInterest(ctx, outbound.CommandStopTracking, orderID)
	}
	return nil
}

// Tracked lists the order ids in this subscription's scope.
func (sub *Subscription) Tracked() []string {
	sub.store.mu.RLock()
	defer sub.store.mu.RUnlock()
	ids := make([]string, 0, len(sub.scope))
	for id := range sub.scope {
		ids = append(ids, id)
	}
	return ids
}

// Close stops tracking everything this subscription tracked and closes C.
func (sub *Subscription) Close() {
	s := sub.store

	s.mu.Lock()
	if sub.closed {
		s.mu.Unlock()
		return
	}
	var released []string
	for id := range sub.scope {
		if s.release(id) {
			released = append(released, id)
		}
	}
	sub.closeLocked()
	delete(s.subs, sub)
	n := len(s.subs)
	s.mu.Unlock()

	s.metrics.SetSubscribers(n)
	for _, id := range released {
		s.emitInterest(context.Background(), outbound.CommandStopTracking, id)
	}
}

func (sub *Subscription) closeLocked() {
	if sub.closed {
		return
	}
	sub.closed = true
	sub.scope = nil
	close(sub.ch)
}

// deliverLocked never blocks. The store lock serializes senders.
func (sub *Subscription) deliverLocked(v View) {
	if sub.closed {
		return
	}
	select {
	case sub.ch <- v:
		return
	default:
	}
	select {
	case <-sub.ch:
	default:
	}
	select {
	case sub.ch <- v:
	default:
	}
}

// release drops one reference to orderID and reports whether it was the last. Callers hold s.mu.
func (s *Store) release(orderID string) bool {
	n := s.tracked[orderID] - 1
	if n > 0 {
		s.tracked[orderID] = n
		return false
	}
	delete(s.tracked, orderID)
	return true
}

// emitInterest is best effort: tracked ids are re-announced on every reconnect.
func (s *Store) emitInterest(ctx context.Context, command, orderID string) {
	if err := s.stream.Emit(ctx, command, outbound.OrderCommand{OrderID: orderID}); err != nil {
		s.logger.Debug(ctx, "stream interest not sent",
			logger.String("command", command),
			logger.String("order_id", orderID),
			logger.WithError(err),
		)
	}
}
