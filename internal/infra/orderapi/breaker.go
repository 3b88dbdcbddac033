package orderapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/logger"
)

// NewBreaker trips after five consecutive failures and probes again after timeout.
// Rejections by the API (4xx) and caller cancellations count as successes.
func NewBreaker(name string, timeout time.Duration, log logger.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || clientFault(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), "circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
}

type breakerClient struct {
	next outbound.OrderManagement
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker guards every call to next with cb. An open breaker fails fast with
// outbound.ErrUnavailable.
func WithBreaker(next outbound.OrderManagement, cb *gobreaker.CircuitBreaker) outbound.OrderManagement {
	return &breakerClient{next: next, cb: cb}
}

func (b *breakerClient) CreateOrder(ctx context.Context, req outbound.CreateOrderRequest) (outbound.CreatedOrder, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.CreateOrder(ctx, req)
	})
	if err != nil {
		return outbound.CreatedOrder{}, breakerError(err)
	}
	return out.(outbound.CreatedOrder), nil
}

func (b *breakerClient) SetStatus(ctx context.Context, orderID string, status entity.Status) (entity.Order, error) {
	return b.order(func() (entity.Order, error) { return b.next.SetStatus(ctx, orderID, status) })
}

func (b *breakerClient) AssignDriver(ctx context.Context, req outbound.AssignDriverRequest) (entity.Order, error) {
	return b.order(func() (entity.Order, error) { return b.next.AssignDriver(ctx, req) })
}

func (b *breakerClient) ConfirmDelivery(ctx context.Context, orderID string) (entity.Order, error) {
	return b.order(func() (entity.Order, error) { return b.next.ConfirmDelivery(ctx, orderID) })
}

func (b *breakerClient) order(fn func() (entity.Order, error)) (entity.Order, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return entity.Order{}, breakerError(err)
	}
	return out.(entity.Order), nil
}

func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", outbound.ErrUnavailable, err)
	}
	return err
}
