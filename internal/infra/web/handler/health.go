package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hellofresh/health-go/v5"
	healthRabbit "github.com/hellofresh/health-go/v5/checks/rabbitmq"
	"github.com/redis/go-redis/v9"

	"github.com/DioGolang/GoTrack/internal/domain/tracking"
)

type healthOptions struct {
	checks []*health.Config
}

type HealthOption func(*healthOptions)

// WithStream reports the tracking stream. It is marked SkipOnErr because the stream
// reconnects on its own; a disconnected stream degrades the service without taking it down.
func WithStream(status func() tracking.ConnectionStatus) HealthOption {
	return func(o *healthOptions) {
		if status == nil {
			return
		}
		o.checks = append(o.checks, &health.Config{
			Name:      "tracking-stream",
			Timeout:   time.Second,
			SkipOnErr: true,
			Check: func(ctx context.Context) error {
				st := status()
				if st.State != tracking.Connected {
					return fmt.Errorf("stream %s (attempt %d)", st.State, st.Attempt)
				}
				return nil
			},
		})
	}
}

func WithRedis(rdb *redis.Client) HealthOption {
	return func(o *healthOptions) {
		if rdb == nil {
			return
		}
		o.checks = append(o.checks, &health.Config{
			Name:      "redis",
			Timeout:   3 * time.Second,
			SkipOnErr: true,
			Check: func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		})
	}
}

func WithRabbitMQ(dsn string) HealthOption {
	return func(o *healthOptions) {
		if dsn == "" {
			return
		}
		o.checks = append(o.checks, &health.Config{
			Name:      "rabbitmq",
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check: healthRabbit.New(healthRabbit.Config{
				DSN: dsn,
			}),
		})
	}
}

func NewHealthHandler(serviceName, version string, opts ...HealthOption) (http.Handler, error) {
	options := &healthOptions{
		checks: make([]*health.Config, 0),
	}
	for _, opt := range opts {
		opt(options)
	}

	h, err := health.New(health.WithComponent(health.Component{
		Name:    serviceName,
		Version: version,
	}))
	if err != nil {
		return nil, fmt.Errorf("health handler: %w", err)
	}
	for _, check := range options.checks {
		if err := h.Register(*check); err != nil {
			return nil, fmt.Errorf("register %s check: %w", check.Name, err)
		}
	}
	return h.Handler(), nil
}
