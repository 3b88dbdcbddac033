package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riandyrn/otelchi"

	"github.com/DioGolang/GoTrack/internal/infra/web/handler"
	"github.com/DioGolang/GoTrack/internal/infra/web/middleware"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
)

type RouterDeps struct {
	ServiceName    string
	Logger         logger.Logger
	Metrics        metrics.Metrics
	Gatherer       prometheus.Gatherer
	Orders         *handler.Order
	Tracking       *handler.Tracking
	Health         http.Handler
	RateLimiter    *middleware.IPDispatcher
	Idempotency    middleware.IdempotencyStore
	IdempotencyTTL time.Duration
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(otelchi.Middleware(d.ServiceName, otelchi.WithChiRoutes(r)))
	r.Use(middleware.MetricsWrapper(d.Metrics, "/api/v1/tracking/stream", "/metrics"))
	r.Use(middleware.RequestLogger(d.Logger))

	if d.Health != nil {
		r.Handle("/healthz", d.Health)
	}
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if d.RateLimiter != nil {
			r.Use(d.RateLimiter.Handler(d.Logger))
		}

		r.Route("/tracking", func(r chi.Router) {
			r.Get("/", d.Tracking.Snapshot)
			r.Get("/stream", d.Tracking.Stream)
			r.Post("/refresh", d.Tracking.Refresh)
		})
		r.Get("/drivers/nearby", d.Tracking.Nearby)

		r.Route("/orders", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if d.Idempotency != nil {
					r.Use(middleware.Idempotency(d.Logger, d.Idempotency, "create_order", d.IdempotencyTTL))
				}
				r.Post("/", d.Orders.Create)
			})
			r.Put("/{id}/status", d.Orders.SetStatus)
			r.Post("/{id}/driver", d.Orders.AssignDriver)
			r.Post("/{id}/confirm-delivery", d.Orders.ConfirmDelivery)
			r.Post("/{id}/simulate", d.Orders.Simulate)
		})
	})

	return r
}
