package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/DioGolang/GoTrack/configs"
	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/application/tracking"
	"github.com/DioGolang/GoTrack/internal/application/usecase/order"
	"github.com/DioGolang/GoTrack/internal/infra/orderapi"
	"github.com/DioGolang/GoTrack/internal/infra/storage"
	"github.com/DioGolang/GoTrack/internal/infra/stream"
	"github.com/DioGolang/GoTrack/internal/infra/web"
	"github.com/DioGolang/GoTrack/internal/infra/web/handler"
	"github.com/DioGolang/GoTrack/internal/infra/web/middleware"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
	"github.com/DioGolang/GoTrack/pkg/otel"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := configs.LoadConfig(".")
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.NewLogger(cfg.ServiceName, cfg.IsProduction())
	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "trackd stopped with error", logger.WithError(err))
		os.Exit(1)
	}
	log.Info(context.Background(), "trackd stopped")
}

func run(ctx context.Context, cfg *configs.Conf, log logger.Logger) error {
	if cfg.OtelCollectorAddr != "" {
		shutdown, err := otel.InitProvider(ctx, otel.ProviderConfig{
			ServiceName:    cfg.ServiceName,
			ServiceVersion: cfg.ServiceVersion,
			Environment:    cfg.AppEnv,
			CollectorAddr:  cfg.OtelCollectorAddr,
			SampleRatio:    cfg.OtelSampleRatio,
		})
		if err != nil {
			return err
		}
		defer shutdown()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewPrometheusMetrics(reg, cfg.ServiceName)

	manager := stream.NewManager(stream.Config{
		Endpoint:    cfg.TrackingStreamURL,
		Reconnect:   cfg.TrackingReconnectEnabled,
		MaxAttempts: cfg.TrackingReconnectAttempts,
		Delay:       cfg.TrackingReconnectDelay,
		Backoff:     strings.ToLower(cfg.TrackingReconnectBackoff),
		MaxDelay:    cfg.TrackingReconnectMaxDelay,
	}, newDialer(cfg), log.With(logger.String("component", "stream")), m)

	client := orderapi.NewClient(cfg.OrderAPIURL, log, orderapi.WithToken(cfg.OrderAPIToken))
	breaker := orderapi.NewBreaker("order-api", cfg.CommandTimeout, log)
	var gateway order.CommandGateway = order.NewGateway(orderapi.WithBreaker(client, breaker), cfg.CommandTimeout, log)
	gateway = &order.GatewayMetricsDecorator{Next: gateway, Metrics: m}

	store := tracking.NewStore(manager, stream.NewDecoder(), gateway, log.With(logger.String("component", "store")), m)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return store.Run(gCtx) })

	healthOpts := []handler.HealthOption{handler.WithStream(store.ConnectionStatus)}
	var (
		locations   outbound.LocationRepository
		idempotency middleware.IdempotencyStore
	)
	if addr := cfg.RedisAddr(); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
		repo := storage.NewRedisLocationRepository(rdb, log)
		locations = repo
		idempotency = storage.NewRedisIdempotencyStore(rdb, "gotrack:idempotency")
		healthOpts = append(healthOpts, handler.WithRedis(rdb))

		mirror := tracking.NewLocationMirror(store, repo, log, m)
		g.Go(func() error { return mirror.Run(gCtx) })
	}
	if cfg.TrackingStreamTransport == "amqp" {
		healthOpts = append(healthOpts, handler.WithRabbitMQ(cfg.TrackingStreamURL))
	}

	health, err := handler.NewHealthHandler(cfg.ServiceName, cfg.ServiceVersion, healthOpts...)
	if err != nil {
		return err
	}

	router := web.NewRouter(web.RouterDeps{
		ServiceName: cfg.ServiceName,
		Logger:      log,
		Metrics:     m,
		Gatherer:    reg,
		Orders:      handler.NewOrderHandler(store, log),
		Tracking:    handler.NewTrackingHandler(store, locations, log),
		Health:      health,
		RateLimiter: middleware.NewRateLimiter(gCtx, middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		}),
		Idempotency:    idempotency,
		IdempotencyTTL: cfg.IdempotencyTTL,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.WebServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		log.Info(gCtx, "http server listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newDialer(cfg *configs.Conf) stream.Dialer {
	if strings.EqualFold(cfg.TrackingStreamTransport, "amqp") {
		return stream.NewAMQPDialer()
	}
	header := http.Header{}
	if cfg.OrderAPIToken != "" {
		header.Set("Authorization", "Bearer "+cfg.OrderAPIToken)
	}
	return stream.NewWebSocketDialer(cfg.TrackingReadTimeout, header)
}
