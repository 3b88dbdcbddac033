package tracking

import (
	"context"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
)

// LocationMirror copies driver fixes from the store into a LocationRepository so they can
// be queried geographically. It is a derived cache and never writes back to the store.
type LocationMirror struct {
	store   *Store
	repo    outbound.LocationRepository
	logger  logger.Logger
	metrics metrics.Metrics
	last    map[string]time.Time
}

func NewLocationMirror(store *Store, repo outbound.LocationRepository, log logger.Logger, m metrics.Metrics) *LocationMirror {
	return &LocationMirror{
		store:   store,
		repo:    repo,
		logger:  log,
		metrics: m,
		last:    make(map[string]time.Time),
	}
}

func (lm *LocationMirror) Run(ctx context.Context) error {
	sub := lm.store.Subscribe(1)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case v, ok := <-sub.C():
			if !ok {
				return nil
			}
			lm.sync(ctx, v.State.DriverLocations)
		}
	}
}

func (lm *LocationMirror) sync(ctx context.Context, locations map[string]entity.DriverLocation) {
	for id, loc := range locations {
		if prev, ok := lm.last[id]; ok && !loc.Timestamp.After(prev) {
			continue
		}
		if err := lm.repo.UpdateLocation(ctx, loc); err != nil {
			lm.metrics.IncLocationMirrored("error")
			lm.logger.Warn(ctx, "failed to mirror driver location",
				logger.String("driver_id", id),
				logger.WithError(err),
			)
			continue
		}
		lm.last[id] = loc.Timestamp
		lm.metrics.IncLocationMirrored("ok")
	}
}
