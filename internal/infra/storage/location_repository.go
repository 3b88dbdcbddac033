package storage

import (
	"context"
	"fmt"
	"math"

	"github.com/redis/go-redis/v9"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/logger"
)

const (
	locationsKey = "drivers_locations"
	fixesKey     = "drivers_fixes"
	nearbyLimit  = 10

	// maxGeoLatitude is the largest latitude GEOADD accepts.
	maxGeoLatitude = 85.05112878
)

// updateIfNewer keeps the GEO set monotonic per driver: a fix older than the stored one
// is ignored.
var updateIfNewer = redis.NewScript(`
local prev = redis.call('HGET', KEYS[2], ARGV[1])
if prev and tonumber(prev) > tonumber(ARGV[4]) then
	return 0
end
redis.call('GEOADD', KEYS[1], ARGV[2], ARGV[3], ARGV[1])
redis.call('HSET', KEYS[2], ARGV[1], ARGV[4])
return 1
`)

type RedisLocationRepository struct {
	client redis.Scripter
	geo    redis.Cmdable
	logger logger.Logger
}

var _ outbound.LocationRepository = (*RedisLocationRepository)(nil)

func NewRedisLocationRepository(client *redis.Client, log logger.Logger) *RedisLocationRepository {
	return &RedisLocationRepository{client: client, geo: client, logger: log}
}

func (r *RedisLocationRepository) GetNearestDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]outbound.NearbyDriver, error) {
	r.logger.Debug(ctx, "Redis GeoSearch query",
		logger.Float64("lat", lat),
		logger.Float64("lng", lng),
		logger.Float64("radius_km", radiusKm),
	)
	results, err := r.geo.GeoSearchLocation(ctx, locationsKey,
		&redis.GeoSearchLocationQuery{
			GeoSearchQuery: redis.GeoSearchQuery{
				Latitude:   lat,
				Longitude:  lng,
				Radius:     radiusKm,
				RadiusUnit: "km",
				Sort:       "ASC",
				Count:      nearbyLimit,
			},
			WithCoord: true,
			WithDist:  true,
		},
	).Result()
	if err != nil {
		r.logger.Error(ctx, "Redis command failed", logger.WithError(err))
		return nil, fmt.Errorf("redis geo search error: %w", err)
	}
	return toNearby(results), nil
}

func (r *RedisLocationRepository) UpdateLocation(ctx context.Context, loc entity.DriverLocation) error {
	if err := loc.Validate(); err != nil {
		return fmt.Errorf("mirror location: %w", err)
	}
	if math.Abs(loc.Latitude) > maxGeoLatitude {
		r.logger.Debug(ctx, "driver fix outside geo index range skipped",
			logger.String("driver_id", loc.DriverID),
			logger.Float64("lat", loc.Latitude),
		)
		return nil
	}
	stored, err := updateIfNewer.Run(ctx, r.client,
		[]string{locationsKey, fixesKey},
		loc.DriverID, loc.Longitude, loc.Latitude, loc.Timestamp.UnixMilli(),
	).Int()
	if err != nil {
		r.logger.Error(ctx, "Redis GeoAdd failed", logger.WithError(err))
		return fmt.Errorf("redis geo add error: %w", err)
	}
	if stored == 0 {
		r.logger.Debug(ctx, "older driver fix ignored", logger.String("driver_id", loc.DriverID))
	}
	return nil
}

func toNearby(results []redis.GeoLocation) []outbound.NearbyDriver {
	out := make([]outbound.NearbyDriver, len(results))
	for i, res := range results {
		out[i] = outbound.NearbyDriver{
			DriverID:   res.Name,
			Latitude:   res.Latitude,
			Longitude:  res.Longitude,
			DistanceKm: res.Dist,
		}
	}
	return out
}
