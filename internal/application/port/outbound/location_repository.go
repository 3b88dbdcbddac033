package outbound

import (
	"context"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

type NearbyDriver struct {
	DriverID   string  `json:"driver_id"`
	Latitude   float64 `json:"lat"`
	Longitude  float64 `json:"lng"`
	DistanceKm float64 `json:"distance_km"`
}

// LocationRepository mirrors accepted driver fixes for geo queries. It is a derived cache;
// the tracking store stays the owner of canonical locations.
type LocationRepository interface {
	GetNearestDrivers(ctx context.Context, lat, lng float64, radiusKm float64) ([]NearbyDriver, error)
	UpdateLocation(ctx context.Context, loc entity.DriverLocation) error
}
