package storage

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/logger"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func fix(driverID string, lat, lng float64, at time.Time) entity.DriverLocation {
	return entity.DriverLocation{DriverID: driverID, Latitude: lat, Longitude: lng, Timestamp: at}
}

func position(t *testing.T, client *redis.Client, driverID string) *redis.GeoPos {
	t.Helper()
	pos, err := client.GeoPos(context.Background(), locationsKey, driverID).Result()
	require.NoError(t, err)
	require.Len(t, pos, 1)
	return pos[0]
}

func TestRedisLocationRepository_OlderFixIsIgnored(t *testing.T) {
	//Arrange
	mr, client := newRedis(t)
	repo := NewRedisLocationRepository(client, logger.NewNop())
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	//Act
	require.NoError(t, repo.UpdateLocation(ctx, fix("d-1", -1.28, 36.82, at)))
	require.NoError(t, repo.UpdateLocation(ctx, fix("d-1", -1.30, 36.80, at.Add(-time.Minute))))

	//Assert
	pos := position(t, client, "d-1")
	require.NotNil(t, pos)
	assert.InDelta(t, -1.28, pos.Latitude, 1e-4)
	assert.InDelta(t, 36.82, pos.Longitude, 1e-4)
	assert.Equal(t, strconv.FormatInt(at.UnixMilli(), 10), mr.HGet(fixesKey, "d-1"))
}

func TestRedisLocationRepository_NewerFixReplaces(t *testing.T) {
	//Arrange
	mr, client := newRedis(t)
	repo := NewRedisLocationRepository(client, logger.NewNop())
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLocation(ctx, fix("d-1", -1.28, 36.82, at)))

	//Act
	err := repo.UpdateLocation(ctx, fix("d-1", -1.30, 36.80, at.Add(time.Second)))

	//Assert
	require.NoError(t, err)
	pos := position(t, client, "d-1")
	require.NotNil(t, pos)
	assert.InDelta(t, -1.30, pos.Latitude, 1e-4)
	assert.Equal(t, strconv.FormatInt(at.Add(time.Second).UnixMilli(), 10), mr.HGet(fixesKey, "d-1"))
}

func TestRedisLocationRepository_PolarFixIsSkipped(t *testing.T) {
	//Arrange
	mr, client := newRedis(t)
	repo := NewRedisLocationRepository(client, logger.NewNop())

	//Act
	err := repo.UpdateLocation(context.Background(), fix("d-9", 89.9, 10, time.Now()))

	//Assert
	require.NoError(t, err)
	assert.False(t, mr.Exists(locationsKey))
	assert.False(t, mr.Exists(fixesKey))
}

func TestRedisLocationRepository_RejectsInvalidFix(t *testing.T) {
	_, client := newRedis(t)
	repo := NewRedisLocationRepository(client, logger.NewNop())

	err := repo.UpdateLocation(context.Background(), fix("", 1, 1, time.Now()))

	assert.ErrorIs(t, err, entity.ErrDriverIsRequired)
}

func TestRedisIdempotencyStore_ClaimOnceUntilReleased(t *testing.T) {
	//Arrange
	mr, client := newRedis(t)
	store := NewRedisIdempotencyStore(client, "idem:")
	ctx := context.Background()

	//Act
	first, err := store.Claim(ctx, "k1", time.Minute)
	require.NoError(t, err)
	second, err := store.Claim(ctx, "k1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "k1"))
	third, err := store.Claim(ctx, "k1", time.Minute)
	require.NoError(t, err)

	//Assert
	assert.True(t, first)
	assert.False(t, second)
	assert.True(t, third)
	assert.Equal(t, time.Minute, mr.TTL("idem:k1"))
}

func TestRedisIdempotencyStore_ClaimExpires(t *testing.T) {
	mr, client := newRedis(t)
	store := NewRedisIdempotencyStore(client, "idem:")
	ctx := context.Background()

	ok, err := store.Claim(ctx, "k2", time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	mr.FastForward(2 * time.Second)

	ok, err = store.Claim(ctx, "k2", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
