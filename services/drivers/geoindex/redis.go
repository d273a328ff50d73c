package geoindex

import (
	"context"
	"fmt"

	"github.com/piresc/hamroride/internal/pkg/constants"
	"github.com/piresc/hamroride/internal/pkg/database"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/piresc/hamroride/services/drivers"
)

// RedisIndex keeps online driver positions in a Redis geo set. Every
// operation is a single Redis command, so readers never see partial writes.
type RedisIndex struct {
	redis *database.RedisClient
	key   string
}

// NewRedisIndex creates a geo index on the shared drivers:online key
func NewRedisIndex(redis *database.RedisClient) *RedisIndex {
	return &RedisIndex{redis: redis, key: constants.KeyDriverGeo}
}

var _ drivers.GeoIndex = (*RedisIndex)(nil)

// Upsert adds the driver or moves it to the new position
func (i *RedisIndex) Upsert(ctx context.Context, driverID string, lat, lng float64) error {
	if err := i.redis.GeoAdd(ctx, i.key, lng, lat, driverID); err != nil {
		return fmt.Errorf("failed to index driver location: %w", err)
	}
	return nil
}

// Remove drops the driver from the index; removing an absent driver is a no-op
func (i *RedisIndex) Remove(ctx context.Context, driverID string) error {
	if err := i.redis.ZRem(ctx, i.key, driverID); err != nil {
		return fmt.Errorf("failed to remove driver location: %w", err)
	}
	return nil
}

// QueryRadius runs GEORADIUS in meters, ascending by distance
func (i *RedisIndex) QueryRadius(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]models.NearbyDriver, error) {
	if limit < 0 {
		limit = 0
	}
	locations, err := i.redis.GeoRadius(ctx, i.key, lng, lat, radiusMeters, constants.GeoUnitMeters, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query driver locations: %w", err)
	}

	out := make([]models.NearbyDriver, 0, len(locations))
	for _, loc := range locations {
		out = append(out, models.NearbyDriver{
			DriverID:       loc.Name,
			DistanceMeters: loc.Dist,
		})
	}
	return out, nil
}
