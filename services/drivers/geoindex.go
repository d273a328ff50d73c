package drivers

import (
	"context"

	"github.com/piresc/hamroride/internal/pkg/models"
)

// GeoIndex is the spatial index of online drivers
type GeoIndex interface {
	Upsert(ctx context.Context, driverID string, lat, lng float64) error
	Remove(ctx context.Context, driverID string) error
	// QueryRadius returns at most limit drivers within radiusMeters of the
	// point, nearest first
	QueryRadius(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]models.NearbyDriver, error)
}
