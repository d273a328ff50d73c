package drivers

import (
	"context"

	"github.com/piresc/hamroride/internal/pkg/models"
)

// DriverUC defines the driver profile, availability and location operations
type DriverUC interface {
	UpsertProfile(ctx context.Context, userID string, req models.ProfileUpsertRequest) (*models.DriverProfile, error)
	GetProfile(ctx context.Context, userID string) (*models.DriverProfile, error)
	SetStatus(ctx context.Context, userID string, status models.DriverStatus) (*models.DriverProfile, error)
	// UpdateLocation reports whether the location was indexed. Reports from
	// drivers that are not ONLINE are dropped without error.
	UpdateLocation(ctx context.Context, userID string, lat, lng float64) (bool, error)
	// NearbyDrivers applies the configured defaults when limit or radius is not positive
	NearbyDrivers(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]models.NearbyDriver, error)
}
