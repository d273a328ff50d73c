package drivers

import (
	"context"

	"github.com/piresc/hamroride/internal/pkg/models"
)

// DriverRepo defines the interface for driver profile persistence
type DriverRepo interface {
	// Upsert inserts a profile or updates its vehicle details. Status and
	// rating of an existing profile are left untouched.
	Upsert(ctx context.Context, profile *models.DriverProfile) (*models.DriverProfile, error)
	Get(ctx context.Context, userID string) (*models.DriverProfile, error)
	UpdateStatus(ctx context.Context, userID string, status models.DriverStatus) error
	UpdateRating(ctx context.Context, userID string, rating float64) error
	// GetStatuses returns the status of every known id; unknown ids are absent
	GetStatuses(ctx context.Context, userIDs []string) (map[string]models.DriverStatus, error)
}
