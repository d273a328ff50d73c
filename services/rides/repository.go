package rides

import (
	"context"

	"github.com/piresc/hamroride/internal/pkg/models"
)

// RideRepo defines the interface for ride persistence
type RideRepo interface {
	Create(ctx context.Context, ride *models.Ride) error
	Get(ctx context.Context, id string) (*models.Ride, error)
	// Update writes ride only if the stored version still equals
	// expectedVersion, then bumps ride.Version. A stale write returns an
	// apperror.ErrConflict.
	Update(ctx context.Context, ride *models.Ride, expectedVersion int64) error
	// ListByPassenger returns the passenger's rides, newest first
	ListByPassenger(ctx context.Context, passengerID string) ([]*models.Ride, error)
	ListByDriver(ctx context.Context, driverID string) ([]*models.Ride, error)
	// ListActiveByDriver returns the driver's rides that are not in a terminal status
	ListActiveByDriver(ctx context.Context, driverID string) ([]*models.Ride, error)
	CountActiveByDriver(ctx context.Context, driverID string) (int, error)
	// ListDriverRatings returns every non-null driver rating given to driverID
	ListDriverRatings(ctx context.Context, driverID string) ([]int, error)
}
