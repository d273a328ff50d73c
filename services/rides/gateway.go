package rides

import (
	"context"
	"time"

	"github.com/piresc/hamroride/internal/pkg/lock"
	"github.com/piresc/hamroride/internal/pkg/models"
)

// RideGW publishes ride snapshots to real-time subscribers
type RideGW interface {
	Publish(ctx context.Context, ride *models.Ride) error
}

// Locker hands out short-lived exclusive leases
type Locker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (*lock.Lease, bool, error)
	Release(ctx context.Context, lease *lock.Lease) error
}

// DriverRatingStore receives recomputed driver ratings
type DriverRatingStore interface {
	UpdateRating(ctx context.Context, userID string, rating float64) error
}

// DriverDirectory is the view of driver profiles the ride service needs:
// current availability for dispatch and the rating write-back
type DriverDirectory interface {
	DriverRatingStore
	// GetStatuses returns the status of every known id; unknown ids are absent
	GetStatuses(ctx context.Context, userIDs []string) (map[string]models.DriverStatus, error)
}
