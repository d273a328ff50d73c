package rides

import (
	"context"

	"github.com/piresc/hamroride/internal/pkg/models"
)

// RideUC defines the ride operations exposed to passengers, drivers and
// internal services. Every mutation publishes the resulting snapshot.
type RideUC interface {
	CreateRide(ctx context.Context, passengerID string, req models.CreateRideRequest) (*models.Ride, error)
	// GetRide returns the ride only to its participants
	GetRide(ctx context.Context, userID, rideID string) (*models.Ride, error)
	ListMyRides(ctx context.Context, passengerID string) ([]*models.Ride, error)
	ListAssignedRides(ctx context.Context, driverID string) ([]*models.Ride, error)
	// ListDriverHistory returns every ride the driver was assigned, newest first
	ListDriverHistory(ctx context.Context, driverID string) ([]*models.Ride, error)

	AcceptRide(ctx context.Context, driverID, rideID string) (*models.Ride, error)
	MarkArriving(ctx context.Context, driverID, rideID string) (*models.Ride, error)
	StartRide(ctx context.Context, driverID, rideID string) (*models.Ride, error)
	CompleteRide(ctx context.Context, driverID, rideID string) (*models.Ride, error)
	DriverCancel(ctx context.Context, driverID, rideID string) (*models.Ride, error)
	PassengerCancel(ctx context.Context, passengerID, rideID string) (*models.Ride, error)
	SystemCancel(ctx context.Context, rideID string) (*models.Ride, error)

	RateDriver(ctx context.Context, passengerID, rideID string, stars int) (*models.Ride, error)
	RatePassenger(ctx context.Context, driverID, rideID string, stars int) (*models.Ride, error)
}
