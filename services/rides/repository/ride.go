package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/piresc/hamroride/internal/pkg/apperror"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/piresc/hamroride/services/rides"
)

const rideColumns = `id, passenger_id, driver_id,
	pickup_lat, pickup_lng, pickup_address,
	dropoff_lat, dropoff_lng, dropoff_address,
	status, distance_miles, estimated_fare, final_fare,
	driver_rating, passenger_rating, version, created_at, updated_at`

// activeStatusFilter excludes the terminal statuses
const activeStatusFilter = `status NOT IN ('COMPLETED', 'CANCELLED_BY_PASSENGER', 'CANCELLED_BY_DRIVER', 'CANCELLED_SYSTEM')`

type rideRepo struct {
	db *sqlx.DB
}

// NewRideRepository creates a new ride repository
func NewRideRepository(db *sqlx.DB) rides.RideRepo {
	return &rideRepo{db: db}
}

// Create inserts a new ride
func (r *rideRepo) Create(ctx context.Context, ride *models.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES (
			:id, :passenger_id, :driver_id,
			:pickup_lat, :pickup_lng, :pickup_address,
			:dropoff_lat, :dropoff_lng, :dropoff_address,
			:status, :distance_miles, :estimated_fare, :final_fare,
			:driver_rating, :passenger_rating, :version, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, ride); err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}
	return nil
}

// Get retrieves a ride by id
func (r *rideRepo) Get(ctx context.Context, id string) (*models.Ride, error) {
	var ride models.Ride
	err := r.db.GetContext(ctx, &ride, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("ride", id)
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}
	return &ride, nil
}

// Update writes the mutable columns under an optimistic version check.
// distance_miles and estimated_fare are fixed at creation and never written.
func (r *rideRepo) Update(ctx context.Context, ride *models.Ride, expectedVersion int64) error {
	query := `
		UPDATE rides SET
			driver_id = $1,
			status = $2,
			final_fare = $3,
			driver_rating = $4,
			passenger_rating = $5,
			updated_at = $6,
			version = version + 1
		WHERE id = $7 AND version = $8`

	res, err := r.db.ExecContext(ctx, query,
		ride.DriverID,
		ride.Status,
		ride.FinalFare,
		ride.DriverRating,
		ride.PassengerRating,
		ride.UpdatedAt,
		ride.ID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update ride: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return apperror.Conflict(fmt.Sprintf("ride %s was modified concurrently", ride.ID))
	}
	ride.Version = expectedVersion + 1
	return nil
}

// ListByPassenger returns the passenger's rides, newest first
func (r *rideRepo) ListByPassenger(ctx context.Context, passengerID string) ([]*models.Ride, error) {
	return r.list(ctx, `SELECT `+rideColumns+` FROM rides WHERE passenger_id = $1 ORDER BY created_at DESC`, passengerID)
}

// ListByDriver returns every ride the driver was assigned, newest first
func (r *rideRepo) ListByDriver(ctx context.Context, driverID string) ([]*models.Ride, error) {
	return r.list(ctx, `SELECT `+rideColumns+` FROM rides WHERE driver_id = $1 ORDER BY created_at DESC`, driverID)
}

// ListActiveByDriver returns the driver's rides still in progress, newest first
func (r *rideRepo) ListActiveByDriver(ctx context.Context, driverID string) ([]*models.Ride, error) {
	return r.list(ctx, `SELECT `+rideColumns+` FROM rides WHERE driver_id = $1 AND `+activeStatusFilter+` ORDER BY created_at DESC`, driverID)
}

// CountActiveByDriver counts the driver's non-terminal rides
func (r *rideRepo) CountActiveByDriver(ctx context.Context, driverID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM rides WHERE driver_id = $1 AND `+activeStatusFilter, driverID)
	if err != nil {
		return 0, fmt.Errorf("failed to count active rides: %w", err)
	}
	return n, nil
}

// ListDriverRatings returns every rating passengers gave the driver
func (r *rideRepo) ListDriverRatings(ctx context.Context, driverID string) ([]int, error) {
	var ratings []int
	err := r.db.SelectContext(ctx, &ratings,
		`SELECT driver_rating FROM rides WHERE driver_id = $1 AND driver_rating IS NOT NULL`, driverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list driver ratings: %w", err)
	}
	return ratings, nil
}

func (r *rideRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Ride, error) {
	out := []*models.Ride{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list rides: %w", err)
	}
	return out, nil
}
