package repository_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/piresc/hamroride/internal/pkg/apperror"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/piresc/hamroride/services/rides/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rideCols = []string{
	"id", "passenger_id", "driver_id",
	"pickup_lat", "pickup_lng", "pickup_address",
	"dropoff_lat", "dropoff_lng", "dropoff_address",
	"status", "distance_miles", "estimated_fare", "final_fare",
	"driver_rating", "passenger_rating", "version", "created_at", "updated_at",
}

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "pgx"), mock
}

func rideRow(id string, status models.RideStatus, driverID interface{}, rating interface{}, createdAt time.Time) []driver.Value {
	return []driver.Value{
		id, "p1", driverID,
		27.70, 85.32, "Thamel",
		27.72, 85.30, nil,
		string(status), 1.85, 4.3, nil,
		rating, nil, int64(2), createdAt, createdAt,
	}
}

func TestCreate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewRideRepository(db)

	now := time.Now()
	addr := "Thamel"
	ride := &models.Ride{
		ID: "r1", PassengerID: "p1",
		PickupLat: 27.70, PickupLng: 85.32, PickupAddress: &addr,
		DropoffLat: 27.72, DropoffLng: 85.30,
		Status: models.RideStatusRequested, DistanceMiles: 1.85, EstimatedFare: 5,
		Version: 1, CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rides")).
		WithArgs("r1", "p1", nil,
			27.70, 85.32, "Thamel",
			27.72, 85.30, nil,
			"REQUESTED", 1.85, 5.0, nil,
			nil, nil, int64(1), now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), ride))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := repository.NewRideRepository(db)

		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("FROM rides WHERE id = $1")).
			WithArgs("r1").
			WillReturnRows(sqlmock.NewRows(rideCols).AddRow(rideRow("r1", models.RideStatusCompleted, "d1", int64(4), now)...))

		ride, err := repo.Get(context.Background(), "r1")
		require.NoError(t, err)
		assert.Equal(t, models.RideStatusCompleted, ride.Status)
		require.NotNil(t, ride.DriverID)
		assert.Equal(t, "d1", *ride.DriverID)
		require.NotNil(t, ride.DriverRating)
		assert.Equal(t, 4, *ride.DriverRating)
		assert.Nil(t, ride.FinalFare)
		assert.Nil(t, ride.DropoffAddress)
		assert.Equal(t, int64(2), ride.Version)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := repository.NewRideRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM rides WHERE id = $1")).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(rideCols))

		_, err := repo.Get(context.Background(), "missing")
		assert.True(t, errors.Is(err, apperror.ErrNotFound))
	})
}

func TestUpdate(t *testing.T) {
	now := time.Now()
	driverID := "d1"
	ride := &models.Ride{ID: "r1", DriverID: &driverID, Status: models.RideStatusDriverAccepted, Version: 2, UpdatedAt: now}

	t.Run("version matches", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := repository.NewRideRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE rides SET")).
			WithArgs("d1", "DRIVER_ACCEPTED", nil, nil, nil, now, "r1", int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		r := ride.Clone()
		require.NoError(t, repo.Update(context.Background(), r, 2))
		assert.Equal(t, int64(3), r.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := repository.NewRideRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE rides SET")).
			WithArgs("d1", "DRIVER_ACCEPTED", nil, nil, nil, now, "r1", int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		r := ride.Clone()
		err := repo.Update(context.Background(), r, 2)
		assert.True(t, errors.Is(err, apperror.ErrConflict))
		assert.True(t, apperror.IsRetryable(err))
		assert.Equal(t, int64(2), r.Version)
	})

	t.Run("driver error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := repository.NewRideRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE rides SET")).WillReturnError(assert.AnError)

		err := repo.Update(context.Background(), ride.Clone(), 2)
		assert.ErrorIs(t, err, assert.AnError)
		assert.False(t, errors.Is(err, apperror.ErrConflict))
	})
}

func TestListByPassenger(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewRideRepository(db)

	newer := time.Now()
	older := newer.Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE passenger_id = $1 ORDER BY created_at DESC")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(rideCols).
			AddRow(rideRow("r2", models.RideStatusRequested, nil, nil, newer)...).
			AddRow(rideRow("r1", models.RideStatusCompleted, "d1", nil, older)...))

	list, err := repo.ListByPassenger(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].ID)
	assert.Nil(t, list[0].DriverID)
	assert.Equal(t, "r1", list[1].ID)
}

func TestListByPassenger_Empty(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewRideRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE passenger_id = $1")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(rideCols))

	list, err := repo.ListByPassenger(context.Background(), "p1")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestListActiveByDriver(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewRideRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE driver_id = $1 AND status NOT IN")).
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows(rideCols).AddRow(rideRow("r3", models.RideStatusDriverArriving, "d1", nil, time.Now())...))

	list, err := repo.ListActiveByDriver(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.RideStatusDriverArriving, list[0].Status)
}

func TestListByDriver(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewRideRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE driver_id = $1 ORDER BY created_at DESC")).
		WithArgs("d1").
		WillReturnError(assert.AnError)

	_, err := repo.ListByDriver(context.Background(), "d1")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestCountActiveByDriver(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewRideRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rides WHERE driver_id = $1 AND status NOT IN")).
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountActiveByDriver(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestListDriverRatings(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewRideRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT driver_rating FROM rides WHERE driver_id = $1 AND driver_rating IS NOT NULL")).
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows([]string{"driver_rating"}).AddRow(5).AddRow(4).AddRow(4))

	ratings, err := repo.ListDriverRatings(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, []int{5, 4, 4}, ratings)
}
