package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/piresc/hamroride/internal/pkg/apperror"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/piresc/hamroride/services/drivers"
)

const profileColumns = `user_id, status, make, model, plate, category, rating, created_at, updated_at`

type driverRepo struct {
	db *sqlx.DB
}

// NewDriverRepository creates a new driver profile repository
func NewDriverRepository(db *sqlx.DB) drivers.DriverRepo {
	return &driverRepo{db: db}
}

// Upsert creates the profile OFFLINE with the default rating, or updates the
// vehicle details of an existing one
func (r *driverRepo) Upsert(ctx context.Context, p *models.DriverProfile) (*models.DriverProfile, error) {
	query := `
		INSERT INTO driver_profiles (user_id, status, make, model, plate, category, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			make = EXCLUDED.make,
			model = EXCLUDED.model,
			plate = EXCLUDED.plate,
			category = EXCLUDED.category,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + profileColumns

	var out models.DriverProfile
	err := r.db.QueryRowxContext(ctx, query,
		p.UserID,
		models.DriverStatusOffline,
		p.Make,
		p.Model,
		p.Plate,
		p.Category,
		models.DefaultDriverRating,
		models.Now(),
	).StructScan(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert driver profile: %w", err)
	}
	return &out, nil
}

// Get retrieves a driver profile by user id
func (r *driverRepo) Get(ctx context.Context, userID string) (*models.DriverProfile, error) {
	var p models.DriverProfile
	err := r.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM driver_profiles WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("driver profile", userID)
		}
		return nil, fmt.Errorf("failed to get driver profile: %w", err)
	}
	return &p, nil
}

// UpdateStatus sets the availability of a driver
func (r *driverRepo) UpdateStatus(ctx context.Context, userID string, status models.DriverStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE driver_profiles SET status = $1, updated_at = $2 WHERE user_id = $3`,
		status, models.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update driver status: %w", err)
	}
	return requireRow(res, userID)
}

// UpdateRating stores a recomputed average rating
func (r *driverRepo) UpdateRating(ctx context.Context, userID string, rating float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE driver_profiles SET rating = $1, updated_at = $2 WHERE user_id = $3`,
		rating, models.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update driver rating: %w", err)
	}
	return requireRow(res, userID)
}

// GetStatuses loads the status of each id in one query
func (r *driverRepo) GetStatuses(ctx context.Context, userIDs []string) (map[string]models.DriverStatus, error) {
	out := make(map[string]models.DriverStatus, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT user_id, status FROM driver_profiles WHERE user_id IN (?)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build status query: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get driver statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var status models.DriverStatus
		if err := rows.Scan(&id, &status); err != nil {
			return nil, fmt.Errorf("failed to scan driver status: %w", err)
		}
		out[id] = status
	}
	return out, rows.Err()
}

func requireRow(res sql.Result, userID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("driver profile", userID)
	}
	return nil
}
