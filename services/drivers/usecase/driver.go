package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/piresc/hamroride/internal/pkg/apperror"
	"github.com/piresc/hamroride/internal/pkg/logger"
	"github.com/piresc/hamroride/internal/pkg/models"
	nrpkg "github.com/piresc/hamroride/internal/pkg/newrelic"
	"github.com/piresc/hamroride/internal/utils"
	"github.com/piresc/hamroride/services/drivers"
)

// MaxNearbyLimit caps a single nearby query
const MaxNearbyLimit = 50

const (
	fallbackNearbyLimit  = 5
	fallbackNearbyRadius = 3000.0
	fallbackStoreTimeout = 3 * time.Second
)

type driverUC struct {
	cfg          *models.Config
	repo         drivers.DriverRepo
	geo          drivers.GeoIndex
	storeTimeout time.Duration
}

// NewDriverUC creates the driver use case. The geo index is owned by the
// caller and shared with whatever else reads driver positions.
func NewDriverUC(cfg *models.Config, repo drivers.DriverRepo, geo drivers.GeoIndex) drivers.DriverUC {
	timeout := cfg.Rides.StoreTimeout
	if timeout <= 0 {
		timeout = fallbackStoreTimeout
	}
	return &driverUC{
		cfg:          cfg,
		repo:         repo,
		geo:          geo,
		storeTimeout: timeout,
	}
}

func (uc *driverUC) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, uc.storeTimeout)
}

// UpsertProfile creates or updates the caller's vehicle details
func (uc *driverUC) UpsertProfile(ctx context.Context, userID string, req models.ProfileUpsertRequest) (*models.DriverProfile, error) {
	profile := &models.DriverProfile{
		UserID:   userID,
		Make:     strings.TrimSpace(req.Make),
		Model:    strings.TrimSpace(req.Model),
		Plate:    strings.TrimSpace(req.Plate),
		Category: strings.TrimSpace(req.Category),
	}
	if profile.Make == "" || profile.Model == "" || profile.Plate == "" {
		return nil, apperror.InvalidInput("make, model and plate are required")
	}
	if profile.Category == "" {
		profile.Category = "standard"
	}

	ctx, cancel := uc.bounded(ctx)
	defer cancel()
	out, err := uc.repo.Upsert(ctx, profile)
	if err != nil {
		return nil, apperror.Internal("upsert driver profile", err)
	}
	return out, nil
}

// GetProfile returns the caller's profile
func (uc *driverUC) GetProfile(ctx context.Context, userID string) (*models.DriverProfile, error) {
	ctx, cancel := uc.bounded(ctx)
	defer cancel()
	p, err := uc.repo.Get(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("get driver profile", err)
	}
	return p, nil
}

// SetStatus changes availability. Leaving ONLINE drops the driver from the
// geo index so it is never offered as a candidate again.
func (uc *driverUC) SetStatus(ctx context.Context, userID string, status models.DriverStatus) (*models.DriverProfile, error) {
	if !status.IsValid() {
		return nil, apperror.InvalidInput("status must be ONLINE or OFFLINE")
	}

	ctx, cancel := uc.bounded(ctx)
	defer cancel()

	if err := uc.repo.UpdateStatus(ctx, userID, status); err != nil {
		return nil, apperror.Internal("update driver status", err)
	}

	if status != models.DriverStatusOnline {
		if err := uc.geo.Remove(ctx, userID); err != nil {
			return nil, apperror.Internal("remove driver location", err)
		}
	}

	logger.InfoCtx(ctx, "Driver status changed",
		logger.DriverID(userID),
		logger.String("status", string(status)))

	p, err := uc.repo.Get(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("get driver profile", err)
	}
	return p, nil
}

// UpdateLocation indexes the position of an ONLINE driver
func (uc *driverUC) UpdateLocation(ctx context.Context, userID string, lat, lng float64) (bool, error) {
	if err := utils.ValidateCoordinates(lat, lng); err != nil {
		return false, err
	}

	ctx, cancel := uc.bounded(ctx)
	defer cancel()

	p, err := uc.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			logger.Debug("Dropping location of unknown driver", logger.DriverID(userID))
			return false, nil
		}
		return false, apperror.Internal("get driver profile", err)
	}
	if p.Status != models.DriverStatusOnline {
		logger.Debug("Dropping location of offline driver", logger.DriverID(userID))
		return false, nil
	}

	err = nrpkg.WithSegment(ctx, "GeoIndex.Upsert", func() error {
		return uc.geo.Upsert(ctx, userID, lat, lng)
	})
	if err != nil {
		return false, apperror.Internal("index driver location", err)
	}

	// A SetStatus that ran between the read above and the upsert has
	// already done its Remove, so the entry is taken out again here.
	p, err = uc.repo.Get(ctx, userID)
	if err == nil && p.Status == models.DriverStatusOnline {
		return true, nil
	}
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		logger.Warn("Failed to confirm driver status after indexing", logger.DriverID(userID), logger.Err(err))
	}
	if rerr := uc.geo.Remove(ctx, userID); rerr != nil {
		return false, apperror.Internal("remove driver location", rerr)
	}
	logger.Debug("Driver went offline while indexing, location removed", logger.DriverID(userID))
	return false, nil
}

// NearbyDrivers answers a radius query and re-checks every candidate's
// status, removing index entries left behind by a lost removal
func (uc *driverUC) NearbyDrivers(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]models.NearbyDriver, error) {
	if err := utils.ValidateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = uc.cfg.Drivers.DefaultNearbyLimit
		if limit <= 0 {
			limit = fallbackNearbyLimit
		}
	}
	if limit > MaxNearbyLimit {
		limit = MaxNearbyLimit
	}
	if radiusMeters <= 0 {
		radiusMeters = uc.cfg.Drivers.DefaultNearbyRadius
		if radiusMeters <= 0 {
			radiusMeters = fallbackNearbyRadius
		}
	}

	ctx, cancel := uc.bounded(ctx)
	defer cancel()

	// overfetch so stale entries do not starve the result
	candidates, err := nrpkg.WithSegmentAndReturn(ctx, "GeoIndex.QueryRadius", func() ([]models.NearbyDriver, error) {
		return uc.geo.QueryRadius(ctx, lat, lng, radiusMeters, limit*2)
	})
	if err != nil {
		return nil, apperror.Internal("query nearby drivers", err)
	}
	if len(candidates) == 0 {
		return []models.NearbyDriver{}, nil
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.DriverID)
	}
	statuses, err := uc.repo.GetStatuses(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("get driver statuses", err)
	}

	out := make([]models.NearbyDriver, 0, limit)
	for _, c := range candidates {
		if statuses[c.DriverID] != models.DriverStatusOnline {
			if err := uc.geo.Remove(ctx, c.DriverID); err != nil {
				logger.Warn("Failed to remove stale driver location",
					logger.DriverID(c.DriverID),
					logger.Err(err))
			}
			continue
		}
		if len(out) < limit {
			out = append(out, c)
		}
	}
	return out, nil
}
