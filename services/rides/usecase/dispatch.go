package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/piresc/hamroride/internal/pkg/apperror"
	"github.com/piresc/hamroride/internal/pkg/constants"
	"github.com/piresc/hamroride/internal/pkg/lock"
	"github.com/piresc/hamroride/internal/pkg/logger"
	"github.com/piresc/hamroride/internal/pkg/models"
	nrpkg "github.com/piresc/hamroride/internal/pkg/newrelic"
	"github.com/piresc/hamroride/internal/utils"
	"github.com/piresc/hamroride/services/rides/lifecycle"
)

const (
	fallbackSearchRadius   = 5000.0
	fallbackCandidateLimit = 5
)

// CreateRide prices the trip, tries to assign the nearest free driver and
// persists the ride. Finding no driver is not an error: the ride stays
// REQUESTED for a driver to accept later.
func (uc *rideUC) CreateRide(ctx context.Context, passengerID string, req models.CreateRideRequest) (*models.Ride, error) {
	if passengerID == "" {
		return nil, apperror.Unauthorized("passenger identity required")
	}
	pickup, dropoff, err := tripPoints(req)
	if err != nil {
		return nil, err
	}

	miles, fare := uc.estimator.Quote(pickup, dropoff)
	now := models.Now()
	ride := &models.Ride{
		ID:             uuid.NewString(),
		PassengerID:    passengerID,
		PickupLat:      pickup.Latitude,
		PickupLng:      pickup.Longitude,
		PickupAddress:  req.PickupAddress,
		DropoffLat:     dropoff.Latitude,
		DropoffLng:     dropoff.Longitude,
		DropoffAddress: req.DropoffAddress,
		Status:         models.RideStatusRequested,
		DistanceMiles:  miles,
		EstimatedFare:  fare,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	claim := uc.assignNearest(ctx, ride)

	cctx, cancel := uc.bounded(ctx)
	err = uc.repo.Create(cctx, ride)
	cancel()
	// the claim is only released once the assignment is visible to
	// CountActiveByDriver
	uc.releaseClaim(claim)
	if err != nil {
		return nil, apperror.Internal("create ride", err)
	}

	logger.InfoCtx(ctx, "Ride created",
		logger.RideID(ride.ID),
		logger.UserID(passengerID),
		logger.String("status", string(ride.Status)),
		logger.Float64("distance_miles", ride.DistanceMiles),
		logger.Float64("estimated_fare", ride.EstimatedFare))

	uc.publish(ctx, ride)
	return ride, nil
}

func tripPoints(req models.CreateRideRequest) (utils.GeoPoint, utils.GeoPoint, error) {
	if req.PickupLat == nil || req.PickupLng == nil || req.DropoffLat == nil || req.DropoffLng == nil {
		return utils.GeoPoint{}, utils.GeoPoint{}, apperror.InvalidInput("pickup and dropoff coordinates are required")
	}
	pickup := utils.GeoPoint{Latitude: *req.PickupLat, Longitude: *req.PickupLng}
	dropoff := utils.GeoPoint{Latitude: *req.DropoffLat, Longitude: *req.DropoffLng}
	if err := utils.ValidateCoordinates(pickup.Latitude, pickup.Longitude); err != nil {
		return utils.GeoPoint{}, utils.GeoPoint{}, err
	}
	if err := utils.ValidateCoordinates(dropoff.Latitude, dropoff.Longitude); err != nil {
		return utils.GeoPoint{}, utils.GeoPoint{}, err
	}
	return pickup, dropoff, nil
}

// assignNearest walks the candidates nearest first and assigns the first one
// that can be claimed and has no active ride. It returns the held claim, or
// nil when the ride stays unassigned.
func (uc *rideUC) assignNearest(ctx context.Context, ride *models.Ride) *lock.Lease {
	radius := uc.cfg.Dispatch.SearchRadiusMeters
	if radius <= 0 {
		radius = fallbackSearchRadius
	}
	limit := uc.cfg.Dispatch.CandidateLimit
	if limit <= 0 {
		limit = fallbackCandidateLimit
	}

	qctx, cancel := uc.bounded(ctx)
	candidates, err := nrpkg.WithSegmentAndReturn(qctx, "GeoIndex.QueryRadius", func() ([]models.NearbyDriver, error) {
		return uc.geo.QueryRadius(qctx, ride.PickupLat, ride.PickupLng, radius, limit)
	})
	cancel()
	if err != nil {
		logger.ErrorCtx(ctx, "Driver search failed, ride left unassigned",
			logger.RideID(ride.ID),
			logger.Err(err))
		return nil
	}

	candidates = uc.onlineOnly(ctx, ride.ID, candidates)
	for _, c := range candidates {
		lease, ok := uc.claim(ctx, c.DriverID)
		if !ok {
			continue
		}

		if err := lifecycle.Apply(ride, lifecycle.ActorSystem, lifecycle.ActionAssign, c.DriverID); err != nil {
			logger.ErrorCtx(ctx, "Failed to assign driver",
				logger.RideID(ride.ID),
				logger.DriverID(c.DriverID),
				logger.Err(err))
			uc.releaseClaim(lease)
			return nil
		}

		logger.InfoCtx(ctx, "Driver assigned",
			logger.RideID(ride.ID),
			logger.DriverID(c.DriverID),
			logger.Float64("distance_meters", c.DistanceMeters))
		return lease
	}

	logger.InfoCtx(ctx, "No available driver near pickup",
		logger.RideID(ride.ID),
		logger.Int("candidates", len(candidates)))
	return nil
}

// onlineOnly drops candidates whose profile is not ONLINE. The index can
// briefly hold an entry for a driver who already went offline. A failed
// status lookup leaves the ride unassigned.
func (uc *rideUC) onlineOnly(ctx context.Context, rideID string, candidates []models.NearbyDriver) []models.NearbyDriver {
	if len(candidates) == 0 {
		return candidates
	}
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.DriverID)
	}

	sctx, cancel := uc.bounded(ctx)
	statuses, err := uc.driverDir.GetStatuses(sctx, ids)
	cancel()
	if err != nil {
		logger.ErrorCtx(ctx, "Driver status lookup failed, ride left unassigned",
			logger.RideID(rideID),
			logger.Err(err))
		return nil
	}

	online := make([]models.NearbyDriver, 0, len(candidates))
	for _, c := range candidates {
		if statuses[c.DriverID] == models.DriverStatusOnline {
			online = append(online, c)
			continue
		}
		logger.Debug("Skipping candidate that is not online", logger.DriverID(c.DriverID))
	}
	return online
}

// claim takes the driver's dispatch claim and checks that the driver is not
// already on a ride. Any failure skips the candidate.
func (uc *rideUC) claim(ctx context.Context, driverID string) (*lock.Lease, bool) {
	cctx, cancel := uc.bounded(ctx)
	defer cancel()

	lease, ok, err := uc.locker.TryAcquire(cctx, fmt.Sprintf(constants.KeyDispatchClaim, driverID), uc.claimTTL)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to claim driver", logger.DriverID(driverID), logger.Err(err))
		return nil, false
	}
	if !ok {
		logger.Debug("Driver already claimed by another dispatch", logger.DriverID(driverID))
		return nil, false
	}

	active, err := uc.repo.CountActiveByDriver(cctx, driverID)
	if err != nil || active > 0 {
		if err != nil {
			logger.WarnCtx(ctx, "Failed to count active rides", logger.DriverID(driverID), logger.Err(err))
		}
		uc.releaseClaim(lease)
		return nil, false
	}
	return lease, true
}

func (uc *rideUC) releaseClaim(lease *lock.Lease) {
	if lease == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), uc.storeTimeout)
	defer cancel()
	if err := uc.locker.Release(ctx, lease); err != nil {
		logger.Warn("Failed to release dispatch claim",
			logger.String("key", lease.Key),
			logger.Err(err))
	}
}
