package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/piresc/hamroride/internal/pkg/apperror"
	"github.com/piresc/hamroride/internal/pkg/logger"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/piresc/hamroride/services/drivers"
	"github.com/piresc/hamroride/services/rides"
	"github.com/piresc/hamroride/services/rides/lifecycle"
	"github.com/piresc/hamroride/services/rides/pricing"
)

const (
	fallbackStoreTimeout = 3 * time.Second
	fallbackClaimTTL     = 10 * time.Second
)

// rideUC implements the rides.RideUC interface
type rideUC struct {
	cfg          *models.Config
	repo         rides.RideRepo
	geo          drivers.GeoIndex
	driverDir    rides.DriverDirectory
	locker       rides.Locker
	estimator    *pricing.Estimator
	ratings      *RatingAggregator
	gw           rides.RideGW
	storeTimeout time.Duration
	claimTTL     time.Duration
}

// NewRideUC creates a new ride use case. geo is the same index the driver
// service writes locations to; driverDir confirms candidates are ONLINE and
// receives recomputed ratings.
func NewRideUC(
	cfg *models.Config,
	repo rides.RideRepo,
	geo drivers.GeoIndex,
	locker rides.Locker,
	driverDir rides.DriverDirectory,
	gw rides.RideGW,
) (rides.RideUC, error) {
	estimator, err := pricing.NewEstimator(cfg.Pricing)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Rides.StoreTimeout
	if timeout <= 0 {
		timeout = fallbackStoreTimeout
	}
	claimTTL := cfg.Dispatch.ClaimTTL
	if claimTTL <= 0 {
		claimTTL = fallbackClaimTTL
	}

	return &rideUC{
		cfg:          cfg,
		repo:         repo,
		geo:          geo,
		driverDir:    driverDir,
		locker:       locker,
		estimator:    estimator,
		ratings:      NewRatingAggregator(cfg, repo, driverDir, locker),
		gw:           gw,
		storeTimeout: timeout,
		claimTTL:     claimTTL,
	}, nil
}

func (uc *rideUC) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, uc.storeTimeout)
}

// GetRide returns the ride to its passenger or current driver
func (uc *rideUC) GetRide(ctx context.Context, userID, rideID string) (*models.Ride, error) {
	ride, err := uc.load(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !ride.IsParticipant(userID) {
		return nil, apperror.Forbidden("not a participant of this ride")
	}
	return ride, nil
}

// ListMyRides returns the passenger's rides, newest first
func (uc *rideUC) ListMyRides(ctx context.Context, passengerID string) ([]*models.Ride, error) {
	ctx, cancel := uc.bounded(ctx)
	defer cancel()
	list, err := uc.repo.ListByPassenger(ctx, passengerID)
	if err != nil {
		return nil, apperror.Internal("list passenger rides", err)
	}
	return list, nil
}

// ListAssignedRides returns the driver's rides that are still active
func (uc *rideUC) ListAssignedRides(ctx context.Context, driverID string) ([]*models.Ride, error) {
	ctx, cancel := uc.bounded(ctx)
	defer cancel()
	list, err := uc.repo.ListActiveByDriver(ctx, driverID)
	if err != nil {
		return nil, apperror.Internal("list assigned rides", err)
	}
	return list, nil
}

// ListDriverHistory returns all of the driver's rides in any status
func (uc *rideUC) ListDriverHistory(ctx context.Context, driverID string) ([]*models.Ride, error) {
	ctx, cancel := uc.bounded(ctx)
	defer cancel()
	list, err := uc.repo.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, apperror.Internal("list driver rides", err)
	}
	return list, nil
}

func (uc *rideUC) AcceptRide(ctx context.Context, driverID, rideID string) (*models.Ride, error) {
	return uc.transition(ctx, rideID, lifecycle.ActorDriver, lifecycle.ActionAccept, driverID)
}

func (uc *rideUC) MarkArriving(ctx context.Context, driverID, rideID string) (*models.Ride, error) {
	return uc.transition(ctx, rideID, lifecycle.ActorDriver, lifecycle.ActionArrive, driverID)
}

func (uc *rideUC) StartRide(ctx context.Context, driverID, rideID string) (*models.Ride, error) {
	return uc.transition(ctx, rideID, lifecycle.ActorDriver, lifecycle.ActionStart, driverID)
}

func (uc *rideUC) CompleteRide(ctx context.Context, driverID, rideID string) (*models.Ride, error) {
	return uc.transition(ctx, rideID, lifecycle.ActorDriver, lifecycle.ActionComplete, driverID)
}

func (uc *rideUC) DriverCancel(ctx context.Context, driverID, rideID string) (*models.Ride, error) {
	return uc.transition(ctx, rideID, lifecycle.ActorDriver, lifecycle.ActionCancel, driverID)
}

func (uc *rideUC) PassengerCancel(ctx context.Context, passengerID, rideID string) (*models.Ride, error) {
	return uc.transition(ctx, rideID, lifecycle.ActorPassenger, lifecycle.ActionCancel, passengerID)
}

// SystemCancel cancels on behalf of an internal service
func (uc *rideUC) SystemCancel(ctx context.Context, rideID string) (*models.Ride, error) {
	return uc.transition(ctx, rideID, lifecycle.ActorSystem, lifecycle.ActionCancel, "")
}

// transition applies one lifecycle step and saves it against the version it
// was read at. A concurrent writer makes the save fail with a conflict
// instead of being overwritten.
func (uc *rideUC) transition(ctx context.Context, rideID string, actor lifecycle.Actor, action lifecycle.Action, actorID string) (*models.Ride, error) {
	current, err := uc.load(ctx, rideID)
	if err != nil {
		return nil, err
	}

	ride := current.Clone()
	if err := lifecycle.Apply(ride, actor, action, actorID); err != nil {
		return nil, err
	}
	if err := uc.save(ctx, ride, current.Version); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Ride status changed",
		logger.RideID(ride.ID),
		logger.String("actor", string(actor)),
		logger.String("from", string(current.Status)),
		logger.String("to", string(ride.Status)))

	uc.publish(ctx, ride)
	return ride, nil
}

// RateDriver stores the passenger's rating and refreshes the driver's average
func (uc *rideUC) RateDriver(ctx context.Context, passengerID, rideID string, stars int) (*models.Ride, error) {
	ride, err := uc.rate(ctx, rideID, lifecycle.ActorPassenger, passengerID, stars)
	if err != nil {
		return nil, err
	}
	// the rating is already stored; a failed recompute is retried by rating again
	if err := uc.ratings.Recompute(ctx, *ride.DriverID); err != nil {
		logger.ErrorCtx(ctx, "Failed to recompute driver rating",
			logger.RideID(ride.ID),
			logger.DriverID(*ride.DriverID),
			logger.Err(err))
		return nil, err
	}
	return ride, nil
}

// RatePassenger stores the driver's rating of the passenger
func (uc *rideUC) RatePassenger(ctx context.Context, driverID, rideID string, stars int) (*models.Ride, error) {
	return uc.rate(ctx, rideID, lifecycle.ActorDriver, driverID, stars)
}

func (uc *rideUC) rate(ctx context.Context, rideID string, actor lifecycle.Actor, actorID string, stars int) (*models.Ride, error) {
	current, err := uc.load(ctx, rideID)
	if err != nil {
		return nil, err
	}

	ride := current.Clone()
	if err := lifecycle.Rate(ride, actor, actorID, stars); err != nil {
		return nil, err
	}
	if err := uc.save(ctx, ride, current.Version); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Ride rated",
		logger.RideID(ride.ID),
		logger.String("actor", string(actor)),
		logger.Int("rating", stars))

	uc.publish(ctx, ride)
	return ride, nil
}

func (uc *rideUC) load(ctx context.Context, rideID string) (*models.Ride, error) {
	if rideID == "" {
		return nil, apperror.InvalidInput("ride id is required")
	}
	// ids are uuids; anything else cannot name a stored ride
	if _, err := uuid.Parse(rideID); err != nil {
		return nil, apperror.NotFound("ride", rideID)
	}
	ctx, cancel := uc.bounded(ctx)
	defer cancel()
	ride, err := uc.repo.Get(ctx, rideID)
	if err != nil {
		return nil, apperror.Internal("get ride", err)
	}
	return ride, nil
}

func (uc *rideUC) save(ctx context.Context, ride *models.Ride, expectedVersion int64) error {
	ctx, cancel := uc.bounded(ctx)
	defer cancel()
	if err := uc.repo.Update(ctx, ride, expectedVersion); err != nil {
		return apperror.Internal("update ride", err)
	}
	return nil
}

// publish hands the snapshot to the realtime hub. Delivery is best effort:
// the mutation has already been committed.
func (uc *rideUC) publish(ctx context.Context, ride *models.Ride) {
	if uc.gw == nil {
		return
	}
	if err := uc.gw.Publish(ctx, ride); err != nil {
		logger.WarnCtx(ctx, "Failed to publish ride update",
			logger.RideID(ride.ID),
			logger.String("status", string(ride.Status)),
			logger.Err(err))
	}
}
