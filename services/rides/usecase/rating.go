package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/piresc/hamroride/internal/pkg/apperror"
	"github.com/piresc/hamroride/internal/pkg/constants"
	"github.com/piresc/hamroride/internal/pkg/lock"
	"github.com/piresc/hamroride/internal/pkg/logger"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/piresc/hamroride/internal/pkg/retry"
	"github.com/piresc/hamroride/services/rides"
)

const (
	fallbackRatingLockTTL   = 5 * time.Second
	fallbackRatingLockTries = 10
)

var errLockBusy = errors.New("lock held by another worker")

// RatingAggregator recomputes a driver's average rating under a per-driver
// lock so concurrent ratings never overwrite each other's result
type RatingAggregator struct {
	repo         rides.RideRepo
	store        rides.DriverRatingStore
	locker       rides.Locker
	lockTTL      time.Duration
	storeTimeout time.Duration
	retrier      *retry.Retrier
}

// NewRatingAggregator creates the aggregator
func NewRatingAggregator(cfg *models.Config, repo rides.RideRepo, store rides.DriverRatingStore, locker rides.Locker) *RatingAggregator {
	ttl := cfg.Rides.RatingLockTTL
	if ttl <= 0 {
		ttl = fallbackRatingLockTTL
	}
	tries := cfg.Rides.RatingLockTries
	if tries <= 0 {
		tries = fallbackRatingLockTries
	}
	timeout := cfg.Rides.StoreTimeout
	if timeout <= 0 {
		timeout = fallbackStoreTimeout
	}

	return &RatingAggregator{
		repo:         repo,
		store:        store,
		locker:       locker,
		lockTTL:      ttl,
		storeTimeout: timeout,
		retrier: retry.New(retry.Config{
			MaxRetries: tries - 1,
			BaseDelay:  10 * time.Millisecond,
			MaxDelay:   250 * time.Millisecond,
			Multiplier: 2,
			Jitter:     true,
		}, logger.GetGlobalLogger()),
	}
}

// Recompute writes the rounded mean of every rating the driver has received.
// A driver with no ratings keeps the stored rating.
func (a *RatingAggregator) Recompute(ctx context.Context, driverID string) error {
	lease, err := a.acquire(ctx, driverID)
	if err != nil {
		return err
	}
	defer func() {
		// the caller's context may already be done
		releaseCtx, cancel := context.WithTimeout(context.Background(), a.storeTimeout)
		defer cancel()
		if err := a.locker.Release(releaseCtx, lease); err != nil {
			logger.Warn("Failed to release rating lock", logger.DriverID(driverID), logger.Err(err))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, a.storeTimeout)
	defer cancel()

	ratings, err := a.repo.ListDriverRatings(ctx, driverID)
	if err != nil {
		return apperror.Internal("list driver ratings", err)
	}
	if len(ratings) == 0 {
		return nil
	}

	avg := AverageRating(ratings)
	if err := a.store.UpdateRating(ctx, driverID, avg); err != nil {
		return apperror.Internal("update driver rating", err)
	}

	logger.InfoCtx(ctx, "Driver rating recomputed",
		logger.DriverID(driverID),
		logger.Int("ratings", len(ratings)),
		logger.Float64("rating", avg))
	return nil
}

func (a *RatingAggregator) acquire(ctx context.Context, driverID string) (*lock.Lease, error) {
	key := fmt.Sprintf(constants.KeyRatingLock, driverID)

	var lease *lock.Lease
	err := a.retrier.Execute(ctx, func(ctx context.Context) error {
		actx, cancel := context.WithTimeout(ctx, a.storeTimeout)
		defer cancel()
		l, ok, err := a.locker.TryAcquire(actx, key, a.lockTTL)
		if err != nil {
			return err
		}
		if !ok {
			return errLockBusy
		}
		lease = l
		return nil
	})
	if err != nil {
		if errors.Is(err, errLockBusy) {
			return nil, apperror.Conflict("driver rating is being updated, try again")
		}
		return nil, apperror.Internal("acquire rating lock", err)
	}
	return lease, nil
}

// AverageRating is the mean rounded half-up to one decimal
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(len(ratings))
	return math.Floor(mean*10+0.5) / 10
}
