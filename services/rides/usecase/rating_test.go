package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/piresc/hamroride/internal/pkg/apperror"
	"github.com/piresc/hamroride/internal/pkg/lock"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/piresc/hamroride/services/rides/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"single", []int{4}, 4.0},
		{"half", []int{4, 5}, 4.5},
		{"rounds down", []int{5, 4, 4}, 4.3},
		{"rounds up", []int{4, 5, 5}, 4.7},
		{"half up", []int{3, 4, 4, 4}, 3.8},
		{"all ones", []int{1, 1, 1}, 1.0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AverageRating(tt.ratings))
		})
	}
}

func newMockAggregator(t *testing.T, tries int) (*RatingAggregator, *mocks.MockRideRepo, *mocks.MockDriverRatingStore, *mocks.MockLocker) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	cfg := testConfig()
	cfg.Rides.RatingLockTries = tries
	repo := mocks.NewMockRideRepo(ctrl)
	store := mocks.NewMockDriverRatingStore(ctrl)
	locker := mocks.NewMockLocker(ctrl)
	return NewRatingAggregator(cfg, repo, store, locker), repo, store, locker
}

func TestRecompute(t *testing.T) {
	lease := &lock.Lease{Key: "rating:lock:d1", Token: "t1"}

	t.Run("writes rounded mean under the lock", func(t *testing.T) {
		agg, repo, store, locker := newMockAggregator(t, 3)

		gomock.InOrder(
			locker.EXPECT().TryAcquire(gomock.Any(), "rating:lock:d1", gomock.Any()).Return(lease, true, nil),
			repo.EXPECT().ListDriverRatings(gomock.Any(), "d1").Return([]int{5, 4, 4}, nil),
			store.EXPECT().UpdateRating(gomock.Any(), "d1", 4.3).Return(nil),
			locker.EXPECT().Release(gomock.Any(), lease).Return(nil),
		)

		assert.NoError(t, agg.Recompute(context.Background(), "d1"))
	})

	t.Run("no ratings leaves the stored rating", func(t *testing.T) {
		agg, repo, _, locker := newMockAggregator(t, 3)

		locker.EXPECT().TryAcquire(gomock.Any(), "rating:lock:d1", gomock.Any()).Return(lease, true, nil)
		repo.EXPECT().ListDriverRatings(gomock.Any(), "d1").Return([]int{}, nil)
		locker.EXPECT().Release(gomock.Any(), lease).Return(nil)

		assert.NoError(t, agg.Recompute(context.Background(), "d1"))
	})

	t.Run("retries a held lock", func(t *testing.T) {
		agg, repo, store, locker := newMockAggregator(t, 3)

		gomock.InOrder(
			locker.EXPECT().TryAcquire(gomock.Any(), "rating:lock:d1", gomock.Any()).Return(nil, false, nil).Times(2),
			locker.EXPECT().TryAcquire(gomock.Any(), "rating:lock:d1", gomock.Any()).Return(lease, true, nil),
		)
		repo.EXPECT().ListDriverRatings(gomock.Any(), "d1").Return([]int{5}, nil)
		store.EXPECT().UpdateRating(gomock.Any(), "d1", 5.0).Return(nil)
		locker.EXPECT().Release(gomock.Any(), lease).Return(nil)

		assert.NoError(t, agg.Recompute(context.Background(), "d1"))
	})

	t.Run("lock never free is a conflict", func(t *testing.T) {
		agg, _, _, locker := newMockAggregator(t, 2)

		locker.EXPECT().TryAcquire(gomock.Any(), "rating:lock:d1", gomock.Any()).Return(nil, false, nil).Times(2)

		err := agg.Recompute(context.Background(), "d1")
		assert.True(t, errors.Is(err, apperror.ErrConflict), "got %v", err)
	})

	t.Run("redis failure is internal", func(t *testing.T) {
		agg, _, _, locker := newMockAggregator(t, 1)

		locker.EXPECT().TryAcquire(gomock.Any(), "rating:lock:d1", gomock.Any()).Return(nil, false, errors.New("dial tcp: refused"))

		err := agg.Recompute(context.Background(), "d1")
		assert.True(t, errors.Is(err, apperror.ErrInternal), "got %v", err)
	})

	t.Run("store failure still releases the lock", func(t *testing.T) {
		agg, repo, store, locker := newMockAggregator(t, 1)

		locker.EXPECT().TryAcquire(gomock.Any(), "rating:lock:d1", gomock.Any()).Return(lease, true, nil)
		repo.EXPECT().ListDriverRatings(gomock.Any(), "d1").Return([]int{3}, nil)
		store.EXPECT().UpdateRating(gomock.Any(), "d1", 3.0).Return(errors.New("connection reset"))
		locker.EXPECT().Release(gomock.Any(), lease).Return(nil)

		err := agg.Recompute(context.Background(), "d1")
		assert.True(t, errors.Is(err, apperror.ErrInternal))
	})
}

func TestRateDriver_ScenarioD_LastRatingWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.repo.put(rideAt(rideID("r1"), "p1", ptr("d1"), models.RideStatusCompleted))

	_, err := env.uc.RateDriver(ctx, "p1", rideID("r1"), 4)
	require.NoError(t, err)
	avg, ok := env.store.get("d1")
	require.True(t, ok)
	assert.Equal(t, 4.0, avg)

	ride, err := env.uc.RateDriver(ctx, "p1", rideID("r1"), 5)
	require.NoError(t, err)
	require.NotNil(t, ride.DriverRating)
	assert.Equal(t, 5, *ride.DriverRating)

	stored, err := env.repo.Get(ctx, rideID("r1"))
	require.NoError(t, err)
	assert.Equal(t, 5, *stored.DriverRating)

	// the overwritten 4 no longer counts
	avg, _ = env.store.get("d1")
	assert.Equal(t, 5.0, avg)
	assert.False(t, env.mr.Exists("rating:lock:d1"))
}

func TestRateDriver_AverageAcrossRides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i, stars := range []int{5, 4, 4} {
		id := rideID(fmt.Sprintf("r%d", i))
		env.repo.put(rideAt(id, "p1", ptr("d1"), models.RideStatusCompleted))
		_, err := env.uc.RateDriver(ctx, "p1", id, stars)
		require.NoError(t, err)
	}

	avg, _ := env.store.get("d1")
	assert.Equal(t, 4.3, avg)
}

func TestRateDriver_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.repo.put(rideAt(rideID("done"), "p1", ptr("d1"), models.RideStatusCompleted))
	env.repo.put(rideAt(rideID("moving"), "p1", ptr("d1"), models.RideStatusInProgress))

	tests := []struct {
		name    string
		userID  string
		rideID  string
		stars   int
		wantErr error
	}{
		{"not completed", "p1", rideID("moving"), 5, apperror.ErrInvalidInput},
		{"zero stars", "p1", rideID("done"), 0, apperror.ErrInvalidInput},
		{"six stars", "p1", rideID("done"), 6, apperror.ErrInvalidInput},
		{"other passenger", "p2", rideID("done"), 5, apperror.ErrForbidden},
		{"the driver", "d1", rideID("done"), 5, apperror.ErrForbidden},
		{"unknown ride", "p1", rideID("missing"), 5, apperror.ErrNotFound},
		{"malformed ride id", "p1", "done", 5, apperror.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.uc.RateDriver(ctx, tt.userID, tt.rideID, tt.stars)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	_, ok := env.store.get("d1")
	assert.False(t, ok)
	assert.Empty(t, env.gw.published())
}

func TestRateDriver_ConcurrentRatingsAllCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stars := []int{1, 2, 3, 4, 5, 5, 4, 3, 2, 1}
	for i := range stars {
		env.repo.put(rideAt(rideID(fmt.Sprintf("r%d", i)), fmt.Sprintf("p%d", i), ptr("d1"), models.RideStatusCompleted))
	}

	var wg sync.WaitGroup
	errs := make([]error, len(stars))
	for i, s := range stars {
		wg.Add(1)
		go func(i, s int) {
			defer wg.Done()
			_, errs[i] = env.uc.RateDriver(ctx, fmt.Sprintf("p%d", i), rideID(fmt.Sprintf("r%d", i)), s)
		}(i, s)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	avg, ok := env.store.get("d1")
	require.True(t, ok)
	assert.Equal(t, 3.0, avg)
	assert.Equal(t, len(stars), env.store.writes)
}
