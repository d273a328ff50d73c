package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/piresc/hamroride/internal/pkg/apperror"
	"github.com/piresc/hamroride/internal/pkg/database"
	"github.com/piresc/hamroride/internal/pkg/lock"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/piresc/hamroride/services/drivers/geoindex"
	"github.com/piresc/hamroride/services/rides"
	"github.com/stretchr/testify/require"
)

func testConfig() *models.Config {
	return &models.Config{
		Pricing: models.PricingConfig{BaseFare: 2.0, PerMile: 1.25, MinimumFare: 5.0},
		Dispatch: models.DispatchConfig{
			SearchRadiusMeters: 5000,
			CandidateLimit:     5,
			ClaimTTL:           5 * time.Second,
		},
		Rides: models.RidesConfig{
			StoreTimeout:    time.Second,
			RatingLockTTL:   2 * time.Second,
			RatingLockTries: 50,
		},
	}
}

// memRideRepo is a versioned in-memory RideRepo with the same conflict
// semantics as the Postgres repository
type memRideRepo struct {
	mu    sync.Mutex
	rides map[string]*models.Ride
}

func newMemRideRepo() *memRideRepo {
	return &memRideRepo{rides: make(map[string]*models.Ride)}
}

func (r *memRideRepo) Create(_ context.Context, ride *models.Ride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rides[ride.ID]; ok {
		return fmt.Errorf("duplicate ride %s", ride.ID)
	}
	r.rides[ride.ID] = ride.Clone()
	return nil
}

func (r *memRideRepo) Get(_ context.Context, id string) (*models.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ride, ok := r.rides[id]
	if !ok {
		return nil, apperror.NotFound("ride", id)
	}
	return ride.Clone(), nil
}

func (r *memRideRepo) Update(_ context.Context, ride *models.Ride, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rides[ride.ID]
	if !ok {
		return apperror.NotFound("ride", ride.ID)
	}
	if stored.Version != expectedVersion {
		return apperror.Conflict("stale ride")
	}
	c := ride.Clone()
	c.Version = expectedVersion + 1
	r.rides[ride.ID] = c
	ride.Version = c.Version
	return nil
}

func (r *memRideRepo) filter(keep func(*models.Ride) bool) []*models.Ride {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Ride{}
	for _, ride := range r.rides {
		if keep(ride) {
			out = append(out, ride.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memRideRepo) ListByPassenger(_ context.Context, passengerID string) ([]*models.Ride, error) {
	return r.filter(func(ride *models.Ride) bool { return ride.PassengerID == passengerID }), nil
}

func (r *memRideRepo) ListByDriver(_ context.Context, driverID string) ([]*models.Ride, error) {
	return r.filter(func(ride *models.Ride) bool { return ride.IsDriver(driverID) }), nil
}

func (r *memRideRepo) ListActiveByDriver(_ context.Context, driverID string) ([]*models.Ride, error) {
	return r.filter(func(ride *models.Ride) bool { return ride.IsDriver(driverID) && !ride.Status.IsTerminal() }), nil
}

func (r *memRideRepo) CountActiveByDriver(ctx context.Context, driverID string) (int, error) {
	list, _ := r.ListActiveByDriver(ctx, driverID)
	return len(list), nil
}

func (r *memRideRepo) ListDriverRatings(_ context.Context, driverID string) ([]int, error) {
	var out []int
	for _, ride := range r.filter(func(ride *models.Ride) bool { return ride.IsDriver(driverID) && ride.DriverRating != nil }) {
		out = append(out, *ride.DriverRating)
	}
	return out, nil
}

func (r *memRideRepo) put(ride *models.Ride) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rides[ride.ID] = ride.Clone()
}

func (r *memRideRepo) all() []*models.Ride {
	return r.filter(func(*models.Ride) bool { return true })
}

type recordingGW struct {
	mu      sync.Mutex
	updates []*models.Ride
	err     error
}

func (g *recordingGW) Publish(_ context.Context, ride *models.Ride) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updates = append(g.updates, ride.Clone())
	return g.err
}

func (g *recordingGW) published() []*models.Ride {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*models.Ride(nil), g.updates...)
}

type memDriverStore struct {
	mu       sync.Mutex
	ratings  map[string]float64
	statuses map[string]models.DriverStatus
	writes   int
}

func newMemDriverStore() *memDriverStore {
	return &memDriverStore{
		ratings:  make(map[string]float64),
		statuses: make(map[string]models.DriverStatus),
	}
}

func (s *memDriverStore) UpdateRating(_ context.Context, userID string, rating float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings[userID] = rating
	s.writes++
	return nil
}

func (s *memDriverStore) GetStatuses(_ context.Context, userIDs []string) (map[string]models.DriverStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.DriverStatus, len(userIDs))
	for _, id := range userIDs {
		if st, ok := s.statuses[id]; ok {
			out[id] = st
		}
	}
	return out, nil
}

func (s *memDriverStore) setStatus(userID string, status models.DriverStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[userID] = status
}

func (s *memDriverStore) get(userID string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.ratings[userID]
	return v, ok
}

type testEnv struct {
	uc     rides.RideUC
	repo   *memRideRepo
	gw     *recordingGW
	store  *memDriverStore
	geo    *geoindex.MemoryIndex
	mr     *miniredis.Miniredis
	locker *lock.RedisLocker
}

// newTestEnv wires the use case to in-memory stores, a memory geo index and
// a Redis locker on miniredis
func newTestEnv(t *testing.T) *testEnv {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	locker := lock.NewRedisLocker(database.NewRedisClientFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})))
	env := &testEnv{
		repo:   newMemRideRepo(),
		gw:     &recordingGW{},
		store:  newMemDriverStore(),
		geo:    geoindex.NewMemoryIndex(),
		mr:     mr,
		locker: locker,
	}
	env.uc, err = NewRideUC(testConfig(), env.repo, env.geo, locker, env.store, env.gw)
	require.NoError(t, err)
	return env
}

// goOnline marks the driver ONLINE and indexes its position
func (e *testEnv) goOnline(t *testing.T, driverID string, lat, lng float64) {
	t.Helper()
	e.store.setStatus(driverID, models.DriverStatusOnline)
	require.NoError(t, e.geo.Upsert(context.Background(), driverID, lat, lng))
}

// rideID derives a stable uuid from a short test name
func rideID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func ptr[T any](v T) *T {
	return &v
}

func rideAt(id, passengerID string, driverID *string, status models.RideStatus) *models.Ride {
	now := models.Now()
	return &models.Ride{
		ID:            id,
		PassengerID:   passengerID,
		DriverID:      driverID,
		PickupLat:     27.70,
		PickupLng:     85.32,
		DropoffLat:    27.72,
		DropoffLng:    85.30,
		Status:        status,
		DistanceMiles: 1.85,
		EstimatedFare: 5.0,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
