package geoindex

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/piresc/hamroride/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndex_QueryRadius(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "far", 27.730, 85.320))
	require.NoError(t, idx.Upsert(ctx, "near", 27.701, 85.321))
	require.NoError(t, idx.Upsert(ctx, "mid", 27.710, 85.320))
	require.NoError(t, idx.Upsert(ctx, "other-city", 40.71, -74.00))

	got, err := idx.QueryRadius(ctx, 27.70, 85.32, 5000, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"near", "mid", "far"}, []string{got[0].DriverID, got[1].DriverID, got[2].DriverID})

	want := utils.HaversineMeters(utils.GeoPoint{Latitude: 27.70, Longitude: 85.32}, utils.GeoPoint{Latitude: 27.701, Longitude: 85.321})
	assert.InDelta(t, want, got[0].DistanceMeters, 1e-6)

	limited, err := idx.QueryRadius(ctx, 27.70, 85.32, 5000, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMemoryIndex_EmptyResultIsNotNil(t *testing.T) {
	got, err := NewMemoryIndex().QueryRadius(context.Background(), 0, 0, 1000, 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMemoryIndex_UpsertMovesAndRemoveDrops(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "d1", 27.70, 85.32))
	require.NoError(t, idx.Upsert(ctx, "d1", 27.80, 85.40))
	assert.Equal(t, 1, idx.Len())

	got, err := idx.QueryRadius(ctx, 27.70, 85.32, 500, 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = idx.QueryRadius(ctx, 27.80, 85.40, 500, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, idx.Remove(ctx, "d1"))
	require.NoError(t, idx.Remove(ctx, "d1"))
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.buckets)

	got, err = idx.QueryRadius(ctx, 27.80, 85.40, 500, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// bucketed lookups must agree with a brute force scan
func TestMemoryIndex_MatchesBruteForce(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	points := make(map[string]utils.GeoPoint)
	for i := 0; i < 400; i++ {
		p := utils.GeoPoint{
			Latitude:  27.70 + (rng.Float64()-0.5)*0.2,
			Longitude: 85.32 + (rng.Float64()-0.5)*0.2,
		}
		id := fmt.Sprintf("d%03d", i)
		points[id] = p
		require.NoError(t, idx.Upsert(ctx, id, p.Latitude, p.Longitude))
	}

	center := utils.GeoPoint{Latitude: 27.70, Longitude: 85.32}
	for _, radius := range []float64{50, 300, 1200, 3000, 5000, 20000} {
		var want []string
		for id, p := range points {
			if utils.HaversineMeters(center, p) <= radius {
				want = append(want, id)
			}
		}
		sort.Strings(want)

		got, err := idx.QueryRadius(ctx, center.Latitude, center.Longitude, radius, 0)
		require.NoError(t, err)
		ids := make([]string, 0, len(got))
		for i, n := range got {
			ids = append(ids, n.DriverID)
			if i > 0 {
				assert.LessOrEqual(t, got[i-1].DistanceMeters, n.DistanceMeters)
			}
		}
		sort.Strings(ids)
		assert.Equal(t, want, ids, "radius %v", radius)
	}
}

func TestMemoryIndex_PolarFallsBackToScan(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "pole", 89.9, 10))
	require.NoError(t, idx.Upsert(ctx, "across", 89.9, -170))

	got, err := idx.QueryRadius(ctx, 89.95, 0, 50000, 5)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMemoryIndex_ConcurrentAccess(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := fmt.Sprintf("d%d", w)
			for i := 0; i < 200; i++ {
				lat := 27.70 + float64(i%10)*0.001
				assert.NoError(t, idx.Upsert(ctx, id, lat, 85.32))
				got, err := idx.QueryRadius(ctx, 27.70, 85.32, 3000, 5)
				assert.NoError(t, err)
				for _, n := range got {
					assert.LessOrEqual(t, n.DistanceMeters, 3000.0)
				}
				if i%7 == 0 {
					assert.NoError(t, idx.Remove(ctx, id))
				}
			}
		}(w)
	}
	wg.Wait()
}

func TestNew(t *testing.T) {
	idx, err := New(BackendMemory, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryIndex{}, idx)

	_, err = New(BackendRedis, nil)
	assert.Error(t, err)

	_, err = New("cassandra", nil)
	assert.Error(t, err)
}
