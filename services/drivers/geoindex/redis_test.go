package geoindex

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/piresc/hamroride/internal/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisIndex(t *testing.T) (*miniredis.Miniredis, *RedisIndex) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := database.NewRedisClientFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return mr, NewRedisIndex(client)
}

func TestRedisIndex_QueryRadius(t *testing.T) {
	_, idx := setupRedisIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "far", 27.730, 85.320))
	require.NoError(t, idx.Upsert(ctx, "near", 27.701, 85.321))
	require.NoError(t, idx.Upsert(ctx, "mid", 27.710, 85.320))

	got, err := idx.QueryRadius(ctx, 27.70, 85.32, 5000, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "near", got[0].DriverID)
	assert.Equal(t, "mid", got[1].DriverID)
	assert.Equal(t, "far", got[2].DriverID)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].DistanceMeters, got[i].DistanceMeters)
	}
	// Redis uses its own earth radius, close enough to haversine
	assert.InDelta(t, 148, got[0].DistanceMeters, 5)

	limited, err := idx.QueryRadius(ctx, 27.70, 85.32, 5000, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "near", limited[0].DriverID)

	small, err := idx.QueryRadius(ctx, 27.70, 85.32, 1000, 10)
	require.NoError(t, err)
	assert.Len(t, small, 1)
}

func TestRedisIndex_UpsertMovesDriver(t *testing.T) {
	_, idx := setupRedisIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "d1", 27.70, 85.32))
	require.NoError(t, idx.Upsert(ctx, "d1", 40.0, -70.0))

	got, err := idx.QueryRadius(ctx, 27.70, 85.32, 5000, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = idx.QueryRadius(ctx, 40.0, -70.0, 100, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d1", got[0].DriverID)
}

func TestRedisIndex_Remove(t *testing.T) {
	_, idx := setupRedisIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "d1", 27.70, 85.32))
	require.NoError(t, idx.Remove(ctx, "d1"))
	require.NoError(t, idx.Remove(ctx, "never-indexed"))

	got, err := idx.QueryRadius(ctx, 27.70, 85.32, 5000, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisIndex_Unavailable(t *testing.T) {
	mr, idx := setupRedisIndex(t)
	mr.Close()

	_, err := idx.QueryRadius(context.Background(), 27.70, 85.32, 5000, 10)
	assert.Error(t, err)
	assert.Error(t, idx.Upsert(context.Background(), "d1", 27.70, 85.32))
}
