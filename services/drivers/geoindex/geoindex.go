// Package geoindex holds the GeoIndex implementations of the drivers service
package geoindex

import (
	"fmt"

	"github.com/piresc/hamroride/internal/pkg/database"
	"github.com/piresc/hamroride/services/drivers"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// New builds the index selected by backend. The memory index only sees
// updates made in this process.
func New(backend string, redis *database.RedisClient) (drivers.GeoIndex, error) {
	switch backend {
	case "", BackendRedis:
		if redis == nil {
			return nil, fmt.Errorf("redis geo index requires a redis client")
		}
		return NewRedisIndex(redis), nil
	case BackendMemory:
		return NewMemoryIndex(), nil
	default:
		return nil, fmt.Errorf("unknown geo index backend %q", backend)
	}
}
