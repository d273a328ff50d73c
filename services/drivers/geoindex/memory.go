package geoindex

import (
	"context"
	"sort"
	"sync"

	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/piresc/hamroride/internal/utils"
	"github.com/piresc/hamroride/services/drivers"
)

type memoryEntry struct {
	point utils.GeoPoint
	cell  string // geohash at utils.MaxCellPrecision
}

// MemoryIndex is an in-process geo index bucketed by geohash cell.
// Each driver is registered under every prefix of its cell so a query at
// any precision is a plain map lookup.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	buckets map[string]map[string]struct{}
}

// NewMemoryIndex creates an empty in-memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		entries: make(map[string]memoryEntry),
		buckets: make(map[string]map[string]struct{}),
	}
}

var _ drivers.GeoIndex = (*MemoryIndex)(nil)

// Upsert adds the driver or moves it to the new position
func (i *MemoryIndex) Upsert(_ context.Context, driverID string, lat, lng float64) error {
	p := utils.GeoPoint{Latitude: lat, Longitude: lng}
	cell := utils.EncodeCell(p, utils.MaxCellPrecision)

	i.mu.Lock()
	defer i.mu.Unlock()
	if old, ok := i.entries[driverID]; ok {
		i.unbucket(driverID, old.cell)
	}
	i.entries[driverID] = memoryEntry{point: p, cell: cell}
	for n := 1; n <= len(cell); n++ {
		prefix := cell[:n]
		b, ok := i.buckets[prefix]
		if !ok {
			b = make(map[string]struct{})
			i.buckets[prefix] = b
		}
		b[driverID] = struct{}{}
	}
	return nil
}

// Remove drops the driver from the index; removing an absent driver is a no-op
func (i *MemoryIndex) Remove(_ context.Context, driverID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if old, ok := i.entries[driverID]; ok {
		i.unbucket(driverID, old.cell)
		delete(i.entries, driverID)
	}
	return nil
}

func (i *MemoryIndex) unbucket(driverID, cell string) {
	for n := 1; n <= len(cell); n++ {
		prefix := cell[:n]
		if b, ok := i.buckets[prefix]; ok {
			delete(b, driverID)
			if len(b) == 0 {
				delete(i.buckets, prefix)
			}
		}
	}
}

// QueryRadius scans the centre cell and its neighbours at the finest
// precision covering the radius, or everything when none does
func (i *MemoryIndex) QueryRadius(_ context.Context, lat, lng, radiusMeters float64, limit int) ([]models.NearbyDriver, error) {
	center := utils.GeoPoint{Latitude: lat, Longitude: lng}

	i.mu.RLock()
	defer i.mu.RUnlock()

	var out []models.NearbyDriver
	consider := func(id string) {
		d := utils.HaversineMeters(center, i.entries[id].point)
		if d <= radiusMeters {
			out = append(out, models.NearbyDriver{DriverID: id, DistanceMeters: d})
		}
	}

	if precision, ok := utils.CellPrecisionForRadius(center, radiusMeters); ok {
		for _, cell := range utils.CellWithNeighbors(utils.EncodeCell(center, precision)) {
			for id := range i.buckets[cell] {
				consider(id)
			}
		}
	} else {
		for id := range i.entries {
			consider(id)
		}
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].DistanceMeters != out[b].DistanceMeters {
			return out[a].DistanceMeters < out[b].DistanceMeters
		}
		return out[a].DriverID < out[b].DriverID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []models.NearbyDriver{}
	}
	return out, nil
}

// Len returns the number of indexed drivers
func (i *MemoryIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}
