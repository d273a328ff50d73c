package utils

import (
	"fmt"
	"math"

	"github.com/mmcloughlin/geohash"
	"github.com/piresc/hamroride/internal/pkg/apperror"
)

const (
	// EarthRadiusMeters is the mean earth radius used for meter distances
	EarthRadiusMeters = 6371000.0
	// EarthRadiusMiles is the radius used when pricing a trip
	EarthRadiusMiles = 3958.8

	metersPerDegreeLat = 111320.0

	// MaxCellPrecision is the finest geohash precision used for bucketing
	MaxCellPrecision uint = 9
	// polarCutoff marks the latitude beyond which cell neighbourhoods stop being reliable
	polarCutoff = 85.0
)

// GeoPoint is a WGS84 coordinate in degrees
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// ValidateCoordinates rejects values outside lat [-90, 90] and lng [-180, 180]
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return apperror.InvalidInput("coordinates must be numbers")
	}
	if lat < -90 || lat > 90 {
		return apperror.InvalidInput(fmt.Sprintf("latitude %v out of range", lat))
	}
	if lng < -180 || lng > 180 {
		return apperror.InvalidInput(fmt.Sprintf("longitude %v out of range", lng))
	}
	return nil
}

// centralAngle returns the haversine central angle between two points in radians
func centralAngle(a, b GeoPoint) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	if h > 1 {
		h = 1
	}
	return 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// HaversineMeters returns the great-circle distance in meters
func HaversineMeters(a, b GeoPoint) float64 {
	return EarthRadiusMeters * centralAngle(a, b)
}

// HaversineMiles returns the great-circle distance in miles
func HaversineMiles(a, b GeoPoint) float64 {
	return EarthRadiusMiles * centralAngle(a, b)
}

// EncodeCell returns the geohash cell containing p at the given precision
func EncodeCell(p GeoPoint, precision uint) string {
	return geohash.EncodeWithPrecision(p.Latitude, p.Longitude, precision)
}

// CellWithNeighbors returns the cell followed by its eight neighbours
func CellWithNeighbors(cell string) []string {
	cells := make([]string, 0, 9)
	cells = append(cells, cell)
	seen := map[string]bool{cell: true}
	for _, n := range geohash.Neighbors(cell) {
		if !seen[n] {
			seen[n] = true
			cells = append(cells, n)
		}
	}
	return cells
}

// CellPrecisionForRadius picks the finest precision whose cell around p is at
// least radiusMeters tall and wide, so the 3x3 neighbourhood covers the
// search circle. ok is false when no precision qualifies and the caller must
// scan everything.
func CellPrecisionForRadius(p GeoPoint, radiusMeters float64) (uint, bool) {
	if radiusMeters <= 0 {
		return MaxCellPrecision, true
	}
	if math.Abs(p.Latitude) > polarCutoff {
		return 0, false
	}
	radiusDeg := radiusMeters / metersPerDegreeLat

	for precision := MaxCellPrecision; precision >= 1; precision-- {
		box := geohash.BoundingBox(EncodeCell(p, precision))
		height := (box.MaxLat - box.MinLat) * metersPerDegreeLat

		// width shrinks toward the pole, measure it at the worst latitude the search can reach
		worstLat := math.Max(math.Abs(box.MinLat), math.Abs(box.MaxLat)) + radiusDeg
		if worstLat >= 90 {
			return 0, false
		}
		width := (box.MaxLng - box.MinLng) * metersPerDegreeLat * math.Cos(worstLat*math.Pi/180)

		if height >= radiusMeters && width >= radiusMeters {
			return precision, true
		}
	}
	return 0, false
}
