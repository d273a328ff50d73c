package utils

import (
	"errors"
	"math"
	"testing"

	"github.com/piresc/hamroride/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"origin", 0, 0, false},
		{"bounds", 90, -180, false},
		{"other bounds", -90, 180, false},
		{"lat too high", 90.0001, 0, true},
		{"lat too low", -91, 0, true},
		{"lng too high", 0, 180.5, true},
		{"lng too low", 0, -200, true},
		{"nan", math.NaN(), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHaversine(t *testing.T) {
	sf := GeoPoint{Latitude: 37.7749, Longitude: -122.4194}
	la := GeoPoint{Latitude: 34.0522, Longitude: -118.2437}

	assert.Equal(t, 0.0, HaversineMeters(sf, sf))
	assert.InDelta(t, 559_000, HaversineMeters(sf, la), 2_000)
	assert.InDelta(t, 347.4, HaversineMiles(sf, la), 1.5)
	assert.InDelta(t, HaversineMiles(sf, la), HaversineMiles(la, sf), 1e-9)

	// one degree of latitude
	oneDeg := HaversineMeters(GeoPoint{0, 0}, GeoPoint{1, 0})
	assert.InDelta(t, 111_195, oneDeg, 50)
}

func TestCellWithNeighbors(t *testing.T) {
	cell := EncodeCell(GeoPoint{Latitude: 37.7749, Longitude: -122.4194}, 6)
	cells := CellWithNeighbors(cell)

	require.Len(t, cells, 9)
	assert.Equal(t, cell, cells[0])
	for _, c := range cells {
		assert.Len(t, c, 6)
	}
}

func TestCellPrecisionForRadius(t *testing.T) {
	center := GeoPoint{Latitude: 37.7749, Longitude: -122.4194}

	small, ok := CellPrecisionForRadius(center, 100)
	require.True(t, ok)
	large, ok := CellPrecisionForRadius(center, 5000)
	require.True(t, ok)
	assert.Greater(t, small, large)

	t.Run("neighbourhood covers the radius", func(t *testing.T) {
		for _, radius := range []float64{150, 1000, 3000, 5000, 20000} {
			precision, ok := CellPrecisionForRadius(center, radius)
			require.True(t, ok)

			cells := map[string]bool{}
			for _, c := range CellWithNeighbors(EncodeCell(center, precision)) {
				cells[c] = true
			}

			// points on the circle at eight bearings must fall inside the neighbourhood
			for bearing := 0.0; bearing < 360; bearing += 45 {
				rad := bearing * math.Pi / 180
				dLat := radius * 0.99 * math.Cos(rad) / metersPerDegreeLat
				dLng := radius * 0.99 * math.Sin(rad) / (metersPerDegreeLat * math.Cos(center.Latitude*math.Pi/180))
				p := GeoPoint{Latitude: center.Latitude + dLat, Longitude: center.Longitude + dLng}
				assert.True(t, cells[EncodeCell(p, precision)], "radius %v bearing %v", radius, bearing)
			}
		}
	})

	t.Run("polar regions fall back to a full scan", func(t *testing.T) {
		_, ok := CellPrecisionForRadius(GeoPoint{Latitude: 89, Longitude: 0}, 1000)
		assert.False(t, ok)
	})

	t.Run("huge radius falls back to a full scan", func(t *testing.T) {
		_, ok := CellPrecisionForRadius(center, 10_000_000)
		assert.False(t, ok)
	})
}
