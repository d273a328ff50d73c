// Package pricing estimates ride fares from trip distance
package pricing

import (
	"math"

	"github.com/piresc/hamroride/internal/pkg/apperror"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/piresc/hamroride/internal/utils"
)

// Estimator applies the fare formula max(base + perMile*miles, minimum)
type Estimator struct {
	BaseFare    float64
	PerMile     float64
	MinimumFare float64
}

// NewEstimator builds an estimator from configuration
func NewEstimator(cfg models.PricingConfig) (*Estimator, error) {
	e := &Estimator{
		BaseFare:    cfg.BaseFare,
		PerMile:     cfg.PerMile,
		MinimumFare: cfg.MinimumFare,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate rejects negative or non-finite coefficients
func (e *Estimator) Validate() error {
	for _, v := range []float64{e.BaseFare, e.PerMile, e.MinimumFare} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return apperror.InvalidInput("fare coefficients must be non-negative numbers")
		}
	}
	return nil
}

// DistanceMiles returns the great-circle trip distance
func DistanceMiles(pickup, dropoff utils.GeoPoint) float64 {
	return utils.HaversineMiles(pickup, dropoff)
}

// Estimate returns the fare for a trip of the given length
func (e *Estimator) Estimate(miles float64) float64 {
	return math.Max(e.BaseFare+e.PerMile*miles, e.MinimumFare)
}

// Quote computes distance and estimated fare for a trip
func (e *Estimator) Quote(pickup, dropoff utils.GeoPoint) (miles, fare float64) {
	miles = DistanceMiles(pickup, dropoff)
	return miles, e.Estimate(miles)
}
