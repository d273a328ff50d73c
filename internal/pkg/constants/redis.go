package constants

// Redis key formats
const (
	// Drivers
	KeyDriverGeo = "drivers:online" // GEO set of online driver positions

	// Rides
	KeyDispatchClaim = "dispatch:claim:%s" // Format: dispatch:claim:{driver_id}
	KeyRatingLock    = "rating:lock:%s"    // Format: rating:lock:{driver_id}
)

// Redis GEO units
const (
	GeoUnitMeters = "m"
)
