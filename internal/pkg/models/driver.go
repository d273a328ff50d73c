package models

import "time"

// DriverStatus represents driver availability
type DriverStatus string

const (
	DriverStatusOffline DriverStatus = "OFFLINE"
	DriverStatusOnline  DriverStatus = "ONLINE"
)

// IsValid reports whether the status is a known driver status
func (s DriverStatus) IsValid() bool {
	return s == DriverStatusOffline || s == DriverStatusOnline
}

// DefaultDriverRating is the rating of a driver nobody has rated yet
const DefaultDriverRating = 5.0

// DriverProfile represents a driver's vehicle details, availability and rating
type DriverProfile struct {
	UserID    string       `json:"driver_id" db:"user_id"`
	Status    DriverStatus `json:"status" db:"status"`
	Make      string       `json:"make" db:"make"`
	Model     string       `json:"model" db:"model"`
	Plate     string       `json:"plate" db:"plate"`
	Category  string       `json:"category" db:"category"`
	Rating    float64      `json:"rating" db:"rating"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// ProfileUpsertRequest carries vehicle details for a driver profile
type ProfileUpsertRequest struct {
	Make     string `json:"make"`
	Model    string `json:"model"`
	Plate    string `json:"plate"`
	Category string `json:"category"`
}

// StatusRequest changes a driver's availability
type StatusRequest struct {
	Status DriverStatus `json:"status"`
}

// LocationRequest is a driver location report
type LocationRequest struct {
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lng"`
}

// DriverLocation is a location report as carried over NATS
type DriverLocation struct {
	DriverID  string    `json:"driver_id"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// NearbyDriver is a single radius query result
type NearbyDriver struct {
	DriverID       string  `json:"driver_id"`
	DistanceMeters float64 `json:"distance_meters"`
}
