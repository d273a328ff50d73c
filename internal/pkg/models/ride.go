package models

import (
	"time"
)

// RideStatus represents the status of a ride
type RideStatus string

const (
	RideStatusRequested            RideStatus = "REQUESTED"
	RideStatusDriverAssigned       RideStatus = "DRIVER_ASSIGNED"
	RideStatusDriverAccepted       RideStatus = "DRIVER_ACCEPTED"
	RideStatusDriverArriving       RideStatus = "DRIVER_ARRIVING"
	RideStatusInProgress           RideStatus = "IN_PROGRESS"
	RideStatusCompleted            RideStatus = "COMPLETED"
	RideStatusCancelledByPassenger RideStatus = "CANCELLED_BY_PASSENGER"
	RideStatusCancelledByDriver    RideStatus = "CANCELLED_BY_DRIVER"
	RideStatusCancelledSystem      RideStatus = "CANCELLED_SYSTEM"
)

// AllRideStatuses lists every ride status in lifecycle order
var AllRideStatuses = []RideStatus{
	RideStatusRequested,
	RideStatusDriverAssigned,
	RideStatusDriverAccepted,
	RideStatusDriverArriving,
	RideStatusInProgress,
	RideStatusCompleted,
	RideStatusCancelledByPassenger,
	RideStatusCancelledByDriver,
	RideStatusCancelledSystem,
}

// IsTerminal reports whether no further transition is permitted from the status
func (s RideStatus) IsTerminal() bool {
	switch s {
	case RideStatusCompleted, RideStatusCancelledByPassenger, RideStatusCancelledByDriver, RideStatusCancelledSystem:
		return true
	}
	return false
}

// Ride represents a ride record
type Ride struct {
	ID              string     `json:"id" db:"id"`
	PassengerID     string     `json:"passenger_id" db:"passenger_id"`
	DriverID        *string    `json:"driver_id" db:"driver_id"`
	PickupLat       float64    `json:"pickup_lat" db:"pickup_lat"`
	PickupLng       float64    `json:"pickup_lng" db:"pickup_lng"`
	PickupAddress   *string    `json:"pickup_address,omitempty" db:"pickup_address"`
	DropoffLat      float64    `json:"dropoff_lat" db:"dropoff_lat"`
	DropoffLng      float64    `json:"dropoff_lng" db:"dropoff_lng"`
	DropoffAddress  *string    `json:"dropoff_address,omitempty" db:"dropoff_address"`
	Status          RideStatus `json:"status" db:"status"`
	DistanceMiles   float64    `json:"distance_miles" db:"distance_miles"`
	EstimatedFare   float64    `json:"estimated_fare" db:"estimated_fare"`
	FinalFare       *float64   `json:"final_fare" db:"final_fare"`
	DriverRating    *int       `json:"driver_rating" db:"driver_rating"`
	PassengerRating *int       `json:"passenger_rating" db:"passenger_rating"`
	Version         int64      `json:"-" db:"version"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// HasDriver reports whether a driver is assigned to the ride
func (r *Ride) HasDriver() bool {
	return r.DriverID != nil && *r.DriverID != ""
}

// IsDriver reports whether userID is the ride's current driver
func (r *Ride) IsDriver(userID string) bool {
	return r.HasDriver() && *r.DriverID == userID
}

// IsParticipant reports whether userID is the passenger or the current driver
func (r *Ride) IsParticipant(userID string) bool {
	return userID != "" && (r.PassengerID == userID || r.IsDriver(userID))
}

// Clone returns a deep copy of the ride so callers can mutate it freely
func (r *Ride) Clone() *Ride {
	c := *r
	if r.DriverID != nil {
		v := *r.DriverID
		c.DriverID = &v
	}
	if r.PickupAddress != nil {
		v := *r.PickupAddress
		c.PickupAddress = &v
	}
	if r.DropoffAddress != nil {
		v := *r.DropoffAddress
		c.DropoffAddress = &v
	}
	if r.FinalFare != nil {
		v := *r.FinalFare
		c.FinalFare = &v
	}
	if r.DriverRating != nil {
		v := *r.DriverRating
		c.DriverRating = &v
	}
	if r.PassengerRating != nil {
		v := *r.PassengerRating
		c.PassengerRating = &v
	}
	return &c
}

// CreateRideRequest represents the passenger request to create a ride
type CreateRideRequest struct {
	PickupLat      *float64 `json:"pickup_lat"`
	PickupLng      *float64 `json:"pickup_lng"`
	PickupAddress  *string  `json:"pickup_address,omitempty"`
	DropoffLat     *float64 `json:"dropoff_lat"`
	DropoffLng     *float64 `json:"dropoff_lng"`
	DropoffAddress *string  `json:"dropoff_address,omitempty"`
}

// RateRequest carries a 1-5 star rating
type RateRequest struct {
	Rating int `json:"rating"`
}

// RideUpdate is the event published on a ride channel after every mutation
type RideUpdate struct {
	RideID        string     `json:"ride_id"`
	PassengerID   string     `json:"passenger_id"`
	DriverID      *string    `json:"driver_id"`
	Status        RideStatus `json:"status"`
	DistanceMiles float64    `json:"distance_miles"`
	EstimatedFare float64    `json:"estimated_fare"`
	FinalFare     *float64   `json:"final_fare"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewRideUpdate builds the published event for a ride snapshot
func NewRideUpdate(r *Ride) RideUpdate {
	return RideUpdate{
		RideID:        r.ID,
		PassengerID:   r.PassengerID,
		DriverID:      r.DriverID,
		Status:        r.Status,
		DistanceMiles: r.DistanceMiles,
		EstimatedFare: r.EstimatedFare,
		FinalFare:     r.FinalFare,
		UpdatedAt:     Now(),
	}
}
