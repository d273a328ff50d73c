package constants

// WebSocket event types
const (
	// Common events
	EventError = "error"
	EventPing  = "ping"
	EventPong  = "pong"

	// Channel events
	EventSubscribe    = "subscribe"
	EventSubscribed   = "subscribed"
	EventUnsubscribe  = "unsubscribe"
	EventUnsubscribed = "unsubscribed"

	// Ride events
	EventRideUpdate = "ride_update"
)

// Channel key prefix for ride channels: rides/{ride_id}
const ChannelRidePrefix = "rides/"

// WebSocket error codes
const (
	ErrorInvalidFormat = "invalid_format"
	ErrorUnauthorized  = "unauthorized"
	ErrorForbidden     = "forbidden"
	ErrorInternalError = "internal_error"
	ErrorUnknownEvent  = "unknown_event"
)
