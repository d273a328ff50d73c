package constants

// NATS Subjects
const (
	// Ride updates, one subject per ride: rides.{ride_id}
	SubjectRideUpdatePrefix = "rides."
	SubjectRideUpdates      = "rides.*"

	// Driver apps report positions here
	SubjectDriverLocation = "location.driver"
)

// Queue groups
const (
	QueueLocationIngest = "location-ingest"
)
