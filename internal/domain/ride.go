package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusScheduled  RideStatus = "SCHEDULED"
	RideStatusInProgress RideStatus = "IN_PROGRESS"
	RideStatusCompleted  RideStatus = "COMPLETED"
	RideStatusCancelled  RideStatus = "CANCELLED"
)

// Ride represents a scheduled transport offering with fixed capacity
// and a time window.
type Ride struct {
	ID             string
	Origin         string
	Destination    string
	DepartureTime  time.Time
	ArrivalTime    time.Time
	Status         RideStatus
	Capacity       int
	SeatsAvailable int
	CreatedAt      time.Time
}

// Overlaps reports whether the ride's time window intersects [departure, arrival).
// Intervals are half-open: rides that merely touch at an endpoint do not overlap.
func (r *Ride) Overlaps(departure, arrival time.Time) bool {
	return r.DepartureTime.Before(arrival) && departure.Before(r.ArrivalTime)
}
