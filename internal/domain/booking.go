package domain

import "time"

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "BOOKED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking represents a passenger's reservation of one seat on a ride.
// Bookings are never deleted; a cancelled booking stays on record with
// status CANCELLED.
type Booking struct {
	ID          string
	RideID      string
	PassengerID string
	Status      BookingStatus
	CreatedAt   time.Time
	CancelledAt time.Time
}
