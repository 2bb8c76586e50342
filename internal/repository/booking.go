package repository

import (
	"context"

	"ridebooking/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
//
// GetByRide returns bookings in insertion order (creation time, then ID),
// which is the ordering guarantee the passenger roster relies on.
type BookingRepository interface {
	// Create persists a new BOOKED booking and atomically decrements the
	// ride's seats_available. Returns ErrDuplicate if a BOOKED booking
	// already exists for the (ride, passenger) pair, ErrInsufficientSeats
	// if no seat is left, ErrNotFound if the ride does not exist.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByRideAndPassenger retrieves the most recent booking for the
	// (ride, passenger) pair, regardless of status.
	GetByRideAndPassenger(ctx context.Context, rideID, passengerID string) (*domain.Booking, error)

	// GetByRide retrieves all bookings for a ride, any status.
	GetByRide(ctx context.Context, rideID string) ([]*domain.Booking, error)

	// GetBookedByPassenger retrieves the passenger's bookings with
	// status BOOKED.
	GetBookedByPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error)

	// Update transitions an existing BOOKED booking. A transition to
	// CANCELLED atomically returns the seat to the ride. Returns
	// ErrNotFound if the booking does not exist or is no longer BOOKED.
	Update(ctx context.Context, booking *domain.Booking) error
}
