package service

import (
	"time"

	"ridebooking/internal/domain"
)

// CreationSnapshot is the store state a creation decision is made against.
// The booking service assembles it under the ride lock; the validator
// itself performs no I/O.
type CreationSnapshot struct {
	// PassengerExists reports whether the passenger record was found.
	PassengerExists bool

	// Ride is the target ride, nil if it does not exist.
	Ride *domain.Ride

	// ExistingBooking is the most recent booking for the (ride, passenger)
	// pair, nil if the passenger never booked this ride.
	ExistingBooking *domain.Booking

	// HeldRides are the rides the passenger currently holds BOOKED seats
	// on, excluding the target ride.
	HeldRides []*domain.Ride
}

// CancellationSnapshot is the store state a cancellation decision is made
// against.
type CancellationSnapshot struct {
	// Ride is the target ride, nil if it does not exist.
	Ride *domain.Ride

	// Booking is the booking for the (ride, passenger) pair, nil if none
	// exists.
	Booking *domain.Booking
}

// Validator holds the pure booking decision logic. Checks run in a fixed
// order and the first failure wins, so each rejection maps to exactly one
// reason code.
type Validator struct{}

// ValidateCreation returns nil when a booking may be created, or the
// RejectionError naming the first failed check.
func (Validator) ValidateCreation(snap CreationSnapshot) error {
	if !snap.PassengerExists {
		return ErrUnknownPassenger
	}

	if snap.Ride == nil {
		return ErrUnknownRide
	}

	if snap.ExistingBooking != nil && snap.ExistingBooking.Status == domain.BookingStatusBooked {
		return ErrDuplicateBooking
	}

	for _, held := range snap.HeldRides {
		if held.ID == snap.Ride.ID {
			continue
		}
		if held.Overlaps(snap.Ride.DepartureTime, snap.Ride.ArrivalTime) {
			return ErrScheduleConflict
		}
	}

	if snap.Ride.SeatsAvailable < 1 {
		return ErrNoSeatsAvailable
	}

	if snap.Ride.Status != domain.RideStatusScheduled {
		return ErrRideNotScheduled
	}

	return nil
}

// ValidateCancellation returns nil when the booking may be cancelled, or
// the RejectionError naming the first failed check. Cancellation is allowed
// strictly before departure: at the departure instant it is already too late.
func (Validator) ValidateCancellation(snap CancellationSnapshot, now time.Time) error {
	if snap.Ride == nil {
		return ErrRideNotFound
	}

	if snap.Booking == nil {
		return ErrBookingNotFound
	}

	if snap.Booking.Status != domain.BookingStatusBooked {
		return ErrAlreadyCancelled
	}

	if !now.Before(snap.Ride.DepartureTime) {
		return ErrDepartureAlreadyPassed
	}

	return nil
}
