package service

import "errors"

// RejectionCode is the stable machine identifier for a refused booking
// operation. Codes are part of the API contract and feed the telemetry
// failure counters, so they must not change between releases.
type RejectionCode string

const (
	CodeUnknownPassenger       RejectionCode = "UnknownPassenger"
	CodeUnknownRide            RejectionCode = "UnknownRide"
	CodeDuplicateBooking       RejectionCode = "DuplicateBooking"
	CodeScheduleConflict       RejectionCode = "ScheduleConflict"
	CodeNoSeatsAvailable       RejectionCode = "NoSeatsAvailable"
	CodeRideNotScheduled       RejectionCode = "RideNotScheduled"
	CodeRideNotFound           RejectionCode = "RideNotFound"
	CodeBookingNotFound        RejectionCode = "BookingNotFound"
	CodeAlreadyCancelled       RejectionCode = "AlreadyCancelled"
	CodeDepartureAlreadyPassed RejectionCode = "DepartureAlreadyPassed"
)

// RejectionError is an expected business outcome of a booking operation,
// not a fault. Rejections are never retried and never logged above info.
type RejectionError struct {
	Code    RejectionCode
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

// Creation rejections, in validation order.
var (
	ErrUnknownPassenger = &RejectionError{CodeUnknownPassenger, "passenger id doesn't exist"}
	ErrUnknownRide      = &RejectionError{CodeUnknownRide, "ride id does not exist"}
	ErrDuplicateBooking = &RejectionError{CodeDuplicateBooking, "passenger already booked for this ride"}
	ErrScheduleConflict = &RejectionError{CodeScheduleConflict, "passenger has an overlapping ride"}
	ErrNoSeatsAvailable = &RejectionError{CodeNoSeatsAvailable, "no more seats available"}
	ErrRideNotScheduled = &RejectionError{CodeRideNotScheduled, "ride is not scheduled"}
)

// Cancellation rejections, in validation order.
var (
	ErrRideNotFound           = &RejectionError{CodeRideNotFound, "ride not found"}
	ErrBookingNotFound        = &RejectionError{CodeBookingNotFound, "booking not found"}
	ErrAlreadyCancelled       = &RejectionError{CodeAlreadyCancelled, "booking already cancelled"}
	ErrDepartureAlreadyPassed = &RejectionError{CodeDepartureAlreadyPassed, "cannot cancel after departure time"}
)

var (
	// ErrInvalidPassengerID is returned when passenger ID is empty.
	ErrInvalidPassengerID = errors.New("invalid passenger id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidOrigin is returned when a ride's origin is empty.
	ErrInvalidOrigin = errors.New("invalid origin")

	// ErrInvalidDestination is returned when a ride's destination is empty.
	ErrInvalidDestination = errors.New("invalid destination")

	// ErrInvalidSchedule is returned when departure is not before arrival.
	ErrInvalidSchedule = errors.New("departure time must be before arrival time")

	// ErrDepartureInPast is returned when a new ride departs in the past.
	ErrDepartureInPast = errors.New("departure time must be in the future")

	// ErrInvalidCapacity is returned when a ride's capacity is below one.
	ErrInvalidCapacity = errors.New("capacity must be at least 1")

	// ErrRideNotInScheduledState is returned when starting a ride that is
	// not SCHEDULED.
	ErrRideNotInScheduledState = errors.New("ride not in scheduled state")

	// ErrRideNotInProgress is returned when completing a ride that is not
	// IN_PROGRESS.
	ErrRideNotInProgress = errors.New("ride not in progress")

	// ErrRideAlreadyCancelled is returned when cancelling an already
	// cancelled ride.
	ErrRideAlreadyCancelled = errors.New("ride already cancelled")

	// ErrRideCannotBeCancelled is returned when a completed ride is
	// cancelled.
	ErrRideCannotBeCancelled = errors.New("ride cannot be cancelled in current state")

	// ErrLockUnavailable is returned when the per-ride lock could not be
	// acquired within the bounded retry budget. Surfaced as an internal
	// fault, never as a validation rejection.
	ErrLockUnavailable = errors.New("ride is locked by another operation")
)
