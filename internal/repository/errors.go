package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint, e.g. a second BOOKED booking for the same
	// (ride, passenger) pair.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInsufficientSeats is returned when a booking insert would drive a
	// ride's seat count negative.
	ErrInsufficientSeats = errors.New("no seats available")
)
