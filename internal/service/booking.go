package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ridebooking/internal/clock"
	"ridebooking/internal/domain"
	"ridebooking/internal/redis"
	"ridebooking/internal/repository"
	"ridebooking/internal/telemetry"
)

const (
	// rideLockTTL bounds how long a crashed instance can keep a ride locked.
	rideLockTTL = 5 * time.Second

	lockAttempts   = 5
	lockRetryDelay = 50 * time.Millisecond
)

// BookingService orchestrates the booking lifecycle: it assembles a state
// snapshot under the per-ride lock, asks the validator for a decision, and
// applies the store mutations. Seat counts are only ever adjusted together
// with the booking row, so seats_available always reconciles with
// capacity minus the number of BOOKED bookings.
type BookingService struct {
	bookingRepo repository.BookingRepository
	rideRepo    repository.RideRepository
	userRepo    repository.UserRepository
	locks       redis.LockStoreInterface
	cache       redis.CacheStoreInterface
	clock       clock.Clock
	recorder    telemetry.Recorder
	validator   Validator
}

// NewBookingService creates a new BookingService. cache may be nil.
func NewBookingService(
	bookingRepo repository.BookingRepository,
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	locks redis.LockStoreInterface,
	cache redis.CacheStoreInterface,
	clk clock.Clock,
	recorder telemetry.Recorder,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		rideRepo:    rideRepo,
		userRepo:    userRepo,
		locks:       locks,
		cache:       cache,
		clock:       clk,
		recorder:    recorder,
	}
}

// Create books one seat on a ride for a passenger. On rejection no store
// mutation happens and the returned error carries the rejection code.
func (s *BookingService) Create(ctx context.Context, passengerID, rideID string) (*domain.Booking, error) {
	start := s.clock.Now()

	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	// Passenger identity lives in another subsystem; look it up before
	// taking the ride lock so the lock never spans that call.
	passengerExists, err := s.passengerExists(ctx, passengerID)
	if err != nil {
		return nil, err
	}

	if err := s.acquireRideLock(ctx, rideID); err != nil {
		return nil, err
	}
	defer s.releaseRideLock(rideID)

	snap, err := s.snapshotForCreation(ctx, passengerExists, passengerID, rideID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateCreation(snap); err != nil {
		s.recordRejection(err)
		return nil, err
	}

	booking := &domain.Booking{
		ID:          uuid.New().String(),
		RideID:      rideID,
		PassengerID: passengerID,
		Status:      domain.BookingStatusBooked,
		CreatedAt:   s.clock.Now(),
	}

	// The store re-checks seats and pair uniqueness inside its own
	// transaction; map those races back to the same rejection codes.
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			s.recordRejection(ErrDuplicateBooking)
			return nil, ErrDuplicateBooking
		case errors.Is(err, repository.ErrInsufficientSeats):
			s.recordRejection(ErrNoSeatsAvailable)
			return nil, ErrNoSeatsAvailable
		case errors.Is(err, repository.ErrNotFound):
			s.recordRejection(ErrUnknownRide)
			return nil, ErrUnknownRide
		default:
			return nil, fmt.Errorf("create booking: %w", err)
		}
	}

	s.invalidateRideCache(ctx, rideID)
	s.recorder.BookingCreated()
	s.recorder.RecordDuration("BookingCreation", s.clock.Now().Sub(start))

	return booking, nil
}

// Cancel marks the passenger's booking on the ride as CANCELLED and returns
// the seat. Allowed strictly before the ride's departure time.
func (s *BookingService) Cancel(ctx context.Context, rideID, passengerID string) (*domain.Booking, error) {
	start := s.clock.Now()

	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}

	if err := s.acquireRideLock(ctx, rideID); err != nil {
		return nil, err
	}
	defer s.releaseRideLock(rideID)

	snap, err := s.snapshotForCancellation(ctx, rideID, passengerID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.validator.ValidateCancellation(snap, now); err != nil {
		s.recordRejection(err)
		return nil, err
	}

	booking := snap.Booking
	booking.Status = domain.BookingStatusCancelled
	booking.CancelledAt = now

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost a race with another cancellation of the same booking.
			s.recordRejection(ErrAlreadyCancelled)
			return nil, ErrAlreadyCancelled
		}
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	s.invalidateRideCache(ctx, rideID)
	s.recorder.BookingCancelled()
	s.recorder.RecordDuration("BookingCancellation", s.clock.Now().Sub(start))

	return booking, nil
}

// PassengerEntry pairs a booking with the passenger's display name.
type PassengerEntry struct {
	Booking           *domain.Booking
	PassengerFullName string
}

// ListPassengers returns the ride's bookings, any status, in insertion
// order, each joined to the passenger's full name. A booking whose
// passenger record has vanished is a data-integrity fault: it is logged and
// skipped so one corrupt record doesn't hide the rest of the manifest.
func (s *BookingService) ListPassengers(ctx context.Context, rideID string) ([]PassengerEntry, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	bookings, err := s.bookingRepo.GetByRide(ctx, rideID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	entries := make([]PassengerEntry, 0, len(bookings))
	for _, booking := range bookings {
		passenger, err := s.userRepo.GetByID(ctx, booking.PassengerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				log.Printf("ERROR booking %s references missing passenger %s, skipping", booking.ID, booking.PassengerID)
				continue
			}
			return nil, fmt.Errorf("lookup passenger: %w", err)
		}
		entries = append(entries, PassengerEntry{
			Booking:           booking,
			PassengerFullName: passenger.FullName(),
		})
	}

	return entries, nil
}

func (s *BookingService) passengerExists(ctx context.Context, passengerID string) (bool, error) {
	_, err := s.userRepo.GetByID(ctx, passengerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup passenger: %w", err)
	}
	return true, nil
}

func (s *BookingService) snapshotForCreation(ctx context.Context, passengerExists bool, passengerID, rideID string) (CreationSnapshot, error) {
	snap := CreationSnapshot{PassengerExists: passengerExists}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return snap, fmt.Errorf("lookup ride: %w", err)
	}
	snap.Ride = ride

	existing, err := s.bookingRepo.GetByRideAndPassenger(ctx, rideID, passengerID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return snap, fmt.Errorf("lookup booking: %w", err)
	}
	snap.ExistingBooking = existing

	if ride == nil {
		return snap, nil
	}

	held, err := s.heldRides(ctx, passengerID, ride)
	if err != nil {
		return snap, err
	}
	snap.HeldRides = held

	return snap, nil
}

// heldRides returns the rides, other than the target, the passenger holds
// BOOKED seats on within the target's time window.
func (s *BookingService) heldRides(ctx context.Context, passengerID string, target *domain.Ride) ([]*domain.Ride, error) {
	booked, err := s.bookingRepo.GetBookedByPassenger(ctx, passengerID)
	if err != nil {
		return nil, fmt.Errorf("lookup passenger bookings: %w", err)
	}
	if len(booked) == 0 {
		return nil, nil
	}

	bookedRideIDs := make(map[string]bool, len(booked))
	for _, b := range booked {
		bookedRideIDs[b.RideID] = true
	}

	overlapping, err := s.rideRepo.GetOverlapping(ctx, target.DepartureTime, target.ArrivalTime)
	if err != nil {
		return nil, fmt.Errorf("lookup overlapping rides: %w", err)
	}

	var held []*domain.Ride
	for _, ride := range overlapping {
		if ride.ID != target.ID && bookedRideIDs[ride.ID] {
			held = append(held, ride)
		}
	}
	return held, nil
}

func (s *BookingService) snapshotForCancellation(ctx context.Context, rideID, passengerID string) (CancellationSnapshot, error) {
	var snap CancellationSnapshot

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return snap, fmt.Errorf("lookup ride: %w", err)
	}
	snap.Ride = ride

	booking, err := s.bookingRepo.GetByRideAndPassenger(ctx, rideID, passengerID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return snap, fmt.Errorf("lookup booking: %w", err)
	}
	snap.Booking = booking

	return snap, nil
}

func (s *BookingService) acquireRideLock(ctx context.Context, rideID string) error {
	for attempt := 0; attempt < lockAttempts; attempt++ {
		ok, err := s.locks.AcquireRideLock(ctx, rideID, rideLockTTL)
		if err != nil {
			return fmt.Errorf("acquire ride lock: %w", err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
	return ErrLockUnavailable
}

func (s *BookingService) releaseRideLock(rideID string) {
	// Release must not be cut short by a cancelled request context.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.locks.ReleaseRideLock(ctx, rideID); err != nil {
		log.Printf("ERROR failed to release lock for ride %s: %v", rideID, err)
	}
}

func (s *BookingService) invalidateRideCache(ctx context.Context, rideID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRide(ctx, rideID); err != nil {
		log.Printf("failed to invalidate cache for ride %s: %v", rideID, err)
	}
}

func (s *BookingService) recordRejection(err error) {
	var rejection *RejectionError
	if errors.As(err, &rejection) {
		s.recorder.ValidationFailure(string(rejection.Code))
	}
}
