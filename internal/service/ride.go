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

// RideService handles ride scheduling and status transitions.
type RideService struct {
	rideRepo repository.RideRepository
	cache    redis.CacheStoreInterface
	clock    clock.Clock
	recorder telemetry.Recorder
}

// NewRideService creates a new RideService. cache may be nil.
func NewRideService(
	rideRepo repository.RideRepository,
	cache redis.CacheStoreInterface,
	clk clock.Clock,
	recorder telemetry.Recorder,
) *RideService {
	return &RideService{
		rideRepo: rideRepo,
		cache:    cache,
		clock:    clk,
		recorder: recorder,
	}
}

// CreateRideRequest contains the parameters for scheduling a ride.
type CreateRideRequest struct {
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	Capacity      int
}

// CreateRide schedules a new ride with all seats available.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*domain.Ride, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	ride := &domain.Ride{
		ID:             uuid.New().String(),
		Origin:         req.Origin,
		Destination:    req.Destination,
		DepartureTime:  req.DepartureTime.UTC(),
		ArrivalTime:    req.ArrivalTime.UTC(),
		Status:         domain.RideStatusScheduled,
		Capacity:       req.Capacity,
		SeatsAvailable: req.Capacity,
		CreatedAt:      s.clock.Now(),
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, fmt.Errorf("create ride: %w", err)
	}

	s.recorder.RideCreated()

	return ride, nil
}

func (s *RideService) validateCreateRequest(req CreateRideRequest) error {
	if req.Origin == "" {
		return ErrInvalidOrigin
	}
	if req.Destination == "" {
		return ErrInvalidDestination
	}
	if !req.DepartureTime.Before(req.ArrivalTime) {
		return ErrInvalidSchedule
	}
	if !req.DepartureTime.After(s.clock.Now()) {
		return ErrDepartureInPast
	}
	if req.Capacity < 1 {
		return ErrInvalidCapacity
	}
	return nil
}

// GetRide retrieves a ride, consulting the cache first.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	if cached := s.cachedRide(ctx, rideID); cached != nil {
		return cached, nil
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	s.cacheRide(ctx, ride)
	return ride, nil
}

// GetAllRides retrieves all rides.
func (s *RideService) GetAllRides(ctx context.Context) ([]*domain.Ride, error) {
	return s.rideRepo.GetAll(ctx)
}

// GetScheduledRidesByDate retrieves SCHEDULED rides departing on the given
// UTC calendar day.
func (s *RideService) GetScheduledRidesByDate(ctx context.Context, date time.Time) ([]*domain.Ride, error) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	rides, err := s.rideRepo.GetByDepartureDate(ctx, from, to)
	if err != nil {
		return nil, err
	}

	scheduled := make([]*domain.Ride, 0, len(rides))
	for _, ride := range rides {
		if ride.Status == domain.RideStatusScheduled {
			scheduled = append(scheduled, ride)
		}
	}
	return scheduled, nil
}

// StartRide transitions a SCHEDULED ride to IN_PROGRESS.
func (s *RideService) StartRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	return s.transition(ctx, rideID, func(ride *domain.Ride) error {
		if ride.Status != domain.RideStatusScheduled {
			return ErrRideNotInScheduledState
		}
		ride.Status = domain.RideStatusInProgress
		return nil
	})
}

// CompleteRide transitions an IN_PROGRESS ride to COMPLETED.
func (s *RideService) CompleteRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	return s.transition(ctx, rideID, func(ride *domain.Ride) error {
		if ride.Status != domain.RideStatusInProgress {
			return ErrRideNotInProgress
		}
		ride.Status = domain.RideStatusCompleted
		return nil
	})
}

// CancelRide cancels a ride that has not completed.
func (s *RideService) CancelRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	return s.transition(ctx, rideID, func(ride *domain.Ride) error {
		switch ride.Status {
		case domain.RideStatusCancelled:
			return ErrRideAlreadyCancelled
		case domain.RideStatusCompleted:
			return ErrRideCannotBeCancelled
		}
		ride.Status = domain.RideStatusCancelled
		return nil
	})
}

func (s *RideService) transition(ctx context.Context, rideID string, apply func(*domain.Ride) error) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if err := apply(ride); err != nil {
		return nil, err
	}

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, fmt.Errorf("update ride: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateRide(ctx, rideID); err != nil {
			log.Printf("failed to invalidate cache for ride %s: %v", rideID, err)
		}
	}

	return ride, nil
}

func (s *RideService) cachedRide(ctx context.Context, rideID string) *domain.Ride {
	if s.cache == nil {
		return nil
	}

	cached, err := s.cache.GetRide(ctx, rideID)
	if err != nil || cached == nil {
		return nil
	}

	return &domain.Ride{
		ID:             cached.ID,
		Origin:         cached.Origin,
		Destination:    cached.Destination,
		DepartureTime:  cached.DepartureTime,
		ArrivalTime:    cached.ArrivalTime,
		Status:         domain.RideStatus(cached.Status),
		Capacity:       cached.Capacity,
		SeatsAvailable: cached.SeatsAvailable,
	}
}

func (s *RideService) cacheRide(ctx context.Context, ride *domain.Ride) {
	if s.cache == nil {
		return
	}

	err := s.cache.SetRide(ctx, &redis.CachedRide{
		ID:             ride.ID,
		Origin:         ride.Origin,
		Destination:    ride.Destination,
		DepartureTime:  ride.DepartureTime,
		ArrivalTime:    ride.ArrivalTime,
		Status:         string(ride.Status),
		Capacity:       ride.Capacity,
		SeatsAvailable: ride.SeatsAvailable,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("failed to cache ride %s: %v", ride.ID, err)
	}
}
