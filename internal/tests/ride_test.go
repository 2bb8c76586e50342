package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"ridebooking/internal/clock"
	"ridebooking/internal/domain"
	"ridebooking/internal/repository"
	"ridebooking/internal/service"
)

type rideFixture struct {
	rides    *MockRideRepository
	recorder *MockRecorder
	clock    *clock.Fixed
	svc      *service.RideService
}

func newRideFixture() *rideFixture {
	rides := NewMockRideRepository()
	recorder := NewMockRecorder()
	clk := &clock.Fixed{Time: baseTime}

	return &rideFixture{
		rides:    rides,
		recorder: recorder,
		clock:    clk,
		svc:      service.NewRideService(rides, nil, clk, recorder),
	}
}

func validCreateRequest() service.CreateRideRequest {
	return service.CreateRideRequest{
		Origin:        "Bucharest",
		Destination:   "Brasov",
		DepartureTime: baseTime.Add(time.Hour),
		ArrivalTime:   baseTime.Add(3 * time.Hour),
		Capacity:      4,
	}
}

func TestCreateRide_Success(t *testing.T) {
	f := newRideFixture()

	ride, err := f.svc.CreateRide(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.ID == "" {
		t.Error("expected generated ride id")
	}
	if ride.Status != domain.RideStatusScheduled {
		t.Errorf("expected SCHEDULED, got %s", ride.Status)
	}
	if ride.SeatsAvailable != ride.Capacity {
		t.Errorf("new ride must start with all seats free: %d/%d", ride.SeatsAvailable, ride.Capacity)
	}
	if !ride.CreatedAt.Equal(baseTime) {
		t.Errorf("expected creation timestamp from clock, got %v", ride.CreatedAt)
	}
	if f.recorder.RidesCreated != 1 {
		t.Errorf("expected 1 ride-created metric, got %d", f.recorder.RidesCreated)
	}
}

func TestCreateRide_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*service.CreateRideRequest)
		wantErr error
	}{
		{"missing origin", func(r *service.CreateRideRequest) { r.Origin = "" }, service.ErrInvalidOrigin},
		{"missing destination", func(r *service.CreateRideRequest) { r.Destination = "" }, service.ErrInvalidDestination},
		{"arrival before departure", func(r *service.CreateRideRequest) {
			r.ArrivalTime = r.DepartureTime.Add(-time.Hour)
		}, service.ErrInvalidSchedule},
		{"arrival equals departure", func(r *service.CreateRideRequest) {
			r.ArrivalTime = r.DepartureTime
		}, service.ErrInvalidSchedule},
		{"departure in the past", func(r *service.CreateRideRequest) {
			r.DepartureTime = baseTime.Add(-time.Hour)
			r.ArrivalTime = baseTime.Add(time.Hour)
		}, service.ErrDepartureInPast},
		{"zero capacity", func(r *service.CreateRideRequest) { r.Capacity = 0 }, service.ErrInvalidCapacity},
		{"negative capacity", func(r *service.CreateRideRequest) { r.Capacity = -2 }, service.ErrInvalidCapacity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newRideFixture()
			req := validCreateRequest()
			tc.mutate(&req)

			_, err := f.svc.CreateRide(context.Background(), req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if f.rides.CreateCallCount != 0 {
				t.Error("invalid request must not hit the store")
			}
		})
	}
}

func TestGetRide_NotFound(t *testing.T) {
	f := newRideFixture()

	_, err := f.svc.GetRide(context.Background(), "ghost")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetScheduledRidesByDate_FiltersDayAndStatus(t *testing.T) {
	f := newRideFixture()

	day := time.Date(2030, 5, 21, 0, 0, 0, 0, time.UTC)
	f.rides.AddRide(&domain.Ride{
		ID: "same-day", Status: domain.RideStatusScheduled,
		DepartureTime: day.Add(9 * time.Hour), ArrivalTime: day.Add(11 * time.Hour),
		Capacity: 4, SeatsAvailable: 4,
	})
	f.rides.AddRide(&domain.Ride{
		ID: "same-day-cancelled", Status: domain.RideStatusCancelled,
		DepartureTime: day.Add(10 * time.Hour), ArrivalTime: day.Add(12 * time.Hour),
		Capacity: 4, SeatsAvailable: 4,
	})
	f.rides.AddRide(&domain.Ride{
		ID: "next-day", Status: domain.RideStatusScheduled,
		DepartureTime: day.Add(25 * time.Hour), ArrivalTime: day.Add(27 * time.Hour),
		Capacity: 4, SeatsAvailable: 4,
	})

	rides, err := f.svc.GetScheduledRidesByDate(context.Background(), day.Add(15*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rides) != 1 || rides[0].ID != "same-day" {
		t.Fatalf("expected only the scheduled same-day ride, got %+v", rides)
	}
}

func TestRideTransitions(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()

	ride, err := f.svc.CreateRide(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// COMPLETED is only reachable from IN_PROGRESS.
	if _, err := f.svc.CompleteRide(ctx, ride.ID); !errors.Is(err, service.ErrRideNotInProgress) {
		t.Fatalf("expected ErrRideNotInProgress, got %v", err)
	}

	started, err := f.svc.StartRide(ctx, ride.ID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if started.Status != domain.RideStatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", started.Status)
	}

	if _, err := f.svc.StartRide(ctx, ride.ID); !errors.Is(err, service.ErrRideNotInScheduledState) {
		t.Fatalf("starting twice: expected ErrRideNotInScheduledState, got %v", err)
	}

	completed, err := f.svc.CompleteRide(ctx, ride.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != domain.RideStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", completed.Status)
	}

	if _, err := f.svc.CancelRide(ctx, ride.ID); !errors.Is(err, service.ErrRideCannotBeCancelled) {
		t.Fatalf("cancelling a completed ride: expected ErrRideCannotBeCancelled, got %v", err)
	}
}

func TestCancelRide(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()

	ride, err := f.svc.CreateRide(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	cancelled, err := f.svc.CancelRide(ctx, ride.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != domain.RideStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}

	if _, err := f.svc.CancelRide(ctx, ride.ID); !errors.Is(err, service.ErrRideAlreadyCancelled) {
		t.Fatalf("expected ErrRideAlreadyCancelled, got %v", err)
	}
}

func TestRideTransitions_UnknownRide(t *testing.T) {
	f := newRideFixture()
	ctx := context.Background()

	for name, op := range map[string]func(context.Context, string) (*domain.Ride, error){
		"start":    f.svc.StartRide,
		"complete": f.svc.CompleteRide,
		"cancel":   f.svc.CancelRide,
	} {
		if _, err := op(ctx, "ghost"); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
}
