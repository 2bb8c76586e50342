package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"ridebooking/internal/domain"
	"ridebooking/internal/service"
)

func TestCancelBooking_Success(t *testing.T) {
	f := newBookingFixture()
	f.addPassenger("p1", "Ana", "Pop")
	f.addScheduledRide("r1", baseTime.Add(time.Hour), baseTime.Add(2*time.Hour), 3)

	if _, err := f.svc.Create(context.Background(), "p1", "r1"); err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	booking, err := f.svc.Cancel(context.Background(), "r1", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != domain.BookingStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", booking.Status)
	}
	if booking.CancelledAt.IsZero() {
		t.Errorf("expected cancellation timestamp to be set")
	}
	if seats := f.rides.GetRide("r1").SeatsAvailable; seats != 3 {
		t.Errorf("expected seat returned, got %d seats", seats)
	}
	if f.recorder.BookingsCancelled != 1 {
		t.Errorf("expected 1 cancelled metric, got %d", f.recorder.BookingsCancelled)
	}
}

func TestCancelBooking_DepartureBoundary(t *testing.T) {
	departure := baseTime.Add(time.Hour)

	testCases := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"one second before departure", departure.Add(-time.Second), nil},
		{"at departure", departure, service.ErrDepartureAlreadyPassed},
		{"after departure", departure.Add(time.Minute), service.ErrDepartureAlreadyPassed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newBookingFixture()
			f.addPassenger("p1", "Ana", "Pop")
			f.addScheduledRide("r1", departure, departure.Add(time.Hour), 3)

			if _, err := f.svc.Create(context.Background(), "p1", "r1"); err != nil {
				t.Fatalf("booking failed: %v", err)
			}

			f.clock.Time = tc.now
			_, err := f.svc.Cancel(context.Background(), "r1", "p1")

			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if seats := f.rides.GetRide("r1").SeatsAvailable; seats != 2 {
				t.Errorf("rejected cancellation must not return the seat, got %d", seats)
			}
		})
	}
}

func TestCancelBooking_RideNotFound(t *testing.T) {
	f := newBookingFixture()

	_, err := f.svc.Cancel(context.Background(), "ghost", "p1")
	if !errors.Is(err, service.ErrRideNotFound) {
		t.Fatalf("expected ErrRideNotFound, got %v", err)
	}
}

func TestCancelBooking_BookingNotFound(t *testing.T) {
	f := newBookingFixture()
	f.addPassenger("p1", "Ana", "Pop")
	f.addScheduledRide("r1", baseTime.Add(time.Hour), baseTime.Add(2*time.Hour), 3)

	_, err := f.svc.Cancel(context.Background(), "r1", "p1")
	if !errors.Is(err, service.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestCancelBooking_AlreadyCancelledIsTerminal(t *testing.T) {
	f := newBookingFixture()
	f.addPassenger("p1", "Ana", "Pop")
	f.addScheduledRide("r1", baseTime.Add(time.Hour), baseTime.Add(2*time.Hour), 3)

	if _, err := f.svc.Create(context.Background(), "p1", "r1"); err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), "r1", "p1"); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}

	// Repeated cancels are always rejected and never touch the seat count.
	for i := 0; i < 3; i++ {
		_, err := f.svc.Cancel(context.Background(), "r1", "p1")
		if !errors.Is(err, service.ErrAlreadyCancelled) {
			t.Fatalf("cancel #%d: expected ErrAlreadyCancelled, got %v", i+2, err)
		}
	}
	if seats := f.rides.GetRide("r1").SeatsAvailable; seats != 3 {
		t.Errorf("seat count drifted to %d, want 3", seats)
	}
}

func TestBookingLifecycle_EndToEnd(t *testing.T) {
	f := newBookingFixture()
	f.addPassenger("p1", "Ana", "Pop")
	f.addPassenger("p2", "Ion", "Dinu")
	f.addScheduledRide("r1", baseTime.Add(time.Hour), baseTime.Add(2*time.Hour), 1)

	ctx := context.Background()

	if _, err := f.svc.Create(ctx, "p1", "r1"); err != nil {
		t.Fatalf("step 1: %v", err)
	}
	if seats := f.rides.GetRide("r1").SeatsAvailable; seats != 0 {
		t.Fatalf("step 1: expected 0 seats, got %d", seats)
	}

	if _, err := f.svc.Create(ctx, "p2", "r1"); !errors.Is(err, service.ErrNoSeatsAvailable) {
		t.Fatalf("step 2: expected ErrNoSeatsAvailable, got %v", err)
	}

	if _, err := f.svc.Cancel(ctx, "r1", "p1"); err != nil {
		t.Fatalf("step 3: %v", err)
	}
	if seats := f.rides.GetRide("r1").SeatsAvailable; seats != 1 {
		t.Fatalf("step 3: expected 1 seat, got %d", seats)
	}

	if _, err := f.svc.Create(ctx, "p2", "r1"); err != nil {
		t.Fatalf("step 4: %v", err)
	}
	if seats := f.rides.GetRide("r1").SeatsAvailable; seats != 0 {
		t.Fatalf("step 4: expected 0 seats, got %d", seats)
	}
}
