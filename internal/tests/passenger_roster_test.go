package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"ridebooking/internal/domain"
	"ridebooking/internal/service"
)

func TestListPassengers_InsertionOrderWithNames(t *testing.T) {
	f := newBookingFixture()
	f.addPassenger("p1", "Ana", "Pop")
	f.addPassenger("p2", "Ion", "Dinu")
	f.addPassenger("p3", "Maria", "Ionescu")
	f.addScheduledRide("r1", baseTime.Add(time.Hour), baseTime.Add(2*time.Hour), 5)

	ctx := context.Background()
	for _, id := range []string{"p2", "p1", "p3"} {
		if _, err := f.svc.Create(ctx, id, "r1"); err != nil {
			t.Fatalf("booking %s failed: %v", id, err)
		}
	}

	entries, err := f.svc.ListPassengers(ctx, "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantNames := []string{"Ion Dinu", "Ana Pop", "Maria Ionescu"}
	if len(entries) != len(wantNames) {
		t.Fatalf("expected %d entries, got %d", len(wantNames), len(entries))
	}
	for i, want := range wantNames {
		if entries[i].PassengerFullName != want {
			t.Errorf("entry %d: expected %q, got %q", i, want, entries[i].PassengerFullName)
		}
	}
}

func TestListPassengers_IncludesCancelledBookings(t *testing.T) {
	f := newBookingFixture()
	f.addPassenger("p1", "Ana", "Pop")
	f.addPassenger("p2", "Ion", "Dinu")
	f.addScheduledRide("r1", baseTime.Add(time.Hour), baseTime.Add(2*time.Hour), 5)

	ctx := context.Background()
	if _, err := f.svc.Create(ctx, "p1", "r1"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Create(ctx, "p2", "r1"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Cancel(ctx, "r1", "p1"); err != nil {
		t.Fatal(err)
	}

	entries, err := f.svc.ListPassengers(ctx, "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("roster should keep cancelled bookings, got %d entries", len(entries))
	}
	if entries[0].Booking.Status != domain.BookingStatusCancelled {
		t.Errorf("expected first entry CANCELLED, got %s", entries[0].Booking.Status)
	}
}

func TestListPassengers_SkipsMissingPassenger(t *testing.T) {
	f := newBookingFixture()
	f.addPassenger("p1", "Ana", "Pop")
	f.addPassenger("p2", "Ion", "Dinu")
	f.addScheduledRide("r1", baseTime.Add(time.Hour), baseTime.Add(2*time.Hour), 5)

	ctx := context.Background()
	if _, err := f.svc.Create(ctx, "p1", "r1"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Create(ctx, "p2", "r1"); err != nil {
		t.Fatal(err)
	}

	// Simulate a data-integrity fault: the passenger record vanished.
	f.users.RemoveUser("p1")

	entries, err := f.svc.ListPassengers(ctx, "r1")
	if err != nil {
		t.Fatalf("roster should survive a missing passenger, got %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after skip, got %d", len(entries))
	}
	if entries[0].PassengerFullName != "Ion Dinu" {
		t.Errorf("expected remaining entry for Ion Dinu, got %q", entries[0].PassengerFullName)
	}
}

func TestListPassengers_StoreFaultPropagates(t *testing.T) {
	f := newBookingFixture()
	f.addPassenger("p1", "Ana", "Pop")
	f.addScheduledRide("r1", baseTime.Add(time.Hour), baseTime.Add(2*time.Hour), 5)

	if _, err := f.svc.Create(context.Background(), "p1", "r1"); err != nil {
		t.Fatal(err)
	}

	f.users.GetError = errors.New("connection reset")

	if _, err := f.svc.ListPassengers(context.Background(), "r1"); err == nil {
		t.Fatal("expected store fault to propagate")
	}
}

func TestListPassengers_EmptyRide(t *testing.T) {
	f := newBookingFixture()
	f.addScheduledRide("r1", baseTime.Add(time.Hour), baseTime.Add(2*time.Hour), 5)

	entries, err := f.svc.ListPassengers(context.Background(), "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty roster, got %d entries", len(entries))
	}
}

func TestListPassengers_InvalidRideID(t *testing.T) {
	f := newBookingFixture()

	_, err := f.svc.ListPassengers(context.Background(), "")
	if !errors.Is(err, service.ErrInvalidRideID) {
		t.Fatalf("expected ErrInvalidRideID, got %v", err)
	}
}
