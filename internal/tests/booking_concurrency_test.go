package tests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ridebooking/internal/domain"
	"ridebooking/internal/service"
)

func TestConcurrentCreates_CapacityInvariant(t *testing.T) {
	const capacity = 10
	const passengers = 40

	f := newBookingFixture()
	f.addScheduledRide("r1", baseTime.Add(time.Hour), baseTime.Add(2*time.Hour), capacity)
	for i := 0; i < passengers; i++ {
		f.addPassenger(fmt.Sprintf("p%d", i), "Pass", fmt.Sprintf("Enger%d", i))
	}

	var successes, noSeats int32
	var wg sync.WaitGroup
	for i := 0; i < passengers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), fmt.Sprintf("p%d", i), "r1")
			switch {
			case err == nil:
				atomic.AddInt32(&successes, 1)
			case errors.Is(err, service.ErrNoSeatsAvailable):
				atomic.AddInt32(&noSeats, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successes != capacity {
		t.Errorf("expected exactly %d successful creates, got %d", capacity, successes)
	}
	if noSeats != passengers-capacity {
		t.Errorf("expected %d NoSeatsAvailable rejections, got %d", passengers-capacity, noSeats)
	}

	ride := f.rides.GetRide("r1")
	if ride.SeatsAvailable != 0 {
		t.Errorf("expected 0 seats left, got %d", ride.SeatsAvailable)
	}
	if booked := f.bookings.CountByStatus("r1", domain.BookingStatusBooked); booked != capacity {
		t.Errorf("BOOKED count %d exceeds capacity %d", booked, capacity)
	}
}

func TestConcurrentCreates_SamePairUniqueness(t *testing.T) {
	const attempts = 20

	f := newBookingFixture()
	f.addPassenger("p1", "Ana", "Pop")
	f.addScheduledRide("r1", baseTime.Add(time.Hour), baseTime.Add(2*time.Hour), attempts)

	var successes, duplicates int32
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), "p1", "r1")
			switch {
			case err == nil:
				atomic.AddInt32(&successes, 1)
			case errors.Is(err, service.ErrDuplicateBooking):
				atomic.AddInt32(&duplicates, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("expected exactly 1 success for the pair, got %d", successes)
	}
	if duplicates != attempts-1 {
		t.Errorf("expected %d DuplicateBooking rejections, got %d", attempts-1, duplicates)
	}
	if seats := f.rides.GetRide("r1").SeatsAvailable; seats != attempts-1 {
		t.Errorf("expected %d seats left, got %d", attempts-1, seats)
	}
}

func TestConcurrentCreatesAndCancels_SeatsReconcile(t *testing.T) {
	const capacity = 8
	const passengers = 16

	f := newBookingFixture()
	f.addScheduledRide("r1", baseTime.Add(time.Hour), baseTime.Add(2*time.Hour), capacity)
	for i := 0; i < passengers; i++ {
		f.addPassenger(fmt.Sprintf("p%d", i), "Pass", fmt.Sprintf("Enger%d", i))
	}

	// Every passenger books; half of them cancel concurrently with the
	// remaining bookings.
	var wg sync.WaitGroup
	for i := 0; i < passengers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("p%d", i)
			if _, err := f.svc.Create(context.Background(), id, "r1"); err != nil {
				return
			}
			if i%2 == 0 {
				if _, err := f.svc.Cancel(context.Background(), "r1", id); err != nil {
					t.Errorf("cancel %s: %v", id, err)
				}
			}
		}(i)
	}
	wg.Wait()

	ride := f.rides.GetRide("r1")
	booked := f.bookings.CountByStatus("r1", domain.BookingStatusBooked)

	if booked > capacity {
		t.Errorf("BOOKED count %d exceeds capacity %d", booked, capacity)
	}
	if ride.SeatsAvailable < 0 || ride.SeatsAvailable > ride.Capacity {
		t.Errorf("seats_available out of bounds: %d", ride.SeatsAvailable)
	}
	if ride.SeatsAvailable != ride.Capacity-booked {
		t.Errorf("seats_available %d does not reconcile with capacity %d - booked %d",
			ride.SeatsAvailable, ride.Capacity, booked)
	}
}
