package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"ridebooking/internal/domain"
	"ridebooking/internal/repository"
)

// uniqueViolation is the postgres error code raised when an insert hits the
// partial unique index on (ride_id, passenger_id) WHERE status = 'BOOKED'.
const uniqueViolation = "23505"

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	db *sql.DB
	q  Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db, q: db}
}

const bookingColumns = `id, ride_id, passenger_id, status, created_at, cancelled_at`

// Create persists a new booking and decrements the ride's seat count in one
// transaction. The ride row is locked for the duration so that concurrent
// creations for the same ride serialize; the partial unique index rejects a
// second BOOKED booking for the same (ride, passenger) pair.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var seats int
	err = tx.QueryRowContext(ctx,
		`SELECT seats_available FROM rides WHERE id = $1 FOR UPDATE`,
		booking.RideID,
	).Scan(&seats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("lock ride: %w", err)
	}

	if seats < 1 {
		return repository.ErrInsufficientSeats
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bookings (`+bookingColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		booking.ID,
		booking.RideID,
		booking.PassengerID,
		booking.Status,
		booking.CreatedAt,
		nullTime(booking.CancelledAt),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE rides SET seats_available = seats_available - 1 WHERE id = $1`,
		booking.RideID,
	)
	if err != nil {
		return fmt.Errorf("decrement seats: %w", err)
	}

	return tx.Commit()
}

// GetByRideAndPassenger retrieves the most recent booking for the pair.
func (r *BookingRepository) GetByRideAndPassenger(ctx context.Context, rideID, passengerID string) (*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE ride_id = $1 AND passenger_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, rideID, passengerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return booking, nil
}

// GetByRide retrieves all bookings for a ride in insertion order.
func (r *BookingRepository) GetByRide(ctx context.Context, rideID string) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE ride_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.q.QueryContext(ctx, query, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

// GetBookedByPassenger retrieves the passenger's BOOKED bookings.
func (r *BookingRepository) GetBookedByPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE passenger_id = $1 AND status = $2
		ORDER BY created_at, id
	`

	rows, err := r.q.QueryContext(ctx, query, passengerID, domain.BookingStatusBooked)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

// Update updates an existing booking. When the update is a cancellation the
// ride's seat is returned in the same transaction.
func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = $1, cancelled_at = $2 WHERE id = $3 AND status = $4`,
		booking.Status,
		nullTime(booking.CancelledAt),
		booking.ID,
		domain.BookingStatusBooked,
	)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	if booking.Status == domain.BookingStatusCancelled {
		_, err = tx.ExecContext(ctx,
			`UPDATE rides SET seats_available = seats_available + 1
			 WHERE id = $1 AND seats_available < capacity`,
			booking.RideID,
		)
		if err != nil {
			return fmt.Errorf("return seat: %w", err)
		}
	}

	return tx.Commit()
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func scanBooking(s scanner) (*domain.Booking, error) {
	var booking domain.Booking
	var cancelledAt sql.NullTime
	err := s.Scan(
		&booking.ID,
		&booking.RideID,
		&booking.PassengerID,
		&booking.Status,
		&booking.CreatedAt,
		&cancelledAt,
	)
	if err != nil {
		return nil, err
	}
	if cancelledAt.Valid {
		booking.CancelledAt = cancelledAt.Time
	}
	return &booking, nil
}

func collectBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}
