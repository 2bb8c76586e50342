package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ridebooking/internal/domain"
	"ridebooking/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, origin, destination, departure_time, arrival_time, status, capacity, seats_available, created_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.Origin,
		ride.Destination,
		ride.DepartureTime,
		ride.ArrivalTime,
		ride.Status,
		ride.Capacity,
		ride.SeatsAvailable,
		ride.CreatedAt,
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// GetAll retrieves all rides, most recent first.
func (r *RideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRides(rows)
}

// GetByDepartureDate retrieves rides departing within [from, to).
func (r *RideRepository) GetByDepartureDate(ctx context.Context, from, to time.Time) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE departure_time >= $1 AND departure_time < $2
		ORDER BY departure_time
	`

	rows, err := r.q.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRides(rows)
}

// GetOverlapping retrieves rides whose window overlaps [from, to).
// Half-open comparison: boundary-touching rides are excluded.
func (r *RideRepository) GetOverlapping(ctx context.Context, from, to time.Time) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE departure_time < $2 AND arrival_time > $1
		ORDER BY departure_time
	`

	rows, err := r.q.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRides(rows)
}

// Update updates an existing ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides
		SET origin = $1, destination = $2, departure_time = $3, arrival_time = $4, status = $5, capacity = $6, seats_available = $7
		WHERE id = $8
	`

	result, err := r.q.ExecContext(ctx, query,
		ride.Origin,
		ride.Destination,
		ride.DepartureTime,
		ride.ArrivalTime,
		ride.Status,
		ride.Capacity,
		ride.SeatsAvailable,
		ride.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRide(s scanner) (*domain.Ride, error) {
	var ride domain.Ride
	err := s.Scan(
		&ride.ID,
		&ride.Origin,
		&ride.Destination,
		&ride.DepartureTime,
		&ride.ArrivalTime,
		&ride.Status,
		&ride.Capacity,
		&ride.SeatsAvailable,
		&ride.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

func collectRides(rows *sql.Rows) ([]*domain.Ride, error) {
	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}
