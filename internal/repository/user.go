package repository

import (
	"context"

	"ridebooking/internal/domain"
)

// UserRepository defines the persistence operations for passengers.
type UserRepository interface {
	// Create adds a new passenger.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a passenger by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByPhone retrieves a passenger by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)

	// GetAll retrieves all passengers.
	GetAll(ctx context.Context) ([]*domain.User, error)
}
