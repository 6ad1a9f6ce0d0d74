package user

import (
	"context"

	"ardhi/pkg/domain"
)

// Store is interface-driven to keep domain logic testable and to allow
// swapping in-memory and PostgreSQL persistence without rewiring services.
//
// Stores return sentinel errors (sentinel.ErrNotFound,
// sentinel.ErrAlreadyUsed) for infrastructure facts; the service layer
// translates them into coded domain errors.
type Store interface {
	// Create persists a new user. Returns sentinel.ErrAlreadyUsed when the
	// email is taken (case-insensitive).
	Create(ctx context.Context, u User) error
	// Save overwrites an existing user. Returns sentinel.ErrNotFound when
	// the id is unknown.
	Save(ctx context.Context, u User) error
	FindByID(ctx context.Context, id domain.UserID) (User, error)
	// FindByEmail matches case-insensitively.
	FindByEmail(ctx context.Context, email string) (User, error)
	// List returns all users, newest DateJoined first.
	List(ctx context.Context) ([]User, error)
}
