package property

import (
	"context"
	"time"

	"ardhi/pkg/domain"
)

//go:generate mockgen -source=store.go -destination=mocks/store.go -package=mocks

// Store persists properties. Implementations return sentinel errors:
// ErrNotFound for unknown ids, ErrInvalidState when a guarded transition
// finds the row in a different status than expected.
//
// The Documents field of Property is not persisted here; it is derived
// from the document store on read.
type Store interface {
	Create(ctx context.Context, p Property) error
	// Save overwrites an existing property. Returns sentinel.ErrNotFound
	// when the id is unknown.
	Save(ctx context.Context, p Property) error
	FindByID(ctx context.Context, id domain.PropertyID) (Property, error)
	// ListByOwner returns the owner's properties, newest first. No
	// matches is an empty slice, never an error.
	ListByOwner(ctx context.Context, ownerID domain.UserID) ([]Property, error)
	// List returns every property, newest first.
	List(ctx context.Context) ([]Property, error)
	// Delete removes the property row. Document cascade is the caller's
	// concern (the SQL schema cascades on the foreign key; the memory
	// document store is swept by the service).
	Delete(ctx context.Context, id domain.PropertyID) error
	// Transition moves status from -> to only if the row is currently in
	// from, so concurrent reviews serialize at the row. Returns
	// sentinel.ErrInvalidState when the row exists in another status.
	Transition(ctx context.Context, id domain.PropertyID, from, to Status, updatedAt time.Time) error
}
