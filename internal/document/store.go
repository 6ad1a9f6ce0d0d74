package document

import (
	"context"

	"ardhi/pkg/domain"
)

// Store persists documents. Implementations return sentinel.ErrNotFound
// for unknown ids; the service translates to coded errors.
type Store interface {
	Create(ctx context.Context, doc Document) error
	// Save overwrites an existing document. Returns sentinel.ErrNotFound
	// when the id is unknown.
	Save(ctx context.Context, doc Document) error
	FindByID(ctx context.Context, id domain.DocumentID) (Document, error)
	// ListByProperty returns the property's documents in upload order.
	// No matches is an empty slice, never an error.
	ListByProperty(ctx context.Context, propertyID domain.PropertyID) ([]Document, error)
	Delete(ctx context.Context, id domain.DocumentID) error
	// DeleteByProperty removes every document of a property, as part of
	// the property delete cascade. Removing zero documents is not an
	// error.
	DeleteByProperty(ctx context.Context, propertyID domain.PropertyID) error
	// CountPendingByProperties counts documents still pending across the
	// given properties, for the portfolio stats aggregation.
	CountPendingByProperties(ctx context.Context, propertyIDs []domain.PropertyID) (int, error)
}
