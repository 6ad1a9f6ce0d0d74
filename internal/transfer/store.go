package transfer

import (
	"context"

	"ardhi/pkg/domain"
)

// Store persists transfer requests. Implementations return
// sentinel.ErrNotFound for unknown ids.
type Store interface {
	Create(ctx context.Context, req TransferRequest) error
	// Save overwrites an existing request. Returns sentinel.ErrNotFound
	// when the id is unknown.
	Save(ctx context.Context, req TransferRequest) error
	FindByID(ctx context.Context, id domain.TransferID) (TransferRequest, error)
	// ListByProperty returns a property's requests, newest first.
	ListByProperty(ctx context.Context, propertyID domain.PropertyID) ([]TransferRequest, error)
	// ListByUser returns requests started by the user, newest first.
	ListByUser(ctx context.Context, userID domain.UserID) ([]TransferRequest, error)
	// List returns every request, newest first. Admin listings only.
	List(ctx context.Context) ([]TransferRequest, error)
	// CountOpenByProperty counts a property's requests that are neither
	// completed nor rejected. The property delete path uses it to block
	// deletion while a transfer is still undecided.
	CountOpenByProperty(ctx context.Context, propertyID domain.PropertyID) (int, error)
	// DeleteByProperty removes a property's requests.
	DeleteByProperty(ctx context.Context, propertyID domain.PropertyID) error
}
