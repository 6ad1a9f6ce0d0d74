package activity

import (
	"context"
	"time"

	"ardhi/pkg/domain"
)

// Store is the append-only persistence for the activity trail. There is no
// update and no delete by design; the trail is the audit record.
//
// All list methods return records sorted descending by timestamp, with id
// as tiebreaker (ids are time-ordered).
type Store interface {
	Append(ctx context.Context, rec Record) error
	// ListAll returns the full trail (admin view).
	ListAll(ctx context.Context) ([]Record, error)
	// ListByActor returns records where the actor matches.
	ListByActor(ctx context.Context, actorID domain.UserID) ([]Record, error)
	// ListByDocument returns records whose metadata references the document.
	ListByDocument(ctx context.Context, documentID domain.DocumentID) ([]Record, error)
	// ListByRange returns records with start <= timestamp <= end.
	ListByRange(ctx context.Context, start, end time.Time) ([]Record, error)
	// ListByKind returns records of one kind.
	ListByKind(ctx context.Context, kind Kind) ([]Record, error)
}
