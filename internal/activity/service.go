// Package activity is the append-only audit trail. Every successful
// mutation elsewhere in the system records one entry here; the trail is
// never edited or pruned.
package activity

import (
	"context"
	"log/slog"
	"time"

	"ardhi/internal/platform/metrics"
	"ardhi/pkg/domain"
	"ardhi/pkg/requestcontext"
)

// Service appends and queries the trail. Record never fails the caller: a
// store error is logged and swallowed because audit loss is a durability
// concern for the store, not a reason to roll back the business operation
// that already committed.
type Service struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithPublisher fans records out to a broker after the store write.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends one entry to the trail. The id is time-ordered and the
// timestamp comes from the request context, so all records of one request
// agree. Client metadata is taken from the context when present.
func (s *Service) Record(ctx context.Context, actorID domain.UserID, actorName string, kind Kind, description string, meta Metadata) Record {
	rec := Record{
		ID:          domain.NewActivityID(),
		ActorUserID: actorID,
		ActorName:   actorName,
		Kind:        kind,
		Description: description,
		Metadata:    meta,
		ClientIP:    requestcontext.ClientIP(ctx),
		UserAgent:   requestcontext.UserAgent(ctx),
		Timestamp:   requestcontext.Now(ctx),
	}

	if err := s.store.Append(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "activity append failed",
			"error", err,
			"kind", string(kind),
			"actor_id", actorID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return rec
	}
	if s.metrics != nil {
		s.metrics.ActivitiesRecorded.Inc()
	}
	if s.publisher != nil {
		// Fan-out is best effort; the store write above is the source of truth.
		s.publisher.Publish(ctx, rec)
	}
	return rec
}

// QueryFor returns the trail visible to the given identity. Admins see the
// full log regardless of whose dashboard they are viewing; everyone else
// sees only their own records. Both orderings are newest first.
func (s *Service) QueryFor(ctx context.Context, userID domain.UserID, admin bool) ([]Record, error) {
	if admin {
		return s.store.ListAll(ctx)
	}
	return s.store.ListByActor(ctx, userID)
}

// QueryByDocument returns the trail entries referencing one document.
func (s *Service) QueryByDocument(ctx context.Context, documentID domain.DocumentID) ([]Record, error) {
	return s.store.ListByDocument(ctx, documentID)
}

// QueryByDateRange returns entries with start <= timestamp <= end.
func (s *Service) QueryByDateRange(ctx context.Context, start, end time.Time) ([]Record, error) {
	return s.store.ListByRange(ctx, start, end)
}

// QueryByKind returns entries of one kind.
func (s *Service) QueryByKind(ctx context.Context, kind Kind) ([]Record, error) {
	return s.store.ListByKind(ctx, kind)
}

// SystemView projects records into the admin system-activity shape,
// exposing the client metadata hidden from regular listings.
func SystemView(records []Record) []SystemRecord {
	out := make([]SystemRecord, 0, len(records))
	for _, r := range records {
		out = append(out, SystemRecord{Record: r, ClientIP: r.ClientIP, UserAgent: r.UserAgent})
	}
	return out
}
