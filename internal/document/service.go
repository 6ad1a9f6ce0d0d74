// Package document tracks the verification lifecycle of evidence files
// attached to properties. Documents start pending and end approved or
// rejected; a rejected document is never reopened, re-submission is a new
// upload so the audit history stays intact.
package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ardhi/internal/access"
	"ardhi/internal/activity"
	"ardhi/internal/platform/metrics"
	"ardhi/internal/user"
	"ardhi/pkg/domain"
	dErrors "ardhi/pkg/domain-errors"
	"ardhi/pkg/platform/sentinel"
	"ardhi/pkg/requestcontext"
)

// PropertyRef is the slice of a property the document lifecycle needs:
// whose portfolio the document belongs to, and a display title for the
// audit trail.
type PropertyRef struct {
	ID      domain.PropertyID
	OwnerID domain.UserID
	Title   string
}

// PropertyResolver resolves a property reference. Implemented by the
// property service; returns a CodeNotFound error for unknown ids.
type PropertyResolver interface {
	ResolveProperty(ctx context.Context, id domain.PropertyID) (PropertyRef, error)
}

// UserDirectory loads the acting user for policy checks and audit naming.
type UserDirectory interface {
	GetByID(ctx context.Context, id domain.UserID) (user.User, error)
}

// ActivityRecorder appends to the audit trail.
type ActivityRecorder interface {
	Record(ctx context.Context, actorID domain.UserID, actorName string, kind activity.Kind, description string, meta activity.Metadata) activity.Record
}

// Service implements the document lifecycle. Review actions are gated on
// access.CanManageDocument against the owning property's owner.
type Service struct {
	store      Store
	properties PropertyResolver
	users      UserDirectory
	activity   ActivityRecorder
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

func WithActivity(rec ActivityRecorder) Option {
	return func(s *Service) { s.activity = rec }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(store Store, properties PropertyResolver, users UserDirectory, opts ...Option) *Service {
	s := &Service{store: store, properties: properties, users: users, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload attaches a new document to a property in the pending state.
func (s *Service) Upload(ctx context.Context, propertyID domain.PropertyID, up Upload) (Document, error) {
	up.Name = strings.TrimSpace(up.Name)
	up.URL = strings.TrimSpace(up.URL)
	if up.Name == "" || up.URL == "" {
		return Document{}, dErrors.New(dErrors.CodeValidation, "document name and url are required")
	}
	if !up.Type.Valid() {
		return Document{}, dErrors.New(dErrors.CodeValidation, "unknown document type")
	}

	ref, err := s.properties.ResolveProperty(ctx, propertyID)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:         domain.NewDocumentID(),
		PropertyID: ref.ID,
		Name:       up.Name,
		Type:       up.Type,
		URL:        up.URL,
		Status:     StatusPending,
		UploadedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, doc); err != nil {
		return Document{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document")
	}

	s.record(ctx, activity.KindDocumentUpload, doc, ref)
	return doc, nil
}

// Get returns one document.
func (s *Service) Get(ctx context.Context, id domain.DocumentID) (Document, error) {
	doc, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Document{}, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return Document{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	return doc, nil
}

// ListByProperty returns a property's documents in upload order.
func (s *Service) ListByProperty(ctx context.Context, propertyID domain.PropertyID) ([]Document, error) {
	docs, err := s.store.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return docs, nil
}

// Approve moves a pending document to approved.
func (s *Service) Approve(ctx context.Context, id domain.DocumentID) (Document, error) {
	return s.review(ctx, id, StatusApproved, "")
}

// Reject moves a pending document to rejected, recording the reason on
// the audit trail.
func (s *Service) Reject(ctx context.Context, id domain.DocumentID, reason string) (Document, error) {
	return s.review(ctx, id, StatusRejected, reason)
}

func (s *Service) review(ctx context.Context, id domain.DocumentID, target Status, reason string) (Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	ref, err := s.properties.ResolveProperty(ctx, doc.PropertyID)
	if err != nil {
		return Document{}, err
	}
	actor, err := s.actor(ctx)
	if err != nil {
		return Document{}, err
	}
	if !access.CanManageDocument(actor, ref.OwnerID) {
		return Document{}, dErrors.New(dErrors.CodeForbidden, "not allowed to review this document")
	}
	if doc.Status != StatusPending {
		return Document{}, dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("document is %s, only pending documents can be reviewed", doc.Status))
	}

	doc.Status = target
	if err := s.store.Save(ctx, doc); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Document{}, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return Document{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save document")
	}

	kind := activity.KindDocumentApprove
	outcome := "approved"
	if target == StatusRejected {
		kind = activity.KindDocumentReject
		outcome = "rejected"
	}
	if s.metrics != nil {
		s.metrics.DocumentsReviewed.WithLabelValues(outcome).Inc()
	}
	if s.activity != nil {
		desc := kind.Verb() + " " + doc.Name
		if reason != "" {
			desc += ": " + reason
		}
		s.activity.Record(ctx, actor.ID, actor.Name, kind, desc, activity.Metadata{
			DocumentID:    &doc.ID,
			DocumentName:  doc.Name,
			PropertyID:    &ref.ID,
			PropertyTitle: ref.Title,
		})
	}
	return doc, nil
}

// Download resolves a document for retrieval. The only side effect is the
// document_download audit entry.
func (s *Service) Download(ctx context.Context, id domain.DocumentID) (Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	ref, err := s.properties.ResolveProperty(ctx, doc.PropertyID)
	if err != nil {
		return Document{}, err
	}
	s.record(ctx, activity.KindDocumentDownload, doc, ref)
	return doc, nil
}

// Delete removes a document. Gated like review actions.
func (s *Service) Delete(ctx context.Context, id domain.DocumentID) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	ref, err := s.properties.ResolveProperty(ctx, doc.PropertyID)
	if err != nil {
		return err
	}
	actor, err := s.actor(ctx)
	if err != nil {
		return err
	}
	if !access.CanManageDocument(actor, ref.OwnerID) {
		return dErrors.New(dErrors.CodeForbidden, "not allowed to delete this document")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete document")
	}
	s.record(ctx, activity.KindDocumentDelete, doc, ref)
	return nil
}

func (s *Service) actor(ctx context.Context) (user.User, error) {
	actorID := requestcontext.UserID(ctx)
	u, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return user.User{}, dErrors.New(dErrors.CodeUnauthorized, "unknown acting user")
		}
		return user.User{}, err
	}
	return u, nil
}

func (s *Service) record(ctx context.Context, kind activity.Kind, doc Document, ref PropertyRef) {
	if s.activity == nil {
		return
	}
	actor, err := s.actor(ctx)
	if err != nil {
		// The mutation already committed; a missing actor only costs the
		// audit entry's name resolution.
		s.logger.WarnContext(ctx, "activity actor lookup failed", "error", err)
		return
	}
	s.activity.Record(ctx, actor.ID, actor.Name, kind, kind.Verb()+" "+doc.Name, activity.Metadata{
		DocumentID:    &doc.ID,
		DocumentName:  doc.Name,
		PropertyID:    &ref.ID,
		PropertyTitle: ref.Title,
	})
}
