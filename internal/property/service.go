// Package property owns the land-parcel records: creation, partial
// updates, the admin verification cycle, delete cascades, and the
// portfolio stats aggregation.
package property

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ardhi/internal/access"
	"ardhi/internal/activity"
	"ardhi/internal/document"
	"ardhi/internal/platform/metrics"
	"ardhi/internal/user"
	"ardhi/pkg/domain"
	dErrors "ardhi/pkg/domain-errors"
	"ardhi/pkg/platform/sentinel"
	"ardhi/pkg/requestcontext"
)

const defaultCurrency = "KES"

// UserDirectory resolves owners and acting users.
type UserDirectory interface {
	GetByID(ctx context.Context, id domain.UserID) (user.User, error)
}

// ActivityRecorder appends to the audit trail.
type ActivityRecorder interface {
	Record(ctx context.Context, actorID domain.UserID, actorName string, kind activity.Kind, description string, meta activity.Metadata) activity.Record
}

// TransferGuard is the slice of the transfer workflow the delete path
// consults. An open request (neither completed nor rejected) blocks the
// delete; decided history is swept together with the property. Satisfied
// by the transfer store.
type TransferGuard interface {
	CountOpenByProperty(ctx context.Context, propertyID domain.PropertyID) (int, error)
	DeleteByProperty(ctx context.Context, propertyID domain.PropertyID) error
}

// Service implements the property lifecycle. Status moves only through
// the explicit transitions here; nothing is inferred from document state.
type Service struct {
	store     Store
	documents document.Store
	users     UserDirectory
	activity  ActivityRecorder
	transfers TransferGuard
	cache     *StatsCache
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

func WithActivity(rec ActivityRecorder) Option {
	return func(s *Service) { s.activity = rec }
}

func WithStatsCache(cache *StatsCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithTransferGuard(guard TransferGuard) Option {
	return func(s *Service) { s.transfers = guard }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(store Store, documents document.Store, users UserDirectory, opts ...Option) *Service {
	s := &Service{
		store:     store,
		documents: documents,
		users:     users,
		logger:    slog.Default(),
		tracer:    otel.Tracer("ardhi/internal/property"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new property under ownerID, always in the pending
// state regardless of what the draft claims elsewhere.
func (s *Service) Create(ctx context.Context, ownerID domain.UserID, draft Draft) (Property, error) {
	ctx, span := s.tracer.Start(ctx, "property.Create")
	defer span.End()

	draft.Title = strings.TrimSpace(draft.Title)
	draft.Location = strings.TrimSpace(draft.Location)
	if draft.Title == "" || draft.Location == "" {
		return Property{}, dErrors.New(dErrors.CodeValidation, "title and location are required")
	}
	if !draft.Type.Valid() {
		return Property{}, dErrors.New(dErrors.CodeValidation, "unknown property type")
	}
	if draft.Value < 0 {
		return Property{}, dErrors.New(dErrors.CodeValidation, "value cannot be negative")
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return Property{}, dErrors.New(dErrors.CodeUnknownOwner, "owner is not a registered user")
		}
		return Property{}, err
	}

	now := requestcontext.Now(ctx)
	p := Property{
		ID:        domain.NewPropertyID(),
		UserID:    owner.ID,
		Title:     draft.Title,
		Type:      draft.Type,
		Location:  draft.Location,
		Size:      draft.Size,
		Status:    StatusPending,
		Value:     draft.Value,
		Currency:  draft.Currency,
		Lat:       draft.Lat,
		Lng:       draft.Lng,
		Documents: []domain.DocumentID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.Currency == "" {
		p.Currency = defaultCurrency
	}
	span.SetAttributes(attribute.String("property.id", p.ID.String()))

	if err := s.store.Create(ctx, p); err != nil {
		return Property{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store property")
	}

	if s.metrics != nil {
		s.metrics.PropertiesCreated.Inc()
	}
	if s.activity != nil {
		s.activity.Record(ctx, owner.ID, owner.Name, activity.KindPropertyCreate,
			activity.KindPropertyCreate.Verb()+" "+p.Title, propertyMeta(p))
	}
	s.cache.Invalidate(ctx, owner.ID)
	return p, nil
}

// Get returns one property with its document ids attached in upload
// order.
func (s *Service) Get(ctx context.Context, id domain.PropertyID) (Property, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Property{}, dErrors.New(dErrors.CodeNotFound, "property not found")
		}
		return Property{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load property")
	}
	if err := s.attachDocuments(ctx, &p); err != nil {
		return Property{}, err
	}
	return p, nil
}

// ResolveProperty implements the document lifecycle's property lookup.
func (s *Service) ResolveProperty(ctx context.Context, id domain.PropertyID) (document.PropertyRef, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return document.PropertyRef{}, dErrors.New(dErrors.CodeNotFound, "property not found")
		}
		return document.PropertyRef{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load property")
	}
	return document.PropertyRef{ID: p.ID, OwnerID: p.UserID, Title: p.Title}, nil
}

// ListByOwner returns the owner's properties, newest first.
func (s *Service) ListByOwner(ctx context.Context, ownerID domain.UserID) ([]Property, error) {
	props, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list properties")
	}
	for i := range props {
		if err := s.attachDocuments(ctx, &props[i]); err != nil {
			return nil, err
		}
	}
	return props, nil
}

// List returns every property, newest first. Admin listings only; the
// transport layer gates it.
func (s *Service) List(ctx context.Context) ([]Property, error) {
	props, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list properties")
	}
	for i := range props {
		if err := s.attachDocuments(ctx, &props[i]); err != nil {
			return nil, err
		}
	}
	return props, nil
}

// Update merges a partial update into the property's mutable fields and
// bumps updatedAt. Owner or admin only.
func (s *Service) Update(ctx context.Context, id domain.PropertyID, upd Update) (Property, error) {
	ctx, span := s.tracer.Start(ctx, "property.Update",
		trace.WithAttributes(attribute.String("property.id", id.String())))
	defer span.End()

	p, err := s.Get(ctx, id)
	if err != nil {
		return Property{}, err
	}
	actor, err := s.actor(ctx)
	if err != nil {
		return Property{}, err
	}
	if !access.CanEditProperty(actor, p.UserID) {
		return Property{}, dErrors.New(dErrors.CodeForbidden, "not allowed to update this property")
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return Property{}, dErrors.New(dErrors.CodeValidation, "title cannot be empty")
		}
		p.Title = title
	}
	if upd.Type != nil {
		if !upd.Type.Valid() {
			return Property{}, dErrors.New(dErrors.CodeValidation, "unknown property type")
		}
		p.Type = *upd.Type
	}
	if upd.Location != nil {
		p.Location = strings.TrimSpace(*upd.Location)
	}
	if upd.Size != nil {
		p.Size = *upd.Size
	}
	if upd.Value != nil {
		if *upd.Value < 0 {
			return Property{}, dErrors.New(dErrors.CodeValidation, "value cannot be negative")
		}
		p.Value = *upd.Value
	}
	if upd.Currency != nil {
		p.Currency = *upd.Currency
	}
	if upd.Lat != nil {
		p.Lat = upd.Lat
	}
	if upd.Lng != nil {
		p.Lng = upd.Lng
	}
	p.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Save(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Property{}, dErrors.New(dErrors.CodeNotFound, "property not found")
		}
		return Property{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save property")
	}

	if s.activity != nil {
		s.activity.Record(ctx, actor.ID, actor.Name, activity.KindPropertyUpdate,
			activity.KindPropertyUpdate.Verb()+" "+p.Title, propertyMeta(p))
	}
	s.cache.Invalidate(ctx, p.UserID)
	return p, nil
}

// Delete removes a property and every document attached to it. A second
// delete of the same id reports not found; idempotence is deliberately
// not offered.
func (s *Service) Delete(ctx context.Context, id domain.PropertyID) error {
	ctx, span := s.tracer.Start(ctx, "property.Delete",
		trace.WithAttributes(attribute.String("property.id", id.String())))
	defer span.End()

	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	actor, err := s.actor(ctx)
	if err != nil {
		return err
	}
	if !access.CanEditProperty(actor, p.UserID) {
		return dErrors.New(dErrors.CodeForbidden, "not allowed to delete this property")
	}
	if s.transfers != nil {
		open, err := s.transfers.CountOpenByProperty(ctx, id)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check transfer requests")
		}
		if open > 0 {
			return dErrors.New(dErrors.CodeConflict, "property has open transfer requests; decide them first")
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "property not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete property")
	}
	// The SQL schema cascades these through the foreign keys; the memory
	// stores need the sweeps. Running them twice is harmless.
	if err := s.documents.DeleteByProperty(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete property documents")
	}
	if s.transfers != nil {
		if err := s.transfers.DeleteByProperty(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete property transfer history")
		}
	}

	if s.activity != nil {
		s.activity.Record(ctx, actor.ID, actor.Name, activity.KindPropertyDelete,
			activity.KindPropertyDelete.Verb()+" "+p.Title, activity.Metadata{})
	}
	s.cache.Invalidate(ctx, p.UserID)
	return nil
}

// Approve verifies a pending property. Only an admin who does not own it
// may approve; an admin reviewing their own submission is self-dealing.
func (s *Service) Approve(ctx context.Context, id domain.PropertyID) (Property, error) {
	return s.review(ctx, id, StatusVerified)
}

// Reject declines a pending property. Same guard as Approve.
func (s *Service) Reject(ctx context.Context, id domain.PropertyID) (Property, error) {
	return s.review(ctx, id, StatusRejected)
}

func (s *Service) review(ctx context.Context, id domain.PropertyID, target Status) (Property, error) {
	ctx, span := s.tracer.Start(ctx, "property.review",
		trace.WithAttributes(
			attribute.String("property.id", id.String()),
			attribute.String("property.target_status", string(target)),
		))
	defer span.End()

	p, err := s.Get(ctx, id)
	if err != nil {
		return Property{}, err
	}
	actor, err := s.actor(ctx)
	if err != nil {
		return Property{}, err
	}
	allowed := access.CanApproveProperty(actor, p.UserID)
	if target == StatusRejected {
		allowed = access.CanRejectProperty(actor, p.UserID)
	}
	if !allowed {
		return Property{}, dErrors.New(dErrors.CodeForbidden, "property review requires an admin who is not the owner")
	}

	now := requestcontext.Now(ctx)
	if err := s.store.Transition(ctx, id, StatusPending, target, now); err != nil {
		return Property{}, s.transitionError(err, p.Status)
	}
	p.Status = target
	p.UpdatedAt = now

	if target == StatusVerified {
		if s.metrics != nil {
			s.metrics.PropertiesVerified.Inc()
		}
		if s.activity != nil {
			s.activity.Record(ctx, actor.ID, actor.Name, activity.KindPropertyVerify,
				activity.KindPropertyVerify.Verb()+" "+p.Title, propertyMeta(p))
		}
	} else if s.activity != nil {
		s.activity.Record(ctx, actor.ID, actor.Name, activity.KindPropertyUpdate,
			"Rejected property: "+p.Title, propertyMeta(p))
	}
	s.cache.Invalidate(ctx, p.UserID)
	return p, nil
}

// Reset moves a rejected property back to pending. There is no shortcut
// from rejected to verified; the property re-enters review instead. Admin
// action, always logged.
func (s *Service) Reset(ctx context.Context, id domain.PropertyID) (Property, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Property{}, err
	}
	actor, err := s.actor(ctx)
	if err != nil {
		return Property{}, err
	}
	if !access.IsAdmin(actor) {
		return Property{}, dErrors.New(dErrors.CodeForbidden, "property reset is an admin action")
	}

	now := requestcontext.Now(ctx)
	if err := s.store.Transition(ctx, id, StatusRejected, StatusPending, now); err != nil {
		return Property{}, s.transitionError(err, p.Status)
	}
	p.Status = StatusPending
	p.UpdatedAt = now

	if s.activity != nil {
		s.activity.Record(ctx, actor.ID, actor.Name, activity.KindPropertyUpdate,
			"Reset property for re-verification: "+p.Title, propertyMeta(p))
	}
	s.cache.Invalidate(ctx, p.UserID)
	return p, nil
}

// ReopenForTransfer re-opens verification when a transfer request
// completes: whatever the property's status, it returns to pending for
// re-verification under the proposed new owner. The transfer workflow
// writes the audit entry.
func (s *Service) ReopenForTransfer(ctx context.Context, id domain.PropertyID) (Property, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Property{}, err
	}
	p.Status = StatusPending
	p.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Save(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Property{}, dErrors.New(dErrors.CodeNotFound, "property not found")
		}
		return Property{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save property")
	}
	s.cache.Invalidate(ctx, p.UserID)
	return p, nil
}

// ReassignOwner moves the property to a new owner. Only the transfer
// workflow's admin approval calls this; partial updates can never touch
// ownership.
func (s *Service) ReassignOwner(ctx context.Context, id domain.PropertyID, newOwner domain.UserID) (Property, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Property{}, err
	}
	owner, err := s.users.GetByID(ctx, newOwner)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return Property{}, dErrors.New(dErrors.CodeUnknownOwner, "new owner is not a registered user")
		}
		return Property{}, err
	}

	previousOwner := p.UserID
	p.UserID = owner.ID
	p.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Save(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Property{}, dErrors.New(dErrors.CodeNotFound, "property not found")
		}
		return Property{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save property")
	}

	s.cache.Invalidate(ctx, previousOwner)
	s.cache.Invalidate(ctx, owner.ID)
	return p, nil
}

// ComputeStats aggregates the user's portfolio. TotalValue sums every
// property regardless of status. Served from Redis when a fresh entry
// exists; the cache is invalidated by every portfolio mutation.
func (s *Service) ComputeStats(ctx context.Context, userID domain.UserID) (Stats, error) {
	ctx, span := s.tracer.Start(ctx, "property.ComputeStats",
		trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer span.End()

	if st, ok := s.cache.Get(ctx, userID); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return st, nil
	}

	props, err := s.store.ListByOwner(ctx, userID)
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list properties")
	}

	st := Stats{Currency: defaultCurrency}
	ids := make([]domain.PropertyID, 0, len(props))
	for _, p := range props {
		st.TotalProperties++
		st.TotalValue += p.Value
		switch p.Status {
		case StatusVerified:
			st.VerifiedProperties++
		case StatusPending:
			st.PendingProperties++
		}
		ids = append(ids, p.ID)
	}
	if len(props) > 0 {
		st.Currency = props[0].Currency
	}

	pendingDocs, err := s.documents.CountPendingByProperties(ctx, ids)
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count pending documents")
	}
	st.PendingDocuments = pendingDocs

	s.cache.Set(ctx, userID, st)
	return st, nil
}

func (s *Service) attachDocuments(ctx context.Context, p *Property) error {
	docs, err := s.documents.ListByProperty(ctx, p.ID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list property documents")
	}
	p.Documents = make([]domain.DocumentID, 0, len(docs))
	for _, doc := range docs {
		p.Documents = append(p.Documents, doc.ID)
	}
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

func (s *Service) transitionError(err error, current Status) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "property not found")
	}
	if errors.Is(err, sentinel.ErrInvalidState) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("property is %s, transition not allowed", current))
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to transition property")
}

func propertyMeta(p Property) activity.Metadata {
	id := p.ID
	return activity.Metadata{PropertyID: &id, PropertyTitle: p.Title}
}
