// Package transfer runs the ownership-transfer wizard: a four-step state
// machine from capturing the proposed new owner's details through to a
// submitted request, plus the admin decision that actually moves
// ownership. A completed wizard is a submission, not an ownership change.
package transfer

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
	"ardhi/internal/platform/metrics"
	"ardhi/internal/property"
	"ardhi/internal/user"
	"ardhi/pkg/domain"
	dErrors "ardhi/pkg/domain-errors"
	"ardhi/pkg/platform/sentinel"
	"ardhi/pkg/requestcontext"
)

// PropertyService is the slice of the property lifecycle the workflow
// drives: reading the parcel, re-opening verification on submission, and
// reassigning ownership on admin approval.
type PropertyService interface {
	Get(ctx context.Context, id domain.PropertyID) (property.Property, error)
	ReopenForTransfer(ctx context.Context, id domain.PropertyID) (property.Property, error)
	ReassignOwner(ctx context.Context, id domain.PropertyID, newOwner domain.UserID) (property.Property, error)
}

// UserDirectory resolves acting users and matches the proposed owner's
// email to a registered account.
type UserDirectory interface {
	GetByID(ctx context.Context, id domain.UserID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

// ActivityRecorder appends to the audit trail.
type ActivityRecorder interface {
	Record(ctx context.Context, actorID domain.UserID, actorName string, kind activity.Kind, description string, meta activity.Metadata) activity.Record
}

// Service implements the wizard and the admin decision. Every step
// transition is copy-validate-commit: a failed validation returns before
// anything is written, so the stored request never moves on failure.
type Service struct {
	store      Store
	properties PropertyService
	users      UserDirectory
	activity   ActivityRecorder
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
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
func New(store Store, properties PropertyService, users UserDirectory, opts ...Option) *Service {
	s := &Service{
		store:      store,
		properties: properties,
		users:      users,
		logger:     slog.Default(),
		tracer:     otel.Tracer("ardhi/internal/transfer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a transfer wizard on a property. Only the current owner can
// start one.
func (s *Service) Start(ctx context.Context, propertyID domain.PropertyID) (TransferRequest, error) {
	ctx, span := s.tracer.Start(ctx, "transfer.Start",
		trace.WithAttributes(attribute.String("property.id", propertyID.String())))
	defer span.End()

	p, err := s.properties.Get(ctx, propertyID)
	if err != nil {
		return TransferRequest{}, err
	}
	actor, err := s.actor(ctx)
	if err != nil {
		return TransferRequest{}, err
	}
	if actor.ID != p.UserID {
		return TransferRequest{}, dErrors.New(dErrors.CodeForbidden, "only the current owner can start a transfer")
	}

	now := requestcontext.Now(ctx)
	req := TransferRequest{
		ID:         domain.NewTransferID(),
		PropertyID: p.ID,
		FromUserID: p.UserID,
		Status:     StatusPending,
		Step:       StepDetails,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, req); err != nil {
		return TransferRequest{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store transfer request")
	}
	return req, nil
}

// Get returns one request, visible to its initiator and to admins.
func (s *Service) Get(ctx context.Context, id domain.TransferID) (TransferRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return TransferRequest{}, err
	}
	actor, err := s.actor(ctx)
	if err != nil {
		return TransferRequest{}, err
	}
	if !access.CanViewUserData(actor, req.FromUserID) {
		return TransferRequest{}, dErrors.New(dErrors.CodeForbidden, "not allowed to view this transfer")
	}
	return req, nil
}

// ListByProperty returns a property's requests, newest first.
func (s *Service) ListByProperty(ctx context.Context, propertyID domain.PropertyID) ([]TransferRequest, error) {
	reqs, err := s.store.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list transfer requests")
	}
	return reqs, nil
}

// ListByUser returns requests started by the user, newest first.
func (s *Service) ListByUser(ctx context.Context, userID domain.UserID) ([]TransferRequest, error) {
	reqs, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list transfer requests")
	}
	return reqs, nil
}

// List returns every request, newest first. Admin listings only; the
// transport layer gates it.
func (s *Service) List(ctx context.Context) ([]TransferRequest, error) {
	reqs, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list transfer requests")
	}
	return reqs, nil
}

// Advance merges the submitted form and moves the wizard one step
// forward. Validation failures leave the stored request untouched.
func (s *Service) Advance(ctx context.Context, id domain.TransferID, form Form) (TransferRequest, error) {
	ctx, span := s.tracer.Start(ctx, "transfer.Advance",
		trace.WithAttributes(attribute.String("transfer.id", id.String())))
	defer span.End()

	req, actor, err := s.loadForWizard(ctx, id)
	if err != nil {
		return TransferRequest{}, err
	}
	if req.Step == StepCompleted {
		return TransferRequest{}, dErrors.New(dErrors.CodeInvalidTransition, "transfer wizard is already completed")
	}

	// Work on a copy; nothing is written until the step validates.
	next := req
	next.NewOwner = form.NewOwner
	next.TransferReason = strings.TrimSpace(form.TransferReason)
	next.Notes = form.Notes
	next.InfoConfirmed = form.InfoConfirmed
	next.FinalConfirmed = form.FinalConfirmed

	switch req.Step {
	case StepDetails:
		if !next.NewOwner.Complete() || next.TransferReason == "" || !next.InfoConfirmed {
			return TransferRequest{}, dErrors.New(dErrors.CodeIncompleteForm,
				"all new-owner fields, a transfer reason, and the information confirmation are required")
		}
		next.Step = StepVerification

	case StepVerification:
		// Deliberately ungated: supporting documents are attached here
		// but their completeness is not checked before moving on.
		next.Step = StepConfirmation
		next.Status = StatusVerified

	case StepConfirmation:
		if !next.FinalConfirmed {
			return TransferRequest{}, dErrors.New(dErrors.CodeConfirmationRequired,
				"final confirmation is required to submit the transfer")
		}
		code, err := NewTransactionCode()
		if err != nil {
			return TransferRequest{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate transaction code")
		}
		next.Step = StepCompleted
		next.TransactionCode = code
		// The wizard finishing means "submitted for review", so the
		// request goes back to pending for the admin decision.
		next.Status = StatusPending

	default:
		return TransferRequest{}, dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("unknown wizard step %q", req.Step))
	}

	next.UpdatedAt = requestcontext.Now(ctx)

	// On the final step the property side effect runs before the request
	// is committed: re-opening verification proves the parcel still
	// exists, so a vanished property fails the advance with the stored
	// request untouched.
	var reopened property.Property
	if next.Step == StepCompleted {
		p, err := s.properties.ReopenForTransfer(ctx, next.PropertyID)
		if err != nil {
			return TransferRequest{}, err
		}
		reopened = p
	}

	if err := s.save(ctx, next); err != nil {
		return TransferRequest{}, err
	}

	if next.Step == StepCompleted {
		if s.metrics != nil {
			s.metrics.TransfersCompleted.Inc()
		}
		if s.activity != nil {
			propID := reopened.ID
			s.activity.Record(ctx, actor.ID, actor.Name, activity.KindPropertyUpdate,
				"Submitted ownership transfer for: "+reopened.Title,
				activity.Metadata{PropertyID: &propID, PropertyTitle: reopened.Title})
		}
	}
	return next, nil
}

// Back moves the wizard one step backward. Allowed everywhere except out
// of the completed step; at the first step it is a no-op.
func (s *Service) Back(ctx context.Context, id domain.TransferID) (TransferRequest, error) {
	req, _, err := s.loadForWizard(ctx, id)
	if err != nil {
		return TransferRequest{}, err
	}
	if req.Step == StepCompleted {
		return TransferRequest{}, dErrors.New(dErrors.CodeInvalidTransition, "a completed transfer cannot be reopened")
	}
	prev := req.Step.Prev()
	if prev == req.Step {
		return req, nil
	}
	req.Step = prev
	req.UpdatedAt = requestcontext.Now(ctx)
	if err := s.save(ctx, req); err != nil {
		return TransferRequest{}, err
	}
	return req, nil
}

// Approve is the admin decision that actually moves ownership: the
// proposed owner's email must resolve to a registered account, the
// property is reassigned, and the request becomes completed. The
// self-dealing guard applies to the property's current owner.
func (s *Service) Approve(ctx context.Context, id domain.TransferID) (TransferRequest, error) {
	ctx, span := s.tracer.Start(ctx, "transfer.Approve",
		trace.WithAttributes(attribute.String("transfer.id", id.String())))
	defer span.End()

	req, err := s.load(ctx, id)
	if err != nil {
		return TransferRequest{}, err
	}
	p, err := s.properties.Get(ctx, req.PropertyID)
	if err != nil {
		return TransferRequest{}, err
	}
	actor, err := s.actor(ctx)
	if err != nil {
		return TransferRequest{}, err
	}
	if !access.CanApproveProperty(actor, p.UserID) {
		return TransferRequest{}, dErrors.New(dErrors.CodeForbidden, "transfer approval requires an admin who is not the owner")
	}
	if req.Step != StepCompleted || req.Status != StatusPending {
		return TransferRequest{}, dErrors.New(dErrors.CodeInvalidTransition, "only submitted transfers can be approved")
	}

	newOwner, err := s.users.GetByEmail(ctx, req.NewOwner.Email)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return TransferRequest{}, dErrors.New(dErrors.CodeUnknownOwner,
				"proposed owner's email does not match a registered user")
		}
		return TransferRequest{}, err
	}

	if _, err := s.properties.ReassignOwner(ctx, req.PropertyID, newOwner.ID); err != nil {
		return TransferRequest{}, err
	}

	req.Status = StatusCompleted
	req.UpdatedAt = requestcontext.Now(ctx)
	if err := s.save(ctx, req); err != nil {
		return TransferRequest{}, err
	}

	if s.activity != nil {
		propID := p.ID
		s.activity.Record(ctx, actor.ID, actor.Name, activity.KindPropertyUpdate,
			"Approved ownership transfer of: "+p.Title,
			activity.Metadata{PropertyID: &propID, PropertyTitle: p.Title})
	}
	return req, nil
}

// Reject is the admin decision declining a submitted transfer. Ownership
// stays where it is.
func (s *Service) Reject(ctx context.Context, id domain.TransferID) (TransferRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return TransferRequest{}, err
	}
	p, err := s.properties.Get(ctx, req.PropertyID)
	if err != nil {
		return TransferRequest{}, err
	}
	actor, err := s.actor(ctx)
	if err != nil {
		return TransferRequest{}, err
	}
	if !access.CanRejectProperty(actor, p.UserID) {
		return TransferRequest{}, dErrors.New(dErrors.CodeForbidden, "transfer rejection requires an admin who is not the owner")
	}
	if req.Status == StatusCompleted || req.Status == StatusRejected {
		return TransferRequest{}, dErrors.New(dErrors.CodeInvalidTransition, "transfer is already decided")
	}

	req.Status = StatusRejected
	req.UpdatedAt = requestcontext.Now(ctx)
	if err := s.save(ctx, req); err != nil {
		return TransferRequest{}, err
	}

	if s.activity != nil {
		propID := p.ID
		s.activity.Record(ctx, actor.ID, actor.Name, activity.KindPropertyUpdate,
			"Rejected ownership transfer of: "+p.Title,
			activity.Metadata{PropertyID: &propID, PropertyTitle: p.Title})
	}
	return req, nil
}

func (s *Service) load(ctx context.Context, id domain.TransferID) (TransferRequest, error) {
	req, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return TransferRequest{}, dErrors.New(dErrors.CodeNotFound, "transfer request not found")
		}
		return TransferRequest{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load transfer request")
	}
	return req, nil
}

// loadForWizard loads a request and checks the actor may drive its
// wizard: the initiator, or an admin.
func (s *Service) loadForWizard(ctx context.Context, id domain.TransferID) (TransferRequest, user.User, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return TransferRequest{}, user.User{}, err
	}
	actor, err := s.actor(ctx)
	if err != nil {
		return TransferRequest{}, user.User{}, err
	}
	if actor.ID != req.FromUserID && !access.IsAdmin(actor) {
		return TransferRequest{}, user.User{}, dErrors.New(dErrors.CodeForbidden, "not allowed to modify this transfer")
	}
	return req, actor, nil
}

func (s *Service) save(ctx context.Context, req TransferRequest) error {
	if err := s.store.Save(ctx, req); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "transfer request not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save transfer request")
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
