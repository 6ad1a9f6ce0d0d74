package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ardhi/internal/activity"
	"ardhi/pkg/domain"
	dErrors "ardhi/pkg/domain-errors"
	"ardhi/pkg/platform/sentinel"
	"ardhi/pkg/requestcontext"
)

// recentJoinWindow is the lookback used by the dashboard's "recent joins"
// counter.
const recentJoinWindow = 30 * 24 * time.Hour

// ActivityRecorder appends to the audit trail. Satisfied by
// activity.Service; split out so tests can assert on recorded entries.
type ActivityRecorder interface {
	Record(ctx context.Context, actorID domain.UserID, actorName string, kind activity.Kind, description string, meta activity.Metadata) activity.Record
}

// Service owns account lifecycle and profile management.
type Service struct {
	store    Store
	activity ActivityRecorder
	logger   *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithActivity(rec ActivityRecorder) Option {
	return func(s *Service) { s.activity = rec }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new account. The caller provides the password hash;
// this layer never sees cleartext credentials.
func (s *Service) Create(ctx context.Context, u User) (User, error) {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)
	if u.Name == "" || u.Email == "" {
		return User{}, dErrors.New(dErrors.CodeValidation, "name and email are required")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if !u.Role.Valid() {
		return User{}, dErrors.New(dErrors.CodeValidation, "unknown role")
	}
	if u.ID == (domain.UserID{}) {
		u.ID = domain.NewUserID()
	}
	now := requestcontext.Now(ctx)
	u.Active = true
	u.DateJoined = now
	u.UpdatedAt = now

	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return User{}, dErrors.New(dErrors.CodeDuplicateEmail, "email is already registered")
		}
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	return u, nil
}

// GetByID returns one account.
func (s *Service) GetByID(ctx context.Context, id domain.UserID) (User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return User{}, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return u, nil
}

// GetByEmail returns one account by email, matched case-insensitively.
func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	u, err := s.store.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return User{}, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return u, nil
}

// UpdateProfile applies a partial update to the mutable profile fields and
// records the change on the audit trail. Identity fields (id, email, role,
// join date) are untouched regardless of input.
func (s *Service) UpdateProfile(ctx context.Context, id domain.UserID, upd ProfileUpdate) (User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return User{}, dErrors.New(dErrors.CodeValidation, "name cannot be empty")
		}
		u.Name = name
	}
	if upd.Phone != nil {
		u.Phone = strings.TrimSpace(*upd.Phone)
	}
	if upd.NationalID != nil {
		u.NationalID = strings.TrimSpace(*upd.NationalID)
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Location != nil {
		u.Location = strings.TrimSpace(*upd.Location)
	}
	if upd.Avatar != nil {
		u.Avatar = strings.TrimSpace(*upd.Avatar)
	}
	u.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Save(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return User{}, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
	}

	if s.activity != nil {
		s.activity.Record(ctx, u.ID, u.Name, activity.KindProfileUpdate, "Updated profile information", activity.Metadata{})
	}
	return u, nil
}

// UpdateRole changes an account's role. Admin-only; authorization is
// enforced at the transport boundary.
func (s *Service) UpdateRole(ctx context.Context, id domain.UserID, role Role) (User, error) {
	if !role.Valid() {
		return User{}, dErrors.New(dErrors.CodeValidation, "unknown role")
	}
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	u.Role = role
	u.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Save(ctx, u); err != nil {
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
	}
	return u, nil
}

// SetVerification marks an account's identity documents as checked (or
// revokes that mark).
func (s *Service) SetVerification(ctx context.Context, id domain.UserID, verified bool) (User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	u.Verified = verified
	u.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Save(ctx, u); err != nil {
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
	}
	return u, nil
}

// SetActive toggles the soft lifecycle flag. Deactivated accounts stay in
// the store so the audit trail keeps resolving their actor.
func (s *Service) SetActive(ctx context.Context, id domain.UserID, active bool) (User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	u.Active = active
	u.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Save(ctx, u); err != nil {
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
	}
	return u, nil
}

// List returns every account, newest first.
func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// Search returns accounts whose name, email, national id, or phone
// contains the query, case-insensitively. An empty query matches everyone.
func (s *Service) Search(ctx context.Context, query string) ([]User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return users, nil
	}
	matched := make([]User, 0, len(users))
	for _, u := range users {
		if matchesQuery(u, q) {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

func matchesQuery(u User, q string) bool {
	for _, field := range []string{u.Name, u.Email, u.NationalID, u.Phone} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Filtered returns accounts passing every set predicate of the filter.
func (s *Service) Filtered(ctx context.Context, f Filter) ([]User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]User, 0, len(users))
	for _, u := range users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Verified != nil && u.Verified != *f.Verified {
			continue
		}
		if f.JoinedAfter != nil && u.DateJoined.Before(*f.JoinedAfter) {
			continue
		}
		if f.JoinedBefore != nil && u.DateJoined.After(*f.JoinedBefore) {
			continue
		}
		matched = append(matched, u)
	}
	return matched, nil
}

// Stats aggregates the dashboard counters over all accounts.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	users, err := s.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	cutoff := requestcontext.Now(ctx).Add(-recentJoinWindow)
	var st Stats
	for _, u := range users {
		st.Total++
		switch u.Role {
		case RoleAdmin:
			st.Admins++
		default:
			st.Users++
		}
		if u.Verified {
			st.Verified++
		} else {
			st.Unverified++
		}
		if !u.DateJoined.Before(cutoff) {
			st.RecentJoins++
		}
	}
	return st, nil
}

