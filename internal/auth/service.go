// Package auth is the credential boundary: password hashing, token
// issuance, and the login/logout audit entries. Everything past this
// package trusts the identity in the request context.
package auth

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"ardhi/internal/activity"
	"ardhi/internal/user"
	"ardhi/pkg/domain"
	dErrors "ardhi/pkg/domain-errors"
	"ardhi/pkg/requestcontext"
)

const minPasswordLength = 8

// UserDirectory is the slice of the user service the auth flow needs.
type UserDirectory interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id domain.UserID) (user.User, error)
}

// ActivityRecorder appends to the audit trail.
type ActivityRecorder interface {
	Record(ctx context.Context, actorID domain.UserID, actorName string, kind activity.Kind, description string, meta activity.Metadata) activity.Record
}

// Service implements registration and session flows. Tokens are stateless;
// logout exists for the audit trail, not for revocation.
type Service struct {
	users    UserDirectory
	tokens   *TokenService
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
func New(users UserDirectory, tokens *TokenService, opts ...Option) *Service {
	s := &Service{users: users, tokens: tokens, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account from cleartext credentials. The password is
// hashed here and never stored or logged in clear.
func (s *Service) Register(ctx context.Context, name, email, password string) (user.User, error) {
	if len(password) < minPasswordLength {
		return user.User{}, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	u, err := s.users.Create(ctx, user.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         user.RoleUser,
	})
	if err != nil {
		return user.User{}, err
	}

	if s.activity != nil {
		s.activity.Record(ctx, u.ID, u.Name, activity.KindUserRegister, "Registered an account", activity.Metadata{})
	}
	s.logger.InfoContext(ctx, "user registered",
		"user_id", u.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return u, nil
}

// Login verifies credentials and issues an access token. Unknown emails
// and wrong passwords return the same unauthorized error so the endpoint
// does not confirm which addresses are registered.
func (s *Service) Login(ctx context.Context, email, password string) (user.User, string, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return user.User{}, "", dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return user.User{}, "", err
	}
	if !u.Active {
		return user.User{}, "", dErrors.New(dErrors.CodeUnauthorized, "account is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return user.User{}, "", dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	token, err := s.tokens.Issue(u, requestcontext.Now(ctx))
	if err != nil {
		return user.User{}, "", err
	}

	if s.activity != nil {
		s.activity.Record(ctx, u.ID, u.Name, activity.KindUserLogin, "Logged in", activity.Metadata{})
	}
	return u, token, nil
}

// Logout records the end of a session for the authenticated user. The
// token itself stays valid until expiry.
func (s *Service) Logout(ctx context.Context) error {
	actorID := requestcontext.UserID(ctx)
	u, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if s.activity != nil {
		s.activity.Record(ctx, u.ID, u.Name, activity.KindUserLogout, "Logged out", activity.Metadata{})
	}
	return nil
}
