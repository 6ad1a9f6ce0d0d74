package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ardhi/internal/activity"
	"ardhi/internal/user"
	"ardhi/pkg/domain"
	dErrors "ardhi/pkg/domain-errors"
	"ardhi/pkg/requestcontext"
)

type stubRecorder struct {
	kinds []activity.Kind
}

func (r *stubRecorder) Record(_ context.Context, _ domain.UserID, _ string, kind activity.Kind, _ string, _ activity.Metadata) activity.Record {
	r.kinds = append(r.kinds, kind)
	return activity.Record{}
}

type AuthSuite struct {
	suite.Suite
	users    *user.Service
	recorder *stubRecorder
	tokens   *TokenService
	service  *Service
}

func (s *AuthSuite) SetupTest() {
	s.users = user.New(user.NewInMemoryStore())
	s.recorder = &stubRecorder{}
	s.tokens = NewTokenService("test-signing-key", time.Hour)
	s.service = New(s.users, s.tokens, WithActivity(s.recorder))
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) TestRegister() {
	s.Run("creates account and records activity", func() {
		u, err := s.service.Register(context.Background(), "Amina", "amina@example.com", "correct horse battery")
		s.Require().NoError(err)
		s.NotEqual(domain.UserID{}, u.ID)
		s.Equal(user.RoleUser, u.Role)
		s.NotEmpty(u.PasswordHash)
		s.NotEqual("correct horse battery", u.PasswordHash)
		s.Contains(s.recorder.kinds, activity.KindUserRegister)
	})

	s.Run("short password rejected before hashing", func() {
		_, err := s.service.Register(context.Background(), "B", "b@example.com", "short")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("duplicate email surfaces coded error", func() {
		_, err := s.service.Register(context.Background(), "Again", "amina@example.com", "another password")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateEmail))
	})
}

func (s *AuthSuite) TestLogin() {
	registered, err := s.service.Register(context.Background(), "Njeri", "njeri@example.com", "a fine password")
	s.Require().NoError(err)

	s.Run("valid credentials return a verifiable token", func() {
		u, token, err := s.service.Login(context.Background(), "njeri@example.com", "a fine password")
		s.Require().NoError(err)
		s.Equal(registered.ID, u.ID)
		s.Require().NotEmpty(token)

		claims, err := s.tokens.ValidateToken(token)
		s.Require().NoError(err)
		s.Equal(registered.ID, claims.UserID)
		s.Equal("user", claims.Role)
		s.Contains(s.recorder.kinds, activity.KindUserLogin)
	})

	s.Run("wrong password and unknown email look identical", func() {
		_, _, errWrong := s.service.Login(context.Background(), "njeri@example.com", "not it")
		_, _, errUnknown := s.service.Login(context.Background(), "ghost@example.com", "whatever pw")
		s.Require().Error(errWrong)
		s.Require().Error(errUnknown)
		s.True(dErrors.HasCode(errWrong, dErrors.CodeUnauthorized))
		s.True(dErrors.HasCode(errUnknown, dErrors.CodeUnauthorized))
		s.Equal(errWrong.Error(), errUnknown.Error())
	})

	s.Run("deactivated account cannot log in", func() {
		_, err := s.users.SetActive(context.Background(), registered.ID, false)
		s.Require().NoError(err)
		_, _, err = s.service.Login(context.Background(), "njeri@example.com", "a fine password")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *AuthSuite) TestLogout() {
	u, err := s.service.Register(context.Background(), "Out", "out@example.com", "long enough pw")
	s.Require().NoError(err)

	ctx := requestcontext.WithUserID(context.Background(), u.ID)
	s.Require().NoError(s.service.Logout(ctx))
	s.Contains(s.recorder.kinds, activity.KindUserLogout)

	err = s.service.Logout(context.Background())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *AuthSuite) TestTokenExpiry() {
	shortLived := NewTokenService("test-signing-key", time.Minute)
	u := user.User{ID: domain.NewUserID(), Role: user.RoleAdmin}

	token, err := shortLived.Issue(u, time.Now().Add(-2*time.Minute))
	s.Require().NoError(err)

	_, err = shortLived.ValidateToken(token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *AuthSuite) TestTokenWrongKey() {
	other := NewTokenService("a different key", time.Hour)
	u := user.User{ID: domain.NewUserID(), Role: user.RoleUser}

	token, err := other.Issue(u, time.Now())
	s.Require().NoError(err)

	_, err = s.tokens.ValidateToken(token)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
