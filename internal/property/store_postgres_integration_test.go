//go:build integration

package property

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"ardhi/internal/document"
	"ardhi/internal/platform/postgres"
	"ardhi/internal/user"
	"ardhi/pkg/domain"
	"ardhi/pkg/platform/sentinel"
	"ardhi/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	store     *PostgresStore
	documents *document.PostgresStore
	owner     user.User
}

func TestPostgresStoreSuite(t *testing.T) {
	pg := containers.NewPostgres(t)
	ctx := context.Background()
	require.NoError(t, postgres.EnsureSchema(ctx, pg.DB))

	owner := user.User{
		ID:         domain.NewUserID(),
		Name:       "Owner",
		Email:      "owner+pg@example.com",
		Role:       user.RoleUser,
		Active:     true,
		DateJoined: time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, user.NewPostgres(pg.DB).Create(ctx, owner))

	suite.Run(t, &PostgresStoreSuite{
		store:     NewPostgres(pg.DB),
		documents: document.NewPostgres(pg.DB),
		owner:     owner,
	})
}

func (s *PostgresStoreSuite) newProperty() Property {
	now := time.Now().UTC()
	return Property{
		ID:        domain.NewPropertyID(),
		UserID:    s.owner.ID,
		Title:     "Parcel",
		Type:      TypeResidential,
		Location:  "Kisumu",
		Size:      "0.4 ha",
		Status:    StatusPending,
		Value:     1_000_000,
		Currency:  "KES",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	p := s.newProperty()
	s.Require().NoError(s.store.Create(ctx, p))

	got, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.Title, got.Title)
	s.Equal(StatusPending, got.Status)
	s.Equal(int64(1_000_000), got.Value)
}

func (s *PostgresStoreSuite) TestTransitionGuardsOnCurrentStatus() {
	ctx := context.Background()
	p := s.newProperty()
	s.Require().NoError(s.store.Create(ctx, p))

	s.Require().NoError(s.store.Transition(ctx, p.ID, StatusPending, StatusVerified, time.Now().UTC()))

	// The row already left pending; a second identical transition loses.
	err := s.store.Transition(ctx, p.ID, StatusPending, StatusVerified, time.Now().UTC())
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)

	err = s.store.Transition(ctx, domain.NewPropertyID(), StatusPending, StatusVerified, time.Now().UTC())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDeleteCascadesDocuments() {
	ctx := context.Background()
	p := s.newProperty()
	s.Require().NoError(s.store.Create(ctx, p))

	doc := document.Document{
		ID:         domain.NewDocumentID(),
		PropertyID: p.ID,
		Name:       "deed.pdf",
		Type:       document.TypeTitleDeed,
		URL:        "https://files.example.com/deed.pdf",
		Status:     document.StatusPending,
		UploadedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.documents.Create(ctx, doc))

	s.Require().NoError(s.store.Delete(ctx, p.ID))

	_, err := s.documents.FindByID(ctx, doc.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	err = s.store.Delete(ctx, p.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestCountPendingByProperties() {
	ctx := context.Background()
	p := s.newProperty()
	s.Require().NoError(s.store.Create(ctx, p))

	for range 2 {
		doc := document.Document{
			ID:         domain.NewDocumentID(),
			PropertyID: p.ID,
			Name:       "survey.pdf",
			Type:       document.TypeSurveyMap,
			URL:        "https://files.example.com/survey.pdf",
			Status:     document.StatusPending,
			UploadedAt: time.Now().UTC(),
		}
		s.Require().NoError(s.documents.Create(ctx, doc))
	}

	n, err := s.documents.CountPendingByProperties(ctx, []domain.PropertyID{p.ID})
	s.Require().NoError(err)
	s.Equal(2, n)
}
