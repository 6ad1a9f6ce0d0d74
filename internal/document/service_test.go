package document

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"ardhi/internal/activity"
	"ardhi/internal/user"
	"ardhi/pkg/domain"
	dErrors "ardhi/pkg/domain-errors"
	"ardhi/pkg/requestcontext"
)

type stubResolver struct {
	refs map[domain.PropertyID]PropertyRef
}

func (r *stubResolver) ResolveProperty(_ context.Context, id domain.PropertyID) (PropertyRef, error) {
	if ref, ok := r.refs[id]; ok {
		return ref, nil
	}
	return PropertyRef{}, dErrors.New(dErrors.CodeNotFound, "property not found")
}

type recordedEntry struct {
	kind activity.Kind
	meta activity.Metadata
}

type stubRecorder struct {
	entries []recordedEntry
}

func (r *stubRecorder) Record(_ context.Context, _ domain.UserID, _ string, kind activity.Kind, _ string, meta activity.Metadata) activity.Record {
	r.entries = append(r.entries, recordedEntry{kind: kind, meta: meta})
	return activity.Record{}
}

type DocumentSuite struct {
	suite.Suite
	users    *user.Service
	resolver *stubResolver
	recorder *stubRecorder
	service  *Service

	owner      user.User
	admin      user.User
	bystander  user.User
	propertyID domain.PropertyID
}

func (s *DocumentSuite) SetupTest() {
	s.users = user.New(user.NewInMemoryStore())
	s.resolver = &stubResolver{refs: make(map[domain.PropertyID]PropertyRef)}
	s.recorder = &stubRecorder{}
	s.service = New(NewInMemoryStore(), s.resolver, s.users, WithActivity(s.recorder))

	s.owner = s.mustCreate("Owner", "owner@example.com", user.RoleUser)
	s.admin = s.mustCreate("Admin", "admin@example.com", user.RoleAdmin)
	s.bystander = s.mustCreate("Bystander", "bystander@example.com", user.RoleUser)

	s.propertyID = domain.NewPropertyID()
	s.resolver.refs[s.propertyID] = PropertyRef{
		ID:      s.propertyID,
		OwnerID: s.owner.ID,
		Title:   "Riverside Plot 12",
	}
}

func TestDocumentSuite(t *testing.T) {
	suite.Run(t, new(DocumentSuite))
}

func (s *DocumentSuite) mustCreate(name, email string, role user.Role) user.User {
	u, err := s.users.Create(context.Background(), user.User{Name: name, Email: email, Role: role})
	s.Require().NoError(err)
	return u
}

func (s *DocumentSuite) as(u user.User) context.Context {
	return requestcontext.WithUserID(context.Background(), u.ID)
}

func (s *DocumentSuite) upload() Document {
	doc, err := s.service.Upload(s.as(s.owner), s.propertyID, Upload{
		Name: "deed.pdf",
		Type: TypeTitleDeed,
		URL:  "s3://docs/deed.pdf",
	})
	s.Require().NoError(err)
	return doc
}

func (s *DocumentSuite) TestUpload() {
	s.Run("starts pending and records activity", func() {
		doc := s.upload()
		s.Equal(StatusPending, doc.Status)
		s.Equal(s.propertyID, doc.PropertyID)
		s.Require().NotEmpty(s.recorder.entries)
		last := s.recorder.entries[len(s.recorder.entries)-1]
		s.Equal(activity.KindDocumentUpload, last.kind)
		s.Require().NotNil(last.meta.DocumentID)
		s.Equal(doc.ID, *last.meta.DocumentID)
		s.Equal("Riverside Plot 12", last.meta.PropertyTitle)
	})

	s.Run("unknown property returns not found", func() {
		_, err := s.service.Upload(s.as(s.owner), domain.NewPropertyID(), Upload{
			Name: "deed.pdf", Type: TypeTitleDeed, URL: "s3://x",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("missing fields rejected", func() {
		_, err := s.service.Upload(s.as(s.owner), s.propertyID, Upload{Type: TypeOther})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown type rejected", func() {
		_, err := s.service.Upload(s.as(s.owner), s.propertyID, Upload{
			Name: "x", Type: "selfie", URL: "s3://x",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *DocumentSuite) TestReview() {
	s.Run("admin approves a pending document", func() {
		doc := s.upload()
		got, err := s.service.Approve(s.as(s.admin), doc.ID)
		s.Require().NoError(err)
		s.Equal(StatusApproved, got.Status)
		last := s.recorder.entries[len(s.recorder.entries)-1]
		s.Equal(activity.KindDocumentApprove, last.kind)
	})

	s.Run("owner may review their own document", func() {
		doc := s.upload()
		got, err := s.service.Reject(s.as(s.owner), doc.ID, "blurred scan")
		s.Require().NoError(err)
		s.Equal(StatusRejected, got.Status)
	})

	s.Run("unrelated user is forbidden", func() {
		doc := s.upload()
		_, err := s.service.Approve(s.as(s.bystander), doc.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("review is terminal", func() {
		doc := s.upload()
		_, err := s.service.Approve(s.as(s.admin), doc.ID)
		s.Require().NoError(err)
		_, err = s.service.Reject(s.as(s.admin), doc.ID, "too late")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("unknown document returns not found", func() {
		_, err := s.service.Approve(s.as(s.admin), domain.NewDocumentID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *DocumentSuite) TestDownload() {
	doc := s.upload()

	got, err := s.service.Download(s.as(s.bystander), doc.ID)
	s.Require().NoError(err)
	s.Equal(doc.URL, got.URL)
	last := s.recorder.entries[len(s.recorder.entries)-1]
	s.Equal(activity.KindDocumentDownload, last.kind)

	_, err = s.service.Download(s.as(s.owner), domain.NewDocumentID())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *DocumentSuite) TestDelete() {
	s.Run("owner deletes and the trail records it", func() {
		doc := s.upload()
		s.Require().NoError(s.service.Delete(s.as(s.owner), doc.ID))
		_, err := s.service.Get(context.Background(), doc.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		last := s.recorder.entries[len(s.recorder.entries)-1]
		s.Equal(activity.KindDocumentDelete, last.kind)
	})

	s.Run("unrelated user is forbidden", func() {
		doc := s.upload()
		err := s.service.Delete(s.as(s.bystander), doc.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *DocumentSuite) TestListByProperty() {
	first := s.upload()
	second := s.upload()

	docs, err := s.service.ListByProperty(context.Background(), s.propertyID)
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	ids := []domain.DocumentID{docs[0].ID, docs[1].ID}
	s.Contains(ids, first.ID)
	s.Contains(ids, second.ID)

	none, err := s.service.ListByProperty(context.Background(), domain.NewPropertyID())
	s.Require().NoError(err)
	s.Empty(none)
}
