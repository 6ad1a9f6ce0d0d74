package activity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ardhi/pkg/domain"
	"ardhi/pkg/requestcontext"
)

type capturingPublisher struct {
	published []Record
}

func (p *capturingPublisher) Publish(_ context.Context, rec Record) {
	p.published = append(p.published, rec)
}

func (p *capturingPublisher) Close() {}

type failingStore struct {
	Store
}

func (failingStore) Append(context.Context, Record) error {
	return errors.New("disk on fire")
}

type ServiceSuite struct {
	suite.Suite
	store     *InMemoryStore
	publisher *capturingPublisher
	svc       *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.publisher = &capturingPublisher{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = NewService(s.store, log, WithPublisher(s.publisher))
}

func (s *ServiceSuite) TestRecordCapturesContext() {
	actorID := domain.NewUserID()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", "Firefox 125 (Linux)")

	rec := s.svc.Record(ctx, actorID, "Amina", KindPropertyCreate,
		"Created new property: Riverside Plot 12", Metadata{})

	s.Equal(at, rec.Timestamp)
	s.Equal("203.0.113.9", rec.ClientIP)
	s.Equal("Firefox 125 (Linux)", rec.UserAgent)

	stored, err := s.store.ListAll(context.Background())
	s.Require().NoError(err)
	s.Require().Len(stored, 1)
	s.Equal(rec.ID, stored[0].ID)

	s.Require().Len(s.publisher.published, 1)
	s.Equal(rec.ID, s.publisher.published[0].ID)
}

func (s *ServiceSuite) TestRecordSwallowsStoreFailure() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(failingStore{}, log, WithPublisher(s.publisher))

	rec := svc.Record(context.Background(), domain.NewUserID(), "Amina",
		KindUserLogin, "User logged in", Metadata{})

	s.NotEqual(domain.ActivityID{}, rec.ID, "caller still gets the record")
	s.Empty(s.publisher.published, "no fan-out for a record that failed to persist")
}

func (s *ServiceSuite) TestQueryForIsDualMode() {
	ctx := context.Background()
	alice := domain.NewUserID()
	bob := domain.NewUserID()
	s.svc.Record(ctx, alice, "Alice", KindUserLogin, "User logged in", Metadata{})
	s.svc.Record(ctx, bob, "Bob", KindUserLogin, "User logged in", Metadata{})

	own, err := s.svc.QueryFor(ctx, alice, false)
	s.Require().NoError(err)
	s.Require().Len(own, 1)
	s.Equal(alice, own[0].ActorUserID)

	all, err := s.svc.QueryFor(ctx, alice, true)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *ServiceSuite) TestQueriesNewestFirst() {
	alice := domain.NewUserID()
	for _, at := range []time.Time{
		time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	} {
		ctx := requestcontext.WithTime(context.Background(), at)
		s.svc.Record(ctx, alice, "Alice", KindPropertyUpdate, "Updated property: Plot", Metadata{})
	}

	records, err := s.svc.QueryFor(context.Background(), alice, false)
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.True(records[0].Timestamp.After(records[1].Timestamp))
	s.True(records[1].Timestamp.After(records[2].Timestamp))
}

func (s *ServiceSuite) TestQueryByDocumentAndKind() {
	ctx := context.Background()
	actor := domain.NewUserID()
	docID := domain.NewDocumentID()
	s.svc.Record(ctx, actor, "Alice", KindDocumentUpload, "Uploaded deed.pdf",
		Metadata{DocumentID: &docID, DocumentName: "deed.pdf"})
	s.svc.Record(ctx, actor, "Alice", KindUserLogin, "User logged in", Metadata{})

	byDoc, err := s.svc.QueryByDocument(ctx, docID)
	s.Require().NoError(err)
	s.Require().Len(byDoc, 1)
	s.Equal(KindDocumentUpload, byDoc[0].Kind)

	byKind, err := s.svc.QueryByKind(ctx, KindUserLogin)
	s.Require().NoError(err)
	s.Require().Len(byKind, 1)
	s.Equal(KindUserLogin, byKind[0].Kind)
}

func (s *ServiceSuite) TestQueryByDateRangeIsInclusive() {
	actor := domain.NewUserID()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)
	s.svc.Record(ctx, actor, "Alice", KindUserLogin, "User logged in", Metadata{})

	in, err := s.svc.QueryByDateRange(context.Background(), at, at)
	s.Require().NoError(err)
	s.Len(in, 1)

	out, err := s.svc.QueryByDateRange(context.Background(), at.Add(time.Second), at.Add(time.Hour))
	s.Require().NoError(err)
	s.Empty(out)
}

func (s *ServiceSuite) TestSystemViewExposesClientMetadata() {
	ctx := requestcontext.WithClientMetadata(context.Background(), "198.51.100.4", "Chrome 130 (Windows)")
	rec := s.svc.Record(ctx, domain.NewUserID(), "Alice", KindUserLogin, "User logged in", Metadata{})

	view := SystemView([]Record{rec})
	s.Require().Len(view, 1)
	s.Equal("198.51.100.4", view[0].ClientIP)
	s.Equal("Chrome 130 (Windows)", view[0].UserAgent)
}
