package transfer

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/suite"

	"ardhi/internal/activity"
	"ardhi/internal/document"
	"ardhi/internal/property"
	"ardhi/internal/user"
	"ardhi/pkg/domain"
	dErrors "ardhi/pkg/domain-errors"
	"ardhi/pkg/requestcontext"
)

type recordedEntry struct {
	kind activity.Kind
	desc string
}

type stubRecorder struct {
	entries []recordedEntry
}

func (r *stubRecorder) Record(_ context.Context, _ domain.UserID, _ string, kind activity.Kind, desc string, _ activity.Metadata) activity.Record {
	r.entries = append(r.entries, recordedEntry{kind: kind, desc: desc})
	return activity.Record{}
}

type TransferSuite struct {
	suite.Suite
	users      *user.Service
	properties *property.Service
	recorder   *stubRecorder
	store      *InMemoryStore
	service    *Service

	owner    user.User
	admin    user.User
	stranger user.User
	newOwner user.User
	parcel   property.Property
}

func (s *TransferSuite) SetupTest() {
	s.users = user.New(user.NewInMemoryStore())
	s.recorder = &stubRecorder{}
	s.properties = property.New(property.NewInMemoryStore(), document.NewInMemoryStore(), s.users)
	s.store = NewInMemoryStore()
	s.service = New(s.store, s.properties, s.users, WithActivity(s.recorder))

	s.owner = s.mustCreate("Owner", "owner@example.com", user.RoleUser)
	s.admin = s.mustCreate("Admin", "admin@example.com", user.RoleAdmin)
	s.stranger = s.mustCreate("Stranger", "stranger@example.com", user.RoleUser)
	s.newOwner = s.mustCreate("Wanjiru Kamau", "wanjiru@example.com", user.RoleUser)

	p, err := s.properties.Create(s.as(s.owner), s.owner.ID, property.Draft{
		Title: "Riverside Plot 12", Type: property.TypeResidential, Location: "Kisumu", Value: 1_000_000,
	})
	s.Require().NoError(err)
	_, err = s.properties.Approve(s.as(s.admin), p.ID)
	s.Require().NoError(err)
	s.parcel, err = s.properties.Get(context.Background(), p.ID)
	s.Require().NoError(err)
}

func TestTransferSuite(t *testing.T) {
	suite.Run(t, new(TransferSuite))
}

func (s *TransferSuite) mustCreate(name, email string, role user.Role) user.User {
	u, err := s.users.Create(context.Background(), user.User{Name: name, Email: email, Role: role})
	s.Require().NoError(err)
	return u
}

func (s *TransferSuite) as(u user.User) context.Context {
	return requestcontext.WithUserID(context.Background(), u.ID)
}

func (s *TransferSuite) start() TransferRequest {
	req, err := s.service.Start(s.as(s.owner), s.parcel.ID)
	s.Require().NoError(err)
	return req
}

func (s *TransferSuite) completeForm() Form {
	return Form{
		NewOwner: NewOwner{
			NationalID: "12345678",
			FullName:   "Wanjiru Kamau",
			Phone:      "+254700000001",
			Email:      "wanjiru@example.com",
		},
		TransferReason: "Sale of land",
		InfoConfirmed:  true,
	}
}

// submit drives the wizard from details all the way to completed.
func (s *TransferSuite) submit(req TransferRequest) TransferRequest {
	got, err := s.service.Advance(s.as(s.owner), req.ID, s.completeForm())
	s.Require().NoError(err)
	got, err = s.service.Advance(s.as(s.owner), got.ID, s.completeForm())
	s.Require().NoError(err)
	form := s.completeForm()
	form.FinalConfirmed = true
	got, err = s.service.Advance(s.as(s.owner), got.ID, form)
	s.Require().NoError(err)
	return got
}

func (s *TransferSuite) TestStart() {
	s.Run("owner opens the wizard at details", func() {
		req := s.start()
		s.Equal(StepDetails, req.Step)
		s.Equal(StatusPending, req.Status)
		s.Equal(s.owner.ID, req.FromUserID)
	})

	s.Run("non-owner cannot start", func() {
		_, err := s.service.Start(s.as(s.stranger), s.parcel.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown property", func() {
		_, err := s.service.Start(s.as(s.owner), domain.NewPropertyID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *TransferSuite) TestDetailsGating() {
	req := s.start()

	s.Run("missing confirmation flag fails", func() {
		form := s.completeForm()
		form.InfoConfirmed = false
		_, err := s.service.Advance(s.as(s.owner), req.ID, form)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeIncompleteForm))

		unchanged, err := s.service.Get(s.as(s.owner), req.ID)
		s.Require().NoError(err)
		s.Equal(StepDetails, unchanged.Step, "failed transition leaves state untouched")
	})

	s.Run("missing identity field fails", func() {
		form := s.completeForm()
		form.NewOwner.Phone = ""
		_, err := s.service.Advance(s.as(s.owner), req.ID, form)
		s.True(dErrors.HasCode(err, dErrors.CodeIncompleteForm))
	})

	s.Run("complete form moves to verification", func() {
		got, err := s.service.Advance(s.as(s.owner), req.ID, s.completeForm())
		s.Require().NoError(err)
		s.Equal(StepVerification, got.Step)
	})
}

func (s *TransferSuite) TestVerificationIsUngated() {
	req := s.start()
	got, err := s.service.Advance(s.as(s.owner), req.ID, s.completeForm())
	s.Require().NoError(err)
	s.Equal(StepVerification, got.Step)

	// No document-completeness check: verification always moves on.
	got, err = s.service.Advance(s.as(s.owner), got.ID, s.completeForm())
	s.Require().NoError(err)
	s.Equal(StepConfirmation, got.Step)
	s.Equal(StatusVerified, got.Status)
}

func (s *TransferSuite) TestConfirmationGating() {
	req := s.start()
	_, err := s.service.Advance(s.as(s.owner), req.ID, s.completeForm())
	s.Require().NoError(err)
	_, err = s.service.Advance(s.as(s.owner), req.ID, s.completeForm())
	s.Require().NoError(err)

	_, err = s.service.Advance(s.as(s.owner), req.ID, s.completeForm())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConfirmationRequired))

	unchanged, err := s.service.Get(s.as(s.owner), req.ID)
	s.Require().NoError(err)
	s.Equal(StepConfirmation, unchanged.Step)
	s.Empty(unchanged.TransactionCode)
}

func (s *TransferSuite) TestSubmissionVanishedProperty() {
	req := s.start()
	_, err := s.service.Advance(s.as(s.owner), req.ID, s.completeForm())
	s.Require().NoError(err)
	_, err = s.service.Advance(s.as(s.owner), req.ID, s.completeForm())
	s.Require().NoError(err)

	s.Require().NoError(s.properties.Delete(s.as(s.owner), s.parcel.ID))

	form := s.completeForm()
	form.FinalConfirmed = true
	_, err = s.service.Advance(s.as(s.owner), req.ID, form)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	// The failed final step must not commit anything.
	stored, err := s.store.FindByID(context.Background(), req.ID)
	s.Require().NoError(err)
	s.Equal(StepConfirmation, stored.Step)
	s.Equal(StatusVerified, stored.Status)
	s.Empty(stored.TransactionCode)
}

func (s *TransferSuite) TestSubmission() {
	req := s.submit(s.start())

	s.Equal(StepCompleted, req.Step)
	s.Equal(StatusPending, req.Status, "a completed wizard is a submitted request")
	s.Regexp(regexp.MustCompile(`^TRX-[0-9A-Z]{8}$`), req.TransactionCode)

	p, err := s.properties.Get(context.Background(), s.parcel.ID)
	s.Require().NoError(err)
	s.Equal(property.StatusPending, p.Status, "property re-opens for verification")
	s.Equal(s.owner.ID, p.UserID, "submission does not move ownership")

	var found bool
	for _, e := range s.recorder.entries {
		if e.kind == activity.KindPropertyUpdate && e.desc == "Submitted ownership transfer for: Riverside Plot 12" {
			found = true
		}
	}
	s.True(found, "submission appends a property update entry")

	s.Run("completed wizard rejects further advances", func() {
		_, err := s.service.Advance(s.as(s.owner), req.ID, s.completeForm())
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *TransferSuite) TestBack() {
	req := s.start()
	_, err := s.service.Advance(s.as(s.owner), req.ID, s.completeForm())
	s.Require().NoError(err)

	got, err := s.service.Back(s.as(s.owner), req.ID)
	s.Require().NoError(err)
	s.Equal(StepDetails, got.Step)

	s.Run("at details back is a no-op", func() {
		got, err := s.service.Back(s.as(s.owner), req.ID)
		s.Require().NoError(err)
		s.Equal(StepDetails, got.Step)
	})

	s.Run("completed cannot navigate back", func() {
		done := s.submit(s.start())
		_, err := s.service.Back(s.as(s.owner), done.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *TransferSuite) TestWizardAccess() {
	req := s.start()
	_, err := s.service.Advance(s.as(s.stranger), req.ID, s.completeForm())
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.service.Get(s.as(s.stranger), req.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.service.Get(s.as(s.admin), req.ID)
	s.NoError(err)
}

func (s *TransferSuite) TestAdminApprove() {
	req := s.submit(s.start())

	s.Run("non-admin cannot approve", func() {
		_, err := s.service.Approve(s.as(s.owner), req.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("approval reassigns ownership and completes", func() {
		got, err := s.service.Approve(s.as(s.admin), req.ID)
		s.Require().NoError(err)
		s.Equal(StatusCompleted, got.Status)

		p, err := s.properties.Get(context.Background(), s.parcel.ID)
		s.Require().NoError(err)
		s.Equal(s.newOwner.ID, p.UserID)
	})

	s.Run("approving twice is invalid", func() {
		_, err := s.service.Approve(s.as(s.admin), req.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *TransferSuite) TestAdminApproveUnknownOwner() {
	req := s.start()
	form := s.completeForm()
	form.NewOwner.Email = "nobody@example.com"
	_, err := s.service.Advance(s.as(s.owner), req.ID, form)
	s.Require().NoError(err)
	_, err = s.service.Advance(s.as(s.owner), req.ID, form)
	s.Require().NoError(err)
	form.FinalConfirmed = true
	_, err = s.service.Advance(s.as(s.owner), req.ID, form)
	s.Require().NoError(err)

	_, err = s.service.Approve(s.as(s.admin), req.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnknownOwner))
}

func (s *TransferSuite) TestAdminReject() {
	req := s.submit(s.start())

	got, err := s.service.Reject(s.as(s.admin), req.ID)
	s.Require().NoError(err)
	s.Equal(StatusRejected, got.Status)

	p, err := s.properties.Get(context.Background(), s.parcel.ID)
	s.Require().NoError(err)
	s.Equal(s.owner.ID, p.UserID, "rejection leaves ownership untouched")

	_, err = s.service.Reject(s.as(s.admin), req.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func (s *TransferSuite) TestSelfDealingGuardOnDecision() {
	adminParcel, err := s.properties.Create(s.as(s.admin), s.admin.ID, property.Draft{
		Title: "Admin Plot", Type: property.TypeCommercial, Location: "Nairobi",
	})
	s.Require().NoError(err)

	req, err := s.service.Start(s.as(s.admin), adminParcel.ID)
	s.Require().NoError(err)
	form := s.completeForm()
	_, err = s.service.Advance(s.as(s.admin), req.ID, form)
	s.Require().NoError(err)
	_, err = s.service.Advance(s.as(s.admin), req.ID, form)
	s.Require().NoError(err)
	form.FinalConfirmed = true
	_, err = s.service.Advance(s.as(s.admin), req.ID, form)
	s.Require().NoError(err)

	_, err = s.service.Approve(s.as(s.admin), req.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "admin cannot decide a transfer of their own property")
}
