package transfer

import (
	"strings"
	"time"

	"ardhi/pkg/domain"
)

// Step is the wizard position of a transfer request. Steps advance in
// order; backward navigation is allowed everywhere except out of the
// completed step.
type Step string

const (
	StepDetails      Step = "details"
	StepVerification Step = "verification"
	StepConfirmation Step = "confirmation"
	StepCompleted    Step = "completed"
)

// Next returns the following step, or the same step when already at the
// end.
func (s Step) Next() Step {
	switch s {
	case StepDetails:
		return StepVerification
	case StepVerification:
		return StepConfirmation
	case StepConfirmation:
		return StepCompleted
	}
	return s
}

// Prev returns the preceding step, or the same step when already at the
// start.
func (s Step) Prev() Step {
	switch s {
	case StepVerification:
		return StepDetails
	case StepConfirmation:
		return StepVerification
	}
	return s
}

// Status is the request's review lifecycle, distinct from the wizard
// position. It trails the wizard while in flight and then returns to
// pending when the wizard finishes: a completed wizard is a submitted
// request, not a completed ownership change. Only the admin decision
// moves it to completed or rejected.
type Status string

const (
	StatusPending   Status = "pending"
	StatusVerified  Status = "verified"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// NewOwner is the proposed recipient's identity as captured in the form.
// Not a User yet: the identity is only matched against a registered
// account when an admin approves the request.
type NewOwner struct {
	NationalID string `json:"national_id"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

// Complete reports whether every identity field has been filled in.
func (o NewOwner) Complete() bool {
	return strings.TrimSpace(o.NationalID) != "" &&
		strings.TrimSpace(o.FullName) != "" &&
		strings.TrimSpace(o.Phone) != "" &&
		strings.TrimSpace(o.Email) != ""
}

// TransferRequest is one run of the ownership-transfer wizard.
//
// Invariants:
//   - PropertyID and FromUserID never change after Start
//   - TransactionCode is set exactly once, on wizard completion
//   - A failed step transition leaves the request untouched
type TransferRequest struct {
	ID              domain.TransferID `json:"id"`
	PropertyID      domain.PropertyID `json:"property_id"`
	FromUserID      domain.UserID     `json:"from_user_id"`
	NewOwner        NewOwner          `json:"new_owner"`
	TransferReason  string            `json:"transfer_reason"`
	Notes           string            `json:"notes,omitempty"`
	Status          Status            `json:"status"`
	Step            Step              `json:"step"`
	InfoConfirmed   bool              `json:"info_confirmed"`
	FinalConfirmed  bool              `json:"final_confirmed"`
	TransactionCode string            `json:"transaction_code,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Form is the caller-supplied state accompanying an advance: the wizard
// re-submits the full form on every step.
type Form struct {
	NewOwner       NewOwner `json:"new_owner"`
	TransferReason string   `json:"transfer_reason"`
	Notes          string   `json:"notes"`
	InfoConfirmed  bool     `json:"info_confirmed"`
	FinalConfirmed bool     `json:"final_confirmed"`
}
