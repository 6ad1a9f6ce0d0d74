package property

import (
	"time"

	"ardhi/pkg/domain"
)

// Type classifies land use.
type Type string

const (
	TypeResidential  Type = "residential"
	TypeCommercial   Type = "commercial"
	TypeAgricultural Type = "agricultural"
	TypeIndustrial   Type = "industrial"
)

// Valid reports whether the type is one of the known values.
func (t Type) Valid() bool {
	switch t {
	case TypeResidential, TypeCommercial, TypeAgricultural, TypeIndustrial:
		return true
	}
	return false
}

// Status is the property verification state.
//
// Transitions are explicit calls only: pending -> verified | rejected by
// admin review, verified -> pending by transfer completion, rejected ->
// pending by a logged admin reset. Nothing is ever inferred from document
// state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

// Property is a land parcel record with exactly one owner at a time.
// Ownership changes only through the transfer workflow's admin approval,
// never through partial updates.
type Property struct {
	ID        domain.PropertyID   `json:"id"`
	UserID    domain.UserID       `json:"user_id"`
	Title     string              `json:"title"`
	Type      Type                `json:"type"`
	Location  string              `json:"location"`
	Size      string              `json:"size"`
	Status    Status              `json:"status"`
	Value     int64               `json:"value"`
	Currency  string              `json:"currency"`
	Lat       *float64            `json:"lat,omitempty"`
	Lng       *float64            `json:"lng,omitempty"`
	Documents []domain.DocumentID `json:"documents"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Draft is the caller-supplied part of a new property. Status is not here:
// every property starts pending no matter what the caller claims.
type Draft struct {
	Title    string   `json:"title"`
	Type     Type     `json:"type"`
	Location string   `json:"location"`
	Size     string   `json:"size"`
	Value    int64    `json:"value"`
	Currency string   `json:"currency"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
}

// Update is a partial update of the mutable fields. Nil means "leave
// unchanged". ID, owner, status, and createdAt are not updatable here:
// status moves through its dedicated transitions and ownership through the
// transfer workflow.
type Update struct {
	Title    *string  `json:"title,omitempty"`
	Type     *Type    `json:"type,omitempty"`
	Location *string  `json:"location,omitempty"`
	Size     *string  `json:"size,omitempty"`
	Value    *int64   `json:"value,omitempty"`
	Currency *string  `json:"currency,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
}

// Stats is the portfolio aggregation shown on a user's dashboard.
// TotalValue sums every property regardless of status, matching the
// dashboard's "portfolio value" figure.
type Stats struct {
	TotalProperties    int    `json:"total_properties"`
	VerifiedProperties int    `json:"verified_properties"`
	PendingProperties  int    `json:"pending_properties"`
	PendingDocuments   int    `json:"pending_documents"`
	TotalValue         int64  `json:"total_value"`
	Currency           string `json:"currency"`
}
