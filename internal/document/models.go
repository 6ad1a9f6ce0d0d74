package document

import (
	"time"

	"ardhi/pkg/domain"
)

// Type classifies the evidence a document provides.
type Type string

const (
	TypeTitleDeed  Type = "title_deed"
	TypeSurveyMap  Type = "survey_map"
	TypeValuation  Type = "valuation"
	TypeTaxReceipt Type = "tax_receipt"
	TypeOther      Type = "other"
)

// Valid reports whether the type is one of the known values.
func (t Type) Valid() bool {
	switch t {
	case TypeTitleDeed, TypeSurveyMap, TypeValuation, TypeTaxReceipt, TypeOther:
		return true
	}
	return false
}

// Status is the document verification state. Pending is the only
// non-terminal state: once approved or rejected a document never moves
// again, a re-submission is a new document.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Document is evidence metadata attached to exactly one property. The
// bytes live behind URL in external storage; this system never holds them.
//
// Invariants:
//   - PropertyID never changes after upload
//   - UploadedAt is immutable
//   - Status only leaves pending, and only once
type Document struct {
	ID         domain.DocumentID `json:"id"`
	PropertyID domain.PropertyID `json:"property_id"`
	Name       string            `json:"name"`
	Type       Type              `json:"type"`
	URL        string            `json:"url"`
	Status     Status            `json:"status"`
	UploadedAt time.Time         `json:"uploaded_at"`
}

// Upload is the caller-supplied part of a new document.
type Upload struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
	URL  string `json:"url"`
}
