package activity

import (
	"time"

	"ardhi/pkg/domain"
)

// Kind is the closed set of actions the trail records. Adding a kind means
// extending the switches in Verb and Label; the exhaustive default-free
// style below makes the compiler flag any forgotten case at review time.
type Kind string

const (
	KindDocumentUpload   Kind = "document_upload"
	KindDocumentDownload Kind = "document_download"
	KindDocumentDelete   Kind = "document_delete"
	KindDocumentApprove  Kind = "document_approve"
	KindDocumentReject   Kind = "document_reject"

	KindPropertyCreate Kind = "property_create"
	KindPropertyUpdate Kind = "property_update"
	KindPropertyDelete Kind = "property_delete"
	KindPropertyVerify Kind = "property_verify"

	KindUserLogin     Kind = "user_login"
	KindUserLogout    Kind = "user_logout"
	KindUserRegister  Kind = "user_register"
	KindProfileUpdate Kind = "profile_update"
)

// Kinds lists every known kind, for validation at the transport boundary.
var Kinds = []Kind{
	KindDocumentUpload, KindDocumentDownload, KindDocumentDelete,
	KindDocumentApprove, KindDocumentReject,
	KindPropertyCreate, KindPropertyUpdate, KindPropertyDelete, KindPropertyVerify,
	KindUserLogin, KindUserLogout, KindUserRegister, KindProfileUpdate,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindDocumentUpload, KindDocumentDownload, KindDocumentDelete,
		KindDocumentApprove, KindDocumentReject,
		KindPropertyCreate, KindPropertyUpdate, KindPropertyDelete, KindPropertyVerify,
		KindUserLogin, KindUserLogout, KindUserRegister, KindProfileUpdate:
		return true
	}
	return false
}

// Verb returns the action verb used when composing descriptions for
// document and property kinds, e.g. "Uploaded" or "Created new property:".
func (k Kind) Verb() string {
	switch k {
	case KindDocumentUpload:
		return "Uploaded"
	case KindDocumentDownload:
		return "Downloaded"
	case KindDocumentDelete:
		return "Deleted"
	case KindDocumentApprove:
		return "Approved"
	case KindDocumentReject:
		return "Rejected"
	case KindPropertyCreate:
		return "Created new property:"
	case KindPropertyUpdate:
		return "Updated property:"
	case KindPropertyDelete:
		return "Deleted property:"
	case KindPropertyVerify:
		return "Verified property:"
	case KindUserLogin:
		return "User logged in"
	case KindUserLogout:
		return "User logged out"
	case KindUserRegister:
		return "User registered"
	case KindProfileUpdate:
		return "Profile updated"
	}
	return string(k)
}

// Label returns the human-readable category shown in activity listings.
func (k Kind) Label() string {
	switch k {
	case KindDocumentUpload:
		return "Document uploaded"
	case KindDocumentDownload:
		return "Document downloaded"
	case KindDocumentDelete:
		return "Document deleted"
	case KindDocumentApprove:
		return "Document approved"
	case KindDocumentReject:
		return "Document rejected"
	case KindPropertyCreate:
		return "Property created"
	case KindPropertyUpdate:
		return "Property updated"
	case KindPropertyDelete:
		return "Property deleted"
	case KindPropertyVerify:
		return "Property verified"
	case KindUserLogin:
		return "Login"
	case KindUserLogout:
		return "Logout"
	case KindUserRegister:
		return "Registration"
	case KindProfileUpdate:
		return "Profile update"
	}
	return string(k)
}

// Metadata back-references the entities an action touched. Lookup only,
// never ownership: deleting a property does not touch its trail.
type Metadata struct {
	DocumentID    *domain.DocumentID `json:"document_id,omitempty"`
	DocumentName  string             `json:"document_name,omitempty"`
	PropertyID    *domain.PropertyID `json:"property_id,omitempty"`
	PropertyTitle string             `json:"property_title,omitempty"`
}

// Record is one append-only entry in the activity trail. Records are never
// mutated or deleted; reads return them newest first.
type Record struct {
	ID          domain.ActivityID `json:"id"`
	ActorUserID domain.UserID     `json:"actor_user_id"`
	ActorName   string            `json:"actor_name"`
	Kind        Kind              `json:"kind"`
	Description string            `json:"description"`
	Metadata    Metadata          `json:"metadata,omitempty"`
	// ClientIP and UserAgent are captured from the request and surfaced
	// only in the admin system-activity view.
	ClientIP  string    `json:"-"`
	UserAgent string    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// SystemRecord is the admin projection of a Record, including the client
// metadata hidden from regular users.
type SystemRecord struct {
	Record
	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}
