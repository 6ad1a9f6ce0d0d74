// Package domain defines typed identifiers shared across the registry.
//
// Each entity gets its own UUID-backed type so the compiler rejects
// accidental cross-assignment (passing a PropertyID where a UserID is
// expected). Parse functions enforce the invariant that ids are valid,
// non-empty, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "ardhi/pkg/domain-errors"
)

type (
	// UserID identifies a registered account.
	UserID uuid.UUID
	// PropertyID identifies a land parcel record.
	PropertyID uuid.UUID
	// DocumentID identifies a verification document attached to a property.
	DocumentID uuid.UUID
	// TransferID identifies an ownership-transfer request.
	TransferID uuid.UUID
	// ActivityID identifies an append-only activity record.
	ActivityID uuid.UUID
)

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" id is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+what+" id")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" id must not be nil")
	}
	return parsed, nil
}

// ParseUserID validates and converts a string into a UserID.
func ParseUserID(s string) (UserID, error) {
	parsed, err := parseUUID(s, "user")
	return UserID(parsed), err
}

// ParsePropertyID validates and converts a string into a PropertyID.
func ParsePropertyID(s string) (PropertyID, error) {
	parsed, err := parseUUID(s, "property")
	return PropertyID(parsed), err
}

// ParseDocumentID validates and converts a string into a DocumentID.
func ParseDocumentID(s string) (DocumentID, error) {
	parsed, err := parseUUID(s, "document")
	return DocumentID(parsed), err
}

// ParseTransferID validates and converts a string into a TransferID.
func ParseTransferID(s string) (TransferID, error) {
	parsed, err := parseUUID(s, "transfer")
	return TransferID(parsed), err
}

// ParseActivityID validates and converts a string into an ActivityID.
func ParseActivityID(s string) (ActivityID, error) {
	parsed, err := parseUUID(s, "activity")
	return ActivityID(parsed), err
}

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id PropertyID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) String() string { return uuid.UUID(id).String() }
func (id TransferID) String() string { return uuid.UUID(id).String() }
func (id ActivityID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id PropertyID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TransferID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ActivityID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewPropertyID returns a fresh random PropertyID.
func NewPropertyID() PropertyID { return PropertyID(uuid.New()) }

// NewDocumentID returns a fresh random DocumentID.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// NewTransferID returns a fresh random TransferID.
func NewTransferID() TransferID { return TransferID(uuid.New()) }

// NewActivityID returns a time-ordered (UUIDv7) ActivityID so ids sort in
// append order and break timestamp ties deterministically.
func NewActivityID() ActivityID { return ActivityID(uuid.Must(uuid.NewV7())) }
