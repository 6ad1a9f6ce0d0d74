// Package access holds the access-control policy as pure predicate
// functions. No I/O, no side effects: every mutating operation in the
// document, property, and transfer services consults these instead of
// re-implementing role checks inline.
package access

import (
	"ardhi/internal/user"
	"ardhi/pkg/domain"
)

// IsAdmin reports whether the user holds the admin role.
func IsAdmin(u user.User) bool {
	return u.Role == user.RoleAdmin
}

// CanManageDocument reports whether the user may approve, reject, or
// delete a document belonging to the property owner ownerID. The owning
// user always manages their own documents; the admin role grants access to
// everyone else's, never re-granting the admin's own (that case is covered
// by ownership, not privilege).
func CanManageDocument(u user.User, ownerID domain.UserID) bool {
	if u.ID == ownerID {
		return true
	}
	return IsAdmin(u)
}

// CanEditProperty reports whether the user may update or delete a
// property owned by ownerID: the owner, or any admin.
func CanEditProperty(u user.User, ownerID domain.UserID) bool {
	return u.ID == ownerID || IsAdmin(u)
}

// CanApproveProperty reports whether the user may verify a property owned
// by ownerID. Only an admin who is not the owner qualifies.
func CanApproveProperty(u user.User, ownerID domain.UserID) bool {
	return IsAdmin(u) && u.ID != ownerID
}

// CanRejectProperty mirrors CanApproveProperty: only a non-owner admin.
func CanRejectProperty(u user.User, ownerID domain.UserID) bool {
	return IsAdmin(u) && u.ID != ownerID
}

// CanViewUserData reports whether the user may read data belonging to
// targetID: admins see everyone, users see themselves.
func CanViewUserData(u user.User, targetID domain.UserID) bool {
	return IsAdmin(u) || u.ID == targetID
}
