package user

import (
	"time"

	"ardhi/pkg/domain"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a registered account.
//
// Invariants:
//   - Email is unique case-insensitively across all users
//   - DateJoined is immutable after registration
//   - Users are never hard-deleted; Active=false is the soft lifecycle end
//     so activity records always resolve their actor
type User struct {
	ID           domain.UserID `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	Role         Role          `json:"role"`
	Verified     bool          `json:"verified"`
	Active       bool          `json:"active"`
	Phone        string        `json:"phone,omitempty"`
	NationalID   string        `json:"national_id,omitempty"`
	Bio          string        `json:"bio,omitempty"`
	Location     string        `json:"location,omitempty"`
	Avatar       string        `json:"avatar,omitempty"`
	DateJoined   time.Time     `json:"date_joined"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ProfileUpdate is a partial update of the mutable profile fields. Nil
// means "leave unchanged". ID, email, role, and DateJoined are not profile
// fields; they change only through their dedicated operations.
type ProfileUpdate struct {
	Name       *string `json:"name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	NationalID *string `json:"national_id,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	Location   *string `json:"location,omitempty"`
	Avatar     *string `json:"avatar,omitempty"`
}

// Filter narrows admin user listings.
type Filter struct {
	Role         Role       // empty matches all roles
	Verified     *bool      // nil matches both
	JoinedAfter  *time.Time
	JoinedBefore *time.Time
}

// Stats aggregates the admin dashboard's user counters.
type Stats struct {
	Total       int `json:"total"`
	Admins      int `json:"admins"`
	Users       int `json:"users"`
	Verified    int `json:"verified"`
	Unverified  int `json:"unverified"`
	RecentJoins int `json:"recent_joins"`
}
