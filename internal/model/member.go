package model

import (
	"fmt"
	"time"

	"github.com/iliyamo/room-escape-reservation/internal/utils"
)

// Role is the access level of a member.
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)

// ParseRole returns the role named by s, falling back to RoleMember for
// anything unknown.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleMember
}

// Member represents an account stored in the `members` table.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name shown on reservations.
//  Email        – unique, lower-cased login.
//  PasswordHash – bcrypt hash of the password.
//  Role         – MEMBER or ADMIN.
//  CreatedAt    – timestamp of creation.
type Member struct {
	ID           uint64    // members.id
	Name         string    // members.name
	Email        string    // members.email
	PasswordHash string    // members.password_hash
	Role         Role      // members.role
	CreatedAt    time.Time // members.created_at
}

// IsAdmin reports whether the member holds the ADMIN role.
func (m Member) IsAdmin() bool { return m.Role == RoleAdmin }

// CheckPassword compares plain against the stored hash.  Any mismatch,
// including an empty stored hash, fails with ErrAuthorization.
func (m Member) CheckPassword(plain string) error {
	if m.PasswordHash == "" || !utils.VerifyPassword(m.PasswordHash, plain) {
		return fmt.Errorf("%w: wrong password", ErrAuthorization)
	}
	return nil
}
