// Package domain contains the core types shared across the CineLog server.
package domain

import "time"

// Role represents the user's permission level in the system.
// Roles form a strict total order: user < moderator < admin.
type Role string

const (
	// RoleUser grants standard authenticated access.
	RoleUser Role = "user"
	// RoleModerator grants content moderation access.
	RoleModerator Role = "moderator"
	// RoleAdmin grants full administrative access.
	RoleAdmin Role = "admin"
)

// rank maps each role to its position in the hierarchy.
// Unknown roles rank below every valid role.
func (r Role) rank() int {
	switch r {
	case RoleUser:
		return 1
	case RoleModerator:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.rank() > 0
}

// AtLeast reports whether r grants at least the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return r.rank() >= min.rank()
}

// User represents a registered account.
// IDs are monotonically assigned integers and are never reused.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"hashed_password,omitempty"` // Stored hashed, filter from API responses
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsModerator returns true if the user can moderate content.
// Admins moderate too.
func (u *User) IsModerator() bool {
	return u.Role.AtLeast(RoleModerator)
}

// Profile is the safe projection of a User returned by the API.
// It never carries the password hash.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Profile returns the safe projection of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
