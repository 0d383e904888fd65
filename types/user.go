package types

import "time"

// Global roles. The first account ever registered becomes RoleAdmin;
// everyone after that starts as RoleMember.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User represents an account in the system.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Email is the user's unique email address, stored lowercase.
	Email string `json:"email" db:"email"`

	// Role is the system-wide privilege tier ("admin" or "member"),
	// independent of any team membership.
	Role string `json:"role" db:"role"`

	// Initials is derived from Name at registration: first letter of the
	// first name token plus first letter of the last, at most two characters.
	Initials string `json:"initials" db:"initials"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the user holds the global admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
