package domain

import (
	"fmt"
	"time"
)

// Role identifies what a user is allowed to do. A single enumerated value
// gates behavior at every operation boundary; there are no user subtypes.
type Role string

// The three roles recognized by the platform.
const (
	RoleTagger   Role = "tagger"
	RoleReviewer Role = "reviewer"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a string into a Role.
// Returns ErrInvalidRole for unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleTagger, RoleReviewer, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Valid reports whether the role is one of the recognized values.
func (r Role) Valid() bool {
	switch r {
	case RoleTagger, RoleReviewer, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered operator of the platform.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"` // Never expose the password hash in JSON
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewUser creates a User with the given username, bcrypt hash and role.
// Returns an error if validation fails.
//
// NOTE: the caller is responsible for hashing the password before calling
// this constructor; the domain layer never sees plaintext credentials.
func NewUser(username, hashedPassword string, role Role) (*User, error) {
	user := &User{
		Username:       username,
		HashedPassword: hashedPassword,
		Role:           role,
		CreatedAt:      time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.Username == "" {
		return ErrEmptyUsername
	}
	if u.HashedPassword == "" {
		return ErrEmptyPassword
	}
	if !u.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, u.Role)
	}
	return nil
}

// Can reports whether the user may act in any of the given roles.
// Admin is implicitly allowed wherever a specific operator role is required.
func (u *User) Can(roles ...Role) bool {
	if u.Role == RoleAdmin {
		return true
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
