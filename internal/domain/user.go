package domain

import "time"

// Role represents the authorization level of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents an account that can authenticate and own bookings.
// Password is nil for accounts created through OAuth sign-in.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Password  *string   `json:"-" db:"password"`
	Name      string    `json:"name" db:"name"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Actor identifies the authenticated caller of an operation.
type Actor struct {
	ID   int64
	Role Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// AuthorizeOwner allows the operation when the actor owns the resource or
// is an admin. Violations never proceed to a write.
func AuthorizeOwner(actor Actor, ownerID int64) error {
	if actor.IsAdmin() || actor.ID == ownerID {
		return nil
	}
	return ErrForbidden
}

// AuthorizeAdmin allows the operation for admins only.
func AuthorizeAdmin(actor Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	return ErrForbidden
}
