package models

import "time"

// UserRole represents the closed set of roles used for RBAC decisions.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleCSR      UserRole = "CSR"
	RolePIN      UserRole = "PIN"
	RolePlatform UserRole = "PLATFORM"
)

// Valid reports whether the value is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleCSR, RolePIN, RolePlatform:
		return true
	default:
		return false
	}
}

// User represents an application account stored in the users table.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	ProfileID    int64     `db:"profile_id" json:"profile_id"`
	Suspended    bool      `db:"suspended" json:"suspended"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserDetail joins the account with its profile for responses.
type UserDetail struct {
	User
	ProfileName      string   `db:"profile_name" json:"profile_name"`
	Role             UserRole `db:"role" json:"role"`
	ProfileSuspended bool     `db:"profile_suspended" json:"profile_suspended"`
}

// UserFilter captures filtering criteria for listing accounts.
type UserFilter struct {
	ProfileID *int64
	Suspended *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
