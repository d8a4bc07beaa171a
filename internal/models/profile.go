package models

import "time"

// UserProfile is a role profile accounts are assigned to. The display name
// is free-form; Role ties the profile to the RBAC enum.
type UserProfile struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Role        UserRole  `db:"role" json:"role"`
	Suspended   bool      `db:"suspended" json:"suspended"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
