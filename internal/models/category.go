package models

import "time"

// ServiceCategory is a platform-managed service type requests refer to by
// name. Requests store the category as an opaque string; suspending a
// category only hides it from pickers, existing requests keep their value.
type ServiceCategory struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Suspended   bool      `db:"suspended" json:"suspended"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CategoryFilter captures list/search criteria for categories.
type CategoryFilter struct {
	Search    string
	Suspended *bool
	Page      int
	PageSize  int
}
