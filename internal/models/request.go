package models

import "time"

// RequestStatus is the lifecycle state of an assistance request.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusApproved   RequestStatus = "approved"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusSuspended  RequestStatus = "suspended"
)

// ActiveStatuses are the states in which the owner may still edit a request.
var ActiveStatuses = []RequestStatus{RequestStatusPending, RequestStatusApproved, RequestStatusInProgress}

// TerminalStatuses are the states a request cannot leave through owner edits.
var TerminalStatuses = []RequestStatus{RequestStatusCompleted, RequestStatusSuspended}

// Active reports whether the status still allows owner edits.
func (s RequestStatus) Active() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusInProgress:
		return true
	default:
		return false
	}
}

// Valid reports whether the value is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusInProgress, RequestStatusCompleted, RequestStatusSuspended:
		return true
	default:
		return false
	}
}

// RequestUrgency classifies how soon a request needs attention.
type RequestUrgency string

const (
	UrgencyLow    RequestUrgency = "low"
	UrgencyMedium RequestUrgency = "medium"
	UrgencyHigh   RequestUrgency = "high"
	UrgencyUrgent RequestUrgency = "urgent"
)

// Valid reports whether the value is a known urgency.
func (u RequestUrgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent:
		return true
	default:
		return false
	}
}

// Request is an assistance request created by a PIN user.
//
// ViewCount and ShortlistCount mirror the number of distinct view and
// shortlist rows for the request. They are only mutated by the view and
// shortlist repositories, inside the same transaction as the tracking row.
type Request struct {
	ID             int64          `db:"id" json:"id"`
	PINID          int64          `db:"pin_id" json:"pin_id"`
	Title          string         `db:"title" json:"title"`
	Description    string         `db:"description" json:"description"`
	Category       string         `db:"category" json:"category"`
	Urgency        RequestUrgency `db:"urgency" json:"urgency"`
	Status         RequestStatus  `db:"status" json:"status"`
	Location       *string        `db:"location" json:"location,omitempty"`
	PreferredDate  *time.Time     `db:"preferred_date" json:"preferred_date,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
	ViewCount      int            `db:"view_count" json:"view_count"`
	ShortlistCount int            `db:"shortlist_count" json:"shortlist_count"`
}

// ViewRecord marks that a CSR company has seen a request. At most one row
// exists per (request, company) pair.
type ViewRecord struct {
	ID           int64     `db:"id" json:"id"`
	RequestID    int64     `db:"request_id" json:"request_id"`
	CSRCompanyID int64     `db:"csr_company_id" json:"csr_company_id"`
	ViewedAt     time.Time `db:"viewed_at" json:"viewed_at"`
}

// ShortlistRecord is a CSR company's saved-for-later reference to a request.
type ShortlistRecord struct {
	ID           int64     `db:"id" json:"id"`
	RequestID    int64     `db:"request_id" json:"request_id"`
	CSRCompanyID int64     `db:"csr_company_id" json:"csr_company_id"`
	AddedAt      time.Time `db:"added_at" json:"added_at"`
}

// AvailableRequestFilter captures the CSR browse criteria.
type AvailableRequestFilter struct {
	Term     string
	Category string
	Urgency  RequestUrgency
}

// CompletedRequestFilter narrows completed-request queries.
type CompletedRequestFilter struct {
	Category string
	Title    string
	Date     *time.Time
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
