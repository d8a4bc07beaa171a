package models

import "time"

// AuditAction labels the recorded event.
type AuditAction string

const (
	AuditActionLogin          AuditAction = "LOGIN"
	AuditActionLogout         AuditAction = "LOGOUT"
	AuditActionPasswordChange AuditAction = "PASSWORD_CHANGE"
)

// AuditLog records security-relevant account events.
type AuditLog struct {
	ID        string      `db:"id" json:"id"`
	UserID    *int64      `db:"user_id" json:"user_id,omitempty"`
	Action    AuditAction `db:"action" json:"action"`
	Resource  string      `db:"resource" json:"resource"`
	Detail    []byte      `db:"detail" json:"detail,omitempty"`
	IPAddress string      `db:"ip_address" json:"-"`
	UserAgent string      `db:"user_agent" json:"-"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}
