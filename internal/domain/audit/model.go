package audit

import (
	"time"

	"github.com/google/uuid"
)

// Actions recorded in the audit trail.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionLogin  = "login"
	ActionLogout = "logout"
)

// Resources an audit entry can refer to.
const (
	ResourceAppointment = "appointment"
	ResourcePatient     = "patient"
	ResourceUser        = "user"
	ResourceAuth        = "auth"
)

var validActions = map[string]bool{
	ActionCreate: true,
	ActionUpdate: true,
	ActionDelete: true,
	ActionLogin:  true,
	ActionLogout: true,
}

var validResources = map[string]bool{
	ResourceAppointment: true,
	ResourcePatient:     true,
	ResourceUser:        true,
	ResourceAuth:        true,
}

// Entry is a single immutable audit trail record.
type Entry struct {
	ID         uuid.UUID              `db:"id" json:"id"`
	UserID     uuid.UUID              `db:"user_id" json:"user_id"`
	Action     string                 `db:"action" json:"action"`
	Resource   string                 `db:"resource" json:"resource"`
	ResourceID *uuid.UUID             `db:"resource_id" json:"resource_id,omitempty"`
	Changes    map[string]interface{} `db:"changes" json:"changes,omitempty"`
	IPAddress  string                 `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent  string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt  time.Time              `db:"created_at" json:"created_at"`
}
