package auth

import "github.com/google/uuid"

// Action identifies an operation gated by the authorization policy.
type Action string

const (
	ActionReadAppointment       Action = "appointment:read"
	ActionCreateAppointment     Action = "appointment:create"
	ActionUpdateAppointment     Action = "appointment:update"
	ActionTransitionAppointment Action = "appointment:transition"
	ActionDeleteAppointment     Action = "appointment:delete"
	ActionReadSummary           Action = "summary:read"
	ActionWriteSummary          Action = "summary:write"
	ActionAppendMedicalRecord   Action = "summary:append-record"
)

// Owners identifies the owning actors of a specific resource instance. For
// an appointment both references are set; for a patient summary only
// PatientID is.
type Owners struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
}

// Authorize is the capability matrix:
//
//	admin   — unrestricted.
//	doctor  — read/write appointments they are the doctor on; read any
//	          summary; write summaries and append history entries for any
//	          patient; may create appointments.
//	patient — read own appointments and own summary; may create an
//	          appointment; may not mutate, delete, or change status.
//
// Resource-level ownership is compared against the actor identity; admin
// short-circuits to allowed.
func Authorize(role string, actorID uuid.UUID, action Action, owners Owners) bool {
	if role == RoleAdmin {
		return true
	}

	switch role {
	case RoleDoctor:
		switch action {
		case ActionReadAppointment, ActionUpdateAppointment, ActionTransitionAppointment:
			return owners.DoctorID == actorID
		case ActionCreateAppointment:
			return true
		case ActionReadSummary, ActionWriteSummary, ActionAppendMedicalRecord:
			return true
		}
	case RolePatient:
		switch action {
		case ActionReadAppointment:
			return owners.PatientID == actorID
		case ActionCreateAppointment:
			return true
		case ActionReadSummary:
			return owners.PatientID == actorID
		}
	}
	return false
}
