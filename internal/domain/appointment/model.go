package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. New appointments always start as scheduled.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusConfirmed: true,
	StatusCompleted: true,
	StatusCancelled: true,
	StatusNoShow:    true,
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	return validStatuses[s]
}

const defaultDuration = 30

// Participant is the projection of a user joined onto an appointment.
type Participant struct {
	ID             uuid.UUID `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"firstName"`
	LastName       string    `db:"last_name" json:"lastName"`
	Email          string    `db:"email" json:"email,omitempty"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	Specialization *string   `db:"specialization" json:"specialization,omitempty"`
}

// FullName returns the display name used in notifications.
func (p *Participant) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Appointment is a scheduled visit between a patient and a doctor.
type Appointment struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Date         time.Time  `db:"appointment_date" json:"appointmentDate"`
	Time         string     `db:"appointment_time" json:"appointmentTime"`
	Duration     int        `db:"duration" json:"duration"`
	Status       string     `db:"status" json:"status"`
	Reason       string     `db:"reason" json:"reason"`
	Notes        *string    `db:"notes" json:"notes,omitempty"`
	Diagnosis    *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	Prescription *string    `db:"prescription" json:"prescription,omitempty"`
	CreatedBy    *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	ModifiedBy   *uuid.UUID `db:"modified_by" json:"modified_by,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`

	Patient *Participant `json:"patient,omitempty"`
	Doctor  *Participant `json:"doctor,omitempty"`
}
