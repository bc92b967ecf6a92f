package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows a List query. Zero-valued fields are ignored; Date matches
// the whole day it falls on.
type Filter struct {
	Status    string
	Date      *time.Time
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
}

// UpdateInput is a partial update. Nil fields are left untouched.
type UpdateInput struct {
	Date         *time.Time `json:"appointmentDate,omitempty"`
	Time         *string    `json:"appointmentTime,omitempty"`
	Duration     *int       `json:"duration,omitempty"`
	Status       *string    `json:"status,omitempty"`
	Reason       *string    `json:"reason,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	Diagnosis    *string    `json:"diagnosis,omitempty"`
	Prescription *string    `json:"prescription,omitempty"`
}

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput, modifiedBy uuid.UUID) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, modifiedBy uuid.UUID) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)
}
