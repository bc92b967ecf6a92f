package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UpdateInput is a partial summary update. Nil fields are left untouched.
// Medical history is excluded on purpose; it only grows through
// AppendMedicalRecord.
type UpdateInput struct {
	BloodType          *string           `json:"bloodType,omitempty"`
	Allergies          *[]string         `json:"allergies,omitempty"`
	ChronicConditions  *[]string         `json:"chronicConditions,omitempty"`
	CurrentMedications *[]Medication     `json:"currentMedications,omitempty"`
	EmergencyContact   *EmergencyContact `json:"emergencyContact,omitempty"`
}

type Repository interface {
	Get(ctx context.Context, patientID uuid.UUID) (*Summary, error)
	Create(ctx context.Context, s *Summary) error
	Update(ctx context.Context, patientID uuid.UUID, in UpdateInput) (*Summary, error)
	// RecordVisit atomically increments the visit counter, creating the
	// summary when absent. Safe under concurrent calls for one patient.
	RecordVisit(ctx context.Context, patientID uuid.UUID, at time.Time) error
	// AppendMedicalRecord appends one history entry, creating the summary
	// when absent.
	AppendMedicalRecord(ctx context.Context, patientID uuid.UUID, rec MedicalRecord) (*Summary, error)
}
