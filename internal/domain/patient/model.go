package patient

import (
	"time"

	"github.com/google/uuid"
)

var validBloodTypes = map[string]bool{
	"A+": true, "A-": true,
	"B+": true, "B-": true,
	"AB+": true, "AB-": true,
	"O+": true, "O-": true,
}

// ValidBloodType reports whether bt is a known blood type.
func ValidBloodType(bt string) bool {
	return validBloodTypes[bt]
}

// Medication is one entry of a patient's current medication list.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

// MedicalRecord is one append-only entry in the patient's history.
type MedicalRecord struct {
	Date      time.Time `json:"date"`
	Diagnosis string    `json:"diagnosis"`
	Treatment string    `json:"treatment"`
	Notes     string    `json:"notes,omitempty"`
	DoctorID  uuid.UUID `json:"doctor"`
}

// EmergencyContact is who to call when the patient cannot answer.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

// Summary is the per-patient medical summary. Exactly one exists per
// patient; it is created lazily on first write or first completed visit.
type Summary struct {
	PatientID          uuid.UUID         `db:"patient_id" json:"patient_id"`
	BloodType          *string           `db:"blood_type" json:"bloodType,omitempty"`
	Allergies          []string          `db:"allergies" json:"allergies"`
	ChronicConditions  []string          `db:"chronic_conditions" json:"chronicConditions"`
	CurrentMedications []Medication      `db:"current_medications" json:"currentMedications"`
	MedicalHistory     []MedicalRecord   `db:"medical_history" json:"medicalHistory"`
	EmergencyContact   *EmergencyContact `db:"emergency_contact" json:"emergencyContact,omitempty"`
	LastVisit          *time.Time        `db:"last_visit" json:"lastVisit,omitempty"`
	TotalVisits        int               `db:"total_visits" json:"totalVisits"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updated_at"`
}
