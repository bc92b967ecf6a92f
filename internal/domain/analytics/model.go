package analytics

import (
	"time"

	"github.com/google/uuid"
)

// Overview is the dashboard headline counts.
type Overview struct {
	TotalPatients         int `json:"totalPatients"`
	TotalDoctors          int `json:"totalDoctors"`
	TotalAppointments     int `json:"totalAppointments"`
	CompletedAppointments int `json:"completedAppointments"`
	PendingAppointments   int `json:"pendingAppointments"`
}

// StatusCount is one bucket of appointments grouped by status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// DateCount is one bucket of appointments grouped by calendar day.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DoctorCount is one bucket of appointments grouped by doctor.
type DoctorCount struct {
	DoctorID   uuid.UUID `json:"doctor_id"`
	DoctorName string    `json:"doctorName"`
	Count      int       `json:"count"`
}

// AppointmentBreakdown groups appointments three ways over a date range.
type AppointmentBreakdown struct {
	ByStatus []StatusCount `json:"byStatus"`
	ByDate   []DateCount   `json:"byDate"`
	ByDoctor []DoctorCount `json:"byDoctor"`
}

// FrequentPatient pairs a patient with their visit count.
type FrequentPatient struct {
	PatientID   uuid.UUID  `json:"patient_id"`
	PatientName string     `json:"patientName"`
	Email       string     `json:"email"`
	TotalVisits int        `json:"totalVisits"`
	LastVisit   *time.Time `json:"lastVisit,omitempty"`
}

// PatientStats is the patient-centric analytics view.
type PatientStats struct {
	FrequentPatients []FrequentPatient `json:"frequentPatients"`
	NewPatients      int               `json:"newPatients"`
}

// DateRange bounds the appointment breakdown. Zero values mean unbounded.
type DateRange struct {
	Start time.Time
	End   time.Time
}
