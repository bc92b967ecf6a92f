package auth

import (
	"testing"

	"github.com/google/uuid"
)

func TestAuthorizeAppointmentRead(t *testing.T) {
	patient := uuid.New()
	doctor := uuid.New()
	stranger := uuid.New()
	owners := Owners{PatientID: patient, DoctorID: doctor}

	cases := []struct {
		name    string
		role    string
		actor   uuid.UUID
		allowed bool
	}{
		{"admin reads anything", RoleAdmin, stranger, true},
		{"owning doctor", RoleDoctor, doctor, true},
		{"other doctor", RoleDoctor, stranger, false},
		{"owning patient", RolePatient, patient, true},
		{"other patient", RolePatient, stranger, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Authorize(tc.role, tc.actor, ActionReadAppointment, owners); got != tc.allowed {
				t.Fatalf("Authorize = %v, want %v", got, tc.allowed)
			}
		})
	}
}

func TestAuthorizeAppointmentMutation(t *testing.T) {
	patient := uuid.New()
	doctor := uuid.New()
	owners := Owners{PatientID: patient, DoctorID: doctor}

	// Patients may create but never mutate, transition, or delete.
	if !Authorize(RolePatient, patient, ActionCreateAppointment, Owners{}) {
		t.Error("patient should be allowed to create an appointment")
	}
	for _, action := range []Action{ActionUpdateAppointment, ActionTransitionAppointment, ActionDeleteAppointment} {
		if Authorize(RolePatient, patient, action, owners) {
			t.Errorf("patient should not be allowed %s on own appointment", action)
		}
	}

	// Doctors may update and transition their own appointments only.
	if !Authorize(RoleDoctor, doctor, ActionTransitionAppointment, owners) {
		t.Error("owning doctor should be allowed to transition status")
	}
	if Authorize(RoleDoctor, uuid.New(), ActionTransitionAppointment, owners) {
		t.Error("non-owning doctor should not be allowed to transition status")
	}

	// Delete is admin-only.
	if Authorize(RoleDoctor, doctor, ActionDeleteAppointment, owners) {
		t.Error("doctor should not be allowed to delete")
	}
	if !Authorize(RoleAdmin, uuid.New(), ActionDeleteAppointment, owners) {
		t.Error("admin should be allowed to delete")
	}
}

func TestAuthorizeSummary(t *testing.T) {
	patient := uuid.New()
	doctor := uuid.New()
	owners := Owners{PatientID: patient}

	if !Authorize(RoleDoctor, doctor, ActionReadSummary, owners) {
		t.Error("doctor should read any summary")
	}
	if !Authorize(RoleDoctor, doctor, ActionAppendMedicalRecord, owners) {
		t.Error("doctor should append history for any patient")
	}
	if !Authorize(RolePatient, patient, ActionReadSummary, owners) {
		t.Error("patient should read own summary")
	}
	if Authorize(RolePatient, uuid.New(), ActionReadSummary, owners) {
		t.Error("patient should not read another patient's summary")
	}
	if Authorize(RolePatient, patient, ActionWriteSummary, owners) {
		t.Error("patient should not write summaries")
	}
}
