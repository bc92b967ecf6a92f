package patient

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebook/carebook/internal/domain/apperr"
	"github.com/carebook/carebook/internal/domain/audit"
	"github.com/carebook/carebook/internal/platform/auth"
)

type mockRepo struct {
	mu        sync.Mutex
	summaries map[uuid.UUID]*Summary
}

func newMockRepo() *mockRepo {
	return &mockRepo{summaries: make(map[uuid.UUID]*Summary)}
}

func (m *mockRepo) Get(_ context.Context, patientID uuid.UUID) (*Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[patientID]
	if !ok {
		return nil, apperr.NotFound("patient summary", patientID.String())
	}
	out := *s
	return &out, nil
}

func (m *mockRepo) Create(_ context.Context, s *Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.summaries[s.PatientID]; ok {
		return apperr.Conflict("summary for patient %s already exists", s.PatientID)
	}
	stored := *s
	m.summaries[s.PatientID] = &stored
	return nil
}

func (m *mockRepo) Update(_ context.Context, patientID uuid.UUID, in UpdateInput) (*Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[patientID]
	if !ok {
		return nil, apperr.NotFound("patient summary", patientID.String())
	}
	if in.BloodType != nil {
		s.BloodType = in.BloodType
	}
	if in.Allergies != nil {
		s.Allergies = *in.Allergies
	}
	if in.ChronicConditions != nil {
		s.ChronicConditions = *in.ChronicConditions
	}
	if in.CurrentMedications != nil {
		s.CurrentMedications = *in.CurrentMedications
	}
	if in.EmergencyContact != nil {
		s.EmergencyContact = in.EmergencyContact
	}
	out := *s
	return &out, nil
}

func (m *mockRepo) RecordVisit(_ context.Context, patientID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[patientID]
	if !ok {
		s = &Summary{PatientID: patientID}
		m.summaries[patientID] = s
	}
	s.TotalVisits++
	s.LastVisit = &at
	return nil
}

func (m *mockRepo) AppendMedicalRecord(_ context.Context, patientID uuid.UUID, rec MedicalRecord) (*Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[patientID]
	if !ok {
		s = &Summary{PatientID: patientID}
		m.summaries[patientID] = s
	}
	s.MedicalHistory = append(s.MedicalHistory, rec)
	out := *s
	return &out, nil
}

type auditSink struct {
	mu      sync.Mutex
	entries []*audit.Entry
}

func (a *auditSink) Insert(_ context.Context, e *audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

func (a *auditSink) ListByUser(_ context.Context, _ uuid.UUID, _, _ int) ([]*audit.Entry, int, error) {
	return nil, 0, nil
}

func (a *auditSink) ListByResource(_ context.Context, _ string, _ uuid.UUID, _, _ int) ([]*audit.Entry, int, error) {
	return nil, 0, nil
}

func newTestService() (*Service, *mockRepo, *auditSink, *audit.Recorder) {
	repo := newMockRepo()
	sink := &auditSink{}
	recorder := audit.NewRecorder(sink, zerolog.Nop())
	return NewService(repo, recorder, zerolog.Nop()), repo, sink, recorder
}

func strptr(s string) *string { return &s }

func TestCreate_AdminAndDoctorOnly(t *testing.T) {
	svc, _, _, _ := newTestService()
	patientID := uuid.New()

	if _, err := svc.Create(context.Background(), auth.Actor{ID: patientID, Role: auth.RolePatient}, patientID, CreateInput{}, RequestMeta{}); !apperr.IsForbidden(err) {
		t.Errorf("expected forbidden for patient, got %v", err)
	}

	doctor := auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor}
	summary, err := svc.Create(context.Background(), doctor, patientID, CreateInput{
		BloodType: strptr("O+"),
		Allergies: []string{" penicillin ", ""},
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("doctor create failed: %v", err)
	}
	if summary.BloodType == nil || *summary.BloodType != "O+" {
		t.Error("blood type not stored")
	}
	if len(summary.Allergies) != 1 || summary.Allergies[0] != "penicillin" {
		t.Errorf("allergies = %v, want trimmed single entry", summary.Allergies)
	}
	if summary.TotalVisits != 0 {
		t.Errorf("new summary visits = %d, want 0", summary.TotalVisits)
	}
}

func TestCreate_RejectsBadBloodType(t *testing.T) {
	svc, _, _, _ := newTestService()
	admin := auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}

	if _, err := svc.Create(context.Background(), admin, uuid.New(), CreateInput{BloodType: strptr("Q+")}, RequestMeta{}); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGet_PatientOwnOnly(t *testing.T) {
	svc, repo, _, _ := newTestService()
	patientID := uuid.New()
	repo.summaries[patientID] = &Summary{PatientID: patientID}

	owner := auth.Actor{ID: patientID, Role: auth.RolePatient}
	if _, err := svc.Get(context.Background(), owner, patientID); err != nil {
		t.Errorf("own read failed: %v", err)
	}

	stranger := auth.Actor{ID: uuid.New(), Role: auth.RolePatient}
	if _, err := svc.Get(context.Background(), stranger, patientID); !apperr.IsForbidden(err) {
		t.Errorf("expected forbidden, got %v", err)
	}

	doctor := auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor}
	if _, err := svc.Get(context.Background(), doctor, patientID); err != nil {
		t.Errorf("doctor read failed: %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	admin := auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}

	if _, err := svc.Get(context.Background(), admin, uuid.New()); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdate_NotFoundWithoutSummary(t *testing.T) {
	svc, _, _, _ := newTestService()
	admin := auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}

	if _, err := svc.Update(context.Background(), admin, uuid.New(), UpdateInput{BloodType: strptr("A-")}, RequestMeta{}); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestAddMedicalRecord_AppendsWithAuthor(t *testing.T) {
	svc, repo, sink, recorder := newTestService()
	patientID := uuid.New()
	doctor := auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor}

	summary, err := svc.AddMedicalRecord(context.Background(), doctor, patientID, MedicalRecordInput{
		Diagnosis: "hypertension",
		Treatment: "lisinopril",
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("add record failed: %v", err)
	}
	if len(summary.MedicalHistory) != 1 {
		t.Fatalf("history = %d entries, want 1", len(summary.MedicalHistory))
	}
	rec := summary.MedicalHistory[0]
	if rec.DoctorID != doctor.ID {
		t.Error("record not attributed to the authoring doctor")
	}
	if rec.Date.IsZero() {
		t.Error("record date not set")
	}

	// A second record appends, never replaces.
	summary, err = svc.AddMedicalRecord(context.Background(), doctor, patientID, MedicalRecordInput{Diagnosis: "resolved"}, RequestMeta{})
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.MedicalHistory) != 2 {
		t.Errorf("history = %d entries, want 2", len(summary.MedicalHistory))
	}
	if repo.summaries[patientID].MedicalHistory[0].Diagnosis != "hypertension" {
		t.Error("first entry was mutated")
	}

	recorder.Drain()
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.entries) != 2 {
		t.Errorf("audit entries = %d, want 2", len(sink.entries))
	}
}

func TestAddMedicalRecord_PatientForbidden(t *testing.T) {
	svc, _, _, _ := newTestService()
	patientID := uuid.New()
	owner := auth.Actor{ID: patientID, Role: auth.RolePatient}

	if _, err := svc.AddMedicalRecord(context.Background(), owner, patientID, MedicalRecordInput{Diagnosis: "self"}, RequestMeta{}); !apperr.IsForbidden(err) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestAddMedicalRecord_RequiresContent(t *testing.T) {
	svc, _, _, _ := newTestService()
	doctor := auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor}

	if _, err := svc.AddMedicalRecord(context.Background(), doctor, uuid.New(), MedicalRecordInput{Notes: "just notes"}, RequestMeta{}); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestRecordVisit_LazyCreateAndIncrement(t *testing.T) {
	svc, repo, _, _ := newTestService()
	patientID := uuid.New()
	at := time.Now().UTC()

	if err := svc.RecordVisit(context.Background(), patientID, at); err != nil {
		t.Fatalf("record visit failed: %v", err)
	}
	s := repo.summaries[patientID]
	if s == nil || s.TotalVisits != 1 {
		t.Fatalf("expected lazily created summary with 1 visit, got %+v", s)
	}
	if s.LastVisit == nil || !s.LastVisit.Equal(at) {
		t.Error("last visit not set")
	}

	later := at.Add(time.Hour)
	if err := svc.RecordVisit(context.Background(), patientID, later); err != nil {
		t.Fatal(err)
	}
	if s.TotalVisits != 2 {
		t.Errorf("visits = %d, want 2", s.TotalVisits)
	}
	if !s.LastVisit.Equal(later) {
		t.Error("last visit not advanced")
	}
}
