package patient

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebook/carebook/internal/domain/apperr"
	"github.com/carebook/carebook/internal/domain/audit"
	"github.com/carebook/carebook/internal/platform/auth"
)

// Service owns the patient summary: demographics-adjacent medical facts,
// the append-only history, and the visit counter fed by completed
// appointments.
type Service struct {
	repo     Repository
	recorder *audit.Recorder
	logger   zerolog.Logger
}

func NewService(repo Repository, recorder *audit.Recorder, logger zerolog.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, logger: logger}
}

// Get returns a patient's summary. Patients may only read their own;
// doctors and admins may read any.
func (s *Service) Get(ctx context.Context, actor auth.Actor, patientID uuid.UUID) (*Summary, error) {
	if !auth.Authorize(actor.Role, actor.ID, auth.ActionReadSummary, auth.Owners{PatientID: patientID}) {
		return nil, apperr.Forbidden("not authorized to access this patient summary")
	}
	return s.repo.Get(ctx, patientID)
}

// CreateInput is the payload for explicitly creating a summary.
type CreateInput struct {
	BloodType          *string           `json:"bloodType,omitempty"`
	Allergies          []string          `json:"allergies,omitempty"`
	ChronicConditions  []string          `json:"chronicConditions,omitempty"`
	CurrentMedications []Medication      `json:"currentMedications,omitempty"`
	EmergencyContact   *EmergencyContact `json:"emergencyContact,omitempty"`
}

// Create creates a summary for a patient. Admin and doctor only.
func (s *Service) Create(ctx context.Context, actor auth.Actor, patientID uuid.UUID, in CreateInput, meta RequestMeta) (*Summary, error) {
	if !auth.Authorize(actor.Role, actor.ID, auth.ActionWriteSummary, auth.Owners{PatientID: patientID}) {
		return nil, apperr.Forbidden("not authorized to create patient summaries")
	}
	if in.BloodType != nil && !ValidBloodType(*in.BloodType) {
		return nil, apperr.Validation("invalid blood type %q", *in.BloodType)
	}

	now := time.Now().UTC()
	summary := &Summary{
		PatientID:          patientID,
		BloodType:          in.BloodType,
		Allergies:          trimmed(in.Allergies),
		ChronicConditions:  trimmed(in.ChronicConditions),
		CurrentMedications: in.CurrentMedications,
		MedicalHistory:     []MedicalRecord{},
		EmergencyContact:   in.EmergencyContact,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if summary.Allergies == nil {
		summary.Allergies = []string{}
	}
	if summary.ChronicConditions == nil {
		summary.ChronicConditions = []string{}
	}
	if summary.CurrentMedications == nil {
		summary.CurrentMedications = []Medication{}
	}

	if err := s.repo.Create(ctx, summary); err != nil {
		return nil, err
	}

	s.recorder.Record(audit.RecordInput{
		UserID:     actor.ID,
		Action:     audit.ActionCreate,
		Resource:   audit.ResourcePatient,
		ResourceID: &patientID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})

	s.logger.Info().Str("patient_id", patientID.String()).Msg("patient summary created")
	return summary, nil
}

// Update applies a partial summary update. Admin and doctor only.
func (s *Service) Update(ctx context.Context, actor auth.Actor, patientID uuid.UUID, in UpdateInput, meta RequestMeta) (*Summary, error) {
	if !auth.Authorize(actor.Role, actor.ID, auth.ActionWriteSummary, auth.Owners{PatientID: patientID}) {
		return nil, apperr.Forbidden("not authorized to update patient summaries")
	}
	if in.BloodType != nil && !ValidBloodType(*in.BloodType) {
		return nil, apperr.Validation("invalid blood type %q", *in.BloodType)
	}

	updated, err := s.repo.Update(ctx, patientID, in)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(audit.RecordInput{
		UserID:     actor.ID,
		Action:     audit.ActionUpdate,
		Resource:   audit.ResourcePatient,
		ResourceID: &patientID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})

	s.logger.Info().Str("patient_id", patientID.String()).Msg("patient summary updated")
	return updated, nil
}

// MedicalRecordInput is the payload for one history entry. The authoring
// doctor is always the caller.
type MedicalRecordInput struct {
	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment"`
	Notes     string `json:"notes,omitempty"`
}

// AddMedicalRecord appends a history entry, creating the summary when
// absent. Admin and doctor only; entries are never edited or removed.
func (s *Service) AddMedicalRecord(ctx context.Context, actor auth.Actor, patientID uuid.UUID, in MedicalRecordInput, meta RequestMeta) (*Summary, error) {
	if !auth.Authorize(actor.Role, actor.ID, auth.ActionAppendMedicalRecord, auth.Owners{PatientID: patientID}) {
		return nil, apperr.Forbidden("not authorized to add medical records")
	}
	if strings.TrimSpace(in.Diagnosis) == "" && strings.TrimSpace(in.Treatment) == "" {
		return nil, apperr.Validation("a medical record needs a diagnosis or a treatment")
	}

	rec := MedicalRecord{
		Date:      time.Now().UTC(),
		Diagnosis: strings.TrimSpace(in.Diagnosis),
		Treatment: strings.TrimSpace(in.Treatment),
		Notes:     strings.TrimSpace(in.Notes),
		DoctorID:  actor.ID,
	}

	updated, err := s.repo.AppendMedicalRecord(ctx, patientID, rec)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(audit.RecordInput{
		UserID:     actor.ID,
		Action:     audit.ActionCreate,
		Resource:   audit.ResourcePatient,
		ResourceID: &patientID,
		Changes:    map[string]interface{}{"diagnosis": rec.Diagnosis, "treatment": rec.Treatment},
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})

	s.logger.Info().Str("patient_id", patientID.String()).Msg("medical record added")
	return updated, nil
}

// RecordVisit bumps the visit counter for a completed appointment.
// Called by the appointment state machine, not by a route.
func (s *Service) RecordVisit(ctx context.Context, patientID uuid.UUID, at time.Time) error {
	return s.repo.RecordVisit(ctx, patientID, at)
}

// RequestMeta carries caller details recorded in the audit trail.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

func trimmed(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
