package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebook/carebook/internal/domain/apperr"
	"github.com/carebook/carebook/internal/domain/audit"
	"github.com/carebook/carebook/internal/domain/user"
	"github.com/carebook/carebook/internal/platform/auth"
	"github.com/carebook/carebook/internal/platform/notification"
)

const emailDateFormat = "Mon Jan 02 2006"

// Directory resolves user references. Satisfied by the user repository.
type Directory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// VisitRecorder applies the completed-visit side effect on the patient
// summary. The increment is atomic in the store; a failure here fails the
// transition.
type VisitRecorder interface {
	RecordVisit(ctx context.Context, patientID uuid.UUID, at time.Time) error
}

// RequestMeta carries caller details recorded in the audit trail.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// Service owns the appointment lifecycle: creation, updates, status
// transitions, deletion, and the side effects each of those triggers.
type Service struct {
	repo     Repository
	users    Directory
	visits   VisitRecorder
	recorder *audit.Recorder
	events   EventPublisher
	mailer   *notification.Mailer
	logger   zerolog.Logger
}

func NewService(
	repo Repository,
	users Directory,
	visits VisitRecorder,
	recorder *audit.Recorder,
	events EventPublisher,
	mailer *notification.Mailer,
	logger zerolog.Logger,
) *Service {
	if events == nil {
		events = NopPublisher{}
	}
	return &Service{
		repo:     repo,
		users:    users,
		visits:   visits,
		recorder: recorder,
		events:   events,
		mailer:   mailer,
		logger:   logger,
	}
}

// CreateInput is the payload for scheduling an appointment.
type CreateInput struct {
	PatientID uuid.UUID `json:"patient"`
	DoctorID  uuid.UUID `json:"doctor"`
	Date      time.Time `json:"appointmentDate"`
	Time      string    `json:"appointmentTime"`
	Reason    string    `json:"reason"`
	Duration  *int      `json:"duration,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
}

func (s *Service) resolveParticipant(ctx context.Context, id uuid.UUID, wantRole string) (*user.User, error) {
	if id == uuid.Nil {
		return nil, apperr.Validation("%s reference is required", wantRole)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Validation("%s reference %s does not resolve", wantRole, id)
		}
		return nil, err
	}
	if u.Role != wantRole {
		return nil, apperr.Validation("user %s is not a %s", id, wantRole)
	}
	return u, nil
}

// Create schedules a new appointment in the scheduled state. Both
// participants are notified in real time and by best-effort email.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput, meta RequestMeta) (*Appointment, error) {
	if !auth.Authorize(actor.Role, actor.ID, auth.ActionCreateAppointment, auth.Owners{PatientID: in.PatientID, DoctorID: in.DoctorID}) {
		return nil, apperr.Forbidden("not authorized to create appointments")
	}

	in.Reason = strings.TrimSpace(in.Reason)
	if in.Date.IsZero() {
		return nil, apperr.Validation("appointment date is required")
	}
	if strings.TrimSpace(in.Time) == "" {
		return nil, apperr.Validation("appointment time is required")
	}
	if in.Reason == "" {
		return nil, apperr.Validation("reason for visit is required")
	}
	duration := defaultDuration
	if in.Duration != nil {
		if *in.Duration <= 0 {
			return nil, apperr.Validation("duration must be positive")
		}
		duration = *in.Duration
	}

	if _, err := s.resolveParticipant(ctx, in.PatientID, auth.RolePatient); err != nil {
		return nil, err
	}
	if _, err := s.resolveParticipant(ctx, in.DoctorID, auth.RoleDoctor); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	creator := actor.ID
	a := &Appointment{
		ID:        uuid.New(),
		PatientID: in.PatientID,
		DoctorID:  in.DoctorID,
		Date:      in.Date,
		Time:      in.Time,
		Duration:  duration,
		Status:    StatusScheduled,
		Reason:    in.Reason,
		Notes:     in.Notes,
		CreatedBy: &creator,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	s.events.Publish(created.PatientID, EventCreated, created)
	s.events.Publish(created.DoctorID, EventCreated, created)

	s.recorder.Record(audit.RecordInput{
		UserID:     actor.ID,
		Action:     audit.ActionCreate,
		Resource:   audit.ResourceAppointment,
		ResourceID: &created.ID,
		Changes:    map[string]interface{}{"status": created.Status, "reason": created.Reason},
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})

	if s.mailer != nil {
		date := created.Date.Format(emailDateFormat)
		s.mailer.Send(ctx, notification.TemplateAppointmentScheduled, created.Patient.Email, map[string]string{
			"date": date,
			"time": created.Time,
		})
		s.mailer.Send(ctx, notification.TemplateAppointmentBooked, created.Doctor.Email, map[string]string{
			"patient_name": created.Patient.FullName(),
			"date":         date,
			"time":         created.Time,
		})
	}

	s.logger.Info().Str("appointment_id", created.ID.String()).Msg("appointment created")
	return created, nil
}

// Get returns a single appointment. Patients and doctors may only read
// their own.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.Authorize(actor.Role, actor.ID, auth.ActionReadAppointment, auth.Owners{PatientID: a.PatientID, DoctorID: a.DoctorID}) {
		return nil, apperr.Forbidden("not authorized to access this appointment")
	}
	return a, nil
}

// List returns appointments matching the filter. Instead of erroring, the
// query is silently narrowed to the caller's own records for doctors and
// patients.
func (s *Service) List(ctx context.Context, actor auth.Actor, f Filter, limit, offset int) ([]*Appointment, int, error) {
	switch actor.Role {
	case auth.RoleDoctor:
		id := actor.ID
		f.DoctorID = &id
	case auth.RolePatient:
		id := actor.ID
		f.PatientID = &id
	}
	return s.repo.List(ctx, f, limit, offset)
}

// Update applies a full-field patch. Restricted to admins and the
// appointment's own doctor.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, in UpdateInput, meta RequestMeta) (*Appointment, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.Authorize(actor.Role, actor.ID, auth.ActionUpdateAppointment, auth.Owners{PatientID: existing.PatientID, DoctorID: existing.DoctorID}) {
		return nil, apperr.Forbidden("not authorized to update this appointment")
	}

	if in.Status != nil && !ValidStatus(*in.Status) {
		return nil, apperr.Validation("invalid status %q", *in.Status)
	}
	if in.Duration != nil && *in.Duration <= 0 {
		return nil, apperr.Validation("duration must be positive")
	}
	if in.Reason != nil && strings.TrimSpace(*in.Reason) == "" {
		return nil, apperr.Validation("reason cannot be emptied")
	}

	updated, err := s.repo.Update(ctx, id, in, actor.ID)
	if err != nil {
		return nil, err
	}

	s.events.Publish(updated.PatientID, EventUpdated, updated)
	s.events.Publish(updated.DoctorID, EventUpdated, updated)

	s.recorder.Record(audit.RecordInput{
		UserID:     actor.ID,
		Action:     audit.ActionUpdate,
		Resource:   audit.ResourceAppointment,
		ResourceID: &updated.ID,
		Changes:    changesOf(in),
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})

	s.logger.Info().Str("appointment_id", updated.ID.String()).Msg("appointment updated")
	return updated, nil
}

// TransitionStatus changes only the status. Side effects run in a fixed
// order: persist, then the visit counter when completing, then the patient
// event, then audit, then best-effort email. Only the counter update can
// fail the call once the status is persisted.
func (s *Service) TransitionStatus(ctx context.Context, actor auth.Actor, id uuid.UUID, status string, meta RequestMeta) (*Appointment, error) {
	if !ValidStatus(status) {
		return nil, apperr.Validation("invalid status %q", status)
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.Authorize(actor.Role, actor.ID, auth.ActionTransitionAppointment, auth.Owners{PatientID: existing.PatientID, DoctorID: existing.DoctorID}) {
		return nil, apperr.Forbidden("not authorized to change this appointment's status")
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status, actor.ID)
	if err != nil {
		return nil, err
	}

	if status == StatusCompleted {
		if err := s.visits.RecordVisit(ctx, updated.PatientID, time.Now().UTC()); err != nil {
			return nil, err
		}
	}

	s.events.Publish(updated.PatientID, EventStatusUpdated, updated)

	s.recorder.Record(audit.RecordInput{
		UserID:     actor.ID,
		Action:     audit.ActionUpdate,
		Resource:   audit.ResourceAppointment,
		ResourceID: &updated.ID,
		Changes:    map[string]interface{}{"status": status},
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})

	if s.mailer != nil {
		s.mailer.Send(ctx, notification.TemplateStatusUpdated, updated.Patient.Email, map[string]string{
			"status": status,
		})
	}

	s.logger.Info().Str("appointment_id", updated.ID.String()).Str("status", status).Msg("appointment status updated")
	return updated, nil
}

// Delete removes an appointment permanently. Admin only; both participants
// are told which appointment vanished, nothing more.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID, meta RequestMeta) error {
	if !auth.Authorize(actor.Role, actor.ID, auth.ActionDeleteAppointment, auth.Owners{}) {
		return apperr.Forbidden("not authorized to delete appointments")
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	payload := map[string]string{"id": id.String()}
	s.events.Publish(existing.PatientID, EventDeleted, payload)
	s.events.Publish(existing.DoctorID, EventDeleted, payload)

	s.recorder.Record(audit.RecordInput{
		UserID:     actor.ID,
		Action:     audit.ActionDelete,
		Resource:   audit.ResourceAppointment,
		ResourceID: &id,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})

	s.logger.Info().Str("appointment_id", id.String()).Msg("appointment deleted")
	return nil
}

// ListForDoctor returns a doctor's appointments in schedule order.
func (s *Service) ListForDoctor(ctx context.Context, actor auth.Actor, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	f := Filter{DoctorID: &doctorID}
	return s.List(ctx, actor, f, limit, offset)
}

// ListForPatient returns a patient's appointments.
func (s *Service) ListForPatient(ctx context.Context, actor auth.Actor, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	f := Filter{PatientID: &patientID}
	return s.List(ctx, actor, f, limit, offset)
}

func changesOf(in UpdateInput) map[string]interface{} {
	changes := map[string]interface{}{}
	if in.Date != nil {
		changes["appointmentDate"] = in.Date.Format(time.RFC3339)
	}
	if in.Time != nil {
		changes["appointmentTime"] = *in.Time
	}
	if in.Duration != nil {
		changes["duration"] = *in.Duration
	}
	if in.Status != nil {
		changes["status"] = *in.Status
	}
	if in.Reason != nil {
		changes["reason"] = *in.Reason
	}
	if in.Notes != nil {
		changes["notes"] = *in.Notes
	}
	if in.Diagnosis != nil {
		changes["diagnosis"] = *in.Diagnosis
	}
	if in.Prescription != nil {
		changes["prescription"] = *in.Prescription
	}
	return changes
}
