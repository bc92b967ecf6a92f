package patient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebook/carebook/internal/domain/apperr"
)

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

const summaryCols = `patient_id, blood_type, allergies, chronic_conditions, current_medications,
	medical_history, emergency_contact, last_visit, total_visits, created_at, updated_at`

func scanSummary(row pgx.Row) (*Summary, error) {
	var s Summary
	err := row.Scan(
		&s.PatientID, &s.BloodType, &s.Allergies, &s.ChronicConditions, &s.CurrentMedications,
		&s.MedicalHistory, &s.EmergencyContact, &s.LastVisit, &s.TotalVisits, &s.CreatedAt, &s.UpdatedAt,
	)
	return &s, err
}

func (r *RepoPG) Get(ctx context.Context, patientID uuid.UUID) (*Summary, error) {
	q := fmt.Sprintf("SELECT %s FROM patient_summary WHERE patient_id = $1", summaryCols)
	s, err := scanSummary(r.pool.QueryRow(ctx, q, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("patient summary", patientID.String())
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RepoPG) Create(ctx context.Context, s *Summary) error {
	q := `INSERT INTO patient_summary (patient_id, blood_type, allergies, chronic_conditions,
		current_medications, medical_history, emergency_contact, last_visit, total_visits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.pool.Exec(ctx, q,
		s.PatientID, s.BloodType, s.Allergies, s.ChronicConditions,
		s.CurrentMedications, s.MedicalHistory, s.EmergencyContact, s.LastVisit, s.TotalVisits,
		s.CreatedAt, s.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("summary for patient %s already exists", s.PatientID)
	}
	return err
}

func (r *RepoPG) Update(ctx context.Context, patientID uuid.UUID, in UpdateInput) (*Summary, error) {
	set := []string{}
	args := []interface{}{}
	idx := 1

	add := func(col string, v interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, v)
		idx++
	}

	if in.BloodType != nil {
		add("blood_type", *in.BloodType)
	}
	if in.Allergies != nil {
		add("allergies", *in.Allergies)
	}
	if in.ChronicConditions != nil {
		add("chronic_conditions", *in.ChronicConditions)
	}
	if in.CurrentMedications != nil {
		add("current_medications", *in.CurrentMedications)
	}
	if in.EmergencyContact != nil {
		add("emergency_contact", *in.EmergencyContact)
	}
	set = append(set, "updated_at = now()")

	q := fmt.Sprintf("UPDATE patient_summary SET %s WHERE patient_id = $%d", strings.Join(set, ", "), idx)
	args = append(args, patientID)

	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound("patient summary", patientID.String())
	}
	return r.Get(ctx, patientID)
}

// RecordVisit increments the counter in a single statement so concurrent
// completions for the same patient cannot race a read-modify-write.
func (r *RepoPG) RecordVisit(ctx context.Context, patientID uuid.UUID, at time.Time) error {
	q := `INSERT INTO patient_summary (patient_id, total_visits, last_visit, created_at, updated_at)
		VALUES ($1, 1, $2, now(), now())
		ON CONFLICT (patient_id) DO UPDATE
		SET total_visits = patient_summary.total_visits + 1,
			last_visit = EXCLUDED.last_visit,
			updated_at = now()`
	_, err := r.pool.Exec(ctx, q, patientID, at)
	return err
}

func (r *RepoPG) AppendMedicalRecord(ctx context.Context, patientID uuid.UUID, rec MedicalRecord) (*Summary, error) {
	entry, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}

	q := `INSERT INTO patient_summary (patient_id, medical_history, created_at, updated_at)
		VALUES ($1, jsonb_build_array($2::jsonb), now(), now())
		ON CONFLICT (patient_id) DO UPDATE
		SET medical_history = patient_summary.medical_history || $2::jsonb,
			updated_at = now()`
	if _, err := r.pool.Exec(ctx, q, patientID, entry); err != nil {
		return nil, err
	}
	return r.Get(ctx, patientID)
}
