package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebook/carebook/internal/domain/apperr"
)

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

const apptCols = `a.id, a.patient_id, a.doctor_id, a.appointment_date, a.appointment_time,
	a.duration, a.status, a.reason, a.notes, a.diagnosis, a.prescription,
	a.created_by, a.modified_by, a.created_at, a.updated_at,
	p.first_name, p.last_name, p.email, p.phone,
	d.first_name, d.last_name, d.email, d.specialization`

const apptJoin = `FROM appointments a
	JOIN users p ON p.id = a.patient_id
	JOIN users d ON d.id = a.doctor_id`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a       Appointment
		patient Participant
		doctor  Participant
	)
	err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time,
		&a.Duration, &a.Status, &a.Reason, &a.Notes, &a.Diagnosis, &a.Prescription,
		&a.CreatedBy, &a.ModifiedBy, &a.CreatedAt, &a.UpdatedAt,
		&patient.FirstName, &patient.LastName, &patient.Email, &patient.Phone,
		&doctor.FirstName, &doctor.LastName, &doctor.Email, &doctor.Specialization,
	)
	if err != nil {
		return nil, err
	}
	patient.ID = a.PatientID
	doctor.ID = a.DoctorID
	a.Patient = &patient
	a.Doctor = &doctor
	return &a, nil
}

func (r *RepoPG) Create(ctx context.Context, a *Appointment) error {
	q := `INSERT INTO appointments (id, patient_id, doctor_id, appointment_date, appointment_time,
		duration, status, reason, notes, diagnosis, prescription, created_by, modified_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.pool.Exec(ctx, q,
		a.ID, a.PatientID, a.DoctorID, a.Date, a.Time,
		a.Duration, a.Status, a.Reason, a.Notes, a.Diagnosis, a.Prescription,
		a.CreatedBy, a.ModifiedBy, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	q := fmt.Sprintf("SELECT %s %s WHERE a.id = $1", apptCols, apptJoin)
	a, err := scanAppointment(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("appointment", id.String())
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *RepoPG) Update(ctx context.Context, id uuid.UUID, in UpdateInput, modifiedBy uuid.UUID) (*Appointment, error) {
	set := []string{}
	args := []interface{}{}
	idx := 1

	add := func(col string, v interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, v)
		idx++
	}

	if in.Date != nil {
		add("appointment_date", *in.Date)
	}
	if in.Time != nil {
		add("appointment_time", *in.Time)
	}
	if in.Duration != nil {
		add("duration", *in.Duration)
	}
	if in.Status != nil {
		add("status", *in.Status)
	}
	if in.Reason != nil {
		add("reason", *in.Reason)
	}
	if in.Notes != nil {
		add("notes", *in.Notes)
	}
	if in.Diagnosis != nil {
		add("diagnosis", *in.Diagnosis)
	}
	if in.Prescription != nil {
		add("prescription", *in.Prescription)
	}
	add("modified_by", modifiedBy)
	set = append(set, "updated_at = now()")

	q := fmt.Sprintf("UPDATE appointments SET %s WHERE id = $%d", strings.Join(set, ", "), idx)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound("appointment", id.String())
	}
	return r.GetByID(ctx, id)
}

func (r *RepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string, modifiedBy uuid.UUID) (*Appointment, error) {
	q := `UPDATE appointments SET status = $1, modified_by = $2, updated_at = now() WHERE id = $3`
	tag, err := r.pool.Exec(ctx, q, status, modifiedBy, id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound("appointment", id.String())
	}
	return r.GetByID(ctx, id)
}

func (r *RepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM appointments WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment", id.String())
	}
	return nil
}

func (r *RepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if f.Status != "" {
		where = append(where, fmt.Sprintf("a.status = $%d", idx))
		args = append(args, f.Status)
		idx++
	}
	if f.Date != nil {
		// Match the whole day the date falls on.
		day := time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, time.UTC)
		where = append(where, fmt.Sprintf("a.appointment_date >= $%d AND a.appointment_date < $%d + interval '1 day'", idx, idx))
		args = append(args, day)
		idx++
	}
	if f.DoctorID != nil {
		where = append(where, fmt.Sprintf("a.doctor_id = $%d", idx))
		args = append(args, *f.DoctorID)
		idx++
	}
	if f.PatientID != nil {
		where = append(where, fmt.Sprintf("a.patient_id = $%d", idx))
		args = append(args, *f.PatientID)
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) %s %s", apptJoin, whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s %s %s ORDER BY a.appointment_date, a.appointment_time LIMIT $%d OFFSET $%d",
		apptCols, apptJoin, whereClause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
