package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

func (r *RepoPG) Overview(ctx context.Context) (*Overview, error) {
	q := `SELECT
		(SELECT COUNT(*) FROM users WHERE role = 'patient'),
		(SELECT COUNT(*) FROM users WHERE role = 'doctor'),
		(SELECT COUNT(*) FROM appointments),
		(SELECT COUNT(*) FROM appointments WHERE status = 'completed'),
		(SELECT COUNT(*) FROM appointments WHERE status IN ('scheduled', 'confirmed'))`

	var o Overview
	err := r.pool.QueryRow(ctx, q).Scan(
		&o.TotalPatients, &o.TotalDoctors, &o.TotalAppointments,
		&o.CompletedAppointments, &o.PendingAppointments,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func rangeClause(r DateRange, args *[]interface{}) string {
	where := []string{}
	if !r.Start.IsZero() {
		*args = append(*args, r.Start)
		where = append(where, fmt.Sprintf("a.appointment_date >= $%d", len(*args)))
	}
	if !r.End.IsZero() {
		*args = append(*args, r.End)
		where = append(where, fmt.Sprintf("a.appointment_date <= $%d", len(*args)))
	}
	if len(where) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(where, " AND ")
}

func (r *RepoPG) AppointmentBreakdown(ctx context.Context, dr DateRange) (*AppointmentBreakdown, error) {
	out := &AppointmentBreakdown{
		ByStatus: []StatusCount{},
		ByDate:   []DateCount{},
		ByDoctor: []DoctorCount{},
	}

	var args []interface{}
	clause := rangeClause(dr, &args)

	statusQ := fmt.Sprintf("SELECT a.status, COUNT(*) FROM appointments a %s GROUP BY a.status", clause)
	rows, err := r.pool.Query(ctx, statusQ, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		out.ByStatus = append(out.ByStatus, sc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dateQ := fmt.Sprintf(`SELECT to_char(a.appointment_date, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM appointments a %s GROUP BY day ORDER BY day`, clause)
	rows, err = r.pool.Query(ctx, dateQ, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var dc DateCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		out.ByDate = append(out.ByDate, dc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	doctorQ := fmt.Sprintf(`SELECT a.doctor_id, d.first_name || ' ' || d.last_name, COUNT(*)
		FROM appointments a JOIN users d ON d.id = a.doctor_id
		%s GROUP BY a.doctor_id, d.first_name, d.last_name ORDER BY COUNT(*) DESC`, clause)
	rows, err = r.pool.Query(ctx, doctorQ, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var dc DoctorCount
		if err := rows.Scan(&dc.DoctorID, &dc.DoctorName, &dc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		out.ByDoctor = append(out.ByDoctor, dc)
	}
	rows.Close()
	return out, rows.Err()
}

func (r *RepoPG) PatientStats(ctx context.Context, frequentLimit int, newSinceDays int) (*PatientStats, error) {
	out := &PatientStats{FrequentPatients: []FrequentPatient{}}

	q := `SELECT s.patient_id, p.first_name || ' ' || p.last_name, p.email, s.total_visits, s.last_visit
		FROM patient_summary s JOIN users p ON p.id = s.patient_id
		ORDER BY s.total_visits DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, q, frequentLimit)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var fp FrequentPatient
		if err := rows.Scan(&fp.PatientID, &fp.PatientName, &fp.Email, &fp.TotalVisits, &fp.LastVisit); err != nil {
			rows.Close()
			return nil, err
		}
		out.FrequentPatients = append(out.FrequentPatients, fp)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	newQ := `SELECT COUNT(*) FROM users
		WHERE role = 'patient' AND created_at >= now() - make_interval(days => $1)`
	if err := r.pool.QueryRow(ctx, newQ, newSinceDays).Scan(&out.NewPatients); err != nil {
		return nil, err
	}
	return out, nil
}
