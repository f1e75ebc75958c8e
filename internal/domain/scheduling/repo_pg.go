package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/internal/platform/db"
)

type appointmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepo(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const appointmentSelect = `SELECT a.id, a.date, a.time, a.status, a.reason, a.notes,
	a.patient_id, a.doctor_id, a.user_id, a.created_at, a.updated_at,
	p.name, p.email, p.phone,
	d.name, d.email, d.specialization
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN doctors d ON d.id = a.doctor_id`

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (date, time, status, reason, notes, patient_id, doctor_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		a.Date, a.Time, a.Status, a.Reason, a.Notes, a.PatientID, a.DoctorID, a.UserID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return db.Classify("appointment", "create appointment", err)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.conn(ctx).QueryRow(ctx, appointmentSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, db.Classify("appointment", "fetch appointment", err)
	}
	return a, nil
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE appointments SET date=$2, time=$3, reason=$4, notes=$5, patient_id=$6, doctor_id=$7, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.Date, a.Time, a.Reason, a.Notes, a.PatientID, a.DoctorID,
	).Scan(&a.UpdatedAt)
	return db.Classify("appointment", "update appointment", err)
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return db.Classify("appointment", "update appointment status", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrInvalidTransition
	}
	return nil
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return db.Classify("appointment", "delete appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return db.Classify("appointment", "delete appointment", pgx.ErrNoRows)
	}
	return nil
}

func (r *appointmentRepoPG) List(ctx context.Context, f AppointmentFilter, limit, offset int) ([]*Appointment, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	add := func(clause string, v interface{}) {
		where += fmt.Sprintf(clause, idx)
		args = append(args, v)
		idx++
	}
	if f.UserID != nil {
		add(" AND a.user_id = $%d", *f.UserID)
	}
	if f.Status != "" {
		add(" AND a.status = $%d", f.Status)
	}
	if f.PatientID != nil {
		add(" AND a.patient_id = $%d", *f.PatientID)
	}
	if f.DoctorID != nil {
		add(" AND a.doctor_id = $%d", *f.DoctorID)
	}
	if f.From != nil {
		add(" AND a.date >= $%d", *f.From)
	}
	if f.To != nil {
		add(" AND a.date < $%d", *f.To)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointments a`+where, args...).Scan(&total); err != nil {
		return nil, 0, db.Classify("appointment", "fetch appointments", err)
	}

	query := appointmentSelect + where +
		fmt.Sprintf(" ORDER BY a.date ASC, a.created_at ASC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.Classify("appointment", "fetch appointments", err)
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, db.Classify("appointment", "fetch appointments", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.Classify("appointment", "fetch appointments", err)
	}
	return items, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*Appointment, error) {
	var (
		a Appointment
		p PatientSummary
		d DoctorSummary
	)
	err := row.Scan(&a.ID, &a.Date, &a.Time, &a.Status, &a.Reason, &a.Notes,
		&a.PatientID, &a.DoctorID, &a.UserID, &a.CreatedAt, &a.UpdatedAt,
		&p.Name, &p.Email, &p.Phone,
		&d.Name, &d.Email, &d.Specialization)
	if err != nil {
		return nil, err
	}
	p.ID = a.PatientID
	d.ID = a.DoctorID
	a.Patient = &p
	a.Doctor = &d
	return &a, nil
}
