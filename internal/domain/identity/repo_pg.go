package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chaman/hospital/internal/platform/db"
)

// -- Patient Repository --

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const patientCols = `id, name, email, phone, address, date_of_birth, gender, blood_group,
	emergency_contact, user_id, created_at, updated_at`

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (name, email, phone, address, date_of_birth, gender, blood_group, emergency_contact, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Email, p.Phone, p.Address, p.DateOfBirth, p.Gender, p.BloodGroup, p.EmergencyContact, p.UserID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return db.Classify("patient", "create patient", err)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify("patient", "fetch patient", err)
	}
	return p, nil
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE patients SET name=$2, email=$3, phone=$4, address=$5, date_of_birth=$6, gender=$7,
			blood_group=$8, emergency_contact=$9, user_id=$10, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.Name, p.Email, p.Phone, p.Address, p.DateOfBirth, p.Gender, p.BloodGroup, p.EmergencyContact, p.UserID,
	).Scan(&p.UpdatedAt)
	return db.Classify("patient", "update patient", err)
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return db.Classify("patient", "delete patient", err)
	}
	if tag.RowsAffected() == 0 {
		return db.Classify("patient", "delete patient", pgx.ErrNoRows)
	}
	return nil
}

func (r *patientRepoPG) List(ctx context.Context, f PatientFilter, limit, offset int) ([]*Patient, int, error) {
	query := `SELECT ` + patientCols + ` FROM patients WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM patients WHERE 1=1`
	var args []interface{}
	idx := 1

	if name := strings.TrimSpace(f.Name); name != "" {
		clause := fmt.Sprintf(" AND name ILIKE $%d", idx)
		query += clause
		countQuery += clause
		args = append(args, "%"+name+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, db.Classify("patient", "fetch patients", err)
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.Classify("patient", "fetch patients", err)
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, db.Classify("patient", "fetch patients", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.Classify("patient", "fetch patients", err)
	}
	return items, total, nil
}

func (r *patientRepoPG) CountDependents(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM appointments WHERE patient_id = $1)
		     + (SELECT COUNT(*) FROM medical_records WHERE patient_id = $1)`, id).Scan(&n)
	if err != nil {
		return 0, db.Classify("patient", "delete patient", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPatient(row rowScanner) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Address, &p.DateOfBirth, &p.Gender,
		&p.BloodGroup, &p.EmergencyContact, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// -- Doctor Repository --

type doctorRepoPG struct {
	pool *pgxpool.Pool
}

func NewDoctorRepo(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

func (r *doctorRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const doctorCols = `id, name, email, phone, specialization, qualification, experience,
	consultation_fee, availability, created_at, updated_at`

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctors (name, email, phone, specialization, qualification, experience, consultation_fee, availability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		d.Name, d.Email, d.Phone, d.Specialization, d.Qualification, d.Experience, d.ConsultationFee, d.Availability,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return db.Classify("doctor", "create doctor", err)
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify("doctor", "fetch doctor", err)
	}
	return d, nil
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE doctors SET name=$2, email=$3, phone=$4, specialization=$5, qualification=$6,
			experience=$7, consultation_fee=$8, availability=$9, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		d.ID, d.Name, d.Email, d.Phone, d.Specialization, d.Qualification, d.Experience, d.ConsultationFee, d.Availability,
	).Scan(&d.UpdatedAt)
	return db.Classify("doctor", "update doctor", err)
}

func (r *doctorRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return db.Classify("doctor", "delete doctor", err)
	}
	if tag.RowsAffected() == 0 {
		return db.Classify("doctor", "delete doctor", pgx.ErrNoRows)
	}
	return nil
}

func (r *doctorRepoPG) List(ctx context.Context, f DoctorFilter, limit, offset int) ([]*Doctor, int, error) {
	query := `SELECT ` + doctorCols + ` FROM doctors WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM doctors WHERE 1=1`
	var args []interface{}
	idx := 1

	if s := strings.TrimSpace(f.Specialization); s != "" {
		clause := fmt.Sprintf(" AND specialization ILIKE $%d", idx)
		query += clause
		countQuery += clause
		args = append(args, s)
		idx++
	}
	if name := strings.TrimSpace(f.Name); name != "" {
		clause := fmt.Sprintf(" AND name ILIKE $%d", idx)
		query += clause
		countQuery += clause
		args = append(args, "%"+name+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, db.Classify("doctor", "fetch doctors", err)
	}

	query += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.Classify("doctor", "fetch doctors", err)
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, db.Classify("doctor", "fetch doctors", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.Classify("doctor", "fetch doctors", err)
	}
	return items, total, nil
}

func (r *doctorRepoPG) CountDependents(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE doctor_id = $1`, id).Scan(&n); err != nil {
		return 0, db.Classify("doctor", "delete doctor", err)
	}
	return n, nil
}

func scanDoctor(row rowScanner) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.Specialization, &d.Qualification,
		&d.Experience, &d.ConsultationFee, &d.Availability, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
