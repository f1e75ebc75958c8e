package sandbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chaman/hospital/internal/platform/db"
)

type pgStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store backed by PostgreSQL.
func NewPGStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

// NewPGTxRunner runs seeding inside a single database transaction.
func NewPGTxRunner(pool *pgxpool.Pool) TxRunner {
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.InTx(ctx, pool, fn)
	}
}

func (s *pgStore) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, s.pool)
}

// ensure runs an INSERT ... ON CONFLICT DO NOTHING RETURNING id and falls
// back to lookup when the row already existed.
func (s *pgStore) ensure(ctx context.Context, insert string, args []interface{}, lookup string, key interface{}) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := s.conn(ctx).QueryRow(ctx, insert, args...).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, err
	}
	if err := s.conn(ctx).QueryRow(ctx, lookup, key).Scan(&id); err != nil {
		return uuid.Nil, false, err
	}
	return id, false, nil
}

func (s *pgStore) exec(ctx context.Context, sql string, args ...interface{}) (bool, error) {
	tag, err := s.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *pgStore) EnsureUser(ctx context.Context, u UserSeed, passwordHash string) (uuid.UUID, bool, error) {
	return s.ensure(ctx,
		`INSERT INTO users (email, password_hash, name, role) VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING RETURNING id`,
		[]interface{}{u.Email, passwordHash, u.Name, string(u.Role)},
		`SELECT id FROM users WHERE email = $1`, u.Email)
}

func (s *pgStore) EnsureDoctor(ctx context.Context, d DoctorSeed) (uuid.UUID, bool, error) {
	return s.ensure(ctx,
		`INSERT INTO doctors (email, name, phone, specialization, qualification, experience, consultation_fee, availability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO NOTHING RETURNING id`,
		[]interface{}{d.Email, d.Name, nullable(d.Phone), d.Specialization, nullable(d.Qualification),
			d.Experience, d.ConsultationFee, nullable(d.Availability)},
		`SELECT id FROM doctors WHERE email = $1`, d.Email)
}

func (s *pgStore) EnsurePatient(ctx context.Context, p PatientSeed, userID *uuid.UUID) (uuid.UUID, bool, error) {
	var dob *time.Time
	if !p.DateOfBirth.IsZero() {
		dob = &p.DateOfBirth
	}
	return s.ensure(ctx,
		`INSERT INTO patients (email, name, phone, address, date_of_birth, gender, blood_group, emergency_contact, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (email) DO NOTHING RETURNING id`,
		[]interface{}{p.Email, p.Name, nullable(p.Phone), nullable(p.Address), dob,
			nullable(p.Gender), nullable(p.BloodGroup), nullable(p.EmergencyContact), userID},
		`SELECT id FROM patients WHERE email = $1`, p.Email)
}

func (s *pgStore) EnsureAppointment(ctx context.Context, a AppointmentSeed, patientID, doctorID uuid.UUID, userID *uuid.UUID) (bool, error) {
	return s.exec(ctx,
		`INSERT INTO appointments (date, time, status, reason, notes, patient_id, doctor_id, user_id)
		SELECT $1::timestamptz, $2::varchar, $3::varchar, $4::text, $5::text, $6::uuid, $7::uuid, $8::uuid
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments
			WHERE patient_id = $6::uuid AND doctor_id = $7::uuid AND date = $1::timestamptz AND time = $2::varchar
		)`,
		a.Date, a.Time, a.Status, nullable(a.Reason), nullable(a.Notes), patientID, doctorID, userID)
}

func (s *pgStore) EnsureRecord(ctx context.Context, r RecordSeed, patientID uuid.UUID, authorID *uuid.UUID) (bool, error) {
	return s.exec(ctx,
		`INSERT INTO medical_records (diagnosis, treatment, prescription, notes, record_date, patient_id, user_id)
		SELECT $1::text, $2::text, $3::text, $4::text, $5::timestamptz, $6::uuid, $7::uuid
		WHERE NOT EXISTS (
			SELECT 1 FROM medical_records
			WHERE patient_id = $6::uuid AND diagnosis = $1::text AND record_date = $5::timestamptz
		)`,
		r.Diagnosis, r.Treatment, nullable(r.Prescription), nullable(r.Notes), r.RecordDate, patientID, authorID)
}

func (s *pgStore) EnsureDepartment(ctx context.Context, d DepartmentSeed) (bool, error) {
	return s.exec(ctx,
		`INSERT INTO departments (name, description, head) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING`,
		d.Name, nullable(d.Description), nullable(d.Head))
}

func (s *pgStore) EnsureStaff(ctx context.Context, st StaffSeed) (bool, error) {
	return s.exec(ctx,
		`INSERT INTO staff (email, name, phone, position, department, salary) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING`,
		st.Email, st.Name, nullable(st.Phone), st.Position, nullable(st.Department), st.Salary)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
