package clinical

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chaman/hospital/internal/platform/db"
)

type medicalRecordRepoPG struct {
	pool *pgxpool.Pool
}

func NewMedicalRecordRepo(pool *pgxpool.Pool) MedicalRecordRepository {
	return &medicalRecordRepoPG{pool: pool}
}

func (r *medicalRecordRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const recordSelect = `SELECT m.id, m.diagnosis, m.treatment, m.prescription, m.notes, m.record_date,
	m.patient_id, m.user_id, m.created_at, m.updated_at,
	p.name, p.email
	FROM medical_records m
	JOIN patients p ON p.id = m.patient_id`

func (r *medicalRecordRepoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_records (diagnosis, treatment, prescription, notes, record_date, patient_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		rec.Diagnosis, rec.Treatment, rec.Prescription, rec.Notes, rec.RecordDate, rec.PatientID, rec.UserID,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	return db.Classify("medical record", "create medical record", err)
}

func (r *medicalRecordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	rec, err := scanRecord(r.conn(ctx).QueryRow(ctx, recordSelect+` WHERE m.id = $1`, id))
	if err != nil {
		return nil, db.Classify("medical record", "fetch medical record", err)
	}
	return rec, nil
}

func (r *medicalRecordRepoPG) Update(ctx context.Context, rec *MedicalRecord) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE medical_records SET diagnosis=$2, treatment=$3, prescription=$4, notes=$5,
			record_date=$6, patient_id=$7, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		rec.ID, rec.Diagnosis, rec.Treatment, rec.Prescription, rec.Notes, rec.RecordDate, rec.PatientID,
	).Scan(&rec.UpdatedAt)
	return db.Classify("medical record", "update medical record", err)
}

func (r *medicalRecordRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return db.Classify("medical record", "delete medical record", err)
	}
	if tag.RowsAffected() == 0 {
		return db.Classify("medical record", "delete medical record", pgx.ErrNoRows)
	}
	return nil
}

func (r *medicalRecordRepoPG) List(ctx context.Context, f RecordFilter, limit, offset int) ([]*MedicalRecord, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.UserID != nil {
		where += fmt.Sprintf(" AND m.user_id = $%d", idx)
		args = append(args, *f.UserID)
		idx++
	}
	if f.PatientID != nil {
		where += fmt.Sprintf(" AND m.patient_id = $%d", idx)
		args = append(args, *f.PatientID)
		idx++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM medical_records m JOIN patients p ON p.id = m.patient_id` + where
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, db.Classify("medical record", "fetch medical records", err)
	}

	query := recordSelect + where +
		fmt.Sprintf(" ORDER BY m.record_date DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.Classify("medical record", "fetch medical records", err)
	}
	defer rows.Close()

	var items []*MedicalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, db.Classify("medical record", "fetch medical records", err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.Classify("medical record", "fetch medical records", err)
	}
	return items, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*MedicalRecord, error) {
	var (
		rec MedicalRecord
		p   PatientSummary
	)
	err := row.Scan(&rec.ID, &rec.Diagnosis, &rec.Treatment, &rec.Prescription, &rec.Notes, &rec.RecordDate,
		&rec.PatientID, &rec.UserID, &rec.CreatedAt, &rec.UpdatedAt,
		&p.Name, &p.Email)
	if err != nil {
		return nil, err
	}
	p.ID = rec.PatientID
	rec.Patient = &p
	return &rec, nil
}
