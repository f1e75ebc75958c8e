package admin

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chaman/hospital/internal/platform/db"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// -- Department Repository --

type departmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewDepartmentRepo(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepoPG{pool: pool}
}

func (r *departmentRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const departmentCols = `id, name, description, head, created_at, updated_at`

func (r *departmentRepoPG) Create(ctx context.Context, d *Department) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO departments (name, description, head)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		d.Name, d.Description, d.Head,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return db.Classify("department", "create department", err)
}

func (r *departmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Department, error) {
	d, err := scanDepartment(r.conn(ctx).QueryRow(ctx, `SELECT `+departmentCols+` FROM departments WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify("department", "fetch department", err)
	}
	return d, nil
}

func (r *departmentRepoPG) Update(ctx context.Context, d *Department) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE departments SET name=$2, description=$3, head=$4, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		d.ID, d.Name, d.Description, d.Head,
	).Scan(&d.UpdatedAt)
	return db.Classify("department", "update department", err)
}

func (r *departmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return db.Classify("department", "delete department", err)
	}
	if tag.RowsAffected() == 0 {
		return db.Classify("department", "delete department", pgx.ErrNoRows)
	}
	return nil
}

func (r *departmentRepoPG) List(ctx context.Context, limit, offset int) ([]*Department, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM departments`).Scan(&total); err != nil {
		return nil, 0, db.Classify("department", "fetch departments", err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+departmentCols+` FROM departments ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, db.Classify("department", "fetch departments", err)
	}
	defer rows.Close()

	var items []*Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, 0, db.Classify("department", "fetch departments", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.Classify("department", "fetch departments", err)
	}
	return items, total, nil
}

func scanDepartment(row rowScanner) (*Department, error) {
	var d Department
	if err := row.Scan(&d.ID, &d.Name, &d.Description, &d.Head, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// -- Staff Repository --

type staffRepoPG struct {
	pool *pgxpool.Pool
}

func NewStaffRepo(pool *pgxpool.Pool) StaffRepository {
	return &staffRepoPG{pool: pool}
}

func (r *staffRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const staffCols = `id, name, email, phone, position, department, salary, created_at, updated_at`

func (r *staffRepoPG) Create(ctx context.Context, s *Staff) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO staff (name, email, phone, position, department, salary)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		s.Name, s.Email, s.Phone, s.Position, s.Department, s.Salary,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return db.Classify("staff member", "create staff member", err)
}

func (r *staffRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	s, err := scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify("staff member", "fetch staff member", err)
	}
	return s, nil
}

func (r *staffRepoPG) Update(ctx context.Context, s *Staff) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE staff SET name=$2, email=$3, phone=$4, position=$5, department=$6, salary=$7, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		s.ID, s.Name, s.Email, s.Phone, s.Position, s.Department, s.Salary,
	).Scan(&s.UpdatedAt)
	return db.Classify("staff member", "update staff member", err)
}

func (r *staffRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return db.Classify("staff member", "delete staff member", err)
	}
	if tag.RowsAffected() == 0 {
		return db.Classify("staff member", "delete staff member", pgx.ErrNoRows)
	}
	return nil
}

func (r *staffRepoPG) List(ctx context.Context, f StaffFilter, limit, offset int) ([]*Staff, int, error) {
	where := ``
	var args []interface{}
	idx := 1
	if f.Department != "" {
		where = fmt.Sprintf(` WHERE department ILIKE $%d`, idx)
		args = append(args, f.Department)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff`+where, args...).Scan(&total); err != nil {
		return nil, 0, db.Classify("staff member", "fetch staff", err)
	}

	query := `SELECT ` + staffCols + ` FROM staff` + where +
		fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.Classify("staff member", "fetch staff", err)
	}
	defer rows.Close()

	var items []*Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, 0, db.Classify("staff member", "fetch staff", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.Classify("staff member", "fetch staff", err)
	}
	return items, total, nil
}

func scanStaff(row rowScanner) (*Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Position, &s.Department, &s.Salary, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
