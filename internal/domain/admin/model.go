package admin

import (
	"time"

	"github.com/google/uuid"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/pkg/formvalue"
)

// Department is a hospital unit. Head is the free-text name of whoever
// runs it.
type Department struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	Head        *string   `db:"head" json:"head"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type DepartmentInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Head        *string `json:"head"`
}

func (in DepartmentInput) apply(d *Department) error {
	name := formvalue.String(&in.Name)
	if name == nil {
		return apperr.Validation("Name is required")
	}
	d.Name = *name
	d.Description = formvalue.String(in.Description)
	d.Head = formvalue.String(in.Head)
	return nil
}

// Staff is a non-physician employee. Department holds a department name as
// free text.
type Staff struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Phone      *string   `db:"phone" json:"phone"`
	Position   string    `db:"position" json:"position"`
	Department *string   `db:"department" json:"department"`
	Salary     *float64  `db:"salary" json:"salary"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

type StaffInput struct {
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Phone      *string           `json:"phone"`
	Position   string            `json:"position"`
	Department *string           `json:"department"`
	Salary     *formvalue.Number `json:"salary"`
}

func (in StaffInput) apply(s *Staff) error {
	name := formvalue.String(&in.Name)
	email := formvalue.String(&in.Email)
	position := formvalue.String(&in.Position)
	if name == nil || email == nil || position == nil {
		return apperr.Validation("Name, email, and position are required")
	}
	salary, err := formvalue.Float(in.Salary, "salary")
	if err != nil {
		return apperr.Validation("%s", err.Error())
	}
	s.Name = *name
	s.Email = *email
	s.Phone = formvalue.String(in.Phone)
	s.Position = *position
	s.Department = formvalue.String(in.Department)
	s.Salary = salary
	return nil
}
