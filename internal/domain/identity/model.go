package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/pkg/dates"
	"github.com/chaman/hospital/pkg/formvalue"
)

// Patient is a person receiving care. UserID optionally links the patient
// to a user account.
type Patient struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Email            string     `db:"email" json:"email"`
	Phone            *string    `db:"phone" json:"phone"`
	Address          *string    `db:"address" json:"address"`
	DateOfBirth      *time.Time `db:"date_of_birth" json:"dateOfBirth"`
	Gender           *string    `db:"gender" json:"gender"`
	BloodGroup       *string    `db:"blood_group" json:"bloodGroup"`
	EmergencyContact *string    `db:"emergency_contact" json:"emergencyContact"`
	UserID           *uuid.UUID `db:"user_id" json:"userId"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updatedAt"`
}

// PatientInput is the body of POST and PUT /patients.
type PatientInput struct {
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	DateOfBirth      *string `json:"dateOfBirth"`
	Gender           *string `json:"gender"`
	BloodGroup       *string `json:"bloodGroup"`
	EmergencyContact *string `json:"emergencyContact"`
	// UserID is left untouched when absent; null or "" unlinks.
	UserID formvalue.Optional `json:"userId"`
}

// apply validates the input and copies it onto p.
func (in PatientInput) apply(p *Patient) error {
	name := formvalue.String(&in.Name)
	email := formvalue.String(&in.Email)
	if name == nil || email == nil {
		return apperr.Validation("Name and email are required")
	}
	dob, err := dates.ParseOptional(in.DateOfBirth)
	if err != nil {
		return apperr.Validation("Invalid dateOfBirth")
	}
	userID := p.UserID
	if in.UserID.Set {
		userID = nil
	}
	if s := formvalue.String(in.UserID.Value); s != nil {
		id, err := uuid.Parse(*s)
		if err != nil {
			return apperr.Validation("Invalid userId")
		}
		userID = &id
	}

	p.Name = *name
	p.Email = *email
	p.Phone = formvalue.String(in.Phone)
	p.Address = formvalue.String(in.Address)
	p.DateOfBirth = dob
	p.Gender = formvalue.String(in.Gender)
	p.BloodGroup = formvalue.String(in.BloodGroup)
	p.EmergencyContact = formvalue.String(in.EmergencyContact)
	p.UserID = userID
	return nil
}

// Doctor is a practitioner patients book appointments with.
type Doctor struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Email           string    `db:"email" json:"email"`
	Phone           *string   `db:"phone" json:"phone"`
	Specialization  string    `db:"specialization" json:"specialization"`
	Qualification   *string   `db:"qualification" json:"qualification"`
	Experience      *int      `db:"experience" json:"experience"`
	ConsultationFee *float64  `db:"consultation_fee" json:"consultationFee"`
	Availability    *string   `db:"availability" json:"availability"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// DoctorInput is the body of POST and PUT /doctors.
type DoctorInput struct {
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	Phone           *string           `json:"phone"`
	Specialization  string            `json:"specialization"`
	Qualification   *string           `json:"qualification"`
	Experience      *formvalue.Number `json:"experience"`
	ConsultationFee *formvalue.Number `json:"consultationFee"`
	Availability    *string           `json:"availability"`
}

func (in DoctorInput) apply(d *Doctor) error {
	name := formvalue.String(&in.Name)
	email := formvalue.String(&in.Email)
	spec := formvalue.String(&in.Specialization)
	if name == nil || email == nil || spec == nil {
		return apperr.Validation("Name, email, and specialization are required")
	}
	exp, err := formvalue.Int(in.Experience, "experience")
	if err != nil {
		return apperr.Validation("%s", err.Error())
	}
	fee, err := formvalue.Float(in.ConsultationFee, "consultationFee")
	if err != nil {
		return apperr.Validation("%s", err.Error())
	}

	d.Name = *name
	d.Email = *email
	d.Phone = formvalue.String(in.Phone)
	d.Specialization = *spec
	d.Qualification = formvalue.String(in.Qualification)
	d.Experience = exp
	d.ConsultationFee = fee
	d.Availability = formvalue.String(in.Availability)
	return nil
}
