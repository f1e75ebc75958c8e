package sandbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chaman/hospital/internal/platform/auth"
)

// Store persists seed rows. Each Ensure method inserts the row unless one
// with the same natural key exists, and reports the row ID together with
// whether it was newly created.
type Store interface {
	EnsureUser(ctx context.Context, u UserSeed, passwordHash string) (uuid.UUID, bool, error)
	EnsureDoctor(ctx context.Context, d DoctorSeed) (uuid.UUID, bool, error)
	EnsurePatient(ctx context.Context, p PatientSeed, userID *uuid.UUID) (uuid.UUID, bool, error)
	EnsureAppointment(ctx context.Context, a AppointmentSeed, patientID, doctorID uuid.UUID, userID *uuid.UUID) (bool, error)
	EnsureRecord(ctx context.Context, r RecordSeed, patientID uuid.UUID, authorID *uuid.UUID) (bool, error)
	EnsureDepartment(ctx context.Context, d DepartmentSeed) (bool, error)
	EnsureStaff(ctx context.Context, s StaffSeed) (bool, error)
}

// TxRunner runs fn atomically.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Summary counts the rows created by a run. Rows that already existed are
// not counted.
type Summary struct {
	Users        int `json:"users"`
	Doctors      int `json:"doctors"`
	Patients     int `json:"patients"`
	Appointments int `json:"appointments"`
	Records      int `json:"records"`
	Departments  int `json:"departments"`
	Staff        int `json:"staff"`
}

// Total returns the number of rows created.
func (s Summary) Total() int {
	return s.Users + s.Doctors + s.Patients + s.Appointments + s.Records + s.Departments + s.Staff
}

// Seeder writes a Dataset through a Store.
type Seeder struct {
	store      Store
	inTx       TxRunner
	bcryptCost int
	logger     zerolog.Logger
}

// NewSeeder creates a Seeder. A nil inTx runs without a transaction.
func NewSeeder(store Store, inTx TxRunner, bcryptCost int, logger zerolog.Logger) *Seeder {
	if inTx == nil {
		inTx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Seeder{store: store, inTx: inTx, bcryptCost: bcryptCost, logger: logger}
}

// Seed writes ds in a single transaction.
func (s *Seeder) Seed(ctx context.Context, ds Dataset) (Summary, error) {
	var sum Summary
	err := s.inTx(ctx, func(ctx context.Context) error {
		sum = Summary{}
		return s.seed(ctx, ds, &sum)
	})
	if err != nil {
		return Summary{}, err
	}
	s.logger.Info().
		Int("users", sum.Users).
		Int("doctors", sum.Doctors).
		Int("patients", sum.Patients).
		Int("appointments", sum.Appointments).
		Int("records", sum.Records).
		Int("departments", sum.Departments).
		Int("staff", sum.Staff).
		Msg("seed complete")
	return sum, nil
}

func (s *Seeder) seed(ctx context.Context, ds Dataset, sum *Summary) error {
	users := make(map[string]uuid.UUID, len(ds.Users))
	for _, u := range ds.Users {
		hash, err := auth.HashPassword(u.Password, s.bcryptCost)
		if err != nil {
			return err
		}
		id, created, err := s.store.EnsureUser(ctx, u, hash)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		users[u.Email] = id
		sum.Users += count(created)
	}

	doctors := make(map[string]uuid.UUID, len(ds.Doctors))
	for _, d := range ds.Doctors {
		id, created, err := s.store.EnsureDoctor(ctx, d)
		if err != nil {
			return fmt.Errorf("seed doctor %s: %w", d.Email, err)
		}
		doctors[d.Email] = id
		sum.Doctors += count(created)
	}

	patients := make(map[string]uuid.UUID, len(ds.Patients))
	for _, p := range ds.Patients {
		userID, err := optionalRef(users, "user", p.UserEmail)
		if err != nil {
			return fmt.Errorf("seed patient %s: %w", p.Email, err)
		}
		id, created, err := s.store.EnsurePatient(ctx, p, userID)
		if err != nil {
			return fmt.Errorf("seed patient %s: %w", p.Email, err)
		}
		patients[p.Email] = id
		sum.Patients += count(created)
	}

	for _, a := range ds.Appointments {
		patientID, err := ref(patients, "patient", a.PatientEmail)
		if err != nil {
			return fmt.Errorf("seed appointment: %w", err)
		}
		doctorID, err := ref(doctors, "doctor", a.DoctorEmail)
		if err != nil {
			return fmt.Errorf("seed appointment: %w", err)
		}
		userID, err := optionalRef(users, "user", a.UserEmail)
		if err != nil {
			return fmt.Errorf("seed appointment: %w", err)
		}
		created, err := s.store.EnsureAppointment(ctx, a, patientID, doctorID, userID)
		if err != nil {
			return fmt.Errorf("seed appointment: %w", err)
		}
		sum.Appointments += count(created)
	}

	for _, r := range ds.Records {
		patientID, err := ref(patients, "patient", r.PatientEmail)
		if err != nil {
			return fmt.Errorf("seed medical record: %w", err)
		}
		authorID, err := optionalRef(users, "user", r.AuthorEmail)
		if err != nil {
			return fmt.Errorf("seed medical record: %w", err)
		}
		created, err := s.store.EnsureRecord(ctx, r, patientID, authorID)
		if err != nil {
			return fmt.Errorf("seed medical record: %w", err)
		}
		sum.Records += count(created)
	}

	for _, d := range ds.Departments {
		created, err := s.store.EnsureDepartment(ctx, d)
		if err != nil {
			return fmt.Errorf("seed department %s: %w", d.Name, err)
		}
		sum.Departments += count(created)
	}

	for _, st := range ds.Staff {
		created, err := s.store.EnsureStaff(ctx, st)
		if err != nil {
			return fmt.Errorf("seed staff %s: %w", st.Email, err)
		}
		sum.Staff += count(created)
	}
	return nil
}

func ref(ids map[string]uuid.UUID, kind, email string) (uuid.UUID, error) {
	id, ok := ids[email]
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown %s %q", kind, email)
	}
	return id, nil
}

func optionalRef(ids map[string]uuid.UUID, kind, email string) (*uuid.UUID, error) {
	if email == "" {
		return nil, nil
	}
	id, err := ref(ids, kind, email)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func count(created bool) int {
	if created {
		return 1
	}
	return 0
}
