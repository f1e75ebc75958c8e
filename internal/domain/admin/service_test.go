package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/internal/platform/auth"
	"github.com/chaman/hospital/internal/platform/middleware"
	"github.com/chaman/hospital/pkg/formvalue"
)

// -- Mock Repositories --

type mockDepartmentRepo struct {
	items map[uuid.UUID]*Department
}

func (m *mockDepartmentRepo) Create(_ context.Context, d *Department) error {
	for _, existing := range m.items {
		if existing.Name == d.Name {
			return apperr.ErrDuplicate
		}
	}
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	cp := *d
	m.items[d.ID] = &cp
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Department, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("department")
	}
	cp := *d
	return &cp, nil
}

func (m *mockDepartmentRepo) Update(_ context.Context, d *Department) error {
	cp := *d
	m.items[d.ID] = &cp
	return nil
}

func (m *mockDepartmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("department")
	}
	delete(m.items, id)
	return nil
}

func (m *mockDepartmentRepo) List(_ context.Context, limit, offset int) ([]*Department, int, error) {
	var result []*Department
	for _, d := range m.items {
		result = append(result, d)
	}
	return result, len(result), nil
}

type mockStaffRepo struct {
	items map[uuid.UUID]*Staff
}

func (m *mockStaffRepo) Create(_ context.Context, s *Staff) error {
	s.ID = uuid.New()
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *mockStaffRepo) GetByID(_ context.Context, id uuid.UUID) (*Staff, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("staff member")
	}
	cp := *s
	return &cp, nil
}

func (m *mockStaffRepo) Update(_ context.Context, s *Staff) error {
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *mockStaffRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockStaffRepo) List(_ context.Context, f StaffFilter, limit, offset int) ([]*Staff, int, error) {
	var result []*Staff
	for _, s := range m.items {
		if f.Department != "" && (s.Department == nil || *s.Department != f.Department) {
			continue
		}
		result = append(result, s)
	}
	return result, len(result), nil
}

var (
	admin = auth.Actor{UserID: uuid.NewString(), Role: auth.RoleAdmin}
	user  = auth.Actor{UserID: uuid.NewString(), Role: auth.RoleUser}
)

func newTestService() (*Service, *mockDepartmentRepo, *mockStaffRepo) {
	dr := &mockDepartmentRepo{items: make(map[uuid.UUID]*Department)}
	sr := &mockStaffRepo{items: make(map[uuid.UUID]*Staff)}
	return NewService(dr, sr), dr, sr
}

func strPtr(s string) *string { return &s }

func formvalueNumber(s string) *formvalue.Number {
	n := formvalue.Number(s)
	return &n
}

func TestService_Departments(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	d, err := svc.CreateDepartment(ctx, admin, DepartmentInput{Name: "Cardiology", Head: strPtr("Dr. Sarah Johnson")})
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", d.Name)
	assert.Nil(t, d.Description)

	_, err = svc.CreateDepartment(ctx, admin, DepartmentInput{Name: "Cardiology"})
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	_, err = svc.CreateDepartment(ctx, admin, DepartmentInput{Name: " "})
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.CreateDepartment(ctx, user, DepartmentInput{Name: "Neurology"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	got, err := svc.GetDepartment(ctx, user, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Sarah Johnson", *got.Head)

	_, total, err := svc.ListDepartments(ctx, user, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, _, err = svc.ListDepartments(ctx, auth.Anonymous, 100, 0)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	updated, err := svc.UpdateDepartment(ctx, admin, d.ID, DepartmentInput{Name: "Cardiology", Description: strPtr("Heart care")})
	require.NoError(t, err)
	assert.Equal(t, "Heart care", *updated.Description)
	assert.Nil(t, updated.Head)

	assert.ErrorIs(t, svc.DeleteDepartment(ctx, user, d.ID), apperr.ErrForbidden)
	require.NoError(t, svc.DeleteDepartment(ctx, admin, d.ID))
	assert.ErrorIs(t, svc.DeleteDepartment(ctx, admin, d.ID), apperr.ErrNotFound)
}

func TestService_StaffIsAdminOnly(t *testing.T) {
	svc, _, sr := newTestService()
	ctx := context.Background()

	m, err := svc.CreateStaff(ctx, admin, StaffInput{
		Name: "Alice Brown", Email: "alice.brown@hospital.com", Position: "Head Nurse",
		Department: strPtr("Cardiology"),
	})
	require.NoError(t, err)
	assert.Nil(t, m.Salary)

	_, err = svc.GetStaff(ctx, user, m.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, _, err = svc.ListStaff(ctx, user, StaffFilter{}, 100, 0)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = svc.CreateStaff(ctx, user, StaffInput{Name: "X", Email: "x@example.com", Position: "Clerk"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteStaff(ctx, user, m.ID), apperr.ErrForbidden)
	assert.Len(t, sr.items, 1)

	items, total, err := svc.ListStaff(ctx, admin, StaffFilter{Department: "Cardiology"}, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, m.ID, items[0].ID)
}

func TestService_StaffValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateStaff(ctx, admin, StaffInput{Name: "A", Email: "a@example.com"})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Name, email, and position are required", ve.Message)

	salary := formvalueNumber("-5")
	_, err = svc.CreateStaff(ctx, admin, StaffInput{Name: "A", Email: "a@example.com", Position: "Clerk", Salary: salary})
	assert.ErrorAs(t, err, &ve)

	salary = formvalueNumber("45000")
	m, err := svc.CreateStaff(ctx, admin, StaffInput{Name: "A", Email: "a@example.com", Position: "Clerk", Salary: salary})
	require.NoError(t, err)
	require.NotNil(t, m.Salary)
	assert.Equal(t, 45000.0, *m.Salary)
}

func TestHandler_StaffForbiddenStatus(t *testing.T) {
	svc, _, _ := newTestService()
	for _, tt := range []struct {
		strict bool
		code   int
		body   string
	}{
		{false, http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{true, http.StatusForbidden, `{"error":"Forbidden"}`},
	} {
		e := echo.New()
		e.HTTPErrorHandler = middleware.ErrorHandler(zerolog.Nop(), apperr.Mapper{StrictForbidden: tt.strict})
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				c.SetRequest(c.Request().WithContext(auth.WithActor(c.Request().Context(), user)))
				return next(c)
			}
		})
		NewHandler(svc).RegisterRoutes(e.Group("/api/v1"))

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/staff", nil))
		assert.Equal(t, tt.code, rec.Code)
		assert.Equal(t, tt.body, strings.TrimSpace(rec.Body.String()))

		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/departments", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"departments":[]`)
	}
}
