package clinical

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/internal/platform/auth"
	"github.com/chaman/hospital/internal/platform/middleware"
)

// -- Mock Medical Record Repository --

type mockRecordRepo struct {
	records  map[uuid.UUID]*MedicalRecord
	patients map[uuid.UUID]bool
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{
		records:  make(map[uuid.UUID]*MedicalRecord),
		patients: make(map[uuid.UUID]bool),
	}
}

func (m *mockRecordRepo) Create(_ context.Context, r *MedicalRecord) error {
	if !m.patients[r.PatientID] {
		return apperr.Validation("Referenced record does not exist")
	}
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *mockRecordRepo) GetByID(_ context.Context, id uuid.UUID) (*MedicalRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, apperr.NotFound("medical record")
	}
	cp := *r
	cp.Patient = &PatientSummary{ID: r.PatientID, Name: "Patient"}
	return &cp, nil
}

func (m *mockRecordRepo) Update(_ context.Context, r *MedicalRecord) error {
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *mockRecordRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return apperr.NotFound("medical record")
	}
	delete(m.records, id)
	return nil
}

func (m *mockRecordRepo) List(_ context.Context, f RecordFilter, limit, offset int) ([]*MedicalRecord, int, error) {
	var result []*MedicalRecord
	for _, r := range m.records {
		if f.UserID != nil && (r.UserID == nil || *r.UserID != *f.UserID) {
			continue
		}
		if f.PatientID != nil && r.PatientID != *f.PatientID {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RecordDate.After(result[j].RecordDate) })
	return result, len(result), nil
}

var (
	admin = auth.Actor{UserID: uuid.NewString(), Role: auth.RoleAdmin}
	userA = auth.Actor{UserID: uuid.NewString(), Role: auth.RoleUser}
	userB = auth.Actor{UserID: uuid.NewString(), Role: auth.RoleUser}
)

var fixedNow = time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	repo     *mockRecordRepo
	patientA uuid.UUID
	patientX uuid.UUID
}

func newFixture() *fixture {
	repo := newMockRecordRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return fixedNow }
	f := &fixture{svc: svc, repo: repo, patientA: uuid.New(), patientX: uuid.New()}
	repo.patients[f.patientA] = true
	repo.patients[f.patientX] = true
	return f
}

// authoredBy rewrites the author of a stored record, as for rows written
// while the author held the admin role.
func (f *fixture) authoredBy(t *testing.T, r *MedicalRecord, actor auth.Actor) {
	t.Helper()
	id := uuid.MustParse(actor.UserID)
	f.repo.records[r.ID].UserID = &id
}

func (f *fixture) mustCreate(t *testing.T, patient uuid.UUID, date string) *MedicalRecord {
	t.Helper()
	in := RecordInput{Diagnosis: "Hypertension", Treatment: "Lifestyle changes", PatientID: patient.String()}
	if date != "" {
		in.RecordDate = &date
	}
	r, err := f.svc.CreateRecord(context.Background(), admin, in)
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	return r
}

func TestService_CreateRecord(t *testing.T) {
	f := newFixture()
	r := f.mustCreate(t, f.patientA, "")
	if !r.RecordDate.Equal(fixedNow) {
		t.Errorf("expected recordDate to default to now, got %v", r.RecordDate)
	}
	if r.UserID == nil || r.UserID.String() != admin.UserID {
		t.Errorf("expected author %s, got %v", admin.UserID, r.UserID)
	}
	if r.Prescription != nil || r.Notes != nil {
		t.Error("expected absent optionals to stay nil")
	}

	r = f.mustCreate(t, f.patientA, "2024-01-15")
	if r.RecordDate.Format("2006-01-02") != "2024-01-15" {
		t.Errorf("unexpected recordDate: %v", r.RecordDate)
	}
}

func TestService_CreateRecord_Validation(t *testing.T) {
	f := newFixture()
	tests := []struct {
		name string
		in   RecordInput
		msg  string
	}{
		{"missing diagnosis", RecordInput{Treatment: "T", PatientID: f.patientA.String()}, "Diagnosis, treatment, and patient are required"},
		{"missing treatment", RecordInput{Diagnosis: "D", PatientID: f.patientA.String()}, "Diagnosis, treatment, and patient are required"},
		{"missing patient", RecordInput{Diagnosis: "D", Treatment: "T"}, "Diagnosis, treatment, and patient are required"},
		{"bad patient", RecordInput{Diagnosis: "D", Treatment: "T", PatientID: "p"}, "Invalid patientId"},
		{"unknown patient", RecordInput{Diagnosis: "D", Treatment: "T", PatientID: uuid.NewString()}, "Referenced record does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateRecord(context.Background(), admin, tt.in)
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) || ve.Message != tt.msg {
				t.Errorf("expected %q, got %v", tt.msg, err)
			}
		})
	}
}

func TestService_RecordWritesRequireAdmin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r := f.mustCreate(t, f.patientA, "")
	in := RecordInput{Diagnosis: "D", Treatment: "T", PatientID: f.patientA.String()}

	if _, err := f.svc.CreateRecord(ctx, userA, in); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("create: expected forbidden, got %v", err)
	}
	if _, err := f.svc.UpdateRecord(ctx, userA, r.ID, in); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("update: expected forbidden, got %v", err)
	}
	if err := f.svc.DeleteRecord(ctx, userA, r.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("delete: expected forbidden, got %v", err)
	}
}

func TestService_ListRecords_Visibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	older := f.mustCreate(t, f.patientA, "2024-01-10")
	newer := f.mustCreate(t, f.patientX, "2024-01-20")
	f.mustCreate(t, f.patientX, "2024-01-15")
	f.authoredBy(t, older, userA)
	f.authoredBy(t, newer, userA)

	items, total, err := f.svc.ListRecords(ctx, userA, RecordFilter{}, 100, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("user A: expected 2, got %d", total)
	}
	if len(items) == 2 && items[0].RecordDate.Before(items[1].RecordDate) {
		t.Error("expected newest record first")
	}

	if _, total, _ := f.svc.ListRecords(ctx, userB, RecordFilter{}, 100, 0); total != 0 {
		t.Errorf("user B: expected 0, got %d", total)
	}
	// A USER filtering by patient still only sees rows they authored.
	if _, total, _ := f.svc.ListRecords(ctx, userA, RecordFilter{PatientID: &f.patientX}, 100, 0); total != 1 {
		t.Errorf("user A for patient X: expected 1, got %d", total)
	}
	if _, total, _ := f.svc.ListRecords(ctx, admin, RecordFilter{PatientID: &f.patientX}, 100, 0); total != 2 {
		t.Errorf("admin for patient X: expected 2, got %d", total)
	}
	if _, _, err := f.svc.ListRecords(ctx, auth.Anonymous, RecordFilter{}, 100, 0); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("anonymous: expected unauthenticated, got %v", err)
	}
}

func TestService_ListRecords_AdminAuthoredHiddenFromUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r := f.mustCreate(t, f.patientA, "")

	if _, total, err := f.svc.ListRecords(ctx, userA, RecordFilter{}, 100, 0); err != nil || total != 0 {
		t.Errorf("user list: expected 0 rows, got %d (err %v)", total, err)
	}
	if _, err := f.svc.GetRecord(ctx, userA, r.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("user read: expected forbidden, got %v", err)
	}
	if _, total, _ := f.svc.ListRecords(ctx, admin, RecordFilter{}, 100, 0); total != 1 {
		t.Errorf("admin list: expected 1, got %d", total)
	}
}

func TestService_GetRecord_Ownership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mine := f.mustCreate(t, f.patientA, "")
	f.authoredBy(t, mine, userA)
	adminOnly := f.mustCreate(t, f.patientX, "")

	if _, err := f.svc.GetRecord(ctx, userA, mine.ID); err != nil {
		t.Errorf("author: unexpected error: %v", err)
	}
	if _, err := f.svc.GetRecord(ctx, userB, mine.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("other user: expected forbidden, got %v", err)
	}
	if _, err := f.svc.GetRecord(ctx, userA, adminOnly.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("admin-authored: expected forbidden, got %v", err)
	}
	if _, err := f.svc.GetRecord(ctx, admin, mine.ID); err != nil {
		t.Errorf("admin: unexpected error: %v", err)
	}
}

func TestService_UpdateRecord_KeepsDate(t *testing.T) {
	f := newFixture()
	r := f.mustCreate(t, f.patientA, "2024-01-15")
	updated, err := f.svc.UpdateRecord(context.Background(), admin, r.ID, RecordInput{
		Diagnosis: "Controlled hypertension", Treatment: "Continue", PatientID: f.patientA.String(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Diagnosis != "Controlled hypertension" {
		t.Errorf("unexpected diagnosis: %s", updated.Diagnosis)
	}
	if updated.RecordDate.Format("2006-01-02") != "2024-01-15" {
		t.Errorf("recordDate should be kept, got %v", updated.RecordDate)
	}
}

func TestHandler_Records(t *testing.T) {
	f := newFixture()
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(zerolog.Nop(), apperr.Mapper{})
	var actor auth.Actor
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.SetRequest(c.Request().WithContext(auth.WithActor(c.Request().Context(), actor)))
			return next(c)
		}
	})
	NewHandler(f.svc).RegisterRoutes(e.Group("/api/v1"))

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	actor = admin
	rec := do(http.MethodPost, "/api/v1/records", `{"diagnosis":"Asthma","treatment":"Inhaler","patientId":"`+f.patientA.String()+`"}`)
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), `"record":{`) {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}

	actor = userA
	rec = do(http.MethodGet, "/api/v1/records", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"total":0`) {
		t.Errorf("list as user: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(http.MethodPost, "/api/v1/records", `{"diagnosis":"X","treatment":"Y","patientId":"`+f.patientA.String()+`"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("create as user: expected 401, got %d", rec.Code)
	}
	rec = do(http.MethodGet, "/api/v1/records?patientId=nope", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad patientId: expected 400, got %d", rec.Code)
	}

	actor = auth.Anonymous
	rec = do(http.MethodGet, "/api/v1/records?patientId=nope", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: expected 401, got %d", rec.Code)
	}
}
