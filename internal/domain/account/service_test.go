package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/internal/platform/auth"
	"github.com/chaman/hospital/internal/platform/middleware"
)

// -- Mock User Repository --

type mockUserRepo struct {
	users map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperr.ErrDuplicate
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user")
}

type fixture struct {
	svc     *Service
	repo    *mockUserRepo
	tokens  *auth.TokenIssuer
	revoked *auth.MemoryRevocationStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMockUserRepo()
	tokens := auth.NewTokenIssuer([]byte("account-test-secret-account-test-secret"), time.Hour)
	revoked := auth.NewMemoryRevocationStore(time.Minute)
	t.Cleanup(revoked.Close)
	return &fixture{
		svc:     NewService(repo, tokens, revoked, bcrypt.MinCost),
		repo:    repo,
		tokens:  tokens,
		revoked: revoked,
	}
}

func (f *fixture) addAdmin(t *testing.T, email, password string) *User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &User{Email: email, Name: "Admin User", Role: auth.RoleAdmin, PasswordHash: hash}
	if err := f.repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return u
}

func TestService_Register(t *testing.T) {
	f := newFixture(t)
	sess, err := f.svc.Register(context.Background(), RegisterInput{
		Name: "John Patient", Email: " John@Example.com ", Password: "user12345",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.User.Role != auth.RoleUser {
		t.Errorf("registration must create USER accounts, got %s", sess.User.Role)
	}
	if sess.User.Email != "john@example.com" {
		t.Errorf("expected normalized email, got %q", sess.User.Email)
	}
	if sess.User.PasswordHash == "user12345" || !auth.CheckPassword("user12345", sess.User.PasswordHash) {
		t.Error("expected a bcrypt hash of the password")
	}

	claims, err := f.tokens.Parse(sess.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Actor() != sess.User.Actor() {
		t.Errorf("token actor %+v does not match user %+v", claims.Actor(), sess.User.Actor())
	}
}

func TestService_Register_Validation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@example.com", Password: "password1"}},
		{"missing password", RegisterInput{Name: "A", Email: "a@example.com"}},
		{"bad email", RegisterInput{Name: "A", Email: "example.com", Password: "password1"}},
		{"short password", RegisterInput{Name: "A", Email: "a@example.com", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tt.in)
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_Register_Duplicate(t *testing.T) {
	f := newFixture(t)
	in := RegisterInput{Name: "A", Email: "a@example.com", Password: "password1"}
	if _, err := f.svc.Register(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in.Email = "A@EXAMPLE.COM"
	if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, apperr.ErrDuplicate) {
		t.Errorf("expected duplicate, got %v", err)
	}
}

func TestService_Login(t *testing.T) {
	f := newFixture(t)
	admin := f.addAdmin(t, "admin@hospital.com", "admin123")

	sess, err := f.svc.Login(context.Background(), LoginInput{Email: "ADMIN@hospital.com", Password: "admin123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.User.ID != admin.ID || sess.Claims.Role != auth.RoleAdmin {
		t.Errorf("unexpected session: %+v", sess.Claims)
	}

	for _, in := range []LoginInput{
		{Email: "admin@hospital.com", Password: "wrong"},
		{Email: "nobody@hospital.com", Password: "admin123"},
	} {
		_, err := f.svc.Login(context.Background(), in)
		if !errors.Is(err, ErrInvalidCredentials) || !errors.Is(err, apperr.ErrUnauthenticated) {
			t.Errorf("%s: expected invalid credentials, got %v", in.Email, err)
		}
	}

	var ve *apperr.ValidationError
	if _, err := f.svc.Login(context.Background(), LoginInput{Email: "admin@hospital.com"}); !errors.As(err, &ve) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestService_LogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	f.addAdmin(t, "admin@hospital.com", "admin123")
	sess, err := f.svc.Login(context.Background(), LoginInput{Email: "admin@hospital.com", Password: "admin123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.svc.Logout(context.Background(), sess.Claims); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	revoked, _ := f.revoked.IsRevoked(context.Background(), sess.Claims.ID)
	if !revoked {
		t.Error("expected token to be revoked")
	}
	if err := f.svc.Logout(context.Background(), nil); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("expected unauthenticated without claims, got %v", err)
	}
}

func TestService_Me(t *testing.T) {
	f := newFixture(t)
	admin := f.addAdmin(t, "admin@hospital.com", "admin123")

	u, err := f.svc.Me(context.Background(), admin.Actor())
	if err != nil || u.ID != admin.ID {
		t.Fatalf("Me() = %v, %v", u, err)
	}
	if _, err := f.svc.Me(context.Background(), auth.Anonymous); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("anonymous: expected unauthenticated, got %v", err)
	}
	gone := auth.Actor{UserID: uuid.NewString(), Role: auth.RoleUser}
	if _, err := f.svc.Me(context.Background(), gone); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("deleted account: expected unauthenticated, got %v", err)
	}
}

func TestHandler_SessionLifecycle(t *testing.T) {
	f := newFixture(t)
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(zerolog.Nop(), apperr.Mapper{})
	e.Use(auth.SessionMiddleware(f.tokens, f.revoked, auth.AuthSkipper))
	NewHandler(f.svc, false).RegisterRoutes(e.Group("/api/v1"))

	do := func(method, path, body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/v1/auth/register", `{"name":"John Patient","email":"user@hospital.com","password":"user12345"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response must not include the password hash")
	}
	cookie := rec.Result().Cookies()
	if len(cookie) == 0 || cookie[0].Name != auth.SessionCookie || !cookie[0].HttpOnly {
		t.Errorf("expected an HttpOnly session cookie, got %v", cookie)
	}

	rec = do(http.MethodPost, "/api/v1/auth/login", `{"email":"user@hospital.com","password":"user12345"}`, "stale-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("login with stale token: expected 200, got %d", rec.Code)
	}
	var body struct {
		User  User   `json:"user"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}

	rec = do(http.MethodGet, "/api/v1/auth/me", "", body.Token)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"role":"USER"`) {
		t.Fatalf("me: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(http.MethodPost, "/api/v1/auth/logout", "", body.Token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}

	rec = do(http.MethodGet, "/api/v1/auth/me", "", body.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("me after logout: expected 401, got %d", rec.Code)
	}

	rec = do(http.MethodGet, "/api/v1/auth/me", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("me without session: expected 401, got %d", rec.Code)
	}

	rec = do(http.MethodPost, "/api/v1/auth/login", `{"email":"user@hospital.com","password":"nope"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password: expected 401, got %d", rec.Code)
	}
}
