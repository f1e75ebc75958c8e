package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only")

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer(testSigningKey, time.Hour)
}

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], s.err
}

// runSession executes SessionMiddleware against req and returns the actor the
// downstream handler observed together with the middleware error.
func runSession(t *testing.T, issuer *TokenIssuer, revoked RevocationChecker, req *http.Request) (Actor, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen Actor
	handler := func(c echo.Context) error {
		seen = ActorFromContext(c.Request().Context())
		return c.String(http.StatusOK, "ok")
	}
	err := SessionMiddleware(issuer, revoked, nil)(handler)(c)
	return seen, err
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", httpErr.Code)
	}
	if httpErr.Message != "Unauthorized" {
		t.Errorf("expected message Unauthorized, got %v", httpErr.Message)
	}
}

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	issuer := newTestIssuer()

	tokenStr, claims, err := issuer.Issue("user-1", RoleUser, "John Patient")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.ID == "" {
		t.Error("expected a token id")
	}

	parsed, err := issuer.Parse(tokenStr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Subject != "user-1" || parsed.Role != RoleUser || parsed.Name != "John Patient" {
		t.Errorf("unexpected claims: %+v", parsed)
	}
	if parsed.Actor() != (Actor{UserID: "user-1", Role: RoleUser}) {
		t.Errorf("unexpected actor: %+v", parsed.Actor())
	}
}

func TestTokenIssuer_IssueRejectsInvalidIdentity(t *testing.T) {
	issuer := newTestIssuer()
	if _, _, err := issuer.Issue("", RoleUser, ""); err == nil {
		t.Error("expected error for empty user id")
	}
	if _, _, err := issuer.Issue("user-1", Role("ROOT"), ""); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestTokenIssuer_ParseExpired(t *testing.T) {
	issuer := newTestIssuer()
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tokenStr, _, err := issuer.Issue("user-1", RoleAdmin, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Parse(tokenStr); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestTokenIssuer_ParseWrongKey(t *testing.T) {
	tokenStr, _, err := NewTokenIssuer([]byte("another-key-another-key-another-key"), time.Hour).Issue("u", RoleUser, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := newTestIssuer().Parse(tokenStr); err == nil {
		t.Error("expected error for token signed with another key")
	}
}

func TestTokenIssuer_ParseRejectsUnknownRole(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "SUPERUSER",
	}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	if _, err := newTestIssuer().Parse(tokenStr); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestSessionMiddleware_NoTokenIsAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	actor, err := runSession(t, newTestIssuer(), nil, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actor != Anonymous {
		t.Errorf("expected anonymous actor, got %+v", actor)
	}
}

func TestSessionMiddleware_InvalidFormat(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "Token abc123"},
		{"missing token", "Bearer"},
		{"empty value", "Bearer "},
		{"basic auth", "Basic dXNlcjpwYXNz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tt.header)
			_, err := runSession(t, newTestIssuer(), nil, req)
			assertUnauthorized(t, err)
		})
	}
}

func TestSessionMiddleware_BearerToken(t *testing.T) {
	issuer := newTestIssuer()
	tokenStr, _, _ := issuer.Issue("admin-1", RoleAdmin, "Hospital Admin")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	actor, err := runSession(t, issuer, nil, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !actor.IsAdmin() || actor.UserID != "admin-1" {
		t.Errorf("unexpected actor: %+v", actor)
	}
}

func TestSessionMiddleware_Cookie(t *testing.T) {
	issuer := newTestIssuer()
	tokenStr, _, _ := issuer.Issue("user-1", RoleUser, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tokenStr})
	actor, err := runSession(t, issuer, nil, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actor.UserID != "user-1" || actor.Role != RoleUser {
		t.Errorf("unexpected actor: %+v", actor)
	}
}

func TestSessionMiddleware_GarbageCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "not-a-jwt"})
	_, err := runSession(t, newTestIssuer(), nil, req)
	assertUnauthorized(t, err)
}

func TestSessionMiddleware_Revoked(t *testing.T) {
	issuer := newTestIssuer()
	tokenStr, claims, _ := issuer.Issue("user-1", RoleUser, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	_, err := runSession(t, issuer, &stubRevocations{revoked: map[string]bool{claims.ID: true}}, req)
	assertUnauthorized(t, err)
}

func TestSessionMiddleware_RevocationStoreFailure(t *testing.T) {
	issuer := newTestIssuer()
	tokenStr, _, _ := issuer.Issue("user-1", RoleUser, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	_, err := runSession(t, issuer, &stubRevocations{err: errors.New("redis down")}, req)
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*echo.HTTPError); ok {
		t.Errorf("store failure must not look like a 401: %v", err)
	}
}

func TestSessionMiddleware_SkipperIgnoresStaleSession(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/auth/login")

	called := false
	handler := func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}
	if err := SessionMiddleware(newTestIssuer(), nil, AuthSkipper)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
}

func TestRequireSession(t *testing.T) {
	e := echo.New()
	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	assertUnauthorized(t, RequireSession()(handler)(c))

	req = req.WithContext(WithActor(req.Context(), Actor{UserID: "u", Role: RoleUser}))
	c = e.NewContext(req, httptest.NewRecorder())
	if err := RequireSession()(handler)(c); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestActorFromContext_Default(t *testing.T) {
	if ActorFromContext(context.Background()) != Anonymous {
		t.Error("expected anonymous actor for bare context")
	}
	if ClaimsFromContext(context.Background()) != nil {
		t.Error("expected nil claims for bare context")
	}
}
