package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestAuthSkipper(t *testing.T) {
	tests := []struct {
		route  string
		public bool
	}{
		{"/health", true},
		{"/health/db", true},
		{"/api/v1/auth/login", true},
		{"/api/v1/auth/register", true},
		{"/api/v1/auth/me", false},
		{"/api/v1/auth/logout", false},
		{"/api/v1/patients", false},
		{"/api/v1/appointments/:id/status", false},
		{"/health/extra", false},
		{"/", false},
	}

	e := echo.New()
	for _, tt := range tests {
		c := e.NewContext(httptest.NewRequest(http.MethodPost, tt.route, nil), httptest.NewRecorder())
		c.SetPath(tt.route)
		if got := AuthSkipper(c); got != tt.public {
			t.Errorf("AuthSkipper(%q) = %v, want %v", tt.route, got, tt.public)
		}
	}
}

func TestAuthSkipper_UsesRouteTemplate(t *testing.T) {
	e := echo.New()
	// The raw URL is public but the matched route is not.
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), httptest.NewRecorder())
	c.SetPath("/api/v1/patients/:id")
	if AuthSkipper(c) {
		t.Error("skipper should match on the route template")
	}
}
