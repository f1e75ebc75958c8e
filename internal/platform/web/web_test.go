package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/internal/platform/auth"
)

func newContext(method, body string, actor auth.Actor) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(auth.WithActor(req.Context(), actor))
	return e.NewContext(req, httptest.NewRecorder())
}

var user = auth.Actor{UserID: uuid.NewString(), Role: auth.RoleUser}

func TestPathID(t *testing.T) {
	id := uuid.New()

	c := newContext(http.MethodGet, "", user)
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	got, err := PathID(c)
	if err != nil || got != id {
		t.Fatalf("PathID() = %v, %v", got, err)
	}

	c = newContext(http.MethodGet, "", user)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	_, err = PathID(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}

	c = newContext(http.MethodGet, "", auth.Anonymous)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	if _, err := PathID(c); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("expected unauthenticated before id validation, got %v", err)
	}
}

func TestBind(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	if err := Bind(newContext(http.MethodPost, `{"name":"Ravi Kumar"}`, user), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Name != "Ravi Kumar" {
		t.Errorf("expected name to be bound, got %q", v.Name)
	}

	err := Bind(newContext(http.MethodPost, `{"name":`, user), &v)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %v", err)
	}

	if err := Bind(newContext(http.MethodPost, `{"name":`, auth.Anonymous), &v); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("expected unauthenticated, got %v", err)
	}
}

func TestOptionalUUID(t *testing.T) {
	if id, err := OptionalUUID(""); id != nil || err != nil {
		t.Errorf("empty: %v %v", id, err)
	}
	if _, err := OptionalUUID("x"); err == nil {
		t.Error("expected error")
	}
	want := uuid.New()
	if id, err := OptionalUUID(want.String()); err != nil || *id != want {
		t.Errorf("got %v %v", id, err)
	}
}
