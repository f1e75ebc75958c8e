// Package web holds the request helpers shared by the domain handlers.
package web

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/chaman/hospital/internal/platform/auth"
)

// Actor returns the actor resolved by the session middleware.
func Actor(c echo.Context) auth.Actor {
	return auth.ActorFromContext(c.Request().Context())
}

// PathID parses the :id route parameter. An anonymous caller gets 401
// before the id is validated.
func PathID(c echo.Context) (uuid.UUID, error) {
	if err := auth.Authenticate(Actor(c)); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}
	return id, nil
}

// Bind decodes the JSON request body into v. An anonymous caller gets 401
// before the body is read.
func Bind(c echo.Context, v interface{}) error {
	if err := auth.Authenticate(Actor(c)); err != nil {
		return err
	}
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}
	return nil
}

// OptionalUUID parses an optional query or body value.
func OptionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
