package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireSession returns middleware that rejects requests without an
// authenticated actor. Resource routes leave this to the rule set; it guards
// session endpoints such as /auth/me and /auth/logout.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !ActorFromContext(c.Request().Context()).Authenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			return next(c)
		}
	}
}
