package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths are the routes reachable without a session.
var publicPaths = map[string]bool{
	"/health":               true,
	"/health/db":            true,
	"/api/v1/auth/login":    true,
	"/api/v1/auth/register": true,
}

// AuthSkipper reports whether the matched route needs no session. Passed to
// SessionMiddleware so a stale cookie cannot block a fresh login.
func AuthSkipper(c echo.Context) bool {
	return IsPublicPath(c.Path())
}

// IsPublicPath matches route templates, not raw URLs.
func IsPublicPath(route string) bool {
	return publicPaths[route]
}
