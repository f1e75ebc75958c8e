package account

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chaman/hospital/internal/platform/auth"
	"github.com/chaman/hospital/internal/platform/web"
)

type Handler struct {
	svc          *Service
	secureCookie bool
}

// NewHandler creates the auth handler. secureCookie marks the session
// cookie Secure; set it whenever the API is served over TLS.
func NewHandler(svc *Service, secureCookie bool) *Handler {
	return &Handler{svc: svc, secureCookie: secureCookie}
}

// RegisterRoutes mounts /auth. Login and registration are public; guard
// wraps them, typically with a rate limiter.
func (h *Handler) RegisterRoutes(api *echo.Group, guard ...echo.MiddlewareFunc) {
	g := api.Group("/auth")
	g.POST("/register", h.Register, guard...)
	g.POST("/login", h.Login, guard...)
	g.POST("/logout", h.Logout, auth.RequireSession())
	g.GET("/me", h.Me, auth.RequireSession())
}

type sessionResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := (&echo.DefaultBinder{}).BindBody(c, &in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}
	sess, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}
	h.setCookie(c, sess)
	return c.JSON(http.StatusCreated, sessionResponse{User: sess.User, Token: sess.Token})
}

func (h *Handler) Login(c echo.Context) error {
	var in LoginInput
	if err := (&echo.DefaultBinder{}).BindBody(c, &in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}
	sess, err := h.svc.Login(c.Request().Context(), in)
	if err != nil {
		return err
	}
	h.setCookie(c, sess)
	return c.JSON(http.StatusOK, sessionResponse{User: sess.User, Token: sess.Token})
}

func (h *Handler) Logout(c echo.Context) error {
	if err := h.svc.Logout(c.Request().Context(), auth.ClaimsFromContext(c.Request().Context())); err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Me(c echo.Context) error {
	u, err := h.svc.Me(c.Request().Context(), web.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

func (h *Handler) setCookie(c echo.Context, sess *Session) {
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.Claims.ExpiresAt.Time,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
