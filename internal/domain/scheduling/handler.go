package scheduling

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/internal/platform/auth"
	"github.com/chaman/hospital/internal/platform/web"
	"github.com/chaman/hospital/pkg/dates"
	"github.com/chaman/hospital/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments", h.ListAppointments)
	api.POST("/appointments", h.CreateAppointment)
	api.GET("/appointments/:id", h.GetAppointment)
	api.PUT("/appointments/:id", h.UpdateAppointment)
	api.PATCH("/appointments/:id/status", h.TransitionStatus)
	api.DELETE("/appointments/:id", h.DeleteAppointment)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var in AppointmentInput
	if err := web.Bind(c, &in); err != nil {
		return err
	}
	a, err := h.svc.CreateAppointment(c.Request().Context(), web.Actor(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"appointment": a})
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := web.PathID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), web.Actor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"appointment": a})
}

func (h *Handler) ListAppointments(c echo.Context) error {
	if err := auth.Authenticate(web.Actor(c)); err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	items, total, err := h.svc.ListAppointments(c.Request().Context(), web.Actor(c), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, pagination.Envelope("appointments", items, total, pg))
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := web.PathID(c)
	if err != nil {
		return err
	}
	var in AppointmentInput
	if err := web.Bind(c, &in); err != nil {
		return err
	}
	a, err := h.svc.UpdateAppointment(c.Request().Context(), web.Actor(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"appointment": a})
}

func (h *Handler) TransitionStatus(c echo.Context) error {
	id, err := web.PathID(c)
	if err != nil {
		return err
	}
	var in StatusInput
	if err := web.Bind(c, &in); err != nil {
		return err
	}
	a, err := h.svc.TransitionStatus(c.Request().Context(), web.Actor(c), id, strings.ToUpper(strings.TrimSpace(in.Status)))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"appointment": a})
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := web.PathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAppointment(c.Request().Context(), web.Actor(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// filterFromQuery reads ?status, ?patientId, ?doctorId, ?from and ?to.
// A userId parameter is never honoured.
func filterFromQuery(c echo.Context) (AppointmentFilter, error) {
	f := AppointmentFilter{Status: strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))}
	var err error
	if f.PatientID, err = web.OptionalUUID(c.QueryParam("patientId")); err != nil {
		return f, apperr.Validation("Invalid patientId")
	}
	if f.DoctorID, err = web.OptionalUUID(c.QueryParam("doctorId")); err != nil {
		return f, apperr.Validation("Invalid doctorId")
	}
	from, to := c.QueryParam("from"), c.QueryParam("to")
	if f.From, err = dates.ParseOptional(&from); err != nil {
		return f, apperr.Validation("Invalid from date")
	}
	if f.To, err = dates.ParseOptional(&to); err != nil {
		return f, apperr.Validation("Invalid to date")
	}
	return f, nil
}
