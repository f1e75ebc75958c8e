package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chaman/hospital/internal/platform/web"
	"github.com/chaman/hospital/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/departments", h.ListDepartments)
	api.POST("/departments", h.CreateDepartment)
	api.GET("/departments/:id", h.GetDepartment)
	api.PUT("/departments/:id", h.UpdateDepartment)
	api.DELETE("/departments/:id", h.DeleteDepartment)

	api.GET("/staff", h.ListStaff)
	api.POST("/staff", h.CreateStaff)
	api.GET("/staff/:id", h.GetStaff)
	api.PUT("/staff/:id", h.UpdateStaff)
	api.DELETE("/staff/:id", h.DeleteStaff)
}

// -- Department Handlers --

func (h *Handler) CreateDepartment(c echo.Context) error {
	var in DepartmentInput
	if err := web.Bind(c, &in); err != nil {
		return err
	}
	d, err := h.svc.CreateDepartment(c.Request().Context(), web.Actor(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"department": d})
}

func (h *Handler) GetDepartment(c echo.Context) error {
	id, err := web.PathID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.GetDepartment(c.Request().Context(), web.Actor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"department": d})
}

func (h *Handler) ListDepartments(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDepartments(c.Request().Context(), web.Actor(c), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Department{}
	}
	return c.JSON(http.StatusOK, pagination.Envelope("departments", items, total, pg))
}

func (h *Handler) UpdateDepartment(c echo.Context) error {
	id, err := web.PathID(c)
	if err != nil {
		return err
	}
	var in DepartmentInput
	if err := web.Bind(c, &in); err != nil {
		return err
	}
	d, err := h.svc.UpdateDepartment(c.Request().Context(), web.Actor(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"department": d})
}

func (h *Handler) DeleteDepartment(c echo.Context) error {
	id, err := web.PathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteDepartment(c.Request().Context(), web.Actor(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Staff Handlers --

func (h *Handler) CreateStaff(c echo.Context) error {
	var in StaffInput
	if err := web.Bind(c, &in); err != nil {
		return err
	}
	m, err := h.svc.CreateStaff(c.Request().Context(), web.Actor(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"staffMember": m})
}

func (h *Handler) GetStaff(c echo.Context) error {
	id, err := web.PathID(c)
	if err != nil {
		return err
	}
	m, err := h.svc.GetStaff(c.Request().Context(), web.Actor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"staffMember": m})
}

func (h *Handler) ListStaff(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := StaffFilter{Department: c.QueryParam("department")}
	items, total, err := h.svc.ListStaff(c.Request().Context(), web.Actor(c), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Staff{}
	}
	return c.JSON(http.StatusOK, pagination.Envelope("staff", items, total, pg))
}

func (h *Handler) UpdateStaff(c echo.Context) error {
	id, err := web.PathID(c)
	if err != nil {
		return err
	}
	var in StaffInput
	if err := web.Bind(c, &in); err != nil {
		return err
	}
	m, err := h.svc.UpdateStaff(c.Request().Context(), web.Actor(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"staffMember": m})
}

func (h *Handler) DeleteStaff(c echo.Context) error {
	id, err := web.PathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteStaff(c.Request().Context(), web.Actor(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
