package clinical

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/internal/platform/auth"
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
	api.GET("/records", h.ListRecords)
	api.POST("/records", h.CreateRecord)
	api.GET("/records/:id", h.GetRecord)
	api.PUT("/records/:id", h.UpdateRecord)
	api.DELETE("/records/:id", h.DeleteRecord)
}

func (h *Handler) CreateRecord(c echo.Context) error {
	var in RecordInput
	if err := web.Bind(c, &in); err != nil {
		return err
	}
	rec, err := h.svc.CreateRecord(c.Request().Context(), web.Actor(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"record": rec})
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := web.PathID(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.GetRecord(c.Request().Context(), web.Actor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"record": rec})
}

func (h *Handler) ListRecords(c echo.Context) error {
	if err := auth.Authenticate(web.Actor(c)); err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	patientID, err := web.OptionalUUID(c.QueryParam("patientId"))
	if err != nil {
		return apperr.Validation("Invalid patientId")
	}
	items, total, err := h.svc.ListRecords(c.Request().Context(), web.Actor(c), RecordFilter{PatientID: patientID}, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*MedicalRecord{}
	}
	return c.JSON(http.StatusOK, pagination.Envelope("records", items, total, pg))
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	id, err := web.PathID(c)
	if err != nil {
		return err
	}
	var in RecordInput
	if err := web.Bind(c, &in); err != nil {
		return err
	}
	rec, err := h.svc.UpdateRecord(c.Request().Context(), web.Actor(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"record": rec})
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	id, err := web.PathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteRecord(c.Request().Context(), web.Actor(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
