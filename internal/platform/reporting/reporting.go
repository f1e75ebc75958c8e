// Package reporting computes the dashboard statistics. Every figure is a
// COUNT over one resource, narrowed to the rows the caller may list.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/internal/platform/auth"
	"github.com/chaman/hospital/internal/platform/db"
)

// Measure defines one dashboard figure.
type Measure struct {
	Key         string        `json:"key"`
	Description string        `json:"description"`
	Resource    auth.Resource `json:"resource"`
	// From is the FROM clause; OwnerColumn is matched against the caller
	// when the rule set restricts the list.
	From        string `json:"-"`
	OwnerColumn string `json:"-"`
	DateColumn  string `json:"-"`
	// Status, when set, counts only rows in that appointment status.
	Status string `json:"-"`
	// Today counts only rows whose DateColumn falls on the current day.
	Today bool `json:"-"`
}

// PredefinedMeasures are the figures shown on the dashboard, in order.
var PredefinedMeasures = []Measure{
	{
		Key:         "totalPatients",
		Description: "Registered patients",
		Resource:    auth.ResourcePatient,
		From:        "patients",
	},
	{
		Key:         "totalDoctors",
		Description: "Registered doctors",
		Resource:    auth.ResourceDoctor,
		From:        "doctors",
	},
	{
		Key:         "totalAppointments",
		Description: "Appointments visible to the caller",
		Resource:    auth.ResourceAppointment,
		From:        "appointments",
		OwnerColumn: "user_id",
	},
	{
		Key:         "todayAppointments",
		Description: "Appointments dated today",
		Resource:    auth.ResourceAppointment,
		From:        "appointments",
		OwnerColumn: "user_id",
		DateColumn:  "date",
		Today:       true,
	},
	{
		Key:         "pendingAppointments",
		Description: "Appointments still scheduled",
		Resource:    auth.ResourceAppointment,
		From:        "appointments",
		OwnerColumn: "user_id",
		Status:      auth.StatusScheduled,
	},
}

// FindMeasure returns the measure with the given key, or nil.
func FindMeasure(key string) *Measure {
	for i := range PredefinedMeasures {
		if PredefinedMeasures[i].Key == key {
			return &PredefinedMeasures[i]
		}
	}
	return nil
}

// Query builds the COUNT statement for m. owner restricts the rows to one
// user; dayStart and dayEnd bound Today measures.
func (m Measure) Query(owner *uuid.UUID, dayStart, dayEnd time.Time) (string, []interface{}) {
	query := "SELECT COUNT(*) FROM " + m.From + " WHERE 1=1"
	var args []interface{}
	idx := 1

	if m.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, m.Status)
		idx++
	}
	if m.Today {
		query += fmt.Sprintf(" AND %s >= $%d AND %s < $%d", m.DateColumn, idx, m.DateColumn, idx+1)
		args = append(args, dayStart, dayEnd)
		idx += 2
	}
	if owner != nil && m.OwnerColumn != "" {
		query += fmt.Sprintf(" AND %s = $%d", m.OwnerColumn, idx)
		args = append(args, *owner)
	}
	return query, args
}

// Counter runs a single-value COUNT query.
type Counter interface {
	Count(ctx context.Context, sql string, args ...interface{}) (int, error)
}

type pgCounter struct {
	pool *pgxpool.Pool
}

// NewPGCounter returns a Counter backed by the pool.
func NewPGCounter(pool *pgxpool.Pool) Counter {
	return &pgCounter{pool: pool}
}

func (c *pgCounter) Count(ctx context.Context, sql string, args ...interface{}) (int, error) {
	var n int
	if err := db.Conn(ctx, c.pool).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, db.Classify("dashboard", "fetch dashboard statistics", err)
	}
	return n, nil
}

// Service evaluates the dashboard measures for an actor.
type Service struct {
	counter Counter
	now     func() time.Time
}

func NewService(counter Counter) *Service {
	return &Service{counter: counter, now: time.Now}
}

// Dashboard returns every predefined measure keyed by Measure.Key. A USER
// gets appointment counts over their own rows only; a measure the rule set does not let
// the actor list at all is left out.
func (s *Service) Dashboard(ctx context.Context, actor auth.Actor) (map[string]int, error) {
	if err := auth.Authenticate(actor); err != nil {
		return nil, err
	}
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	stats := make(map[string]int, len(PredefinedMeasures))
	for _, m := range PredefinedMeasures {
		d, err := auth.Authorize(auth.Request{Actor: actor, Resource: m.Resource, Operation: auth.OpList})
		if errors.Is(err, apperr.ErrForbidden) {
			continue
		}
		if err != nil {
			return nil, err
		}
		owner, err := auth.FilterUserID(d.Filter)
		if err != nil {
			return nil, err
		}
		query, args := m.Query(owner, dayStart, dayEnd)
		n, err := s.counter.Count(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		stats[m.Key] = n
	}
	return stats, nil
}

// Handler serves the dashboard API.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard", h.Dashboard)
	api.GET("/dashboard/measures", h.ListMeasures, auth.RequireSession())
}

func (h *Handler) Dashboard(c echo.Context) error {
	stats, err := h.svc.Dashboard(c.Request().Context(), auth.ActorFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// ListMeasures describes the figures returned by Dashboard.
func (h *Handler) ListMeasures(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"measures": PredefinedMeasures})
}
