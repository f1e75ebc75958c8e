package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/internal/platform/auth"
)

// AuditEntry records one access to a protected resource.
type AuditEntry struct {
	RequestID  string    `json:"requestId"`
	UserID     string    `json:"userId,omitempty"`
	Role       string    `json:"role,omitempty"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resourceId,omitempty"`
	Action     string    `json:"action"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	StatusCode int       `json:"status"`
	Denied     bool      `json:"denied"`
	IPAddress  string    `json:"ip"`
	UserAgent  string    `json:"userAgent,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// AuditRecorder persists audit entries outside the process log.
type AuditRecorder interface {
	RecordAccess(ctx context.Context, entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(ctx context.Context, entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(ctx context.Context, entry AuditEntry) error {
	return f(ctx, entry)
}

// Audit logs every /api/v1 request that touches a resource, including
// denied ones, and forwards the entry to recorder when one is given.
// Session endpoints are not audited. Handler errors are not rendered yet at
// this point, so mapper resolves the status the client will see.
func Audit(logger zerolog.Logger, mapper apperr.Mapper, recorder AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			resource, resourceID, ok := auditTarget(req.URL.Path)
			if !ok {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if err != nil {
				status, _ = resolveError(err, mapper)
			}
			actor := auth.ActorFromContext(req.Context())
			entry := AuditEntry{
				RequestID:  requestID(c),
				UserID:     actor.UserID,
				Role:       string(actor.Role),
				Resource:   resource,
				ResourceID: resourceID,
				Action:     httpMethodToAction(req.Method, req.URL.Path, resourceID),
				Method:     req.Method,
				Path:       req.URL.Path,
				StatusCode: status,
				Denied:     status == http.StatusUnauthorized || status == http.StatusForbidden,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				Timestamp:  time.Now().UTC(),
			}

			if recorder != nil {
				if recErr := recorder.RecordAccess(req.Context(), entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Str("role", entry.Role).
				Str("resource", entry.Resource).
				Str("resource_id", entry.ResourceID).
				Str("action", entry.Action).
				Int("status", entry.StatusCode).
				Bool("denied", entry.Denied).
				Str("remote_ip", entry.IPAddress).
				Msg("resource_access")

			return err
		}
	}
}

// auditTarget maps /api/v1/<collection>[/<id>[/...]] to the audited resource
// name and row id. Paths outside the resource collections are skipped.
func auditTarget(path string) (resource, id string, ok bool) {
	if !strings.HasPrefix(path, "/api/v1/") {
		return "", "", false
	}
	segments := strings.Split(strings.Trim(strings.TrimPrefix(path, "/api/v1/"), "/"), "/")
	resource, ok = auditedCollections[segments[0]]
	if !ok {
		return "", "", false
	}
	if len(segments) > 1 {
		if _, err := uuid.Parse(segments[1]); err == nil {
			id = segments[1]
		}
	}
	return resource, id, true
}

var auditedCollections = map[string]string{
	"appointments": "Appointment",
	"doctors":      "Doctor",
	"patients":     "Patient",
	"records":      "MedicalRecord",
	"departments":  "Department",
	"staff":        "Staff",
	"dashboard":    "Dashboard",
}

// httpMethodToAction maps a request to the rule set operation it exercises.
func httpMethodToAction(method, path, id string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		if id == "" {
			return "LIST"
		}
		return "READ"
	case http.MethodPost:
		return "CREATE"
	case http.MethodPut:
		return "UPDATE"
	case http.MethodPatch:
		if strings.HasSuffix(path, "/status") {
			return "STATUS_TRANSITION"
		}
		return "UPDATE"
	case http.MethodDelete:
		return "DELETE"
	default:
		return "READ"
	}
}
