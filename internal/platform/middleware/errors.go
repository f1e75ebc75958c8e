package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chaman/hospital/internal/platform/apperr"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// ErrorHandler returns an echo.HTTPErrorHandler that renders errors as
// {"error": message}. Domain errors are translated through mapper; echo's
// own HTTP errors keep their status. Server-side failures are logged with
// their cause and reported to the client with a generic message.
func ErrorHandler(logger zerolog.Logger, mapper apperr.Mapper) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, msg := resolveError(err, mapper)
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).
				Str("request_id", requestID(c)).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, ErrorBody{Error: msg})
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("write error response")
		}
	}
}

func resolveError(err error, mapper apperr.Mapper) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			if status, msg := mapper.Status(he.Internal); status != http.StatusInternalServerError {
				return status, msg
			}
		}
		msg := http.StatusText(he.Code)
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		case nil:
		default:
			msg = fmt.Sprint(m)
		}
		if he.Code == http.StatusInternalServerError {
			msg = "Internal server error"
		}
		return he.Code, msg
	}
	return mapper.Status(err)
}
