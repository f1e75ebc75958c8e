package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Limit  int
	Offset int
}

// FromContext extracts ?limit= and ?offset= from the echo context. Missing or
// malformed values fall back to the defaults.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Offset+p.Limit < total
}

// Envelope builds a list response whose items sit under key, e.g.
// {"appointments": [...], "total": 3, "limit": 100, "offset": 0, "hasMore": false}.
// A nil slice should be passed as an empty one so clients always get an array.
func Envelope(key string, items interface{}, total int, p Params) map[string]interface{} {
	return map[string]interface{}{
		key:       items,
		"total":   total,
		"limit":   p.Limit,
		"offset":  p.Offset,
		"hasMore": p.HasNext(total),
	}
}
