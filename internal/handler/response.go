package handler // HTTP handlers for the Echo server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teereserve/golf-booking/internal/middleware"
)

// ok writes {"ok": true, "data": data}.
func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"ok": true, "data": data})
}

// fail writes {"ok": false, "error": msg}.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"ok": false, "error": msg})
}

var errNoUser = errors.New("no authenticated user in context")

// userID returns the subject JWTAuth stored on the context.
func userID(c echo.Context) (uint64, error) {
	id, isID := c.Get(middleware.CtxUserID).(uint64)
	if !isID || id == 0 {
		return 0, errNoUser
	}
	return id, nil
}

// parseInstant reads an RFC3339 timestamp, falling back to now when raw is
// blank.
func parseInstant(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// statusOf maps an error to the HTTP status it should produce.  Unknown
// errors are 500s.
func statusOf(err error, table map[error]int) int {
	for target, status := range table {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
