package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teereserve/golf-booking/internal/model"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// ListSeasons handles GET /v1/admin/courses/:id/seasons.
func (h *AdminHandler) ListSeasons(c echo.Context) error {
	ctx := c.Request().Context()
	seasons, err := h.Calendar.ListSeasons(ctx, c.Param("id"))
	if err != nil {
		return adminFailure(c, err, "could not list seasons")
	}
	return ok(c, http.StatusOK, seasons)
}

// CreateSeason handles POST /v1/admin/courses/:id/seasons with dates as
// YYYY-MM-DD.
func (h *AdminHandler) CreateSeason(c echo.Context) error {
	var req struct {
		Name      string `json:"name"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}
	start, err1 := time.Parse(dateLayout, req.StartDate)
	end, err2 := time.Parse(dateLayout, req.EndDate)
	if err1 != nil || err2 != nil {
		return fail(c, http.StatusBadRequest, "startDate and endDate must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return fail(c, http.StatusBadRequest, "endDate must not be before startDate")
	}
	ctx := c.Request().Context()

	s := &model.Season{CourseID: c.Param("id"), Name: name, StartDate: start, EndDate: end}
	if err := h.Calendar.CreateSeason(ctx, s); err != nil {
		return adminFailure(c, err, "could not create season")
	}
	return ok(c, http.StatusCreated, s)
}

// DeleteSeason handles DELETE /v1/admin/seasons/:id.
func (h *AdminHandler) DeleteSeason(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.Calendar.DeleteSeason(ctx, c.Param("id")); err != nil {
		return adminFailure(c, err, "could not delete season")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTimeBands handles GET /v1/admin/courses/:id/time-bands.
func (h *AdminHandler) ListTimeBands(c echo.Context) error {
	ctx := c.Request().Context()
	bands, err := h.Calendar.ListTimeBands(ctx, c.Param("id"))
	if err != nil {
		return adminFailure(c, err, "could not list time bands")
	}
	return ok(c, http.StatusOK, bands)
}

// CreateTimeBand handles POST /v1/admin/courses/:id/time-bands with times as
// HH:MM.  A band may wrap past midnight, so end before start is allowed.
func (h *AdminHandler) CreateTimeBand(c echo.Context) error {
	var req struct {
		Name      string `json:"name"`
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}
	_, err1 := time.Parse(clockLayout, req.StartTime)
	_, err2 := time.Parse(clockLayout, req.EndTime)
	if err1 != nil || err2 != nil {
		return fail(c, http.StatusBadRequest, "startTime and endTime must be HH:MM")
	}
	ctx := c.Request().Context()

	b := &model.TimeBand{CourseID: c.Param("id"), Name: name, StartTime: req.StartTime, EndTime: req.EndTime}
	if err := h.Calendar.CreateTimeBand(ctx, b); err != nil {
		return adminFailure(c, err, "could not create time band")
	}
	return ok(c, http.StatusCreated, b)
}

// DeleteTimeBand handles DELETE /v1/admin/time-bands/:id.
func (h *AdminHandler) DeleteTimeBand(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.Calendar.DeleteTimeBand(ctx, c.Param("id")); err != nil {
		return adminFailure(c, err, "could not delete time band")
	}
	return c.NoContent(http.StatusNoContent)
}
