package handler

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/teereserve/golf-booking/internal/model"
	"github.com/teereserve/golf-booking/internal/repository"
	"github.com/teereserve/golf-booking/internal/service"
)

// AdminHandler bundles what the ADMIN endpoints need: the course, pricing
// and calendar repositories, the resolver for previews, the event publisher
// and a hook that drops cached prices after a write.
type AdminHandler struct {
	Courses  *repository.CourseRepo
	Products *repository.BaseProductRepo
	Rules    *repository.PriceRuleRepo
	Calendar *repository.CalendarRepo
	Prices   Quoter
	Events   service.Publisher
	Purge    func(ctx context.Context) error
	Now      func() time.Time
}

// NewAdminHandler panics when a repository is missing.  A nil publisher
// becomes a no-op and a nil purge hook is skipped.
func NewAdminHandler(courses *repository.CourseRepo, products *repository.BaseProductRepo, rules *repository.PriceRuleRepo,
	calendar *repository.CalendarRepo, prices Quoter, events service.Publisher, purge func(context.Context) error) *AdminHandler {
	if courses == nil || products == nil || rules == nil || calendar == nil || prices == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	if events == nil {
		events = service.NopPublisher{}
	}
	return &AdminHandler{
		Courses:  courses,
		Products: products,
		Rules:    rules,
		Calendar: calendar,
		Prices:   prices,
		Events:   events,
		Purge:    purge,
		Now:      time.Now,
	}
}

var adminStatus = map[error]int{
	repository.ErrCourseNotFound:   http.StatusNotFound,
	repository.ErrBaseProductUnset: http.StatusNotFound,
	repository.ErrRuleNotFound:     http.StatusNotFound,
	repository.ErrSeasonNotFound:   http.StatusNotFound,
	repository.ErrTimeBandNotFound: http.StatusNotFound,
	repository.ErrConflict:         http.StatusConflict,
}

// adminFailure maps repository errors onto the envelope; anything unknown is
// logged and reported as a 500.
func adminFailure(c echo.Context, err error, what string) error {
	status := statusOf(err, adminStatus)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg(what)
		return fail(c, status, what)
	}
	return fail(c, status, err.Error())
}

// invalidate drops cached price responses.  Failures only cost freshness.
func (h *AdminHandler) invalidate(ctx context.Context) {
	if h.Purge == nil {
		return
	}
	if err := h.Purge(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("cache purge failed")
	}
}

type courseReq struct {
	Name      string   `json:"name"`
	BasePrice *float64 `json:"basePrice"`
	Currency  string   `json:"currency"`
}

func (r courseReq) validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "name is required"
	}
	if r.BasePrice != nil && !validAmount(*r.BasePrice) {
		return "basePrice must be a non-negative number"
	}
	return ""
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// CreateCourse handles POST /v1/admin/courses.
func (h *AdminHandler) CreateCourse(c echo.Context) error {
	var req courseReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx := c.Request().Context()

	course := &model.Course{Name: strings.TrimSpace(req.Name), BasePrice: req.BasePrice, Currency: req.Currency}
	if err := h.Courses.Create(ctx, course); err != nil {
		return adminFailure(c, err, "could not create course")
	}
	h.invalidate(ctx)
	return ok(c, http.StatusCreated, course)
}

// UpdateCourse handles PUT /v1/admin/courses/:id.
func (h *AdminHandler) UpdateCourse(c echo.Context) error {
	var req courseReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx := c.Request().Context()

	course := &model.Course{ID: c.Param("id"), Name: strings.TrimSpace(req.Name), BasePrice: req.BasePrice,
		Currency: strings.ToUpper(strings.TrimSpace(req.Currency))}
	if course.Currency == "" {
		course.Currency = model.DefaultCurrency
	}
	if err := h.Courses.Update(ctx, course); err != nil {
		return adminFailure(c, err, "could not update course")
	}
	h.invalidate(ctx)
	updated, err := h.Courses.GetByID(ctx, course.ID)
	if err != nil {
		return adminFailure(c, err, "could not load course")
	}
	return ok(c, http.StatusOK, updated)
}

// DeleteCourse handles DELETE /v1/admin/courses/:id.  The course's rules,
// base product and calendar go with it.
func (h *AdminHandler) DeleteCourse(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.Courses.Delete(ctx, c.Param("id")); err != nil {
		return adminFailure(c, err, "could not delete course")
	}
	h.invalidate(ctx)
	return c.NoContent(http.StatusNoContent)
}

type baseProductReq struct {
	BasePrice *float64 `json:"basePrice"`
	Currency  string   `json:"currency"`
}

// PutBaseProduct handles PUT /v1/admin/courses/:id/base-product.
func (h *AdminHandler) PutBaseProduct(c echo.Context) error {
	var req baseProductReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.BasePrice == nil || !validAmount(*req.BasePrice) {
		return fail(c, http.StatusBadRequest, "basePrice must be a non-negative number")
	}
	ctx := c.Request().Context()

	p := &model.BaseProduct{CourseID: c.Param("id"), BasePrice: *req.BasePrice, Currency: req.Currency}
	if err := h.Products.Save(ctx, p); err != nil {
		return adminFailure(c, err, "could not save base product")
	}
	h.invalidate(ctx)
	return ok(c, http.StatusOK, p)
}

// GetBaseProduct handles GET /v1/admin/courses/:id/base-product.
func (h *AdminHandler) GetBaseProduct(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := h.Products.Get(ctx, c.Param("id"))
	if err != nil {
		return adminFailure(c, err, "could not load base product")
	}
	return ok(c, http.StatusOK, p)
}
