package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/teereserve/golf-booking/internal/model"
	"github.com/teereserve/golf-booking/internal/pricing"
	"github.com/teereserve/golf-booking/internal/repository"
)

// CourseReader is the read side of the course repository.
type CourseReader interface {
	GetByID(ctx context.Context, id string) (*model.Course, error)
	List(ctx context.Context) ([]*model.Course, error)
}

// PublicHandler serves unauthenticated course browsing.
type PublicHandler struct {
	Courses CourseReader
	Prices  Quoter
}

func NewPublicHandler(courses CourseReader, prices Quoter) *PublicHandler {
	return &PublicHandler{Courses: courses, Prices: prices}
}

// PublicCourse is a course as shown to golfers, with its "from" price.
// FromPrice is omitted when the course has no price configured.
type PublicCourse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Currency  string   `json:"currency"`
	FromPrice *float64 `json:"fromPrice,omitempty"`
}

// fromPrices resolves the display price of every course, at most eight at a
// time.  Courses that cannot be priced are left without one.
func (h *PublicHandler) fromPrices(ctx context.Context, courses []*model.Course) []PublicCourse {
	out := make([]PublicCourse, len(courses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, course := range courses {
		out[i] = PublicCourse{ID: course.ID, Name: course.Name, Currency: course.Currency}
		g.Go(func() error {
			q, err := h.Prices.MinPrice(gctx, course.ID)
			if err != nil {
				if !errors.Is(err, pricing.ErrPriceNotFound) {
					zerolog.Ctx(ctx).Warn().Err(err).Str("course_id", course.ID).Msg("from price unavailable")
				}
				return nil
			}
			price := q.MinPrice
			out[i].FromPrice = &price
			out[i].Currency = q.Currency
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// ListCourses handles GET /v1/courses.
func (h *PublicHandler) ListCourses(c echo.Context) error {
	ctx := c.Request().Context()
	courses, err := h.Courses.List(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("list courses")
		return fail(c, http.StatusInternalServerError, "could not list courses")
	}
	return ok(c, http.StatusOK, h.fromPrices(ctx, courses))
}

// GetCourse handles GET /v1/courses/:id.
func (h *PublicHandler) GetCourse(c echo.Context) error {
	ctx := c.Request().Context()
	course, err := h.Courses.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return fail(c, http.StatusNotFound, err.Error())
		}
		zerolog.Ctx(ctx).Error().Err(err).Msg("get course")
		return fail(c, http.StatusInternalServerError, "could not load course")
	}
	return ok(c, http.StatusOK, h.fromPrices(ctx, []*model.Course{course})[0])
}
