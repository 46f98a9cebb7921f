package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/teereserve/golf-booking/internal/model"
	"github.com/teereserve/golf-booking/internal/queue"
	"github.com/teereserve/golf-booking/internal/repository"
	"github.com/teereserve/golf-booking/internal/service"
	"github.com/teereserve/golf-booking/internal/teesheet"
)

// BookingStore persists bookings.  *repository.BookingRepo implements it.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByIdempotencyKey(ctx context.Context, userID uint64, key string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
}

// BookingHandler serves tee-time availability and golfer bookings.
type BookingHandler struct {
	Courses   CourseReader
	Prices    Quoter
	Providers *teesheet.Registry
	Bookings  BookingStore
	Events    service.Publisher
	Now       func() time.Time
}

func NewBookingHandler(courses CourseReader, prices Quoter, providers *teesheet.Registry, bookings BookingStore, events service.Publisher) *BookingHandler {
	if events == nil {
		events = service.NopPublisher{}
	}
	return &BookingHandler{Courses: courses, Prices: prices, Providers: providers, Bookings: bookings, Events: events, Now: time.Now}
}

var bookingStatus = map[error]int{
	repository.ErrCourseNotFound:    http.StatusNotFound,
	teesheet.ErrUnknownProvider:     http.StatusBadRequest,
	teesheet.ErrInvalidRequest:      http.StatusBadRequest,
	teesheet.ErrSlotUnavailable:     http.StatusConflict,
	teesheet.ErrIdempotencyConflict: http.StatusConflict,
}

func bookingFailure(c echo.Context, err error, what string) error {
	status := statusOf(err, bookingStatus)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg(what)
		return fail(c, status, what)
	}
	return fail(c, status, err.Error())
}

// TeeTimes handles GET /v1/tee-times?courseId=...&date=YYYY-MM-DD&provider=...
// The date defaults to today (UTC).
func (h *BookingHandler) TeeTimes(c echo.Context) error {
	courseID := strings.TrimSpace(c.QueryParam("courseId"))
	if courseID == "" {
		return fail(c, http.StatusBadRequest, "courseId is required")
	}
	day := h.Now().UTC()
	if raw := c.QueryParam("date"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return fail(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		day = d
	}
	ctx := c.Request().Context()

	if _, err := h.Courses.GetByID(ctx, courseID); err != nil {
		return bookingFailure(c, err, "could not load course")
	}
	p, err := h.Providers.Get(c.QueryParam("provider"))
	if err != nil {
		return bookingFailure(c, err, "provider lookup failed")
	}
	slots, err := p.Availability(ctx, courseID, day)
	if err != nil {
		return bookingFailure(c, err, "availability failed")
	}
	return ok(c, http.StatusOK, echo.Map{
		"courseId": courseID,
		"date":     day.Format(dateLayout),
		"provider": p.Name(),
		"slots":    slots,
	})
}

type bookingReq struct {
	CourseID string    `json:"courseId"`
	TeeTime  time.Time `json:"teeTime"`
	Players  int       `json:"players"`
	Provider string    `json:"provider"`
}

func (r bookingReq) matches(b *model.Booking) bool {
	return b.CourseID == r.CourseID && b.TeeTime.Equal(r.TeeTime) && b.Players == r.Players
}

// Create handles POST /v1/bookings.  The Idempotency-Key header is
// required: replaying it with the same body returns the stored booking with
// 200, replaying it with another body is a 409.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	key := strings.TrimSpace(c.Request().Header.Get("Idempotency-Key"))
	if key == "" {
		return fail(c, http.StatusBadRequest, "Idempotency-Key header is required")
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	req.CourseID = strings.TrimSpace(req.CourseID)
	switch {
	case req.CourseID == "":
		return fail(c, http.StatusBadRequest, "courseId is required")
	case req.TeeTime.IsZero():
		return fail(c, http.StatusBadRequest, "teeTime is required")
	case req.Players < 1 || req.Players > 4:
		return fail(c, http.StatusBadRequest, "players must be between 1 and 4")
	}

	ctx := c.Request().Context()
	log := zerolog.Ctx(ctx).With().Uint64("user_id", uid).Str("idempotency_key", key).Logger()

	if prev, done, err := h.replay(ctx, uid, key, req); done || err != nil {
		if err != nil {
			return bookingFailure(c, err, "could not load booking")
		}
		if prev == nil {
			return fail(c, http.StatusConflict, "Idempotency-Key already used for a different booking")
		}
		return ok(c, http.StatusOK, prev)
	}

	course, err := h.Courses.GetByID(ctx, req.CourseID)
	if err != nil {
		return bookingFailure(c, err, "could not load course")
	}
	quote, err := h.Prices.QuoteAt(ctx, req.CourseID, req.TeeTime)
	if err != nil {
		return pricingFailure(c, err)
	}
	p, err := h.Providers.Get(req.Provider)
	if err != nil {
		return bookingFailure(c, err, "provider lookup failed")
	}
	conf, err := p.Book(ctx, teesheet.BookRequest{
		CourseID:       req.CourseID,
		TeeTime:        req.TeeTime,
		Players:        req.Players,
		GolferRef:      strconv.FormatUint(uid, 10),
		IdempotencyKey: strconv.FormatUint(uid, 10) + ":" + key,
	})
	if err != nil {
		return bookingFailure(c, err, "booking failed")
	}

	b := &model.Booking{
		CourseID:       req.CourseID,
		UserID:         uid,
		Provider:       conf.Provider,
		ExternalRef:    conf.ExternalRef,
		TeeTime:        conf.TeeTime,
		Players:        conf.Players,
		PriceEach:      quote.MinPrice,
		Total:          math.Round(quote.MinPrice*float64(conf.Players)*100) / 100,
		Currency:       quote.Currency,
		IdempotencyKey: key,
		Status:         model.BookingConfirmed,
		CreatedAt:      h.Now().UTC(),
	}
	if err := h.Bookings.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// A concurrent request with the same key won the insert.
			if prev, _, rerr := h.replay(ctx, uid, key, req); rerr == nil && prev != nil {
				return ok(c, http.StatusOK, prev)
			}
			return fail(c, http.StatusConflict, "Idempotency-Key already used for a different booking")
		}
		log.Error().Err(err).Str("external_ref", conf.ExternalRef).Msg("booking confirmed by provider but not saved")
		return fail(c, http.StatusInternalServerError, "could not save booking")
	}

	ev := queue.BookingConfirmedEvent{
		BookingID:   b.ID,
		UserID:      uid,
		CourseID:    course.ID,
		CourseName:  course.Name,
		Provider:    b.Provider,
		ExternalRef: b.ExternalRef,
		TeeTime:     b.TeeTime.UTC().Format(time.RFC3339),
		Players:     b.Players,
		Total:       b.Total,
		Currency:    b.Currency,
		ConfirmedAt: h.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Events.Publish(ctx, queue.BookingConfirmedQueue, ev); err != nil {
		log.Warn().Err(err).Str("booking_id", b.ID).Msg("publish booking confirmation failed")
	}
	log.Info().Str("booking_id", b.ID).Str("course_id", b.CourseID).Msg("booking confirmed")
	return ok(c, http.StatusCreated, b)
}

// replay looks up an earlier booking made with key.  done is true when the
// key was already used; prev is nil when it was used for another request.
func (h *BookingHandler) replay(ctx context.Context, uid uint64, key string, req bookingReq) (prev *model.Booking, done bool, err error) {
	b, err := h.Bookings.GetByIdempotencyKey(ctx, uid, key)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !req.matches(b) {
		return nil, true, nil
	}
	return b, true, nil
}

// Mine handles GET /v1/my-bookings.
func (h *BookingHandler) Mine(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx := c.Request().Context()
	items, err := h.Bookings.ListByUser(ctx, uid)
	if err != nil {
		return bookingFailure(c, err, "could not list bookings")
	}
	return ok(c, http.StatusOK, items)
}
