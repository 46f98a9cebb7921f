package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/teereserve/golf-booking/internal/model"
	"github.com/teereserve/golf-booking/internal/pricing"
	"github.com/teereserve/golf-booking/internal/service"
)

// Quoter resolves course prices.  *service.PricingService implements it.
type Quoter interface {
	MinPrice(ctx context.Context, courseID string) (service.Quote, error)
	QuoteAt(ctx context.Context, courseID string, at time.Time) (service.Quote, error)
	Preview(ctx context.Context, courseID string, rules []model.PriceRule, at time.Time) (service.Quote, []pricing.CandidateLine, error)
}

// PricingHandler serves the public price endpoints.
type PricingHandler struct {
	Prices Quoter
	Now    func() time.Time
}

func NewPricingHandler(prices Quoter) *PricingHandler {
	return &PricingHandler{Prices: prices, Now: time.Now}
}

var pricingStatus = map[error]int{
	pricing.ErrValidation:    http.StatusBadRequest,
	pricing.ErrPriceNotFound: http.StatusNotFound,
	context.DeadlineExceeded: http.StatusGatewayTimeout,
}

// pricingFailure writes the envelope for a resolution error.
func pricingFailure(c echo.Context, err error) error {
	status := statusOf(err, pricingStatus)
	switch status {
	case http.StatusInternalServerError:
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("price resolution failed")
		return fail(c, status, "internal error")
	case http.StatusGatewayTimeout:
		return fail(c, status, "timed out")
	}
	return fail(c, status, err.Error())
}

// MinPrice handles GET /pricing/min-price?courseId=...
func (h *PricingHandler) MinPrice(c echo.Context) error {
	q, err := h.Prices.MinPrice(c.Request().Context(), c.QueryParam("courseId"))
	if err != nil {
		return pricingFailure(c, err)
	}
	return ok(c, http.StatusOK, q)
}

type quoteResp struct {
	service.Quote
	At time.Time `json:"at"`
}

// Quote handles GET /v1/pricing/quote?courseId=...&at=RFC3339.
func (h *PricingHandler) Quote(c echo.Context) error {
	at, err := parseInstant(c.QueryParam("at"), h.Now())
	if err != nil {
		return fail(c, http.StatusBadRequest, "at must be an RFC3339 timestamp")
	}
	q, err := h.Prices.QuoteAt(c.Request().Context(), c.QueryParam("courseId"), at)
	if err != nil {
		return pricingFailure(c, err)
	}
	return ok(c, http.StatusOK, quoteResp{Quote: q, At: q.At.UTC()})
}
