package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/teereserve/golf-booking/internal/model"
	"github.com/teereserve/golf-booking/internal/pricing"
)

// RuleStore is the read-only data source behind price resolution.  Missing
// records come back as nil values with a nil error.
type RuleStore interface {
	GetBaseProduct(ctx context.Context, courseID string) (*model.BaseProduct, error)
	ListActiveRules(ctx context.Context, courseID string) ([]model.PriceRule, error)
	GetCourseFallbackPrice(ctx context.Context, courseID string) (*float64, string, error)
}

// Quote is a resolved price for a course at an instant.
type Quote struct {
	CourseID string    `json:"courseId"`
	Currency string    `json:"currency"`
	MinPrice float64   `json:"minPrice"`
	At       time.Time `json:"-"`
}

// PricingService resolves course prices from the rule store.
type PricingService struct {
	store RuleStore
	clock func() time.Time
}

// NewPricingService returns a service reading from store and using the wall
// clock.
func NewPricingService(store RuleStore) *PricingService {
	return &PricingService{store: store, clock: time.Now}
}

// WithClock replaces the clock; intended for tests and the CLI.
func (s *PricingService) WithClock(clock func() time.Time) *PricingService {
	s.clock = clock
	return s
}

// MinPrice resolves the "starting from" price of a course right now.
func (s *PricingService) MinPrice(ctx context.Context, courseID string) (Quote, error) {
	return s.QuoteAt(ctx, courseID, s.clock())
}

// QuoteAt resolves the price of a course at the given instant.
func (s *PricingService) QuoteAt(ctx context.Context, courseID string, at time.Time) (Quote, error) {
	in, err := s.load(ctx, courseID)
	if err != nil {
		return Quote{}, err
	}
	return in.quote(at), nil
}

// Preview quotes a course at the given instant and reports the candidate of
// every rule passed in, applicable or not.  Admin screens pass the full
// rule list, inactive rules included.
func (s *PricingService) Preview(ctx context.Context, courseID string, rules []model.PriceRule, at time.Time) (Quote, []pricing.CandidateLine, error) {
	in, err := s.load(ctx, courseID)
	if err != nil {
		return Quote{}, nil, err
	}
	return in.quote(at), pricing.Breakdown(in.base, rules, at), nil
}

// inputs is everything resolution needs, fetched once.
type inputs struct {
	courseID string
	base     float64
	currency string
	rules    []model.PriceRule
}

func (in inputs) quote(at time.Time) Quote {
	return Quote{
		CourseID: in.courseID,
		Currency: in.currency,
		MinPrice: pricing.ResolveMinPrice(in.base, in.rules, at),
		At:       at,
	}
}

// load runs the three store reads concurrently.  A failed base product or
// course read counts as absent and a failed rule read degrades to "no rules
// apply"; only a missing base price is an error.
func (s *PricingService) load(ctx context.Context, courseID string) (inputs, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return inputs{}, pricing.ErrValidation
	}
	log := zerolog.Ctx(ctx).With().Str("course_id", courseID).Logger()

	var (
		product        *model.BaseProduct
		fallback       *float64
		courseCurrency string
		rules          []model.PriceRule
	)

	// Every goroutine returns nil so one failure never cancels the others.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.store.GetBaseProduct(gctx, courseID)
		if err != nil {
			log.Warn().Err(&pricing.UpstreamReadError{Op: "get base product", Err: err}).Msg("treating base product as absent")
			return nil
		}
		product = p
		return nil
	})
	g.Go(func() error {
		price, currency, err := s.store.GetCourseFallbackPrice(gctx, courseID)
		if err != nil {
			log.Warn().Err(&pricing.UpstreamReadError{Op: "get course price", Err: err}).Msg("treating course price as absent")
			return nil
		}
		fallback, courseCurrency = price, currency
		return nil
	})
	g.Go(func() error {
		rs, err := s.store.ListActiveRules(gctx, courseID)
		if err != nil {
			log.Warn().Err(&pricing.UpstreamReadError{Op: "list rules", Err: err}).Msg("resolving without rules")
			return nil
		}
		rules = rs
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return inputs{}, err
	}

	in := inputs{courseID: courseID, rules: rules}
	switch {
	case product != nil:
		in.base, in.currency = product.BasePrice, product.Currency
	case fallback != nil:
		in.base, in.currency = *fallback, courseCurrency
	default:
		return inputs{}, pricing.ErrPriceNotFound
	}
	if in.currency == "" {
		in.currency = model.DefaultCurrency
	}
	return in, nil
}
