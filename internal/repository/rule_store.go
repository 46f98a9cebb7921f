package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/teereserve/golf-booking/internal/model"
)

// RuleStore is the read side the pricing service depends on.  Missing
// records are reported as (nil, nil) so the service can walk its fallback
// chain; only real failures come back as errors.
type RuleStore struct {
	Courses  *CourseRepo
	Products *BaseProductRepo
	Rules    *PriceRuleRepo
}

// NewRuleStore wires the three repositories over one DB handle.
func NewRuleStore(db *sql.DB) *RuleStore {
	return &RuleStore{
		Courses:  NewCourseRepo(db),
		Products: NewBaseProductRepo(db),
		Rules:    NewPriceRuleRepo(db),
	}
}

func (s *RuleStore) GetBaseProduct(ctx context.Context, courseID string) (*model.BaseProduct, error) {
	p, err := s.Products.Get(ctx, courseID)
	if errors.Is(err, ErrBaseProductUnset) {
		return nil, nil
	}
	return p, err
}

func (s *RuleStore) ListActiveRules(ctx context.Context, courseID string) ([]model.PriceRule, error) {
	return s.Rules.ListActive(ctx, courseID)
}

// GetCourseFallbackPrice returns the course's flat base price and currency.
func (s *RuleStore) GetCourseFallbackPrice(ctx context.Context, courseID string) (*float64, string, error) {
	c, err := s.Courses.GetByID(ctx, courseID)
	if errors.Is(err, ErrCourseNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return c.BasePrice, c.Currency, nil
}
