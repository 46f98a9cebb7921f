package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/teereserve/golf-booking/internal/model"
)

// BaseProductRepo persists the single base product of each course.
type BaseProductRepo struct {
	db *sql.DB
}

func NewBaseProductRepo(db *sql.DB) *BaseProductRepo { return &BaseProductRepo{db: db} }

// Get returns the base product of a course, or ErrBaseProductUnset.
func (r *BaseProductRepo) Get(ctx context.Context, courseID string) (*model.BaseProduct, error) {
	const q = "SELECT course_id, base_price, currency, updated_at FROM base_products WHERE course_id = ?"
	var p model.BaseProduct
	if err := r.db.QueryRowContext(ctx, q, courseID).Scan(&p.CourseID, &p.BasePrice, &p.Currency, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBaseProductUnset
		}
		return nil, err
	}
	return &p, nil
}

// Save overwrites the base product of p.CourseID wholesale.
func (r *BaseProductRepo) Save(ctx context.Context, p *model.BaseProduct) error {
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = model.DefaultCurrency
	}
	const q = `INSERT INTO base_products (course_id, base_price, currency) VALUES (?, ?, ?)
               ON DUPLICATE KEY UPDATE base_price = VALUES(base_price), currency = VALUES(currency),
               updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.ExecContext(ctx, q, p.CourseID, p.BasePrice, p.Currency); err != nil {
		if isForeignKey(err) {
			return ErrCourseNotFound
		}
		return err
	}
	saved, err := r.Get(ctx, p.CourseID)
	if err != nil {
		return err
	}
	*p = *saved
	return nil
}
