package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/teereserve/golf-booking/internal/model"
)

const ruleColumns = `id, course_id, name, price_type, price_value, min_price, max_price, round_to,
    priority, active, effective_from, effective_to, season_id, time_band_id, created_at, updated_at`

// PriceRuleRepo encapsulates queries on the price_rules table.
type PriceRuleRepo struct {
	db *sql.DB
}

func NewPriceRuleRepo(db *sql.DB) *PriceRuleRepo { return &PriceRuleRepo{db: db} }

func scanRule(s rowScanner) (*model.PriceRule, error) {
	var (
		r                      model.PriceRule
		value, lo, hi, roundTo sql.NullFloat64
		from, to               sql.NullTime
		seasonID, timeBandID   sql.NullString
	)
	err := s.Scan(&r.ID, &r.CourseID, &r.Name, &r.PriceType, &value, &lo, &hi, &roundTo,
		&r.Priority, &r.Active, &from, &to, &seasonID, &timeBandID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.PriceValue = floatPtr(value)
	r.MinPrice = floatPtr(lo)
	r.MaxPrice = floatPtr(hi)
	r.RoundTo = floatPtr(roundTo)
	r.EffectiveFrom = timePtr(from)
	r.EffectiveTo = timePtr(to)
	r.SeasonID = stringPtr(seasonID)
	r.TimeBandID = stringPtr(timeBandID)
	return &r, nil
}

func (r *PriceRuleRepo) list(ctx context.Context, q string, args ...any) ([]model.PriceRule, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.PriceRule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rule)
	}
	return out, rows.Err()
}

// ListByCourse returns every rule of a course, active or not, highest
// priority first.
func (r *PriceRuleRepo) ListByCourse(ctx context.Context, courseID string) ([]model.PriceRule, error) {
	return r.list(ctx, "SELECT "+ruleColumns+" FROM price_rules WHERE course_id = ? ORDER BY priority DESC, name", courseID)
}

// ListActive returns the active rules of a course.  Effective windows are
// left to the resolver so a single read serves any instant.
func (r *PriceRuleRepo) ListActive(ctx context.Context, courseID string) ([]model.PriceRule, error) {
	return r.list(ctx, "SELECT "+ruleColumns+" FROM price_rules WHERE course_id = ? AND active = 1 ORDER BY priority DESC, name", courseID)
}

// GetByID fetches a rule or returns ErrRuleNotFound.
func (r *PriceRuleRepo) GetByID(ctx context.Context, id string) (*model.PriceRule, error) {
	rule, err := scanRule(r.db.QueryRowContext(ctx, "SELECT "+ruleColumns+" FROM price_rules WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return rule, nil
}

// Create inserts a rule and reads it back.
func (r *PriceRuleRepo) Create(ctx context.Context, rule *model.PriceRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	const q = `INSERT INTO price_rules (id, course_id, name, price_type, price_value, min_price, max_price,
               round_to, priority, active, effective_from, effective_to, season_id, time_band_id)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, rule.ID, rule.CourseID, rule.Name, rule.PriceType,
		nullable(rule.PriceValue), nullable(rule.MinPrice), nullable(rule.MaxPrice), nullable(rule.RoundTo),
		rule.Priority, rule.Active, nullable(rule.EffectiveFrom), nullable(rule.EffectiveTo),
		nullable(rule.SeasonID), nullable(rule.TimeBandID))
	if err != nil {
		if isForeignKey(err) {
			return ErrCourseNotFound
		}
		return err
	}
	created, err := r.GetByID(ctx, rule.ID)
	if err != nil {
		return err
	}
	*rule = *created
	return nil
}

// Update overwrites every mutable column of rule.
func (r *PriceRuleRepo) Update(ctx context.Context, rule *model.PriceRule) error {
	const q = `UPDATE price_rules SET name = ?, price_type = ?, price_value = ?, min_price = ?, max_price = ?,
               round_to = ?, priority = ?, active = ?, effective_from = ?, effective_to = ?, season_id = ?,
               time_band_id = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, rule.Name, rule.PriceType,
		nullable(rule.PriceValue), nullable(rule.MinPrice), nullable(rule.MaxPrice), nullable(rule.RoundTo),
		rule.Priority, rule.Active, nullable(rule.EffectiveFrom), nullable(rule.EffectiveTo),
		nullable(rule.SeasonID), nullable(rule.TimeBandID), rule.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, rule.ID); err != nil {
			return err
		}
	}
	updated, err := r.GetByID(ctx, rule.ID)
	if err != nil {
		return err
	}
	*rule = *updated
	return nil
}

// SetActive toggles a rule.  Deactivating is the soft delete.
func (r *PriceRuleRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE price_rules SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err := r.GetByID(ctx, id)
		return err
	}
	return nil
}

// Delete removes a rule permanently.
func (r *PriceRuleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM price_rules WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRuleNotFound
	}
	return nil
}
