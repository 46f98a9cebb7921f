package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/teereserve/golf-booking/internal/model"
)

const courseColumns = "id, name, base_price, currency, created_at, updated_at"

// CourseRepo encapsulates all queries related to courses.
type CourseRepo struct {
	db *sql.DB
}

// NewCourseRepo constructs a CourseRepo with the provided DB handle.
func NewCourseRepo(db *sql.DB) *CourseRepo {
	return &CourseRepo{db: db}
}

func scanCourse(s rowScanner) (*model.Course, error) {
	var (
		c    model.Course
		base sql.NullFloat64
	)
	if err := s.Scan(&c.ID, &c.Name, &base, &c.Currency, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.BasePrice = floatPtr(base)
	return &c, nil
}

// Create inserts a new course.  A UUID is assigned when c.ID is empty and
// the row is read back so timestamps are populated.
func (r *CourseRepo) Create(ctx context.Context, c *model.Course) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	if c.Currency == "" {
		c.Currency = model.DefaultCurrency
	}
	const q = "INSERT INTO courses (id, name, base_price, currency) VALUES (?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, q, c.ID, c.Name, nullable(c.BasePrice), c.Currency); err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	created, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *created
	return nil
}

// GetByID fetches a course.  ErrCourseNotFound is returned when no row matches.
func (r *CourseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	c, err := scanCourse(r.db.QueryRowContext(ctx, "SELECT "+courseColumns+" FROM courses WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns all courses ordered by name.
func (r *CourseRepo) List(ctx context.Context) ([]*model.Course, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+courseColumns+" FROM courses ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update overwrites name, base price and currency.
func (r *CourseRepo) Update(ctx context.Context, c *model.Course) error {
	const q = `UPDATE courses
               SET name = ?, base_price = ?, currency = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, c.Name, nullable(c.BasePrice), c.Currency, c.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 affected rows for no-op updates too.
		if _, err := r.GetByID(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a course together with its pricing data inside a
// transaction.  Bookings are kept for history.
func (r *CourseRepo) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	for _, q := range []string{
		"DELETE FROM price_rules WHERE course_id = ?",
		"DELETE FROM base_products WHERE course_id = ?",
		"DELETE FROM seasons WHERE course_id = ?",
		"DELETE FROM time_bands WHERE course_id = ?",
	} {
		if _, err = tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM courses WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCourseNotFound
	}
	return nil
}
