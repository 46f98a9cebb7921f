package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/teereserve/golf-booking/internal/model"
)

// CalendarRepo manages the season and time band labels of courses.
type CalendarRepo struct {
	db *sql.DB
}

func NewCalendarRepo(db *sql.DB) *CalendarRepo { return &CalendarRepo{db: db} }

// ListSeasons returns the seasons of a course ordered by start date.
func (r *CalendarRepo) ListSeasons(ctx context.Context, courseID string) ([]model.Season, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, course_id, name, start_date, end_date FROM seasons WHERE course_id = ? ORDER BY start_date",
		courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Season{}
	for rows.Next() {
		var s model.Season
		if err := rows.Scan(&s.ID, &s.CourseID, &s.Name, &s.StartDate, &s.EndDate); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateSeason inserts a season, assigning an id when missing.
func (r *CalendarRepo) CreateSeason(ctx context.Context, s *model.Season) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO seasons (id, course_id, name, start_date, end_date) VALUES (?, ?, ?, ?, ?)",
		s.ID, s.CourseID, s.Name, s.StartDate, s.EndDate)
	if isForeignKey(err) {
		return ErrCourseNotFound
	}
	return err
}

// DeleteSeason removes a season.  Rules keep their dangling label.
func (r *CalendarRepo) DeleteSeason(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM seasons WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSeasonNotFound
	}
	return nil
}

// ListTimeBands returns the time bands of a course ordered by start time.
func (r *CalendarRepo) ListTimeBands(ctx context.Context, courseID string) ([]model.TimeBand, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, course_id, name, start_time, end_time FROM time_bands WHERE course_id = ? ORDER BY start_time",
		courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.TimeBand{}
	for rows.Next() {
		var b model.TimeBand
		if err := rows.Scan(&b.ID, &b.CourseID, &b.Name, &b.StartTime, &b.EndTime); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CreateTimeBand inserts a time band, assigning an id when missing.
func (r *CalendarRepo) CreateTimeBand(ctx context.Context, b *model.TimeBand) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO time_bands (id, course_id, name, start_time, end_time) VALUES (?, ?, ?, ?, ?)",
		b.ID, b.CourseID, b.Name, b.StartTime, b.EndTime)
	if isForeignKey(err) {
		return ErrCourseNotFound
	}
	return err
}

// DeleteTimeBand removes a time band.
func (r *CalendarRepo) DeleteTimeBand(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM time_bands WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTimeBandNotFound
	}
	return nil
}
