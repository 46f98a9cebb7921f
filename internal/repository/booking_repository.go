package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/teereserve/golf-booking/internal/model"
)

const bookingColumns = `id, course_id, user_id, provider, external_ref, tee_time, players, price_each,
    total, currency, idempotency_key, status, created_at`

// BookingRepo persists tee-time bookings.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

func scanBooking(s rowScanner) (*model.Booking, error) {
	var b model.Booking
	err := s.Scan(&b.ID, &b.CourseID, &b.UserID, &b.Provider, &b.ExternalRef, &b.TeeTime, &b.Players,
		&b.PriceEach, &b.Total, &b.Currency, &b.IdempotencyKey, &b.Status, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a booking.  (user_id, idempotency_key) is unique, so a
// replayed request surfaces as ErrConflict.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = model.BookingConfirmed
	}
	const q = `INSERT INTO bookings (id, course_id, user_id, provider, external_ref, tee_time, players,
               price_each, total, currency, idempotency_key, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, b.ID, b.CourseID, b.UserID, b.Provider, b.ExternalRef, b.TeeTime.UTC(),
		b.Players, b.PriceEach, b.Total, b.Currency, b.IdempotencyKey, b.Status)
	switch {
	case isDuplicate(err):
		return ErrConflict
	case isForeignKey(err):
		return ErrCourseNotFound
	}
	return err
}

// GetByIdempotencyKey finds the booking a user already made with key.
func (r *BookingRepo) GetByIdempotencyKey(ctx context.Context, userID uint64, key string) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE user_id = ? AND idempotency_key = ?", userID, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// ListByUser returns a user's bookings, most recent tee time first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE user_id = ? ORDER BY tee_time DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}
