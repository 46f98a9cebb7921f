package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teereserve/golf-booking/internal/model"
)

var bookingCols = []string{"id", "course_id", "user_id", "provider", "external_ref", "tee_time", "players",
	"price_each", "total", "currency", "idempotency_key", "status", "created_at"}

func TestBookingRepo_Create_AssignsIDAndStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tee := time.Date(2026, 7, 4, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(sqlmock.AnyArg(), "pebble", uint64(7), "mock", "MOCK-1", tee, 2, 85.5, 171.0, "USD", "k1", model.BookingConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	b := &model.Booking{CourseID: "pebble", UserID: 7, Provider: "mock", ExternalRef: "MOCK-1", TeeTime: tee,
		Players: 2, PriceEach: 85.5, Total: 171, Currency: "USD", IdempotencyKey: "k1"}
	require.NoError(t, NewBookingRepo(db).Create(context.Background(), b))
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_Create_DuplicateKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err = NewBookingRepo(db).Create(context.Background(), &model.Booking{CourseID: "pebble", UserID: 7, IdempotencyKey: "k1"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestBookingRepo_GetByIdempotencyKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tee := time.Date(2026, 7, 4, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM bookings WHERE user_id = \\? AND idempotency_key = \\?").
		WithArgs(uint64(7), "k1").
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow("b1", "pebble", 7, "mock", "MOCK-1", tee, 2, 85.5, 171.0, "USD", "k1", "CONFIRMED", stamp))
	mock.ExpectQuery("FROM bookings WHERE user_id = \\? AND idempotency_key = \\?").
		WithArgs(uint64(7), "k2").
		WillReturnRows(sqlmock.NewRows(bookingCols))

	repo := NewBookingRepo(db)
	b, err := repo.GetByIdempotencyKey(context.Background(), 7, "k1")
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, uint64(7), b.UserID)
	assert.True(t, b.TeeTime.Equal(tee))

	_, err = repo.GetByIdempotencyKey(context.Background(), 7, "k2")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
