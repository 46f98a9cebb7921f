package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teereserve/golf-booking/internal/middleware"
	"github.com/teereserve/golf-booking/internal/model"
	"github.com/teereserve/golf-booking/internal/queue"
	"github.com/teereserve/golf-booking/internal/repository"
	"github.com/teereserve/golf-booking/internal/service"
	"github.com/teereserve/golf-booking/internal/teesheet"
)

// memBookings is an in-memory BookingStore keyed like the unique index.
type memBookings struct {
	mu   sync.Mutex
	byID map[string]*model.Booking
	n    int
}

func newMemBookings() *memBookings { return &memBookings{byID: map[string]*model.Booking{}} }

func memKey(uid uint64, key string) string { return fmt.Sprintf("%d|%s", uid, key) }

func (m *memBookings) Create(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey(b.UserID, b.IdempotencyKey)
	if _, ok := m.byID[k]; ok {
		return repository.ErrConflict
	}
	m.n++
	b.ID = fmt.Sprintf("booking-%d", m.n)
	cp := *b
	m.byID[k] = &cp
	return nil
}

func (m *memBookings) GetByIdempotencyKey(_ context.Context, uid uint64, key string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[memKey(uid, key)]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBookings) ListByUser(_ context.Context, uid uint64) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Booking{}
	for _, b := range m.byID {
		if b.UserID == uid {
			out = append(out, *b)
		}
	}
	return out, nil
}

var teeTime = time.Date(2026, 7, 4, 8, 0, 0, 0, time.UTC)

type bookingFixture struct {
	h      *BookingHandler
	store  *memBookings
	events *recordingPublisher
}

func newBookingFixture() bookingFixture {
	courses := new(mockCourses)
	courses.On("GetByID", mock.Anything, "pebble").Return(&model.Course{ID: "pebble", Name: "Pebble Beach", Currency: "USD"}, nil)
	courses.On("GetByID", mock.Anything, mock.Anything).Return(nil, repository.ErrCourseNotFound)

	q := new(mockQuoter)
	q.On("QuoteAt", mock.Anything, "pebble", mock.Anything).
		Return(service.Quote{CourseID: "pebble", Currency: "USD", MinPrice: 85.5}, nil)

	store := newMemBookings()
	events := &recordingPublisher{}
	h := NewBookingHandler(courses, q, teesheet.NewRegistry(teesheet.NewMockProvider()), store, events)
	h.Now = func() time.Time { return teeTime.Add(-48 * time.Hour) }
	return bookingFixture{h: h, store: store, events: events}
}

func (f bookingFixture) post(t *testing.T, uid uint64, key, body string) (int, envelope) {
	t.Helper()
	c, rec := newContext(http.MethodPost, "/v1/bookings", body)
	if key != "" {
		c.Request().Header.Set("Idempotency-Key", key)
	}
	if uid != 0 {
		c.Set(middleware.CtxUserID, uid)
	}
	require.NoError(t, f.h.Create(c))
	return rec.Code, decode(t, rec)
}

const twoPlayers = `{"courseId":"pebble","teeTime":"2026-07-04T08:00:00Z","players":2}`

func TestCreateBooking(t *testing.T) {
	f := newBookingFixture()

	status, env := f.post(t, 7, "k1", twoPlayers)
	require.Equal(t, http.StatusCreated, status, env.Error)

	var b model.Booking
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Equal(t, "mock", b.Provider)
	assert.Equal(t, 85.5, b.PriceEach)
	assert.Equal(t, 171.0, b.Total)
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.NotEmpty(t, b.ExternalRef)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, queue.BookingConfirmedQueue, f.events.queues[0])
	ev := f.events.events[0].(queue.BookingConfirmedEvent)
	assert.Equal(t, "Pebble Beach", ev.CourseName)
	assert.Equal(t, b.ID, ev.BookingID)
}

func TestCreateBooking_ReplaySameRequest(t *testing.T) {
	f := newBookingFixture()

	status, first := f.post(t, 7, "k1", twoPlayers)
	require.Equal(t, http.StatusCreated, status)
	status, second := f.post(t, 7, "k1", twoPlayers)
	require.Equal(t, http.StatusOK, status)

	var a, b model.Booking
	require.NoError(t, json.Unmarshal(first.Data, &a))
	require.NoError(t, json.Unmarshal(second.Data, &b))
	assert.Equal(t, a.ID, b.ID)
	assert.Len(t, f.events.events, 1)
}

func TestCreateBooking_ReplayDifferentRequest(t *testing.T) {
	f := newBookingFixture()

	status, _ := f.post(t, 7, "k1", twoPlayers)
	require.Equal(t, http.StatusCreated, status)
	status, env := f.post(t, 7, "k1", `{"courseId":"pebble","teeTime":"2026-07-04T08:00:00Z","players":3}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.OK)
}

func TestCreateBooking_Rejects(t *testing.T) {
	f := newBookingFixture()

	cases := []struct {
		name   string
		uid    uint64
		key    string
		body   string
		status int
	}{
		{"anonymous", 0, "k", twoPlayers, http.StatusUnauthorized},
		{"no key", 7, "", twoPlayers, http.StatusBadRequest},
		{"too many players", 7, "k2", `{"courseId":"pebble","teeTime":"2026-07-04T08:00:00Z","players":5}`, http.StatusBadRequest},
		{"unknown course", 7, "k3", `{"courseId":"ghost","teeTime":"2026-07-04T08:00:00Z","players":1}`, http.StatusNotFound},
		{"off the sheet", 7, "k4", `{"courseId":"pebble","teeTime":"2026-07-04T08:05:00Z","players":1}`, http.StatusConflict},
		{"unknown provider", 7, "k5", `{"courseId":"pebble","teeTime":"2026-07-04T08:00:00Z","players":1,"provider":"golfnow"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, env := f.post(t, tc.uid, tc.key, tc.body)
			assert.Equal(t, tc.status, status, env.Error)
			assert.False(t, env.OK)
		})
	}
	assert.Empty(t, f.events.events)
}

func TestTeeTimes(t *testing.T) {
	f := newBookingFixture()
	c, rec := newContext(http.MethodGet, "/v1/tee-times?courseId=pebble&date=2026-07-04", "")
	require.NoError(t, f.h.TeeTimes(c))

	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Provider string          `json:"provider"`
		Slots    []teesheet.Slot `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	assert.Equal(t, "mock", data.Provider)
	require.NotEmpty(t, data.Slots)
	assert.True(t, time.Date(2026, 7, 4, 6, 0, 0, 0, time.UTC).Equal(data.Slots[0].TeeTime))
}
