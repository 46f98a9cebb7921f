package teesheet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockProvider is an in-memory tee sheet.  It serves fixed-interval slots
// between Open and Close each day and remembers bookings by idempotency key.
// A literal MockProvider is usable; a zero Interval means ten minutes.
type MockProvider struct {
	Open     time.Duration // offset from midnight of the first tee time
	Close    time.Duration // offset from midnight after which no slot starts
	Interval time.Duration // defaultInterval when not positive
	Capacity int           // players per slot

	mu     sync.Mutex
	booked map[string]int         // courseID|teeTime -> players
	byKey  map[string]mockBooking // idempotency key -> booking
	clock  func() time.Time
}

const defaultInterval = 10 * time.Minute

type mockBooking struct {
	req  BookRequest
	conf Confirmation
}

// NewMockProvider returns a tee sheet open 06:00–18:00 with ten minute
// intervals and foursomes.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Open:     6 * time.Hour,
		Close:    18 * time.Hour,
		Interval: defaultInterval,
		Capacity: 4,
		booked:   map[string]int{},
		byKey:    map[string]mockBooking{},
		clock:    time.Now,
	}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) step() time.Duration {
	if m.Interval <= 0 {
		return defaultInterval
	}
	return m.Interval
}

// Availability lists the slots of day (in day's location) with the player places
// left in each.
func (m *MockProvider) Availability(_ context.Context, courseID string, day time.Time) ([]Slot, error) {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Slot
	step := m.step()
	for off := m.Open; off < m.Close; off += step {
		t := midnight.Add(off)
		out = append(out, Slot{
			TeeTime:   t.UTC(),
			Capacity:  m.Capacity,
			Available: m.Capacity - m.booked[slotKey(courseID, t)],
		})
	}
	return out, nil
}

// Book reserves players on a slot.  Replaying an idempotency key with the
// same request returns the original confirmation; replaying it with a
// different request fails with ErrIdempotencyConflict.
func (m *MockProvider) Book(_ context.Context, req BookRequest) (Confirmation, error) {
	if req.IdempotencyKey == "" || req.CourseID == "" || req.Players < 1 {
		return Confirmation{}, ErrInvalidRequest
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.booked == nil {
		m.booked = map[string]int{}
		m.byKey = map[string]mockBooking{}
	}
	if prev, ok := m.byKey[req.IdempotencyKey]; ok {
		if !sameRequest(prev.req, req) {
			return Confirmation{}, ErrIdempotencyConflict
		}
		return prev.conf, nil
	}

	if !m.onSheet(req.TeeTime) {
		return Confirmation{}, fmt.Errorf("%w: %s is not on the sheet", ErrSlotUnavailable, req.TeeTime.Format(time.RFC3339))
	}
	key := slotKey(req.CourseID, req.TeeTime)
	if m.booked[key]+req.Players > m.Capacity {
		return Confirmation{}, ErrSlotUnavailable
	}
	m.booked[key] += req.Players

	conf := Confirmation{
		Provider:    m.Name(),
		ExternalRef: "MOCK-" + uuid.NewString()[:8],
		TeeTime:     req.TeeTime.UTC(),
		Players:     req.Players,
		BookedAt:    m.now().UTC(),
	}
	m.byKey[req.IdempotencyKey] = mockBooking{req: req, conf: conf}
	return conf, nil
}

// onSheet reports whether t falls exactly on a slot boundary.
func (m *MockProvider) onSheet(t time.Time) bool {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	off := t.Sub(midnight)
	return off >= m.Open && off < m.Close && (off-m.Open)%m.step() == 0
}

func (m *MockProvider) now() time.Time {
	if m.clock == nil {
		return time.Now()
	}
	return m.clock()
}

func sameRequest(a, b BookRequest) bool {
	return a.CourseID == b.CourseID && a.TeeTime.Equal(b.TeeTime) && a.Players == b.Players && a.GolferRef == b.GolferRef
}

func slotKey(courseID string, t time.Time) string {
	return courseID + "|" + t.UTC().Format(time.RFC3339)
}
