// Package teesheet is the thin integration layer over tee-sheet providers.
// Each provider exposes availability for a course on a day and accepts
// bookings keyed by a client idempotency key.
package teesheet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	ErrUnknownProvider     = errors.New("unknown tee-sheet provider")
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")
	ErrSlotUnavailable     = errors.New("tee time unavailable")
	ErrInvalidRequest      = errors.New("invalid booking request")
)

// Slot is one bookable tee time.
type Slot struct {
	TeeTime   time.Time `json:"teeTime"`
	Capacity  int       `json:"capacity"`
	Available int       `json:"available"`
}

// BookRequest is what a provider needs to book a tee time.
type BookRequest struct {
	CourseID       string
	TeeTime        time.Time
	Players        int
	GolferRef      string
	IdempotencyKey string
}

// Confirmation is the provider's answer to a successful booking.
type Confirmation struct {
	Provider    string    `json:"provider"`
	ExternalRef string    `json:"externalRef"`
	TeeTime     time.Time `json:"teeTime"`
	Players     int       `json:"players"`
	BookedAt    time.Time `json:"bookedAt"`
}

// Provider is implemented by each tee-sheet integration.
type Provider interface {
	Name() string
	Availability(ctx context.Context, courseID string, day time.Time) ([]Slot, error)
	Book(ctx context.Context, req BookRequest) (Confirmation, error)
}

// Registry maps provider names to implementations.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	def       string
}

// NewRegistry registers providers; the first one becomes the default.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a provider.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.def == "" {
		r.def = p.Name()
	}
	r.providers[p.Name()] = p
}

// Get returns the named provider, or the default one when name is empty.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.def
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names lists registered providers in alphabetical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.providers))
	for n := range r.providers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
