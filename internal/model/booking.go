package model

import "time"

// Booking statuses.
const (
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// Booking records a tee time booked through a tee-sheet provider.
//
// Fields:
//  ID             – UUID primary key.
//  CourseID       – course the tee time belongs to.
//  UserID         – golfer who booked.
//  Provider       – tee-sheet provider name that accepted the booking.
//  ExternalRef    – provider-side confirmation reference.
//  TeeTime        – start of the tee time (UTC).
//  Players        – number of players.
//  PriceEach      – quoted per-player price at booking time.
//  Total          – PriceEach * Players.
//  Currency       – currency of the quote.
//  IdempotencyKey – client supplied key; unique per user.
//  Status         – CONFIRMED or CANCELLED.
//  CreatedAt      – creation timestamp.
type Booking struct {
	ID             string    `json:"id"`
	CourseID       string    `json:"courseId"`
	UserID         uint64    `json:"userId"`
	Provider       string    `json:"provider"`
	ExternalRef    string    `json:"externalRef"`
	TeeTime        time.Time `json:"teeTime"`
	Players        int       `json:"players"`
	PriceEach      float64   `json:"priceEach"`
	Total          float64   `json:"total"`
	Currency       string    `json:"currency"`
	IdempotencyKey string    `json:"idempotencyKey"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}
