// Package queue defines the events exchanged over RabbitMQ and the
// background consumer that turns them into admin alerts.
package queue

// Queue names.  Both are durable and use the default exchange.
const (
	BookingConfirmedQueue = "booking.confirmed"
	RuleChangedQueue      = "pricing.rule_changed"
)

// Rule change actions.
const (
	ActionCreated     = "created"
	ActionUpdated     = "updated"
	ActionActivated   = "activated"
	ActionDeactivated = "deactivated"
	ActionDeleted     = "deleted"
)

// BookingConfirmedEvent is published when a tee time is booked.  It carries
// enough for the alert consumer to log it without querying the database.
type BookingConfirmedEvent struct {
	BookingID   string  `json:"booking_id"`
	UserID      uint64  `json:"user_id"`
	CourseID    string  `json:"course_id"`
	CourseName  string  `json:"course_name"`
	Provider    string  `json:"provider"`
	ExternalRef string  `json:"external_ref"`
	TeeTime     string  `json:"tee_time"`
	Players     int     `json:"players"`
	Total       float64 `json:"total"`
	Currency    string  `json:"currency"`
	ConfirmedAt string  `json:"confirmed_at"`
}

// PriceRuleChangedEvent is published on every admin write to a price rule.
type PriceRuleChangedEvent struct {
	Action     string   `json:"action"`
	RuleID     string   `json:"rule_id"`
	CourseID   string   `json:"course_id"`
	Name       string   `json:"name"`
	PriceType  string   `json:"price_type"`
	PriceValue *float64 `json:"price_value,omitempty"`
	Active     bool     `json:"active"`
	ActorID    uint64   `json:"actor_id"`
	OccurredAt string   `json:"occurred_at"`
}
