package model

import "time"

// Course represents a golf course whose tee times can be booked.
//
// Fields:
//  ID        – UUID primary key.
//  Name      – display name, unique.
//  BasePrice – flat fallback price used when no base product has been
//              saved for the course (nullable).
//  Currency  – ISO currency code of BasePrice.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Course struct {
	ID        string    `json:"id"`                   // courses.id
	Name      string    `json:"name"`                 // courses.name
	BasePrice *float64  `json:"basePrice,omitempty"`  // courses.base_price (nullable)
	Currency  string    `json:"currency"`             // courses.currency
	CreatedAt time.Time `json:"createdAt"`            // courses.created_at
	UpdatedAt time.Time `json:"updatedAt"`            // courses.updated_at
}
