package model

import "time"

// Price rule types.  Any other value stored in price_rules.price_type is
// treated as unknown by the resolver and yields the base price.
const (
	PriceTypeFixed      = "fixed"
	PriceTypeDelta      = "delta"
	PriceTypeMultiplier = "multiplier"
)

// DefaultCurrency is reported when neither the base product nor the course
// carries a currency.
const DefaultCurrency = "USD"

// BaseProduct holds the undiscounted default price of a course's tee time.
// There is at most one per course; saving it again overwrites the row.
type BaseProduct struct {
	CourseID  string    `json:"courseId"`  // base_products.course_id
	BasePrice float64   `json:"basePrice"` // base_products.base_price
	Currency  string    `json:"currency"`  // base_products.currency
	UpdatedAt time.Time `json:"updatedAt"` // base_products.updated_at
}

// PriceRule describes how to derive a candidate price from the base price.
//
// Fields:
//  PriceType     – fixed, delta or multiplier.
//  PriceValue    – override, additive delta or factor depending on type.
//                  Nil means the stored value was not a number.
//  MinPrice      – optional lower clamp applied to the candidate.
//  MaxPrice      – optional upper clamp applied to the candidate.
//  RoundTo       – optional rounding step (ignored unless > 0).
//  Priority      – stored and returned; not used when resolving prices.
//  Active        – inactive rules never affect a price.
//  EffectiveFrom – optional start of the validity window (inclusive).
//  EffectiveTo   – optional end of the validity window (inclusive).
//  SeasonID      – optional season label.
//  TimeBandID    – optional time band label.
type PriceRule struct {
	ID            string     `json:"id"`
	CourseID      string     `json:"courseId"`
	Name          string     `json:"name"`
	PriceType     string     `json:"priceType"`
	PriceValue    *float64   `json:"priceValue"`
	MinPrice      *float64   `json:"minPrice,omitempty"`
	MaxPrice      *float64   `json:"maxPrice,omitempty"`
	RoundTo       *float64   `json:"roundTo,omitempty"`
	Priority      int        `json:"priority"`
	Active        bool       `json:"active"`
	EffectiveFrom *time.Time `json:"effectiveFrom,omitempty"`
	EffectiveTo   *time.Time `json:"effectiveTo,omitempty"`
	SeasonID      *string    `json:"seasonId,omitempty"`
	TimeBandID    *string    `json:"timeBandId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
