// Package pricing resolves the "starting from" price of a course from its
// base price and its price rules.  Everything in this package is pure: the
// caller fetches the data and supplies the clock.
package pricing

import (
	"math"
	"time"

	"github.com/teereserve/golf-booking/internal/model"
)

// ResolveMinPrice returns the cheapest price bookable at now.  Each applicable
// rule is evaluated against basePrice in isolation and the minimum over the
// base price and all candidates wins, so the order of rules is irrelevant.
// The result is never negative.
func ResolveMinPrice(basePrice float64, rules []model.PriceRule, now time.Time) float64 {
	minPrice := basePrice
	for i := range rules {
		if !Applies(rules[i], now) {
			continue
		}
		if c := Candidate(basePrice, rules[i]); c < minPrice {
			minPrice = c
		}
	}
	return math.Max(0, minPrice)
}

// Applies reports whether r is active and now falls inside its effective
// window.  Both window bounds are inclusive.  Season and time band labels
// are not consulted.
func Applies(r model.PriceRule, now time.Time) bool {
	if !r.Active {
		return false
	}
	if r.EffectiveFrom != nil && now.Before(*r.EffectiveFrom) {
		return false
	}
	if r.EffectiveTo != nil && now.After(*r.EffectiveTo) {
		return false
	}
	return true
}

// Candidate computes the price r produces on its own, after clamping and
// rounding.
func Candidate(basePrice float64, r model.PriceRule) float64 {
	v, valid := number(r.PriceValue)

	var c float64
	switch r.PriceType {
	case model.PriceTypeFixed:
		c = basePrice
		if valid {
			c = v
		}
	case model.PriceTypeDelta:
		if !valid {
			v = 0
		}
		c = basePrice + v
	case model.PriceTypeMultiplier:
		if !valid {
			v = 1
		}
		c = basePrice * v
	default:
		c = basePrice
	}

	if lo, ok := number(r.MinPrice); ok {
		c = math.Max(c, lo)
	}
	if hi, ok := number(r.MaxPrice); ok {
		c = math.Min(c, hi)
	}
	if step, ok := number(r.RoundTo); ok && step > 0 {
		c = math.Round(c/step) * step
	}
	return c
}

// CandidateLine is one row of a Breakdown.
type CandidateLine struct {
	RuleID    string  `json:"ruleId"`
	Name      string  `json:"name"`
	PriceType string  `json:"priceType"`
	Applies   bool    `json:"applies"`
	Candidate float64 `json:"candidate"`
}

// Breakdown evaluates every rule, applicable or not, and reports its
// candidate.  It is meant for admin previews; ResolveMinPrice over the same
// input equals max(0, min(basePrice, applicable candidates)).
func Breakdown(basePrice float64, rules []model.PriceRule, now time.Time) []CandidateLine {
	out := make([]CandidateLine, 0, len(rules))
	for _, r := range rules {
		out = append(out, CandidateLine{
			RuleID:    r.ID,
			Name:      r.Name,
			PriceType: r.PriceType,
			Applies:   Applies(r, now),
			Candidate: Candidate(basePrice, r),
		})
	}
	return out
}

// number unwraps an optional value, rejecting NaN and infinities.
func number(p *float64) (float64, bool) {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	return *p, true
}
