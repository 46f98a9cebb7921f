package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/teereserve/golf-booking/internal/model"
	"github.com/teereserve/golf-booking/internal/queue"
)

// ruleReq is the body of rule create and update calls.  An omitted active
// means true on create and the stored value on update.
type ruleReq struct {
	Name          string     `json:"name"`
	PriceType     string     `json:"priceType"`
	PriceValue    *float64   `json:"priceValue"`
	MinPrice      *float64   `json:"minPrice"`
	MaxPrice      *float64   `json:"maxPrice"`
	RoundTo       *float64   `json:"roundTo"`
	Priority      int        `json:"priority"`
	Active        *bool      `json:"active"`
	EffectiveFrom *time.Time `json:"effectiveFrom"`
	EffectiveTo   *time.Time `json:"effectiveTo"`
	SeasonID      *string    `json:"seasonId"`
	TimeBandID    *string    `json:"timeBandId"`
}

// validate rejects rules an admin should not be able to save.  The resolver
// tolerates bad stored values anyway.
func (r ruleReq) validate() string {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return "name is required"
	case r.PriceType != model.PriceTypeFixed && r.PriceType != model.PriceTypeDelta && r.PriceType != model.PriceTypeMultiplier:
		return "priceType must be fixed, delta or multiplier"
	case r.PriceValue == nil:
		return "priceValue is required"
	case r.PriceType == model.PriceTypeMultiplier && !validAmount(*r.PriceValue):
		return "multiplier must be a non-negative number"
	case r.PriceType == model.PriceTypeFixed && !validAmount(*r.PriceValue):
		return "fixed price must be a non-negative number"
	case r.MinPrice != nil && !validAmount(*r.MinPrice):
		return "minPrice must be a non-negative number"
	case r.MaxPrice != nil && !validAmount(*r.MaxPrice):
		return "maxPrice must be a non-negative number"
	case r.MinPrice != nil && r.MaxPrice != nil && *r.MinPrice > *r.MaxPrice:
		return "minPrice must not exceed maxPrice"
	case r.RoundTo != nil && !validAmount(*r.RoundTo):
		return "roundTo must be a non-negative number"
	case r.EffectiveFrom != nil && r.EffectiveTo != nil && r.EffectiveFrom.After(*r.EffectiveTo):
		return "effectiveFrom must not be after effectiveTo"
	}
	return ""
}

func (r ruleReq) toModel(id, courseID string) *model.PriceRule {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &model.PriceRule{
		ID:            id,
		CourseID:      courseID,
		Name:          strings.TrimSpace(r.Name),
		PriceType:     r.PriceType,
		PriceValue:    r.PriceValue,
		MinPrice:      r.MinPrice,
		MaxPrice:      r.MaxPrice,
		RoundTo:       r.RoundTo,
		Priority:      r.Priority,
		Active:        active,
		EffectiveFrom: r.EffectiveFrom,
		EffectiveTo:   r.EffectiveTo,
		SeasonID:      r.SeasonID,
		TimeBandID:    r.TimeBandID,
	}
}

// ruleChanged purges cached prices and publishes the change.  Neither step
// can fail the request.
func (h *AdminHandler) ruleChanged(ctx context.Context, c echo.Context, action string, rule *model.PriceRule) {
	h.invalidate(ctx)
	actor, _ := userID(c)
	ev := queue.PriceRuleChangedEvent{
		Action:     action,
		RuleID:     rule.ID,
		CourseID:   rule.CourseID,
		Name:       rule.Name,
		PriceType:  rule.PriceType,
		PriceValue: rule.PriceValue,
		Active:     rule.Active,
		ActorID:    actor,
		OccurredAt: h.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Events.Publish(ctx, queue.RuleChangedQueue, ev); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("rule_id", rule.ID).Str("action", action).Msg("publish rule change failed")
	}
}

// ListRules handles GET /v1/admin/courses/:id/rules, inactive rules included.
func (h *AdminHandler) ListRules(c echo.Context) error {
	ctx := c.Request().Context()
	rules, err := h.Rules.ListByCourse(ctx, c.Param("id"))
	if err != nil {
		return adminFailure(c, err, "could not list rules")
	}
	return ok(c, http.StatusOK, rules)
}

// CreateRule handles POST /v1/admin/courses/:id/rules.
func (h *AdminHandler) CreateRule(c echo.Context) error {
	var req ruleReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx := c.Request().Context()

	rule := req.toModel("", c.Param("id"))
	if err := h.Rules.Create(ctx, rule); err != nil {
		return adminFailure(c, err, "could not create rule")
	}
	h.ruleChanged(ctx, c, queue.ActionCreated, rule)
	return ok(c, http.StatusCreated, rule)
}

// UpdateRule handles PUT /v1/admin/rules/:id.  The body replaces the rule;
// a deactivated rule stays deactivated unless active is sent.
func (h *AdminHandler) UpdateRule(c echo.Context) error {
	var req ruleReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx := c.Request().Context()

	existing, err := h.Rules.GetByID(ctx, c.Param("id"))
	if err != nil {
		return adminFailure(c, err, "could not load rule")
	}
	rule := req.toModel(existing.ID, existing.CourseID)
	if req.Active == nil {
		rule.Active = existing.Active
	}
	if err := h.Rules.Update(ctx, rule); err != nil {
		return adminFailure(c, err, "could not update rule")
	}
	h.ruleChanged(ctx, c, queue.ActionUpdated, rule)
	return ok(c, http.StatusOK, rule)
}

// ToggleRule handles PATCH /v1/admin/rules/:id with {"active": bool}.
// Deactivating keeps the row, so it is the soft delete.
func (h *AdminHandler) ToggleRule(c echo.Context) error {
	var req struct {
		Active *bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil || req.Active == nil {
		return fail(c, http.StatusBadRequest, "active is required")
	}
	ctx := c.Request().Context()

	id := c.Param("id")
	if err := h.Rules.SetActive(ctx, id, *req.Active); err != nil {
		return adminFailure(c, err, "could not toggle rule")
	}
	rule, err := h.Rules.GetByID(ctx, id)
	if err != nil {
		return adminFailure(c, err, "could not load rule")
	}
	action := queue.ActionDeactivated
	if rule.Active {
		action = queue.ActionActivated
	}
	h.ruleChanged(ctx, c, action, rule)
	return ok(c, http.StatusOK, rule)
}

// DeleteRule handles DELETE /v1/admin/rules/:id.
func (h *AdminHandler) DeleteRule(c echo.Context) error {
	ctx := c.Request().Context()

	rule, err := h.Rules.GetByID(ctx, c.Param("id"))
	if err != nil {
		return adminFailure(c, err, "could not load rule")
	}
	if err := h.Rules.Delete(ctx, rule.ID); err != nil {
		return adminFailure(c, err, "could not delete rule")
	}
	h.ruleChanged(ctx, c, queue.ActionDeleted, rule)
	return c.NoContent(http.StatusNoContent)
}

// PreviewPricing handles GET /v1/admin/courses/:id/pricing/preview?at=...
// It shows every rule's candidate, inactive ones included, next to the
// resolved price.
func (h *AdminHandler) PreviewPricing(c echo.Context) error {
	at, err := parseInstant(c.QueryParam("at"), h.Now())
	if err != nil {
		return fail(c, http.StatusBadRequest, "at must be an RFC3339 timestamp")
	}
	ctx := c.Request().Context()

	courseID := c.Param("id")
	rules, err := h.Rules.ListByCourse(ctx, courseID)
	if err != nil {
		return adminFailure(c, err, "could not list rules")
	}
	q, lines, err := h.Prices.Preview(ctx, courseID, rules, at)
	if err != nil {
		return pricingFailure(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{
		"courseId": q.CourseID,
		"currency": q.Currency,
		"minPrice": q.MinPrice,
		"at":       at.UTC(),
		"rules":    lines,
	})
}
