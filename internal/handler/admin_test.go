package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teereserve/golf-booking/internal/middleware"
	"github.com/teereserve/golf-booking/internal/model"
	"github.com/teereserve/golf-booking/internal/queue"
	"github.com/teereserve/golf-booking/internal/repository"
)

var ruleCols = []string{"id", "course_id", "name", "price_type", "price_value", "min_price", "max_price",
	"round_to", "priority", "active", "effective_from", "effective_to", "season_id", "time_band_id",
	"created_at", "updated_at"}

var (
	courseCols = []string{"id", "name", "base_price", "currency", "created_at", "updated_at"}
	adminStamp = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
)

func ruleRow(id, name string, value float64, active bool) *sqlmock.Rows {
	return sqlmock.NewRows(ruleCols).AddRow(id, "pebble", name, model.PriceTypeFixed, value, nil, nil, nil,
		5, active, nil, nil, nil, nil, adminStamp, adminStamp)
}

// adminFixture wires an AdminHandler to sqlmock and counts cache purges.
type adminFixture struct {
	h      *AdminHandler
	db     sqlmock.Sqlmock
	events *recordingPublisher
	purges int
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &adminFixture{db: mock, events: &recordingPublisher{}}
	f.h = NewAdminHandler(repository.NewCourseRepo(db), repository.NewBaseProductRepo(db),
		repository.NewPriceRuleRepo(db), repository.NewCalendarRepo(db), new(mockQuoter), f.events,
		func(context.Context) error { f.purges++; return nil })
	f.h.Now = func() time.Time { return adminStamp }
	return f
}

// call runs fn as admin 1 with the given path params.
func (f *adminFixture) call(t *testing.T, fn echo.HandlerFunc, method, target, body string, params ...string) envelopeRec {
	t.Helper()
	c, rec := newContext(method, target, body)
	c.Set(middleware.CtxUserID, uint64(1))
	if len(params) > 0 {
		c.SetParamNames("id")
		c.SetParamValues(params...)
	}
	require.NoError(t, fn(c))
	return envelopeRec{Code: rec.Code, Raw: rec.Body.Bytes()}
}

type envelopeRec struct {
	Code int
	Raw  []byte
}

func (r envelopeRec) data(t *testing.T, into any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(r.Raw, &env), string(r.Raw))
	require.True(t, env.OK, string(r.Raw))
	require.NoError(t, json.Unmarshal(env.Data, into))
}

func (f *adminFixture) ruleEvent(t *testing.T) queue.PriceRuleChangedEvent {
	t.Helper()
	require.Len(t, f.events.events, 1)
	assert.Equal(t, queue.RuleChangedQueue, f.events.queues[0])
	ev, isRule := f.events.events[0].(queue.PriceRuleChangedEvent)
	require.True(t, isRule)
	return ev
}

func TestCreateRule_PurgesAndPublishes(t *testing.T) {
	f := newAdminFixture(t)
	f.db.ExpectExec("INSERT INTO price_rules").
		WithArgs(sqlmock.AnyArg(), "pebble", "Twilight", model.PriceTypeFixed, 120.0, nil, nil, nil, 5, true,
			nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.db.ExpectQuery("FROM price_rules WHERE id = \\?").WillReturnRows(ruleRow("r1", "Twilight", 120, true))

	rec := f.call(t, f.h.CreateRule, http.MethodPost, "/v1/admin/courses/pebble/rules",
		`{"name":"Twilight","priceType":"fixed","priceValue":120,"priority":5}`, "pebble")

	require.Equal(t, http.StatusCreated, rec.Code, string(rec.Raw))
	var rule model.PriceRule
	rec.data(t, &rule)
	assert.Equal(t, "r1", rule.ID)
	assert.True(t, rule.Active)

	assert.Equal(t, 1, f.purges)
	ev := f.ruleEvent(t)
	assert.Equal(t, queue.ActionCreated, ev.Action)
	assert.Equal(t, "r1", ev.RuleID)
	assert.Equal(t, uint64(1), ev.ActorID)
	assert.Equal(t, "2026-06-01T08:00:00Z", ev.OccurredAt)
	assert.NoError(t, f.db.ExpectationsWereMet())
}

func TestCreateRule_InvalidBodyTouchesNothing(t *testing.T) {
	f := newAdminFixture(t)
	rec := f.call(t, f.h.CreateRule, http.MethodPost, "/v1/admin/courses/pebble/rules",
		`{"name":"Twilight","priceType":"percent","priceValue":10}`, "pebble")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, f.purges)
	assert.Empty(t, f.events.events)
}

func TestUpdateRule_KeepsDeactivatedRuleInactive(t *testing.T) {
	f := newAdminFixture(t)
	f.db.ExpectQuery("FROM price_rules WHERE id = \\?").WithArgs("r1").
		WillReturnRows(ruleRow("r1", "Twilight", 90, false))
	f.db.ExpectExec("UPDATE price_rules SET name = \\?").
		WithArgs("Twilight renamed", model.PriceTypeFixed, 100.0, nil, nil, nil, 0, false, nil, nil, nil, nil, "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.db.ExpectQuery("FROM price_rules WHERE id = \\?").WithArgs("r1").
		WillReturnRows(ruleRow("r1", "Twilight renamed", 100, false))

	rec := f.call(t, f.h.UpdateRule, http.MethodPut, "/v1/admin/rules/r1",
		`{"name":"Twilight renamed","priceType":"fixed","priceValue":100}`, "r1")

	require.Equal(t, http.StatusOK, rec.Code, string(rec.Raw))
	var rule model.PriceRule
	rec.data(t, &rule)
	assert.False(t, rule.Active)

	ev := f.ruleEvent(t)
	assert.Equal(t, queue.ActionUpdated, ev.Action)
	assert.False(t, ev.Active)
	assert.Equal(t, 1, f.purges)
	assert.NoError(t, f.db.ExpectationsWereMet())
}

func TestUpdateRule_ExplicitActiveWins(t *testing.T) {
	f := newAdminFixture(t)
	f.db.ExpectQuery("FROM price_rules WHERE id = \\?").WillReturnRows(ruleRow("r1", "Twilight", 90, false))
	f.db.ExpectExec("UPDATE price_rules SET name = \\?").
		WithArgs("Twilight", model.PriceTypeFixed, 90.0, nil, nil, nil, 0, true, nil, nil, nil, nil, "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.db.ExpectQuery("FROM price_rules WHERE id = \\?").WillReturnRows(ruleRow("r1", "Twilight", 90, true))

	rec := f.call(t, f.h.UpdateRule, http.MethodPut, "/v1/admin/rules/r1",
		`{"name":"Twilight","priceType":"fixed","priceValue":90,"active":true}`, "r1")

	require.Equal(t, http.StatusOK, rec.Code, string(rec.Raw))
	assert.NoError(t, f.db.ExpectationsWereMet())
}

func TestUpdateRule_Missing(t *testing.T) {
	f := newAdminFixture(t)
	f.db.ExpectQuery("FROM price_rules WHERE id = \\?").WillReturnRows(sqlmock.NewRows(ruleCols))

	rec := f.call(t, f.h.UpdateRule, http.MethodPut, "/v1/admin/rules/ghost",
		`{"name":"x","priceType":"fixed","priceValue":1}`, "ghost")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, f.purges)
	assert.Empty(t, f.events.events)
}

func TestToggleRule_Actions(t *testing.T) {
	cases := []struct {
		name   string
		active bool
		action string
	}{
		{"deactivate", false, queue.ActionDeactivated},
		{"activate", true, queue.ActionActivated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAdminFixture(t)
			f.db.ExpectExec(regexp.QuoteMeta("UPDATE price_rules SET active = ?")).
				WithArgs(tc.active, "r1").
				WillReturnResult(sqlmock.NewResult(0, 1))
			f.db.ExpectQuery("FROM price_rules WHERE id = \\?").WillReturnRows(ruleRow("r1", "Twilight", 90, tc.active))

			body, _ := json.Marshal(map[string]bool{"active": tc.active})
			rec := f.call(t, f.h.ToggleRule, http.MethodPatch, "/v1/admin/rules/r1", string(body), "r1")

			require.Equal(t, http.StatusOK, rec.Code, string(rec.Raw))
			assert.Equal(t, tc.action, f.ruleEvent(t).Action)
			assert.Equal(t, 1, f.purges)
			assert.NoError(t, f.db.ExpectationsWereMet())
		})
	}
}

func TestToggleRule_RequiresActive(t *testing.T) {
	f := newAdminFixture(t)
	rec := f.call(t, f.h.ToggleRule, http.MethodPatch, "/v1/admin/rules/r1", `{}`, "r1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, f.purges)
}

func TestDeleteRule_PurgesAndPublishes(t *testing.T) {
	f := newAdminFixture(t)
	f.db.ExpectQuery("FROM price_rules WHERE id = \\?").WillReturnRows(ruleRow("r1", "Twilight", 90, true))
	f.db.ExpectExec("DELETE FROM price_rules WHERE id = \\?").WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 1))

	rec := f.call(t, f.h.DeleteRule, http.MethodDelete, "/v1/admin/rules/r1", "", "r1")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	ev := f.ruleEvent(t)
	assert.Equal(t, queue.ActionDeleted, ev.Action)
	assert.Equal(t, "Twilight", ev.Name)
	assert.Equal(t, 1, f.purges)
	assert.NoError(t, f.db.ExpectationsWereMet())
}

func TestDeleteRule_Missing(t *testing.T) {
	f := newAdminFixture(t)
	f.db.ExpectQuery("FROM price_rules WHERE id = \\?").WillReturnError(sql.ErrNoRows)

	rec := f.call(t, f.h.DeleteRule, http.MethodDelete, "/v1/admin/rules/ghost", "", "ghost")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, f.purges)
	assert.Empty(t, f.events.events)
}

func TestCreateCourse_Purges(t *testing.T) {
	f := newAdminFixture(t)
	f.db.ExpectExec("INSERT INTO courses").
		WithArgs(sqlmock.AnyArg(), "Pebble Beach", 305.0, "USD").
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.db.ExpectQuery("FROM courses WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows(courseCols).AddRow("c-1", "Pebble Beach", 305.0, "USD", adminStamp, adminStamp))

	rec := f.call(t, f.h.CreateCourse, http.MethodPost, "/v1/admin/courses",
		`{"name":" Pebble Beach ","basePrice":305,"currency":"usd"}`)

	require.Equal(t, http.StatusCreated, rec.Code, string(rec.Raw))
	var course model.Course
	rec.data(t, &course)
	assert.Equal(t, "c-1", course.ID)
	assert.Equal(t, 1, f.purges)
	assert.NoError(t, f.db.ExpectationsWereMet())
}

func TestCreateCourse_Rejects(t *testing.T) {
	f := newAdminFixture(t)
	rec := f.call(t, f.h.CreateCourse, http.MethodPost, "/v1/admin/courses", `{"name":"x","basePrice":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.db.ExpectExec("INSERT INTO courses").WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	rec = f.call(t, f.h.CreateCourse, http.MethodPost, "/v1/admin/courses", `{"name":"Pebble Beach"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, f.purges)
}

func TestPutBaseProduct(t *testing.T) {
	f := newAdminFixture(t)
	f.db.ExpectExec("INSERT INTO base_products").
		WithArgs("pebble", 250.0, "EUR").
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.db.ExpectQuery("FROM base_products WHERE course_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "base_price", "currency", "updated_at"}).
			AddRow("pebble", 250.0, "EUR", adminStamp))

	rec := f.call(t, f.h.PutBaseProduct, http.MethodPut, "/v1/admin/courses/pebble/base-product",
		`{"basePrice":250,"currency":"eur"}`, "pebble")

	require.Equal(t, http.StatusOK, rec.Code, string(rec.Raw))
	var p model.BaseProduct
	rec.data(t, &p)
	assert.Equal(t, 250.0, p.BasePrice)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, 1, f.purges)
	assert.NoError(t, f.db.ExpectationsWereMet())
}

func TestPutBaseProduct_Rejects(t *testing.T) {
	f := newAdminFixture(t)
	rec := f.call(t, f.h.PutBaseProduct, http.MethodPut, "/v1/admin/courses/pebble/base-product", `{"currency":"USD"}`, "pebble")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.db.ExpectExec("INSERT INTO base_products").WillReturnError(&mysql.MySQLError{Number: 1452, Message: "foreign key"})
	rec = f.call(t, f.h.PutBaseProduct, http.MethodPut, "/v1/admin/courses/ghost/base-product", `{"basePrice":10}`, "ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, f.purges)
}
