package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teereserve/golf-booking/internal/model"
	"github.com/teereserve/golf-booking/internal/pricing"
	"github.com/teereserve/golf-booking/internal/repository"
	"github.com/teereserve/golf-booking/internal/service"
)

type mockQuoter struct {
	mock.Mock
}

func (m *mockQuoter) MinPrice(ctx context.Context, courseID string) (service.Quote, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).(service.Quote), args.Error(1)
}

func (m *mockQuoter) QuoteAt(ctx context.Context, courseID string, at time.Time) (service.Quote, error) {
	args := m.Called(ctx, courseID, at)
	return args.Get(0).(service.Quote), args.Error(1)
}

func (m *mockQuoter) Preview(ctx context.Context, courseID string, rules []model.PriceRule, at time.Time) (service.Quote, []pricing.CandidateLine, error) {
	args := m.Called(ctx, courseID, rules, at)
	return args.Get(0).(service.Quote), args.Get(1).([]pricing.CandidateLine), args.Error(2)
}

type mockCourses struct {
	mock.Mock
}

func (m *mockCourses) GetByID(ctx context.Context, id string) (*model.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *mockCourses) List(ctx context.Context) ([]*model.Course, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*model.Course), args.Error(1)
}

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	queues []string
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, queue string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queues = append(p.queues, queue)
	p.events = append(p.events, event)
	return nil
}

type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestMinPrice_OK(t *testing.T) {
	q := new(mockQuoter)
	q.On("MinPrice", mock.Anything, "pebble").
		Return(service.Quote{CourseID: "pebble", Currency: "USD", MinPrice: 305}, nil)

	c, rec := newContext(http.MethodGet, "/pricing/min-price?courseId=pebble", "")
	require.NoError(t, NewPricingHandler(q).MinPrice(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"data":{"courseId":"pebble","currency":"USD","minPrice":305}}`, rec.Body.String())
}

func TestMinPrice_Errors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", pricing.ErrValidation, http.StatusBadRequest, "courseId is required"},
		{"not found", pricing.ErrPriceNotFound, http.StatusNotFound, "price not found"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "timed out"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := new(mockQuoter)
			q.On("MinPrice", mock.Anything, mock.Anything).Return(service.Quote{}, tc.err)

			c, rec := newContext(http.MethodGet, "/pricing/min-price?courseId=x", "")
			require.NoError(t, NewPricingHandler(q).MinPrice(c))

			assert.Equal(t, tc.status, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.OK)
			assert.Equal(t, tc.msg, env.Error)
		})
	}
}

func TestQuote_ParsesInstant(t *testing.T) {
	at := time.Date(2026, 7, 4, 17, 30, 0, 0, time.UTC)
	q := new(mockQuoter)
	q.On("QuoteAt", mock.Anything, "pebble", mock.MatchedBy(func(t time.Time) bool { return t.Equal(at) })).
		Return(service.Quote{CourseID: "pebble", Currency: "USD", MinPrice: 240, At: at}, nil)

	c, rec := newContext(http.MethodGet, "/v1/pricing/quote?courseId=pebble&at=2026-07-04T17:30:00Z", "")
	require.NoError(t, NewPricingHandler(q).Quote(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"data":{"courseId":"pebble","currency":"USD","minPrice":240,"at":"2026-07-04T17:30:00Z"}}`,
		rec.Body.String())
}

func TestQuote_BadInstant(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/v1/pricing/quote?courseId=pebble&at=tomorrow", "")
	require.NoError(t, NewPricingHandler(new(mockQuoter)).Quote(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCourses_FromPrice(t *testing.T) {
	courses := new(mockCourses)
	courses.On("List", mock.Anything).Return([]*model.Course{
		{ID: "pebble", Name: "Pebble Beach", Currency: "USD"},
		{ID: "muni", Name: "City Muni", Currency: "USD"},
	}, nil)
	q := new(mockQuoter)
	q.On("MinPrice", mock.Anything, "pebble").Return(service.Quote{CourseID: "pebble", Currency: "USD", MinPrice: 305}, nil)
	q.On("MinPrice", mock.Anything, "muni").Return(service.Quote{}, pricing.ErrPriceNotFound)

	c, rec := newContext(http.MethodGet, "/v1/courses", "")
	require.NoError(t, NewPublicHandler(courses, q).ListCourses(c))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []PublicCourse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &got))
	require.Len(t, got, 2)
	require.NotNil(t, got[0].FromPrice)
	assert.Equal(t, 305.0, *got[0].FromPrice)
	assert.Nil(t, got[1].FromPrice)
}

func TestGetCourse_NotFound(t *testing.T) {
	courses := new(mockCourses)
	courses.On("GetByID", mock.Anything, "ghost").Return(nil, repository.ErrCourseNotFound)

	c, rec := newContext(http.MethodGet, "/v1/courses/ghost", "")
	c.SetParamNames("id")
	c.SetParamValues("ghost")
	require.NoError(t, NewPublicHandler(courses, new(mockQuoter)).GetCourse(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRuleReqValidate(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	from := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	cases := []struct {
		name string
		req  ruleReq
		want string
	}{
		{"valid delta", ruleReq{Name: "Twilight", PriceType: "delta", PriceValue: v(-20)}, ""},
		{"missing name", ruleReq{PriceType: "delta", PriceValue: v(1)}, "name is required"},
		{"bad type", ruleReq{Name: "x", PriceType: "percent", PriceValue: v(1)}, "priceType must be fixed, delta or multiplier"},
		{"missing value", ruleReq{Name: "x", PriceType: "fixed"}, "priceValue is required"},
		{"negative multiplier", ruleReq{Name: "x", PriceType: "multiplier", PriceValue: v(-1)}, "multiplier must be a non-negative number"},
		{"inverted clamp", ruleReq{Name: "x", PriceType: "fixed", PriceValue: v(100), MinPrice: v(200), MaxPrice: v(150)}, "minPrice must not exceed maxPrice"},
		{"inverted window", ruleReq{Name: "x", PriceType: "fixed", PriceValue: v(100), EffectiveFrom: &from, EffectiveTo: &to}, "effectiveFrom must not be after effectiveTo"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.req.validate())
		})
	}
}

func TestRuleReqToModel_DefaultsActive(t *testing.T) {
	f := 10.0
	rule := ruleReq{Name: " Weekend ", PriceType: "delta", PriceValue: &f}.toModel("", "pebble")
	assert.True(t, rule.Active)
	assert.Equal(t, "Weekend", rule.Name)
	assert.Equal(t, "pebble", rule.CourseID)

	off := false
	rule = ruleReq{Name: "x", PriceType: "delta", PriceValue: &f, Active: &off}.toModel("r1", "pebble")
	assert.False(t, rule.Active)
}
