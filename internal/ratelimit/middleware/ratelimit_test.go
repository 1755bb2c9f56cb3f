package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"equityshield/internal/platform/metrics"
	"equityshield/internal/ratelimit/middleware/mocks"
	"equityshield/internal/ratelimit/models"
	"equityshield/pkg/testutil"
)

//go:generate mockgen -source=ratelimit.go -destination=mocks/mocks.go -package=mocks RateLimiter

type RateLimitMiddlewareSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	primary  *mocks.MockRateLimiter
	fallback *mocks.MockRateLimiter
	logger   *slog.Logger
	resetAt  time.Time
}

func TestRateLimitMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(RateLimitMiddlewareSuite))
}

func (s *RateLimitMiddlewareSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.primary = mocks.NewMockRateLimiter(s.ctrl)
	s.fallback = mocks.NewMockRateLimiter(s.ctrl)
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.resetAt = time.Date(2024, 6, 1, 9, 1, 0, 0, time.UTC)
}

func (s *RateLimitMiddlewareSuite) serve(m *Middleware, ip string) (*httptest.ResponseRecorder, bool) {
	called := false
	h := m.RateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	req := testutil.WithClientIP(httptest.NewRequest(http.MethodGet, "/api/banking-info", nil), ip)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr, called
}

func (s *RateLimitMiddlewareSuite) TestAllowedRequestGetsHeaders() {
	s.primary.EXPECT().CheckIP(gomock.Any(), "192.0.2.1").Return(&models.RateLimitResult{
		Allowed: true, Limit: 100, Remaining: 99, ResetAt: s.resetAt, Window: "minute",
	}, nil)

	rr, called := s.serve(New(s.primary, s.logger), "192.0.2.1")

	s.True(called)
	s.Equal(http.StatusOK, rr.Code)
	s.Equal("100", rr.Header().Get("X-RateLimit-Limit"))
	s.Equal("99", rr.Header().Get("X-RateLimit-Remaining"))
	s.Equal("1717232460", rr.Header().Get("X-RateLimit-Reset"))
	s.Equal("minute", rr.Header().Get("X-RateLimit-Window"))
}

func (s *RateLimitMiddlewareSuite) TestDeniedRequestNeverReachesHandler() {
	s.primary.EXPECT().CheckIP(gomock.Any(), "192.0.2.1").Return(&models.RateLimitResult{
		Allowed: false, Limit: 100, ResetAt: s.resetAt, RetryAfter: 42, Window: "minute",
	}, nil)

	rr, called := s.serve(New(s.primary, s.logger), "192.0.2.1")

	s.False(called)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, "rate_limited")
	s.Equal("42", rr.Header().Get("Retry-After"))
	s.Equal("0", rr.Header().Get("X-RateLimit-Remaining"))
}

func (s *RateLimitMiddlewareSuite) TestDisabledSkipsLimiter() {
	rr, called := s.serve(New(s.primary, s.logger, WithDisabled(true)), "192.0.2.1")

	s.True(called)
	s.Equal(http.StatusOK, rr.Code)
	s.Empty(rr.Header().Get("X-RateLimit-Limit"))
}

func (s *RateLimitMiddlewareSuite) TestLimiterErrorWithoutFallbackFailsOpen() {
	s.primary.EXPECT().CheckIP(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))

	rr, called := s.serve(New(s.primary, s.logger), "192.0.2.1")

	s.True(called)
	s.Equal(http.StatusOK, rr.Code)
}

func (s *RateLimitMiddlewareSuite) TestLimiterErrorUsesFallback() {
	s.primary.EXPECT().CheckIP(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
	s.fallback.EXPECT().CheckIP(gomock.Any(), "192.0.2.1").Return(&models.RateLimitResult{
		Allowed: false, Limit: 100, ResetAt: s.resetAt, RetryAfter: 5, Window: "minute",
	}, nil)

	rr, called := s.serve(New(s.primary, s.logger, WithFallback(s.fallback)), "192.0.2.1")

	s.False(called)
	s.Equal(http.StatusTooManyRequests, rr.Code)
	s.Equal("degraded", rr.Header().Get("X-RateLimit-Status"))
}

func (s *RateLimitMiddlewareSuite) TestBreakerTripsThenRestores() {
	reg := prometheus.NewRegistry()
	m := New(s.primary, s.logger, WithFallback(s.fallback), WithBreaker(2, 2), WithMetrics(metrics.New(reg)))
	allowed := &models.RateLimitResult{Allowed: true, Limit: 100, Remaining: 50, ResetAt: s.resetAt, Window: "minute"}
	local := &models.RateLimitResult{Allowed: true, Limit: 100, Remaining: 7, ResetAt: s.resetAt, Window: "minute"}

	s.primary.EXPECT().CheckIP(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down")).Times(2)
	s.fallback.EXPECT().CheckIP(gomock.Any(), gomock.Any()).Return(local, nil).Times(2)
	for range 2 {
		rr, called := s.serve(m, "192.0.2.1")
		s.True(called)
		s.Equal("degraded", rr.Header().Get("X-RateLimit-Status"))
	}
	s.True(m.breaker.Tripped())
	s.Equal(1.0, promtestutil.ToFloat64(m.metrics.RateLimitDegraded))

	// A healthy answer alone does not restore shared budgets.
	s.primary.EXPECT().CheckIP(gomock.Any(), gomock.Any()).Return(allowed, nil)
	s.fallback.EXPECT().CheckIP(gomock.Any(), gomock.Any()).Return(local, nil)
	rr, _ := s.serve(m, "192.0.2.1")
	s.Equal("degraded", rr.Header().Get("X-RateLimit-Status"))
	s.Equal("7", rr.Header().Get("X-RateLimit-Remaining"))

	s.primary.EXPECT().CheckIP(gomock.Any(), gomock.Any()).Return(allowed, nil)
	rr, _ = s.serve(m, "192.0.2.1")
	s.False(m.breaker.Tripped())
	s.Empty(rr.Header().Get("X-RateLimit-Status"))
	s.Equal("50", rr.Header().Get("X-RateLimit-Remaining"))
	s.Equal(0.0, promtestutil.ToFloat64(m.metrics.RateLimitDegraded))
}

func (s *RateLimitMiddlewareSuite) TestErrorsBelowThresholdDoNotTrip() {
	m := New(s.primary, s.logger, WithFallback(s.fallback), WithBreaker(3, 1))
	allowed := &models.RateLimitResult{Allowed: true, Limit: 100, Remaining: 50, ResetAt: s.resetAt, Window: "minute"}

	gomock.InOrder(
		s.primary.EXPECT().CheckIP(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout")),
		s.primary.EXPECT().CheckIP(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout")),
		s.primary.EXPECT().CheckIP(gomock.Any(), gomock.Any()).Return(allowed, nil),
		s.primary.EXPECT().CheckIP(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout")),
	)
	s.fallback.EXPECT().CheckIP(gomock.Any(), gomock.Any()).Return(allowed, nil).Times(3)

	for range 4 {
		s.serve(m, "192.0.2.1")
	}
	s.False(m.breaker.Tripped(), "a success resets the failure run")
}

func (s *RateLimitMiddlewareSuite) TestTrippedWithoutFallbackUsesSharedAnswers() {
	m := New(s.primary, s.logger, WithBreaker(1, 5))
	allowed := &models.RateLimitResult{Allowed: true, Limit: 100, Remaining: 9, ResetAt: s.resetAt, Window: "minute"}

	s.primary.EXPECT().CheckIP(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
	_, called := s.serve(m, "192.0.2.1")
	s.True(called, "fails open")
	s.True(m.breaker.Tripped())

	s.primary.EXPECT().CheckIP(gomock.Any(), gomock.Any()).Return(allowed, nil)
	rr, _ := s.serve(m, "192.0.2.1")
	s.Equal("9", rr.Header().Get("X-RateLimit-Remaining"))
	s.Empty(rr.Header().Get("X-RateLimit-Status"))
}

func TestBreakerObserve(t *testing.T) {
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	down := errors.New("down")

	t.Run("reports the outage on restore", func(t *testing.T) {
		b := newBreaker(2, 1)
		change, _ := b.Observe(down, start)
		assert.Equal(t, breakerUnchanged, change)
		change, _ = b.Observe(down, start.Add(time.Second))
		assert.Equal(t, breakerTripped, change)
		change, _ = b.Observe(down, start.Add(2*time.Second))
		assert.Equal(t, breakerUnchanged, change, "already tripped")

		change, outage := b.Observe(nil, start.Add(31*time.Second))
		assert.Equal(t, breakerRestored, change)
		assert.Equal(t, 30*time.Second, outage)
	})

	t.Run("a failure during recovery restarts the success run", func(t *testing.T) {
		b := newBreaker(1, 2)
		b.Observe(down, start)
		b.Observe(nil, start)
		b.Observe(down, start)
		change, _ := b.Observe(nil, start)
		assert.Equal(t, breakerUnchanged, change)
		assert.True(t, b.Tripped())
		change, _ = b.Observe(nil, start)
		assert.Equal(t, breakerRestored, change)
	})

	t.Run("non-positive thresholds use defaults", func(t *testing.T) {
		b := newBreaker(0, -1)
		assert.Equal(t, defaultTripAfter, b.tripAfter)
		assert.Equal(t, defaultRestoreAfter, b.restoreAfter)
	})
}
