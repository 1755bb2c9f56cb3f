package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"equityshield/internal/platform/metrics"
	"equityshield/internal/ratelimit/models"
	dErrors "equityshield/pkg/domain-errors"
	"equityshield/pkg/platform/httputil"
	"equityshield/pkg/requestcontext"
)

// RateLimiter checks the per-address budget for one request.
type RateLimiter interface {
	CheckIP(ctx context.Context, ip string) (*models.RateLimitResult, error)
}

type Middleware struct {
	limiter  RateLimiter
	fallback RateLimiter
	breaker  *breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithFallback installs an in-process limiter used while the primary one is
// failing. Without a fallback, limiter errors let the request through.
func WithFallback(fallback RateLimiter) Option {
	return func(m *Middleware) {
		m.fallback = fallback
	}
}

// WithBreaker sets how many consecutive limiter errors switch requests to the
// fallback and how many consecutive successes switch them back.
func WithBreaker(tripAfter, restoreAfter int) Option {
	return func(m *Middleware) {
		m.breaker = newBreaker(tripAfter, restoreAfter)
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(mw *Middleware) {
		mw.metrics = m
	}
}

func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
		breaker: newBreaker(defaultTripAfter, defaultRestoreAfter),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit rejects requests from a client address whose budget is spent
// with a rate_limited envelope before the handler runs.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)

		result, degraded, err := m.check(ctx, ip)
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to check rate limit",
				"error", err,
				"client_ip", ip,
				"request_id", requestcontext.RequestID(ctx),
			)
			next.ServeHTTP(w, r)
			return
		}

		if degraded {
			w.Header().Set("X-RateLimit-Status", "degraded")
		}
		// Add headers regardless of outcome
		addRateLimitHeaders(w, result)

		if !result.Allowed {
			writeRateLimitExceeded(w, result)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// check asks the shared limiter first. While the breaker is tripped, or when
// the shared limiter errors, the fallback answers and the result is degraded.
func (m *Middleware) check(ctx context.Context, ip string) (*models.RateLimitResult, bool, error) {
	result, err := m.limiter.CheckIP(ctx, ip)
	m.observe(ctx, ip, err)
	if err == nil && (m.fallback == nil || !m.breaker.Tripped()) {
		return result, false, nil
	}
	if m.fallback == nil {
		return nil, false, err
	}
	result, err = m.fallback.CheckIP(ctx, ip)
	return result, true, err
}

func (m *Middleware) observe(ctx context.Context, ip string, err error) {
	change, outage := m.breaker.Observe(err, requestcontext.Now(ctx))
	switch change {
	case breakerTripped:
		m.metrics.SetRateLimitDegraded(true)
		m.logger.WarnContext(ctx, "shared rate limiter failing, using in-process budgets",
			"error", err,
			"failures", m.breaker.tripAfter,
			"client_ip", ip,
			"request_id", requestcontext.RequestID(ctx),
		)
	case breakerRestored:
		m.metrics.SetRateLimitDegraded(false)
		m.logger.InfoContext(ctx, "shared rate limiter recovered",
			"outage", outage.String(),
			"client_ip", ip,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if result.Window != "" {
		w.Header().Set("X-RateLimit-Window", result.Window)
	}
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited,
		"Rate limit exceeded: too many requests per "+result.Window+". Please try again later."))
}
