package requestlimit

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"equityshield/internal/platform/metrics"
	"equityshield/internal/ratelimit/models"
	"equityshield/internal/ratelimit/observability"
	"equityshield/internal/ratelimit/ports"
	dErrors "equityshield/pkg/domain-errors"
	"equityshield/pkg/platform/audit"
)

// Type aliases for interfaces from ports package.
// This allows external packages to use these types without importing ports directly.
type (
	BucketStore    = ports.BucketStore
	AuditPublisher = ports.AuditPublisher
)

// Service applies every configured window to a client address.
type Service struct {
	buckets        BucketStore
	windows        []models.Window
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithWindows replaces the default 100/minute and 5000/day budgets.
func WithWindows(windows ...models.Window) Option {
	return func(s *Service) {
		s.windows = windows
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(buckets BucketStore, opts ...Option) (*Service, error) {
	if buckets == nil {
		return nil, errors.New("buckets store is required")
	}

	svc := &Service{
		buckets: buckets,
		windows: models.DefaultWindows(100, 5000),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if len(svc.windows) == 0 {
		return nil, errors.New("at least one rate limit window is required")
	}
	for _, w := range svc.windows {
		if w.Limit <= 0 || w.Duration <= 0 {
			return nil, errors.New("rate limit windows need a positive limit and duration")
		}
	}
	return svc, nil
}

// CheckIP records one request for ip against each window in order and stops
// at the first window that rejects. The returned result describes the
// rejecting window, or the first (tightest) window when all admit.
//
// Windows already passed keep the request even when a later one rejects.
func (s *Service) CheckIP(ctx context.Context, ip string) (*models.RateLimitResult, error) {
	var first *models.RateLimitResult
	for _, w := range s.windows {
		key := models.NewRateLimitKey(models.KeyPrefixIP, ip, w.Name)
		result, err := s.buckets.Allow(ctx, key.String(), w.Limit, w.Duration)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check rate limit")
		}
		result.Window = w.Name

		if !result.Allowed {
			s.metrics.IncrementRateLimitDenials()
			observability.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventRateLimitExceeded,
				ip, "window_exhausted",
				"window", w.Name,
				"limit", strconv.Itoa(w.Limit),
				"window_seconds", strconv.Itoa(int(w.Duration.Seconds())),
			)
			return result, nil
		}
		if first == nil {
			first = result
		}
	}
	return first, nil
}
