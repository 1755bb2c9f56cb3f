package apikey

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"equityshield/internal/platform/metrics"
	dErrors "equityshield/pkg/domain-errors"
	"equityshield/pkg/platform/audit"
	"equityshield/pkg/platform/httputil"
	"equityshield/pkg/requestcontext"
)

// Header carries the pre-shared credential.
const Header = "X-API-KEY"

const (
	reasonNotConfigured = "not_configured"
	reasonMissing       = "missing"
	reasonMismatch      = "mismatch"
)

// Option configures the gate.
type Option func(*gate)

type gate struct {
	expected []byte
	logger   *slog.Logger
	metrics  *metrics.Metrics
	auditor  audit.Emitter
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *gate) { g.metrics = m }
}

func WithAuditor(a audit.Emitter) Option {
	return func(g *gate) { g.auditor = a }
}

// RequireAPIKey rejects requests whose X-API-KEY does not match expectedKey.
// An empty expectedKey fails closed with configuration_error.
func RequireAPIKey(expectedKey string, logger *slog.Logger, opts ...Option) func(http.Handler) http.Handler {
	g := &gate{expected: []byte(expectedKey), logger: logger}
	for _, opt := range opts {
		opt(g)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(g.expected) == 0 {
				g.reject(r, reasonNotConfigured)
				httputil.WriteError(w, dErrors.New(dErrors.CodeConfiguration, "API key not configured on server"))
				return
			}

			provided := r.Header.Get(Header)
			if provided == "" {
				g.reject(r, reasonMissing)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "API key required"))
				return
			}

			// Use constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(provided), g.expected) != 1 {
				g.reject(r, reasonMismatch)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid API key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (g *gate) reject(r *http.Request, reason string) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	clientIP := requestcontext.ClientIP(ctx)

	if reason == reasonNotConfigured {
		g.logger.ErrorContext(ctx, "api key not configured",
			"request_id", requestID,
			"path", r.URL.Path,
		)
	} else {
		g.logger.WarnContext(ctx, "api key rejected",
			"request_id", requestID,
			"reason", reason,
			"client_ip", clientIP,
			"path", r.URL.Path,
		)
	}
	g.metrics.IncrementAuthRejections(reason)

	if g.auditor == nil {
		return
	}
	event := audit.NewEvent(audit.EventAuthRejected, requestcontext.Now(ctx))
	event.Subject = r.URL.Path
	event.ClientIP = clientIP
	event.RequestID = requestID
	event.Reason = reason
	if err := g.auditor.Emit(ctx, event); err != nil {
		g.logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", requestID,
			"action", event.Action,
			"error", err,
		)
	}
}
