package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"equityshield/internal/platform/metrics"
	dErrors "equityshield/pkg/domain-errors"
	"equityshield/pkg/platform/audit"
	"equityshield/pkg/platform/httputil"
	"equityshield/pkg/platform/middleware/apikey"
	"equityshield/pkg/platform/middleware/metadata"
	"equityshield/pkg/platform/middleware/request"
	"equityshield/pkg/platform/middleware/requesttime"
)

// RouteRegistrar mounts a feature's endpoints under /api.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// Dependencies is everything the router wires together. RateLimit and Cache
// are optional; a nil value leaves that stage out of the chain.
type Dependencies struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Auditor  audit.Emitter

	APIKey  string
	Version string

	RateLimit func(http.Handler) http.Handler
	Cache     func(http.Handler) http.Handler

	Handlers []RouteRegistrar
}

// NewRouter builds the full handler. Every request passes request id, client
// metadata, request time, logging, recovery and tracing. /api requests then
// pass the API key gate, the rate limiter and the response cache in that
// order. /health and /metrics skip all three.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(deps.Logger, deps.Metrics))
	r.Use(request.Recovery(deps.Logger))
	r.Use(request.Tracing)

	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleMethodNotAllowed)

	r.Get("/health", HandleHealth(deps.Version))
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(apikey.RequireAPIKey(deps.APIKey, deps.Logger,
			apikey.WithMetrics(deps.Metrics),
			apikey.WithAuditor(deps.Auditor),
		))
		if deps.RateLimit != nil {
			api.Use(deps.RateLimit)
		}
		if deps.Cache != nil {
			api.Use(deps.Cache)
		}
		for _, h := range deps.Handlers {
			h.Register(api)
		}
	})

	return r
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Endpoint not found"))
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.Envelope{
		Status:  httputil.StatusError,
		Error:   "method_not_allowed",
		Message: "Method " + r.Method + " not allowed",
	})
}
