package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"equityshield/internal/cache/models"
	"equityshield/internal/platform/metrics"
	"equityshield/pkg/platform/middleware/apikey"
	"equityshield/pkg/platform/sentinel"
	"equityshield/pkg/requestcontext"
)

// HeaderCache reports HIT or MISS on cacheable requests.
const HeaderCache = "X-Cache"

// Store holds cached responses. Get returns sentinel.ErrNotFound on a miss.
type Store interface {
	Get(ctx context.Context, key string) (*models.Entry, error)
	Set(ctx context.Context, key string, entry models.Entry, ttl time.Duration) error
}

type Middleware struct {
	store   Store
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Middleware)

func WithMetrics(m *metrics.Metrics) Option {
	return func(mw *Middleware) {
		mw.metrics = m
	}
}

func New(store Store, ttl time.Duration, logger *slog.Logger, opts ...Option) *Middleware {
	mw := &Middleware{store: store, ttl: ttl, logger: logger}
	for _, opt := range opts {
		opt(mw)
	}
	return mw
}

// Key combines method, path with query, and a digest of the credential so
// clients holding different keys never share an entry and the raw key is
// never stored.
func Key(r *http.Request) string {
	sum := sha256.Sum256([]byte(r.Header.Get(apikey.Header)))
	return r.Method + " " + r.URL.RequestURI() + " " + hex.EncodeToString(sum[:])
}

// Cache serves fresh GET responses from the store and records 200 responses
// produced by next. Store failures degrade to a pass-through.
func (mw *Middleware) Cache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := Key(r)

		entry, err := mw.store.Get(ctx, key)
		switch {
		case err == nil:
			mw.metrics.IncrementCacheLookup("hit")
			w.Header().Set(HeaderCache, "HIT")
			entry.Replay(w)
			return
		case errors.Is(err, sentinel.ErrNotFound):
			mw.metrics.IncrementCacheLookup("miss")
		default:
			mw.metrics.IncrementCacheLookup("error")
			mw.logger.WarnContext(ctx, "response cache lookup failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}

		w.Header().Set(HeaderCache, "MISS")
		var buf bytes.Buffer
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Tee(&buf)

		next.ServeHTTP(ww, r)

		if ww.Status() != http.StatusOK {
			return
		}
		stored := models.Entry{
			Status:      http.StatusOK,
			ContentType: ww.Header().Get("Content-Type"),
			Body:        buf.Bytes(),
			StoredAt:    requestcontext.Now(ctx),
		}
		if err := mw.store.Set(ctx, key, stored, mw.ttl); err != nil {
			mw.logger.WarnContext(ctx, "response cache store failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
	})
}
