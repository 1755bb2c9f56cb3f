package httptransport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	bankinghandler "equityshield/internal/banking/handler"
	bankingmodels "equityshield/internal/banking/models"
	bankingservice "equityshield/internal/banking/service"
	"equityshield/internal/banking/store/directory"
	cachemw "equityshield/internal/cache/middleware"
	cachememory "equityshield/internal/cache/store/memory"
	corporatehandler "equityshield/internal/corporate/handler"
	corporatemodels "equityshield/internal/corporate/models"
	corporateservice "equityshield/internal/corporate/service"
	"equityshield/internal/corporate/store/snapshot"
	"equityshield/internal/platform/config"
	"equityshield/internal/platform/metrics"
	ratelimitmw "equityshield/internal/ratelimit/middleware"
	ratelimitmodels "equityshield/internal/ratelimit/models"
	"equityshield/internal/ratelimit/service/requestlimit"
	"equityshield/internal/ratelimit/store/bucket"
	"equityshield/pkg/platform/audit"
	"equityshield/pkg/platform/audit/store/memory"
	"equityshield/pkg/testutil"
)

const testAPIKey = "secret-api-key"

const structureJSON = `{
  "Technology": [
    {"name": "Microsoft Corp", "ticker": "MSFT", "market_cap": 3000000000000, "revenue": 270000000000}
  ],
  "Financials": [
    {"name": "JPMorgan Chase", "ticker": "JPM", "market_cap": null, "revenue": null},
    {"name": "Berkshire Hathaway", "ticker": "BRK+B", "market_cap": null, "revenue": null}
  ],
  "Oil & Gas": [
    {"name": "Exxon Mobil", "ticker": "XOM", "market_cap": null, "revenue": null}
  ]
}`

const metricsJSON = `{
  "MSFT": {"market_cap": 3000000000000, "revenue": 270000000000, "last_updated": "2025-06-30"},
  "JPM":  {"market_cap": 570000000000, "revenue": null}
}`

type appOptions struct {
	apiKey        string
	perMinute     int
	noCache       bool
	auditCapacity int
	extra         []RouteRegistrar
}

type app struct {
	handler    http.Handler
	auditStore *memory.InMemoryStore
}

func newApp(t *testing.T, opts appOptions) app {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	auditStore := memory.NewInMemoryStore(memory.WithCapacity(opts.auditCapacity))

	fsys := fstest.MapFS{
		"corporate_structure.json":          {Data: []byte(structureJSON)},
		"real_assets_under_management.json": {Data: []byte(metricsJSON)},
	}
	snapshots := snapshot.New(fsys, "corporate_structure.json", "real_assets_under_management.json",
		snapshot.WithLogger(logger), snapshot.WithMetrics(m))
	query := corporateservice.New(snapshots, corporateservice.WithLogger(logger))

	dir, err := directory.FromConfig(config.BankingConfig{
		CitiAccountNumber:     "1234567890123456",
		CitiRoutingNumber:     "021000089",
		JPMorganAccountNumber: "9876543210987654",
		JPMorganRoutingNumber: "021000021",
	})
	require.NoError(t, err)
	registry := bankingservice.New(dir, bankingmodels.BankingInfo{
		BankName: "JPMorgan Chase", RoutingNumber: "021000021", AccountNumber: "546910413", EINNumber: "12-3456789",
	}, bankingservice.WithLogger(logger), bankingservice.WithAuditor(auditStoreEmitter{auditStore}), bankingservice.WithMetrics(m))

	perMinute := opts.perMinute
	if perMinute == 0 {
		perMinute = 100
	}
	limiter, err := requestlimit.New(bucket.NewInMemoryBucketStore(),
		requestlimit.WithWindows(ratelimitmodels.DefaultWindows(perMinute, 5000)...),
		requestlimit.WithLogger(logger),
		requestlimit.WithMetrics(m),
		requestlimit.WithAuditPublisher(auditStoreEmitter{auditStore}),
	)
	require.NoError(t, err)

	deps := Dependencies{
		Logger:    logger,
		Metrics:   m,
		Gatherer:  reg,
		Auditor:   auditStoreEmitter{auditStore},
		APIKey:    opts.apiKey,
		Version:   "1.0.0-test",
		RateLimit: ratelimitmw.New(limiter, logger).RateLimit,
		Handlers: []RouteRegistrar{
			corporatehandler.New(query, logger),
			bankinghandler.New(registry, logger),
		},
	}
	deps.Handlers = append(deps.Handlers, opts.extra...)
	if !opts.noCache {
		deps.Cache = cachemw.New(cachememory.New(), config.ResponseCacheTTL, logger, cachemw.WithMetrics(m)).Cache
	}
	return app{handler: NewRouter(deps), auditStore: auditStore}
}

// auditStoreEmitter emits straight into a store so tests can read events back
// synchronously.
type auditStoreEmitter struct {
	store audit.Store
}

func (e auditStoreEmitter) Emit(ctx context.Context, event audit.Event) error {
	return e.store.Append(ctx, event)
}

func get(t *testing.T, h http.Handler, path, key string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewRequest(t, http.MethodGet, path)
	if key != "" {
		testutil.WithAPIKey(req, key)
	}
	return testutil.DoRequest(h, req)
}

type RouterSuite struct {
	suite.Suite
	app app
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.app = newApp(s.T(), appOptions{apiKey: testAPIKey})
}

func (s *RouterSuite) TestHealthIsUnauthenticated() {
	rr := get(s.T(), s.app.handler, "/health", "")

	s.Equal(http.StatusOK, rr.Code)
	var body HealthResponse
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &body))
	s.Equal("healthy", body.Status)
	s.Equal("1.0.0-test", body.Version)
	s.NotEmpty(body.Timestamp)
	s.NotEmpty(rr.Header().Get("X-Request-ID"))
}

func (s *RouterSuite) TestMetricsIsUnauthenticated() {
	get(s.T(), s.app.handler, "/api/real-assets", testAPIKey)

	rr := get(s.T(), s.app.handler, "/metrics", "")
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "equityshield_http_request_duration_seconds")
	s.Contains(rr.Body.String(), `route="/api/real-assets"`)
}

func (s *RouterSuite) TestCompaniesBySectorScenario() {
	rr := get(s.T(), s.app.handler, "/api/companies/Technology", testAPIKey)

	testutil.AssertStatusOK(s.T(), rr)
	var companies []corporatemodels.Company
	env := testutil.DecodeEnvelope(s.T(), rr, &companies)
	s.Equal("success", env.Status)
	s.Require().Len(companies, 1)
	s.Equal("Microsoft Corp", companies[0].Name)
	s.Equal("MSFT", companies[0].Ticker)
	s.Equal(float64(3000000000000), *companies[0].MarketCap)
	s.Equal(float64(270000000000), *companies[0].Revenue)
	s.Equal(1, env.Total)
}

func (s *RouterSuite) TestTickerLookupIsCaseInsensitive() {
	upper := get(s.T(), s.app.handler, "/api/company/MSFT", testAPIKey)
	lower := get(s.T(), s.app.handler, "/api/company/msft", testAPIKey)

	testutil.AssertStatusOK(s.T(), upper)
	s.JSONEq(upper.Body.String(), lower.Body.String())
	s.Contains(upper.Body.String(), `"sector":"Technology"`)
}

func (s *RouterSuite) TestEscapedPathSegments() {
	for _, path := range []string{"/api/companies/Oil%20%26%20Gas", "/api/companies/Oil%20&%20Gas"} {
		rr := get(s.T(), s.app.handler, path, testAPIKey)
		testutil.AssertStatusOK(s.T(), rr)
		var companies []corporatemodels.Company
		testutil.DecodeEnvelope(s.T(), rr, &companies)
		s.Require().Len(companies, 1, path)
		s.Equal("XOM", companies[0].Ticker)
	}

	rr := get(s.T(), s.app.handler, "/api/company/brk%2Bb", testAPIKey)
	testutil.AssertStatusOK(s.T(), rr)
	s.Contains(rr.Body.String(), `"ticker":"BRK+B"`)
	s.Contains(rr.Body.String(), `"sector":"Financials"`)

	rr = get(s.T(), s.app.handler, "/api/companies/Gas%20%26%20Oil", testAPIKey)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	s.Contains(rr.Body.String(), "Sector 'Gas & Oil' not found")
}

func (s *RouterSuite) TestEmptySegmentsAreBadRequests() {
	testutil.AssertStatusAndError(s.T(), get(s.T(), s.app.handler, "/api/companies/", testAPIKey), http.StatusBadRequest, "invalid_argument")
	testutil.AssertStatusAndError(s.T(), get(s.T(), s.app.handler, "/api/company/", testAPIKey), http.StatusBadRequest, "invalid_argument")
}

func (s *RouterSuite) TestRealAssetsNullsSortLast() {
	rr := get(s.T(), s.app.handler, "/api/real-assets?sort_by=revenue&sort_order=desc", testAPIKey)

	testutil.AssertStatusOK(s.T(), rr)
	var records []corporatemodels.AssetRecord
	env := testutil.DecodeEnvelope(s.T(), rr, &records)
	s.Require().Len(records, 2)
	s.Equal("MSFT", records[0].Symbol)
	s.Equal("JPM", records[1].Symbol)
	s.Nil(records[1].Revenue)
	s.Equal(2, env.Total)
	s.Equal(1, env.TotalPages)
}

func (s *RouterSuite) TestAuthGate() {
	s.Run("missing key", func() {
		rr := get(s.T(), s.app.handler, "/api/corporate-structure", "")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("wrong key", func() {
		rr := get(s.T(), s.app.handler, "/api/corporate-structure", "nope")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("unknown api path still needs a key", func() {
		rr := get(s.T(), s.app.handler, "/api/does-not-exist", "")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("server without a key", func() {
		app := newApp(s.T(), appOptions{})
		rr := get(s.T(), app.handler, "/api/corporate-structure", testAPIKey)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, "configuration_error")
	})

	events, err := s.app.auditStore.ListByAction(context.Background(), audit.EventAuthRejected)
	s.Require().NoError(err)
	s.Len(events, 3)
}

func (s *RouterSuite) TestRejectedRequestsDoNotGrowAuditRetention() {
	app := newApp(s.T(), appOptions{apiKey: testAPIKey, auditCapacity: 10})

	for range 50 {
		rr := get(s.T(), app.handler, "/api/corporate-structure", "")
		s.Require().Equal(http.StatusUnauthorized, rr.Code)
	}

	events, err := app.auditStore.ListAll(context.Background())
	s.Require().NoError(err)
	s.Len(events, 10)
}

func (s *RouterSuite) TestRateLimit() {
	app := newApp(s.T(), appOptions{apiKey: testAPIKey, perMinute: 2, noCache: true})

	for range 2 {
		rr := get(s.T(), app.handler, "/api/banking-info", testAPIKey)
		s.Require().Equal(http.StatusOK, rr.Code)
		s.Equal("2", rr.Header().Get("X-RateLimit-Limit"))
	}

	rr := get(s.T(), app.handler, "/api/banking-info", testAPIKey)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, "rate_limited")
	s.NotEmpty(rr.Header().Get("Retry-After"))
	s.Equal("0", rr.Header().Get("X-RateLimit-Remaining"))

	other := testutil.NewRequest(s.T(), http.MethodGet, "/api/banking-info")
	testutil.WithAPIKey(testutil.WithRemoteAddr(other, "198.51.100.7"), testAPIKey)
	s.Equal(http.StatusOK, testutil.DoRequest(app.handler, other).Code, "budgets are per client address")

	events, err := app.auditStore.ListByAction(context.Background(), audit.EventRateLimitExceeded)
	s.Require().NoError(err)
	s.NotEmpty(events)
}

func (s *RouterSuite) TestResponseCache() {
	first := get(s.T(), s.app.handler, "/api/companies/Technology", testAPIKey)
	second := get(s.T(), s.app.handler, "/api/companies/Technology", testAPIKey)

	s.Equal("MISS", first.Header().Get(cachemw.HeaderCache))
	s.Equal("HIT", second.Header().Get(cachemw.HeaderCache))
	s.Equal(first.Body.String(), second.Body.String())

	otherQuery := get(s.T(), s.app.handler, "/api/companies/Technology?page=1", testAPIKey)
	s.Equal("MISS", otherQuery.Header().Get(cachemw.HeaderCache))

	notFound := get(s.T(), s.app.handler, "/api/companies/Nope", testAPIKey)
	again := get(s.T(), s.app.handler, "/api/companies/Nope", testAPIKey)
	s.Equal(http.StatusNotFound, notFound.Code)
	s.Equal("MISS", again.Header().Get(cachemw.HeaderCache), "errors are never cached")
}

func (s *RouterSuite) TestBanking() {
	s.Run("account lookup", func() {
		rr := get(s.T(), s.app.handler, "/api/banks/citi-private-bank/account", testAPIKey)
		testutil.AssertStatusOK(s.T(), rr)
		s.Contains(rr.Body.String(), `"bank_name":"Citi Private Bank"`)

		rr = get(s.T(), s.app.handler, "/api/banks/nonexistent-bank/account", testAPIKey)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("transfer", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/banks/transfer", map[string]any{
			"from_bank": "citi-private-bank",
			"to_bank":   "citi-private-bank",
			"amount":    1000,
			"currency":  "USD",
		})
		rr := testutil.DoRequest(s.app.handler, testutil.WithAPIKey(req, testAPIKey))

		testutil.AssertStatusOK(s.T(), rr)
		var result map[string]any
		testutil.DecodeEnvelope(s.T(), rr, &result)
		assert.Equal(s.T(), "success", result["status"])
		assert.Equal(s.T(), float64(1000), result["amount"])
		assert.True(s.T(), strings.HasPrefix(result["transfer_id"].(string), "TRX"))
		assert.Empty(s.T(), rr.Header().Get(cachemw.HeaderCache), "POST bypasses the cache")

		events, err := s.app.auditStore.ListByAction(context.Background(), audit.EventTransferInitiated)
		require.NoError(s.T(), err)
		assert.Len(s.T(), events, 1)
	})

	s.Run("validate routing", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/banks/validate-routing", `{"routing_number":"021000089"}`)
		rr := testutil.DoRequest(s.app.handler, testutil.WithAPIKey(req, testAPIKey))
		s.JSONEq(`{"status":"success","data":{"routing_number":"021000089","valid":true}}`, rr.Body.String())
	})
}

type panicRoute struct{}

func (panicRoute) Register(r chi.Router) {
	r.Get("/explode", func(http.ResponseWriter, *http.Request) { panic("boom") })
}

func (s *RouterSuite) TestPanicsAreEnvelopedAndMeasured() {
	app := newApp(s.T(), appOptions{apiKey: testAPIKey, extra: []RouteRegistrar{panicRoute{}}})

	rr := get(s.T(), app.handler, "/api/explode", testAPIKey)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, "internal_error")
	s.NotContains(rr.Body.String(), "boom")

	metricsBody := get(s.T(), app.handler, "/metrics", "").Body.String()
	s.Contains(metricsBody, `route="/api/explode"`)
	s.Contains(metricsBody, `status="500"`)
}

func (s *RouterSuite) TestUnknownRoutesUseTheEnvelope() {
	rr := get(s.T(), s.app.handler, "/nowhere", "")
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")

	rr = testutil.DoRequest(s.app.handler, testutil.NewRequest(s.T(), http.MethodPost, "/health"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusMethodNotAllowed, "method_not_allowed")
}
