package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	bankinghandler "equityshield/internal/banking/handler"
	"equityshield/internal/banking/models"
	bankingservice "equityshield/internal/banking/service"
	"equityshield/internal/banking/store/directory"
	cachemw "equityshield/internal/cache/middleware"
	cachememory "equityshield/internal/cache/store/memory"
	cacheredis "equityshield/internal/cache/store/redis"
	corporatehandler "equityshield/internal/corporate/handler"
	corporateservice "equityshield/internal/corporate/service"
	"equityshield/internal/corporate/store/snapshot"
	"equityshield/internal/platform/config"
	"equityshield/internal/platform/httpserver"
	"equityshield/internal/platform/logger"
	"equityshield/internal/platform/metrics"
	"equityshield/internal/platform/redis"
	ratelimitmw "equityshield/internal/ratelimit/middleware"
	ratelimitmodels "equityshield/internal/ratelimit/models"
	"equityshield/internal/ratelimit/service/requestlimit"
	"equityshield/internal/ratelimit/store/bucket"
	httptransport "equityshield/internal/transport/http"
	"equityshield/pkg/platform/audit"
	"equityshield/pkg/platform/audit/publisher"
	"equityshield/pkg/platform/audit/publishers/compliance"
	kafkastore "equityshield/pkg/platform/audit/store/kafka"
	auditmemory "equityshield/pkg/platform/audit/store/memory"
)

const (
	shutdownTimeout = 10 * time.Second
	pruneInterval   = time.Minute
	auditBufferSize = 1024
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	if cfg.APIKey == "" {
		log.Warn("API_KEY is not set; every /api request will answer with configuration_error")
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("redis connected")
	}

	auditStore, closeAudit, err := newAuditStore(ctx, cfg.Audit, log)
	if err != nil {
		return err
	}
	defer closeAudit()
	securityAuditor := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	defer securityAuditor.Close()
	complianceAuditor := compliance.New(auditStore, compliance.WithLogger(log))

	snapshots := snapshot.New(os.DirFS(cfg.Data.Dir), cfg.Data.CorporateStructureFile, cfg.Data.RealAssetsFile,
		snapshot.WithLogger(log),
		snapshot.WithMetrics(m),
		snapshot.WithAuditor(securityAuditor),
	)
	if _, err := snapshots.Structure(ctx); err != nil {
		log.Warn("corporate structure not loaded at start-up; requests will retry", "error", err)
	}
	query := corporateservice.New(snapshots,
		corporateservice.WithLogger(log),
		corporateservice.WithTrackedSymbols(cfg.Data.TrackedSymbols),
	)

	bankDir, err := newBankDirectory(cfg.Banking)
	if err != nil {
		return err
	}
	log.Info("bank directory loaded", "banks", bankDir.IDs())
	registry := bankingservice.New(bankDir, models.BankingInfo{
		BankName:      cfg.Banking.InfoBankName,
		RoutingNumber: cfg.Banking.InfoRoutingNumber,
		AccountNumber: cfg.Banking.InfoAccountNumber,
		EINNumber:     cfg.Banking.InfoEIN,
	},
		bankingservice.WithLogger(log),
		bankingservice.WithAuditor(complianceAuditor),
		bankingservice.WithMetrics(m),
	)

	memBuckets := bucket.NewInMemoryBucketStore()
	rateLimit, err := newRateLimiter(cfg, log, m, securityAuditor, redisClient, memBuckets)
	if err != nil {
		return err
	}

	deps := httptransport.Dependencies{
		Logger:    log,
		Metrics:   m,
		Gatherer:  reg,
		Auditor:   securityAuditor,
		APIKey:    cfg.APIKey,
		Version:   cfg.Version,
		RateLimit: rateLimit.RateLimit,
		Handlers: []httptransport.RouteRegistrar{
			corporatehandler.New(query, log),
			bankinghandler.New(registry, log),
		},
	}

	var memCache *cachememory.InMemoryStore
	if !cfg.Cache.Disabled {
		var store cachemw.Store
		if redisClient != nil {
			store = cacheredis.New(redisClient.Client)
		} else {
			memCache = cachememory.New()
			store = memCache
		}
		deps.Cache = cachemw.New(store, cfg.Cache.TTL, log, cachemw.WithMetrics(m)).Cache
	}

	go prune(ctx, log, memBuckets, memCache)

	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(deps))
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting equityshield", "addr", cfg.Addr, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// newAuditStore returns the Kafka store when brokers are configured and the
// in-memory store otherwise.
func newAuditStore(ctx context.Context, cfg config.AuditConfig, log *slog.Logger) (audit.Store, func(), error) {
	if len(cfg.Brokers) == 0 {
		log.Info("audit events kept in memory", "capacity", cfg.MemoryCapacity)
		return auditmemory.NewInMemoryStore(auditmemory.WithCapacity(cfg.MemoryCapacity)), func() {}, nil
	}
	store, err := kafkastore.New(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, nil, err
	}
	if err := store.EnsureTopic(ctx, 1, 1); err != nil {
		store.Close()
		return nil, nil, err
	}
	log.Info("audit events published to kafka", "topic", cfg.Topic)
	return store, store.Close, nil
}

func newBankDirectory(cfg config.BankingConfig) (*directory.Directory, error) {
	if cfg.DirectoryFile == "" {
		return directory.FromConfig(cfg)
	}
	f, err := os.Open(cfg.DirectoryFile)
	if err != nil {
		return nil, fmt.Errorf("open bank directory: %w", err)
	}
	defer f.Close()
	return directory.FromYAML(f)
}

// newRateLimiter checks Redis first when it is configured and falls back to
// the in-memory buckets while Redis is failing.
func newRateLimiter(cfg config.Server, log *slog.Logger, m *metrics.Metrics, auditor audit.Emitter,
	redisClient *redis.Client, memBuckets *bucket.InMemoryBucketStore,
) (*ratelimitmw.Middleware, error) {
	newLimiter := func(store requestlimit.BucketStore) (*requestlimit.Service, error) {
		return requestlimit.New(store,
			requestlimit.WithWindows(ratelimitmodels.DefaultWindows(cfg.RateLimit.PerMinute, cfg.RateLimit.PerDay)...),
			requestlimit.WithLogger(log),
			requestlimit.WithMetrics(m),
			requestlimit.WithAuditPublisher(auditor),
		)
	}

	local, err := newLimiter(memBuckets)
	if err != nil {
		return nil, err
	}
	if redisClient == nil {
		return ratelimitmw.New(local, log, ratelimitmw.WithDisabled(cfg.RateLimit.Disabled)), nil
	}

	shared, err := newLimiter(bucket.NewRedisBucketStore(redisClient.Client))
	if err != nil {
		return nil, err
	}
	return ratelimitmw.New(shared, log,
		ratelimitmw.WithDisabled(cfg.RateLimit.Disabled),
		ratelimitmw.WithFallback(local),
		ratelimitmw.WithBreaker(cfg.RateLimit.BreakerTripAfter, cfg.RateLimit.BreakerRestoreAfter),
		ratelimitmw.WithMetrics(m),
	), nil
}

// prune drops expired in-memory state until ctx ends. memCache may be nil.
func prune(ctx context.Context, log *slog.Logger, buckets *bucket.InMemoryBucketStore, memCache *cachememory.InMemoryStore) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := buckets.Prune(ctx)
			if memCache != nil {
				n += memCache.Prune()
			}
			if n > 0 {
				log.Debug("pruned expired entries", "count", n)
			}
		}
	}
}
