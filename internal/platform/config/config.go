package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	platformstrings "equityshield/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr    string
	Version string
	// APIKey is the pre-shared credential. Empty means protected routes
	// answer with a configuration error instead of serving data.
	APIKey string

	Log       LogConfig
	Data      DataConfig
	Cache     CacheConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Banking   BankingConfig
	Audit     AuditConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// DataConfig locates the JSON snapshots. File names are relative to Dir.
type DataConfig struct {
	Dir                    string
	CorporateStructureFile string
	RealAssetsFile         string
	TrackedSymbols         []string
}

type CacheConfig struct {
	TTL      time.Duration
	Disabled bool
}

// RedisConfig switches the response cache to Redis when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RateLimitConfig sets per-client budgets. BreakerTripAfter consecutive Redis
// errors move checks to in-process budgets until BreakerRestoreAfter
// consecutive Redis checks succeed.
type RateLimitConfig struct {
	PerMinute           int
	PerDay              int
	Disabled            bool
	BreakerTripAfter    int
	BreakerRestoreAfter int
}

// BankingConfig seeds the mock bank directory and the static banking-info record.
type BankingConfig struct {
	DirectoryFile string

	CitiAccountNumber     string
	CitiRoutingNumber     string
	JPMorganAccountNumber string
	JPMorganRoutingNumber string

	InfoBankName      string
	InfoRoutingNumber string
	InfoAccountNumber string
	InfoEIN           string
}

// AuditConfig sends audit events to Kafka when Brokers is non-empty. Otherwise
// the newest MemoryCapacity events are kept in process.
type AuditConfig struct {
	Brokers        []string
	Topic          string
	MemoryCapacity int
}

// ResponseCacheTTL is the default freshness window for cached responses.
var ResponseCacheTTL = 5 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present; real
// environment variables win over it.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	var p parser
	cfg := Server{
		Addr:    p.str("EQUITY_SHIELD_ADDR", ":8000"),
		Version: p.str("APP_VERSION", "1.0.0"),
		APIKey:  os.Getenv("API_KEY"),
		Log: LogConfig{
			Level:  p.str("LOG_LEVEL", "info"),
			Format: p.str("LOG_FORMAT", "json"),
		},
		Data: DataConfig{
			Dir:                    p.str("DATA_DIR", "data"),
			CorporateStructureFile: p.str("CORPORATE_STRUCTURE_FILE", "corporate_structure.json"),
			RealAssetsFile:         p.str("REAL_ASSETS_FILE", "real_assets_under_management.json"),
			TrackedSymbols:         platformstrings.DedupeAndTrimUpper(p.list("TRACKED_SYMBOLS", nil)),
		},
		Cache: CacheConfig{
			TTL:      p.duration("CACHE_TTL", ResponseCacheTTL),
			Disabled: p.boolean("CACHE_DISABLED", false),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		RateLimit: RateLimitConfig{
			PerMinute: p.integer("RATE_LIMIT_PER_MINUTE", 100),
			PerDay:    p.integer("RATE_LIMIT_PER_DAY", 5000),
			Disabled:  p.boolean("RATE_LIMIT_DISABLED", false),

			BreakerTripAfter:    p.integer("RATE_LIMIT_BREAKER_TRIP_AFTER", 5),
			BreakerRestoreAfter: p.integer("RATE_LIMIT_BREAKER_RESTORE_AFTER", 3),
		},
		Banking: BankingConfig{
			DirectoryFile:         os.Getenv("BANK_DIRECTORY_FILE"),
			CitiAccountNumber:     p.str("CITI_ACCOUNT_NUMBER", "1234567890123456"),
			CitiRoutingNumber:     p.str("CITI_ROUTING_NUMBER", "021000089"),
			JPMorganAccountNumber: p.str("JPMORGAN_ACCOUNT_NUMBER", "9876543210987654"),
			JPMorganRoutingNumber: p.str("JPMORGAN_ROUTING_NUMBER", "021000021"),
			InfoBankName:          p.str("BANKING_INFO_BANK_NAME", "JPMorgan Chase"),
			InfoRoutingNumber:     p.str("BANKING_INFO_ROUTING_NUMBER", "021000021"),
			InfoAccountNumber:     p.str("BANKING_INFO_ACCOUNT_NUMBER", "546910413"),
			InfoEIN:               p.str("BANKING_INFO_EIN", "12-3456789"),
		},
		Audit: AuditConfig{
			Brokers:        platformstrings.DedupeAndTrim(p.list("KAFKA_BROKERS", nil)),
			Topic:          p.str("AUDIT_TOPIC", "equityshield.audit"),
			MemoryCapacity: p.integer("AUDIT_MEMORY_CAPACITY", 1024),
		},
	}

	if p.err != nil {
		return Server{}, p.err
	}
	if cfg.RateLimit.PerMinute <= 0 || cfg.RateLimit.PerDay <= 0 {
		return Server{}, fmt.Errorf("rate limits must be positive (per minute %d, per day %d)",
			cfg.RateLimit.PerMinute, cfg.RateLimit.PerDay)
	}
	if cfg.RateLimit.BreakerTripAfter <= 0 || cfg.RateLimit.BreakerRestoreAfter <= 0 {
		return Server{}, fmt.Errorf("rate limit breaker thresholds must be positive (trip after %d, restore after %d)",
			cfg.RateLimit.BreakerTripAfter, cfg.RateLimit.BreakerRestoreAfter)
	}
	if cfg.Audit.MemoryCapacity <= 0 {
		return Server{}, fmt.Errorf("audit memory capacity must be positive, got %d", cfg.Audit.MemoryCapacity)
	}
	return cfg, nil
}

// parser reads typed values and keeps the first conversion error.
type parser struct {
	err error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return n
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return d
}

func (p *parser) boolean(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return b
}

// list splits a comma-separated value, dropping blanks.
func (p *parser) list(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
}
