// Package ports defines shared interfaces for the ratelimit module.
// Interfaces are placed here when consumed by multiple packages to avoid duplication.
package ports

import (
	"context"
	"time"

	"equityshield/internal/ratelimit/models"
	"equityshield/pkg/platform/audit"
)

// AuditPublisher emits audit events for security-relevant operations.
type AuditPublisher = audit.Emitter

// BucketStore manages sliding window rate limit counters.
type BucketStore interface {
	// Allow checks if a single request is allowed and records it if so.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}
