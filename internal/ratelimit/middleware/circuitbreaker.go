package middleware

import (
	"sync"
	"time"
)

const (
	defaultTripAfter    = 5
	defaultRestoreAfter = 3
)

type breakerChange int

const (
	breakerUnchanged breakerChange = iota
	breakerTripped
	breakerRestored
)

// breaker decides whether the shared limiter can be trusted. Every request
// still checks the shared limiter; while tripped its answers are discarded in
// favour of the in-process fallback until restoreAfter checks in a row succeed.
type breaker struct {
	mu           sync.Mutex
	tripAfter    int
	restoreAfter int

	tripped   bool
	failRun   int
	okRun     int
	trippedAt time.Time
}

func newBreaker(tripAfter, restoreAfter int) *breaker {
	if tripAfter <= 0 {
		tripAfter = defaultTripAfter
	}
	if restoreAfter <= 0 {
		restoreAfter = defaultRestoreAfter
	}
	return &breaker{tripAfter: tripAfter, restoreAfter: restoreAfter}
}

func (b *breaker) Tripped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tripped
}

// Observe records one shared-limiter outcome at now. On breakerRestored the
// returned duration is how long the breaker stayed tripped.
func (b *breaker) Observe(err error, now time.Time) (breakerChange, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.okRun = 0
		b.failRun++
		if !b.tripped && b.failRun >= b.tripAfter {
			b.tripped = true
			b.trippedAt = now
			return breakerTripped, 0
		}
		return breakerUnchanged, 0
	}

	b.failRun = 0
	if !b.tripped {
		return breakerUnchanged, 0
	}
	b.okRun++
	if b.okRun < b.restoreAfter {
		return breakerUnchanged, 0
	}
	b.tripped = false
	b.okRun = 0
	return breakerRestored, now.Sub(b.trippedAt)
}
