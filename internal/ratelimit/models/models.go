package models

import (
	"time"
)

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
	// Window names the budget that produced this result ("minute" or "day").
	Window string `json:"window"`
}

// Window is one rolling budget applied per client address.
type Window struct {
	Name     string
	Limit    int
	Duration time.Duration
}

// DefaultWindows are checked in order; the first exhausted window rejects.
func DefaultWindows(perMinute, perDay int) []Window {
	return []Window{
		{Name: "minute", Limit: perMinute, Duration: time.Minute},
		{Name: "day", Limit: perDay, Duration: 24 * time.Hour},
	}
}

// RetryAfterSeconds rounds the wait until resetAt up to whole seconds, with a
// floor of one second so clients never retry immediately.
func RetryAfterSeconds(now, resetAt time.Time) int {
	d := resetAt.Sub(now)
	if d <= 0 {
		return 1
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
