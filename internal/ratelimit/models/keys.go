package models

import "strings"

// KeyPrefix namespaces rate limit keys.
type KeyPrefix string

const KeyPrefixIP KeyPrefix = "ip"

// RateLimitKey identifies one bucket: prefix, identifier and window name.
type RateLimitKey struct {
	Prefix     KeyPrefix
	Identifier string
	Window     string
}

func NewRateLimitKey(prefix KeyPrefix, identifier, window string) RateLimitKey {
	return RateLimitKey{Prefix: prefix, Identifier: identifier, Window: window}
}

// String renders "ratelimit:<prefix>:<identifier>:<window>".
func (k RateLimitKey) String() string {
	return "ratelimit:" + string(k.Prefix) + ":" + SanitizeKeySegment(k.Identifier) + ":" + SanitizeKeySegment(k.Window)
}

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// to prevent key collision attacks where client-controlled identifiers
// containing ':' could manipulate adjacent buckets.
//
// IPv6 addresses contain ':' as well, so "::1" becomes "__1".
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
