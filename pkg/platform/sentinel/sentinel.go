package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into domain errors.
//
//   - ErrNotFound: key does not exist in the store
//   - ErrExpired: entry existed but its TTL has elapsed
//   - ErrInvalidState: store or record is in a shape it should never be in
//   - ErrUnavailable: backing resource could not be reached or read
var (
	ErrNotFound     = errors.New("not found")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
