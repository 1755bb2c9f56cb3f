package models

import (
	"net/http"
	"time"
)

// Entry is a captured 200 response. Only Content-Type is kept from the
// headers; request-scoped headers (request id, rate limit) are recomputed.
type Entry struct {
	Status      int       `json:"status"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	StoredAt    time.Time `json:"stored_at"`
}

// Replay writes the cached status, headers and body to w.
func (e *Entry) Replay(w http.ResponseWriter) {
	if e.ContentType != "" {
		w.Header().Set("Content-Type", e.ContentType)
	}
	w.WriteHeader(e.Status)
	_, _ = w.Write(e.Body)
}
