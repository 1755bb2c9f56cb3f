// Package httputil holds the JSON envelope written by every endpoint and the
// translation from domain error codes to HTTP status.
package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	dErrors "equityshield/pkg/domain-errors"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	genericInternalMessage = "An internal error occurred"
)

// Envelope is the single response shape for success and error bodies.
type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	*Pagination
}

// Pagination is flattened into the envelope for list endpoints.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess wraps data in a success envelope.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Data: data})
}

// WritePage wraps a page of results and its metadata in a success envelope.
// A nil slice is still rendered as an empty list by the caller's conversion.
func WritePage(w http.ResponseWriter, data any, p Pagination) {
	WriteJSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Data: data, Pagination: &p})
}

// WriteError maps err onto the error envelope. Non-domain errors and internal
// codes never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	msg := genericInternalMessage
	if de, ok := dErrors.As(err); ok && code != dErrors.CodeInternal {
		msg = de.Message
	}
	WriteJSON(w, ToHTTPStatus(code), Envelope{
		Status:  StatusError,
		Error:   string(code),
		Message: msg,
	})
}

// ToHTTPStatus maps a domain code to its HTTP status.
func ToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeInvalidArgument:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case dErrors.CodeDataUnavailable, dErrors.CodeConfiguration, dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// IsServerFault reports whether err maps to a 5xx status.
func IsServerFault(err error) bool {
	return ToHTTPStatus(dErrors.CodeOf(err)) >= http.StatusInternalServerError
}

// DecodeJSON decodes the request body into T. An empty or malformed body is
// an invalid argument.
func DecodeJSON[T any](r *http.Request) (*T, error) {
	if r.Body == nil {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "request body is required")
	}
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidArgument, "invalid JSON request body")
	}
	return &v, nil
}

// URLParam returns the decoded value of a chi path parameter. chi matches on
// r.URL.RawPath whenever the client escaped characters such as '&' or '+', and
// the captured segment is then still percent-encoded.
func URLParam(r *http.Request, key string) (string, error) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, nil
	}
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidArgument, fmt.Sprintf("Invalid %s parameter encoding", key))
	}
	return decoded, nil
}
