package testutil

import (
	"net/http"

	"equityshield/pkg/requestcontext"
)

// APIKeyHeader is the header the API key gate reads.
const APIKeyHeader = "X-API-KEY"

// WithAPIKey sets the credential header on the request.
func WithAPIKey(req *http.Request, key string) *http.Request {
	req.Header.Set(APIKeyHeader, key)
	return req
}

// WithClientIP simulates what the client metadata middleware stores, for
// handler tests that skip the full chain.
func WithClientIP(req *http.Request, ip string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, req.UserAgent())
	return req.WithContext(ctx)
}

// WithRemoteAddr sets RemoteAddr so the metadata middleware derives ip.
func WithRemoteAddr(req *http.Request, ip string) *http.Request {
	req.RemoteAddr = ip + ":40000"
	return req
}
