package httptransport

import (
	"net/http"
	"time"

	"equityshield/pkg/platform/httputil"
	"equityshield/pkg/requestcontext"
)

// HealthResponse is the unauthenticated liveness body. It is not wrapped in
// the envelope.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HandleHealth reports liveness only. It touches no snapshot so it stays
// green while data files are missing.
func HandleHealth(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:    "healthy",
			Timestamp: requestcontext.Now(r.Context()).Format(time.RFC3339),
			Version:   version,
		})
	}
}
