package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/mfagate/internal/auth/service"
	"github.com/aussiebroadwan/mfagate/internal/auth/store"
	"github.com/aussiebroadwan/mfagate/pkg/authsdk"
	"github.com/aussiebroadwan/mfagate/pkg/httpx"
	"github.com/aussiebroadwan/mfagate/pkg/slogx"
)

// HealthHandler godoc
//
//	@Summary		Service counters
//	@Description	Registered users and live sessions at the time of the call.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.ServiceHealthResponse
//	@Failure		500	{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/api/health [get].
func HealthHandler(auth *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := auth.Health(r.Context())
		if err != nil {
			slogx.FromContext(r.Context()).Error("health check failed", "error", err)
			authsdk.ErrServerError.WriteError(w)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, authsdk.ServiceHealthResponse{
			Status:        "OK",
			Timestamp:     h.Timestamp.Format(time.RFC3339Nano),
			UsersCount:    h.UsersCount,
			SessionsCount: h.SessionsCount,
			Message:       "Server is running correctly!",
		})
	}
}

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe endpoint returning basic service health status, uptime, and version information
//	@Description	This endpoint always returns 200 OK if the service is running
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint; pings the store
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{Database: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			slogx.FromContext(r.Context()).Warn("readiness ping failed", "error", err)
			checks.Database = "error"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
