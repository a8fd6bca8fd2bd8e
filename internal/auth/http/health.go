package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tokengate/pkg/authsdk"
	"github.com/aussiebroadwan/tokengate/pkg/httpx"
)

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReporter reports whether a background dependency is usable.
type HealthReporter interface {
	Healthy() bool
}

// ServiceInfo identifies the running process in probe responses.
type ServiceInfo struct {
	Started      time.Time
	Version      string
	InstanceUUID string
}

func (s ServiceInfo) health(status string) authsdk.HealthResponse {
	return authsdk.HealthResponse{
		Status:       status,
		Uptime:       time.Since(s.Started).Round(time.Second).String(),
		Version:      s.Version,
		InstanceUUID: s.InstanceUUID,
	}
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Returns 200 while the process is serving requests. Dependencies are not checked.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, instance"
//	@Router			/livez [get].
func LivezHandler(info ServiceInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, info.health("ok"))
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the token store and the tenant hierarchy. Any failing check reports 503.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"all checks ok"
//	@Failure		503	{object}	authsdk.HealthResponse	"at least one check failed"
//	@Router			/readyz [get].
func ReadyzHandler(info ServiceInfo, db Pinger, tenants HealthReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{Database: "ok", Tenants: "ok"}
		ready := true

		if err := db.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			ready = false
		}

		// A failed reload keeps serving the previous snapshot, so this is
		// degraded rather than fatal for validation.
		if !tenants.Healthy() {
			checks.Tenants = "error: tenant hierarchy not loaded"
			ready = false
		}

		resp := info.health("ok")
		resp.Checks = checks
		code := http.StatusOK
		if !ready {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		httpx.WriteJSON(w, code, resp)
	}
}
