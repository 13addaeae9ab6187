package http

import (
	"net/http"
	"time"

	"github.com/slavborworld/auth/internal/auth/store"
	"github.com/slavborworld/auth/pkg/httpx"
	"github.com/slavborworld/auth/pkg/slogx"
)

// PingHandler handles GET /api/ping: a bare liveness probe.
//
//	@Summary	Liveness probe
//	@Tags		System
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/api/ping [get].
func PingHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "pong"})
	})
}

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks"`
}

// HealthHandler handles GET /api/health: a readiness probe that pings the
// user store and the revocation store.
//
//	@Summary	Readiness probe
//	@Tags		System
//	@Produce	json
//	@Success	200	{object}	healthResponse
//	@Failure	503	{object}	healthResponse	"A dependency is unreachable"
//	@Router		/api/health [get].
func HealthHandler(startTime time.Time, version string, st store.Store, bl store.Blacklist) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := slogx.FromContext(ctx)

		checks := map[string]string{"database": "ok", "blacklist": "ok"}
		status := http.StatusOK

		if err := st.Ping(ctx); err != nil {
			log.Warn("health: database unreachable", "err", err)
			checks["database"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
		if err := bl.Ping(ctx); err != nil {
			log.Warn("health: blacklist unreachable", "err", err)
			checks["blacklist"] = "unreachable"
			status = http.StatusServiceUnavailable
		}

		body := healthResponse{
			Status:  "ok",
			Version: version,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Checks:  checks,
		}
		if status != http.StatusOK {
			body.Status = "degraded"
		}
		httpx.WriteJSON(w, status, body)
	})
}
