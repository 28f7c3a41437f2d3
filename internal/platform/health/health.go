// Package health exposes the liveness endpoint. Each configured dependency
// is pinged; unconfigured dependencies (nil) are skipped.
package health

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"veriflow/internal/platform/redis"
	"veriflow/pkg/platform/httputil"
)

type status struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler returns the /healthz handler.
func Handler(db *sql.DB, cache *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		healthy := true

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				checks["postgres"] = err.Error()
				healthy = false
			} else {
				checks["postgres"] = "ok"
			}
		}
		if cache != nil {
			if err := cache.Health(ctx); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}

		if !healthy {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, status{Status: "degraded", Checks: checks})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, status{Status: "ok", Checks: checks})
	}
}
