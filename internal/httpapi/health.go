package httpapi

import (
	"net/http"
	"time"
)

var startedAt = time.Now()

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "memory"
	healthy := true
	if a.db != nil {
		if err := a.db.PingContext(r.Context()); err != nil {
			dbStatus = "disconnected"
			healthy = false
		} else {
			dbStatus = "connected"
		}
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}

	writeJSON(w, status, map[string]interface{}{
		"success":   healthy,
		"status":    state,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  map[string]string{"status": dbStatus},
		"uptime":    time.Since(startedAt).Seconds(),
	})
}

func (a *API) handleHealthDB(w http.ResponseWriter, r *http.Request) {
	if a.db == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"connection": map[string]string{"status": "memory"},
		})
		return
	}

	if err := a.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"success": false,
			"message": "Database not connected",
			"details": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"connection": map[string]string{"status": "connected"},
	})
}
