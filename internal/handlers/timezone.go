package handlers

import (
	"encoding/json"
	"net/http"

	"guardian/internal/timezone"
)

// GetTimezones lists all valid timezone names.
func GetTimezones(m *timezone.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		JSONResponse(w, map[string]interface{}{
			"status":    "success",
			"timezones": m.List(),
		})
	}
}

// UpdateTimezone applies a new timezone and queues the dependent restarts.
func UpdateTimezone(m *timezone.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Timezone string `json:"timezone"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JSONError(w, "Invalid request", http.StatusBadRequest)
			return
		}

		taskID, err := m.Update(req.Timezone)
		if err != nil {
			JSONAppError(w, err)
			return
		}

		JSONResponse(w, map[string]interface{}{
			"status":  "success",
			"message": "Timezone updated to " + req.Timezone + ". Services are restarting.",
			"taskId":  taskID,
		})
	}
}
