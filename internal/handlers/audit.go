package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"guardian/internal/audit"
	"guardian/internal/events"
	"guardian/internal/notify"
)

// GetAuditLog returns the most recent audit entries.
func GetAuditLog(l *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := l.Recent(limit)
		if err != nil {
			JSONError(w, "Failed to read audit log", http.StatusInternalServerError)
			return
		}
		JSONResponse(w, map[string]interface{}{
			"status":  "success",
			"entries": entries,
		})
	}
}

// ListNotificationServices returns all configured notification targets.
func ListNotificationServices(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services, err := notify.ListServices(db)
		if err != nil {
			JSONError(w, "Failed to list notification services", http.StatusInternalServerError)
			return
		}
		JSONResponse(w, map[string]interface{}{
			"status":   "success",
			"services": services,
		})
	}
}

// AddNotificationService registers a new notification target.
func AddNotificationService(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			ShoutrrrURL string `json:"shoutrrr_url"`
			MinSeverity int    `json:"min_severity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JSONError(w, "Invalid request", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.ShoutrrrURL == "" {
			JSONError(w, "Name and shoutrrr_url are required", http.StatusBadRequest)
			return
		}

		id, err := notify.AddService(db, req.Name, req.ShoutrrrURL, events.Severity(req.MinSeverity))
		if err != nil {
			JSONError(w, "Failed to add notification service", http.StatusInternalServerError)
			return
		}
		JSONResponse(w, map[string]interface{}{"status": "success", "id": id})
	}
}

// DeleteNotificationService removes a notification target.
func DeleteNotificationService(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			JSONError(w, "Invalid service id", http.StatusBadRequest)
			return
		}
		if err := notify.DeleteService(db, id); err != nil {
			JSONError(w, "Failed to delete notification service", http.StatusInternalServerError)
			return
		}
		JSONResponse(w, map[string]interface{}{"status": "success"})
	}
}
