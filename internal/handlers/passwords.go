package handlers

import (
	"encoding/json"
	"net/http"

	"guardian/internal/passwords"
)

// updateFunc is one of the per-service password operations on the manager.
type updateFunc func(password string) (passwords.Result, error)

func passwordHandler(update updateFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JSONError(w, "Invalid request", http.StatusBadRequest)
			return
		}

		res, err := update(req.Password)
		if err != nil {
			JSONAppError(w, err)
			return
		}
		JSONResponse(w, res)
	}
}

// UpdatePiholePassword rotates the Pi-hole web interface password.
func UpdatePiholePassword(m *passwords.Manager) http.HandlerFunc {
	return passwordHandler(m.UpdatePihole)
}

// UpdateWireGuardPassword rotates the WireGuard Easy web interface password.
func UpdateWireGuardPassword(m *passwords.Manager) http.HandlerFunc {
	return passwordHandler(m.UpdateWireGuard)
}

// UpdateNPMPassword rotates the Nginx Proxy Manager admin password.
func UpdateNPMPassword(m *passwords.Manager) http.HandlerFunc {
	return passwordHandler(m.UpdateNPM)
}
