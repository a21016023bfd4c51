package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"guardian/internal/apperr"
)

// Login handles operator authentication
func Login(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "Invalid request", http.StatusBadRequest)
			return
		}

		token, err := c.Login(req.Password)
		if err != nil {
			jsonError(w, "Invalid password", apperr.StatusOf(err))
			return
		}

		jsonResponse(w, map[string]interface{}{
			"success": true,
			"token":   token,
		})
	}
}

// Check reports whether the caller holds a valid session. Always 200.
func Check(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, map[string]interface{}{
			"authenticated": c.CheckAuth(r.Header.Get("Authorization")),
		})
	}
}

// Logout invalidates the caller's session, best effort.
func Logout(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.Logout(r.Header.Get("Authorization"))
		jsonResponse(w, map[string]interface{}{"success": true})
	}
}

// ChangePassword handles login password changes
func ChangePassword(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CurrentPassword string `json:"currentPassword"`
			NewPassword     string `json:"newPassword"`
			SerialNumber    string `json:"serialNumber"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "Invalid request", http.StatusBadRequest)
			return
		}

		err := c.ChangePassword(r.Header.Get("Authorization"),
			req.CurrentPassword, req.NewPassword, req.SerialNumber)
		if err != nil {
			jsonError(w, err.Error(), apperr.StatusOf(err))
			return
		}

		jsonResponse(w, map[string]interface{}{
			"success": true,
			"message": "Login password changed successfully",
		})
	}
}

// ResetToFactory handles the physical-possession-gated recovery path.
func ResetToFactory(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FactoryPassword string `json:"factoryPassword"`
			SerialNumber    string `json:"serialNumber"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "Invalid request", http.StatusBadRequest)
			return
		}

		if err := c.ResetToFactory(req.FactoryPassword, req.SerialNumber); err != nil {
			jsonError(w, err.Error(), apperr.StatusOf(err))
			return
		}

		jsonResponse(w, map[string]interface{}{
			"success": true,
			"message": "Password reset to factory default",
		})
	}
}

func jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("⚠️  Failed to encode JSON response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": message})
}
