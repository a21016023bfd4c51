// Package passwords rotates the web-interface passwords of the backing
// services (Pi-hole, WireGuard, Nginx Proxy Manager), keeping the env file
// and the running containers in sync.
package passwords

import (
	"log"
	"strings"

	"guardian/internal/apperr"
	"guardian/internal/auth"
	"guardian/internal/docker"
	"guardian/internal/envfile"
	"guardian/internal/events"
)

// Result reports the outcome of a password update.
type Result struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	ServiceRestarted bool   `json:"serviceRestarted"`
}

// Manager applies per-service password changes.
type Manager struct {
	store  *envfile.Store
	docker *docker.Compose
	npm    *NPMClient
	bus    *events.Bus
}

// NewManager wires a password manager. bus may be nil in tests.
func NewManager(store *envfile.Store, dc *docker.Compose, npm *NPMClient, bus *events.Bus) *Manager {
	return &Manager{store: store, docker: dc, npm: npm, bus: bus}
}

// Validate enforces the shared service password policy.
func Validate(password string) error {
	if strings.TrimSpace(password) == "" {
		return apperr.Validation("Password cannot be empty")
	}
	if len(password) < 8 {
		return apperr.Validation("Password must be at least 8 characters")
	}
	if strings.Contains(password, "'") {
		return apperr.Validation("Password cannot contain single quotes")
	}
	return nil
}

// UpdatePihole persists the password and applies it to the running container
// via the pihole CLI, which takes effect without a restart.
func (m *Manager) UpdatePihole(password string) (Result, error) {
	if err := Validate(password); err != nil {
		return Result{}, err
	}

	log.Printf("🔑 Updating Pi-hole password")
	if err := m.store.Upsert(envfile.KeyPiholePassword, password); err != nil {
		return Result{}, err
	}

	if !m.docker.Exec("exec", "pihole", "pihole", "setpassword", password) {
		return Result{}, apperr.External(nil,
			"Password updated in env file but failed to set in Pi-hole container. "+
				"Try manually: docker exec pihole pihole setpassword 'yourpassword'")
	}

	m.publish("Pi-hole")
	return Result{
		Status:  "success",
		Message: "Pi-hole password updated successfully",
	}, nil
}

// UpdateWireGuard stores a bcrypt hash of the password (the format wg-easy
// expects) and recreates the container, which only reads the hash from its
// environment at creation.
func (m *Manager) UpdateWireGuard(password string) (Result, error) {
	if err := Validate(password); err != nil {
		return Result{}, err
	}

	log.Printf("🔑 Updating WireGuard password")
	hash, err := auth.HashPassword(password)
	if err != nil {
		return Result{}, apperr.Internal(err, "hash WireGuard password")
	}
	if err := m.store.Upsert(envfile.KeyWireGuardHash, hash); err != nil {
		return Result{}, err
	}

	recreated := m.docker.Recreate("wireguard")
	log.Printf("passwords: wireguard recreated: %v", recreated)

	m.publish("WireGuard")
	return Result{
		Status:           "success",
		Message:          "WireGuard password updated successfully",
		ServiceRestarted: recreated,
	}, nil
}

// UpdateNPM changes the Nginx Proxy Manager admin password through its API
// using the stored admin credentials, then persists the new password. NPM
// applies the change immediately; no restart.
func (m *Manager) UpdateNPM(password string) (Result, error) {
	if err := Validate(password); err != nil {
		return Result{}, err
	}

	email, found, err := m.store.GetRaw(envfile.KeyNPMAdminEmail)
	if err != nil {
		return Result{}, err
	}
	if !found || email == "" {
		return Result{}, apperr.External(nil,
			"NPM credentials not configured. Please add NPM_ADMIN_EMAIL and NPM_ADMIN_PASSWORD to the env file")
	}
	current, found, err := m.store.GetRaw(envfile.KeyNPMAdminPassword)
	if err != nil {
		return Result{}, err
	}
	if !found || current == "" {
		return Result{}, apperr.External(nil,
			"NPM credentials not configured. Please add NPM_ADMIN_EMAIL and NPM_ADMIN_PASSWORD to the env file")
	}

	log.Printf("🔑 Updating NPM password")
	token, err := m.npm.Authenticate(email, current)
	if err != nil {
		return Result{}, apperr.Unauthorized(
			"Failed to authenticate with NPM. The email in NPM must match NPM_ADMIN_EMAIL (%s).", email)
	}

	userID, err := m.npm.FindUserID(token, email)
	if err != nil {
		return Result{}, apperr.External(err, "Failed to find NPM user with email: %s", email)
	}

	if err := m.npm.UpdateUserPassword(token, userID, current, password); err != nil {
		return Result{}, apperr.External(err, "Failed to update NPM password via API")
	}

	if err := m.store.Upsert(envfile.KeyNPMAdminPassword, password); err != nil {
		return Result{}, err
	}

	m.publish("NPM")
	return Result{
		Status:  "success",
		Message: "NPM password updated successfully",
	}, nil
}

func (m *Manager) publish(service string) {
	if m.bus != nil {
		m.bus.Publish(events.Event{
			Type:    events.ServicePasswordUpdated,
			Message: service + " password updated",
			Details: map[string]string{"service": service},
		})
	}
}
