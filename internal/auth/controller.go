package auth

import (
	"log"
	"os"
	"strings"

	"guardian/internal/apperr"
	"guardian/internal/envfile"
	"guardian/internal/events"
)

// MinPasswordLength is the minimum accepted login password length.
const MinPasswordLength = 8

// Controller composes the config store, the password primitives, and the
// session registry into the login, logout, password-change, and
// factory-reset operations.
type Controller struct {
	store    *envfile.Store
	sessions *Registry
	bus      *events.Bus

	// Read-only files provisioned at the factory, distinct from the env
	// file. Both hold bcrypt hashes.
	factoryPasswordPath string
	serialNumberPath    string
}

// NewController wires an auth controller. bus may be nil in tests.
func NewController(store *envfile.Store, sessions *Registry, bus *events.Bus, factoryPasswordPath, serialNumberPath string) *Controller {
	return &Controller{
		store:               store,
		sessions:            sessions,
		bus:                 bus,
		factoryPasswordPath: factoryPasswordPath,
		serialNumberPath:    serialNumberPath,
	}
}

// TokenFromHeader extracts the bearer token from an Authorization header.
// Returns "" when the header is absent or malformed.
func TokenFromHeader(authHeader string) string {
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// Login verifies the password against the configured login-password hash and
// issues a session token on success.
func (c *Controller) Login(password string) (string, error) {
	ok, err := c.verifyLoginPassword(password)
	if err != nil {
		return "", err
	}
	if !ok {
		c.publish(events.Event{Type: events.LoginFailed, Severity: events.SeverityWarning,
			Message: "Failed login attempt"})
		return "", apperr.Unauthorized("Invalid password")
	}

	token := c.sessions.Create()
	log.Printf("🔓 Operator logged in")
	c.publish(events.Event{Type: events.LoginSucceeded, Message: "Operator logged in"})
	return token, nil
}

// CheckAuth reports whether the header carries a valid session. It never
// fails; a missing or malformed header simply yields false.
func (c *Controller) CheckAuth(authHeader string) bool {
	token := TokenFromHeader(authHeader)
	return token != "" && c.sessions.IsValid(token)
}

// Logout invalidates the session named by the header, best effort.
func (c *Controller) Logout(authHeader string) {
	if token := TokenFromHeader(authHeader); token != "" {
		c.sessions.Invalidate(token)
	}
}

// ChangePassword replaces the login password. It requires a valid session,
// the current password, the device serial number, and a new password of at
// least MinPasswordLength. All checks are read-only; the stored hash is
// untouched unless every one passes. Other sessions stay valid.
func (c *Controller) ChangePassword(authHeader, currentPassword, newPassword, serialNumber string) error {
	if !c.CheckAuth(authHeader) {
		return apperr.Unauthorized("Unauthorized")
	}

	ok, err := c.verifyLoginPassword(currentPassword)
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("auth: current password is incorrect")
		return apperr.Unauthorized("Current password is incorrect")
	}

	if !c.verifySerialNumber(serialNumber) {
		log.Printf("auth: invalid serial number provided")
		return apperr.Unauthorized("Invalid serial number")
	}

	if len(newPassword) < MinPasswordLength {
		return apperr.Validation("New password must be at least %d characters", MinPasswordLength)
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err, "hash new password")
	}
	if err := c.store.Upsert(envfile.KeyLoginPassword, hash); err != nil {
		return err
	}

	log.Printf("🔑 Login password changed")
	c.publish(events.Event{Type: events.PasswordChanged, Message: "Login password changed"})
	return nil
}

// ResetToFactory restores the login password to the factory hash. It is the
// recovery path for a lost password and deliberately requires the device
// serial number, which is only derivable from physical access. Every
// session is invalidated unconditionally on success.
func (c *Controller) ResetToFactory(factoryPassword, serialNumber string) error {
	factoryHash, ok := c.readHashFile(c.factoryPasswordPath)
	if !ok || !VerifyPassword(factoryPassword, factoryHash) {
		log.Printf("auth: invalid factory password provided for reset")
		return apperr.Validation("Invalid factory password or serial number")
	}

	if !c.verifySerialNumber(serialNumber) {
		log.Printf("auth: invalid serial number provided for reset")
		return apperr.Validation("Invalid factory password or serial number")
	}

	if err := c.store.Upsert(envfile.KeyLoginPassword, factoryHash); err != nil {
		return err
	}
	c.sessions.InvalidateAll()

	log.Printf("🏭 Login password reset to factory default")
	c.publish(events.Event{Type: events.FactoryReset, Severity: events.SeverityCritical,
		Message: "Login password reset to factory default"})
	return nil
}

// verifyLoginPassword checks the password against the hash stored under
// LOGIN_PASSWORD. A missing or empty hash means nobody can log in.
func (c *Controller) verifyLoginPassword(password string) (bool, error) {
	hash, found, err := c.store.GetRaw(envfile.KeyLoginPassword)
	if err != nil {
		return false, err
	}
	if !found || hash == "" {
		log.Printf("auth: login password hash not found in env file")
		return false, nil
	}
	return VerifyPassword(password, hash), nil
}

// verifySerialNumber checks the serial against the provisioned serial hash.
func (c *Controller) verifySerialNumber(serial string) bool {
	hash, ok := c.readHashFile(c.serialNumberPath)
	return ok && VerifyPassword(serial, hash)
}

// readHashFile loads a provisioned single-hash file. Absence is reported as
// a verification failure by callers, not an error; these files are part of
// the device image.
func (c *Controller) readHashFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("auth: provisioned file %s unreadable: %v", path, err)
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

func (c *Controller) publish(e events.Event) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}
