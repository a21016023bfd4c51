package auth

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"sync"
	"time"
)

// SessionDuration is how long a login session stays valid.
const SessionDuration = 24 * time.Hour

// Registry holds the in-memory session table. Sessions do not survive a
// process restart; every operator logs in again, which is the intended
// behavior for this trust boundary.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]time.Time // token → expiry
	now      func() time.Time     // overridable in tests
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

// generateToken creates a secure random token
func generateToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// Create issues a new session token valid for SessionDuration. Already
// expired entries are swept as a side effect, so the table stays bounded
// without a background timer.
func (r *Registry) Create() string {
	token := generateToken()

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for t, expiresAt := range r.sessions {
		if expiresAt.Before(now) {
			delete(r.sessions, t)
		}
	}
	r.sessions[token] = now.Add(SessionDuration)
	return token
}

// IsValid reports whether the token belongs to a live session. An expired
// entry is removed on the spot (lazy expiry).
func (r *Registry) IsValid(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiresAt, ok := r.sessions[token]
	if !ok {
		return false
	}
	if expiresAt.Before(r.now()) {
		delete(r.sessions, token)
		return false
	}
	return true
}

// Invalidate removes a session. Unknown tokens are a no-op.
func (r *Registry) Invalidate(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}

// InvalidateAll clears every session. Used by factory reset only.
func (r *Registry) InvalidateAll() {
	r.mu.Lock()
	r.sessions = make(map[string]time.Time)
	r.mu.Unlock()
	log.Printf("🔒 All sessions have been cleared")
}
