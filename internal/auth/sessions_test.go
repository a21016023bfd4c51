package auth

import (
	"testing"
	"time"
)

func TestCreateYieldsDistinctValidTokens(t *testing.T) {
	reg := NewRegistry()

	a := reg.Create()
	b := reg.Create()

	if a == b {
		t.Fatal("two Create calls returned the same token")
	}
	if !reg.IsValid(a) || !reg.IsValid(b) {
		t.Error("freshly created tokens should be valid")
	}
}

func TestIsValidUnknownToken(t *testing.T) {
	reg := NewRegistry()

	if reg.IsValid("nope") {
		t.Error("unknown token reported valid")
	}
	if reg.IsValid("") {
		t.Error("empty token reported valid")
	}
}

func TestExpiredSessionIsRemovedLazily(t *testing.T) {
	reg := NewRegistry()
	current := time.Now()
	reg.now = func() time.Time { return current }

	token := reg.Create()
	current = current.Add(SessionDuration + time.Minute)

	if reg.IsValid(token) {
		t.Fatal("expired token reported valid")
	}

	// The expired entry must be gone, not just reported invalid.
	reg.mu.Lock()
	_, present := reg.sessions[token]
	reg.mu.Unlock()
	if present {
		t.Error("expired session was not removed by IsValid")
	}
}

func TestCreateSweepsExpiredSessions(t *testing.T) {
	reg := NewRegistry()
	current := time.Now()
	reg.now = func() time.Time { return current }

	stale := reg.Create()
	current = current.Add(SessionDuration + time.Minute)
	fresh := reg.Create()

	reg.mu.Lock()
	_, stalePresent := reg.sessions[stale]
	_, freshPresent := reg.sessions[fresh]
	reg.mu.Unlock()

	if stalePresent {
		t.Error("Create did not sweep the expired session")
	}
	if !freshPresent {
		t.Error("Create swept the session it just made")
	}
}

func TestInvalidateIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	token := reg.Create()

	reg.Invalidate(token)
	reg.Invalidate(token) // second removal must not panic

	if reg.IsValid(token) {
		t.Error("invalidated token reported valid")
	}
}

func TestInvalidateAll(t *testing.T) {
	reg := NewRegistry()
	tokens := []string{reg.Create(), reg.Create(), reg.Create()}

	reg.InvalidateAll()

	for _, token := range tokens {
		if reg.IsValid(token) {
			t.Errorf("token %s still valid after InvalidateAll", token[:8])
		}
	}
}
