package passwords

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"guardian/internal/apperr"
	"guardian/internal/auth"
	"guardian/internal/docker"
	"guardian/internal/envfile"
)

func testStore(t *testing.T, content string) *envfile.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return envfile.NewStore(path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"empty", "", true},
		{"blank", "   ", true},
		{"too short", "short1", true},
		{"single quote", "pass'word123", true},
		{"ok", "a-fine-password", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.password)
			if tt.wantErr && !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("expected Validation error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestUpdatePiholePersistsAndApplies(t *testing.T) {
	store := testStore(t, "PIHOLE_PASSWORD='old'\n")
	// /bin/true stands in for the docker binary: every exec "succeeds".
	m := NewManager(store, docker.NewCompose("/bin/true", "compose.yml"), nil, nil)

	res, err := m.UpdatePihole("new-password-9")
	if err != nil {
		t.Fatalf("UpdatePihole failed: %v", err)
	}
	if res.Status != "success" || res.ServiceRestarted {
		t.Errorf("unexpected result: %+v", res)
	}

	got, _, _ := store.GetRaw(envfile.KeyPiholePassword)
	if got != "new-password-9" {
		t.Errorf("password not persisted: %q", got)
	}
}

func TestUpdatePiholeContainerFailure(t *testing.T) {
	store := testStore(t, "PIHOLE_PASSWORD='old'\n")
	m := NewManager(store, docker.NewCompose("/bin/false", "compose.yml"), nil, nil)

	_, err := m.UpdatePihole("new-password-9")
	if !errors.Is(err, apperr.ErrExternal) {
		t.Fatalf("expected External error, got %v", err)
	}

	// The env file write happens first and is kept, matching the manual
	// recovery hint in the error message.
	got, _, _ := store.GetRaw(envfile.KeyPiholePassword)
	if got != "new-password-9" {
		t.Errorf("env file should retain the new password, got %q", got)
	}
}

func TestUpdateWireGuardStoresVerifiableHash(t *testing.T) {
	store := testStore(t, "WIREGUARD_PASSWORD_HASH='old'\n")
	m := NewManager(store, docker.NewCompose("/bin/true", "compose.yml"), nil, nil)

	res, err := m.UpdateWireGuard("new-password-9")
	if err != nil {
		t.Fatalf("UpdateWireGuard failed: %v", err)
	}
	if !res.ServiceRestarted {
		t.Error("expected the container to be reported recreated")
	}

	hash, _, _ := store.GetRaw(envfile.KeyWireGuardHash)
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("stored value is not a bcrypt hash: %q", hash)
	}
	if !auth.VerifyPassword("new-password-9", hash) {
		t.Error("stored hash does not verify against the password")
	}
}

func TestUpdateNPMHappyPath(t *testing.T) {
	var gotAuthUpdate map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/tokens":
			json.NewEncoder(w).Encode(map[string]string{"token": "npm-token"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/users":
			if r.Header.Get("Authorization") != "Bearer npm-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode([]map[string]interface{}{
				{"id": 7, "email": "other@example.com"},
				{"id": 12, "email": "admin@example.com"},
			})
		case r.Method == http.MethodPut && r.URL.Path == "/api/users/12/auth":
			json.NewDecoder(r.Body).Decode(&gotAuthUpdate)
			json.NewEncoder(w).Encode(true)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	store := testStore(t, "NPM_ADMIN_EMAIL=admin@example.com\nNPM_ADMIN_PASSWORD='old-password'\n")
	m := NewManager(store, docker.NewCompose("/bin/true", "compose.yml"), NewNPMClient(server.URL), nil)

	res, err := m.UpdateNPM("new-password-9")
	if err != nil {
		t.Fatalf("UpdateNPM failed: %v", err)
	}
	if res.Status != "success" {
		t.Errorf("unexpected result: %+v", res)
	}

	if gotAuthUpdate["current"] != "old-password" || gotAuthUpdate["secret"] != "new-password-9" {
		t.Errorf("unexpected auth update payload: %v", gotAuthUpdate)
	}

	got, _, _ := store.GetRaw(envfile.KeyNPMAdminPassword)
	if got != "new-password-9" {
		t.Errorf("new password not persisted: %q", got)
	}
}

func TestUpdateNPMBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := testStore(t, "NPM_ADMIN_EMAIL=admin@example.com\nNPM_ADMIN_PASSWORD='old-password'\n")
	m := NewManager(store, docker.NewCompose("/bin/true", "compose.yml"), NewNPMClient(server.URL), nil)

	_, err := m.UpdateNPM("new-password-9")
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}

	got, _, _ := store.GetRaw(envfile.KeyNPMAdminPassword)
	if got != "old-password" {
		t.Errorf("stored password should be unchanged, got %q", got)
	}
}

func TestUpdateNPMMissingCredentials(t *testing.T) {
	store := testStore(t, "GUARDIAN_IP=192.168.1.2\n")
	m := NewManager(store, docker.NewCompose("/bin/true", "compose.yml"), NewNPMClient("http://127.0.0.1:0"), nil)

	_, err := m.UpdateNPM("new-password-9")
	if !errors.Is(err, apperr.ErrExternal) {
		t.Fatalf("expected External error, got %v", err)
	}
}
