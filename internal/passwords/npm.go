package passwords

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// NPMClient talks to the Nginx Proxy Manager admin API on the stack's
// internal network.
type NPMClient struct {
	BaseURL string
	client  *http.Client
}

// NewNPMClient creates a client for the NPM API at baseURL
// (e.g. http://172.20.0.5:81).
func NewNPMClient(baseURL string) *NPMClient {
	return &NPMClient{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Authenticate exchanges the admin credentials for a bearer token.
func (c *NPMClient) Authenticate(email, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"identity": email,
		"secret":   password,
	})

	resp, err := c.client.Post(c.BaseURL+"/api/tokens", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("npm tokens request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("npm tokens request: status %d", resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode npm token: %w", err)
	}
	if out.Token == "" {
		return "", fmt.Errorf("npm returned an empty token")
	}
	return out.Token, nil
}

// FindUserID resolves the NPM user id for the given email.
func (c *NPMClient) FindUserID(token, email string) (int, error) {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+"/api/users", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("npm users request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("npm users request: status %d", resp.StatusCode)
	}

	var users []struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return 0, fmt.Errorf("decode npm users: %w", err)
	}

	for _, u := range users {
		if u.Email == email {
			return u.ID, nil
		}
	}
	return 0, fmt.Errorf("no npm user with email %s", email)
}

// UpdateUserPassword sets a new password for the user. NPM answers the auth
// update with a bare "true" on success.
func (c *NPMClient) UpdateUserPassword(token string, userID int, current, newPassword string) error {
	body, _ := json.Marshal(map[string]string{
		"type":    "password",
		"current": current,
		"secret":  newPassword,
	})

	url := fmt.Sprintf("%s/api/users/%d/auth", c.BaseURL, userID)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("npm auth update: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("npm auth update: status %d", resp.StatusCode)
	}

	var ok bool
	if err := json.NewDecoder(resp.Body).Decode(&ok); err != nil {
		return fmt.Errorf("decode npm auth response: %w", err)
	}
	if !ok {
		return fmt.Errorf("npm rejected the password update")
	}
	return nil
}
