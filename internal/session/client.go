package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

// AuthService exchanges user credentials for an opaque bearer token.
// This interface enables mocking and testing of the login exchange.
type AuthService interface {
	Authorize(ctx context.Context, username, password string) (string, error)
}

// HTTPAuthService is the concrete AuthService talking to the backend auth
// endpoint: GET {base}/auth/Authorize?name=...&pwd=... -> {"access_token": "..."}.
type HTTPAuthService struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAuthService creates an auth client for the given API base URL.
func NewHTTPAuthService(baseURL string) *HTTPAuthService {
	return &HTTPAuthService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Authorize implements AuthService. Invalid credentials surface as
// domain.ErrAuth; transport failures are wrapped and returned as-is.
func (s *HTTPAuthService) Authorize(ctx context.Context, username, password string) (string, error) {
	u := fmt.Sprintf("%s/auth/Authorize?name=%s&pwd=%s",
		s.baseURL, url.QueryEscape(username), url.QueryEscape(password))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("Authorize: building request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Authorize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", domain.ErrAuth
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Authorize: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("Authorize: decoding response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("Authorize: empty access_token in response")
	}
	return body.AccessToken, nil
}

var _ AuthService = (*HTTPAuthService)(nil)
