package leadrsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the leadr auth service. It covers the anonymous
// device endpoints plus the operator surface, and is also what the end-to-end
// tests drive the service with.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// StartSession opens a device session and returns a Session holding the
// issued token pair.
func (c *SDKClient) StartSession(ctx context.Context, gameID, deviceID, platform string) (*Session, error) {
	var out SessionResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/client/sessions", StartSessionRequest{
		GameID:   gameID,
		DeviceID: deviceID,
		Platform: platform,
	}, nil, &out)
	if err != nil {
		return nil, err
	}
	return newSession(c, out), nil
}

// CreateGame registers a new game. Requires the operator admin token.
func (c *SDKClient) CreateGame(ctx context.Context, adminToken, name string) (GameResponse, error) {
	var out GameResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/games", CreateGameRequest{Name: name}, map[string]string{
		AdminTokenHeader: adminToken,
	}, &out)
	return out, err
}

// Livez reports whether the service process is up.
func (c *SDKClient) Livez(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/livez", nil, nil, nil)
}

// Readyz reports whether the service can reach its dependencies.
func (c *SDKClient) Readyz(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/readyz", nil, nil, nil)
}

// Session is an authenticated device session. It refreshes itself when the
// access token is close to expiry.
type Session struct {
	client *SDKClient

	accessToken  string
	refreshToken string
	expiresAt    time.Time
	deviceID     string
}

func newSession(c *SDKClient, resp SessionResponse) *Session {
	return &Session{
		client:       c,
		accessToken:  resp.AccessToken,
		refreshToken: resp.RefreshToken,
		// 30 second buffer so we refresh before the server-side cutoff
		expiresAt: time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second).Add(-30 * time.Second),
		deviceID:  resp.DeviceID,
	}
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string { return s.accessToken }

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string { return s.refreshToken }

// DeviceID returns the client-supplied device identifier for this session.
func (s *Session) DeviceID() string { return s.deviceID }

// Refresh exchanges the session's refresh token for a new pair.
func (s *Session) Refresh(ctx context.Context) error {
	var out SessionResponse
	err := s.client.doJSON(ctx, http.MethodPost, "/v1/client/sessions/refresh", nil, map[string]string{
		"Authorization": "Bearer " + s.refreshToken,
	}, &out)
	if err != nil {
		return err
	}
	s.accessToken = out.AccessToken
	s.refreshToken = out.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second).Add(-30 * time.Second)
	return nil
}

// Nonce fetches a fresh single-use nonce for this device.
func (s *Session) Nonce(ctx context.Context) (NonceResponse, error) {
	var out NonceResponse
	err := s.doAuth(ctx, http.MethodGet, "/v1/client/nonce", nil, nil, &out)
	return out, err
}

// Checkin performs a nonce-gated device check-in. It fetches a nonce first;
// use CheckinWithNonce to supply one explicitly.
func (s *Session) Checkin(ctx context.Context) (CheckinResponse, error) {
	nonce, err := s.Nonce(ctx)
	if err != nil {
		return CheckinResponse{}, err
	}
	return s.CheckinWithNonce(ctx, nonce.NonceValue)
}

// CheckinWithNonce performs a device check-in with a caller-supplied nonce.
func (s *Session) CheckinWithNonce(ctx context.Context, nonce string) (CheckinResponse, error) {
	var out CheckinResponse
	err := s.doAuth(ctx, http.MethodPost, "/v1/client/checkin", nil, map[string]string{
		NonceHeader: nonce,
	}, &out)
	return out, err
}

func (s *Session) doAuth(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	// Refresh proactively when the access token is stale.
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		if err := s.Refresh(ctx); err != nil {
			return err
		}
	}

	if headers == nil {
		headers = map[string]string{}
	}
	headers["Authorization"] = "Bearer " + s.accessToken
	return s.client.doJSON(ctx, method, path, body, headers, out)
}

// doJSON performs a request with an optional JSON body, decodes a JSON
// response into out (when non-nil), and turns non-2xx responses into
// *APIError values.
func (c *SDKClient) doJSON(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, payload)
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
