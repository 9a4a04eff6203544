package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the authentication service. It holds no session state;
// every call takes the session id it acts on.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, username, password string) (*RegisterResponse, error) {
	var out RegisterResponse
	err := c.postJSON(ctx, "/api/register", CredentialsRequest{Username: username, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login checks the password and opens a session.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.postJSON(ctx, "/api/login", CredentialsRequest{Username: username, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateMFA starts TOTP enrollment on a fully authenticated session.
func (c *Client) GenerateMFA(ctx context.Context, sessionID string) (*GenerateMFAResponse, error) {
	var out GenerateMFAResponse
	if err := c.postJSON(ctx, "/api/mfa/generate", SessionRequest{SessionID: sessionID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifySetup confirms the pending secret with a code and enables MFA.
func (c *Client) VerifySetup(ctx context.Context, sessionID, code string) (*MFAResultResponse, error) {
	var out MFAResultResponse
	if err := c.postJSON(ctx, "/api/mfa/verify-setup", CodeRequest{SessionID: sessionID, Token: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyLogin completes the second factor of a pending session.
func (c *Client) VerifyLogin(ctx context.Context, sessionID, code string) (*MFAResultResponse, error) {
	var out MFAResultResponse
	if err := c.postJSON(ctx, "/api/mfa/verify-login", CodeRequest{SessionID: sessionID, Token: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetMFA disables MFA for the session's user.
func (c *Client) ResetMFA(ctx context.Context, sessionID string) (*MFAResultResponse, error) {
	var out MFAResultResponse
	if err := c.postJSON(ctx, "/api/mfa/reset", SessionRequest{SessionID: sessionID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemainingTime reports how long the current TOTP code stays valid.
func (c *Client) RemainingTime(ctx context.Context) (*RemainingTimeResponse, error) {
	var out RemainingTimeResponse
	if err := c.getJSON(ctx, "/api/mfa/remaining-time", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status reports whether sessionID is fully signed in.
func (c *Client) Status(ctx context.Context, sessionID string) (*StatusResponse, error) {
	var out StatusResponse
	path := "/api/auth/status?sessionId=" + url.QueryEscape(sessionID)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the session. It succeeds for unknown sessions too.
func (c *Client) Logout(ctx context.Context, sessionID string) error {
	var out LogoutResponse
	return c.postJSON(ctx, "/api/logout", SessionRequest{SessionID: sessionID}, &out)
}

// Health returns service counters.
func (c *Client) Health(ctx context.Context) (*ServiceHealthResponse, error) {
	var out ServiceHealthResponse
	if err := c.getJSON(ctx, "/api/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.getJSON(ctx, "/livez", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness checks if the service is ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.getJSON(ctx, "/readyz", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
