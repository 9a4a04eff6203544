package authsdk

// ============================================================================
// Error Response Types
// ============================================================================

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	// Error is the machine-readable code (e.g., "invalid_session")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description,omitempty"`
}

// ValidationErrorResponse is returned when request fields fail validation.
type ValidationErrorResponse struct {
	// Code is always "validation_error"
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details maps JSON field names to what is wrong with them
	Details map[string]string `json:"details,omitempty"`
}

// ============================================================================
// Request Types
// ============================================================================

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionRequest carries only a session id.
type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

// CodeRequest carries a session id and a 6-digit TOTP code.
type CodeRequest struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}

// ============================================================================
// Response Types
// ============================================================================

// UserInfo is the public view of a user.
type UserInfo struct {
	Username   string `json:"username"`
	MFAEnabled bool   `json:"mfaEnabled"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// LoginResponse is returned by POST /api/login. When RequiresMFA is true the
// session must be completed with VerifyLogin before it counts as signed in.
type LoginResponse struct {
	SessionID   string   `json:"sessionId"`
	RequiresMFA bool     `json:"requiresMFA"`
	User        UserInfo `json:"user"`
}

// GenerateMFAResponse holds a pending TOTP secret. QRCode is a base64
// encoded image of OTPAuthURL in the format named by QRCodeType.
type GenerateMFAResponse struct {
	Secret     string `json:"secret"`
	QRCode     string `json:"qrCode"`
	QRCodeType string `json:"qrCodeType"`
	OTPAuthURL string `json:"otpauthUrl"`
}

// MFAResultResponse is returned by verify-setup, verify-login and reset.
type MFAResultResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	User    *UserInfo `json:"user,omitempty"`
}

type RemainingTimeResponse struct {
	// RemainingTime is the number of seconds the current code stays valid
	RemainingTime int `json:"remainingTime"`

	// Period is the TOTP step length in seconds
	Period int `json:"period"`
}

// StatusResponse is returned by GET /api/auth/status. User is present
// whenever the session exists, even if it still waits for a second factor.
type StatusResponse struct {
	Authenticated bool      `json:"authenticated"`
	User          *UserInfo `json:"user,omitempty"`
}

type LogoutResponse struct {
	Success bool `json:"success"`
}

// ============================================================================
// Health Types
// ============================================================================

// ServiceHealthResponse is returned by GET /api/health.
type ServiceHealthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	UsersCount    int    `json:"usersCount"`
	SessionsCount int    `json:"sessionsCount"`
	Message       string `json:"message"`
}

// HealthResponse represents the response structure for the probe endpoints.
// /readyz includes the Checks field.
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the store connection status
	Database string `json:"database"`
}
