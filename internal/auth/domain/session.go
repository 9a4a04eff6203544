package domain

import "time"

// Session is the server-side record behind an opaque session id.
type Session struct {
	ID          string // 256-bit random, base64url
	UserID      string
	MFAVerified bool

	// PendingEnrollmentSecret holds a generated but unconfirmed TOTP secret.
	PendingEnrollmentSecret *string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its lifetime at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// State returns the authentication state the session is in.
func (s Session) State() AuthState {
	if s.MFAVerified {
		return StateAuthenticated
	}
	return StateMFAPending
}
