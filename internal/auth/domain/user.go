package domain

import "time"

type User struct {
	ID           string // ULID
	Username     string // unique, case-sensitive
	PasswordHash string // argon2id PHC string
	MFAEnabled   bool
	MFASecret    *string // base32 TOTP secret, set iff MFAEnabled
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasMFA reports whether the user must present a second factor at login.
func (u User) HasMFA() bool {
	return u.MFAEnabled && u.MFASecret != nil
}
