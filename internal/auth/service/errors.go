package service

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidSession      = errors.New("invalid or expired session")
	ErrNoPendingEnrollment = errors.New("no MFA enrollment in progress")
	ErrInvalidCode         = errors.New("invalid verification code")
	ErrMFANotEnabled       = errors.New("MFA not enabled for user")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrWeakCredential      = errors.New("password too short")
)
