package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/mfagate/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrInvalidMFAState is returned when an MFA write would leave
	// mfa_enabled and mfa_secret disagreeing.
	ErrInvalidMFAState = errors.New("store: mfa flag and secret must agree")
)

// Store is the root data access interface implemented by the sqlite and
// memory drivers. Repositories hang off it so transactional work goes
// through the Tx-scoped copies and cannot nest.
type Store interface {
	Users() Users
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction. Transactions are serialized: while
	// one is open every other transaction waits. The caller MUST Commit or
	// Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store. Calling Tx or WithTx on it fails with
// sql.ErrTxDone.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername matches the username exactly (case-sensitive).
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts u. ErrAlreadyExists when the id or username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// SetMFA writes the MFA flag and secret together and bumps updated_at.
	// secret must be non-nil exactly when enabled is true.
	SetMFA(ctx context.Context, userID string, enabled bool, secret *string, at time.Time) error

	CountUsers(ctx context.Context) (int, error)
}

type Sessions interface {
	// CreateSession inserts s. ErrAlreadyExists on an id collision; an
	// existing session is never overwritten.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSession returns the session whether or not it has expired.
	GetSession(ctx context.Context, id string) (domain.Session, error)

	// UpdateSession writes the mutable fields (MFAVerified and the pending
	// enrollment secret) of an existing session.
	UpdateSession(ctx context.Context, s domain.Session) error

	// DeleteSession removes the session. Deleting a missing id is not an error.
	DeleteSession(ctx context.Context, id string) error

	// ClearPendingEnrollments drops the pending secret on every session of userID.
	ClearPendingEnrollments(ctx context.Context, userID string) error

	// ResetVerification sets MFAVerified to false on every session of userID
	// except exceptID.
	ResetVerification(ctx context.Context, userID, exceptID string) error

	// DeleteExpiredSessions removes sessions whose expiry is at or before now.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// CountSessions counts sessions not yet expired at now.
	CountSessions(ctx context.Context, now time.Time) (int, error)
}
