package sqlite

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same queries run
// inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func newQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

// Times are stored as unix milliseconds.

const userColumns = `id, username, password_hash, mfa_enabled, mfa_secret, created_at, updated_at`

type userRow struct {
	ID           string
	Username     string
	PasswordHash string
	MfaEnabled   bool
	MfaSecret    sql.NullString
	CreatedAt    int64
	UpdatedAt    int64
}

func scanUser(row interface{ Scan(...any) error }) (userRow, error) {
	var u userRow
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.MfaEnabled, &u.MfaSecret, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (q *Queries) CreateUser(ctx context.Context, u userRow) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, u.MfaEnabled, u.MfaSecret, u.CreatedAt, u.UpdatedAt)
	return err
}

func (q *Queries) SetUserMFA(ctx context.Context, id string, enabled bool, secret sql.NullString, updatedAt int64) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE users SET mfa_enabled = ?, mfa_secret = ?, updated_at = ? WHERE id = ?`,
		enabled, secret, updatedAt, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

const sessionColumns = `id, user_id, mfa_verified, pending_enrollment_secret, created_at, expires_at`

type sessionRow struct {
	ID                      string
	UserID                  string
	MfaVerified             bool
	PendingEnrollmentSecret sql.NullString
	CreatedAt               int64
	ExpiresAt               int64
}

func (q *Queries) CreateSession(ctx context.Context, s sessionRow) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.MfaVerified, s.PendingEnrollmentSecret, s.CreatedAt, s.ExpiresAt)
	return err
}

func (q *Queries) GetSession(ctx context.Context, id string) (sessionRow, error) {
	var s sessionRow
	err := q.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.UserID, &s.MfaVerified, &s.PendingEnrollmentSecret, &s.CreatedAt, &s.ExpiresAt)
	return s, err
}

func (q *Queries) UpdateSession(ctx context.Context, id string, mfaVerified bool, pending sql.NullString) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE sessions SET mfa_verified = ?, pending_enrollment_secret = ? WHERE id = ?`,
		mfaVerified, pending, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteSession(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (q *Queries) ClearPendingEnrollments(ctx context.Context, userID string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE sessions SET pending_enrollment_secret = NULL WHERE user_id = ?`, userID)
	return err
}

func (q *Queries) ResetVerification(ctx context.Context, userID, exceptID string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE sessions SET mfa_verified = 0 WHERE user_id = ? AND id <> ?`, userID, exceptID)
	return err
}

func (q *Queries) DeleteExpiredSessions(ctx context.Context, now int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) CountActiveSessions(ctx context.Context, now int64) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE expires_at > ?`, now).Scan(&n)
	return n, err
}
