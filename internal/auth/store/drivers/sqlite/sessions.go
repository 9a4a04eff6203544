package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/mfagate/internal/auth/domain"
	"github.com/aussiebroadwan/mfagate/internal/auth/store"
)

type sessionsRepo struct {
	q *Queries
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	err := r.q.CreateSession(ctx, sessionRow{
		ID:                      s.ID,
		UserID:                  s.UserID,
		MfaVerified:             s.MFAVerified,
		PendingEnrollmentSecret: mapOptionalString(s.PendingEnrollmentSecret),
		CreatedAt:               toMillis(s.CreatedAt),
		ExpiresAt:               toMillis(s.ExpiresAt),
	})
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	row, err := r.q.GetSession(ctx, id)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}

	return domain.Session{
		ID:                      row.ID,
		UserID:                  row.UserID,
		MFAVerified:             row.MfaVerified,
		PendingEnrollmentSecret: mapNullStringPtr(row.PendingEnrollmentSecret),
		CreatedAt:               fromMillis(row.CreatedAt),
		ExpiresAt:               fromMillis(row.ExpiresAt),
	}, nil
}

func (r *sessionsRepo) UpdateSession(ctx context.Context, s domain.Session) error {
	n, err := r.q.UpdateSession(ctx, s.ID, s.MFAVerified, mapOptionalString(s.PendingEnrollmentSecret))
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	return r.q.DeleteSession(ctx, id)
}

func (r *sessionsRepo) ClearPendingEnrollments(ctx context.Context, userID string) error {
	return r.q.ClearPendingEnrollments(ctx, userID)
}

func (r *sessionsRepo) ResetVerification(ctx context.Context, userID, exceptID string) error {
	return r.q.ResetVerification(ctx, userID, exceptID)
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredSessions(ctx, toMillis(now))
}

func (r *sessionsRepo) CountSessions(ctx context.Context, now time.Time) (int, error) {
	return r.q.CountActiveSessions(ctx, toMillis(now))
}
