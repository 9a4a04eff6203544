package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/mfagate/internal/auth/domain"
	"github.com/aussiebroadwan/mfagate/internal/auth/store"
	"github.com/aussiebroadwan/mfagate/pkg/cryptox"
)

// DefaultSessionTTL applies when SessionService.TTL is zero.
const DefaultSessionTTL = 24 * time.Hour

// SessionService issues and resolves opaque session ids.
type SessionService struct {
	Store store.Store
	TTL   time.Duration
	Clock Clock
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultSessionTTL
	}
	return s.TTL
}

// Create stores a new session for userID. An id collision is returned as an
// error; an existing session is never replaced.
func (s *SessionService) Create(ctx context.Context, userID string, mfaVerified bool) (domain.Session, error) {
	id, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := s.Clock.now()
	sess := domain.Session{
		ID:          id,
		UserID:      userID,
		MFAVerified: mfaVerified,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl()),
	}

	if err := s.Store.Sessions().CreateSession(ctx, sess); err != nil {
		return domain.Session{}, fmt.Errorf("failed to store session: %w", err)
	}
	return sess, nil
}

// Active loads an unexpired session through st, which may be a transaction.
// Missing, unknown and expired ids all return ErrInvalidSession.
func (s *SessionService) Active(ctx context.Context, st store.Store, id string) (domain.Session, error) {
	if id == "" {
		return domain.Session{}, ErrInvalidSession
	}

	sess, err := st.Sessions().GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrInvalidSession
		}
		return domain.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	if sess.Expired(s.Clock.now()) {
		return domain.Session{}, ErrInvalidSession
	}
	return sess, nil
}

// Destroy deletes the session. Unknown ids are ignored.
func (s *SessionService) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.Store.Sessions().DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpired removes sessions that have already expired.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.Store.Sessions().DeleteExpiredSessions(ctx, s.Clock.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	return n, nil
}
