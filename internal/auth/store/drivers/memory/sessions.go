package memory

import (
	"context"
	"time"

	"github.com/aussiebroadwan/mfagate/internal/auth/domain"
	"github.com/aussiebroadwan/mfagate/internal/auth/store"
)

type sessionsRepo struct {
	v view
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.sessions[s.ID]; ok {
			return store.ErrAlreadyExists
		}
		// Mirrors the sqlite foreign key.
		if _, ok := st.users[s.UserID]; !ok {
			return store.ErrNotFound
		}
		st.sessions[s.ID] = copySession(s)
		return nil
	})
}

func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	var s domain.Session
	err := r.v.with(func(st *state) error {
		found, ok := st.sessions[id]
		if !ok {
			return store.ErrNotFound
		}
		s = copySession(found)
		return nil
	})
	return s, err
}

func (r *sessionsRepo) UpdateSession(ctx context.Context, s domain.Session) error {
	return r.v.with(func(st *state) error {
		cur, ok := st.sessions[s.ID]
		if !ok {
			return store.ErrNotFound
		}
		cur.MFAVerified = s.MFAVerified
		cur.PendingEnrollmentSecret = copyString(s.PendingEnrollmentSecret)
		st.sessions[s.ID] = cur
		return nil
	})
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	return r.v.with(func(st *state) error {
		delete(st.sessions, id)
		return nil
	})
}

func (r *sessionsRepo) ClearPendingEnrollments(ctx context.Context, userID string) error {
	return r.v.with(func(st *state) error {
		for id, s := range st.sessions {
			if s.UserID == userID && s.PendingEnrollmentSecret != nil {
				s.PendingEnrollmentSecret = nil
				st.sessions[id] = s
			}
		}
		return nil
	})
}

func (r *sessionsRepo) ResetVerification(ctx context.Context, userID, exceptID string) error {
	return r.v.with(func(st *state) error {
		for id, s := range st.sessions {
			if s.UserID == userID && id != exceptID && s.MFAVerified {
				s.MFAVerified = false
				st.sessions[id] = s
			}
		}
		return nil
	})
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.v.with(func(st *state) error {
		for id, s := range st.sessions {
			if s.Expired(now) {
				delete(st.sessions, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *sessionsRepo) CountSessions(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := r.v.with(func(st *state) error {
		for _, s := range st.sessions {
			if !s.Expired(now) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func copySession(s domain.Session) domain.Session {
	s.PendingEnrollmentSecret = copyString(s.PendingEnrollmentSecret)
	return s
}
