package memory

import (
	"context"
	"time"

	"github.com/aussiebroadwan/mfagate/internal/auth/domain"
	"github.com/aussiebroadwan/mfagate/internal/auth/store"
)

type usersRepo struct {
	v view
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := r.v.with(func(st *state) error {
		found, ok := st.users[id]
		if !ok {
			return store.ErrNotFound
		}
		u = copyUser(found)
		return nil
	})
	return u, err
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := r.v.with(func(st *state) error {
		id, ok := st.usernames[username]
		if !ok {
			return store.ErrNotFound
		}
		u = copyUser(st.users[id])
		return nil
	})
	return u, err
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	if u.MFAEnabled != (u.MFASecret != nil) {
		return store.ErrInvalidMFAState
	}

	return r.v.with(func(st *state) error {
		if _, ok := st.users[u.ID]; ok {
			return store.ErrAlreadyExists
		}
		if _, ok := st.usernames[u.Username]; ok {
			return store.ErrAlreadyExists
		}
		st.users[u.ID] = copyUser(u)
		st.usernames[u.Username] = u.ID
		return nil
	})
}

func (r *usersRepo) SetMFA(ctx context.Context, userID string, enabled bool, secret *string, at time.Time) error {
	if enabled != (secret != nil) {
		return store.ErrInvalidMFAState
	}

	return r.v.with(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return store.ErrNotFound
		}
		u.MFAEnabled = enabled
		u.MFASecret = copyString(secret)
		u.UpdatedAt = at
		st.users[userID] = u
		return nil
	})
}

func (r *usersRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.v.with(func(st *state) error {
		n = len(st.users)
		return nil
	})
	return n, err
}

func copyUser(u domain.User) domain.User {
	u.MFASecret = copyString(u.MFASecret)
	return u
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
