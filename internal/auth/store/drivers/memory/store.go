// Package memory is a process-local store driver. It backs the test suites
// and AUTH_STORE=memory deployments where nothing needs to survive a restart.
package memory

import (
	"context"
	"database/sql"
	"maps"
	"sync"

	"github.com/aussiebroadwan/mfagate/internal/auth/domain"
	"github.com/aussiebroadwan/mfagate/internal/auth/store"
)

type state struct {
	users     map[string]domain.User
	usernames map[string]string // username -> id
	sessions  map[string]domain.Session
}

func newState() *state {
	return &state{
		users:     make(map[string]domain.User),
		usernames: make(map[string]string),
		sessions:  make(map[string]domain.Session),
	}
}

func (s *state) clone() *state {
	return &state{
		users:     maps.Clone(s.users),
		usernames: maps.Clone(s.usernames),
		sessions:  maps.Clone(s.sessions),
	}
}

// view runs fn against a consistent state.
type view interface {
	with(fn func(st *state) error) error
}

// Store keeps everything in maps guarded by one mutex. A transaction holds
// the mutex from Tx until Commit or Rollback and works on a private copy
// that replaces the live state on commit.
type Store struct {
	mu     sync.Mutex
	st     *state
	closed bool
}

func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) with(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return sql.ErrConnDone
	}
	return fn(s.st)
}

func (s *Store) Users() store.Users       { return &usersRepo{v: s} }
func (s *Store) Sessions() store.Sessions { return &sessionsRepo{v: s} }

func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, sql.ErrConnDone
	}
	return &txStore{parent: s, st: s.st.clone()}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.with(func(*state) error { return nil })
}

type txStore struct {
	parent *Store
	st     *state
	done   bool
}

func (t *txStore) with(fn func(st *state) error) error {
	if t.done {
		return sql.ErrTxDone
	}
	return fn(t.st)
}

func (t *txStore) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.parent.st = t.st
	t.parent.mu.Unlock()
	return nil
}

func (t *txStore) Rollback() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.parent.mu.Unlock()
	return nil
}

func (t *txStore) Users() store.Users       { return &usersRepo{v: t} }
func (t *txStore) Sessions() store.Sessions { return &sessionsRepo{v: t} }

func (t *txStore) ApplyMigrations() error { return nil }
func (t *txStore) Close() error           { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}
