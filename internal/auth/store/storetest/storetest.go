// Package storetest is a conformance suite every store driver runs from its
// own tests.
package storetest

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/mfagate/internal/auth/domain"
	"github.com/aussiebroadwan/mfagate/internal/auth/store"
	"github.com/aussiebroadwan/mfagate/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty, migrated store. The suite closes it.
type Factory func(t *testing.T) store.Store

var base = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

// Run executes the suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"UserRoundTrip", testUserRoundTrip},
		{"UsernameIsUniqueAndCaseSensitive", testUsernameUnique},
		{"SetMFA", testSetMFA},
		{"SetMFARejectsDisagreement", testSetMFARejectsDisagreement},
		{"SessionRoundTrip", testSessionRoundTrip},
		{"SessionIDCollision", testSessionIDCollision},
		{"SessionRequiresUser", testSessionRequiresUser},
		{"UpdateSession", testUpdateSession},
		{"DeleteSessionIsIdempotent", testDeleteSession},
		{"ClearPendingEnrollments", testClearPendingEnrollments},
		{"ResetVerification", testResetVerification},
		{"ExpiredSessions", testExpiredSessions},
		{"TxCommit", testTxCommit},
		{"TxRollback", testTxRollback},
		{"NestedTxRejected", testNestedTx},
		{"TxSerializes", testTxSerializes},
		{"Ping", testPing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func newUser(username string) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		CreatedAt:    base,
		UpdatedAt:    base,
	}
}

func seedUser(t *testing.T, s store.Store, username string) domain.User {
	t.Helper()
	u := newUser(username)
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func newSession(id, userID string) domain.Session {
	return domain.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: base,
		ExpiresAt: base.Add(time.Hour),
	}
}

func ptr(s string) *string { return &s }

func testUserRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s, "alice")

	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Username, byID.Username)
	require.Equal(t, u.PasswordHash, byID.PasswordHash)
	require.False(t, byID.MFAEnabled)
	require.Nil(t, byID.MFASecret)
	require.True(t, base.Equal(byID.CreatedAt))

	byName, err := s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)

	_, err = s.Users().GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.Users().CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func testUsernameUnique(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedUser(t, s, "alice")

	err := s.Users().CreateUser(ctx, newUser("alice"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	require.NoError(t, s.Users().CreateUser(ctx, newUser("Alice")))

	_, err = s.Users().GetUserByUsername(ctx, "ALICE")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testSetMFA(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s, "alice")
	later := base.Add(time.Minute)

	require.NoError(t, s.Users().SetMFA(ctx, u.ID, true, ptr("JBSWY3DPEHPK3PXP"), later))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.MFAEnabled)
	require.NotNil(t, got.MFASecret)
	require.Equal(t, "JBSWY3DPEHPK3PXP", *got.MFASecret)
	require.True(t, later.Equal(got.UpdatedAt))

	require.NoError(t, s.Users().SetMFA(ctx, u.ID, false, nil, later))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.MFAEnabled)
	require.Nil(t, got.MFASecret)

	require.ErrorIs(t, s.Users().SetMFA(ctx, "missing", false, nil, later), store.ErrNotFound)
}

func testSetMFARejectsDisagreement(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s, "alice")

	require.ErrorIs(t, s.Users().SetMFA(ctx, u.ID, true, nil, base), store.ErrInvalidMFAState)
	require.ErrorIs(t, s.Users().SetMFA(ctx, u.ID, false, ptr("JBSWY3DPEHPK3PXP"), base), store.ErrInvalidMFAState)

	bad := newUser("bob")
	bad.MFAEnabled = true
	require.ErrorIs(t, s.Users().CreateUser(ctx, bad), store.ErrInvalidMFAState)
}

func testSessionRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s, "alice")

	sess := newSession("sess-1", u.ID)
	sess.MFAVerified = true
	require.NoError(t, s.Sessions().CreateSession(ctx, sess))

	got, err := s.Sessions().GetSession(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)
	require.True(t, got.MFAVerified)
	require.Nil(t, got.PendingEnrollmentSecret)
	require.True(t, sess.ExpiresAt.Equal(got.ExpiresAt))

	_, err = s.Sessions().GetSession(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testSessionIDCollision(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s, "alice")

	require.NoError(t, s.Sessions().CreateSession(ctx, newSession("dup", u.ID)))

	other := newSession("dup", u.ID)
	other.MFAVerified = true
	require.ErrorIs(t, s.Sessions().CreateSession(ctx, other), store.ErrAlreadyExists)

	// The original row is untouched.
	got, err := s.Sessions().GetSession(ctx, "dup")
	require.NoError(t, err)
	require.False(t, got.MFAVerified)
}

func testSessionRequiresUser(t *testing.T, s store.Store) {
	err := s.Sessions().CreateSession(context.Background(), newSession("orphan", "no-such-user"))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testUpdateSession(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s, "alice")
	require.NoError(t, s.Sessions().CreateSession(ctx, newSession("sess-1", u.ID)))

	sess, err := s.Sessions().GetSession(ctx, "sess-1")
	require.NoError(t, err)
	sess.PendingEnrollmentSecret = ptr("JBSWY3DPEHPK3PXP")
	require.NoError(t, s.Sessions().UpdateSession(ctx, sess))

	got, err := s.Sessions().GetSession(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, "JBSWY3DPEHPK3PXP", *got.PendingEnrollmentSecret)

	got.PendingEnrollmentSecret = nil
	got.MFAVerified = true
	require.NoError(t, s.Sessions().UpdateSession(ctx, got))

	got, err = s.Sessions().GetSession(ctx, "sess-1")
	require.NoError(t, err)
	require.Nil(t, got.PendingEnrollmentSecret)
	require.True(t, got.MFAVerified)

	require.ErrorIs(t, s.Sessions().UpdateSession(ctx, newSession("missing", u.ID)), store.ErrNotFound)
}

func testDeleteSession(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s, "alice")
	require.NoError(t, s.Sessions().CreateSession(ctx, newSession("sess-1", u.ID)))

	require.NoError(t, s.Sessions().DeleteSession(ctx, "sess-1"))
	require.NoError(t, s.Sessions().DeleteSession(ctx, "sess-1"))

	_, err := s.Sessions().GetSession(ctx, "sess-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testClearPendingEnrollments(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	for _, sess := range []domain.Session{
		newSession("a1", alice.ID),
		newSession("a2", alice.ID),
		newSession("b1", bob.ID),
	} {
		sess.PendingEnrollmentSecret = ptr("JBSWY3DPEHPK3PXP")
		require.NoError(t, s.Sessions().CreateSession(ctx, sess))
	}

	require.NoError(t, s.Sessions().ClearPendingEnrollments(ctx, alice.ID))

	for id, wantPending := range map[string]bool{"a1": false, "a2": false, "b1": true} {
		got, err := s.Sessions().GetSession(ctx, id)
		require.NoError(t, err)
		require.Equal(t, wantPending, got.PendingEnrollmentSecret != nil, id)
	}
}

func testResetVerification(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	for _, sess := range []domain.Session{
		newSession("a1", alice.ID),
		newSession("a2", alice.ID),
		newSession("a3", alice.ID),
		newSession("b1", bob.ID),
	} {
		sess.MFAVerified = true
		require.NoError(t, s.Sessions().CreateSession(ctx, sess))
	}

	require.NoError(t, s.Sessions().ResetVerification(ctx, alice.ID, "a1"))

	for id, wantVerified := range map[string]bool{"a1": true, "a2": false, "a3": false, "b1": true} {
		got, err := s.Sessions().GetSession(ctx, id)
		require.NoError(t, err)
		require.Equal(t, wantVerified, got.MFAVerified, id)
	}
}

func testExpiredSessions(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s, "alice")

	live := newSession("live", u.ID)
	dead := newSession("dead", u.ID)
	dead.ExpiresAt = base.Add(-time.Second)
	require.NoError(t, s.Sessions().CreateSession(ctx, live))
	require.NoError(t, s.Sessions().CreateSession(ctx, dead))

	n, err := s.Sessions().CountSessions(ctx, base)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// Expired rows are still readable until purged.
	_, err = s.Sessions().GetSession(ctx, "dead")
	require.NoError(t, err)

	purged, err := s.Sessions().DeleteExpiredSessions(ctx, base)
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)

	_, err = s.Sessions().GetSession(ctx, "dead")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Sessions().GetSession(ctx, "live")
	require.NoError(t, err)
}

func testTxCommit(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser("alice")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return tx.Sessions().CreateSession(ctx, newSession("sess-1", u.ID))
	})
	require.NoError(t, err)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	_, err = s.Sessions().GetSession(ctx, "sess-1")
	require.NoError(t, err)
}

func testTxRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s, "alice")
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().SetMFA(ctx, u.ID, true, ptr("JBSWY3DPEHPK3PXP"), base); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.MFAEnabled)

	// Explicit Tx with Rollback behaves the same.
	tx, err := s.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Users().SetMFA(ctx, u.ID, true, ptr("JBSWY3DPEHPK3PXP"), base))
	require.NoError(t, tx.Rollback())

	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.MFAEnabled)
}

func testNestedTx(t *testing.T, s store.Store) {
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Tx(ctx)
		require.ErrorIs(t, err, sql.ErrTxDone)
		require.ErrorIs(t, tx.WithTx(ctx, func(store.Tx) error { return nil }), sql.ErrTxDone)
		return nil
	})
	require.NoError(t, err)
}

// testTxSerializes runs read-modify-write increments of a counter kept in a
// session's pending secret. Lost updates would leave the count short.
func testTxSerializes(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s, "alice")
	require.NoError(t, s.Sessions().CreateSession(ctx, newSession("counter", u.ID)))

	const workers = 8
	const rounds = 10

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range rounds {
				err := s.WithTx(ctx, func(tx store.Tx) error {
					sess, err := tx.Sessions().GetSession(ctx, "counter")
					if err != nil {
						return err
					}
					next := "x"
					if sess.PendingEnrollmentSecret != nil {
						next = *sess.PendingEnrollmentSecret + "x"
					}
					sess.PendingEnrollmentSecret = &next
					return tx.Sessions().UpdateSession(ctx, sess)
				})
				if err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	got, err := s.Sessions().GetSession(ctx, "counter")
	require.NoError(t, err)
	require.NotNil(t, got.PendingEnrollmentSecret)
	require.Len(t, *got.PendingEnrollmentSecret, workers*rounds)
}

func testPing(t *testing.T, s store.Store) {
	require.NoError(t, s.Ping(context.Background()))
}
