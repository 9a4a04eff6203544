package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aussiebroadwan/mfagate/internal/auth/service"
	"github.com/aussiebroadwan/mfagate/pkg/validatex"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	forEachStore(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()

		u := f.register(t, "alice", "secret1")
		require.NotEmpty(t, u.ID)
		require.Equal(t, "alice", u.Username)
		require.False(t, u.MFAEnabled)
		require.Nil(t, u.MFASecret)
		require.NotContains(t, u.PasswordHash, "secret1")
		require.True(t, strings.HasPrefix(u.PasswordHash, "$argon2id$"))

		stored, err := f.store.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, u.ID, stored.ID)
	})
}

func TestRegister_UsernameTaken(t *testing.T) {
	forEachStore(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		f.register(t, "alice", "secret1")

		_, err := f.creds.Register(ctx, "alice", "another1")
		require.ErrorIs(t, err, service.ErrUsernameTaken)

		_, err = f.creds.Register(ctx, "  alice ", "another1")
		require.ErrorIs(t, err, service.ErrUsernameTaken)

		// Usernames are case-sensitive.
		_, err = f.creds.Register(ctx, "Alice", "another1")
		require.NoError(t, err)
	})
}

func TestRegister_PasswordPolicy(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()

	_, err := f.creds.Register(ctx, "alice", "12345")
	require.ErrorIs(t, err, service.ErrWeakCredential)

	// Counted in characters, not bytes.
	_, err = f.creds.Register(ctx, "bob", "ééééé")
	require.ErrorIs(t, err, service.ErrWeakCredential)

	_, err = f.creds.Register(ctx, "carol", "123456")
	require.NoError(t, err)
}

func TestRegister_Validation(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		field    string
	}{
		{"missing username", "", "secret1", "username"},
		{"blank username", "   ", "secret1", "username"},
		{"short username", "al", "secret1", "username"},
		{"long username", strings.Repeat("a", 65), "secret1", "username"},
		{"missing password", "alice", "", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.creds.Register(ctx, tt.username, tt.password)

			var verr *validatex.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestRegister_TrimsUsername(t *testing.T) {
	f := newMemoryFixture(t)

	u := f.register(t, "  bob  ", "secret1")
	require.Equal(t, "bob", u.Username)

	_, err := f.creds.Authenticate(context.Background(), "bob", "secret1")
	require.NoError(t, err)
}

func TestAuthenticate(t *testing.T) {
	forEachStore(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		registered := f.register(t, "alice", "secret1")

		u, err := f.creds.Authenticate(ctx, "alice", "secret1")
		require.NoError(t, err)
		require.Equal(t, registered.ID, u.ID)

		_, err = f.creds.Authenticate(ctx, "alice", "wrong-password")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)

		_, err = f.creds.Authenticate(ctx, "nobody", "secret1")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)

		_, err = f.creds.Authenticate(ctx, "ALICE", "secret1")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestAuthenticate_Validation(t *testing.T) {
	f := newMemoryFixture(t)

	_, err := f.creds.Authenticate(context.Background(), "", "")

	var verr *validatex.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "username")
	require.Contains(t, verr.Fields, "password")
}
