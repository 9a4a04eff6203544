package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/mfagate/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestSessionExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := domain.Session{ExpiresAt: now}

	require.False(t, s.Expired(now.Add(-time.Nanosecond)))
	require.True(t, s.Expired(now))
	require.True(t, s.Expired(now.Add(time.Second)))
}

func TestSessionState(t *testing.T) {
	require.Equal(t, domain.StateMFAPending, domain.Session{}.State())
	require.Equal(t, domain.StateAuthenticated, domain.Session{MFAVerified: true}.State())
}

func TestAuthStateString(t *testing.T) {
	require.Equal(t, "anonymous", domain.StateAnonymous.String())
	require.Equal(t, "password_verified", domain.StatePasswordVerified.String())
	require.Equal(t, "mfa_pending", domain.StateMFAPending.String())
	require.Equal(t, "authenticated", domain.StateAuthenticated.String())
	require.Equal(t, "unknown", domain.AuthState(42).String())
}

func TestUserHasMFA(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"

	require.False(t, domain.User{}.HasMFA())
	require.False(t, domain.User{MFASecret: &secret}.HasMFA())
	require.True(t, domain.User{MFAEnabled: true, MFASecret: &secret}.HasMFA())
}
