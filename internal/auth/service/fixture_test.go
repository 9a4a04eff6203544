package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/mfagate/internal/auth/domain"
	"github.com/aussiebroadwan/mfagate/internal/auth/service"
	"github.com/aussiebroadwan/mfagate/internal/auth/store"
	"github.com/aussiebroadwan/mfagate/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/mfagate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/mfagate/pkg/otpx"
	"github.com/aussiebroadwan/mfagate/pkg/qrx"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store    store.Store
	clock    *fakeClock
	engine   *otpx.Engine
	creds    *service.CredentialService
	sessions *service.SessionService
	enroll   *service.EnrollmentService
	auth     *service.AuthService
}

func newFixture(t *testing.T, st store.Store) *fixture {
	t.Helper()

	// Ten seconds into a 30 second step.
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 10, 0, time.UTC)}
	now := service.Clock(clock.Now)
	engine := otpx.New()

	creds := &service.CredentialService{Store: st, Clock: now}
	sessions := &service.SessionService{Store: st, TTL: time.Hour, Clock: now}

	return &fixture{
		store:    st,
		clock:    clock,
		engine:   engine,
		creds:    creds,
		sessions: sessions,
		enroll: &service.EnrollmentService{
			Store:       st,
			Sessions:    sessions,
			Credentials: creds,
			Engine:      engine,
			QR:          qrx.New(128),
			Issuer:      "SecureApp",
			Clock:       now,
		},
		auth: &service.AuthService{
			Store:       st,
			Credentials: creds,
			Sessions:    sessions,
			Engine:      engine,
			Clock:       now,
		},
	}
}

func newMemoryFixture(t *testing.T) *fixture {
	return newFixture(t, memory.New())
}

// forEachStore runs fn once per store driver.
func forEachStore(t *testing.T, fn func(t *testing.T, f *fixture)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, newMemoryFixture(t))
	})
	t.Run("sqlite", func(t *testing.T) {
		st, err := sqlite.NewStore(":memory:")
		require.NoError(t, err)
		require.NoError(t, st.ApplyMigrations())
		t.Cleanup(func() { _ = st.Close() })
		fn(t, newFixture(t, st))
	})
}

// codeAt returns the code for secret offset steps from the fixture clock.
func (f *fixture) codeAt(t *testing.T, secret string, steps int) string {
	t.Helper()
	code, err := f.engine.CodeAt(secret, f.clock.Now().Add(time.Duration(steps)*30*time.Second))
	require.NoError(t, err)
	return code
}

// wrongCode returns a well-formed code that does not match secret anywhere
// within the login window.
func (f *fixture) wrongCode(t *testing.T, secret string) string {
	t.Helper()
	valid := map[string]bool{}
	for k := -otpx.LoginWindow; k <= otpx.LoginWindow; k++ {
		valid[f.codeAt(t, secret, k)] = true
	}
	for i := range 100 {
		c := fmt.Sprintf("%06d", i)
		if !valid[c] {
			return c
		}
	}
	t.Fatal("no wrong code available")
	return ""
}

func (f *fixture) register(t *testing.T, username, password string) domain.User {
	t.Helper()
	u, err := f.creds.Register(context.Background(), username, password)
	require.NoError(t, err)
	return u
}

func (f *fixture) login(t *testing.T, username, password string) domain.LoginResult {
	t.Helper()
	res, err := f.auth.Login(context.Background(), username, password)
	require.NoError(t, err)
	return res
}

// enrolled registers username with MFA enabled and returns its secret.
func (f *fixture) enrolled(t *testing.T, username, password string) string {
	t.Helper()
	ctx := context.Background()

	f.register(t, username, password)
	res := f.login(t, username, password)

	enr, err := f.enroll.GenerateSecret(ctx, res.Session.ID)
	require.NoError(t, err)
	_, err = f.enroll.ConfirmEnrollment(ctx, res.Session.ID, f.codeAt(t, enr.Secret, 0))
	require.NoError(t, err)
	require.NoError(t, f.auth.Logout(ctx, res.Session.ID))

	return enr.Secret
}
