package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/mfagate/internal/auth/service"
	"github.com/aussiebroadwan/mfagate/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHousekeeping_Cleanup(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice", "secret1")

	_, err := f.sessions.Create(ctx, u.ID, true)
	require.NoError(t, err)
	f.clock.Advance(2 * time.Hour)

	hk := service.NewHousekeepingService(f.sessions, slogx.Discard(), time.Minute)
	hk.Cleanup(ctx)

	n, err := f.store.Sessions().DeleteExpiredSessions(ctx, f.clock.Now())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestHousekeeping_StartRunsImmediately(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice", "secret1")

	sess, err := f.sessions.Create(ctx, u.ID, true)
	require.NoError(t, err)
	f.clock.Advance(2 * time.Hour)

	hk := service.NewHousekeepingService(f.sessions, slogx.Discard(), time.Hour)
	hk.Start()
	defer hk.Stop()

	require.Eventually(t, func() bool {
		_, err := f.store.Sessions().GetSession(ctx, sess.ID)
		return err != nil
	}, time.Second, 10*time.Millisecond)
}

func TestHousekeeping_DefaultInterval(t *testing.T) {
	hk := service.NewHousekeepingService(nil, slogx.Discard(), 0)
	require.Equal(t, time.Hour, hk.Interval)
}
