package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/mfagate/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"AUTH_ISSUER", "AUTH_STORE", "AUTH_DATABASE_FILE", "AUTH_PEPPER_FILE",
		"AUTH_SESSION_TTL", "AUTH_QR_SIZE", "ENV", "LOG_LEVEL", "LOG_FORMAT",
		"PORT", "SHUTDOWN_GRACE_PERIOD", "HOUSEKEEPING_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "SecureApp", cfg.Issuer)
	require.Equal(t, StoreSQLite, cfg.Store)
	require.Equal(t, "auth.db", cfg.DatabaseFile)
	require.Equal(t, "pepper", cfg.PepperFile)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Equal(t, 256, cfg.QRSize)
	require.Equal(t, 3000, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("AUTH_ISSUER", "Acme")
	t.Setenv("AUTH_STORE", "memory")
	t.Setenv("AUTH_SESSION_TTL", "90")
	t.Setenv("AUTH_QR_SIZE", "not-a-number")
	t.Setenv("PORT", "8081")
	t.Setenv("HOUSEKEEPING_INTERVAL", "5m")

	cfg := LoadConfig()
	require.Equal(t, "Acme", cfg.Issuer)
	require.Equal(t, StoreMemory, cfg.Store)
	require.Equal(t, 90*time.Minute, cfg.SessionTTL)
	require.Equal(t, 256, cfg.QRSize)
	require.Equal(t, 8081, cfg.Port)
	require.Equal(t, 5*time.Minute, cfg.HousekeepingInterval)
}

func TestConfigValidate(t *testing.T) {
	base := Config{Store: StoreMemory, SessionTTL: time.Hour, QRSize: 256}
	require.NoError(t, base.Validate())

	bad := base
	bad.Store = "postgres"
	require.Error(t, bad.Validate())

	bad = base
	bad.Store = StoreSQLite
	require.Error(t, bad.Validate())

	bad = base
	bad.SessionTTL = 0
	require.Error(t, bad.Validate())

	bad = base
	bad.QRSize = -1
	require.Error(t, bad.Validate())
}

func TestNew_SQLiteStore(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Issuer:               "SecureApp",
		Store:                StoreSQLite,
		DatabaseFile:         filepath.Join(dir, "auth.db"),
		PepperFile:           filepath.Join(dir, "pepper"),
		SessionTTL:           time.Hour,
		QRSize:               128,
		Env:                  "test",
		LogLevel:             "error",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	rec := httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.FileExists(t, cfg.DatabaseFile)
	require.FileExists(t, cfg.PepperFile)
}

func TestNew_EmptyPepperFile(t *testing.T) {
	dir := t.TempDir()
	pepper := filepath.Join(dir, "pepper")
	require.NoError(t, os.WriteFile(pepper, nil, 0600))
	t.Cleanup(func() { cryptox.SetPepperPath("") })

	_, err := New(Config{
		Issuer:               "SecureApp",
		Store:                StoreSQLite,
		DatabaseFile:         filepath.Join(dir, "auth.db"),
		PepperFile:           pepper,
		SessionTTL:           time.Hour,
		QRSize:               128,
		Env:                  "test",
		LogLevel:             "error",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	})
	require.ErrorContains(t, err, "failed to load pepper")
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{Store: "redis", SessionTTL: time.Hour, QRSize: 1})
	require.Error(t, err)
}
