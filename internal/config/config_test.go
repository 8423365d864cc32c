package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, DriverPostgres, cfg.StorageDriver)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, int32(20), cfg.DB.MaxConns)
	require.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=eventregistration sslmode=disable",
		cfg.DB.DSN())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_CONNECT_ATTEMPTS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, DriverMemory, cfg.StorageDriver)
	require.Equal(t, "db", cfg.DB.Host)
	require.Equal(t, 1, cfg.DB.ConnectAttempts)
}

func TestLoadErrors(t *testing.T) {
	t.Run("bad driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")
		_, err := Load()
		require.ErrorContains(t, err, "unknown STORAGE_DRIVER")
	})
	t.Run("bad int", func(t *testing.T) {
		t.Setenv("DB_MAX_CONNS", "many")
		_, err := Load()
		require.ErrorContains(t, err, "parse env:")
	})
}
