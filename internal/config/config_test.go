package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, "8083", cfg.Server.Port)
	require.True(t, cfg.Snapshot.Enabled)
	require.Equal(t, "streams.events", cfg.AMQP.Exchange)
	require.Equal(t, "development", cfg.Environment)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SNAPSHOT_ENABLED", "false")
	t.Setenv("AUTH_JWT_SECRET", "supersecret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9000", cfg.Server.Port)
	require.False(t, cfg.Snapshot.Enabled)
	require.Equal(t, "supersecret", cfg.Auth.JWTSecret)
}
