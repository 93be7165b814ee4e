package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Host)
	require.Equal(t, 8080, cfg.Port)
	require.True(t, cfg.PublicEntities)
	require.False(t, cfg.RedisThrowOnErrors)
	require.Equal(t, int64(3600), cfg.MinBlacklistTime)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FEDERATION_API_KEY", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	t.Setenv("FEDERATION_DATABASE_HOST", "db.internal")
	t.Setenv("FEDERATION_REDIS_THROW_ON_ERRORS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", cfg.APIKey)
	require.Equal(t, "db.internal", cfg.DatabaseHost)
	require.True(t, cfg.RedisThrowOnErrors)
}

func TestDatabaseURL_BuildsFromDiscreteFields(t *testing.T) {
	cfg := &Config{
		DatabaseUsername: "u",
		DatabasePassword: "p",
		DatabaseHost:     "h",
		DatabasePort:     5432,
		DatabaseName:     "n",
		DatabaseSSLMode:  "disable",
	}
	require.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", cfg.DatabaseURL())
}
