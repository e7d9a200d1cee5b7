package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("ENCRYPTION_KEY", "k")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, int64(16<<20), cfg.UploadMaxBytes)
	assert.Contains(t, cfg.UploadAllowedExts, "pdf")
	assert.Equal(t, "0.0.0.0:8000", cfg.HTTPAddr())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("ENCRYPTION_KEY", "k")
	t.Setenv("HTTP_PORT", "9001")
	t.Setenv("CORS_ORIGINS", " https://a.example , https://b.example ")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("POSTGRES_DB", "chat")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Contains(t, cfg.DatabaseURL, "/chat?sslmode=disable")
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENCRYPTION_KEY", "k")
	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "s")
	t.Setenv("ENCRYPTION_KEY", "")
	_, err = config.Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("ENCRYPTION_KEY", "k")
	t.Setenv("DB_DRIVER", "mysql")
	_, err := config.Load()
	assert.Error(t, err)
}
