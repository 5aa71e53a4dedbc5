package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"API_URL", "PORT", "REDIS_URL", "SESSION_COOKIE", "API_TIMEOUT", "ROLLBACK_ORPHANED_PROGRAMS", "CORS_ORIGINS", "LOGIN_RATE_PER_MINUTE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.API.BaseURL)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "innovo_sid", cfg.Session.CookieName)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.API.RollbackOrphanedPrograms)
	assert.Empty(t, cfg.Server.CORSOrigins)
	assert.Equal(t, 20, cfg.Server.LoginRatePerMinute)
	assert.NotEmpty(t, cfg.Session.TokenFile)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_URL", "https://api.example.test/")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("ROLLBACK_ORPHANED_PROGRAMS", "true")
	t.Setenv("CORS_ORIGINS", "https://a.test, https://b.test ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.test", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.API.RollbackOrphanedPrograms)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.Server.CORSOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("API_URL", "")
	t.Setenv("API_TIMEOUT", "soon")
	t.Setenv("LOGIN_RATE_PER_MINUTE", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 20, cfg.Server.LoginRatePerMinute)
}

func TestValidate(t *testing.T) {
	t.Setenv("API_URL", "not a url")
	_, err := Load()
	assert.Error(t, err)

	cfg := &Config{
		Server:  ServerConfig{Port: "3000", LoginRatePerMinute: 1},
		API:     APIConfig{BaseURL: DefaultAPIURL},
		Session: SessionConfig{CookieName: ""},
	}
	assert.EqualError(t, cfg.Validate(), "SESSION_COOKIE is required")
}
