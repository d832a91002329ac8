package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GATEWAY_MODE", "")
	t.Setenv("WIZARD_SESSION_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, GatewayLocal, cfg.Wizard.GatewayMode)
	assert.Equal(t, 2*time.Hour, cfg.Wizard.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.Wizard.SubmitTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, 2, cfg.Database.MaxIdleConns)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GATEWAY_MODE", GatewayRemote)
	t.Setenv("GATEWAY_URL", "https://stores.example.com/api/v1")
	t.Setenv("WIZARD_SUBMIT_TIMEOUT", "5s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, GatewayRemote, cfg.Wizard.GatewayMode)
	assert.Equal(t, 5*time.Second, cfg.Wizard.SubmitTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestLoad_RejectsUnknownGatewayMode(t *testing.T) {
	t.Setenv("GATEWAY_MODE", "carrier-pigeon")

	_, err := Load()
	assert.Error(t, err)
}

func TestParseDuration_Fallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 90*time.Second, parseDuration("90s", time.Minute))
}
