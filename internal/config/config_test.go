package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_AppliesDefaultsAndTenants(t *testing.T) {
	t.Setenv("SOVYX_PRIMARY.ENV", "development")
	t.Setenv("SOVYX_SERVER.PORT", "8080")
	t.Setenv("SOVYX_SERVER.CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SOVYX_INSTAGRAM.ACCESS_TOKEN", "owner-token")
	t.Setenv("SOVYX_INSTAGRAM.USER_ID", "17841400000000000")
	t.Setenv("SOVYX_TENANTS.CLIENT1.ACCESS_TOKEN", "client1-token")
	t.Setenv("SOVYX_TENANTS.CLIENT1.USER_ID", "1789")
	t.Setenv("SOVYX_UPLOADS.TTL", "5m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "http://localhost:8080", cfg.Server.PublicBaseURL)
	assert.Equal(t, "https://graph.instagram.com", cfg.Instagram.GraphURL)
	assert.Equal(t, 30, cfg.Instagram.ProcessingMaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Uploads.TTL)
	assert.Nil(t, cfg.Database)
	assert.Nil(t, cfg.Redis)

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, "sovyx-backend", cfg.Observability.ServiceName)
	assert.Equal(t, "development", cfg.Observability.Environment)

	assert.Equal(t, []string{OwnerTenant, "client1"}, cfg.TenantNames())

	owner, ok := cfg.TenantCredentials(OwnerTenant)
	require.True(t, ok)
	assert.Equal(t, "owner-token", owner.AccessToken)

	client1, ok := cfg.TenantCredentials("client1")
	require.True(t, ok)
	assert.Equal(t, "1789", client1.UserID)

	_, ok = cfg.TenantCredentials("client9")
	assert.False(t, ok)
}

func TestLoadConfig_MissingEnvFails(t *testing.T) {
	t.Setenv("SOVYX_SERVER.PORT", "8080")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestObservabilityConfig_Validate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	require.NoError(t, cfg.Validate())

	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultObservabilityConfig()
	cfg.Logging.SlowQueryThreshold = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestObservabilityConfig_HealthCheckEnabled(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	assert.True(t, cfg.HealthCheckEnabled("database"))
	assert.False(t, cfg.HealthCheckEnabled("kafka"))

	cfg.HealthChecks.Enabled = false
	assert.False(t, cfg.HealthCheckEnabled("database"))
}
