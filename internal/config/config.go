// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types, and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide defaults for optional blocks (instagram, uploads, jobs, observability).
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the SOVYX_ prefix. Keys are lowercased and the
	prefix removed; nested struct fields are addressed with "." so
	SOVYX_SERVER.PORT -> server.port -> Config.Server.Port and
	SOVYX_TENANTS.CLIENT1.ACCESS_TOKEN -> Config.Tenants["client1"].AccessToken.
*/

// EnvPrefix is the prefix every configuration variable carries.
const EnvPrefix = "SOVYX_"

// OwnerTenant is the tenant name used when a route carries no client segment.
const OwnerTenant = "owner"

// Config is the root configuration object for the application.
//
// Pointer blocks are optional. Database and Redis switch the service between
// persistent and in-memory implementations; Observability gets defaults.
type Config struct {
	Primary       Primary                 `koanf:"primary" validate:"required"`
	Server        ServerConfig            `koanf:"server" validate:"required"`
	Instagram     InstagramConfig         `koanf:"instagram"`
	Tenants       map[string]TenantConfig `koanf:"tenants"`
	Database      *DatabaseConfig         `koanf:"database"`
	Redis         *RedisConfig            `koanf:"redis"`
	Auth          AuthConfig              `koanf:"auth"`
	Integration   IntegrationConfig       `koanf:"integration"`
	Jobs          JobsConfig              `koanf:"jobs"`
	RateLimit     RateLimitConfig         `koanf:"rate_limit"`
	Uploads       UploadsConfig           `koanf:"uploads"`
	Observability *ObservabilityConfig    `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are stored as seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout"`
	WriteTimeout       int      `koanf:"write_timeout"`
	IdleTimeout        int      `koanf:"idle_timeout"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// TrustedProxies are the CIDRs whose X-Forwarded-For is believed when
	// resolving the client ip. Empty means the socket peer is the client.
	TrustedProxies []string `koanf:"trusted_proxies" validate:"dive,cidr"`

	// PublicBaseURL is the externally reachable address of this service.
	// Uploaded media is handed to the Graph API as PublicBaseURL/media/{id},
	// so Meta's crawlers must be able to reach it.
	PublicBaseURL string `koanf:"public_base_url" validate:"omitempty,url"`
}

// InstagramConfig holds Graph API endpoints and the owner account credentials.
type InstagramConfig struct {
	// GraphURL is either https://graph.instagram.com or https://graph.facebook.com.
	GraphURL string `koanf:"graph_url" validate:"omitempty,url"`

	// APIVersion is prefixed to every versioned endpoint (e.g. "v18.0").
	// Empty means unversioned paths.
	APIVersion string `koanf:"api_version"`

	Timeout               time.Duration `koanf:"timeout"`
	ProcessingInterval    time.Duration `koanf:"processing_interval"`
	ProcessingMaxAttempts int           `koanf:"processing_max_attempts"`

	AccessToken string `koanf:"access_token"`
	UserID      string `koanf:"user_id"`
}

// TenantConfig is a single client account managed by this backend.
type TenantConfig struct {
	AccessToken string `koanf:"access_token"`
	UserID      string `koanf:"user_id"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores authentication-related secrets.
// An empty SecretKey leaves the API unauthenticated.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key"`
}

// IntegrationConfig holds third-party service settings.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	FromEmail    string `koanf:"from_email" validate:"omitempty,email"`
	NotifyEmail  string `koanf:"notify_email" validate:"omitempty,email"`
}

// JobsConfig tunes the asynq worker and scheduler.
type JobsConfig struct {
	Concurrency      int    `koanf:"concurrency"`
	TokenRefreshCron string `koanf:"token_refresh_cron"`
}

// RateLimitConfig configures the per-ip token bucket. RPS <= 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// UploadsConfig controls the short-lived media cache.
type UploadsConfig struct {
	TTL      time.Duration `koanf:"ttl"`
	MaxBytes int64         `koanf:"max_bytes"`
}

// LoadConfig loads configuration from environment variables, unmarshals it into
// Config structs, validates it, applies defaults, and returns the resulting config.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	mainConfig.ApplyDefaults()

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Service name and environment are forced so telemetry stays consistent.
	mainConfig.Observability.ServiceName = "sovyx-backend"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// ApplyDefaults fills every optional value that was left empty.
func (c *Config) ApplyDefaults() {
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = []string{
			"https://sophie2353.github.io",
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:5500",
			"http://127.0.0.1:5500",
			"http://localhost:8080",
		}
	}
	if c.Server.PublicBaseURL == "" {
		c.Server.PublicBaseURL = "http://localhost:" + c.Server.Port
	}
	c.Server.PublicBaseURL = strings.TrimRight(c.Server.PublicBaseURL, "/")

	if c.Instagram.GraphURL == "" {
		c.Instagram.GraphURL = "https://graph.instagram.com"
	}
	c.Instagram.GraphURL = strings.TrimRight(c.Instagram.GraphURL, "/")
	if c.Instagram.Timeout == 0 {
		c.Instagram.Timeout = 15 * time.Second
	}
	if c.Instagram.ProcessingInterval == 0 {
		c.Instagram.ProcessingInterval = 2 * time.Second
	}
	if c.Instagram.ProcessingMaxAttempts == 0 {
		c.Instagram.ProcessingMaxAttempts = 30
	}

	if c.Jobs.Concurrency == 0 {
		c.Jobs.Concurrency = 10
	}
	if c.Jobs.TokenRefreshCron == "" {
		c.Jobs.TokenRefreshCron = "0 3 * * *"
	}

	if c.RateLimit.RPS > 0 && c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = int(c.RateLimit.RPS) * 2
	}

	if c.Uploads.TTL == 0 {
		c.Uploads.TTL = 15 * time.Minute
	}
	if c.Uploads.MaxBytes == 0 {
		c.Uploads.MaxBytes = 100 << 20
	}

	if c.Integration.FromEmail == "" {
		c.Integration.FromEmail = "onboarding@resend.dev"
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
}

// TenantNames returns the owner followed by every configured tenant, sorted.
func (c *Config) TenantNames() []string {
	names := make([]string, 0, len(c.Tenants))
	for name := range c.Tenants {
		if name == OwnerTenant {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{OwnerTenant}, names...)
}

// TenantCredentials returns the configured token and user id for a tenant.
// The owner is read from the instagram block.
func (c *Config) TenantCredentials(name string) (TenantConfig, bool) {
	if name == OwnerTenant {
		return TenantConfig{AccessToken: c.Instagram.AccessToken, UserID: c.Instagram.UserID}, true
	}
	t, ok := c.Tenants[name]
	return t, ok
}
