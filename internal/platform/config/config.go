package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool
	LogLevel     slog.Level

	// Keyed store
	StoreBackend   string
	DatabaseURL    string
	EnableDBCheck  bool
	StoreTable     string
	StoreRegion    string // informational; recorded in startup logs
	StoreTimeout   time.Duration
	UseRoleIndex   bool
	MigrationsPath string

	// Identity provider
	AuthIssuerURL           string
	AuthJWKSURL             string
	AuthAudience            string
	AuthTokenUse            string
	AuthJWKSRefreshInterval time.Duration
	AuthJWKSFetchTimeout    time.Duration

	// Interest engine
	InterestSchedulerEnabled bool
	InterestSchedule         string

	// Ledger events
	KafkaBrokers []string
	KafkaTopic   string

	// HTTP surface
	RateLimit          string
	CORSAllowedOrigins []string
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_BACKEND", StoreBackendPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("STORE_TABLE", "ledger_items")
	v.SetDefault("STORE_REGION", "")
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("USE_ROLE_INDEX", true)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("AUTH_ISSUER_URL", "")
	v.SetDefault("AUTH_JWKS_URL", "")
	v.SetDefault("AUTH_AUDIENCE", "")
	v.SetDefault("AUTH_TOKEN_USE", "id")
	v.SetDefault("AUTH_JWKS_REFRESH_INTERVAL", "1h")
	v.SetDefault("AUTH_JWKS_FETCH_TIMEOUT", "5s")
	v.SetDefault("INTEREST_SCHEDULER_ENABLED", false)
	v.SetDefault("INTEREST_SCHEDULE", "0 0 1 * *")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "family-bank.ledger-entries")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.GetViper()
	SetDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds a Config from the values held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:                     v.GetString("PORT"),
		IsProduction:             v.GetBool("IS_PRODUCTION"),
		StoreBackend:             strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND"))),
		DatabaseURL:              v.GetString("PGSQL_URL"),
		EnableDBCheck:            v.GetBool("ENABLE_DB_CHECK"),
		StoreTable:               v.GetString("STORE_TABLE"),
		StoreRegion:              v.GetString("STORE_REGION"),
		UseRoleIndex:             v.GetBool("USE_ROLE_INDEX"),
		MigrationsPath:           v.GetString("MIGRATIONS_PATH"),
		AuthIssuerURL:            strings.TrimRight(v.GetString("AUTH_ISSUER_URL"), "/"),
		AuthJWKSURL:              v.GetString("AUTH_JWKS_URL"),
		AuthAudience:             v.GetString("AUTH_AUDIENCE"),
		AuthTokenUse:             v.GetString("AUTH_TOKEN_USE"),
		InterestSchedulerEnabled: v.GetBool("INTEREST_SCHEDULER_ENABLED"),
		InterestSchedule:         v.GetString("INTEREST_SCHEDULE"),
		KafkaBrokers:             splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:               v.GetString("KAFKA_TOPIC"),
		RateLimit:                v.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:       splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", v.GetString("LOG_LEVEL"), err)
	}

	var err error
	if cfg.StoreTimeout, err = duration(v, "STORE_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.AuthJWKSRefreshInterval, err = duration(v, "AUTH_JWKS_REFRESH_INTERVAL"); err != nil {
		return nil, err
	}
	if cfg.AuthJWKSFetchTimeout, err = duration(v, "AUTH_JWKS_FETCH_TIMEOUT"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combinations of settings the service cannot run without.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("PGSQL_URL is required when STORE_BACKEND is %q", StoreBackendPostgres)
		}
	case StoreBackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.AuthTokenUse != "id" && c.AuthTokenUse != "access" {
		return fmt.Errorf("AUTH_TOKEN_USE must be \"id\" or \"access\", got %q", c.AuthTokenUse)
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	return nil
}

// JWKSURL returns the configured key set location, derived from the issuer when unset.
func (c *Config) JWKSURL() string {
	if c.AuthJWKSURL != "" {
		return c.AuthJWKSURL
	}
	if c.AuthIssuerURL == "" {
		return ""
	}
	return c.AuthIssuerURL + "/.well-known/jwks.json"
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
