package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Source backends for the transaction pipeline.
const (
	SourceLive = "live"
	SourceFile = "file"
)

// Config holds every value the pipeline needs. It is built once at startup
// and passed into component constructors; no component reads the process
// environment directly.
type Config struct {
	Source string `mapstructure:"source"`

	// Identity directory (Cognito user pool).
	Region             string `mapstructure:"region"`
	AWSAccessKeyID     string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey string `mapstructure:"aws_secret_access_key"`
	UserPoolID         string `mapstructure:"user_pool_id"`
	CognitoEndpoint    string `mapstructure:"cognito_endpoint"`

	// Financial aggregation API (Salt Edge partners v1).
	SaltEdgeAppID  string `mapstructure:"salt_edge_app_id"`
	SaltEdgeSecret string `mapstructure:"salt_edge_secret"`
	SaltEdgeURL    string `mapstructure:"salt_edge_url"`

	// Fixture backend.
	FixtureFile string `mapstructure:"fixture_file"`

	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

var envKeys = []string{
	"source",
	"region",
	"aws_access_key_id",
	"aws_secret_access_key",
	"user_pool_id",
	"cognito_endpoint",
	"salt_edge_app_id",
	"salt_edge_secret",
	"salt_edge_url",
	"fixture_file",
	"http_timeout",
}

// Load reads configuration from a .env file (if present) and the
// environment. It does not validate; call Validate before any network
// activity so a bad setup fails before the first request.
func Load() (*Config, error) {
	// A missing .env file is fine, the environment alone is enough.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("source", SourceLive)
	v.SetDefault("salt_edge_url", "https://www.saltedge.com")
	v.SetDefault("fixture_file", "./data/transactions.csv")
	v.SetDefault("http_timeout", 30*time.Second)
	for _, key := range envKeys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Credentials pasted into .env files tend to pick up stray whitespace.
	cfg.AWSAccessKeyID = strings.TrimSpace(cfg.AWSAccessKeyID)
	cfg.AWSSecretAccessKey = strings.TrimSpace(cfg.AWSSecretAccessKey)
	cfg.SaltEdgeAppID = strings.TrimSpace(cfg.SaltEdgeAppID)
	cfg.SaltEdgeSecret = strings.TrimSpace(cfg.SaltEdgeSecret)

	return &cfg, nil
}

// Validate reports every missing required value at once so a broken setup
// is fixed in one round trip. Which values are required depends on the
// selected source backend.
func (c *Config) Validate() error {
	var missing []string
	require := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	switch c.Source {
	case SourceLive:
		require("REGION", c.Region)
		require("AWS_ACCESS_KEY_ID", c.AWSAccessKeyID)
		require("AWS_SECRET_ACCESS_KEY", c.AWSSecretAccessKey)
		require("USER_POOL_ID", c.UserPoolID)
		require("SALT_EDGE_APP_ID", c.SaltEdgeAppID)
		require("SALT_EDGE_SECRET", c.SaltEdgeSecret)
	case SourceFile:
		require("FIXTURE_FILE", c.FixtureFile)
	default:
		return fmt.Errorf("unknown source %q (expected %q or %q)", c.Source, SourceLive, SourceFile)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
