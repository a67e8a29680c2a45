// Package config handles configuration for the development auth server,
// including defaults, JSON overlay, environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the development server.
//
// Fields:
//   - EndpointAddrGRPC / EndpointAddrHTTP: bind addresses of the two transports.
//   - DatabasePath: SQLite file holding users and refresh tokens.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default outside development.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - SeedEmail / SeedPassword: the administrator created at startup.
type Config struct {
	EndpointAddrGRPC             string        `env:"GOPHADMIN_SERVER_GRPC_ADDR"`
	EndpointAddrHTTP             string        `env:"GOPHADMIN_SERVER_HTTP_ADDR"`
	DatabasePath                 string        `env:"GOPHADMIN_SERVER_DB_PATH"`
	SecretKey                    string        `env:"GOPHADMIN_SERVER_SECRET"`
	AccessTokenValidityDuration  time.Duration `env:"GOPHADMIN_SERVER_ACCESS_TTL"`
	RefreshTokenValidityDuration time.Duration `env:"GOPHADMIN_SERVER_REFRESH_TTL"`
	SeedEmail                    string        `env:"GOPHADMIN_SERVER_SEED_EMAIL"`
	SeedPassword                 string        `env:"GOPHADMIN_SERVER_SEED_PASSWORD"`
	LogLevel                     string        `env:"GOPHADMIN_SERVER_LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrHTTP = ":8080"
	c.DatabasePath = "devserver.db"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 1 * time.Minute
	c.RefreshTokenValidityDuration = 30 * time.Minute
	c.SeedEmail = "admin@example.com"
	c.SeedPassword = "admin"
	c.LogLevel = "info"
}

func (c *Config) Validate() error {
	var errs []error
	if c.EndpointAddrGRPC == "" && c.EndpointAddrHTTP == "" {
		errs = append(errs, errors.New("at least one of the gRPC and HTTP addresses is required"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is empty"))
	}
	if c.AccessTokenValidityDuration <= 0 || c.RefreshTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.SeedEmail == "" || c.SeedPassword == "" {
		errs = append(errs, errors.New("seed administrator credentials are required"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
