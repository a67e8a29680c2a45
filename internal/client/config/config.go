package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/client/auth"
	"github.com/dmitrijs2005/gophadmin/internal/client/client"
)

// Config holds runtime settings for the gophadmin console.
//
// Fields:
//   - ServerEndpointAddr: host:port of the admin API.
//   - Transport: "grpc" or "http".
//   - DatabasePath: SQLite file shared by every console process of the user.
//   - RecheckInterval: periodic session re-verification; 0 disables it.
//   - VerifyAttempts, VerifyBackoff: profile checks per verification and the
//     pause between them.
//   - SettleDelay: pause between a committed login and navigation.
//   - RequestTimeout: per-call deadline of the transport client.
type Config struct {
	ServerEndpointAddr string        `env:"GOPHADMIN_SERVER_ADDR"`
	Transport          string        `env:"GOPHADMIN_TRANSPORT"`
	DatabasePath       string        `env:"GOPHADMIN_DB_PATH"`
	RecheckInterval    time.Duration `env:"GOPHADMIN_RECHECK_INTERVAL"`
	VerifyAttempts     int           `env:"GOPHADMIN_VERIFY_ATTEMPTS"`
	VerifyBackoff      time.Duration `env:"GOPHADMIN_VERIFY_BACKOFF"`
	SettleDelay        time.Duration `env:"GOPHADMIN_SETTLE_DELAY"`
	RequestTimeout     time.Duration `env:"GOPHADMIN_REQUEST_TIMEOUT"`
	LoginPath          string        `env:"GOPHADMIN_LOGIN_PATH"`
	HomePath           string        `env:"GOPHADMIN_HOME_PATH"`
	LogLevel           string        `env:"GOPHADMIN_LOG_LEVEL"`

	// OnlineCheckInterval is how often the server is pinged for the prompt's
	// online/offline marker.
	OnlineCheckInterval time.Duration `env:"GOPHADMIN_ONLINE_CHECK_INTERVAL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.Transport = client.TransportGRPC
	c.DatabasePath = "console.db"
	c.RecheckInterval = time.Minute
	c.VerifyAttempts = auth.DefaultVerifyAttempts
	c.VerifyBackoff = auth.DefaultVerifyBackoff
	c.SettleDelay = 0
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.LoginPath = auth.DefaultLoginPath
	c.HomePath = auth.DefaultHomePath
	c.LogLevel = "info"
}

// Validate rejects settings the console cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.ServerEndpointAddr == "" {
		errs = append(errs, errors.New("server address is empty"))
	}
	if c.Transport != client.TransportGRPC && c.Transport != client.TransportHTTP {
		errs = append(errs, fmt.Errorf("%w: %q", client.ErrUnknownTransport, c.Transport))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	if c.VerifyAttempts <= 0 {
		errs = append(errs, fmt.Errorf("verify attempts must be positive, got %d", c.VerifyAttempts))
	}
	if c.OnlineCheckInterval <= 0 {
		errs = append(errs, errors.New("online check interval must be positive"))
	}
	if c.RecheckInterval < 0 || c.VerifyBackoff < 0 || c.SettleDelay < 0 || c.RequestTimeout < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	return errors.Join(errs...)
}

// AuthOptions maps the reconciler settings.
func (c *Config) AuthOptions() auth.Options {
	return auth.Options{
		VerifyAttempts:  c.VerifyAttempts,
		VerifyBackoff:   c.VerifyBackoff,
		SettleDelay:     c.SettleDelay,
		RecheckInterval: c.RecheckInterval,
		LoginPath:       c.LoginPath,
		HomePath:        c.HomePath,
	}
}

// LoadConfig builds a Config from defaults, then a JSON file, then the
// environment, then command-line flags. Later sources take precedence.
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
