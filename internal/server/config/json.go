package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophadmin/internal/flagx"
	"github.com/dmitrijs2005/gophadmin/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for lifetimes, which allows parsing both
// string values such as "1m" and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC             string          `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP             string          `json:"endpoint_addr_http"`
	DatabasePath                 string          `json:"database_path"`
	SecretKey                    string          `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	SeedEmail                    string          `json:"seed_email"`
	SeedPassword                 string          `json:"seed_password"`
	LogLevel                     string          `json:"log_level"`
}

// parseJson loads the file named by -c or -config into cfg. Keys missing
// from the file keep their current values.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	for dst, v := range map[*string]string{
		&cfg.EndpointAddrGRPC: c.EndpointAddrGRPC,
		&cfg.EndpointAddrHTTP: c.EndpointAddrHTTP,
		&cfg.DatabasePath:     c.DatabasePath,
		&cfg.SecretKey:        c.SecretKey,
		&cfg.SeedEmail:        c.SeedEmail,
		&cfg.SeedPassword:     c.SeedPassword,
		&cfg.LogLevel:         c.LogLevel,
	} {
		if v != "" {
			*dst = v
		}
	}
	if c.AccessTokenValidityDuration != nil {
		cfg.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		cfg.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	return nil
}
