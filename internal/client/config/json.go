package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophadmin/internal/flagx"
	"github.com/dmitrijs2005/gophadmin/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals use
// timex.Duration, so they may be strings like "3s" or integer nanoseconds.
// Absent keys keep the value from the previous layer.
type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	Transport          string          `json:"transport"`
	DatabasePath       string          `json:"database_path"`
	RecheckInterval    *timex.Duration `json:"recheck_interval"`
	VerifyAttempts     int             `json:"verify_attempts"`
	VerifyBackoff      *timex.Duration `json:"verify_backoff"`
	SettleDelay        *timex.Duration `json:"settle_delay"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	OnlineCheck        *timex.Duration `json:"online_check_interval"`
	LoginPath          string          `json:"login_path"`
	HomePath           string          `json:"home_path"`
	LogLevel           string          `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c or -config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.Transport, jc.Transport)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.LoginPath, jc.LoginPath)
	setString(&cfg.HomePath, jc.HomePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.VerifyAttempts != 0 {
		cfg.VerifyAttempts = jc.VerifyAttempts
	}
	if jc.RecheckInterval != nil {
		cfg.RecheckInterval = jc.RecheckInterval.Duration
	}
	if jc.VerifyBackoff != nil {
		cfg.VerifyBackoff = jc.VerifyBackoff.Duration
	}
	if jc.SettleDelay != nil {
		cfg.SettleDelay = jc.SettleDelay.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheck != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheck.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
