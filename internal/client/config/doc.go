// Package config loads runtime configuration for the gophadmin console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. GOPHADMIN_* environment variables.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   address:port of the admin API
//	-t string   transport, grpc or http
//	-d string   path of the local database
//	-i int      session re-check interval (seconds)
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "transport": "grpc",
//	  "database_path": "console.db",
//	  "recheck_interval": "1m",
//	  "verify_attempts": 2,
//	  "verify_backoff": "300ms",
//	  "settle_delay": "0s",
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s",
//	  "log_level": "info"
//	}
package config
