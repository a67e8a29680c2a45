package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-g string   gRPC bind address (e.g., ":50051")
//	-h string   HTTP bind address (e.g., ":8080"), empty disables REST
//	-d string   SQLite database path
//	-k string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//
// Duration flags are accepted as integers in minutes and then converted
// to time.Duration values.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-g", "-h", "-d", "-k", "-t", "-r"})

	fs := flag.NewFlagSet("devserver", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.EndpointAddrGRPC, "g", cfg.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&cfg.EndpointAddrHTTP, "h", cfg.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "database path")
	fs.StringVar(&cfg.SecretKey, "k", cfg.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(cfg.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(cfg.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	cfg.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	return nil
}
