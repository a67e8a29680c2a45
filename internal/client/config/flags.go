package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the admin API
//	-t string   transport, grpc or http
//	-d string   path of the local database
//	-i int      session re-check interval in seconds, 0 disables it
//
// args are filtered with flagx.FilterArgs so flags owned by other layers
// (-c) do not break parsing.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-d", "-i"})

	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.Transport, "t", cfg.Transport, "transport (grpc|http)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	recheck := fs.Int("i", int(cfg.RecheckInterval.Seconds()), "session re-check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RecheckInterval = time.Duration(*recheck) * time.Second
	return nil
}
