package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/buildinfo"
	"github.com/dmitrijs2005/gophadmin/internal/client/cli"
	"github.com/dmitrijs2005/gophadmin/internal/client/config"
	"github.com/dmitrijs2005/gophadmin/internal/logging"
	"github.com/dmitrijs2005/gophadmin/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		// a second Ctrl-C kills the process the usual way
		<-ctx.Done()
		stop()
	}()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	logger := logging.NewText(os.Stderr, cfg.LogLevel)

	shutdown, err := telemetry.Setup(ctx, "gophadmin-console")
	if err != nil {
		logger.Warn(ctx, "tracing disabled", "error", err)
	} else {
		defer func() {
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Run releases the app's resources when it returns
	app.Run(ctx)
	return nil
}
